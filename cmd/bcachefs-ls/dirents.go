// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"bufio"
	"errors"
	"io"
	"os"

	"git.lukeshu.com/go/lowmemjson"
	"github.com/spf13/cobra"

	"github.com/benzina/bcachefs-ro/lib/bcachefs"
	"github.com/benzina/bcachefs-ro/lib/textui"
)

func init() {
	subcommands = append(subcommands, subcommand{
		Command: cobra.Command{
			Use:   "dirents [path]",
			Short: "Walk the dirents btree depth-first from the root inode",
			Args:  cobra.MaximumNArgs(1),
		},
		RunE: func(r *bcachefs.Reader, cmd *cobra.Command, args []string) (err error) {
			var prefix string
			if len(args) > 0 {
				prefix = args[0]
			}
			_ = prefix // path filtering is not part of spec.md §4.J's flat dirent projection

			out := bufio.NewWriter(os.Stdout)
			defer func() {
				if _err := out.Flush(); _err != nil && err == nil {
					err = _err
				}
			}()

			it, err := r.Iterator(bcachefs.BtreeIDDirents)
			if err != nil {
				return err
			}
			defer it.Close()

			progress := newWalkProgress(cmd.Context())
			stats := walkStats{Btree: "dirents"}
			if progress != nil {
				defer progress.Done()
			}

			for {
				key, err := it.NextKey()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return err
				}
				stats.Seen++
				if key.Type() != bcachefs.BkeyTypeDirent {
					if progress != nil {
						progress.Set(stats)
					}
					continue
				}
				dirent, err := key.Directory()
				if err != nil {
					return err
				}
				if err := writeDirent(out, *dirent); err != nil {
					return err
				}
				stats.Matched++
				if progress != nil {
					progress.Set(stats)
				}
			}
			return nil
		},
	})
}

func writeDirent(out io.Writer, d bcachefs.DirectoryEntry) error {
	if jsonOutput {
		if err := lowmemjson.Encode(out, d); err != nil {
			return err
		}
		_, err := io.WriteString(out, "\n")
		return err
	}
	_, err := textui.Fprintf(out, "%s\n", d)
	return err
}
