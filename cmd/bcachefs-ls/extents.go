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
	var inodeFlag uint64

	cmd := subcommand{
		Command: cobra.Command{
			Use:   "extents",
			Short: "Walk the extents btree, optionally filtered to one inode",
			Args:  cobra.NoArgs,
		},
		RunE: func(r *bcachefs.Reader, cmd *cobra.Command, _ []string) (err error) {
			filter := cmd.Flags().Changed("inode")

			out := bufio.NewWriter(os.Stdout)
			defer func() {
				if _err := out.Flush(); _err != nil && err == nil {
					err = _err
				}
			}()

			it, err := r.Iterator(bcachefs.BtreeIDExtents)
			if err != nil {
				return err
			}
			defer it.Close()

			progress := newWalkProgress(cmd.Context())
			stats := walkStats{Btree: "extents"}
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
				switch key.Type() {
				case bcachefs.BkeyTypeExtent, bcachefs.BkeyTypeInlineData:
				default:
					if progress != nil {
						progress.Set(stats)
					}
					continue
				}
				if filter && key.Unpacked().Inode != inodeFlag {
					if progress != nil {
						progress.Set(stats)
					}
					continue
				}
				extent, err := key.Extend()
				if err != nil {
					return err
				}
				if err := writeExtent(out, *extent); err != nil {
					return err
				}
				stats.Matched++
				if progress != nil {
					progress.Set(stats)
				}
			}
			return nil
		},
	}
	cmd.Flags().Uint64Var(&inodeFlag, "inode", 0, "restrict output to extents of inode `N`")
	subcommands = append(subcommands, cmd)
}

func writeExtent(out io.Writer, e bcachefs.Extent) error {
	if jsonOutput {
		if err := lowmemjson.Encode(out, e); err != nil {
			return err
		}
		_, err := io.WriteString(out, "\n")
		return err
	}
	_, err := textui.Fprintf(out, "%s\n", e)
	return err
}
