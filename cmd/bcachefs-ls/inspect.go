// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"bufio"
	"os"

	"github.com/spf13/cobra"

	"github.com/benzina/bcachefs-ro/lib/bcachefs"
	"github.com/benzina/bcachefs-ro/lib/textui"
	"github.com/benzina/bcachefs-ro/lib/util"
)

var inspectors []subcommand

func init() {
	inspectors = append(inspectors, subcommand{
		Command: cobra.Command{
			Use:   "superblock",
			Short: "Print the decoded superblock geometry",
			Args:  cobra.NoArgs,
		},
		RunE: func(r *bcachefs.Reader, _ *cobra.Command, _ []string) (err error) {
			out := bufio.NewWriter(os.Stdout)
			defer func() {
				if _err := out.Flush(); _err != nil && err == nil {
					err = _err
				}
			}()

			sb := r.Superblock()
			hasClean := len(r.BtreeIDs()) > 0
			_, err = textui.Fprintf(out,
				"%s\n"+
					"block_size=%d btree_node_size=%d clean_field_present=%v\n",
				sb, sb.BlockSizeBytes(), sb.BtreeNodeSizeBytes(), hasClean)
			return err
		},
	})

	inspectors = append(inspectors, subcommand{
		Command: cobra.Command{
			Use:   "roots",
			Short: "Print which btree-ids have a recovered root pointer",
			Args:  cobra.NoArgs,
		},
		RunE: func(r *bcachefs.Reader, _ *cobra.Command, _ []string) (err error) {
			out := bufio.NewWriter(os.Stdout)
			defer func() {
				if _err := out.Flush(); _err != nil && err == nil {
					err = _err
				}
			}()

			roots := r.Roots()
			for _, id := range util.SortedMapKeys(roots) {
				root := roots[id]
				if _, err = textui.Fprintf(out, "%v seq=%d offset=%v\n", id, root.Entry.Seq, root.Offset); err != nil {
					return err
				}
			}
			return nil
		},
	})
}
