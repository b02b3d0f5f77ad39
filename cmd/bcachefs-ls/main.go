// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"os"

	"github.com/datawire/dlib/dgroup"
	"github.com/datawire/dlib/dlog"
	"github.com/spf13/cobra"

	"github.com/benzina/bcachefs-ro/lib/bcachefs"
	"github.com/benzina/bcachefs-ro/lib/profile"
	"github.com/benzina/bcachefs-ro/lib/textui"
)

// subcommand pairs a cobra.Command with a RunE that has already been
// handed an opened Reader, mirroring the teacher's cmd/btrfs-rec
// subcommand wiring (minus the repair half, which has no analog here
// since this is a read-only reader).
type subcommand struct {
	cobra.Command
	RunE func(*bcachefs.Reader, *cobra.Command, []string) error
}

var subcommands []subcommand

// jsonOutput is set by the --json persistent flag; subcommands in
// other files read it to decide between text and lowmemjson output.
var jsonOutput bool

// progressFlag is set by the --progress persistent flag; walking
// subcommands read it to decide whether to install a progress
// heartbeat (see progress.go).
var progressFlag bool

func main() {
	logLevelFlag := textui.LogLevelFlag{
		Level: dlog.LogLevelInfo,
	}
	var imageFlag string

	argparser := &cobra.Command{
		Use:   "bcachefs-ls --image FILE SUBCOMMAND",
		Short: "Read-only inspection of a cleanly-unmounted bcachefs disk image",

		Args: cobra.NoArgs,

		SilenceErrors: true, // main() reports the error after ExecuteContext returns
		SilenceUsage:  true,

		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	argparser.PersistentFlags().Var(&logLevelFlag, "verbosity", "set the verbosity")
	argparser.PersistentFlags().StringVar(&imageFlag, "image", "", "bcachefs disk `image` to read")
	if err := argparser.MarkPersistentFlagFilename("image"); err != nil {
		panic(err)
	}
	if err := argparser.MarkPersistentFlagRequired("image"); err != nil {
		panic(err)
	}
	argparser.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit newline-delimited JSON instead of text")
	argparser.PersistentFlags().BoolVar(&progressFlag, "progress", false, "log a periodic heartbeat of walk progress to stderr")
	stopProfiles := profile.AddProfileFlags(argparser.PersistentFlags(), "profile-")

	argparserInspect := &cobra.Command{
		Use:   "inspect SUBCOMMAND",
		Short: "Print decoded metadata without walking any btree",
		Args:  cobra.NoArgs,
	}
	argparser.AddCommand(argparserInspect)

	for _, cmdgrp := range []struct {
		parent   *cobra.Command
		children []subcommand
	}{
		{argparser, subcommands},
		{argparserInspect, inspectors},
	} {
		for _, child := range cmdgrp.children {
			cmd := child.Command
			runE := child.RunE
			cmd.RunE = func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				logger := textui.NewLogger(os.Stderr, logLevelFlag.Level)
				ctx = dlog.WithLogger(ctx, logger)
				ctx = dlog.WithField(ctx, "mem", new(textui.LiveMemUse))
				dlog.SetFallbackLogger(logger.WithField("bcachefs-ls.THIS_IS_A_BUG", true))

				grp := dgroup.NewGroup(ctx, dgroup.GroupConfig{
					EnableSignalHandling: true,
				})
				grp.Go("main", func(ctx context.Context) (err error) {
					maybeSetErr := func(_err error) {
						if _err != nil && err == nil {
							err = _err
						}
					}
					r, err := bcachefs.OpenPath(imageFlag)
					if err != nil {
						return err
					}
					defer func() {
						maybeSetErr(r.Close())
					}()

					cmd.SetContext(ctx)
					return runE(r, cmd, args)
				})
				return grp.Wait()
			}
			cmdgrp.parent.AddCommand(&cmd)
		}
	}

	err := argparser.ExecuteContext(context.Background())
	if stopErr := stopProfiles(); err == nil {
		err = stopErr
	}
	if err != nil {
		textui.Fprintf(os.Stderr, "%v: error: %v\n", argparser.CommandPath(), err)
		os.Exit(1)
	}
}
