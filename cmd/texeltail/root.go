// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texeltail/root.go
// Summary: Command-line surface of texeltail.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/framegrace/texeltail/config"
	"github.com/framegrace/texeltail/internal/logging"
	tailrt "github.com/framegrace/texeltail/internal/runtime/tail"
)

var version = "dev"

// errShown ends the run with status 1 after help or version output.
var errShown = errors.New("usage shown")

type runFunc func(context.Context, tailrt.Options) error

type cli struct {
	cfgFile     string
	panicLog    string
	showVersion bool
	helpShown   bool
	run         runFunc
}

func newRootCmd(stdout, stderr io.Writer, run runFunc) (*cobra.Command, *cli) {
	c := &cli{run: run}
	cmd := &cobra.Command{
		Use:   "texeltail [flags] FILE...",
		Short: "Tail several files at once in a tiled terminal dashboard",
		Long: `texeltail shows each FILE in its own pane and keeps them up to date.

Keys: h/l or arrows move between panes, j/k scroll, 0/$ jump to the start or
end, Ctrl-B/Ctrl-F page, Ctrl-U/Ctrl-D half page, Ctrl-L redraws, q quits.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          c.runE,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringP(config.KeyLayout, "c", "", "panes per column as hex digits, e.g. \"12\" (default: one column per file)")
	f.String(config.KeyFG, "", "foreground colour: black, red, green, yellow, blue, magenta, cyan, white")
	f.String(config.KeyBG, "", "background colour, same names as --fg")
	f.IntP(config.KeyInterval, "t", config.DefaultInterval, "refresh interval in seconds")
	f.BoolP(config.KeyMillis, "m", false, "read -t as milliseconds")
	f.BoolP(config.KeyNumbers, "n", false, "show line numbers")
	f.BoolP(config.KeyFold, "f", false, "fold long lines instead of truncating them")
	f.BoolP(config.KeyRotate, "r", false, "lay panes out in rows instead of columns")
	f.Bool(config.KeyNoBlink, false, "do not highlight changed lines")
	f.Bool(config.KeyUseDelay, false, "stagger the first refresh of each pane")
	f.Bool(config.KeyDebug, false, "write a debug log (see "+config.LogDirEnv+")")
	f.StringVar(&c.cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/texeltail/config.yaml)")
	f.StringVar(&c.panicLog, "panic-log", "", "file to append panic stack traces to")
	f.BoolVarP(&c.showVersion, "version", "v", false, "print the version and exit")

	defaultHelp := cmd.HelpFunc()
	cmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		defaultHelp(cmd, args)
		c.helpShown = true
	})
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		_ = cmd.Usage()
		return err
	})
	return cmd, c
}

func (c *cli) runE(cmd *cobra.Command, args []string) error {
	if c.showVersion {
		fmt.Fprintf(cmd.OutOrStdout(), "texeltail %s\n", version)
		return errShown
	}
	if len(args) == 0 {
		_ = cmd.Usage()
		return config.ErrNoFiles
	}

	v, err := config.New(cmd.Flags(), c.cfgFile)
	if err != nil {
		return err
	}
	opts, err := config.Load(v, args)
	if err != nil {
		_ = cmd.Usage()
		return err
	}

	if opts.Debug {
		cleanup, err := startDebugLog()
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "debug log disabled: %v\n", err)
		} else {
			defer cleanup()
		}
	}
	logging.Debug(logging.CatConfig, "options",
		"files", opts.Files, "layout", opts.Layout, "rotate", opts.Rotate,
		"fg", opts.FG.String(), "bg", opts.BG.String(), "interval", opts.Interval,
		"numbers", opts.LineNumbers, "fold", opts.Fold, "noblink", opts.NoBlink,
		"usedelay", opts.UseDelay, "config", opts.ConfigFile)

	err = c.run(cmd.Context(), tailrt.Options{
		Config:   opts,
		Term:     os.Getenv("TERM"),
		PanicLog: c.panicLog,
	})
	if err != nil {
		_ = cmd.Usage()
	}
	return err
}

func startDebugLog() (func(), error) {
	path, err := config.LogPath()
	if err != nil {
		return nil, err
	}
	cleanup, err := logging.Init(path)
	if err != nil {
		return nil, err
	}
	logging.Info(logging.CatConfig, "texeltail starting", "version", version, "log", path)
	return cleanup, nil
}

// execute runs the command line and returns the process exit status.
func execute(args []string, stdout, stderr io.Writer, run runFunc) int {
	cmd, c := newRootCmd(stdout, stderr, run)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	switch {
	case errors.Is(err, errShown):
		return 1
	case err != nil:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	case c.helpShown:
		return 1
	}
	return 0
}
