// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/runtime/tail/app.go
// Summary: Wires screen, watcher, registry and scheduler into one run.
// Usage: cmd/texeltail calls Run once options are parsed.
// Notes: The control loop and the signal forwarder run in one errgroup; the
//   scheduler's tasks are joined after both have returned.

package tailruntime

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"github.com/framegrace/texeltail/config"
	"github.com/framegrace/texeltail/internal/logging"
	"github.com/framegrace/texeltail/internal/watcher"
	"github.com/framegrace/texeltail/texel"
)

// KeyTimeout bounds each key read so the control loop notices interrupts.
const KeyTimeout = 500 * time.Millisecond

// Options configures a run. Zero values select the production backends.
type Options struct {
	Config   *config.Options
	Term     string              // $TERM, picks the highlight attribute
	Screen   texel.Screen        // chosen from stdout when nil
	Notifier texel.Notifier      // fsnotify watcher when nil
	Clock    clockwork.Clock     // wall clock when nil
	Signals  <-chan os.Signal    // process signals when nil
	PanicLog string
}

// Run shows the dashboard until the user quits, a terminating signal
// arrives or the terminal fails. A layout that does not fit the terminal is
// returned as a *texel.LayoutError before anything runs.
func Run(ctx context.Context, opts Options) error {
	if opts.Config == nil {
		return errors.New("tail runtime: no options")
	}
	cfg := opts.Config

	screen := opts.Screen
	if screen == nil {
		var err error
		if screen, err = openScreen(); err != nil {
			return fmt.Errorf("open screen: %w", err)
		}
	}
	defer screen.Fini()

	panics := NewPanicLogger(opts.PanicLog, screen.Fini)
	defer panics.Recover("run")

	notifier := opts.Notifier
	if notifier == nil {
		w, err := watcher.New()
		if err != nil {
			logging.Warn(logging.CatWatcher, "file watching disabled", "error", err)
		} else {
			defer w.Close()
			notifier = w
		}
	}

	// tcell reports resizes itself; only the plain backend needs SIGWINCH.
	_, forwardResize := screen.(*texel.StdoutScreen)
	sigs := opts.Signals
	if sigs == nil {
		ch, stop := notifySignals(forwardResize)
		defer stop()
		sigs = ch
	}

	sched := texel.NewScheduler(opts.Clock)
	reg := texel.NewRegistry(screen, sched)
	reg.Events().Subscribe(texel.ListenerFunc(func(e texel.Event) {
		logging.Debug(logging.CatPane, "registry event", "type", e.Type.String(), "payload", e.Payload)
	}))

	if err := setup(reg, screen, cfg, opts.Term, notifier); err != nil {
		return err
	}
	defer func() {
		if err := reg.Close(); err != nil {
			logging.Debug(logging.CatPane, "pane cleanup", "error", err)
		}
	}()

	handles := sched.Start(reg, notifier, cfg.Scheduler())
	defer sched.Stop(handles)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var g errgroup.Group
	g.Go(panics.Wrap("control", func() error {
		defer cancel()
		return controlLoop(ctx, reg, screen)
	}))
	g.Go(panics.Wrap("signals", func() error {
		forwardSignals(ctx, reg, sigs, forwardResize)
		return nil
	}))
	return g.Wait()
}

func openScreen() (texel.Screen, error) {
	fd := os.Stdout.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		logging.Info(logging.CatScreen, "using terminal backend")
		return texel.NewTcellScreen()
	}
	logging.Info(logging.CatScreen, "using plain stdout backend")
	return texel.NewStdoutScreen(os.Stdout, int(fd)), nil
}

func setup(reg *texel.Registry, screen texel.Screen, cfg *config.Options, term string, notifier texel.Notifier) error {
	lock := reg.State()
	lock.Lock()
	defer lock.Unlock()

	rows, cols := screen.Size()
	logging.Debug(logging.CatLayout, "terminal", "rows", rows, "cols", cols,
		"layout", cfg.Layout, "rotate", cfg.Rotate, "panes", texel.PaneCount(cfg.Layout))
	if err := reg.Build(rows, cols, cfg.Layout, cfg.Rotate, cfg.Theme(term)); err != nil {
		return err
	}
	reg.AttachFiles(cfg.Files, notifier)
	return nil
}

// controlLoop reads keys without holding the state lock and dispatches them.
// Screen failures end the run the same way an interrupt does.
func controlLoop(ctx context.Context, reg *texel.Registry, screen texel.Screen) error {
	for !reg.IsInterrupted() {
		if ctx.Err() != nil {
			break
		}
		key, err := screen.ReadKey(KeyTimeout)
		if errors.Is(err, texel.ErrNoKey) {
			continue
		}
		if err == nil {
			err = reg.Dispatch(key)
		}
		if err != nil {
			logging.ErrorErr(logging.CatInput, "input failed, shutting down", err)
			interrupt(reg)
			break
		}
	}
	logging.Info(logging.CatInput, "control loop done")
	return nil
}

func interrupt(reg *texel.Registry) {
	reg.MarkInterrupted()
	lock := reg.State()
	lock.Lock()
	lock.Broadcast()
	lock.Unlock()
}

// forwardSignals turns SIGWINCH into a resize key when resize is set and any
// other signal into an interrupt.
func forwardSignals(ctx context.Context, reg *texel.Registry, sigs <-chan os.Signal, resize bool) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigs:
			if !ok {
				return
			}
			logging.Debug(logging.CatInput, "signal", "signal", sig.String())
			if sig == syscall.SIGWINCH {
				if !resize {
					continue
				}
				if err := reg.Dispatch(texel.Key{Code: texel.KeyResize}); err != nil {
					logging.Warn(logging.CatLayout, "resize failed", "error", err)
				}
				continue
			}
			interrupt(reg)
			return
		}
	}
}
