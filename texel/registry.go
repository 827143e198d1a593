// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/registry.go
// Summary: Ordered set of panes with focus, watch handles and layout rebuilds.
// Usage: Shared by the control loop and every scheduler task. Every method
//   except Dispatch, Lock and the interrupt accessors expects the caller to
//   hold the state lock.

package texel

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/framegrace/texeltail/internal/logging"
	"github.com/framegrace/texeltail/internal/watcher"
)

// Registry owns the panes. Slot i of the layout is always viewport i.
type Registry struct {
	screen Screen
	sched  *Scheduler

	viewports []*Viewport
	live      []int
	focused   int
	handles   map[watcher.Handle][]int

	// Last layout request; reused when the terminal changes size.
	spec   []int
	rotate bool
	theme  Theme

	events *EventDispatcher
}

// NewRegistry returns an empty registry drawing on screen. Interrupt state
// and the state lock belong to sched.
func NewRegistry(screen Screen, sched *Scheduler) *Registry {
	return &Registry{
		screen:  screen,
		sched:   sched,
		focused: -1,
		handles: make(map[watcher.Handle][]int),
		events:  NewEventDispatcher(),
	}
}

// State returns the lock guarding the registry.
func (r *Registry) State() StateLock { return r.sched.State() }

// Events returns the dispatcher notified of focus and layout changes.
func (r *Registry) Events() *EventDispatcher { return r.events }

func (r *Registry) MarkInterrupted()    { r.sched.MarkInterrupted() }
func (r *Registry) IsInterrupted() bool { return r.sched.IsInterrupted() }

// Len returns the number of panes, live or dead.
func (r *Registry) Len() int { return len(r.viewports) }

// Viewport returns pane i.
func (r *Registry) Viewport(i int) *Viewport { return r.viewports[i] }

// Live returns the indices of panes with an attached file, in layout order.
func (r *Registry) Live() []int { return append([]int(nil), r.live...) }

// Focused returns the focused pane index, or -1.
func (r *Registry) Focused() int { return r.focused }

// Build lays out h x w and places a viewport in every slot. Existing
// viewports are moved in place so their files survive; the pane list only
// ever grows.
func (r *Registry) Build(h, w int, spec []int, rotate bool, theme Theme) error {
	rects, err := Compute(h, w, spec, rotate)
	if err != nil {
		return err
	}
	r.spec = append([]int(nil), spec...)
	r.rotate = rotate
	r.theme = theme

	for i, rect := range rects {
		if i < len(r.viewports) {
			if err := r.viewports[i].Resize(rect, theme); err != nil {
				return err
			}
			continue
		}
		v, err := NewViewport(r.screen, rect, theme)
		if err != nil {
			return err
		}
		r.viewports = append(r.viewports, v)
	}
	for _, i := range r.live {
		if err := r.viewports[i].Update(); err != nil {
			logging.Warn(logging.CatBuffer, "rescan after rebuild failed", "pane", i, "error", err)
		}
	}
	logging.Debug(logging.CatLayout, "layout built",
		"rows", h, "cols", w, "spec", spec, "rotate", rotate, "panes", len(rects))
	r.events.Broadcast(Event{Type: EventLayoutRebuilt, Payload: len(rects)})
	return nil
}

// Rebuild repeats the last Build for the current terminal size. A layout
// that no longer fits leaves the screen and the panes untouched.
func (r *Registry) Rebuild() error {
	rows, cols := r.screen.Size()
	if _, err := Compute(rows, cols, r.spec, r.rotate); err != nil {
		return err
	}
	if err := r.screen.Clear(); err != nil {
		return err
	}
	return r.Build(rows, cols, r.spec, r.rotate, r.theme)
}

// AttachFiles attaches paths[i] to pane i. Paths that are not regular files,
// or that have no pane, are logged and skipped; their panes stay dead. When
// notifier is non-nil each attached file is watched for changes. The first
// live pane receives focus if nothing is focused yet.
func (r *Registry) AttachFiles(paths []string, notifier Notifier) {
	for i, path := range paths {
		if i >= len(r.viewports) {
			logging.Warn(logging.CatPane, "no pane for file", "path", path, "index", i)
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			logging.Warn(logging.CatPane, "cannot stat file", "path", path, "error", err)
			continue
		}
		if !info.Mode().IsRegular() {
			logging.Warn(logging.CatPane, "not a regular file", "path", path, "mode", info.Mode().String())
			continue
		}
		v := r.viewports[i]
		if err := v.Attach(path); err != nil {
			logging.Warn(logging.CatPane, "attach failed", "path", path, "error", err)
			continue
		}
		r.live = append(r.live, i)
		r.events.Broadcast(Event{Type: EventPaneAttached, Payload: i})

		if notifier == nil {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		h, err := notifier.Watch(abs)
		if err != nil {
			logging.Warn(logging.CatWatcher, "watch failed", "path", abs, "error", err)
			continue
		}
		r.handles[h] = append(r.handles[h], i)
		logging.Debug(logging.CatWatcher, "watching", "path", abs, "handle", int(h), "pane", i)
	}
	if r.focused < 0 {
		r.FocusNext()
	}
}

// HandleEvents refreshes the panes named by file-change events.
func (r *Registry) HandleEvents(events []watcher.Event) {
	for _, ev := range events {
		panes, ok := r.handles[ev.Handle]
		if !ok {
			continue
		}
		logging.Debug(logging.CatWatcher, "change", "path", ev.Path, "op", ev.Op.String(), "panes", panes)
		for _, i := range panes {
			if err := r.viewports[i].Update(); err != nil {
				logging.Warn(logging.CatBuffer, "rescan failed", "pane", i, "path", ev.Path, "error", err)
			}
		}
	}
}

// FocusNext moves focus to the next live pane, wrapping around.
func (r *Registry) FocusNext() { r.moveFocus(1) }

// FocusPrev moves focus to the previous live pane, wrapping around.
func (r *Registry) FocusPrev() { r.moveFocus(-1) }

func (r *Registry) moveFocus(step int) {
	n := len(r.live)
	if n == 0 {
		return
	}
	pos := -1
	for p, i := range r.live {
		if i == r.focused {
			pos = p
			break
		}
	}
	var next int
	switch {
	case pos >= 0:
		next = r.live[((pos+step)%n+n)%n]
	case step > 0:
		next = r.live[0]
	default:
		next = r.live[n-1]
	}
	r.setFocus(next)
}

func (r *Registry) setFocus(i int) {
	if r.focused == i {
		return
	}
	if r.focused >= 0 {
		if err := r.viewports[r.focused].SetFocus(false); err != nil {
			logging.Debug(logging.CatPane, "unfocus failed", "pane", r.focused, "error", err)
		}
	}
	r.focused = i
	if err := r.viewports[i].SetFocus(true); err != nil {
		logging.Debug(logging.CatPane, "focus failed", "pane", i, "error", err)
	}
	r.events.Broadcast(Event{Type: EventFocusChanged, Payload: i})
}

// focusedViewport returns the focused pane, or nil.
func (r *Registry) focusedViewport() *Viewport {
	if r.focused < 0 {
		return nil
	}
	return r.viewports[r.focused]
}

// Close releases every pane.
func (r *Registry) Close() error {
	var errs []error
	for _, v := range r.viewports {
		errs = append(errs, v.Delete())
	}
	r.viewports = nil
	r.live = nil
	r.focused = -1
	return errors.Join(errs...)
}
