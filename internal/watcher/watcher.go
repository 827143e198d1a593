// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/watcher/watcher.go
// Summary: fsnotify-backed file-change notification with watch handles.
// Usage: The scheduler's watcher task calls Poll; panes register with Watch.

// Package watcher turns fsnotify events into per-file notifications keyed by
// a small integer handle. Files are watched through their parent directory so
// that rotation (rename + create) keeps being reported for the same path.
package watcher

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

var (
	// ErrWouldBlock is returned by Poll when no event arrived in time.
	ErrWouldBlock = errors.New("watcher: no pending events")
	// ErrClosed is returned when operations are called on a closed Watcher.
	ErrClosed = errors.New("watcher: watcher is closed")
)

// Handle identifies one Watch registration.
type Handle int

// Op is a bit set of file operations.
type Op uint32

const (
	Create Op = 1 << iota
	Write
	Remove
	Rename
	Chmod
)

func (o Op) Has(x Op) bool { return o&x != 0 }

func (o Op) String() string {
	var s string
	for _, n := range []struct {
		op   Op
		name string
	}{{Create, "CREATE"}, {Write, "WRITE"}, {Remove, "REMOVE"}, {Rename, "RENAME"}, {Chmod, "CHMOD"}} {
		if o.Has(n.op) {
			if s != "" {
				s += "|"
			}
			s += n.name
		}
	}
	if s == "" {
		return "NONE"
	}
	return s
}

func opFromFsnotify(op fsnotify.Op) Op {
	var o Op
	if op.Has(fsnotify.Create) {
		o |= Create
	}
	if op.Has(fsnotify.Write) {
		o |= Write
	}
	if op.Has(fsnotify.Remove) {
		o |= Remove
	}
	if op.Has(fsnotify.Rename) {
		o |= Rename
	}
	if op.Has(fsnotify.Chmod) {
		o |= Chmod
	}
	return o
}

// Event is a change on a watched file.
type Event struct {
	Handle Handle
	Path   string
	Op     Op
}

// eventBuffer sizes fsnotify's event queue so bursts in busy directories do
// not stall its reader.
const eventBuffer = 256

// Watcher watches individual files for changes.
//
// A background goroutine drains fsnotify continuously, drops events for
// files nobody watches and coalesces the rest per handle, so Poll only ever
// sees pending changes of watched files.
type Watcher struct {
	fsw *fsnotify.Watcher

	mu      sync.Mutex
	next    Handle
	handles map[string]Handle // absolute file path -> handle
	dirs    map[string]int    // watched directory -> number of files in it
	pending []Event
	err     error
	closed  bool

	ready chan struct{} // signalled when pending or err changes
	done  chan struct{} // closed when the drain goroutine returns
}

// New creates a Watcher.
func New() (*Watcher, error) {
	fsw, err := fsnotify.NewBufferedWatcher(eventBuffer)
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	w := &Watcher{
		fsw:     fsw,
		next:    1,
		handles: make(map[string]Handle),
		dirs:    make(map[string]int),
		ready:   make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.drain()
	return w, nil
}

// Watch registers path and returns its handle. Watching the same path twice
// returns the existing handle.
func (w *Watcher) Watch(path string) (Handle, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, err
	}
	abs = filepath.Clean(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return 0, ErrClosed
	}
	if h, ok := w.handles[abs]; ok {
		return h, nil
	}

	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return 0, fmt.Errorf("watching directory %s: %w", dir, err)
		}
	}
	w.dirs[dir]++

	h := w.next
	w.next++
	w.handles[abs] = h
	return h, nil
}

// Poll returns every pending event for watched files. With a positive timeout
// it waits up to timeout for one to arrive; otherwise it returns at once.
// ErrWouldBlock means nothing relevant was pending.
func (w *Watcher) Poll(timeout time.Duration) ([]Event, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}
	for {
		events, ok, err := w.take()
		if ok {
			return events, err
		}
		if expired == nil {
			return nil, ErrWouldBlock
		}
		select {
		case <-w.ready:
		case <-w.done:
			return nil, ErrClosed
		case <-expired:
			return nil, ErrWouldBlock
		}
	}
}

// take hands out pending events first and a pending error after them.
func (w *Watcher) take() ([]Event, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case w.closed:
		return nil, true, ErrClosed
	case len(w.pending) > 0:
		out := w.pending
		w.pending = nil
		return out, true, nil
	case w.err != nil:
		err := w.err
		w.err = nil
		return nil, true, err
	}
	return nil, false, nil
}

func (w *Watcher) drain() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.record(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.mu.Lock()
			if w.err == nil {
				w.err = err
			}
			w.mu.Unlock()
			w.signal()
		}
	}
}

func (w *Watcher) record(ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)
	op := opFromFsnotify(ev.Op)

	w.mu.Lock()
	h, ok := w.handles[path]
	if !ok {
		w.mu.Unlock()
		return
	}
	merged := false
	for i := range w.pending {
		if w.pending[i].Handle == h {
			w.pending[i].Op |= op
			merged = true
			break
		}
	}
	if !merged {
		w.pending = append(w.pending, Event{Handle: h, Path: path, Op: op})
	}
	w.mu.Unlock()
	w.signal()
}

func (w *Watcher) signal() {
	select {
	case w.ready <- struct{}{}:
	default:
	}
}

// Paths returns the watched file paths by handle.
func (w *Watcher) Paths() map[Handle]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[Handle]string, len(w.handles))
	for p, h := range w.handles {
		out[h] = p
	}
	return out
}

// Close stops watching everything.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()
	err := w.fsw.Close()
	<-w.done
	return err
}
