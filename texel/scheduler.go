// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/scheduler.go
// Summary: Background tasks: one file watcher and one repaint loop per pane.
// Usage: Start after the registry is built and files are attached; Stop on
//   shutdown. Tasks block on the shared state lock's condition between runs.

package texel

import (
	"errors"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/framegrace/texeltail/internal/logging"
	"github.com/framegrace/texeltail/internal/watcher"
)

// DefaultPollTimeout is how long the watcher task sleeps between drains.
const DefaultPollTimeout = time.Second

// SchedulerOptions configures the background tasks.
type SchedulerOptions struct {
	Interval    time.Duration // repaint period of every pane
	UseDelay    bool          // stagger each pane's first repaint within Interval
	PollTimeout time.Duration // watcher wait; DefaultPollTimeout when zero
	Repaint     RepaintOptions
}

// Scheduler owns the state lock, the clock and the interrupted flag.
type Scheduler struct {
	clock       clockwork.Clock
	lock        StateLock
	interrupted atomic.Bool
}

// NewScheduler creates a scheduler with a registry-wide CoarseLock.
func NewScheduler(clock clockwork.Clock) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{clock: clock, lock: NewCoarseLock(clock)}
}

// State returns the lock shared by all tasks and the control loop.
func (s *Scheduler) State() StateLock { return s.lock }

// MarkInterrupted sets the shutdown flag. Waiters notice it on their next
// wake-up; call State().Broadcast to wake them now.
func (s *Scheduler) MarkInterrupted() { s.interrupted.Store(true) }

func (s *Scheduler) IsInterrupted() bool { return s.interrupted.Load() }

type task struct {
	name     string
	done     chan struct{}
	repaints atomic.Uint64
}

// Handles tracks started tasks, in start order.
type Handles struct {
	tasks []*task
	panes []*task
}

// Len returns the number of started tasks.
func (h *Handles) Len() int { return len(h.tasks) }

// Running returns the number of tasks that have not returned yet.
func (h *Handles) Running() int {
	n := 0
	for _, t := range h.tasks {
		if !t.finished() {
			n++
		}
	}
	return n
}

func (t *task) finished() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Repaints returns how many times pane i has been repainted.
func (h *Handles) Repaints(i int) uint64 {
	if i < 0 || i >= len(h.panes) {
		return 0
	}
	return h.panes[i].repaints.Load()
}

// Start launches the watcher task (when notifier is non-nil) and one repaint
// task per pane.
func (s *Scheduler) Start(reg *Registry, notifier Notifier, opts SchedulerOptions) *Handles {
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = DefaultPollTimeout
	}
	h := &Handles{}
	if notifier != nil {
		s.spawn(h, "watcher", func(*task) { s.watchLoop(reg, notifier, opts.PollTimeout) })
	}

	reg.State().Lock()
	n := reg.Len()
	reg.State().Unlock()

	for i := 0; i < n; i++ {
		i := i
		t := s.spawn(h, "repaint", func(t *task) { s.repaintLoop(reg, i, t, opts) })
		h.panes = append(h.panes, t)
	}
	logging.Info(logging.CatSched, "tasks started", "count", len(h.tasks), "interval", opts.Interval)
	return h
}

func (s *Scheduler) spawn(h *Handles, name string, fn func(*task)) *task {
	t := &task{name: name, done: make(chan struct{})}
	h.tasks = append(h.tasks, t)
	go func() {
		defer close(t.done)
		fn(t)
	}()
	return t
}

// Stop sets the interrupted flag, wakes every task once and waits for them
// in reverse start order.
func (s *Scheduler) Stop(h *Handles) {
	logging.Debug(logging.CatSched, "stopping", "running", h.Running())
	s.MarkInterrupted()
	s.lock.Lock()
	s.lock.Broadcast()
	s.lock.Unlock()

	for i := len(h.tasks) - 1; i >= 0; i-- {
		<-h.tasks[i].done
		logging.Debug(logging.CatSched, "joined", "task", h.tasks[i].name)
	}
	logging.Info(logging.CatSched, "tasks joined", "count", len(h.tasks))
}

func (s *Scheduler) repaintLoop(reg *Registry, i int, t *task, opts SchedulerOptions) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if opts.UseDelay && opts.Interval > 0 {
		jitter := time.Duration(rand.Int63n(int64(opts.Interval)))
		logging.Debug(logging.CatSched, "first repaint delayed", "pane", i, "delay", jitter)
		s.lock.Wait(jitter)
	}
	for !s.IsInterrupted() {
		if err := reg.Viewport(i).Repaint(opts.Repaint); err != nil {
			logging.Debug(logging.CatPane, "repaint failed", "pane", i, "error", err)
		}
		t.repaints.Add(1)
		s.lock.Wait(opts.Interval)
	}
	logging.Debug(logging.CatSched, "repaint task done", "pane", i, "repaints", t.repaints.Load())
}

func (s *Scheduler) watchLoop(reg *Registry, notifier Notifier, pollTimeout time.Duration) {
	s.lock.Lock()
	defer s.lock.Unlock()

	for !s.IsInterrupted() {
		events, err := notifier.Poll(0)
		switch {
		case errors.Is(err, watcher.ErrWouldBlock):
		case err != nil:
			logging.ErrorErr(logging.CatWatcher, "watcher stopped", err)
			return
		default:
			reg.HandleEvents(events)
		}
		s.lock.Wait(pollTimeout)
	}
	logging.Debug(logging.CatSched, "watcher task done")
}
