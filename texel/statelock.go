// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/statelock.go
// Summary: Lock plus broadcast condition guarding all pane state.
// Notes: One lock covers the whole registry. Callers only see the StateLock
//   interface so a per-pane implementation can replace it later.

package texel

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// StateLock is a mutex with a single broadcast condition.
type StateLock interface {
	Lock()
	Unlock()
	// Wait releases the lock, blocks until Broadcast or until timeout elapses,
	// then reacquires the lock. It reports whether it was woken by Broadcast.
	// The caller must hold the lock.
	Wait(timeout time.Duration) bool
	// Broadcast wakes every waiter.
	Broadcast()
}

// CoarseLock is the registry-wide StateLock.
type CoarseLock struct {
	mu    sync.Mutex
	clock clockwork.Clock

	genMu sync.Mutex
	gen   chan struct{}
}

// NewCoarseLock measures wait timeouts against clock.
func NewCoarseLock(clock clockwork.Clock) *CoarseLock {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CoarseLock{clock: clock, gen: make(chan struct{})}
}

func (l *CoarseLock) Lock()   { l.mu.Lock() }
func (l *CoarseLock) Unlock() { l.mu.Unlock() }

func (l *CoarseLock) generation() chan struct{} {
	l.genMu.Lock()
	defer l.genMu.Unlock()
	return l.gen
}

func (l *CoarseLock) Wait(timeout time.Duration) bool {
	// Grab the generation before unlocking so a Broadcast issued between
	// Unlock and the select is not missed.
	gen := l.generation()
	timer := l.clock.NewTimer(timeout)
	l.mu.Unlock()
	defer l.mu.Lock()

	select {
	case <-gen:
		timer.Stop()
		return true
	case <-timer.Chan():
		return false
	}
}

func (l *CoarseLock) Broadcast() {
	l.genMu.Lock()
	close(l.gen)
	l.gen = make(chan struct{})
	l.genMu.Unlock()
}
