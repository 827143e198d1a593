// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/dispatcher.go
// Summary: Key bindings and registry change notifications.
// Usage: The control loop hands every key to Registry.Dispatch; listeners
//   subscribe to Registry.Events for focus and layout changes.

package texel

import (
	"errors"
	"sync"

	"github.com/framegrace/texeltail/internal/logging"
)

// EventType defines the type of an event.
type EventType int

const (
	EventFocusChanged EventType = iota // Payload: pane index
	EventLayoutRebuilt                 // Payload: pane count
	EventPaneAttached                  // Payload: pane index
	EventQuitRequested
)

func (t EventType) String() string {
	switch t {
	case EventFocusChanged:
		return "focus"
	case EventLayoutRebuilt:
		return "layout"
	case EventPaneAttached:
		return "attach"
	case EventQuitRequested:
		return "quit"
	}
	return "unknown"
}

// Event represents a message passed through the system.
type Event struct {
	Type    EventType
	Payload interface{}
}

// Listener is an interface that any component can implement to receive events.
type Listener interface {
	OnEvent(event Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event)

func (f ListenerFunc) OnEvent(e Event) { f(e) }

// EventDispatcher manages a list of listeners and broadcasts events to them.
type EventDispatcher struct {
	mu        sync.RWMutex
	listeners []Listener
}

// NewEventDispatcher creates a new dispatcher.
func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{
		listeners: make([]Listener, 0),
	}
}

// Subscribe adds a new listener to receive events.
func (d *EventDispatcher) Subscribe(listener Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, listener)
}

// Broadcast sends an event to all subscribed listeners. Listeners run with
// the state lock held and must not call back into the registry.
func (d *EventDispatcher) Broadcast(event Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, l := range d.listeners {
		l.OnEvent(event)
	}
}

// Dispatch applies one key under the state lock and then wakes every waiting
// task, so repaints observe the new state. Only screen failures are returned;
// a layout that no longer fits is logged and the old layout is kept.
func (r *Registry) Dispatch(key Key) error {
	lock := r.State()
	lock.Lock()
	defer lock.Unlock()

	err := r.apply(key)
	lock.Broadcast()
	return err
}

func (r *Registry) apply(key Key) error {
	logging.Debug(logging.CatInput, "key", "key", key.String(), "focused", r.focused)

	rows, _ := r.screen.Size()
	switch {
	case key.Code == KeyResize || key.Code == KeyCtrlL:
		if err := r.Rebuild(); err != nil {
			var lerr *LayoutError
			if errors.As(err, &lerr) {
				logging.Warn(logging.CatLayout, "rebuild skipped", "error", lerr)
				return nil
			}
			return err
		}
	case key.Code == KeyLeft || key.is('h'):
		r.FocusPrev()
	case key.Code == KeyRight || key.is('l'):
		r.FocusNext()
	case key.Code == KeyHome || key.is('0'):
		r.scroll(func(v *Viewport) { v.ScrollHome() })
	case key.Code == KeyEnd || key.is('$'):
		r.scroll(func(v *Viewport) { v.ScrollEnd() })
	case key.Code == KeyUp || key.is('k'):
		r.scrollBy(-1)
	case key.Code == KeyDown || key.is('j'):
		r.scrollBy(1)
	case key.Code == KeyPgUp || key.Code == KeyCtrlB:
		r.scrollBy(-rows)
	case key.Code == KeyPgDn || key.Code == KeyCtrlF:
		r.scrollBy(rows)
	case key.Code == KeyCtrlU:
		r.scrollBy(-rows / 2)
	case key.Code == KeyCtrlD:
		r.scrollBy(rows / 2)
	case key.Code == KeyCtrlC || key.is('q'):
		r.MarkInterrupted()
		r.events.Broadcast(Event{Type: EventQuitRequested})
	}
	return nil
}

func (k Key) is(r rune) bool { return k.Code == KeyRune && k.Rune == r }

func (r *Registry) scroll(fn func(*Viewport)) {
	if v := r.focusedViewport(); v != nil {
		fn(v)
	}
}

func (r *Registry) scrollBy(delta int) {
	r.scroll(func(v *Viewport) { v.ScrollBy(delta) })
}
