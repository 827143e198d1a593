// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/registry_test.go
// Summary: Pane registry layout, focus navigation and key dispatch.

package texel

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framegrace/texeltail/internal/watcher"
)

type fakeNotifier struct {
	mu      sync.Mutex
	next    watcher.Handle
	handles map[string]watcher.Handle
	pending []watcher.Event
	err     error
	polls   int
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{handles: make(map[string]watcher.Handle)}
}

func (n *fakeNotifier) Watch(path string) (watcher.Handle, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if h, ok := n.handles[path]; ok {
		return h, nil
	}
	n.next++
	n.handles[path] = n.next
	return n.next, nil
}

func (n *fakeNotifier) Poll(time.Duration) ([]watcher.Event, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.polls++
	if n.err != nil {
		return nil, n.err
	}
	if len(n.pending) == 0 {
		return nil, watcher.ErrWouldBlock
	}
	out := n.pending
	n.pending = nil
	return out, nil
}

func (n *fakeNotifier) push(path string, op watcher.Op) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending = append(n.pending, watcher.Event{Handle: n.handles[path], Path: path, Op: op})
}

func (n *fakeNotifier) pollCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.polls
}

type registryFixture struct {
	reg   *Registry
	sim   tcell.SimulationScreen
	clock clockwork.FakeClock
	files []string
}

func newRegistryFixture(t *testing.T, cols, rows int, spec []int, files ...[]string) *registryFixture {
	t.Helper()
	scr, sim := newSimScreen(t, cols, rows)
	clock := clockwork.NewFakeClock()
	reg := NewRegistry(scr, NewScheduler(clock))
	require.NoError(t, reg.Build(rows, cols, spec, false, DefaultTheme()))

	dir := t.TempDir()
	var paths []string
	for i, lines := range files {
		p := filepath.Join(dir, fmt.Sprintf("f%d.log", i))
		writeFile(t, p, lines...)
		paths = append(paths, p)
	}
	return &registryFixture{reg: reg, sim: sim, clock: clock, files: paths}
}

func numbered(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("line %d", i+1)
	}
	return out
}

func TestRegistryTwelveScenario(t *testing.T) {
	fx := newRegistryFixture(t, 120, 40, []int{1, 2}, []string{"a"}, []string{"b"})
	reg := fx.reg
	require.Equal(t, 3, reg.Len())
	assert.Equal(t, Rect{Y: 0, X: 0, H: 40, W: 60}, reg.Viewport(0).Rect())
	assert.Equal(t, Rect{Y: 0, X: 60, H: 20, W: 60}, reg.Viewport(1).Rect())
	assert.Equal(t, Rect{Y: 20, X: 60, H: 20, W: 60}, reg.Viewport(2).Rect())

	reg.AttachFiles(fx.files, nil)
	require.Equal(t, []int{0, 1}, reg.Live())
	require.Equal(t, 0, reg.Focused())
	assert.True(t, reg.Viewport(0).Focused())

	require.NoError(t, reg.Dispatch(Key{Code: KeyRight}))
	assert.Equal(t, 1, reg.Focused())
	assert.False(t, reg.Viewport(0).Focused())
	assert.True(t, reg.Viewport(1).Focused())

	require.NoError(t, reg.Dispatch(RuneKey('l')))
	assert.Equal(t, 0, reg.Focused())

	require.NoError(t, reg.Dispatch(RuneKey('h')))
	assert.Equal(t, 1, reg.Focused())
	require.NoError(t, reg.Dispatch(Key{Code: KeyLeft}))
	assert.Equal(t, 0, reg.Focused())
}

func TestRegistryFocusSkipsDeadPanes(t *testing.T) {
	fx := newRegistryFixture(t, 90, 10, []int{1, 1, 1}, []string{"a"}, []string{"b"}, []string{"c"})
	paths := []string{fx.files[0], t.TempDir(), fx.files[2]}
	fx.reg.AttachFiles(paths, nil)

	require.Equal(t, []int{0, 2}, fx.reg.Live())
	assert.True(t, fx.reg.Viewport(1).IsDead())

	fx.reg.FocusNext()
	assert.Equal(t, 2, fx.reg.Focused())
	fx.reg.FocusNext()
	assert.Equal(t, 0, fx.reg.Focused())
	fx.reg.FocusPrev()
	assert.Equal(t, 2, fx.reg.Focused())
}

func TestRegistryFocusCycle(t *testing.T) {
	files := [][]string{{"a"}, {"b"}, {"c"}, {"d"}}
	fx := newRegistryFixture(t, 80, 20, []int{2, 2}, files...)
	fx.reg.AttachFiles(fx.files, nil)
	n := len(fx.reg.Live())
	require.Equal(t, 4, n)

	for start := 0; start < n; start++ {
		orig := fx.reg.Focused()
		for i := 0; i < n; i++ {
			fx.reg.FocusNext()
		}
		assert.Equal(t, orig, fx.reg.Focused())

		fx.reg.FocusNext()
		fx.reg.FocusPrev()
		assert.Equal(t, orig, fx.reg.Focused())
		fx.reg.FocusNext()
	}
}

func TestRegistryFocusWithoutLivePanes(t *testing.T) {
	fx := newRegistryFixture(t, 40, 10, []int{2})
	fx.reg.AttachFiles(nil, nil)
	fx.reg.FocusNext()
	fx.reg.FocusPrev()
	assert.Equal(t, -1, fx.reg.Focused())
	require.NoError(t, fx.reg.Dispatch(RuneKey('j')))
}

func TestRegistryFocusPrevFromNothing(t *testing.T) {
	fx := newRegistryFixture(t, 60, 10, []int{1, 1}, []string{"a"}, []string{"b"})
	for i, p := range fx.files {
		require.NoError(t, fx.reg.Viewport(i).Attach(p))
		fx.reg.live = append(fx.reg.live, i)
	}
	fx.reg.FocusPrev()
	assert.Equal(t, 1, fx.reg.Focused())
}

func TestRegistryAttachSkipsExtraFiles(t *testing.T) {
	fx := newRegistryFixture(t, 40, 10, []int{1}, []string{"a"}, []string{"b"})
	fx.reg.AttachFiles(fx.files, nil)
	assert.Equal(t, []int{0}, fx.reg.Live())
	assert.Equal(t, 1, fx.reg.Len())
}

func TestRegistryDispatchScroll(t *testing.T) {
	fx := newRegistryFixture(t, 80, 40, []int{1}, numbered(100))
	fx.reg.AttachFiles(fx.files, nil)
	v := fx.reg.Viewport(0)

	steps := []struct {
		key  Key
		want int
	}{
		{RuneKey('j'), 1},
		{Key{Code: KeyDown}, 2},
		{RuneKey('k'), 1},
		{Key{Code: KeyUp}, 0},
		{Key{Code: KeyUp}, 0},
		{Key{Code: KeyPgDn}, 40},
		{Key{Code: KeyCtrlF}, 80},
		{Key{Code: KeyCtrlF}, 100},
		{Key{Code: KeyCtrlB}, 60},
		{Key{Code: KeyPgUp}, 20},
		{Key{Code: KeyCtrlD}, 40},
		{Key{Code: KeyCtrlU}, 20},
		{RuneKey('$'), 100},
		{RuneKey('0'), 0},
		{Key{Code: KeyEnd}, 100},
		{Key{Code: KeyHome}, 0},
		{RuneKey('x'), 0},
	}
	for _, s := range steps {
		require.NoError(t, fx.reg.Dispatch(s.key))
		assert.Equal(t, s.want, v.Offset(), "after %s", s.key)
	}
}

func TestRegistryDispatchResizeRebuilds(t *testing.T) {
	fx := newRegistryFixture(t, 120, 40, []int{1, 2}, []string{"a"}, []string{"b"})
	fx.reg.AttachFiles(fx.files, nil)
	fx.reg.Viewport(0).ScrollEnd()

	fx.sim.SetSize(60, 20)
	require.NoError(t, fx.reg.Dispatch(Key{Code: KeyResize}))
	assert.Equal(t, Rect{Y: 0, X: 0, H: 20, W: 30}, fx.reg.Viewport(0).Rect())
	assert.Equal(t, Rect{Y: 10, X: 30, H: 10, W: 30}, fx.reg.Viewport(2).Rect())
	assert.Equal(t, 0, fx.reg.Viewport(0).Offset())
	assert.Equal(t, 3, fx.reg.Len())
	assert.Equal(t, []int{0, 1}, fx.reg.Live())
	assert.True(t, fx.reg.Viewport(0).Focused())

	fx.sim.SetSize(1, 1)
	require.NoError(t, fx.reg.Dispatch(Key{Code: KeyCtrlL}))
	assert.Equal(t, Rect{Y: 0, X: 0, H: 20, W: 30}, fx.reg.Viewport(0).Rect())
}

// fixedSizeScreen reports a chosen terminal size and counts clears.
type fixedSizeScreen struct {
	*TcellScreen
	rows, cols int
	clears     int
}

func (s *fixedSizeScreen) Size() (int, int) { return s.rows, s.cols }

func (s *fixedSizeScreen) Clear() error {
	s.clears++
	return s.TcellScreen.Clear()
}

func TestRegistryRebuildTooSmallKeepsScreen(t *testing.T) {
	scr, sim := newSimScreen(t, 60, 10)
	screen := &fixedSizeScreen{TcellScreen: scr, rows: 10, cols: 60}
	reg := NewRegistry(screen, NewScheduler(clockwork.NewFakeClock()))
	require.NoError(t, reg.Build(10, 60, []int{1, 1, 1}, false, DefaultTheme()))
	reg.AttachFiles([]string{tempFile(t, "a.log", "x")}, nil)

	top := readScreenLine(sim, 0, 0, 60)
	require.NotEmpty(t, top)

	screen.rows, screen.cols = 2, 2
	require.NoError(t, reg.Dispatch(Key{Code: KeyCtrlL}))
	assert.Zero(t, screen.clears, "screen cleared for a layout that does not fit")
	assert.Equal(t, top, readScreenLine(sim, 0, 0, 60))
	assert.Equal(t, Rect{Y: 0, X: 0, H: 10, W: 20}, reg.Viewport(0).Rect())

	screen.rows, screen.cols = 8, 45
	require.NoError(t, reg.Dispatch(Key{Code: KeyCtrlL}))
	assert.Equal(t, 1, screen.clears)
	assert.Equal(t, Rect{Y: 0, X: 0, H: 8, W: 15}, reg.Viewport(0).Rect())
}

func TestRegistryDispatchQuit(t *testing.T) {
	for _, key := range []Key{RuneKey('q'), {Code: KeyCtrlC}} {
		fx := newRegistryFixture(t, 40, 10, []int{1})
		var got []EventType
		fx.reg.Events().Subscribe(ListenerFunc(func(e Event) { got = append(got, e.Type) }))

		require.False(t, fx.reg.IsInterrupted())
		require.NoError(t, fx.reg.Dispatch(key))
		assert.True(t, fx.reg.IsInterrupted())
		assert.Equal(t, []EventType{EventQuitRequested}, got)
	}
}

func TestRegistryDispatchWakesWaiters(t *testing.T) {
	fx := newRegistryFixture(t, 40, 10, []int{1})
	lock := fx.reg.State()

	woke := make(chan bool, 1)
	go func() {
		lock.Lock()
		defer lock.Unlock()
		woke <- lock.Wait(time.Hour)
	}()
	fx.clock.BlockUntil(1)

	require.NoError(t, fx.reg.Dispatch(RuneKey('z')))
	select {
	case w := <-woke:
		assert.True(t, w)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter was not woken by dispatch")
	}
}

func TestRegistryEvents(t *testing.T) {
	fx := newRegistryFixture(t, 60, 10, []int{1, 1}, []string{"a"}, []string{"b"})
	var got []Event
	fx.reg.Events().Subscribe(ListenerFunc(func(e Event) { got = append(got, e) }))

	fx.reg.AttachFiles(fx.files, nil)
	require.Equal(t, []Event{
		{Type: EventPaneAttached, Payload: 0},
		{Type: EventPaneAttached, Payload: 1},
		{Type: EventFocusChanged, Payload: 0},
	}, got)
	assert.Equal(t, "focus", EventFocusChanged.String())
}

func TestRegistryHandleEvents(t *testing.T) {
	fx := newRegistryFixture(t, 60, 10, []int{1, 1}, []string{"a"}, []string{"b"})
	notifier := newFakeNotifier()
	fx.reg.AttachFiles(fx.files, notifier)
	require.Len(t, notifier.handles, 2)

	appendFile(t, fx.files[1], "c", "d")
	abs, err := filepath.Abs(fx.files[1])
	require.NoError(t, err)
	notifier.push(abs, watcher.Write)

	events, err := notifier.Poll(0)
	require.NoError(t, err)
	fx.reg.HandleEvents(events)
	assert.Equal(t, 3, fx.reg.Viewport(1).Buffer().LineCount())
	assert.Equal(t, 1, fx.reg.Viewport(0).Buffer().LineCount())

	fx.reg.HandleEvents([]watcher.Event{{Handle: 99, Op: watcher.Write}})
}

func TestRegistryFollowsRotatedFile(t *testing.T) {
	fx := newRegistryFixture(t, 60, 10, []int{1}, []string{"old 1", "old 2", "old 3"})
	w, err := watcher.New()
	require.NoError(t, err)
	defer w.Close()
	fx.reg.AttachFiles(fx.files, w)
	require.Equal(t, 3, fx.reg.Viewport(0).Buffer().LineCount())

	path := fx.files[0]
	require.NoError(t, os.Rename(path, path+".1"))
	writeFile(t, path, "new 1")
	appendFile(t, path, "new 2")

	b := fx.reg.Viewport(0).Buffer()
	deadline := time.Now().Add(5 * time.Second)
	for !assert.ObjectsAreEqual([]string{"new 1", "new 2"}, bufferTexts(t, b)) {
		require.True(t, time.Now().Before(deadline), "pane never picked up the rotated file: %q", bufferTexts(t, b))
		events, err := w.Poll(200 * time.Millisecond)
		if errors.Is(err, watcher.ErrWouldBlock) {
			continue
		}
		require.NoError(t, err)
		fx.reg.HandleEvents(events)
	}
	assert.Equal(t, 2, b.LineCount())
}

func bufferTexts(t *testing.T, b *LineBuffer) []string {
	t.Helper()
	require.NoError(t, b.Rewind())
	var out []string
	for _, l := range readAll(t, b, false, false) {
		out = append(out, l.Text)
	}
	require.NoError(t, b.Rewind())
	return out
}

func TestRegistryRebuildNeverShrinks(t *testing.T) {
	fx := newRegistryFixture(t, 60, 10, []int{3})
	require.Equal(t, 3, fx.reg.Len())
	require.NoError(t, fx.reg.Build(10, 60, []int{1}, false, DefaultTheme()))
	assert.Equal(t, 3, fx.reg.Len())
	require.NoError(t, fx.reg.Build(10, 60, []int{2, 2}, false, DefaultTheme()))
	assert.Equal(t, 4, fx.reg.Len())
}
