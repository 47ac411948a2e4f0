package undo

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/blockundo/internal/config"
	"github.com/bethropolis/blockundo/internal/event"
	"github.com/bethropolis/blockundo/internal/host"
	"github.com/bethropolis/blockundo/internal/types"
)

func para(id string) types.Block {
	return types.Block{ID: id, Type: "paragraph", Data: types.Data{"text": id}}
}

// attach returns a plugin bound to a Memory host whose debounce never fires on
// its own; tests call Flush to deliver changes.
func attach(t *testing.T, opts Options, initial ...types.Block) (*Undo, *host.Memory) {
	t.Helper()
	if opts.DebounceTimer == 0 {
		opts.DebounceTimer = time.Hour
	}
	if opts.CaretRestoreDelay == 0 {
		opts.CaretRestoreDelay = -1
	}
	if opts.Shortcuts.Undo == nil {
		opts.Shortcuts = Shortcuts{Undo: []string{"ALT+U"}, Redo: []string{"ALT+R", "ALT+SHIFT+U"}}
	}
	h := host.NewMemory(initial)
	p := New(opts)
	p.InitializeState(initial)
	require.NoError(t, p.Initialize(h))
	t.Cleanup(func() { _ = p.Shutdown() })
	return p, h
}

func alt(r rune, mods ...tcell.ModMask) *tcell.EventKey {
	mod := tcell.ModAlt
	for _, m := range mods {
		mod |= m
	}
	return tcell.NewEventKey(tcell.KeyRune, r, mod)
}

func TestNameAndCapability(t *testing.T) {
	p := New(Options{})
	assert.Equal(t, "undo", p.Name())
	assert.True(t, p.IsReadOnlySupported())
	assert.True(t, ReadOnlySupported)
}

func TestOperationsBeforeInitializeAreNoops(t *testing.T) {
	p := New(Options{})
	ctx := context.Background()

	assert.NoError(t, p.Undo(ctx))
	assert.NoError(t, p.Redo(ctx))
	assert.False(t, p.CanUndo())
	assert.False(t, p.CanRedo())
	assert.Zero(t, p.Count())
	assert.False(t, p.Flush())
	assert.NoError(t, p.Shutdown())
}

func TestRecordsDebouncedChanges(t *testing.T) {
	p, h := attach(t, Options{}, para("a"))
	assert.Zero(t, p.Count())

	h.Edit(types.Snapshot{para("a"), para("b")})
	h.Edit(types.Snapshot{para("a"), para("b"), para("c")})
	require.True(t, p.Flush())

	assert.Equal(t, 1, p.Count(), "one burst, one entry")
	assert.True(t, p.CanUndo())
}

func TestDebounceFiresOnItsOwn(t *testing.T) {
	p, h := attach(t, Options{DebounceTimer: 10 * time.Millisecond}, para("a"))

	h.Edit(types.Snapshot{para("a"), para("b")})
	assert.Eventually(t, func() bool { return p.Count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestShortcutsDriveUndoRedo(t *testing.T) {
	p, h := attach(t, Options{}, para("a"))
	h.Edit(types.Snapshot{para("a"), para("b")})
	p.Flush()

	h.PressKey(alt('u'))
	assert.Equal(t, []string{"a"}, h.Snapshot().IDs())
	p.Flush() // the undo's own mutations are not recorded
	assert.Equal(t, 1, p.Count())

	h.PressKey(alt('U', tcell.ModShift))
	assert.Equal(t, []string{"a", "b"}, h.Snapshot().IDs(), "three-key chord resolves to redo")

	h.PressKey(alt('x'))
	assert.Equal(t, 1, p.Position())
}

func TestReadOnlyEvents(t *testing.T) {
	p, h := attach(t, Options{}, para("a"))
	h.Edit(types.Snapshot{para("a"), para("b")})
	p.Flush()

	h.SetReadOnly(true)
	assert.False(t, p.CanUndo())
	h.PressKey(alt('u'))
	assert.Equal(t, []string{"a", "b"}, h.Snapshot().IDs())

	h.Edit(types.Snapshot{para("a")})
	p.Flush()
	assert.Equal(t, 1, p.Count(), "changes are not recorded while read-only")

	h.SetReadOnly(false)
	assert.True(t, p.CanUndo())
}

func TestInitialReadOnlyState(t *testing.T) {
	h := host.NewMemory(types.Snapshot{para("a")})
	h.SetReadOnly(true)
	p := New(Options{DebounceTimer: time.Hour})
	require.NoError(t, p.Initialize(h))
	defer p.Shutdown()

	h.Edit(types.Snapshot{para("a"), para("b")})
	p.Flush()
	assert.Zero(t, p.Count())
}

func TestHostDestroyDetaches(t *testing.T) {
	p, h := attach(t, Options{}, para("a"))
	events := h.Events()
	require.Equal(t, 1, events.HandlerCount(event.TypeKeyPressed))

	h.Destroy()

	assert.Zero(t, events.HandlerCount(event.TypeKeyPressed))
	assert.Zero(t, events.HandlerCount(event.TypeBlocksMutated))
	assert.Zero(t, events.HandlerCount(event.TypeReadOnlyChanged))
	assert.Zero(t, events.HandlerCount(event.TypeHostDestroyed))

	h.Edit(types.Snapshot{para("a"), para("b")})
	assert.False(t, p.Flush())
	assert.Zero(t, p.Count())
}

func TestOnUpdateAndHistoryEvent(t *testing.T) {
	var calls atomic.Int32
	p, h := attach(t, Options{OnUpdate: func() { calls.Add(1) }}, para("a"))

	var last event.HistoryUpdatedData
	h.SubscribeEvent(event.TypeHistoryUpdated, func(ev event.Event) bool {
		last = ev.Data.(event.HistoryUpdatedData)
		return false
	})

	h.Edit(types.Snapshot{para("a"), para("b")})
	p.Flush()
	assert.Equal(t, event.HistoryUpdatedData{Position: 1, Count: 1, CanUndo: true}, last)

	require.NoError(t, p.Undo(context.Background()))
	assert.Equal(t, event.HistoryUpdatedData{Position: 0, Count: 1, CanRedo: true}, last)

	p.Clear()
	assert.Equal(t, event.HistoryUpdatedData{}, last)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDeferredCaretRestore(t *testing.T) {
	p, h := attach(t, Options{CaretRestoreDelay: 5 * time.Millisecond}, para("a"))
	h.Focus(0, 1)
	h.Edit(types.Snapshot{para("a"), para("b")})
	p.Flush()
	h.Focus(1, host.CaretEnd)
	h.Edit(types.Snapshot{para("a"), para("b"), para("c")})
	p.Flush()

	require.NoError(t, p.Undo(context.Background()))
	p.Wait()
	idx, offset := h.Caret()
	assert.Equal(t, 0, idx)
	assert.Equal(t, 1, offset)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.NewDefaultConfig()
	opts := OptionsFromConfig(cfg)

	assert.Equal(t, 30, opts.MaxLength)
	assert.Equal(t, 200*time.Millisecond, opts.DebounceTimer)
	assert.Equal(t, 50*time.Millisecond, opts.CaretRestoreDelay)
	assert.Equal(t, []string{"CMD+Y", "CMD+SHIFT+Z"}, opts.Shortcuts.Redo)

	cfg.Undo.CaretRestoreDelay = 0
	assert.Equal(t, time.Duration(0), OptionsFromConfig(cfg).withDefaults().CaretRestoreDelay, "0 in the config restores synchronously")
}
