package history

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/blockundo/internal/host"
	"github.com/bethropolis/blockundo/internal/types"
)

func newManager(t *testing.T, initial types.Snapshot, opts Options) (*Manager, *host.Memory) {
	t.Helper()
	h := host.NewMemory(initial)
	m := NewManager(h, opts)
	m.Initialize(initial)
	return m, h
}

// edit changes the live document and records it the way the observer would.
func edit(t *testing.T, m *Manager, h *host.Memory, s types.Snapshot) {
	t.Helper()
	h.Edit(s)
	recorded, err := m.Capture(context.Background())
	require.NoError(t, err)
	require.True(t, recorded)
}

func TestScenarioBaseline(t *testing.T) {
	first := types.Snapshot{{ID: "a", Type: "paragraph", Data: types.Data{"text": "First"}}}
	m, _ := newManager(t, first, Options{})

	assert.Equal(t, 0, m.Count())
	assert.Equal(t, first, m.Entries()[0].State)
	assert.False(t, m.CanUndo())
	assert.False(t, m.CanRedo())
}

func TestScenarioSingleChange(t *testing.T) {
	ctx := context.Background()
	m, h := newManager(t, snap("a"), Options{})

	edit(t, m, h, snap("a", "b"))
	assert.Equal(t, 1, m.Count())

	require.NoError(t, m.Undo(ctx))
	assert.Equal(t, []string{"a"}, h.Snapshot().IDs())
	assert.Equal(t, 0, m.Position())
}

func TestScenarioUndoRedoUndo(t *testing.T) {
	ctx := context.Background()
	m, h := newManager(t, snap("a"), Options{})

	edit(t, m, h, snap("a", "b"))
	_, err := m.Capture(ctx) // nothing changed
	require.NoError(t, err)
	edit(t, m, h, snap("a", "b", "c"))
	require.Equal(t, 2, m.Count())

	require.NoError(t, m.Undo(ctx))
	require.NoError(t, m.Redo(ctx))
	assert.Equal(t, 2, m.Position())
	assert.True(t, snap("a", "b", "c").Equal(h.Snapshot()))

	require.NoError(t, m.Undo(ctx))
	assert.Equal(t, 1, m.Position())
	assert.True(t, snap("a", "b").Equal(h.Snapshot()))
}

func TestCountEqualsNumberOfDistinctSaves(t *testing.T) {
	m, h := newManager(t, snap("0"), Options{MaxLength: 10})
	ids := []string{"0"}
	for n := 1; n <= 10; n++ {
		ids = append(ids, string(rune('a'+n)))
		edit(t, m, h, snap(ids...))
	}
	assert.Equal(t, 10, m.Count())
}

func TestUndoWhenNotAllowedIsNoop(t *testing.T) {
	ctx := context.Background()
	m, h := newManager(t, snap("a"), Options{})

	before := m.Entries()
	require.NoError(t, m.Undo(ctx))
	require.NoError(t, m.Redo(ctx))
	assert.Equal(t, 0, m.Position())
	assert.Equal(t, before, m.Entries())
	assert.Empty(t, h.Journal())
}

func TestBranchDiscardAfterUndo(t *testing.T) {
	ctx := context.Background()
	m, h := newManager(t, snap("a"), Options{})
	edit(t, m, h, snap("a", "b"))
	edit(t, m, h, snap("a", "b", "c"))

	require.NoError(t, m.Undo(ctx))
	_, err := m.Capture(ctx) // the undo's own mutations
	require.NoError(t, err)
	edit(t, m, h, snap("a", "x"))

	assert.Equal(t, 2, m.Count())
	assert.False(t, m.CanRedo())
}

func TestChangeAfterNavigationIsSuppressedOnce(t *testing.T) {
	ctx := context.Background()
	m, h := newManager(t, snap("a"), Options{})
	edit(t, m, h, snap("a", "b"))

	require.NoError(t, m.Undo(ctx))
	assert.Equal(t, ModeNavigating, m.Mode())

	h.Edit(snap("a", "z"))
	recorded, err := m.Capture(ctx)
	require.NoError(t, err)
	assert.False(t, recorded)
	assert.Equal(t, ModeRecording, m.Mode())

	recorded, err = m.Capture(ctx)
	require.NoError(t, err)
	assert.True(t, recorded)
}

func TestReadOnlyGate(t *testing.T) {
	ctx := context.Background()
	m, h := newManager(t, snap("a"), Options{})
	edit(t, m, h, snap("a", "b"))
	require.NoError(t, m.Undo(ctx))
	_, _ = m.Capture(ctx)

	m.SetReadOnly(true)
	assert.False(t, m.CanUndo())
	assert.False(t, m.CanRedo())

	h.Edit(snap("a", "c"))
	recorded, err := m.Capture(ctx)
	require.NoError(t, err)
	assert.False(t, recorded)
	assert.Equal(t, 1, m.Count())

	m.SetReadOnly(false)
	assert.True(t, m.CanRedo())
}

func TestEmptyDocumentIsNeverRecorded(t *testing.T) {
	m, h := newManager(t, snap("a"), Options{})
	h.Edit(types.Snapshot{})

	recorded, err := m.Capture(context.Background())
	require.NoError(t, err)
	assert.False(t, recorded)
	assert.Equal(t, 0, m.Count())
}

func TestSaveRecordsBlockIndexAndCaret(t *testing.T) {
	m, h := newManager(t, snap("a"), Options{})

	h.Edit(snap("a", "b"))
	h.Focus(1, 1)
	m.Save(h.Snapshot())

	e := m.Current()
	assert.Equal(t, 1, e.Index)
	require.NotNil(t, e.CaretIndex)
	assert.Equal(t, 1, *e.CaretIndex)
}

func TestSaveSkipsCaretForNonTextBlocks(t *testing.T) {
	m, h := newManager(t, snap("a"), Options{})

	s := types.Snapshot{snap("a")[0], {ID: "img", Type: "image", Data: types.Data{"url": "x"}}}
	h.Edit(s)
	h.Focus(1, 0)
	m.Save(h.Snapshot())

	assert.Equal(t, 1, m.Current().Index)
	assert.Nil(t, m.Current().CaretIndex)
}

func TestSaveAdjustsIndexOutsideSnapshot(t *testing.T) {
	m, h := newManager(t, snap("a", "b", "c", "d"), Options{})
	h.Focus(3, host.CaretEnd)

	// Snapshot taken after two blocks were removed while the host still
	// reports the old index and count.
	m.Save(snap("a", "b"))

	assert.Equal(t, 1, m.Current().Index)
}

func TestUndoRestoresCaret(t *testing.T) {
	ctx := context.Background()
	m, h := newManager(t, snap("a"), Options{})
	h.Focus(0, 1)
	edit(t, m, h, snap("a", "b"))

	h.Focus(1, host.CaretEnd)
	edit(t, m, h, snap("a", "b", "c"))

	require.NoError(t, m.Undo(ctx))
	m.Wait()
	idx, offset := h.Caret()
	assert.Equal(t, 0, idx, "block active when the entry was saved")
	assert.Equal(t, 1, offset, "caret captured when the entry was saved")
}

func TestOnUpdateFiresOnEveryStackMutation(t *testing.T) {
	ctx := context.Background()
	calls := 0
	m, h := newManager(t, snap("a"), Options{OnUpdate: func() { calls++ }})

	edit(t, m, h, snap("a", "b"))
	require.NoError(t, m.Undo(ctx))
	require.NoError(t, m.Redo(ctx))
	m.Clear()

	assert.Equal(t, 4, calls)
	assert.Equal(t, 0, m.Count())
}

func TestHostFailuresPropagate(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	m, h := newManager(t, snap("a"), Options{})

	h.FailNext(host.OpSave, boom)
	_, err := m.Capture(ctx)
	assert.ErrorIs(t, err, boom)

	edit(t, m, h, snap("a", "b"))
	h.FailNext(host.OpDelete, boom)
	err = m.Undo(ctx)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, m.Position(), "pointer is not rolled back")
}
