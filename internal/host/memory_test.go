package host

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/blockundo/internal/event"
	"github.com/bethropolis/blockundo/internal/types"
)

func para(id, text string) types.Block {
	return types.Block{ID: id, Type: "paragraph", Data: types.Data{"text": text}}
}

func TestMemoryInsertDeleteUpdate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(types.Snapshot{para("a", "one"), para("b", "two")})

	var ops []string
	m.SubscribeEvent(event.TypeBlocksMutated, func(e event.Event) bool {
		ops = append(ops, e.Data.(event.BlocksMutatedData).Op)
		return false
	})

	require.NoError(t, m.Insert(ctx, para("c", "three"), 1, true))
	assert.Equal(t, []string{"a", "c", "b"}, m.Snapshot().IDs())

	require.NoError(t, m.Delete(ctx, 0))
	assert.Equal(t, []string{"c", "b"}, m.Snapshot().IDs())

	updated, err := m.Update(ctx, "b", types.Data{"text": "changed"})
	require.NoError(t, err)
	assert.Equal(t, "changed", updated.Data["text"])

	_, err = m.Update(ctx, "zzz", types.Data{})
	assert.ErrorIs(t, err, ErrBlockNotFound)
	assert.ErrorIs(t, m.Delete(ctx, 5), ErrIndexOutOfRange)
	assert.ErrorIs(t, m.Insert(ctx, para("d", ""), 9, true), ErrIndexOutOfRange)

	assert.Equal(t, []string{"insert", "delete", "update"}, ops)
	assert.Equal(t, []Op{
		{Kind: OpInsert, Index: 1, ID: "c", Silent: true},
		{Kind: OpDelete, Index: 0, ID: "a"},
		{Kind: OpUpdate, Index: 1, ID: "b"},
	}, m.Journal())
}

func TestMemoryAssignsIDsToAnonymousBlocks(t *testing.T) {
	m := NewMemory(types.Snapshot{{Type: "paragraph"}})
	require.NoError(t, m.Insert(context.Background(), types.Block{Type: "header"}, 0, true))

	for _, b := range m.Snapshot() {
		assert.True(t, b.HasID())
	}
}

func TestMemorySilentInsertKeepsFocusOnSameBlock(t *testing.T) {
	m := NewMemory(types.Snapshot{para("a", "one"), para("b", "two")})
	m.Focus(1, 2)

	require.NoError(t, m.Insert(context.Background(), para("x", ""), 0, true))
	idx, offset := m.Caret()
	assert.Equal(t, 2, idx)
	assert.Equal(t, 2, offset)
	assert.Equal(t, 2, m.CurrentBlockIndex())

	require.NoError(t, m.Insert(context.Background(), para("y", ""), 0, false))
	idx, _ = m.Caret()
	assert.Equal(t, 0, idx)
}

func TestMemorySelection(t *testing.T) {
	m := NewMemory(types.Snapshot{para("a", "héllo wörld"), para("b", "x")})

	_, focused := m.Selection(0)
	assert.False(t, focused)

	m.Focus(0, 4)
	text, focused := m.Selection(0)
	assert.True(t, focused)
	assert.Equal(t, "héll", text)

	m.SetToBlock(0, CaretEnd)
	text, _ = m.Selection(0)
	assert.Equal(t, "héllo wörld", text)

	_, focused = m.Selection(1)
	assert.False(t, focused)
}

func TestMemoryFailNext(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	m := NewMemory(types.Snapshot{para("a", "one")})

	m.FailNext(OpSave, boom)
	_, err := m.Save(ctx)
	assert.ErrorIs(t, err, boom)

	snap, err := m.Save(ctx)
	require.NoError(t, err)
	assert.Len(t, snap, 1)
}

func TestMemoryEnvironmentEvents(t *testing.T) {
	m := NewMemory(nil)
	var seen []event.Type
	for _, typ := range []event.Type{event.TypeReadOnlyChanged, event.TypeHostDestroyed} {
		m.SubscribeEvent(typ, func(e event.Event) bool {
			seen = append(seen, e.Type)
			return false
		})
	}

	m.SetReadOnly(true)
	assert.True(t, m.ReadOnly())
	m.Destroy()

	assert.Equal(t, []event.Type{event.TypeReadOnlyChanged, event.TypeHostDestroyed}, seen)
}
