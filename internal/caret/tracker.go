// Package caret records and restores the text caret inside a block across
// undo/redo transitions.
package caret

import (
	"sync"
	"time"

	"github.com/rivo/uniseg"

	"github.com/bethropolis/blockundo/internal/host"
	"github.com/bethropolis/blockundo/internal/logger"
)

// DefaultRestoreDelay lets the host finish its own focus handling after a
// render before the caret is moved.
const DefaultRestoreDelay = 50 * time.Millisecond

// Tracker captures caret offsets and puts them back.
type Tracker struct {
	host  host.Caret
	delay time.Duration

	pending sync.WaitGroup
}

// NewTracker creates a tracker. A zero delay restores synchronously.
func NewTracker(h host.Caret, delay time.Duration) *Tracker {
	if delay < 0 {
		delay = 0
	}
	return &Tracker{host: h, delay: delay}
}

// Capture returns -1 when the block at index is not focused, otherwise the
// number of characters between the start of the block and the end of the
// active selection.
func (t *Tracker) Capture(index int) int {
	preceding, focused := t.host.Selection(index)
	if !focused {
		return -1
	}
	return uniseg.GraphemeClusterCount(preceding)
}

// Restore places the caret at offset inside the block at index. A nil, zero
// or negative offset focuses the end of the block instead.
func (t *Tracker) Restore(index int, offset *int) {
	if offset == nil || *offset <= 0 {
		t.host.SetToBlock(index, host.CaretEnd)
		return
	}

	pos := *offset
	if t.delay == 0 {
		t.host.SetToBlock(index, pos)
		return
	}

	t.pending.Add(1)
	time.AfterFunc(t.delay, func() {
		defer t.pending.Done()
		logger.DebugTagf("caret", "Caret: restoring block %d offset %d", index, pos)
		t.host.SetToBlock(index, pos)
	})
}

// Wait blocks until every deferred restore has run.
func (t *Tracker) Wait() {
	t.pending.Wait()
}
