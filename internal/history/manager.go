package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bethropolis/blockundo/internal/caret"
	"github.com/bethropolis/blockundo/internal/host"
	"github.com/bethropolis/blockundo/internal/logger"
	"github.com/bethropolis/blockundo/internal/metrics"
	"github.com/bethropolis/blockundo/internal/reconcile"
	"github.com/bethropolis/blockundo/internal/types"
)

// DefaultCaretTypes are the free-text block types whose caret is tracked.
var DefaultCaretTypes = []string{"paragraph", "header"}

// Options configures a Manager.
type Options struct {
	MaxLength         int
	DefaultBlockType  string
	CaretTypes        []string
	CaretRestoreDelay time.Duration
	OnUpdate          func()
	Metrics           *metrics.Collector
}

// Manager owns the history stack and moves the host editor between entries.
type Manager struct {
	editor   host.Editor
	stack    *Stack
	gate     Gate
	caret    *caret.Tracker
	executor *reconcile.Executor

	caretTypes map[string]struct{}
	onUpdate   func()
	metrics    *metrics.Collector

	mutex sync.Mutex
}

// NewManager creates a history manager for editor.
func NewManager(editor host.Editor, opts Options) *Manager {
	caretTypes := opts.CaretTypes
	if caretTypes == nil {
		caretTypes = DefaultCaretTypes
	}
	m := &Manager{
		editor:     editor,
		stack:      NewStack(opts.MaxLength, opts.DefaultBlockType),
		caret:      caret.NewTracker(editor, opts.CaretRestoreDelay),
		executor:   reconcile.NewExecutor(editor),
		caretTypes: make(map[string]struct{}, len(caretTypes)),
		onUpdate:   opts.OnUpdate,
		metrics:    opts.Metrics,
	}
	for _, t := range caretTypes {
		m.caretTypes[t] = struct{}{}
	}
	m.executor.Observe = m.metrics.Operation
	return m
}

// Initialize installs snapshot as the baseline entry. Call it before the first save.
func (m *Manager) Initialize(snapshot types.Snapshot) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.stack.Initialize(snapshot)
	logger.Debugf("History: initialized with %d block(s)", len(snapshot))
}

// Clear resets the stack to the baseline.
func (m *Manager) Clear() {
	m.mutex.Lock()
	m.stack.Clear()
	m.mutex.Unlock()
	logger.Debugf("History: cleared")
	m.notify()
}

// Save pushes snapshot as a new entry, recording the active block and caret.
// It does not check whether snapshot is worth recording; see Capture.
func (m *Manager) Save(snapshot types.Snapshot) {
	snapshot = snapshot.Clone()
	index := m.blockIndex(snapshot)

	var caretIndex *int
	if index >= 0 && index < len(snapshot) && m.tracksCaret(snapshot[index].Type) {
		offset := m.caret.Capture(m.editor.CurrentBlockIndex())
		caretIndex = &offset
	}

	m.mutex.Lock()
	m.stack.Push(Entry{Index: index, State: snapshot, CaretIndex: caretIndex})
	position, count := m.stack.Position(), m.stack.Count()
	m.mutex.Unlock()

	m.gate.Recorded()
	m.metrics.Saved()
	logger.Debugf("History: recorded entry. Index: %d, Position: %d, Count: %d", index, position, count)
	m.notify()
}

// blockIndex maps the host's current block to a position in snapshot. When
// the live index falls outside the snapshot (the snapshot was taken after
// blocks disappeared), it is shifted by the difference in block counts.
func (m *Manager) blockIndex(snapshot types.Snapshot) int {
	index := m.editor.CurrentBlockIndex()
	if index < 0 || index >= len(snapshot) {
		index -= m.editor.BlocksCount() - len(snapshot)
	}
	return index
}

func (m *Manager) tracksCaret(blockType string) bool {
	_, ok := m.caretTypes[blockType]
	return ok
}

// Capture is the change-notification path: it asks the host for the live
// document and records it when the gate allows and it differs from the
// current entry. It reports whether an entry was pushed.
func (m *Manager) Capture(ctx context.Context) (bool, error) {
	if !m.gate.Admit() {
		m.metrics.Skipped("gated")
		logger.DebugTagf("gate", "History: change not admitted (mode %v, read-only %v)", m.gate.Mode(), m.gate.ReadOnly())
		return false, nil
	}

	snapshot, err := m.editor.Save(ctx)
	if err != nil {
		m.metrics.Failed("save")
		return false, fmt.Errorf("capture: save document: %w", err)
	}

	m.mutex.Lock()
	current := m.stack.Current().State
	m.mutex.Unlock()

	if !ShouldRecord(snapshot, current) {
		m.metrics.Skipped("unchanged")
		return false, nil
	}
	m.Save(snapshot)
	return true, nil
}

// Undo moves one entry back and reconciles the host with it.
// It is a no-op when CanUndo is false.
func (m *Manager) Undo(ctx context.Context) error {
	m.mutex.Lock()
	if !m.canUndoLocked() {
		m.mutex.Unlock()
		logger.Debugf("History: nothing to undo")
		return nil
	}
	target, previous, _ := m.stack.Back()
	position := m.stack.Position()
	m.mutex.Unlock()

	logger.Debugf("History: undo to position %d", position)
	return m.navigate(ctx, "undo", target, previous)
}

// Redo moves one entry forward and reconciles the host with it.
// It is a no-op when CanRedo is false.
func (m *Manager) Redo(ctx context.Context) error {
	m.mutex.Lock()
	if !m.canRedoLocked() {
		m.mutex.Unlock()
		logger.Debugf("History: nothing to redo")
		return nil
	}
	target, previous, _ := m.stack.Forward()
	position := m.stack.Position()
	m.mutex.Unlock()

	logger.Debugf("History: redo to position %d", position)
	return m.navigate(ctx, "redo", target, previous)
}

// navigate runs after the pointer moved. The pointer is not rolled back when
// the host fails; the error is returned to the caller.
func (m *Manager) navigate(ctx context.Context, direction string, target, previous Entry) error {
	m.gate.Navigate()
	m.metrics.Navigated(direction)
	m.notify()

	if err := m.executor.SwitchState(ctx, target.State, previous.State); err != nil {
		m.metrics.Failed(direction)
		logger.Errorf("History: %s failed: %v", direction, err)
		return fmt.Errorf("%s failed: %w", direction, err)
	}

	if _, ok := m.editor.BlockByIndex(target.Index); ok {
		m.caret.Restore(target.Index, target.CaretIndex)
	}
	return nil
}

// CanUndo reports whether Undo would do anything.
func (m *Manager) CanUndo() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.canUndoLocked()
}

// CanRedo reports whether Redo would do anything.
func (m *Manager) CanRedo() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.canRedoLocked()
}

func (m *Manager) canUndoLocked() bool {
	return !m.gate.ReadOnly() && m.stack.Position() > 0
}

func (m *Manager) canRedoLocked() bool {
	return !m.gate.ReadOnly() && m.stack.Position() < m.stack.Count()
}

// Count is the number of recorded changes.
func (m *Manager) Count() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.stack.Count()
}

// Position is the current stack pointer.
func (m *Manager) Position() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.stack.Position()
}

// Entries returns a copy of the stack.
func (m *Manager) Entries() []Entry {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.stack.Entries()
}

// Current returns the entry under the pointer.
func (m *Manager) Current() Entry {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.stack.Current()
}

// SetReadOnly is called by the host when read-only mode toggles.
func (m *Manager) SetReadOnly(enabled bool) {
	m.gate.SetReadOnly(enabled)
	logger.Debugf("History: read-only %v", enabled)
}

func (m *Manager) ReadOnly() bool { return m.gate.ReadOnly() }

// Mode returns the recording state of the session.
func (m *Manager) Mode() Mode { return m.gate.Mode() }

// Wait blocks until deferred caret restores have run.
func (m *Manager) Wait() { m.caret.Wait() }

func (m *Manager) notify() {
	m.mutex.Lock()
	count, position := m.stack.Count(), m.stack.Position()
	m.mutex.Unlock()

	m.metrics.Stack(count, position)
	if m.onUpdate != nil {
		m.onUpdate()
	}
}
