package host

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"github.com/rivo/uniseg"

	"github.com/bethropolis/blockundo/internal/event"
	"github.com/bethropolis/blockundo/internal/logger"
	"github.com/bethropolis/blockundo/internal/types"
)

// OpKind names an operation recorded in the Memory journal.
type OpKind string

const (
	OpInsert OpKind = "insert"
	OpDelete OpKind = "delete"
	OpUpdate OpKind = "update"
	OpRender OpKind = "render"
	OpSave   OpKind = "save"
	OpEdit   OpKind = "edit"
	OpCaret  OpKind = "caret"
)

// Op is one journal entry.
type Op struct {
	Kind   OpKind
	Index  int
	ID     string
	Silent bool
	Offset int
}

func (o Op) String() string {
	switch o.Kind {
	case OpInsert:
		return fmt.Sprintf("insert %s@%d", o.ID, o.Index)
	case OpDelete:
		return fmt.Sprintf("delete %s@%d", o.ID, o.Index)
	case OpUpdate:
		return fmt.Sprintf("update %s", o.ID)
	case OpCaret:
		return fmt.Sprintf("caret %d:%d", o.Index, o.Offset)
	default:
		return string(o.Kind)
	}
}

// Memory is an in-process block editor. It keeps blocks in a slice, models a
// single caret, journals every operation and reports changes on its own
// event manager.
type Memory struct {
	mu       sync.Mutex
	blocks   types.Snapshot
	current  int
	focus    int
	caret    int
	readOnly bool
	journal  []Op
	failures map[OpKind]error

	events *event.Manager
}

var _ Editor = (*Memory)(nil)

// NewMemory creates a host holding a copy of initial.
func NewMemory(initial types.Snapshot) *Memory {
	m := &Memory{
		blocks:   initial.Clone(),
		current:  -1,
		focus:    -1,
		failures: make(map[OpKind]error),
		events:   event.NewManager(),
	}
	for i := range m.blocks {
		if !m.blocks[i].HasID() {
			m.blocks[i].ID = newID()
		}
	}
	if len(m.blocks) > 0 {
		m.current = 0
	}
	return m
}

func newID() string {
	return uuid.NewString()[:10]
}

// --- Blocks ---

func (m *Memory) CurrentBlockIndex() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Memory) BlocksCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blocks)
}

func (m *Memory) BlockByIndex(index int) (types.Block, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.blocks) {
		return types.Block{}, false
	}
	return m.blocks[index].Clone(), true
}

func (m *Memory) ByID(id string) (types.Block, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexOf(id); i >= 0 {
		return m.blocks[i].Clone(), true
	}
	return types.Block{}, false
}

func (m *Memory) Insert(ctx context.Context, block types.Block, index int, silent bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	if err := m.takeFailure(OpInsert); err != nil {
		m.mu.Unlock()
		return err
	}
	if index < 0 || index > len(m.blocks) {
		m.mu.Unlock()
		return fmt.Errorf("insert at %d: %w", index, ErrIndexOutOfRange)
	}

	block = block.Clone()
	if !block.HasID() {
		block.ID = newID()
	}
	m.blocks = append(m.blocks, types.Block{})
	copy(m.blocks[index+1:], m.blocks[index:])
	m.blocks[index] = block

	if silent {
		if m.current >= index {
			m.current++
		}
		if m.focus >= index {
			m.focus++
		}
	} else {
		m.current, m.focus, m.caret = index, index, CaretEnd
	}
	m.journal = append(m.journal, Op{Kind: OpInsert, Index: index, ID: block.ID, Silent: silent})
	m.mu.Unlock()

	m.mutated(string(OpInsert), index)
	return nil
}

func (m *Memory) Delete(ctx context.Context, index int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	if err := m.takeFailure(OpDelete); err != nil {
		m.mu.Unlock()
		return err
	}
	if index < 0 || index >= len(m.blocks) {
		m.mu.Unlock()
		return fmt.Errorf("delete at %d: %w", index, ErrIndexOutOfRange)
	}

	id := m.blocks[index].ID
	m.blocks = append(m.blocks[:index], m.blocks[index+1:]...)

	if m.current > index || m.current >= len(m.blocks) {
		m.current--
	}
	switch {
	case m.focus == index:
		m.focus = -1
	case m.focus > index:
		m.focus--
	}
	m.journal = append(m.journal, Op{Kind: OpDelete, Index: index, ID: id})
	m.mu.Unlock()

	m.mutated(string(OpDelete), index)
	return nil
}

func (m *Memory) Update(ctx context.Context, id string, data types.Data) (types.Block, error) {
	if err := ctx.Err(); err != nil {
		return types.Block{}, err
	}
	m.mu.Lock()
	if err := m.takeFailure(OpUpdate); err != nil {
		m.mu.Unlock()
		return types.Block{}, err
	}
	i := m.indexOf(id)
	if i < 0 {
		m.mu.Unlock()
		return types.Block{}, fmt.Errorf("update %q: %w", id, ErrBlockNotFound)
	}
	m.blocks[i].Data = data.Clone()
	updated := m.blocks[i].Clone()
	m.journal = append(m.journal, Op{Kind: OpUpdate, Index: i, ID: id})
	m.mu.Unlock()

	m.mutated(string(OpUpdate), i)
	return updated, nil
}

func (m *Memory) Render(ctx context.Context, blocks types.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	if err := m.takeFailure(OpRender); err != nil {
		m.mu.Unlock()
		return err
	}
	m.replace(blocks)
	m.focus = -1
	m.journal = append(m.journal, Op{Kind: OpRender, Index: -1})
	m.mu.Unlock()

	m.mutated(string(OpRender), -1)
	return nil
}

func (m *Memory) Save(ctx context.Context) (types.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(OpSave); err != nil {
		return nil, err
	}
	return m.blocks.Clone(), nil
}

// --- Caret ---

func (m *Memory) SetToBlock(index int, offset int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.blocks) {
		return
	}
	m.current, m.focus, m.caret = index, index, offset
	m.journal = append(m.journal, Op{Kind: OpCaret, Index: index, Offset: offset})
}

func (m *Memory) Selection(index int) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.blocks) || m.focus != index {
		return "", false
	}
	text := blockText(m.blocks[index])
	if m.caret == CaretEnd {
		return text, true
	}
	return firstGraphemes(text, m.caret), true
}

// Caret reports the focused block (-1 for none) and the caret offset in it.
func (m *Memory) Caret() (index, offset int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.focus, m.caret
}

// --- Host environment ---

// ReadOnly reports whether the host is in read-only mode.
func (m *Memory) ReadOnly() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readOnly
}

// SetReadOnly toggles read-only mode and announces it.
func (m *Memory) SetReadOnly(enabled bool) {
	m.mu.Lock()
	m.readOnly = enabled
	m.mu.Unlock()
	m.events.Dispatch(event.TypeReadOnlyChanged, event.ReadOnlyChangedData{Enabled: enabled})
}

// Destroy announces that the host root element has been removed.
func (m *Memory) Destroy() {
	logger.DebugTagf("host", "Memory host destroyed")
	m.events.Dispatch(event.TypeHostDestroyed, event.HostDestroyedData{})
}

// PressKey delivers a key event to listeners of the host root.
func (m *Memory) PressKey(ev *tcell.EventKey) {
	m.events.Dispatch(event.TypeKeyPressed, event.KeyPressedData{KeyEvent: ev})
}

func (m *Memory) SubscribeEvent(eventType event.Type, handler event.Handler) event.SubscriptionID {
	return m.events.Subscribe(eventType, handler)
}

func (m *Memory) UnsubscribeEvent(id event.SubscriptionID) {
	m.events.Unsubscribe(id)
}

func (m *Memory) DispatchEvent(eventType event.Type, data interface{}) {
	m.events.Dispatch(eventType, data)
}

// Events exposes the host's event manager.
func (m *Memory) Events() *event.Manager {
	return m.events
}

// --- Simulated user activity ---

// Edit replaces the document content the way typing or pasting would:
// focus is kept and a mutation is announced.
func (m *Memory) Edit(blocks types.Snapshot) {
	m.mu.Lock()
	m.replace(blocks)
	if m.focus >= len(m.blocks) {
		m.focus = -1
	}
	m.journal = append(m.journal, Op{Kind: OpEdit, Index: -1})
	m.mu.Unlock()

	m.mutated(string(OpEdit), -1)
}

// Focus moves the caret into the block at index. Use CaretEnd for the end.
func (m *Memory) Focus(index, offset int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.blocks) {
		m.focus = -1
		return
	}
	m.current, m.focus, m.caret = index, index, offset
}

// Blur removes focus from every block.
func (m *Memory) Blur() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.focus = -1
}

// Snapshot returns a copy of the live document.
func (m *Memory) Snapshot() types.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blocks.Clone()
}

// Journal returns the operations performed since the last ResetJournal.
func (m *Memory) Journal() []Op {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Op, len(m.journal))
	copy(out, m.journal)
	return out
}

// ResetJournal forgets all recorded operations.
func (m *Memory) ResetJournal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.journal = nil
}

// FailNext makes the next operation of kind fail with err.
func (m *Memory) FailNext(kind OpKind, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[kind] = err
}

func (m *Memory) takeFailure(kind OpKind) error {
	err, ok := m.failures[kind]
	if !ok {
		return nil
	}
	delete(m.failures, kind)
	return err
}

func (m *Memory) replace(blocks types.Snapshot) {
	m.blocks = blocks.Clone()
	for i := range m.blocks {
		if !m.blocks[i].HasID() {
			m.blocks[i].ID = newID()
		}
	}
	if m.current >= len(m.blocks) {
		m.current = len(m.blocks) - 1
	}
	if m.current < 0 && len(m.blocks) > 0 {
		m.current = 0
	}
}

func (m *Memory) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, b := range m.blocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func (m *Memory) mutated(op string, index int) {
	m.events.Dispatch(event.TypeBlocksMutated, event.BlocksMutatedData{Op: op, Index: index})
}

func blockText(b types.Block) string {
	if s, ok := b.Data["text"].(string); ok {
		return s
	}
	return ""
}

func firstGraphemes(text string, n int) string {
	if n <= 0 {
		return ""
	}
	var sb strings.Builder
	gr := uniseg.NewGraphemes(text)
	for i := 0; i < n && gr.Next(); i++ {
		sb.WriteString(gr.Str())
	}
	return sb.String()
}
