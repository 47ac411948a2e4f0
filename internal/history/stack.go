// Package history keeps the bounded undo/redo stack of document snapshots
// and drives the host editor between them.
package history

import (
	"github.com/bethropolis/blockundo/internal/types"
)

const (
	DefaultMaxLength        = 30
	DefaultDefaultBlockType = "paragraph"
)

// Entry is one recorded document state.
type Entry struct {
	Index      int            // Block position active when the state was captured
	State      types.Snapshot // The document itself
	CaretIndex *int           // Caret offset inside the block at Index, nil when not applicable
}

// Stack is a bounded sequence of entries with a position pointer.
// entries[0] is the baseline. Pushing discards everything after the pointer.
type Stack struct {
	entries   []Entry
	position  int
	maxLength int
	baseline  Entry
}

// NewStack creates a stack seeded with a one-block document of
// defaultBlockType.
func NewStack(maxLength int, defaultBlockType string) *Stack {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	if defaultBlockType == "" {
		defaultBlockType = DefaultDefaultBlockType
	}
	s := &Stack{
		maxLength: maxLength,
		baseline: Entry{
			Index: 0,
			State: types.Snapshot{{Type: defaultBlockType, Data: types.Data{}}},
		},
	}
	s.Clear()
	return s
}

// Initialize remembers snapshot as the baseline and installs it as entries[0].
func (s *Stack) Initialize(snapshot types.Snapshot) {
	s.baseline = Entry{Index: len(snapshot) - 1, State: snapshot.Clone()}
	if len(s.entries) == 0 {
		s.entries = []Entry{s.baseline}
		return
	}
	s.entries[0] = s.baseline
}

// Clear drops every entry but the baseline and rewinds the pointer.
func (s *Stack) Clear() {
	s.entries = []Entry{s.baseline}
	s.position = 0
}

// Push appends entry after the current position.
func (s *Stack) Push(entry Entry) {
	if s.position >= s.maxLength {
		s.truncate()
	}
	if s.position > len(s.entries)-1 {
		s.position = len(s.entries) - 1
	}
	s.entries = s.entries[:s.position+1]
	s.entries = append(s.entries, entry)
	s.position++
}

// truncate evicts the oldest entries until the stack fits maxLength.
func (s *Stack) truncate() {
	if excess := len(s.entries) - s.maxLength; excess > 0 {
		kept := make([]Entry, s.maxLength, s.maxLength+1)
		copy(kept, s.entries[excess:])
		s.entries = kept
	}
}

// Back moves the pointer one step toward the baseline. It returns the entry
// now current and the one that was current before.
func (s *Stack) Back() (target, previous Entry, ok bool) {
	if s.position <= 0 {
		return Entry{}, Entry{}, false
	}
	previous = s.entries[s.position]
	s.position--
	return s.entries[s.position], previous, true
}

// Forward moves the pointer one step toward the newest entry.
func (s *Stack) Forward() (target, previous Entry, ok bool) {
	if s.position >= len(s.entries)-1 {
		return Entry{}, Entry{}, false
	}
	previous = s.entries[s.position]
	s.position++
	return s.entries[s.position], previous, true
}

// Count is the number of recorded changes; the baseline is not a change.
func (s *Stack) Count() int { return len(s.entries) - 1 }

func (s *Stack) Len() int       { return len(s.entries) }
func (s *Stack) Position() int  { return s.position }
func (s *Stack) MaxLength() int { return s.maxLength }

// Current returns the entry under the pointer.
func (s *Stack) Current() Entry {
	return s.entries[s.position]
}

// At returns the entry at i.
func (s *Stack) At(i int) Entry {
	return s.entries[i]
}

// Entries returns a copy of the entry list.
func (s *Stack) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
