// internal/event/event.go
package event

import (
	"github.com/gdamore/tcell/v2"
)

// Type identifies the kind of event.
type Type int

const (
	TypeUnknown Type = iota

	// Host document events
	TypeBlocksMutated   // Fired by the host whenever block content or structure changes
	TypeReadOnlyChanged // Fired when the host toggles read-only mode
	TypeHostDestroyed   // Fired when the host root element goes away

	// Input
	TypeKeyPressed // Raw key press inside the host root

	// History
	TypeHistoryUpdated // Fired after every history stack mutation
)

func (t Type) String() string {
	switch t {
	case TypeBlocksMutated:
		return "blocks-mutated"
	case TypeReadOnlyChanged:
		return "read-only-changed"
	case TypeHostDestroyed:
		return "host-destroyed"
	case TypeKeyPressed:
		return "key-pressed"
	case TypeHistoryUpdated:
		return "history-updated"
	default:
		return "unknown"
	}
}

// Event is the structure passed through the event bus.
type Event struct {
	Type Type
	Data interface{}
}

// BlocksMutatedData describes what the host changed.
type BlocksMutatedData struct {
	Op    string // insert, delete, update, render, edit
	Index int    // -1 when the whole document changed
}

// ReadOnlyChangedData carries the new read-only state.
type ReadOnlyChangedData struct {
	Enabled bool
}

// KeyPressedData contains the raw tcell key event.
type KeyPressedData struct {
	KeyEvent *tcell.EventKey
}

// HistoryUpdatedData is a snapshot of the history counters after a change.
type HistoryUpdatedData struct {
	Position int
	Count    int
	CanUndo  bool
	CanRedo  bool
}

// HostDestroyedData is empty; the event itself is the signal.
type HostDestroyedData struct{}
