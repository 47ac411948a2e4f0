package history

import (
	"sync"

	"github.com/bethropolis/blockundo/internal/types"
)

// Mode is the recording state of an editing session.
type Mode int

const (
	ModeIdle       Mode = iota // Nothing recorded yet
	ModeRecording              // Organic edits are being recorded
	ModeNavigating             // An undo/redo just ran; its own mutations must not be recorded
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeRecording:
		return "recording"
	case ModeNavigating:
		return "navigating"
	default:
		return "unknown"
	}
}

// ShouldRecord reports whether candidate differs meaningfully from the
// state stored at the current position. Empty documents are never recorded.
func ShouldRecord(candidate, current types.Snapshot) bool {
	if len(candidate) == 0 {
		return false
	}
	if len(candidate) != len(current) {
		return true
	}
	return !candidate.Equal(current)
}

// Gate decides whether an observed change may be recorded at all.
type Gate struct {
	mu       sync.Mutex
	mode     Mode
	readOnly bool
}

// Admit is called once per observed change, before the document is read.
// A pending navigation is consumed here whatever the outcome.
func (g *Gate) Admit() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.mode == ModeNavigating {
		g.mode = ModeRecording
		return false
	}
	return !g.readOnly
}

// Navigate suppresses the next observed change.
func (g *Gate) Navigate() {
	g.mu.Lock()
	g.mode = ModeNavigating
	g.mu.Unlock()
}

// Recorded marks that an entry was pushed.
func (g *Gate) Recorded() {
	g.mu.Lock()
	g.mode = ModeRecording
	g.mu.Unlock()
}

// SetReadOnly is pushed by the host whenever read-only mode toggles.
func (g *Gate) SetReadOnly(enabled bool) {
	g.mu.Lock()
	g.readOnly = enabled
	g.mu.Unlock()
}

func (g *Gate) ReadOnly() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.readOnly
}

func (g *Gate) Mode() Mode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}
