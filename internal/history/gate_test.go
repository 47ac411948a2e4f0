package history

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bethropolis/blockundo/internal/types"
)

func TestShouldRecord(t *testing.T) {
	current := snap("a", "b")
	changed := snap("a", "b")
	changed[1].Data = types.Data{"text": "edited"}

	tests := []struct {
		name      string
		candidate types.Snapshot
		want      bool
	}{
		{"empty candidate", types.Snapshot{}, false},
		{"nil candidate", nil, false},
		{"length differs", snap("a"), true},
		{"identical", snap("a", "b"), false},
		{"content differs", changed, true},
		{"order differs", snap("b", "a"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldRecord(tt.candidate, current))
		})
	}
}

func TestGateModes(t *testing.T) {
	var g Gate
	assert.Equal(t, ModeIdle, g.Mode())
	assert.True(t, g.Admit())
	assert.Equal(t, ModeIdle, g.Mode(), "admitting alone does not start recording")

	g.Recorded()
	assert.Equal(t, ModeRecording, g.Mode())

	g.Navigate()
	assert.Equal(t, ModeNavigating, g.Mode())
	assert.False(t, g.Admit(), "first change after navigation is suppressed")
	assert.Equal(t, ModeRecording, g.Mode())
	assert.True(t, g.Admit())
}

func TestGateReadOnly(t *testing.T) {
	var g Gate
	g.SetReadOnly(true)
	assert.True(t, g.ReadOnly())
	assert.False(t, g.Admit())

	g.Navigate()
	assert.False(t, g.Admit())
	assert.Equal(t, ModeRecording, g.Mode(), "suppression is consumed even while read-only")

	g.SetReadOnly(false)
	assert.True(t, g.Admit())
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "navigating", ModeNavigating.String())
	assert.Equal(t, "unknown", Mode(42).String())
}
