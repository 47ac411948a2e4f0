// internal/shortcut/bindings.go
package shortcut

import (
	"github.com/gdamore/tcell/v2"

	"github.com/bethropolis/blockundo/internal/logger"
)

var (
	DefaultUndo = []string{"CMD+Z"}
	DefaultRedo = []string{"CMD+Y", "CMD+SHIFT+Z"}
)

// Bindings maps key presses to undo and redo.
type Bindings struct {
	Undo []Combination
	Redo []Combination
}

// NewBindings parses the chord lists. A nil list selects the default.
func NewBindings(undo, redo []string) *Bindings {
	if undo == nil {
		undo = DefaultUndo
	}
	if redo == nil {
		redo = DefaultRedo
	}
	return &Bindings{Undo: parseAll(undo), Redo: parseAll(redo)}
}

func parseAll(chords []string) []Combination {
	out := make([]Combination, 0, len(chords))
	for _, s := range chords {
		c := Parse(s)
		if !c.Valid() {
			logger.Warnf("Shortcut: %q will never match", s)
		}
		out = append(out, c)
	}
	return out
}

// Resolve returns the action bound to ev. A chord only counts when no
// three-token chord of the opposite action also matches, so CMD+Z does not
// fire on CMD+SHIFT+Z.
func (b *Bindings) Resolve(ev *tcell.EventKey) Action {
	switch {
	case matchesAny(b.Undo, ev) && !matchesLong(b.Redo, ev):
		return ActionUndo
	case matchesAny(b.Redo, ev) && !matchesLong(b.Undo, ev):
		return ActionRedo
	default:
		return ActionNone
	}
}

func matchesAny(list []Combination, ev *tcell.EventKey) bool {
	for _, c := range list {
		if c.Matches(ev) {
			return true
		}
	}
	return false
}

func matchesLong(list []Combination, ev *tcell.EventKey) bool {
	for _, c := range list {
		if c.Tokens() == 3 && c.Matches(ev) {
			return true
		}
	}
	return false
}
