// internal/shortcut/combination.go
package shortcut

import (
	"runtime"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// primaryModifier is what CMD stands for on this platform.
var primaryModifier = platformModifier(runtime.GOOS)

func platformModifier(goos string) tcell.ModMask {
	if goos == "darwin" {
		return tcell.ModMeta
	}
	return tcell.ModCtrl
}

// Combination is one parsed key chord such as "CMD+SHIFT+Z".
type Combination struct {
	raw    string
	tokens int
	mods   tcell.ModMask
	key    string
	valid  bool
}

// Parse reads a chord of "+"-joined tokens: any of CMD, ALT and SHIFT followed
// by exactly one key. Malformed chords are returned invalid and never match.
func Parse(s string) Combination {
	parts := strings.Split(s, "+")
	c := Combination{raw: s, tokens: len(parts)}

	key := strings.ToLower(strings.TrimSpace(parts[len(parts)-1]))
	if key == "" {
		return c
	}
	for _, p := range parts[:len(parts)-1] {
		switch strings.ToUpper(strings.TrimSpace(p)) {
		case "CMD":
			c.mods |= primaryModifier
		case "ALT":
			c.mods |= tcell.ModAlt
		case "SHIFT":
			c.mods |= tcell.ModShift
		default:
			return c
		}
	}
	c.key = key
	c.valid = true
	return c
}

func (c Combination) String() string { return c.raw }

// Valid reports whether the chord parsed.
func (c Combination) Valid() bool { return c.valid }

// Tokens is the number of "+"-separated parts, modifiers included.
func (c Combination) Tokens() int { return c.tokens }

// Matches reports whether ev has the chord's key with all its modifiers held.
func (c Combination) Matches(ev *tcell.EventKey) bool {
	if !c.valid || ev == nil {
		return false
	}
	key, mods := eventKey(ev)
	return key == c.key && mods&c.mods == c.mods
}

// eventKey names the key of ev the way chords spell it, adding the Ctrl
// modifier implied by the control-key codes.
func eventKey(ev *tcell.EventKey) (string, tcell.ModMask) {
	mods := ev.Modifiers()
	switch k := ev.Key(); {
	case k == tcell.KeyRune:
		return strings.ToLower(string(ev.Rune())), mods
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ &&
		k != tcell.KeyBackspace && k != tcell.KeyTab && k != tcell.KeyEnter:
		return string(rune('a' + k - tcell.KeyCtrlA)), mods | tcell.ModCtrl
	default:
		return strings.ToLower(tcell.KeyNames[k]), mods
	}
}

// Event builds the key press the chord describes, or nil for an invalid chord.
func (c Combination) Event() *tcell.EventKey {
	if !c.valid {
		return nil
	}
	if r := []rune(c.key); len(r) == 1 {
		return tcell.NewEventKey(tcell.KeyRune, r[0], c.mods)
	}
	for k, name := range tcell.KeyNames {
		if strings.EqualFold(name, c.key) {
			return tcell.NewEventKey(k, 0, c.mods)
		}
	}
	return nil
}
