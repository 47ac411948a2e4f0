package undo

import (
	"time"

	"github.com/bethropolis/blockundo/internal/caret"
	"github.com/bethropolis/blockundo/internal/config"
	"github.com/bethropolis/blockundo/internal/metrics"
	"github.com/bethropolis/blockundo/internal/observer"
)

// Shortcuts lists the key chords bound to each action. A nil list keeps the
// default bindings.
type Shortcuts struct {
	Undo []string
	Redo []string
}

// Options configures the plugin. The zero value is usable.
type Options struct {
	// MaxLength caps the number of recorded changes. Default 30.
	MaxLength int
	// OnUpdate runs after every change to the history stack.
	OnUpdate func()
	// DebounceTimer is the quiet period after the last mutation before a
	// change is recorded. Default 200ms.
	DebounceTimer time.Duration
	// CaretRestoreDelay defers caret placement after undo/redo. Zero selects
	// 50ms, a negative value restores synchronously.
	CaretRestoreDelay time.Duration
	DefaultBlockType  string
	CaretTypes        []string
	Shortcuts         Shortcuts
	Metrics           *metrics.Collector
}

func (o Options) withDefaults() Options {
	if o.DebounceTimer <= 0 {
		o.DebounceTimer = observer.DefaultWindow
	}
	switch {
	case o.CaretRestoreDelay == 0:
		o.CaretRestoreDelay = caret.DefaultRestoreDelay
	case o.CaretRestoreDelay < 0:
		o.CaretRestoreDelay = 0
	}
	return o
}

// OptionsFromConfig maps the [history] and [undo] config sections.
func OptionsFromConfig(cfg *config.Config) Options {
	delay := config.Millis(cfg.Undo.CaretRestoreDelay)
	if delay == 0 {
		delay = -1
	}
	return Options{
		MaxLength:         cfg.History.MaxLength,
		DebounceTimer:     config.Millis(cfg.Undo.DebounceTimer),
		CaretRestoreDelay: delay,
		DefaultBlockType:  cfg.History.DefaultBlockType,
		CaretTypes:        cfg.History.CaretTypes,
		Shortcuts: Shortcuts{
			Undo: cfg.Undo.Shortcuts.Undo,
			Redo: cfg.Undo.Shortcuts.Redo,
		},
	}
}
