// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/bethropolis/blockundo/internal/logger"
)

// Config holds the combined configuration.
type Config struct {
	Logger  logger.Config `toml:"logger"`
	History HistoryConfig `toml:"history"`
	Undo    UndoConfig    `toml:"undo"`
}

// HistoryConfig sizes the stack and describes the document's block types.
type HistoryConfig struct {
	MaxLength        int      `toml:"max_length"`
	DefaultBlockType string   `toml:"default_block_type"` // type of the synthetic baseline block
	CaretTypes       []string `toml:"caret_types"`        // block types whose caret offset is recorded
}

// UndoConfig holds the settings of the undo plugin.
type UndoConfig struct {
	DebounceTimer     int             `toml:"debounce_timer"`      // ms of quiet before a change is recorded
	CaretRestoreDelay int             `toml:"caret_restore_delay"` // ms; 0 restores synchronously
	Shortcuts         ShortcutsConfig `toml:"shortcuts"`
}

// ShortcutsConfig lists the key chords bound to each action, e.g. "CMD+SHIFT+Z".
type ShortcutsConfig struct {
	Undo []string `toml:"undo"`
	Redo []string `toml:"redo"`
}

// NewDefaultConfig creates a Config struct with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Logger: logger.NewConfig(),
		History: HistoryConfig{
			MaxLength:        DefaultMaxLength,
			DefaultBlockType: DefaultBlockType,
			CaretTypes:       []string{"paragraph", "header"},
		},
		Undo: UndoConfig{
			DebounceTimer:     DefaultDebounceTimer,
			CaretRestoreDelay: DefaultCaretRestoreDelay,
			Shortcuts: ShortcutsConfig{
				Undo: []string{"CMD+Z"},
				Redo: []string{"CMD+Y", "CMD+SHIFT+Z"},
			},
		},
	}
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName, DefaultConfigFileName), nil
}

// decodeFile overlays the values found in filePath onto cfg. A missing file
// is not an error. It returns the keys the file set that Config does not know;
// unknown tables are reported through their leaf keys only.
func decodeFile(filePath string, cfg *Config) ([]string, error) {
	metadata, err := toml.DecodeFile(filePath, cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filePath, err)
	}
	var unknown []string
	for _, key := range metadata.Undecoded() {
		if metadata.Type(key...) == "Hash" {
			continue
		}
		unknown = append(unknown, key.String())
	}
	return unknown, nil
}

// validate resets out-of-range values to their defaults.
func (c *Config) validate() {
	defaults := NewDefaultConfig()

	if c.Logger.LogLevel == "" {
		c.Logger.LogLevel = defaults.Logger.LogLevel
	}
	if c.History.MaxLength <= 0 {
		c.History.MaxLength = defaults.History.MaxLength
	}
	if c.History.DefaultBlockType == "" {
		c.History.DefaultBlockType = defaults.History.DefaultBlockType
	}
	if c.Undo.DebounceTimer <= 0 {
		c.Undo.DebounceTimer = defaults.Undo.DebounceTimer
	}
	if c.Undo.CaretRestoreDelay < 0 { // 0 is allowed
		c.Undo.CaretRestoreDelay = defaults.Undo.CaretRestoreDelay
	}
	if len(c.Undo.Shortcuts.Undo) == 0 {
		c.Undo.Shortcuts.Undo = defaults.Undo.Shortcuts.Undo
	}
	if len(c.Undo.Shortcuts.Redo) == 0 {
		c.Undo.Shortcuts.Redo = defaults.Undo.Shortcuts.Redo
	}
}

// Load builds the configuration from defaults, the TOML file at configFilePath
// (or DefaultPath when empty) and any flags that were set, in that order.
// Unknown keys in the file are returned as warnings; the logger is usually not
// initialized yet when Load runs.
func Load(configFilePath string, flags *Flags) (*Config, []string, error) {
	cfg := NewDefaultConfig()

	path := configFilePath
	if path == "" {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}

	var warnings []string
	if path != "" {
		unknown, err := decodeFile(path, cfg)
		if err != nil {
			return nil, nil, err
		}
		for _, key := range unknown {
			warnings = append(warnings, fmt.Sprintf("config file '%s': unrecognized key %q", path, key))
		}
	}

	if flags != nil {
		flags.ApplyOverrides(cfg)
	}

	cfg.validate()
	return cfg, warnings, nil
}
