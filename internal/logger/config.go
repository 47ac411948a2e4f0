// Package logger provides configurable, filterable slog-based logging.
package logger

import (
	"log/slog"
	"strings"
)

// Config holds all settings for the logger. Filter names are matched
// case-insensitively; a Disabled list wins over the matching Enabled list.
type Config struct {
	LogLevel    string `toml:"log_level"` // debug, info, warn or error
	LogFilePath string `toml:"log_file"`  // "-" for stderr, empty to discard

	EnabledTags  []string `toml:"enabled_tags"` // when set, untagged messages are dropped too
	DisabledTags []string `toml:"disabled_tags"`

	// Package is the directory name of the caller, e.g. "history" or "undo".
	EnabledPackages  []string `toml:"enabled_packages"`
	DisabledPackages []string `toml:"disabled_packages"`

	// File is the base name of the caller, e.g. "stack.go".
	EnabledFiles  []string `toml:"enabled_files"`
	DisabledFiles []string `toml:"disabled_files"`

	level    slog.Leveler
	tags     filter
	packages filter
	files    filter
}

// NewConfig creates a new Config with default values
func NewConfig() Config {
	return Config{LogLevel: "info"}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// process resolves the level and builds the filters.
func (c *Config) process() {
	c.level = parseLevel(c.LogLevel)
	c.tags = newFilter(c.EnabledTags, c.DisabledTags)
	c.packages = newFilter(c.EnabledPackages, c.DisabledPackages)
	c.files = newFilter(c.EnabledFiles, c.DisabledFiles)
}

// filter is an allow/deny pair. A nil allow set admits anything not denied.
type filter struct {
	allow map[string]struct{}
	deny  map[string]struct{}
}

func newFilter(allow, deny []string) filter {
	return filter{allow: toSet(allow), deny: toSet(deny)}
}

func (f filter) permits(name string) bool {
	name = strings.ToLower(name)
	if _, denied := f.deny[name]; denied {
		return false
	}
	if f.allow == nil {
		return true
	}
	_, allowed := f.allow[name]
	return allowed
}

func toSet(items []string) map[string]struct{} {
	var set map[string]struct{}
	for _, item := range items {
		if item == "" {
			continue
		}
		if set == nil {
			set = make(map[string]struct{}, len(items))
		}
		set[strings.ToLower(item)] = struct{}{}
	}
	return set
}
