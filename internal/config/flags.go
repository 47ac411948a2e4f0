// internal/config/flags.go
package config

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bethropolis/blockundo/internal/logger"
)

// Flags holds values parsed from command-line flags. Only flags the user
// actually set override the config file.
type Flags struct {
	set *pflag.FlagSet

	ConfigFilePath string
	LogLevel       string
	LogFilePath    string
	EnableTags     []string
	DisableTags    []string
	EnablePkgs     []string
	DisablePkgs    []string
	EnableFiles    []string
	DisableFiles   []string
	DebugLog       bool

	MaxLength         int
	DebounceTimer     int
	CaretRestoreDelay int
	UndoKeys          []string
	RedoKeys          []string
}

// DefineFlags registers the flags on fs.
func (f *Flags) DefineFlags(fs *pflag.FlagSet) {
	f.set = fs
	fs.StringVarP(&f.ConfigFilePath, "config", "c", "", fmt.Sprintf("Path to TOML configuration file (default <user config dir>/%s/%s)", AppName, DefaultConfigFileName))
	fs.StringVar(&f.LogLevel, "loglevel", "", "Log level (debug, info, warn, error) - Overrides config file")
	fs.StringVar(&f.LogFilePath, "logfile", "", "Path to write log file (use '-' for stderr) - Overrides config file")
	fs.StringSliceVar(&f.EnableTags, "log-tags", nil, "Tags to enable - Overrides config file")
	fs.StringSliceVar(&f.DisableTags, "log-disable-tags", nil, "Tags to disable - Overrides config file")
	fs.StringSliceVar(&f.EnablePkgs, "log-packages", nil, "Packages to enable - Overrides config file")
	fs.StringSliceVar(&f.DisablePkgs, "log-disable-packages", nil, "Packages to disable - Overrides config file")
	fs.StringSliceVar(&f.EnableFiles, "log-files", nil, "Files to enable - Overrides config file")
	fs.StringSliceVar(&f.DisableFiles, "log-disable-files", nil, "Files to disable - Overrides config file")
	fs.BoolVar(&f.DebugLog, "debug-log", false, "Enable verbose debug logging for the logger filtering system")

	fs.IntVar(&f.MaxLength, "max-length", 0, "Maximum number of recorded changes - Overrides config file")
	fs.IntVar(&f.DebounceTimer, "debounce", 0, "Quiet period in ms before a change is recorded - Overrides config file")
	fs.IntVar(&f.CaretRestoreDelay, "caret-delay", -1, "Delay in ms before the caret is restored - Overrides config file")
	fs.StringArrayVar(&f.UndoKeys, "undo-key", nil, "Key chord bound to undo, repeatable - Overrides config file")
	fs.StringArrayVar(&f.RedoKeys, "redo-key", nil, "Key chord bound to redo, repeatable - Overrides config file")
}

// ApplyOverrides updates cfg with the flags that were set.
func (f *Flags) ApplyOverrides(cfg *Config) {
	if f.set == nil {
		return
	}
	// Changed rather than Visit: cobra parses persistent flags through the
	// subcommand's own FlagSet.
	f.set.VisitAll(func(fl *pflag.Flag) {
		if !fl.Changed {
			return
		}
		logger.DebugTagf("config", "Applying flag override: %s", fl.Name)
		switch fl.Name {
		case "loglevel":
			if f.LogLevel != "" {
				cfg.Logger.LogLevel = f.LogLevel
			}
		case "logfile":
			cfg.Logger.LogFilePath = f.LogFilePath
		case "log-tags":
			cfg.Logger.EnabledTags = f.EnableTags
		case "log-disable-tags":
			cfg.Logger.DisabledTags = f.DisableTags
		case "log-packages":
			cfg.Logger.EnabledPackages = f.EnablePkgs
		case "log-disable-packages":
			cfg.Logger.DisabledPackages = f.DisablePkgs
		case "log-files":
			cfg.Logger.EnabledFiles = f.EnableFiles
		case "log-disable-files":
			cfg.Logger.DisabledFiles = f.DisableFiles
		case "max-length":
			if f.MaxLength > 0 {
				cfg.History.MaxLength = f.MaxLength
			}
		case "debounce":
			if f.DebounceTimer > 0 {
				cfg.Undo.DebounceTimer = f.DebounceTimer
			}
		case "caret-delay":
			if f.CaretRestoreDelay >= 0 {
				cfg.Undo.CaretRestoreDelay = f.CaretRestoreDelay
			}
		case "undo-key":
			cfg.Undo.Shortcuts.Undo = f.UndoKeys
		case "redo-key":
			cfg.Undo.Shortcuts.Redo = f.RedoKeys
		}
	})
}
