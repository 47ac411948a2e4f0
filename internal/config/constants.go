package config

import "time"

// Base application details
const AppName = "blockundo"
const DefaultConfigFileName = "config.toml"
const DefaultLogFileName = "blockundo.log"

// History
const DefaultMaxLength = 30
const DefaultBlockType = "paragraph"

// Undo plugin timings, in milliseconds as they appear in the config file
const DefaultDebounceTimer = 200
const DefaultCaretRestoreDelay = 50

// Millis converts a millisecond config value to a Duration.
func Millis(ms int) time.Duration { return time.Duration(ms) * time.Millisecond }
