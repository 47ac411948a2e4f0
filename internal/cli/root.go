package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bethropolis/blockundo/internal/config"
	"github.com/bethropolis/blockundo/internal/logger"
)

// RootOptions holds global flags and the configuration they produce.
type RootOptions struct {
	Format string // "json" | "text"
	Flags  config.Flags
	Config *config.Config

	logFile *os.File
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of the blockundo CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Undo/redo history for block-structured documents",
		Long: `blockundo drives a block editor's undo/redo history against an in-memory
host. Use it to replay editing scenarios and inspect key bindings.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return WrapExitError(ExitCommandError, "invalid flags", fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.logFile != nil {
				return opts.logFile.Close()
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	opts.Flags.DefineFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewKeysCommand(opts))

	return cmd
}

// setup loads the configuration and starts the logger.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg, warnings, err := config.Load(o.Flags.ConfigFilePath, &o.Flags)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	o.Config = cfg

	var output io.Writer = io.Discard
	switch cfg.Logger.LogFilePath {
	case "":
	case "-":
		output = cmd.ErrOrStderr()
	default:
		f, err := os.OpenFile(cfg.Logger.LogFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open log file", err)
		}
		o.logFile = f
		output = f
	}

	logger.SetFilterDebug(o.Flags.DebugLog)
	logger.InitWithConfig(cfg.Logger, output)
	for _, w := range warnings {
		logger.Warnf("%s", w)
	}
	logger.Debugf("Config loaded: max length %d, debounce %dms", cfg.History.MaxLength, cfg.Undo.DebounceTimer)
	return nil
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
