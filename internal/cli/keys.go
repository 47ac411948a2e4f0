package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bethropolis/blockundo/internal/shortcut"
)

// Binding describes one configured chord.
type Binding struct {
	Action string `json:"action"`
	Chord  string `json:"chord"`
	Valid  bool   `json:"valid"`
}

// NewKeysCommand creates the keys command.
func NewKeysCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Show the configured undo/redo key bindings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := rootOpts.Config.Undo.Shortcuts
			return writeBindings(cmd.OutOrStdout(), rootOpts.Format, shortcut.NewBindings(sc.Undo, sc.Redo))
		},
	}
}

func writeBindings(out io.Writer, format string, b *shortcut.Bindings) error {
	var list []Binding
	for _, c := range b.Undo {
		list = append(list, Binding{Action: shortcut.ActionUndo.String(), Chord: c.String(), Valid: c.Valid()})
	}
	for _, c := range b.Redo {
		list = append(list, Binding{Action: shortcut.ActionRedo.String(), Chord: c.String(), Valid: c.Valid()})
	}

	if format == "json" {
		return json.NewEncoder(out).Encode(list)
	}
	for _, bd := range list {
		note := ""
		if !bd.Valid {
			note = "  (never matches)"
		}
		fmt.Fprintf(out, "%-5s %s%s\n", bd.Action, bd.Chord, note)
	}
	return nil
}
