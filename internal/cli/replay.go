package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/bethropolis/blockundo/internal/host"
	"github.com/bethropolis/blockundo/internal/logger"
	"github.com/bethropolis/blockundo/internal/metrics"
	"github.com/bethropolis/blockundo/internal/plugin"
	"github.com/bethropolis/blockundo/internal/shortcut"
	"github.com/bethropolis/blockundo/plugins/undo"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Metrics bool
}

// StepResult is the history state after one step.
type StepResult struct {
	Step     int      `json:"step"`
	Action   string   `json:"action"`
	Position int      `json:"position"`
	Count    int      `json:"count"`
	CanUndo  bool     `json:"can_undo"`
	CanRedo  bool     `json:"can_redo"`
	Blocks   []string `json:"blocks"`
	Error    string   `json:"error,omitempty"`
}

// ReplayResult holds the outcome of a whole scenario.
type ReplayResult struct {
	Scenario string             `json:"scenario"`
	Steps    []StepResult       `json:"steps"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <scenario.yaml>",
		Short: "Replay an editing scenario against an in-memory editor",
		Long: `Replay runs the steps of a YAML scenario against an in-memory block editor
with the undo plugin attached, and prints the history state after each step.

Every step is followed by an immediate flush of pending change notifications,
so edits are recorded without waiting for the debounce window.

Exit codes:
  0 - All steps ran
  1 - A step failed
  2 - Command error (scenario not found, bad config, etc.)

Examples:
  blockundo replay session.yaml
  blockundo replay session.yaml --metrics --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), opts, cmd.OutOrStdout(), args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print history metrics after the last step")

	return cmd
}

func runReplay(ctx context.Context, opts *ReplayOptions, out io.Writer, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	scenario, err := LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	reg := prometheus.NewRegistry()
	collector, err := metrics.New(reg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to register metrics", err)
	}

	undoOpts := undo.OptionsFromConfig(opts.Config)
	undoOpts.Metrics = collector
	history := undo.New(undoOpts)
	history.InitializeState(scenario.Initial)

	editor := host.NewMemory(scenario.Initial)
	plugins := plugin.NewManager()
	if err := plugins.Register(history); err != nil {
		return WrapExitError(ExitCommandError, "failed to register plugin", err)
	}
	if err := plugins.InitializePlugins(editor); err != nil {
		return WrapExitError(ExitCommandError, "failed to attach plugin", err)
	}
	defer func() {
		if err := plugins.ShutdownPlugins(); err != nil {
			logger.Errorf("Replay: shutdown: %v", err)
		}
	}()

	result := ReplayResult{Scenario: scenario.Name, Steps: make([]StepResult, 0, len(scenario.Steps))}
	var failed error
	for i, step := range scenario.Steps {
		stepErr := applyStep(ctx, editor, history, step)
		history.Flush()
		history.Wait()

		r := StepResult{
			Step:     i + 1,
			Action:   step.Action,
			Position: history.Position(),
			Count:    history.Count(),
			CanUndo:  history.CanUndo(),
			CanRedo:  history.CanRedo(),
			Blocks:   editor.Snapshot().IDs(),
		}
		if stepErr != nil {
			r.Error = stepErr.Error()
			if failed == nil {
				failed = WrapExitError(ExitFailure, fmt.Sprintf("step %d (%s) failed", i+1, step.Action), stepErr)
			}
		}
		result.Steps = append(result.Steps, r)
		logger.Debugf("Replay: step %d %s -> position %d count %d", r.Step, r.Action, r.Position, r.Count)
	}

	if opts.Metrics {
		result.Metrics, err = gatherMetrics(reg)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to gather metrics", err)
		}
	}

	if err := writeReplay(out, opts.Format, result); err != nil {
		return err
	}
	return failed
}

func applyStep(ctx context.Context, editor *host.Memory, history *undo.Undo, step Step) error {
	switch step.Action {
	case StepEdit:
		editor.Edit(step.Blocks)
	case StepFocus:
		offset := host.CaretEnd
		if step.Offset != nil {
			offset = *step.Offset
		}
		editor.Focus(step.Index, offset)
	case StepBlur:
		editor.Blur()
	case StepUndo:
		return history.Undo(ctx)
	case StepRedo:
		return history.Redo(ctx)
	case StepKey:
		ev := shortcut.Parse(step.Key).Event()
		if ev == nil {
			return fmt.Errorf("cannot press %q", step.Key)
		}
		editor.PressKey(ev)
	case StepReadOnly:
		editor.SetReadOnly(step.Enabled)
	case StepClear:
		history.Clear()
	}
	return nil
}

// gatherMetrics flattens the registry into "name{label=value}" keys.
func gatherMetrics(reg *prometheus.Registry) (map[string]float64, error) {
	families, err := reg.Gather()
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			if labels := m.GetLabel(); len(labels) > 0 {
				pairs := make([]string, 0, len(labels))
				for _, lp := range labels {
					pairs = append(pairs, lp.GetName()+"="+lp.GetValue())
				}
				key += "{" + strings.Join(pairs, ",") + "}"
			}
			switch {
			case m.GetCounter() != nil:
				out[key] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[key] = m.GetGauge().GetValue()
			}
		}
	}
	return out, nil
}

func writeReplay(out io.Writer, format string, result ReplayResult) error {
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if result.Scenario != "" {
		fmt.Fprintf(out, "Scenario: %s\n", result.Scenario)
	}
	for _, r := range result.Steps {
		fmt.Fprintf(out, "%3d %-8s position=%d count=%d undo=%t redo=%t blocks=[%s]\n",
			r.Step, r.Action, r.Position, r.Count, r.CanUndo, r.CanRedo, strings.Join(r.Blocks, " "))
		if r.Error != "" {
			fmt.Fprintf(out, "    error: %s\n", r.Error)
		}
	}
	if len(result.Metrics) > 0 {
		keys := make([]string, 0, len(result.Metrics))
		for k := range result.Metrics {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintln(out, "Metrics:")
		for _, k := range keys {
			fmt.Fprintf(out, "  %s %g\n", k, result.Metrics[k])
		}
	}
	return nil
}
