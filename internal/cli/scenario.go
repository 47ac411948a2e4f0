package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bethropolis/blockundo/internal/types"
)

// Step actions understood by replay.
const (
	StepEdit     = "edit"  // replace the live document with Blocks
	StepFocus    = "focus" // put the caret in block Index at Offset (end when unset)
	StepBlur     = "blur"  // remove focus
	StepUndo     = "undo"
	StepRedo     = "redo"
	StepKey      = "key"      // press the chord in Key
	StepReadOnly = "readonly" // toggle read-only mode to Enabled
	StepClear    = "clear"
)

var knownSteps = map[string]bool{
	StepEdit: true, StepFocus: true, StepBlur: true, StepUndo: true,
	StepRedo: true, StepKey: true, StepReadOnly: true, StepClear: true,
}

// Scenario is an editing session read from YAML.
type Scenario struct {
	Name    string         `yaml:"name"`
	Initial types.Snapshot `yaml:"initial"`
	Steps   []Step         `yaml:"steps"`
}

// Step is one user or host action.
type Step struct {
	Action  string         `yaml:"action"`
	Blocks  types.Snapshot `yaml:"blocks,omitempty"`
	Index   int            `yaml:"index,omitempty"`
	Offset  *int           `yaml:"offset,omitempty"`
	Enabled bool           `yaml:"enabled,omitempty"`
	Key     string         `yaml:"key,omitempty"`
}

// LoadScenario reads and checks a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	for i, step := range s.Steps {
		if !knownSteps[step.Action] {
			return nil, fmt.Errorf("step %d: unknown action %q", i+1, step.Action)
		}
		if step.Action == StepKey && step.Key == "" {
			return nil, fmt.Errorf("step %d: key step without a key", i+1)
		}
	}
	return &s, nil
}
