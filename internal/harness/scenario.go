package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tempo/internal/ir"
)

// Scenario drives a set of timelines through a fixed sequence of frames
// and asserts on the resulting trace and states.
type Scenario struct {
	// Name uniquely identifies this scenario; golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs is a directory of CUE timeline definitions.
	// Relative paths are resolved against the scenario file.
	Specs string `yaml:"specs,omitempty"`

	// Timelines are inline definitions, used when Specs is empty.
	Timelines []ir.TimelineSpec `yaml:"timelines,omitempty"`

	// Workers is the evaluate-phase parallelism. 0 means 1.
	Workers int `yaml:"workers,omitempty"`

	// TimeScale is the initial global time scale. nil means 1.
	TimeScale *float64 `yaml:"time_scale,omitempty"`

	// Frames lists the delta of each frame, in order.
	Frames []float64 `yaml:"frames"`

	// Actions are controls applied before a given frame runs.
	Actions []Action `yaml:"actions,omitempty"`

	// Assertions validate the trace and states.
	Assertions []Assertion `yaml:"assertions"`

	// RunID labels the recorded run. Defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`
}

// Action is a control applied to one timeline before frame Frame runs.
type Action struct {
	// Frame is the 1-based frame the action precedes.
	Frame int `yaml:"frame"`

	// Type is play, kill, seek or time_scale.
	Type string `yaml:"type"`

	// Timeline names the target (unused by time_scale).
	Timeline string `yaml:"timeline,omitempty"`

	// Position is the raw playhead for seek.
	Position float64 `yaml:"position,omitempty"`

	// Scale is the global time scale for time_scale.
	Scale float64 `yaml:"scale,omitempty"`
}

// Action type constants.
const (
	ActionPlay      = "play"
	ActionKill      = "kill"
	ActionSeek      = "seek"
	ActionTimeScale = "time_scale"
)

// Assertion validates the trace or a timeline's state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "status": timeline status after a frame
	// - "progress": timeline progress after a frame
	// - "value": animated value after a frame
	// - "event_count": number of dispatched events
	// - "event_order": first occurrences in order
	// - "laws": evaluator laws for the timeline's parameters
	Type string `yaml:"type"`

	// Timeline names the timeline (status, progress, value, laws; optional
	// filter for event_count).
	Timeline string `yaml:"timeline,omitempty"`

	// Frame selects the state after that frame. 0 means after the last.
	Frame int `yaml:"frame,omitempty"`

	// Status is the expected status name (status).
	Status string `yaml:"status,omitempty"`

	// Progress is the expected eased progress (progress).
	Progress *float64 `yaml:"progress,omitempty"`

	// Values is the expected property value (value).
	Values []float64 `yaml:"values,omitempty"`

	// Text is the expected text value (value).
	Text *string `yaml:"text,omitempty"`

	// Tolerance bounds float comparisons. 0 means DefaultTolerance.
	Tolerance float64 `yaml:"tolerance,omitempty"`

	// Event is the event name to count (event_count).
	Event string `yaml:"event,omitempty"`

	// Count is the expected number of occurrences (event_count).
	Count *int `yaml:"count,omitempty"`

	// Events is the expected order of "timeline.event" entries (event_order).
	Events []string `yaml:"events,omitempty"`

	// Laws restricts which laws are checked (laws). Empty means every law
	// that applies to the timeline's loop type.
	Laws []string `yaml:"laws,omitempty"`
}

// Assertion type constants.
const (
	AssertStatus     = "status"
	AssertProgress   = "progress"
	AssertValue      = "value"
	AssertEventCount = "event_count"
	AssertEventOrder = "event_order"
	AssertLaws       = "laws"
)

// DefaultTolerance bounds progress and value comparisons when an assertion
// does not set its own.
const DefaultTolerance = 1e-6

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative Specs path is resolved against the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Specs != "" && !filepath.IsAbs(scenario.Specs) {
		scenario.Specs = filepath.Join(filepath.Dir(path), scenario.Specs)
	}
	if scenario.Specs != "" {
		if _, err := os.Stat(scenario.Specs); err != nil {
			return nil, fmt.Errorf("invalid scenario: specs directory: %w", err)
		}
	}

	return scenario, nil
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Specs == "" && len(s.Timelines) == 0 {
		return fmt.Errorf("specs or timelines is required")
	}
	if s.Specs != "" && len(s.Timelines) > 0 {
		return fmt.Errorf("specs and timelines are mutually exclusive")
	}

	if len(s.Frames) == 0 {
		return fmt.Errorf("frames list is required and must be non-empty")
	}

	if s.Workers < 0 {
		return fmt.Errorf("workers must be >= 0")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, a := range s.Actions {
		if err := validateAction(i, a, len(s.Frames)); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, len(s.Frames)); err != nil {
			return err
		}
	}

	return nil
}

func validateAction(index int, a Action, frames int) error {
	if a.Frame < 1 || a.Frame > frames {
		return fmt.Errorf("actions[%d]: frame must be in 1..%d, got %d", index, frames, a.Frame)
	}
	switch a.Type {
	case ActionPlay, ActionKill, ActionSeek:
		if a.Timeline == "" {
			return fmt.Errorf("actions[%d]: timeline is required for %s", index, a.Type)
		}
	case ActionTimeScale:
	case "":
		return fmt.Errorf("actions[%d]: type is required", index)
	default:
		return fmt.Errorf("actions[%d]: unknown action type %q", index, a.Type)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, frames int) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Frame < 0 || a.Frame > frames {
		return fmt.Errorf("assertions[%d]: frame must be in 0..%d, got %d", index, frames, a.Frame)
	}
	if a.Tolerance < 0 {
		return fmt.Errorf("assertions[%d]: tolerance must be >= 0", index)
	}

	switch a.Type {
	case AssertStatus:
		if a.Timeline == "" {
			return fmt.Errorf("assertions[%d]: timeline is required for status", index)
		}
		if _, ok := ir.ParseStatus(a.Status); !ok {
			return fmt.Errorf("assertions[%d]: unknown status %q", index, a.Status)
		}
	case AssertProgress:
		if a.Timeline == "" {
			return fmt.Errorf("assertions[%d]: timeline is required for progress", index)
		}
		if a.Progress == nil {
			return fmt.Errorf("assertions[%d]: progress is required for progress", index)
		}
	case AssertValue:
		if a.Timeline == "" {
			return fmt.Errorf("assertions[%d]: timeline is required for value", index)
		}
		if a.Values == nil && a.Text == nil {
			return fmt.Errorf("assertions[%d]: values or text is required for value", index)
		}
	case AssertEventCount:
		if _, ok := ir.ParseEvent(a.Event); !ok {
			return fmt.Errorf("assertions[%d]: unknown event %q for event_count", index, a.Event)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be set and non-negative for event_count", index)
		}
	case AssertEventOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for event_order", index)
		}
	case AssertLaws:
		if a.Timeline == "" {
			return fmt.Errorf("assertions[%d]: timeline is required for laws", index)
		}
		for _, law := range a.Laws {
			if !knownLaw(law) {
				return fmt.Errorf("assertions[%d]: unknown law %q", index, law)
			}
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
