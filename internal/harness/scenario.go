package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sigil/internal/engine"
	"github.com/roach88/sigil/internal/graph"
	"github.com/roach88/sigil/internal/rules"
)

// Scenario defines one puzzle run.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Level is the level file to play. Relative paths are resolved against
	// the scenario file's directory.
	Level string `yaml:"level"`

	// Session is the fixed session id. Defaults to "scenario-<name>".
	Session string `yaml:"session,omitempty"`

	// Config overrides engine defaults. Zero fields keep the default.
	Config *ConfigSpec `yaml:"config,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions"`

	// Path is the file the scenario was loaded from.
	Path string `yaml:"-"`
}

// ConfigSpec mirrors engine.Config in YAML.
type ConfigSpec struct {
	CloneOffset   *PointSpec `yaml:"clone_offset,omitempty"`
	MaxCollisions int        `yaml:"max_collisions,omitempty"`
	LoopBudget    int        `yaml:"loop_budget,omitempty"`
	HistoryLimit  int        `yaml:"history_limit,omitempty"`
}

// PointSpec is a point in YAML.
type PointSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Options converts the overrides into session options.
func (c *ConfigSpec) Options() []engine.Option {
	if c == nil {
		return nil
	}
	var opts []engine.Option
	if c.CloneOffset != nil {
		opts = append(opts, engine.WithCloneOffset(graph.Pt(c.CloneOffset.X, c.CloneOffset.Y)))
	}
	if c.MaxCollisions > 0 {
		opts = append(opts, engine.WithMaxCollisions(c.MaxCollisions))
	}
	if c.LoopBudget > 0 {
		opts = append(opts, engine.WithLoopBudget(c.LoopBudget))
	}
	if c.HistoryLimit > 0 {
		opts = append(opts, engine.WithHistoryLimit(c.HistoryLimit))
	}
	return opts
}

// Step is one player action. Exactly one of Move, Aura, Select and Undo
// is set.
type Step struct {
	// Move is the displacement [dx, dy].
	Move []float64 `yaml:"move,omitempty"`

	// Aura names the aura to switch to.
	Aura string `yaml:"aura,omitempty"`

	Select *SelectSpec `yaml:"select,omitempty"`
	Undo   bool        `yaml:"undo,omitempty"`

	// Expect checks the outcome of this step. Nil means the step must
	// simply not fail.
	Expect *StepExpect `yaml:"expect,omitempty"`
}

// SelectSpec sets the selection flag of a node.
type SelectSpec struct {
	Node graph.NodeID `yaml:"node"`
	On   bool         `yaml:"on"`
}

// StepExpect specifies the expected outcome of a step.
type StepExpect struct {
	// Hits is the number of resolved collisions of a move.
	Hits *int `yaml:"hits,omitempty"`

	// Stopped reports whether a move was halted by a rejection.
	Stopped *bool `yaml:"stopped,omitempty"`

	// Effects counts effects by kind across the move's collisions. Kinds
	// not listed are not checked.
	Effects map[string]int `yaml:"effects,omitempty"`

	// Error is the expected refusal code, see ErrorCode.
	Error string `yaml:"error,omitempty"`

	// Undone is the expected return of an undo.
	Undone *bool `yaml:"undone,omitempty"`
}

// Kind returns the step kind, or "" when zero or several actions are set.
func (s Step) Kind() string {
	var kinds []string
	if s.Move != nil {
		kinds = append(kinds, KindMove)
	}
	if s.Aura != "" {
		kinds = append(kinds, KindAura)
	}
	if s.Select != nil {
		kinds = append(kinds, KindSelect)
	}
	if s.Undo {
		kinds = append(kinds, KindUndo)
	}
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

// Assertion validates the final board or the whole run.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Value is the expected flag (used by solved).
	Value *bool `yaml:"value,omitempty"`

	// Count is the expected number (node_count, line_count, effect_count).
	Count *int `yaml:"count,omitempty"`

	Node graph.NodeID `yaml:"node,omitempty"`
	Line graph.LineID `yaml:"line,omitempty"`

	// Effect is the effect kind counted by effect_count.
	Effect string `yaml:"effect,omitempty"`

	// Expect holds the fields to match (node, line, cursor). Subset match.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertSolved      = "solved"
	AssertNodeCount   = "node_count"
	AssertLineCount   = "line_count"
	AssertNode        = "node"
	AssertLine        = "line"
	AssertCursor      = "cursor"
	AssertEffectCount = "effect_count"
)

var effectKinds = map[string]bool{
	string(rules.EffectReject):     true,
	string(rules.EffectFlip):       true,
	string(rules.EffectReconnect):  true,
	string(rules.EffectConnect):    true,
	string(rules.EffectDisconnect): true,
	string(rules.EffectClone):      true,
	string(rules.EffectDestroy):    true,
	string(rules.EffectToggle):     true,
	string(rules.EffectPrune):      true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	scenario.Path = path
	if scenario.Level != "" && !filepath.IsAbs(scenario.Level) {
		scenario.Level = filepath.Join(filepath.Dir(path), scenario.Level)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// SessionID returns the fixed session id used for the run.
func (s *Scenario) SessionID() string {
	if s.Session != "" {
		return s.Session
	}
	return "scenario-" + s.Name
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Level == "" {
		return fmt.Errorf("level is required")
	}
	if _, err := os.Stat(s.Level); os.IsNotExist(err) {
		return fmt.Errorf("level file not found: %s", s.Level)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step Step) error {
	switch step.Kind() {
	case "":
		return fmt.Errorf("steps[%d]: exactly one of move, aura, select or undo is required", index)
	case KindMove:
		if len(step.Move) != 2 {
			return fmt.Errorf("steps[%d]: move needs [dx, dy], got %d values", index, len(step.Move))
		}
	case KindAura:
		if _, err := rules.ParseAura(step.Aura); err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
	}
	if step.Expect == nil {
		return nil
	}
	for kind := range step.Expect.Effects {
		if !effectKinds[kind] {
			return fmt.Errorf("steps[%d].expect: unknown effect kind %q", index, kind)
		}
	}
	if step.Expect.Error != "" && !knownCode(step.Expect.Error) {
		return fmt.Errorf("steps[%d].expect: unknown error code %q", index, step.Expect.Error)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertSolved:
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for solved", index)
		}
	case AssertNodeCount, AssertLineCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for %s", index, a.Type)
		}
	case AssertNode:
		if a.Node == 0 {
			return fmt.Errorf("assertions[%d]: node is required for node", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for node", index)
		}
	case AssertLine:
		if a.Line == 0 {
			return fmt.Errorf("assertions[%d]: line is required for line", index)
		}
	case AssertCursor:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for cursor", index)
		}
	case AssertEffectCount:
		if !effectKinds[a.Effect] {
			return fmt.Errorf("assertions[%d]: unknown effect kind %q", index, a.Effect)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for effect_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
