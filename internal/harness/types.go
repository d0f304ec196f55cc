package harness

import (
	"github.com/roach88/sigil/internal/engine"
	"github.com/roach88/sigil/internal/graph"
)

// Step kinds as they appear in the trace.
const (
	KindMove   = "move"
	KindAura   = "aura"
	KindSelect = "select"
	KindUndo   = "undo"
)

// Step outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeStopped = "stopped"
	OutcomeNoop    = "noop"
	OutcomeRefused = "refused"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	// Seq is the session seq after the step. Refused steps and empty undos
	// leave it unchanged.
	Seq  int64  `json:"seq"`
	Kind string `json:"kind"`
	Args string `json:"args"`

	Outcome string `json:"outcome"`
	// Code is the error code of a refused step.
	Code string `json:"code,omitempty"`

	End  *graph.Point `json:"end,omitempty"`
	Hits []HitTrace   `json:"hits,omitempty"`
}

// HitTrace is one resolved collision of a move.
type HitTrace struct {
	Line    graph.LineID `json:"line"`
	Node    graph.NodeID `json:"node"`
	T       float64      `json:"t"`
	Effects []string     `json:"effects"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every step expectation and assertion held.
	Pass bool `json:"pass"`

	SessionID string       `json:"session_id"`
	Level     string       `json:"level"`
	Trace     []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the board after the last step.
	Final engine.Snapshot `json:"final"`

	// FinalHash is the snapshot hash of Final.
	FinalHash string `json:"final_hash"`

	// Replayed is set once the journal replay matched every step.
	Replayed bool `json:"replayed"`

	effects map[string]int
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Trace:   []TraceEvent{},
		Errors:  []string{},
		effects: make(map[string]int),
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// EffectCount returns how many effects of kind the run produced.
func (r *Result) EffectCount(kind string) int {
	return r.effects[kind]
}

func (r *Result) addTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
