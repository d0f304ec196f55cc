package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/sigil/internal/cursor"
	"github.com/roach88/sigil/internal/engine"
	"github.com/roach88/sigil/internal/graph"
	"github.com/roach88/sigil/internal/journal"
	"github.com/roach88/sigil/internal/level"
	"github.com/roach88/sigil/internal/rules"
)

// Refusal codes. A refused step leaves the session unchanged.
const (
	CodeRuleConflict    = "rule_conflict"
	CodeCollisionBudget = "collision_budget"
	CodeInvalidNode     = "invalid_node"
	CodeUnknownLine     = "unknown_line"
)

// ErrorCode classifies an error returned by a session step. It returns ""
// for errors that are not player-facing refusals.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case rules.IsRuleConflict(err):
		return CodeRuleConflict
	case cursor.IsCollisionsExceeded(err):
		return CodeCollisionBudget
	case graph.IsInvalidNode(err):
		return CodeInvalidNode
	case graph.IsUnknownLine(err):
		return CodeUnknownLine
	default:
		return ""
	}
}

func knownCode(code string) bool {
	switch code {
	case CodeRuleConflict, CodeCollisionBudget, CodeInvalidNode, CodeUnknownLine:
		return true
	}
	return false
}

// Option configures a run.
type Option func(*Harness)

// WithDriver selects the journal's sqlite driver.
func WithDriver(name string) Option {
	return func(h *Harness) {
		h.driver = name
	}
}

// WithLogger sets the logger handed to the session.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		if l != nil {
			h.logger = l
		}
	}
}

// Harness executes one scenario.
type Harness struct {
	session *engine.Session
	driver  string
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory journal for isolation. The error
// is reserved for failures outside the scenario's control: unreadable
// levels, journal errors, steps failing for reasons other than a refusal.
// Failed expectations are reported in the result.
//
// Execution flow:
// 1. Load the level and start a journaled session with a fixed id
// 2. Execute steps, checking each step's expectations
// 3. Replay the journal and check it reproduces every snapshot
// 4. Evaluate assertions against the final board
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		driver: journal.DriverCGO,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}

	lvl, err := level.Load(scenario.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to load level: %w", err)
	}

	j, err := journal.Open(":memory:", journal.WithDriver(h.driver))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory journal: %w", err)
	}
	defer j.Close()

	sessOpts := append(scenario.Config.Options(),
		engine.WithJournal(j),
		engine.WithLogger(h.logger),
		engine.WithIDGenerator(engine.NewFixedGenerator(scenario.SessionID())),
	)
	h.session, err = engine.New(ctx, lvl, sessOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	result := NewResult()
	result.SessionID = h.session.ID()
	result.Level = lvl.Name

	for i, step := range scenario.Steps {
		if err := h.execute(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	result.Final = h.session.Snapshot()
	result.FinalHash, err = result.Final.Hash()
	if err != nil {
		return nil, err
	}

	if err := h.verifyReplay(ctx, j, result); err != nil {
		return nil, err
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"steps", len(scenario.Steps),
		"pass", result.Pass,
	)
	return result, nil
}

// execute runs one step and checks its expect clause.
func (h *Harness) execute(ctx context.Context, index int, step Step, result *Result) error {
	s := h.session
	ev := TraceEvent{Kind: step.Kind(), Outcome: OutcomeOK}
	var (
		mv     cursor.Step
		undone bool
		err    error
	)

	switch ev.Kind {
	case KindMove:
		delta := graph.Pt(step.Move[0], step.Move[1])
		ev.Args = formatPoint(delta)
		mv, err = s.Move(ctx, delta)
		if err == nil {
			end := mv.End
			ev.End = &end
			if mv.Stopped {
				ev.Outcome = OutcomeStopped
			}
			for _, hit := range mv.Hits {
				ht := HitTrace{
					Line:    hit.Crossing.Line,
					Node:    hit.Crossing.Node,
					T:       hit.Crossing.T,
					Effects: make([]string, 0, len(hit.Outcome.Effects)),
				}
				for _, e := range hit.Outcome.Effects {
					ht.Effects = append(ht.Effects, e.String())
					result.effects[string(e.Kind)]++
				}
				ev.Hits = append(ev.Hits, ht)
			}
		}

	case KindAura:
		a, perr := rules.ParseAura(step.Aura)
		if perr != nil {
			return perr
		}
		ev.Args = a.String()
		err = s.SelectAura(ctx, a)

	case KindSelect:
		ev.Args = fmt.Sprintf("%d %s", step.Select.Node, onOff(step.Select.On))
		err = s.Select(ctx, step.Select.Node, step.Select.On)

	case KindUndo:
		undone, err = s.Undo(ctx)
		if err == nil && !undone {
			ev.Outcome = OutcomeNoop
		}

	default:
		return fmt.Errorf("step has no action")
	}

	if err != nil {
		code := ErrorCode(err)
		if code == "" {
			return err
		}
		ev.Outcome = OutcomeRefused
		ev.Code = code
		h.logger.Debug("step refused", "step", index, "kind", ev.Kind, "code", code, "error", err)
	}
	ev.Seq = s.Seq()
	result.addTrace(ev)

	for _, msg := range checkExpect(index, step.Expect, ev, mv, undone, err) {
		result.AddError(msg)
	}
	return nil
}

// checkExpect compares a step's outcome with its expect clause.
func checkExpect(index int, want *StepExpect, ev TraceEvent, mv cursor.Step, undone bool, err error) []string {
	var errs []string
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf("steps[%d] %s: ", index, ev.Kind)+fmt.Sprintf(format, args...))
	}

	if want == nil || want.Error == "" {
		if err != nil {
			fail("unexpectedly refused: %v", err)
		}
	} else if ev.Code != want.Error {
		fail("expected refusal %q, got %q", want.Error, orNone(ev.Code))
	}
	if want == nil {
		return errs
	}

	if want.Hits != nil && len(mv.Hits) != *want.Hits {
		fail("expected %d hits, got %d", *want.Hits, len(mv.Hits))
	}
	if want.Stopped != nil && mv.Stopped != *want.Stopped {
		fail("expected stopped=%t, got %t", *want.Stopped, mv.Stopped)
	}
	if len(want.Effects) > 0 {
		counts := make(map[string]int)
		for _, hit := range mv.Hits {
			for _, e := range hit.Outcome.Effects {
				counts[string(e.Kind)]++
			}
		}
		for _, kind := range sortedKeys(want.Effects) {
			if counts[kind] != want.Effects[kind] {
				fail("expected %d %s effects, got %d", want.Effects[kind], kind, counts[kind])
			}
		}
	}
	if want.Undone != nil && undone != *want.Undone {
		fail("expected undone=%t, got %t", *want.Undone, undone)
	}
	return errs
}

// verifyReplay replays the run's journal and checks it lands on the same
// board.
func (h *Harness) verifyReplay(ctx context.Context, j *journal.Store, result *Result) error {
	rep, err := engine.Replay(ctx, j, result.SessionID, engine.WithLogger(h.logger))
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	var div *engine.DivergenceError
	switch err := rep.Err(); {
	case errors.As(err, &div):
		result.AddError(fmt.Sprintf("replay: %v", div))
	case rep.FinalHash != result.FinalHash:
		result.AddError(fmt.Sprintf("replay: final hash %s, session ended on %s", rep.FinalHash, result.FinalHash))
	default:
		result.Replayed = true
	}
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
