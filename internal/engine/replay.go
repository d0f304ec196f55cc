package engine

// # Replay
//
// Replay is not a special mode. A replayed session is an ordinary Session
// fed the journaled inputs in seq order, with no journal attached. Three
// things make the result reproducible:
//
// 1. The level is stored with the session as TOML, so replay starts from
// the exact graph the player saw, not from a level file that may have been
// edited since.
//
// 2. The session Config is stored with it too, so clone offsets and
// budgets match.
//
// 3. Every step records the canonical hash of the snapshot it produced.
// Floats are quantised before hashing, and the hash excludes seq, so two
// runs agree exactly when their observable states agree.
//
// Failed moves are never journaled. They changed nothing, so skipping them
// on replay is equivalent.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/sigil/internal/graph"
	"github.com/roach88/sigil/internal/journal"
	"github.com/roach88/sigil/internal/level"
)

// ReplayResult summarises a replay.
type ReplayResult struct {
	SessionID     string `json:"session_id"`
	LevelName     string `json:"level_name"`
	EngineVersion string `json:"engine_version"`
	Steps         int    `json:"steps"`

	Diverged   bool   `json:"diverged"`
	DivergedAt int64  `json:"diverged_at,omitempty"`
	Expected   string `json:"expected,omitempty"`
	Got        string `json:"got,omitempty"`

	FinalHash string `json:"final_hash"`
	Solved    bool   `json:"solved"`
}

// Replay re-runs a journaled session and checks every snapshot hash.
//
// A divergence is reported in the result, not as an error; err is reserved
// for journal failures and steps that can no longer be applied.
func Replay(ctx context.Context, j *journal.Store, sessionID string, opts ...Option) (*ReplayResult, error) {
	hdr, err := j.Session(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	lvl, err := level.Decode(level.FormatTOML, hdr.LevelTOML, hdr.LevelName)
	if err != nil {
		return nil, fmt.Errorf("replay: stored level: %w", err)
	}
	cfg := DefaultConfig()
	if len(hdr.Options) > 0 {
		if err := json.Unmarshal(hdr.Options, &cfg); err != nil {
			return nil, fmt.Errorf("replay: stored options: %w", err)
		}
	}

	// Replay must not write, so any journal option is overridden.
	opts = append(opts, withStoredConfig(cfg), WithJournal(nil), WithIDGenerator(NewFixedGenerator(sessionID)))
	s, err := New(ctx, lvl, opts...)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	steps, err := j.Steps(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	res := &ReplayResult{
		SessionID:     sessionID,
		LevelName:     hdr.LevelName,
		EngineVersion: hdr.EngineVersion,
	}
	for _, st := range steps {
		if err := s.apply(ctx, st); err != nil {
			return nil, fmt.Errorf("replay: seq %d: %w", st.Seq, err)
		}
		res.Steps++

		got, err := s.Snapshot().Hash()
		if err != nil {
			return nil, fmt.Errorf("replay: seq %d: %w", st.Seq, err)
		}
		if got != st.SnapshotHash {
			res.Diverged = true
			res.DivergedAt = st.Seq
			res.Expected = st.SnapshotHash
			res.Got = got
			s.logger.Warn("replay diverged",
				"session", sessionID,
				"seq", st.Seq,
				"expected", st.SnapshotHash,
				"got", got,
			)
			break
		}
	}

	final := s.Snapshot()
	res.FinalHash, err = final.Hash()
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	res.Solved = final.Solved
	return res, nil
}

// Err returns a DivergenceError when the replay diverged.
func (r *ReplayResult) Err() error {
	if !r.Diverged {
		return nil
	}
	return &DivergenceError{
		SessionID: r.SessionID,
		Seq:       r.DivergedAt,
		Expected:  r.Expected,
		Got:       r.Got,
	}
}

// withStoredConfig applies a journaled Config. Unlike WithConfig it keeps a
// zero clone offset, which is a legal setting.
func withStoredConfig(cfg Config) Option {
	return func(s *Session) {
		WithConfig(cfg)(s)
		s.cfg.CloneOffset = cfg.CloneOffset
	}
}

// apply re-runs one journaled step.
func (s *Session) apply(ctx context.Context, st journal.Step) error {
	switch st.Kind {
	case journal.StepMove:
		var p movePayload
		if err := json.Unmarshal(st.Payload, &p); err != nil {
			return fmt.Errorf("decode move: %w", err)
		}
		_, err := s.Move(ctx, graph.Pt(p.DX, p.DY))
		return err

	case journal.StepAura:
		var p auraPayload
		if err := json.Unmarshal(st.Payload, &p); err != nil {
			return fmt.Errorf("decode aura: %w", err)
		}
		return s.SelectAura(ctx, p.Aura)

	case journal.StepSelect:
		var p selectPayload
		if err := json.Unmarshal(st.Payload, &p); err != nil {
			return fmt.Errorf("decode select: %w", err)
		}
		return s.Select(ctx, p.Node, p.Selected)

	case journal.StepUndo:
		_, err := s.Undo(ctx)
		return err

	default:
		return fmt.Errorf("unknown step kind %q", st.Kind)
	}
}
