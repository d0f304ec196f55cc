package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Session is the header of one play session.
type Session struct {
	ID            string
	LevelName     string
	LevelHash     string
	LevelTOML     []byte
	EngineVersion string

	// Options is the JSON-encoded session configuration.
	Options json.RawMessage
}

// StepKind names the input that produced a step.
type StepKind string

const (
	StepMove   StepKind = "move"
	StepAura   StepKind = "aura"
	StepSelect StepKind = "select"
	StepUndo   StepKind = "undo"
)

// Step is one committed step of a session.
type Step struct {
	SessionID    string
	Seq          int64
	Kind         StepKind
	Payload      json.RawMessage
	Effects      json.RawMessage
	SnapshotHash string
}

// CreateSession inserts a session header. Creating the same id twice is a
// no-op.
func (s *Store) CreateSession(ctx context.Context, sess Session) error {
	options := sess.Options
	if len(options) == 0 {
		options = json.RawMessage("{}")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, level_name, level_hash, level_toml, engine_version, options)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		sess.ID,
		sess.LevelName,
		sess.LevelHash,
		string(sess.LevelTOML),
		sess.EngineVersion,
		string(options),
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// AppendStep writes a step. A step already recorded under the same
// (session, seq) is left untouched.
func (s *Store) AppendStep(ctx context.Context, step Step) error {
	payload, effects := step.Payload, step.Effects
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	if len(effects) == 0 {
		effects = json.RawMessage("[]")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO steps (session_id, seq, kind, payload, effects, snapshot_hash)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, seq) DO NOTHING
	`,
		step.SessionID,
		step.Seq,
		string(step.Kind),
		string(payload),
		string(effects),
		step.SnapshotHash,
	)
	if err != nil {
		return fmt.Errorf("append step: %w", err)
	}
	return nil
}

// Session reads one session header. Returns ErrNotFound when absent.
func (s *Store) Session(ctx context.Context, id string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, level_name, level_hash, level_toml, engine_version, options
		FROM sessions
		WHERE id = ?
	`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Sessions lists every session ordered by id. UUIDv7 ids make this
// creation order.
func (s *Store) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, level_name, level_hash, level_toml, engine_version, options
		FROM sessions
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// Steps returns the steps of a session in seq order. Returns an empty slice
// (not nil) when there are none.
func (s *Store) Steps(ctx context.Context, sessionID string) ([]Step, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, seq, kind, payload, effects, snapshot_hash
		FROM steps
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	steps := []Step{}
	for rows.Next() {
		var (
			step             Step
			kind             string
			payload, effects string
		)
		if err := rows.Scan(&step.SessionID, &step.Seq, &kind, &payload, &effects, &step.SnapshotHash); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		step.Kind = StepKind(kind)
		step.Payload = json.RawMessage(payload)
		step.Effects = json.RawMessage(effects)
		steps = append(steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}
	return steps, nil
}

// LastSeq returns the highest seq recorded for a session, 0 if none.
func (s *Store) LastSeq(ctx context.Context, sessionID string) (int64, error) {
	var seq sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT MAX(seq) FROM steps WHERE session_id = ?", sessionID,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq.Int64, nil
}

// FindSnapshot returns the earliest step of a session whose snapshot hash
// matches. Returns ErrNotFound when no step matches.
func (s *Store) FindSnapshot(ctx context.Context, sessionID, hash string) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT seq FROM steps
		WHERE session_id = ? AND snapshot_hash = ?
		ORDER BY seq ASC
		LIMIT 1
	`, sessionID, hash).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("snapshot %s: %w", hash, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("find snapshot: %w", err)
	}
	return seq, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (Session, error) {
	var (
		sess           Session
		level, options string
	)
	err := row.Scan(&sess.ID, &sess.LevelName, &sess.LevelHash, &level, &sess.EngineVersion, &options)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, err
	}
	if err != nil {
		return Session{}, fmt.Errorf("scan session: %w", err)
	}
	sess.LevelTOML = []byte(level)
	sess.Options = json.RawMessage(options)
	return sess, nil
}
