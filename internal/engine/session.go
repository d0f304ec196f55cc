package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/sigil/internal/cursor"
	"github.com/roach88/sigil/internal/graph"
	"github.com/roach88/sigil/internal/journal"
	"github.com/roach88/sigil/internal/level"
	"github.com/roach88/sigil/internal/rules"
)

// EngineVersion is recorded with every journaled session. Replay refuses
// nothing on a mismatch but reports it.
const EngineVersion = "0.1.0"

// DefaultHistoryLimit bounds the undo history.
const DefaultHistoryLimit = 1024

// Config is the tunable part of a session. It is journaled with the session
// so a replay runs under the same settings.
type Config struct {
	CloneOffset   graph.Point `json:"clone_offset"`
	MaxCollisions int         `json:"max_collisions"`
	LoopBudget    int         `json:"loop_budget"`
	HistoryLimit  int         `json:"history_limit"`
}

// DefaultConfig returns the settings used when no option overrides them.
func DefaultConfig() Config {
	return Config{
		CloneOffset:   rules.DefaultCloneOffset,
		MaxCollisions: cursor.DefaultMaxCollisions,
		LoopBudget:    graph.DefaultLoopBudget,
		HistoryLimit:  DefaultHistoryLimit,
	}
}

// Option configures a Session.
type Option func(*Session)

// WithConfig replaces the whole configuration. Zero fields keep defaults.
func WithConfig(cfg Config) Option {
	return func(s *Session) {
		if cfg.CloneOffset != (graph.Point{}) {
			s.cfg.CloneOffset = cfg.CloneOffset
		}
		if cfg.MaxCollisions > 0 {
			s.cfg.MaxCollisions = cfg.MaxCollisions
		}
		if cfg.LoopBudget > 0 {
			s.cfg.LoopBudget = cfg.LoopBudget
		}
		if cfg.HistoryLimit > 0 {
			s.cfg.HistoryLimit = cfg.HistoryLimit
		}
	}
}

// WithCloneOffset sets where Circle-aura clones are placed.
func WithCloneOffset(p graph.Point) Option {
	return func(s *Session) {
		s.cfg.CloneOffset = p
	}
}

// WithMaxCollisions bounds the collisions resolved in one move.
func WithMaxCollisions(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.cfg.MaxCollisions = n
		}
	}
}

// WithLoopBudget caps cycle enumeration in topology queries.
func WithLoopBudget(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.cfg.LoopBudget = n
		}
	}
}

// WithHistoryLimit bounds how many steps Undo can walk back.
func WithHistoryLimit(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.cfg.HistoryLimit = n
		}
	}
}

// WithJournal appends every committed step to j.
func WithJournal(j *journal.Store) Option {
	return func(s *Session) {
		s.journal = j
	}
}

// WithLogger sets the logger. It is handed down to the rule engine and
// cursor controller.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIDGenerator sets the session id source. Defaults to UUIDv7.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Session) {
		if g != nil {
			s.ids = g
		}
	}
}

// checkpoint is the state before one undoable step.
type checkpoint struct {
	store  *graph.Store
	cursor cursor.Cursor
}

// Session plays one level.
type Session struct {
	cfg     Config
	journal *journal.Store
	logger  *slog.Logger
	ids     IDGenerator

	id      string
	level   *level.Level
	clock   *Clock
	store   *graph.Store
	rules   *rules.Engine
	ctl     *cursor.Controller
	history []checkpoint
}

// New creates a session and loads lvl into it.
func New(ctx context.Context, lvl *level.Level, opts ...Option) (*Session, error) {
	s := &Session{
		cfg:    DefaultConfig(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		ids:    UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Load(ctx, lvl); err != nil {
		return nil, err
	}
	return s, nil
}

// Load replaces the current level. It starts a new session id, a new clock
// and an empty history. On error the previous level stays loaded.
func (s *Session) Load(ctx context.Context, lvl *level.Level) error {
	if lvl == nil {
		return fmt.Errorf("load level: %w", ErrNoLevel)
	}
	store, err := lvl.Build()
	if err != nil {
		return fmt.Errorf("load level %q: %w", lvl.Name, err)
	}
	store.SetLoopBudget(s.cfg.LoopBudget)

	re := rules.New(
		rules.WithCloneOffset(s.cfg.CloneOffset),
		rules.WithLogger(s.logger),
	)
	ctl, err := cursor.New(store, re, lvl.Cursor,
		cursor.WithMaxCollisions(s.cfg.MaxCollisions),
		cursor.WithLogger(s.logger),
	)
	if err != nil {
		return fmt.Errorf("load level %q: %w", lvl.Name, err)
	}

	id := s.ids.Generate()
	if s.journal != nil {
		if err := s.recordSession(ctx, id, lvl); err != nil {
			return err
		}
	}

	s.id = id
	s.level = lvl
	s.clock = NewClock()
	s.store = store
	s.rules = re
	s.ctl = ctl
	s.history = nil

	s.logger.Info("level loaded",
		"session", id,
		"level", lvl.Name,
		"nodes", store.NodeCount(),
		"lines", store.LineCount(),
	)
	return nil
}

func (s *Session) recordSession(ctx context.Context, id string, lvl *level.Level) error {
	data, err := level.EncodeTOML(lvl)
	if err != nil {
		return fmt.Errorf("journal session: %w", err)
	}
	hash, err := lvl.Hash()
	if err != nil {
		return fmt.Errorf("journal session: %w", err)
	}
	options, err := json.Marshal(s.cfg)
	if err != nil {
		return fmt.Errorf("journal session: %w", err)
	}
	return s.journal.CreateSession(ctx, journal.Session{
		ID:            id,
		LevelName:     lvl.Name,
		LevelHash:     hash,
		LevelTOML:     data,
		EngineVersion: EngineVersion,
		Options:       options,
	})
}

// movePayload is the journaled input of a move step.
type movePayload struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

type auraPayload struct {
	Aura rules.Aura `json:"aura"`
}

type selectPayload struct {
	Node     graph.NodeID `json:"node"`
	Selected bool         `json:"selected"`
}

// Move advances the cursor by delta and resolves every collision on the
// way. A failed move changes nothing and is not journaled.
func (s *Session) Move(ctx context.Context, delta graph.Point) (cursor.Step, error) {
	if s.ctl == nil {
		return cursor.Step{}, ErrNoLevel
	}
	cp := s.checkpoint()
	history := s.history
	step, err := s.ctl.Move(delta)
	if err != nil {
		return cursor.Step{}, err
	}
	s.push(cp)

	seq, err := s.commit(ctx, cp, history, journal.StepMove, movePayload{DX: delta.X, DY: delta.Y}, step.Hits)
	if err != nil {
		return cursor.Step{}, err
	}
	s.logger.Debug("move committed",
		"session", s.id,
		"seq", seq,
		"collisions", len(step.Hits),
		"stopped", step.Stopped,
	)
	return step, nil
}

// SelectAura replaces the cursor with one of aura a at the same position.
// Aura changes are journaled but are not undo points, and Undo keeps the
// current aura.
func (s *Session) SelectAura(ctx context.Context, a rules.Aura) error {
	if s.ctl == nil {
		return ErrNoLevel
	}
	cp := s.checkpoint()
	if err := s.ctl.SelectAura(a); err != nil {
		return err
	}
	_, err := s.commit(ctx, cp, s.history, journal.StepAura, auraPayload{Aura: a}, nil)
	return err
}

// Select sets the selection flag of a node.
func (s *Session) Select(ctx context.Context, node graph.NodeID, selected bool) error {
	if s.store == nil {
		return ErrNoLevel
	}
	cp := s.checkpoint()
	history := s.history
	if err := s.store.SetSelected(node, selected); err != nil {
		return err
	}
	s.push(cp)
	_, err := s.commit(ctx, cp, history, journal.StepSelect, selectPayload{Node: node, Selected: selected}, nil)
	return err
}

// Undo restores the graph and cursor position from before the last move or
// selection. The cursor keeps its current aura. It reports false when there
// is nothing to undo.
func (s *Session) Undo(ctx context.Context) (bool, error) {
	if s.store == nil {
		return false, ErrNoLevel
	}
	if len(s.history) == 0 {
		return false, nil
	}
	current := s.checkpoint()
	history := s.history
	cp := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]

	cur := cp.cursor
	cur.Aura = current.cursor.Aura
	s.store.Restore(cp.store)
	if err := s.ctl.Reset(cur); err != nil {
		s.store.Restore(current.store)
		s.history = history
		return false, err
	}
	if _, err := s.commit(ctx, current, history, journal.StepUndo, struct{}{}, nil); err != nil {
		return false, err
	}
	return true, nil
}

// commit journals a step that has already been applied and advances the
// clock. If the journal write fails, store, cursor and history go back to
// cp and history, and the clock does not move.
func (s *Session) commit(ctx context.Context, cp checkpoint, history []checkpoint, kind journal.StepKind, payload any, hits []cursor.Hit) (int64, error) {
	seq := s.clock.Current() + 1
	if err := s.record(ctx, seq, kind, payload, hits); err != nil {
		s.store.Restore(cp.store)
		// cp.cursor was taken from the controller, so Reset cannot fail.
		_ = s.ctl.Reset(cp.cursor)
		s.history = history
		return 0, err
	}
	s.clock.Next()
	return seq, nil
}

func (s *Session) checkpoint() checkpoint {
	return checkpoint{store: s.store.Clone(), cursor: s.ctl.Cursor()}
}

func (s *Session) push(cp checkpoint) {
	s.history = append(s.history, cp)
	if over := len(s.history) - s.cfg.HistoryLimit; over > 0 {
		s.history = s.history[over:]
	}
}

func (s *Session) record(ctx context.Context, seq int64, kind journal.StepKind, payload any, hits []cursor.Hit) error {
	if s.journal == nil {
		return nil
	}
	hash, err := s.snapshot(seq).Hash()
	if err != nil {
		return fmt.Errorf("journal step %d: %w", seq, err)
	}
	p, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("journal step %d: %w", seq, err)
	}
	if hits == nil {
		hits = []cursor.Hit{}
	}
	effects, err := json.Marshal(hits)
	if err != nil {
		return fmt.Errorf("journal step %d: %w", seq, err)
	}
	if err := s.journal.AppendStep(ctx, journal.Step{
		SessionID:    s.id,
		Seq:          seq,
		Kind:         kind,
		Payload:      p,
		Effects:      effects,
		SnapshotHash: hash,
	}); err != nil {
		return fmt.Errorf("journal step %d: %w", seq, err)
	}
	return nil
}

// Snapshot returns the current observable state.
func (s *Session) Snapshot() Snapshot {
	return s.snapshot(s.clock.Current())
}

func (s *Session) snapshot(seq int64) Snapshot {
	return buildSnapshot(s.store, s.ctl.Cursor(), seq)
}

// Solved reports whether every active rune's glyph condition holds.
func (s *Session) Solved() bool {
	return s.Snapshot().Solved
}

// Crossings previews the collisions a move by delta would start with.
func (s *Session) Crossings(delta graph.Point) []cursor.Crossing {
	return s.ctl.Crossings(delta)
}

// ID returns the current session id.
func (s *Session) ID() string { return s.id }

// Level returns the loaded level.
func (s *Session) Level() *level.Level { return s.level }

// Seq returns the sequence number of the last committed step.
func (s *Session) Seq() int64 { return s.clock.Current() }

// Cursor returns the current cursor.
func (s *Session) Cursor() cursor.Cursor { return s.ctl.Cursor() }

// Config returns the effective configuration.
func (s *Session) Config() Config { return s.cfg }

// CanUndo reports whether Undo would change anything.
func (s *Session) CanUndo() bool { return len(s.history) > 0 }
