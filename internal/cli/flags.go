package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sigil/internal/engine"
	"github.com/roach88/sigil/internal/graph"
	"github.com/roach88/sigil/internal/journal"
	"github.com/roach88/sigil/internal/level"
)

// SessionFlags are the flags shared by commands that start a session.
type SessionFlags struct {
	Database      string
	Driver        string
	CloneOffset   string
	MaxCollisions int
	LoopBudget    int
	HistoryLimit  int

	// IDGenerator overrides the session id generator (for testing).
	// If nil, sessions get UUIDv7 ids.
	IDGenerator engine.IDGenerator
}

// Register adds the session flags to cmd.
func (f *SessionFlags) Register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Database, "db", "", "journal steps to this SQLite database")
	cmd.Flags().StringVar(&f.Driver, "driver", journal.DriverCGO, "database/sql driver (sqlite3|sqlite)")
	cmd.Flags().StringVar(&f.CloneOffset, "clone-offset", "", "clone displacement as dx,dy")
	cmd.Flags().IntVar(&f.MaxCollisions, "max-collisions", 0, "collision budget per move (0 = default)")
	cmd.Flags().IntVar(&f.LoopBudget, "loop-budget", 0, "traversal budget for loop checks (0 = default)")
	cmd.Flags().IntVar(&f.HistoryLimit, "history-limit", 0, "undo depth (0 = default)")
}

// options turns the flags into session options. The returned journal, if
// any, belongs to the caller.
func (f *SessionFlags) options(logger *slog.Logger) ([]engine.Option, *journal.Store, error) {
	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithMaxCollisions(f.MaxCollisions),
		engine.WithLoopBudget(f.LoopBudget),
		engine.WithHistoryLimit(f.HistoryLimit),
	}
	if f.CloneOffset != "" {
		p, err := parsePoint(f.CloneOffset)
		if err != nil {
			return nil, nil, WrapExitError(ExitCommandError, "invalid --clone-offset", err)
		}
		opts = append(opts, engine.WithCloneOffset(p))
	}
	if f.IDGenerator != nil {
		opts = append(opts, engine.WithIDGenerator(f.IDGenerator))
	}
	if f.Database == "" {
		return opts, nil, nil
	}

	j, err := openJournal(f.Database, f.Driver)
	if err != nil {
		return nil, nil, err
	}
	return append(opts, engine.WithJournal(j)), j, nil
}

// Start loads the level at path and starts a session configured by the
// flags. The returned func closes the journal, if one was opened.
func (f *SessionFlags) Start(ctx context.Context, path string, logger *slog.Logger) (*engine.Session, func(), error) {
	lvl, err := loadLevel(path)
	if err != nil {
		return nil, nil, err
	}
	opts, j, err := f.options(logger)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if j == nil {
			return
		}
		if err := j.Close(); err != nil {
			logger.Error("error closing journal", "error", err)
		}
	}

	s, err := engine.New(ctx, lvl, opts...)
	if err != nil {
		release()
		return nil, nil, WrapExitError(ExitCommandError, "failed to start session", err)
	}
	logger.Info("session started", "session", s.ID(), "level", lvl.Name, "journal", f.Database)
	return s, release, nil
}

func openJournal(path, driver string) (*journal.Store, error) {
	j, err := journal.Open(path, journal.WithDriver(driver))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	return j, nil
}

// loadLevel reads a level file. Invalid levels exit 1, unreadable
// files exit 2.
func loadLevel(path string) (*level.Level, error) {
	lvl, err := level.Load(path)
	if err == nil {
		return lvl, nil
	}
	if errors.Is(err, graph.ErrInvalidLevel) {
		return nil, WrapExitError(ExitFailure, "invalid level", err)
	}
	return nil, WrapExitError(ExitCommandError, "failed to read level", err)
}

// parsePoint parses "x,y".
func parsePoint(s string) (graph.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return graph.Point{}, fmt.Errorf("%q: want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return graph.Point{}, fmt.Errorf("%q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return graph.Point{}, fmt.Errorf("%q: %w", s, err)
	}
	return graph.Pt(x, y), nil
}

// parseMoves parses "dx,dy;dx,dy;...". Empty entries are skipped.
func parseMoves(s string) ([]graph.Point, error) {
	var moves []graph.Point
	for part := range strings.SplitSeq(s, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		p, err := parsePoint(part)
		if err != nil {
			return nil, err
		}
		moves = append(moves, p)
	}
	return moves, nil
}
