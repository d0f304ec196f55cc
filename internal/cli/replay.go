package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/sigil/internal/engine"
	"github.com/roach88/sigil/internal/journal"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Driver   string
	Session  string // optional - specific session only
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions         []engine.ReplayResult `json:"sessions"`
	TotalSessions    int                   `json:"total_sessions"`
	AllDeterministic bool                  `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay journaled sessions and verify determinism",
		Long: `Re-run journaled sessions from their stored level and configuration and
check every step's snapshot hash against the journal.

Exit codes:
  0 - All sessions replayed identically
  1 - A session diverged
  2 - Command error (journal not found, unknown session, etc.)

Examples:
  sigil replay --db ./sigil.db
  sigil replay --db ./sigil.db --session 01890a5d-ac96-774b-bcce-b302099a8057
  sigil replay --db ./sigil.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Driver, "driver", journal.DriverCGO, "database/sql driver (sqlite3|sqlite)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "replay this session only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := NewLogger(opts.RootOptions, cmd.ErrOrStderr())

	j, err := openJournal(opts.Database, opts.Driver)
	if err != nil {
		return err
	}
	defer j.Close()

	ids, err := sessionIDs(ctx, j, opts.Session)
	if err != nil {
		return err
	}

	result := ReplayResult{
		Sessions:         make([]engine.ReplayResult, 0, len(ids)),
		TotalSessions:    len(ids),
		AllDeterministic: true,
	}
	for _, id := range ids {
		res, err := engine.Replay(ctx, j, id, engine.WithLogger(logger))
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay session %s", id), err)
		}
		if res.Diverged {
			result.AllDeterministic = false
		}
		result.Sessions = append(result.Sessions, *res)
	}

	f := NewFormatter(opts.RootOptions, cmd)
	if f.JSON() {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.AllDeterministic {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeDeterminism, Message: "determinism verification failed"}
		}
		if err := f.Respond(resp); err != nil {
			return err
		}
	} else {
		writeReplayText(f.Writer, result, opts.Verbose)
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

// sessionIDs returns only, if set, after checking it exists. Otherwise every
// journaled session.
func sessionIDs(ctx context.Context, j *journal.Store, only string) ([]string, error) {
	if only != "" {
		if _, err := j.Session(ctx, only); err != nil {
			return nil, WrapExitError(ExitCommandError, "unknown session", err)
		}
		return []string{only}, nil
	}
	sessions, err := j.Sessions(ctx)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to list sessions", err)
	}
	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}
	return ids, nil
}

func writeReplayText(w io.Writer, result ReplayResult, verbose bool) {
	if result.TotalSessions == 0 {
		fmt.Fprintln(w, "No sessions found in journal.")
		return
	}

	fmt.Fprintf(w, "Replay Summary: %d session(s)\n\n", result.TotalSessions)
	for _, s := range result.Sessions {
		status := "✓"
		if s.Diverged {
			status = "✗"
		}
		fmt.Fprintf(w, "%s Session: %s (%s)\n", status, s.SessionID, s.LevelName)
		fmt.Fprintf(w, "  Steps: %d, solved: %t\n", s.Steps, s.Solved)
		if verbose {
			fmt.Fprintf(w, "  Engine: %s\n", s.EngineVersion)
			fmt.Fprintf(w, "  Final hash: %s\n", s.FinalHash)
		}
		if err := s.Err(); err != nil {
			fmt.Fprintf(w, "  Warning: %v\n", err)
		}
		fmt.Fprintln(w)
	}

	if result.AllDeterministic {
		fmt.Fprintln(w, "✓ All sessions verified deterministic")
		return
	}
	fmt.Fprintln(w, "✗ Determinism verification failed")
}
