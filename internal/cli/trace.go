package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/sigil/internal/cursor"
	"github.com/roach88/sigil/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Driver   string
	Session  string
	Kind     string // optional - filter to one step kind
}

// TraceStep is one journaled step in the timeline.
type TraceStep struct {
	Seq     int64           `json:"seq"`
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
	Hits    []TraceHit      `json:"hits,omitempty"`
	Hash    string          `json:"hash"`
}

// TraceHit is one crossing and the effects it committed.
type TraceHit struct {
	Line     int64    `json:"line"`
	Node     int64    `json:"node"`
	Rejected bool     `json:"rejected,omitempty"`
	Effects  []string `json:"effects"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	TotalSteps int            `json:"total_steps"`
	Hits       int            `json:"hits"`
	Effects    map[string]int `json:"effects"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	SessionID string      `json:"session_id"`
	Level     string      `json:"level"`
	Timeline  []TraceStep `json:"timeline"`
	Stats     TraceStats  `json:"stats"`
}

// SessionSummary is one row of the session listing.
type SessionSummary struct {
	ID        string `json:"id"`
	Level     string `json:"level"`
	LevelHash string `json:"level_hash"`
	Steps     int64  `json:"steps"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show journaled steps",
		Long: `Show what a journal holds.

Without --session, list every session with its level and step count.
With --session, print the session's timeline: each step's input, the
lines it crossed and the effects the rules applied.

Examples:
  sigil trace --db ./sigil.db
  sigil trace --db ./sigil.db --session 01890a5d-ac96-774b-bcce-b302099a8057
  sigil trace --db ./sigil.db --session 01890a5d-ac96-774b-bcce-b302099a8057 --kind move --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Driver, "driver", journal.DriverCGO, "database/sql driver (sqlite3|sqlite)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session to trace")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "only show steps of this kind (move|aura|select|undo)")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Kind != "" && !validStepKind(opts.Kind) {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown step kind %q", opts.Kind))
	}

	j, err := openJournal(opts.Database, opts.Driver)
	if err != nil {
		return err
	}
	defer j.Close()

	f := NewFormatter(opts.RootOptions, cmd)
	if opts.Session == "" {
		sessions, err := listSessions(ctx, j)
		if err != nil {
			return err
		}
		if f.JSON() {
			return f.Success(sessions)
		}
		writeSessionsText(f.Writer, sessions)
		return nil
	}

	result, err := buildTrace(ctx, j, opts.Session, opts.Kind)
	if err != nil {
		return err
	}
	if f.JSON() {
		return f.Success(result)
	}
	writeTraceText(f.Writer, result, opts.Verbose)
	return nil
}

func validStepKind(kind string) bool {
	return slices.Contains([]journal.StepKind{
		journal.StepMove, journal.StepAura, journal.StepSelect, journal.StepUndo,
	}, journal.StepKind(kind))
}

func listSessions(ctx context.Context, j *journal.Store) ([]SessionSummary, error) {
	sessions, err := j.Sessions(ctx)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to list sessions", err)
	}
	out := make([]SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		last, err := j.LastSeq(ctx, s.ID)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to read session", err)
		}
		out = append(out, SessionSummary{ID: s.ID, Level: s.LevelName, LevelHash: s.LevelHash, Steps: last})
	}
	return out, nil
}

func buildTrace(ctx context.Context, j *journal.Store, id, kind string) (TraceResult, error) {
	hdr, err := j.Session(ctx, id)
	if err != nil {
		return TraceResult{}, WrapExitError(ExitCommandError, "unknown session", err)
	}
	steps, err := j.Steps(ctx, id)
	if err != nil {
		return TraceResult{}, WrapExitError(ExitCommandError, "failed to read steps", err)
	}

	result := TraceResult{
		SessionID: id,
		Level:     hdr.LevelName,
		Timeline:  []TraceStep{},
		Stats:     TraceStats{Effects: map[string]int{}},
	}
	for _, st := range steps {
		if kind != "" && string(st.Kind) != kind {
			continue
		}
		var hits []cursor.Hit
		if err := json.Unmarshal(st.Effects, &hits); err != nil {
			return TraceResult{}, WrapExitError(ExitCommandError, fmt.Sprintf("corrupt effects at seq %d", st.Seq), err)
		}

		ts := TraceStep{Seq: st.Seq, Kind: string(st.Kind), Payload: st.Payload, Hash: st.SnapshotHash}
		for _, h := range hits {
			th := TraceHit{
				Line:     int64(h.Crossing.Line),
				Node:     int64(h.Crossing.Node),
				Rejected: h.Outcome.Rejected,
				Effects:  make([]string, 0, len(h.Outcome.Effects)),
			}
			for _, e := range h.Outcome.Effects {
				th.Effects = append(th.Effects, e.String())
				result.Stats.Effects[string(e.Kind)]++
			}
			ts.Hits = append(ts.Hits, th)
		}
		result.Stats.Hits += len(hits)
		result.Timeline = append(result.Timeline, ts)
	}
	result.Stats.TotalSteps = len(result.Timeline)
	return result, nil
}

func writeSessionsText(w io.Writer, sessions []SessionSummary) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions found in journal.")
		return
	}
	for _, s := range sessions {
		fmt.Fprintf(w, "%s  %-16s %d step(s)\n", s.ID, s.Level, s.Steps)
	}
}

func writeTraceText(w io.Writer, r TraceResult, verbose bool) {
	fmt.Fprintf(w, "Session: %s (%s)\n", r.SessionID, r.Level)
	if len(r.Timeline) == 0 {
		fmt.Fprintln(w, "No steps.")
		return
	}
	fmt.Fprintln(w)
	for _, st := range r.Timeline {
		fmt.Fprintf(w, "[%d] %s %s", st.Seq, st.Kind, st.Payload)
		if verbose {
			fmt.Fprintf(w, " hash=%s", st.Hash)
		}
		fmt.Fprintln(w)
		for _, h := range st.Hits {
			suffix := ""
			if h.Rejected {
				suffix = " rejected"
			}
			fmt.Fprintf(w, "    hit line=%d node=%d%s\n", h.Line, h.Node, suffix)
			for _, e := range h.Effects {
				fmt.Fprintf(w, "      %s\n", e)
			}
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Stats: %d step(s), %d hit(s)", r.Stats.TotalSteps, r.Stats.Hits)
	for _, k := range sortedKeys(r.Stats.Effects) {
		fmt.Fprintf(w, ", %s=%d", k, r.Stats.Effects[k])
	}
	fmt.Fprintln(w)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
