package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sigil/internal/engine"
	"github.com/roach88/sigil/internal/graph"
	"github.com/roach88/sigil/internal/harness"
	"github.com/roach88/sigil/internal/rules"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	SessionFlags
	Moves string
	Aura  string
}

// MoveReport is the outcome of one --moves entry.
type MoveReport struct {
	Delta   graph.Point  `json:"delta"`
	End     *graph.Point `json:"end,omitempty"`
	Stopped bool         `json:"stopped,omitempty"`
	Hits    int          `json:"hits"`
	Refused string       `json:"refused,omitempty"`
}

// RunResult is printed by the run command.
type RunResult struct {
	SessionID string          `json:"session_id"`
	Level     string          `json:"level"`
	Moves     []MoveReport    `json:"moves"`
	Snapshot  engine.Snapshot `json:"snapshot"`
	Hash      string          `json:"hash"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <level>",
		Short: "Apply moves to a level without a display",
		Long: `Load a level, apply a list of cursor moves and print the final state.

Moves are relative displacements separated by semicolons. A move the rules
refuse leaves the state untouched and the run continues with the next one.
With --db every committed step is journaled for later replay.

Examples:
  sigil run levels/severance.toml --moves "0,2"
  sigil run levels/pentagon.toml --aura circle --moves "0.75,0;0,1" --db ./sigil.db
  sigil run levels/triangle.yaml --moves "0,1" --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLevel(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Moves, "moves", "", `moves as "dx,dy;dx,dy;..."`)
	cmd.Flags().StringVar(&opts.Aura, "aura", "", "switch to this aura before moving (circle|triangle|square)")
	opts.SessionFlags.Register(cmd)

	return cmd
}

func runLevel(opts *RunOptions, path string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := NewLogger(opts.RootOptions, cmd.ErrOrStderr())

	moves, err := parseMoves(opts.Moves)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --moves", err)
	}
	var aura rules.Aura
	if opts.Aura != "" {
		if aura, err = rules.ParseAura(opts.Aura); err != nil {
			return WrapExitError(ExitCommandError, "invalid --aura", err)
		}
	}

	s, release, err := opts.SessionFlags.Start(ctx, path, logger)
	if err != nil {
		return err
	}
	defer release()

	if opts.Aura != "" {
		if err := s.SelectAura(ctx, aura); err != nil {
			return WrapExitError(ExitCommandError, "failed to select aura", err)
		}
	}

	result := RunResult{SessionID: s.ID(), Level: s.Level().Name, Moves: make([]MoveReport, 0, len(moves))}
	for _, d := range moves {
		report, err := applyMove(ctx, s, d)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("move %s failed", fmtPoint(d)), err)
		}
		if report.Refused != "" {
			logger.Debug("move refused", "delta", d, "code", report.Refused)
		}
		result.Moves = append(result.Moves, report)
	}

	result.Snapshot = s.Snapshot()
	if result.Hash, err = result.Snapshot.Hash(); err != nil {
		return WrapExitError(ExitCommandError, "failed to hash snapshot", err)
	}

	f := NewFormatter(opts.RootOptions, cmd)
	if f.JSON() {
		return f.Success(result)
	}
	writeRunText(f.Writer, result)
	return nil
}

// applyMove applies d. Refusals are reported, other errors returned.
func applyMove(ctx context.Context, s *engine.Session, d graph.Point) (MoveReport, error) {
	report := MoveReport{Delta: d}
	step, err := s.Move(ctx, d)
	if err != nil {
		code := harness.ErrorCode(err)
		if code == "" {
			return report, err
		}
		report.Refused = code
		return report, nil
	}
	end := step.End
	report.End = &end
	report.Stopped = step.Stopped
	report.Hits = len(step.Hits)
	return report, nil
}

func writeRunText(w io.Writer, r RunResult) {
	fmt.Fprintf(w, "session %s\n", r.SessionID)
	fmt.Fprintf(w, "level %s\n", r.Level)
	for _, m := range r.Moves {
		if m.Refused != "" {
			fmt.Fprintf(w, "move %s refused %s\n", fmtPoint(m.Delta), m.Refused)
			continue
		}
		line := fmt.Sprintf("move %s -> %s hits=%d", fmtPoint(m.Delta), fmtPoint(*m.End), m.Hits)
		if m.Stopped {
			line += " stopped"
		}
		fmt.Fprintln(w, line)
	}
	writeSnapshot(w, r.Snapshot)
	fmt.Fprintf(w, "hash %s\n", r.Hash)
}

func writeSnapshot(w io.Writer, snap engine.Snapshot) {
	fmt.Fprintf(w, "seq %d solved=%t\n", snap.Seq, snap.Solved)
	fmt.Fprintf(w, "cursor %s at %s\n", snap.Cursor.Aura, fmtPoint(snap.Cursor.Position))
	for _, n := range snap.Nodes {
		var flags []string
		if n.RuneActive {
			flags = append(flags, "rune")
		}
		if n.Selected {
			flags = append(flags, "selected")
		}
		if n.Satisfied {
			flags = append(flags, "satisfied")
		}
		fmt.Fprintf(w, "node %d %s %s @%s", n.ID, n.Shape, n.Glyph, fmtPoint(n.Position))
		if len(flags) > 0 {
			fmt.Fprintf(w, " [%s]", strings.Join(flags, " "))
		}
		fmt.Fprintln(w)
	}
	for _, l := range snap.Lines {
		fmt.Fprintf(w, "line %d %d->%d\n", l.ID, l.From, l.To)
	}
}

func fmtPoint(p graph.Point) string {
	return fmtNum(p.X) + "," + fmtNum(p.Y)
}

func fmtNum(v float64) string {
	if v == 0 {
		return "0" // not "-0"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
