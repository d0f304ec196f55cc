package harness

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/sigil/internal/graph"
)

// Format renders a result as stable text for golden comparison.
// Coordinates and crossing parameters are rounded to three decimals.
func Format(name string, r *Result) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "scenario %s\n", name)
	fmt.Fprintf(&buf, "level %s\n", r.Level)
	fmt.Fprintf(&buf, "session %s\n", r.SessionID)

	for _, ev := range r.Trace {
		fmt.Fprintf(&buf, "%s\n", formatEvent(ev))
		for _, h := range ev.Hits {
			fmt.Fprintf(&buf, "  hit line=%d node=%d t=%s\n", h.Line, h.Node, num(h.T))
			for _, e := range h.Effects {
				fmt.Fprintf(&buf, "    %s\n", e)
			}
		}
	}

	snap := r.Final
	fmt.Fprintf(&buf, "final seq=%d nodes=%d lines=%d solved=%t\n",
		snap.Seq, len(snap.Nodes), len(snap.Lines), snap.Solved)
	fmt.Fprintf(&buf, "cursor %s %s\n", snap.Cursor.Aura, formatPoint(snap.Cursor.Position))
	for _, n := range snap.Nodes {
		parts := []string{fmt.Sprintf("node %d %s", n.ID, n.Shape)}
		if n.Glyph != graph.GlyphNone {
			parts = append(parts, n.Glyph.String())
		}
		if n.RuneActive {
			parts = append(parts, "rune")
		}
		if n.Selected {
			parts = append(parts, "selected")
		}
		parts = append(parts, "@"+formatPoint(n.Position))
		fmt.Fprintf(&buf, "%s\n", strings.Join(parts, " "))
	}
	for _, l := range snap.Lines {
		fmt.Fprintf(&buf, "line %d %d->%d\n", l.ID, l.From, l.To)
	}
	return buf.Bytes()
}

func formatEvent(ev TraceEvent) string {
	parts := []string{strconv.FormatInt(ev.Seq, 10), ev.Kind}
	if ev.Args != "" {
		parts = append(parts, ev.Args)
	}
	parts = append(parts, ev.Outcome)
	if ev.Code != "" {
		parts = append(parts, ev.Code)
	}
	if ev.End != nil {
		parts = append(parts, "end="+formatPoint(*ev.End))
	}
	return strings.Join(parts, " ")
}

func formatPoint(p graph.Point) string {
	return num(p.X) + "," + num(p.Y)
}

// num rounds to three decimals and never prints a negative zero.
func num(v float64) string {
	r := math.Round(v*1000) / 1000
	if r == 0 {
		r = 0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// GoldenPath returns the golden file of a scenario file: a golden/
// directory next to it, named after the file.
func GoldenPath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// WriteGolden writes the formatted result as the scenario's golden file.
func WriteGolden(scenario *Scenario, r *Result) error {
	path := GoldenPath(scenario.Path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, Format(scenario.Name, r), 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// CompareGolden reports whether the formatted result matches the golden
// file. ok is false with a nil error when there is no golden file.
func CompareGolden(scenario *Scenario, r *Result) (match, ok bool, err error) {
	data, err := os.ReadFile(GoldenPath(scenario.Path))
	if os.IsNotExist(err) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("failed to read golden file: %w", err)
	}
	return bytes.Equal(data, Format(scenario.Name, r)), true, nil
}

// RunWithGolden executes a scenario and compares its formatted trace
// against the golden file next to the scenario.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(t.Context(), scenario, opts...)
	if err != nil {
		return nil, err
	}

	path := GoldenPath(scenario.Path)
	g := goldie.New(t,
		goldie.WithFixtureDir(filepath.Dir(path)),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, strings.TrimSuffix(filepath.Base(path), ".golden"), Format(scenario.Name, result))
	return result, nil
}
