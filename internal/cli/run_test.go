package cli

import (
	"context"
	"encoding/json"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sigil/internal/graph"
	"github.com/roach88/sigil/internal/journal"
	"github.com/roach88/sigil/internal/testutil"
)

func TestRunCommand_Text(t *testing.T) {
	out, err := execute(t, "run", testutil.LevelPath(t, "severance.toml"), "--moves", "0,2")
	require.NoError(t, err)

	assert.Contains(t, out, "level severance\n")
	assert.Contains(t, out, "move 0,2 -> 2,1 hits=1\n")
	assert.Contains(t, out, "seq 1 solved=true\n")
	assert.Contains(t, out, "cursor triangle at 2,1\n")
	assert.Contains(t, out, "node 1 circle phi @0,0 [rune satisfied]\n")
	assert.NotContains(t, out, "node 2")
	assert.NotContains(t, out, "line ")
}

func TestRunCommand_JSON(t *testing.T) {
	out, err := execute(t, "run", testutil.LevelPath(t, "pentagon.toml"),
		"--moves", "0.75,0", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   RunResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	r := resp.Data
	assert.Equal(t, "pentagon bloom", r.Level)
	require.Len(t, r.Moves, 1)
	assert.Equal(t, 1, r.Moves[0].Hits)
	require.NotNil(t, r.Moves[0].End)
	assert.InDelta(t, 0.25, r.Moves[0].End.X, graph.Epsilon)
	assert.Len(t, r.Snapshot.Nodes, 5)
	assert.Len(t, r.Snapshot.Lines, 6)
	assert.Len(t, r.Hash, 64)
}

func TestRunCommand_Refusal(t *testing.T) {
	out, err := execute(t, "run", testutil.LevelPath(t, "hexagon.cue"),
		"--max-collisions", "1", "--moves", "2,0")
	require.NoError(t, err, "a refused move is not a command failure")
	assert.Contains(t, out, "move 2,0 refused collision_budget\n")
	assert.Contains(t, out, "seq 0 solved=false\n")
	assert.Contains(t, out, "cursor square at -1,-1\n")
}

func TestRunCommand_Aura(t *testing.T) {
	out, err := execute(t, "run", testutil.LevelPath(t, "severance.toml"), "--aura", "circle")
	require.NoError(t, err)
	assert.Contains(t, out, "seq 1 solved=false\n")
	assert.Contains(t, out, "cursor circle at 2,-1\n")
}

func TestRunCommand_Journal(t *testing.T) {
	db := filepath.Join(t.TempDir(), "sigil.db")
	_, err := execute(t, "run", testutil.LevelPath(t, "severance.toml"),
		"--moves", "0,2;1,0", "--db", db, "--driver", journal.DriverPure)
	require.NoError(t, err)

	j, err := journal.Open(db, journal.WithDriver(journal.DriverPure))
	require.NoError(t, err)
	defer j.Close()

	ctx := context.Background()
	sessions, err := j.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "severance", sessions[0].LevelName)

	last, err := j.LastSeq(ctx, sessions[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), last)
}

func TestRunCommand_Errors(t *testing.T) {
	severance := testutil.LevelPath(t, "severance.toml")
	bad := writeLevel(t, "bad.yaml", "nodes: [{id: 0, shape: circle, x: 0, y: 0}]\n")

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"missing level", []string{"run"}, ExitFailure, "accepts 1 arg"},
		{"bad moves", []string{"run", severance, "--moves", "1;2"}, ExitCommandError, "invalid --moves"},
		{"bad aura", []string{"run", severance, "--aura", "hexagon"}, ExitCommandError, "invalid --aura"},
		{"bad clone offset", []string{"run", severance, "--clone-offset", "x,1"}, ExitCommandError, "invalid --clone-offset"},
		{"unreadable level", []string{"run", "/nonexistent/level.toml"}, ExitCommandError, "failed to read level"},
		{"invalid level", []string{"run", bad}, ExitFailure, "invalid level"},
		{"bad driver", []string{"run", severance, "--db", filepath.Join(t.TempDir(), "x.db"), "--driver", "postgres"}, ExitCommandError, "failed to open journal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseMoves(t *testing.T) {
	moves, err := parseMoves(" 1, 0 ;; -0.5,2;")
	require.NoError(t, err)
	assert.Equal(t, []graph.Point{graph.Pt(1, 0), graph.Pt(-0.5, 2)}, moves)

	moves, err = parseMoves("")
	require.NoError(t, err)
	assert.Empty(t, moves)

	for _, bad := range []string{"1", "a,1", "1,b"} {
		_, err := parsePoint(bad)
		assert.Error(t, err, bad)
	}
}

func TestFmtPoint(t *testing.T) {
	assert.Equal(t, "0,-1.5", fmtPoint(graph.Pt(math.Copysign(0, -1), -1.5)))
	assert.Equal(t, "0.25,3", fmtPoint(graph.Pt(0.25, 3)))
}
