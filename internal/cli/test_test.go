package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sigil/internal/journal"
	"github.com/roach88/sigil/internal/testutil"
)

// scratchScenario writes a scenario on the severance level into a temp
// directory and returns the directory.
func scratchScenario(t *testing.T, nodeCount int) string {
	t.Helper()
	dir := t.TempDir()
	content := fmt.Sprintf(`name: scratch
description: "severance, checked from a temp dir"
level: %s
steps:
  - move: [0, 2]
assertions:
  - type: node_count
    count: %d
`, testutil.LevelPath(t, "severance.toml"), nodeCount)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scratch.yaml"), []byte(content), 0644))
	return dir
}

func TestTestCommand_Fixtures(t *testing.T) {
	out, err := execute(t, "test", testutil.ScenariosDir(t))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ severance\n")
	assert.Contains(t, out, "✓ hexagon_budget\n")
	assert.Contains(t, out, "Test Summary: 5 passed, 0 failed, 5 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommand_FilterJSON(t *testing.T) {
	out, err := execute(t, "test", testutil.ScenariosDir(t),
		"--filter", "hexagon_*", "--driver", journal.DriverPure, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 2, resp.Data.Passed)
	for _, s := range resp.Data.Scenarios {
		assert.Equal(t, "missing", s.Golden, "hexagon scenarios have no golden file")
	}
}

func TestTestCommand_UpdateThenMatch(t *testing.T) {
	dir := scratchScenario(t, 1)

	out, err := execute(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ scratch (golden updated)")
	assert.FileExists(t, filepath.Join(dir, "golden", "scratch.golden"))

	out, err = execute(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ scratch\n")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "scratch.golden"), []byte("stale\n"), 0644))
	out, err = execute(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommand_Failure(t *testing.T) {
	dir := scratchScenario(t, 7)

	out, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ scratch")
	assert.Contains(t, out, "Actual: 1 nodes")
	assert.Contains(t, out, "Test Summary: 0 passed, 1 failed, 1 total")
}

func TestTestCommand_LoadError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: broken\n"), 0644))

	out, err := execute(t, "test", dir, "--format", "json")
	require.Error(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "broken.yaml", resp.Data.Scenarios[0].Name)
	assert.Contains(t, resp.Data.Scenarios[0].Errors[0], "failed to load scenario")
}

func TestTestCommand_Directories(t *testing.T) {
	_, err := execute(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")

	out, err := execute(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")

	_, err = execute(t, "test", t.TempDir(), "--filter", "[")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
