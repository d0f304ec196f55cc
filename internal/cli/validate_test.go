package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sigil/internal/testutil"
)

func writeLevel(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidateCommand_Valid(t *testing.T) {
	out, err := execute(t, "validate",
		testutil.LevelPath(t, "severance.toml"),
		testutil.LevelPath(t, "triangle.yaml"),
		testutil.LevelPath(t, "hexagon.cue"),
	)
	require.NoError(t, err)
	assert.Contains(t, out, "severance.toml (severance: 2 nodes, 1 lines)")
	assert.Contains(t, out, "triangle.yaml (triangle gate: 4 nodes, 2 lines)")
	assert.Contains(t, out, "✓ ")
	assert.NotContains(t, out, "✗")
}

func TestValidateCommand_Invalid(t *testing.T) {
	bad := writeLevel(t, "bad.yaml", "nodes: [{id: 1, shape: star, x: 0, y: 0}]\n")

	out, err := execute(t, "validate", testutil.LevelPath(t, "severance.toml"), bad)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ "+bad)
	assert.Contains(t, out, "nodes[0].shape")
}

func TestValidateCommand_InvalidJSON(t *testing.T) {
	bad := writeLevel(t, "bad.toml", "name = \"ok\"\n\n[cursor\n")

	out, err := execute(t, "validate", "--format", "json", bad)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidLevel, resp.Error.Code)
	require.Len(t, resp.Data.Levels, 1)
	report := resp.Data.Levels[0]
	assert.False(t, report.Valid)
	require.NotNil(t, report.Error)
	assert.Equal(t, "toml", report.Error.Field)
	assert.Equal(t, 3, report.Error.Line)
}

func TestValidateCommand_ValidJSON(t *testing.T) {
	out, err := execute(t, "validate", "--format", "json", testutil.LevelPath(t, "pentagon.toml"))
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	require.Len(t, resp.Data.Levels, 1)
	assert.Equal(t, "pentagon bloom", resp.Data.Levels[0].Name)
	assert.Len(t, resp.Data.Levels[0].Hash, 64)
}

func TestValidateCommand_Unreadable(t *testing.T) {
	for _, path := range []string{"/nonexistent/level.toml", "level.json"} {
		t.Run(path, func(t *testing.T) {
			_, err := execute(t, "validate", path)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestValidateCommand_MissingArgs(t *testing.T) {
	_, err := execute(t, "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}
