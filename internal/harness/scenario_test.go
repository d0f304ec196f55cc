package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenariosDir = "../../testdata/scenarios"

// writeScenario writes content to a fresh temp dir.
func writeScenario(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func levelPath(t *testing.T, file string) string {
	t.Helper()
	abs, err := filepath.Abs(filepath.Join("../../testdata/levels", file))
	require.NoError(t, err)
	return abs
}

func TestLoadScenario_ValidFile(t *testing.T) {
	s, err := LoadScenario(filepath.Join(scenariosDir, "severance.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "severance", s.Name)
	assert.Equal(t, filepath.Join(scenariosDir, "../levels/severance.toml"), s.Level)
	assert.Equal(t, "scenario-severance", s.SessionID())
	require.Len(t, s.Steps, 4)
	assert.Equal(t, KindMove, s.Steps[0].Kind())
	assert.Equal(t, []float64{0, 2}, s.Steps[0].Move)
	assert.Equal(t, 1, *s.Steps[0].Expect.Hits)
	assert.Equal(t, map[string]int{"destroy": 1, "disconnect": 1}, s.Steps[0].Expect.Effects)
	assert.Equal(t, KindAura, s.Steps[1].Kind())
	assert.Equal(t, KindSelect, s.Steps[2].Kind())
	assert.Equal(t, KindUndo, s.Steps[3].Kind())
	assert.Len(t, s.Assertions, 6)
}

func TestLoadScenario_Config(t *testing.T) {
	s, err := LoadScenario(filepath.Join(scenariosDir, "hexagon_budget.yaml"))
	require.NoError(t, err)
	require.NotNil(t, s.Config)
	assert.Equal(t, 1, s.Config.MaxCollisions)
	assert.Len(t, s.Config.Options(), 1)

	var none *ConfigSpec
	assert.Empty(t, none.Options())
}

func TestLoadScenario_Errors(t *testing.T) {
	severance := levelPath(t, "severance.toml")

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown field",
			content: "name: x\ndescription: y\nlevel: " + severance + "\nsteps:\n  - move: [1, 0]\nasertions: []\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "missing name",
			content: "description: y\nlevel: " + severance + "\nsteps:\n  - move: [1, 0]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing level file",
			content: "name: x\ndescription: y\nlevel: nowhere.toml\nsteps:\n  - move: [1, 0]\n",
			wantErr: "level file not found",
		},
		{
			name:    "no steps",
			content: "name: x\ndescription: y\nlevel: " + severance + "\n",
			wantErr: "steps list is required",
		},
		{
			name:    "two actions in one step",
			content: "name: x\ndescription: y\nlevel: " + severance + "\nsteps:\n  - move: [1, 0]\n    undo: true\n",
			wantErr: "exactly one of",
		},
		{
			name:    "short move",
			content: "name: x\ndescription: y\nlevel: " + severance + "\nsteps:\n  - move: [1]\n",
			wantErr: "move needs [dx, dy]",
		},
		{
			name:    "bad aura",
			content: "name: x\ndescription: y\nlevel: " + severance + "\nsteps:\n  - aura: hexagon\n",
			wantErr: "steps[0]",
		},
		{
			name:    "bad effect kind",
			content: "name: x\ndescription: y\nlevel: " + severance + "\nsteps:\n  - move: [1, 0]\n    expect: {effects: {explode: 1}}\n",
			wantErr: `unknown effect kind "explode"`,
		},
		{
			name:    "bad error code",
			content: "name: x\ndescription: y\nlevel: " + severance + "\nsteps:\n  - move: [1, 0]\n    expect: {error: boom}\n",
			wantErr: `unknown error code "boom"`,
		},
		{
			name:    "unknown assertion",
			content: "name: x\ndescription: y\nlevel: " + severance + "\nsteps:\n  - move: [1, 0]\nassertions:\n  - type: vibes\n",
			wantErr: `unknown assertion type "vibes"`,
		},
		{
			name:    "solved without value",
			content: "name: x\ndescription: y\nlevel: " + severance + "\nsteps:\n  - move: [1, 0]\nassertions:\n  - type: solved\n",
			wantErr: "value is required",
		},
		{
			name:    "node without expect",
			content: "name: x\ndescription: y\nlevel: " + severance + "\nsteps:\n  - move: [1, 0]\nassertions:\n  - type: node\n    node: 1\n",
			wantErr: "expect is required for node",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, "s.yaml", tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("does-not-exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestDiscover(t *testing.T) {
	files, err := Discover(scenariosDir, "")
	require.NoError(t, err)
	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	assert.Equal(t, []string{
		"hexagon_budget.yaml",
		"hexagon_fan.yaml",
		"pentagon.yaml",
		"severance.yaml",
		"triangle.yaml",
	}, names, "golden files are skipped")

	files, err = Discover(scenariosDir, "hexagon_*")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = Discover(scenariosDir, "[")
	assert.Error(t, err)
}
