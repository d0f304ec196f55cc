package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sigil/internal/journal"
	"github.com/roach88/sigil/internal/testutil"
)

// playWith runs the play command on a simulation screen fed keys.
func playWith(t *testing.T, args []string, keys ...rune) error {
	t.Helper()
	opts := &PlayOptions{RootOptions: &RootOptions{Format: "text", Verbose: true}}
	opts.NewScreen = func() (tcell.Screen, error) {
		screen := tcell.NewSimulationScreen("UTF-8")
		if err := screen.Init(); err != nil {
			return nil, err
		}
		screen.SetSize(60, 12)
		for _, r := range keys {
			screen.InjectKey(tcell.KeyRune, r, tcell.ModNone)
		}
		return screen, nil
	}
	cmd := newPlayCommand(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	cmd.SetContext(ctx)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestPlayCommand_QuitsAndJournals(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "play.db")
	logFile := filepath.Join(dir, "play.log")

	err := playWith(t, []string{
		testutil.LevelPath(t, "severance.toml"), "--db", db, "--log", logFile,
	}, 'l', '1', 'q')
	require.NoError(t, err)

	j, err := journal.Open(db)
	require.NoError(t, err)
	defer j.Close()
	sessions, err := j.Sessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	steps, err := j.Steps(context.Background(), sessions[0].ID)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, journal.StepMove, steps[0].Kind)
	assert.Equal(t, journal.StepAura, steps[1].Kind)

	logged, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(logged), "play ended")
}

func TestPlayCommand_Errors(t *testing.T) {
	err := playWith(t, []string{"/nonexistent/level.toml"})
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	err = playWith(t, []string{testutil.LevelPath(t, "severance.toml"), "--log", "/nonexistent/dir/play.log"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open log file")
}
