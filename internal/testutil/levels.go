package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/sigil/internal/engine"
	"github.com/roach88/sigil/internal/journal"
	"github.com/roach88/sigil/internal/level"
)

// Root returns the module root: the nearest directory above the working
// directory that holds a go.mod.
func Root(t testing.TB) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		require.NotEqual(t, dir, parent, "go.mod not found above working directory")
		dir = parent
	}
}

// LevelPath returns the path of a file in testdata/levels.
func LevelPath(t testing.TB, file string) string {
	t.Helper()
	return filepath.Join(Root(t), "testdata", "levels", file)
}

// ScenariosDir returns testdata/scenarios.
func ScenariosDir(t testing.TB) string {
	t.Helper()
	return filepath.Join(Root(t), "testdata", "scenarios")
}

// LoadLevel loads a file from testdata/levels.
func LoadLevel(t testing.TB, file string) *level.Level {
	t.Helper()
	lvl, err := level.Load(LevelPath(t, file))
	require.NoError(t, err)
	return lvl
}

// NewSession starts a session on a file from testdata/levels. The session
// id is fixed unless opts override it.
func NewSession(t testing.TB, file string, opts ...engine.Option) *engine.Session {
	t.Helper()
	opts = append([]engine.Option{engine.WithIDGenerator(NewFixedIDGenerator(""))}, opts...)
	s, err := engine.New(context.Background(), LoadLevel(t, file), opts...)
	require.NoError(t, err)
	return s
}

// OpenJournal opens a journal in a temp dir and closes it on cleanup.
func OpenJournal(t testing.TB, opts ...journal.Option) (*journal.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := journal.Open(path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j, path
}
