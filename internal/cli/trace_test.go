package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceCommand_ListSessions(t *testing.T) {
	_, db := journaled(t, "trace-1")

	out, err := execute(t, "trace", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "trace-1")
	assert.Contains(t, out, "severance")
	assert.Contains(t, out, "2 step(s)")
}

func TestTraceCommand_Timeline(t *testing.T) {
	_, db := journaled(t, "trace-2")

	out, err := execute(t, "trace", "--db", db, "--session", "trace-2")
	require.NoError(t, err)
	assert.Contains(t, out, "Session: trace-2 (severance)")
	assert.Contains(t, out, `[1] move {"dx":0,"dy":2}`)
	assert.Contains(t, out, "    hit line=1 node=2\n")
	assert.Contains(t, out, "      destroy node=2\n")
	assert.Contains(t, out, "      disconnect line=1 node=2\n")
	assert.Contains(t, out, `[2] aura {"aura":"circle"}`)
	assert.Contains(t, out, "Stats: 2 step(s), 1 hit(s), destroy=1, disconnect=1")
}

func TestTraceCommand_KindFilterJSON(t *testing.T) {
	_, db := journaled(t, "trace-3")

	out, err := execute(t, "trace", "--db", db, "--session", "trace-3", "--kind", "aura", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Timeline, 1)
	assert.Equal(t, int64(2), resp.Data.Timeline[0].Seq)
	assert.Equal(t, "aura", resp.Data.Timeline[0].Kind)
	assert.Equal(t, 0, resp.Data.Stats.Hits)
}

func TestTraceCommand_Errors(t *testing.T) {
	_, db := journaled(t, "trace-4")

	_, err := execute(t, "trace", "--db", db, "--kind", "teleport")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `unknown step kind "teleport"`)

	_, err = execute(t, "trace", "--db", db, "--session", "missing")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
