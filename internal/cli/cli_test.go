package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/candlewaker/journal"
	"github.com/rustyeddy/candlewaker/tasks"
)

// run executes the root command against the data directory dir and returns
// what it printed.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--data-dir", dir, "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func runJSON[T any](t *testing.T, dir string, args ...string) T {
	t.Helper()

	out, err := run(t, dir, append([]string{"--json"}, args...)...)
	require.NoError(t, err, out)
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestTaskCommands(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	added := runJSON[[]tasks.Task](t, dir, "task", "add", "ES 15m", "--period", "M15", "--notify-before", "30")
	require.Len(t, added, 1)
	assert.Equal(t, 15, added[0].Period)
	assert.Equal(t, 30, added[0].NotifyBefore)
	assert.True(t, added[0].Enabled)
	taskID := added[0].ID

	runJSON[[]tasks.Task](t, dir, "task", "add", "NQ hourly", "-p", "H1")

	list := runJSON[[]tasks.Task](t, dir, "task", "list")
	require.Len(t, list, 2)
	assert.Equal(t, "NQ hourly", list[0].Name)
	assert.Equal(t, 60, list[0].Period)

	toggled := runJSON[[]tasks.Task](t, dir, "task", "toggle", taskID)
	assert.False(t, toggled[0].Enabled)

	set := runJSON[[]tasks.Task](t, dir, "task", "set", taskID, "--period", "5")
	assert.Equal(t, 5, set[0].Period)
	assert.Equal(t, "ES 15m", set[0].Name)

	_, err := run(t, dir, "task", "rm", taskID)
	require.NoError(t, err)
	list = runJSON[[]tasks.Task](t, dir, "task", "list")
	assert.Len(t, list, 1)

	_, err = run(t, dir, "task", "add", "bad", "--period", "0")
	assert.Error(t, err)
}

func TestTaskTableOutput(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	_, err := run(t, dir, "task", "add", "ES", "-p", "240")
	require.NoError(t, err)

	out, err := run(t, dir, "task", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "H4")
}

func TestJournalSettlementFlow(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	inst := runJSON[[]journal.Instrument](t, dir, "instrument", "add", "ES", "50")
	acct := runJSON[[]journal.Account](t, dir, "account", "add", "Eval", "--balance", "1000")
	instID, acctID := inst[0].ID, acct[0].ID

	shot := filepath.Join(t.TempDir(), "chart.png")
	require.NoError(t, os.WriteFile(shot, []byte("not really a png"), 0o644))

	created := runJSON[[]journal.Entry](t, dir, "journal", "add",
		"--symbol", "ES", "--direction", "Long", "--entry", "5000", "--exit", "5004",
		"--status", "Win", "--instrument", instID, "--account", acctID,
		"--image", shot)
	require.Len(t, created, 1)
	e := created[0]
	require.NotNil(t, e.UsdPnL)
	assert.Equal(t, 200.0, *e.UsdPnL)
	require.Len(t, e.Images, 1)

	accounts := runJSON[[]journal.Account](t, dir, "account", "list")
	assert.Equal(t, 1200.0, accounts[0].Balance)

	saved := filepath.Join(t.TempDir(), "out.png")
	_, err := run(t, dir, "journal", "image", e.Images[0], "--out", saved)
	require.NoError(t, err)
	data, err := os.ReadFile(saved)
	require.NoError(t, err)
	assert.Equal(t, "not really a png", string(data))

	updated := runJSON[[]journal.Entry](t, dir, "journal", "update", e.ID, "--status", "Open", "--unset", "exitPrice")
	assert.Equal(t, journal.Open, updated[0].Status)
	assert.Nil(t, updated[0].ExitPrice)

	accounts = runJSON[[]journal.Account](t, dir, "account", "list")
	assert.Equal(t, 1000.0, accounts[0].Balance)

	_, err = run(t, dir, "instrument", "rm", instID)
	require.Error(t, err)
	assert.Equal(t, journal.CodeInstrumentInUse, journal.ErrorCode(err))

	out, err := run(t, dir, "journal", "rm", e.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted 1")

	_, err = run(t, dir, "instrument", "rm", instID)
	assert.NoError(t, err)

	_, err = run(t, dir, "journal", "update", e.ID, "--notes", "gone")
	assert.ErrorIs(t, err, journal.ErrNotFound)
}

func TestJournalListAndExport(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	for _, args := range [][]string{
		{"--symbol", "ES", "--direction", "Long", "--entry", "5000", "--pnl", "4", "--status", "Win", "--date", "2024-05-01"},
		{"--symbol", "NQ", "--direction", "Short", "--entry", "18000", "--pnl", "-2", "--status", "Loss", "--date", "2024-05-02"},
		{"--symbol", "CL", "--direction", "Long", "--entry", "80", "--date", "2024-05-03"},
	} {
		_, err := run(t, dir, append([]string{"journal", "add"}, args...)...)
		require.NoError(t, err)
	}

	all := runJSON[[]journal.Entry](t, dir, "journal", "list")
	require.Len(t, all, 3)
	assert.Equal(t, "CL", all[0].Symbol)

	settled := runJSON[[]journal.Entry](t, dir, "journal", "list", "--status", "Win,Loss", "--asc")
	require.Len(t, settled, 2)
	assert.Equal(t, "ES", settled[0].Symbol)

	since := runJSON[[]journal.Entry](t, dir, "journal", "list", "--from", "2024-05-02", "--limit", "1")
	require.Len(t, since, 1)
	assert.Equal(t, "CL", since[0].Symbol)

	_, err := run(t, dir, "journal", "list", "--status", "Maybe")
	assert.Error(t, err)

	csvOut, err := run(t, dir, "journal", "export", "--format", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(csvOut), "\n")
	assert.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "id,date,symbol"))

	orgOut, err := run(t, dir, "journal", "export", "--format", "org")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count("\n"+orgOut, "\n** "))

	_, err = run(t, dir, "journal", "export", "--format", "xml")
	assert.Error(t, err)

	st := runJSON[journal.Stats](t, dir, "stats")
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 1, st.Wins)
	assert.Equal(t, 50.0, st.WinRate)
	assert.Equal(t, 2.0, st.NetPoints)
}

func TestCatalogCommands(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	out, err := run(t, dir, "instrument", "seed")
	require.NoError(t, err)
	assert.NotContains(t, out, "added 0")

	out, err = run(t, dir, "instrument", "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "added 0")

	strat := runJSON[[]journal.Strategy](t, dir, "strategy", "add", "ORB", "-d", "opening range")
	_, err = run(t, dir, "strategy", "set", strat[0].ID, "--name", "ORB 5m")
	require.NoError(t, err)
	list := runJSON[[]journal.Strategy](t, dir, "strategy", "list")
	require.Len(t, list, 1)
	assert.Equal(t, "ORB 5m", list[0].Name)
	assert.Equal(t, "opening range", list[0].Description)

	_, err = run(t, dir, "account", "set", "missing", "--name", "x")
	assert.ErrorIs(t, err, journal.ErrNotFound)
}

func TestImportNeDB(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	file := filepath.Join(t.TempDir(), "tasks.db")
	lines := `{"_id":"a1","name":"ES","period":15,"notifyBefore":0,"enabled":true,"createdAt":{"$$date":1714560000000}}
{"_id":"b2","name":"NQ","period":60,"notifyBefore":30,"enabled":true,"createdAt":{"$$date":1714560001000}}
{"_id":"b2","$$deleted":true}
`
	require.NoError(t, os.WriteFile(file, []byte(lines), 0o644))

	out, err := run(t, dir, "import", "nedb", "tasks", file)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1 tasks")

	list := runJSON[[]tasks.Task](t, dir, "task", "list")
	require.Len(t, list, 1)
	assert.Equal(t, "a1", list[0].ID)

	_, err = run(t, dir, "import", "nedb", "widgets", file)
	assert.Error(t, err)
}

func TestConfigCommands(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "candlewaker.yaml")

	out, err := run(t, t.TempDir(), "config", "init", "--output", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	out, err = run(t, t.TempDir(), "config", "validate", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid")

	_, err = run(t, t.TempDir(), "config", "validate", "--file", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = run(t, t.TempDir(), "--log-level", "loud", "task", "list")
	assert.Error(t, err)
}
