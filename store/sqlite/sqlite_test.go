package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/candlewaker/journal"
	"github.com/rustyeddy/candlewaker/tasks"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "test.db")

	s, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	s, path := newTestSQLite(t)
	assert.Equal(t, path, s.Path())
	assert.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, s.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table'`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())

	for _, table := range []string{"tasks", "journal", "instruments", "accounts", "strategies"} {
		assert.True(t, found[table], table)
	}
}

func TestSQLiteEntries(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)
	ctx := context.Background()

	mk := func(id string, date int64, acct string, st journal.Status) journal.Entry {
		return journal.Entry{
			ID: id, Date: date, Symbol: "ES", AccountID: acct,
			Direction: journal.Long, EntryPrice: 100, Status: st,
		}
	}

	for _, e := range []journal.Entry{
		mk("a", 1000, "acc1", journal.Open),
		mk("b", 3000, "acc1", journal.Win),
		mk("c", 2000, "acc2", journal.Loss),
	} {
		_, err := s.InsertEntry(ctx, e)
		require.NoError(t, err)
	}

	all, err := s.FindEntries(ctx, journal.EntryQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "b", all[0].ID)
	assert.Equal(t, "c", all[1].ID)
	assert.Equal(t, "a", all[2].ID)
	assert.NotNil(t, all[0].Images)

	asc, err := s.FindEntries(ctx, journal.EntryQuery{Ascending: true, Limit: 2})
	require.NoError(t, err)
	require.Len(t, asc, 2)
	assert.Equal(t, "a", asc[0].ID)

	settled, err := s.FindEntries(ctx, journal.EntryQuery{
		AccountID: "acc1",
		Statuses:  []journal.Status{journal.Win, journal.Loss},
	})
	require.NoError(t, err)
	require.Len(t, settled, 1)
	assert.Equal(t, "b", settled[0].ID)

	ranged, err := s.FindEntries(ctx, journal.EntryQuery{From: 1500, To: 2500})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, "c", ranged[0].ID)

	n, err := s.CountEntries(ctx, journal.EntryQuery{AccountID: "acc1"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	got, err := s.FindEntry(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, got)
	got.ExitPrice = journal.Float(110)
	got.Status = journal.Closed
	got.AccountID = "acc2"
	n, err = s.UpdateEntry(ctx, *got)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = s.CountEntries(ctx, journal.EntryQuery{AccountID: "acc2"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	got, err = s.FindEntry(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, got.ExitPrice)
	assert.Equal(t, 110.0, *got.ExitPrice)

	n, err = s.RemoveEntry(ctx, "a")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = s.RemoveEntry(ctx, "a")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	missing, err := s.FindEntry(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLiteCatalog(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)
	ctx := context.Background()

	_, err := s.InsertInstrument(ctx, journal.Instrument{ID: "i2", Name: "NQ", PointValueUSD: 20})
	require.NoError(t, err)
	_, err = s.InsertInstrument(ctx, journal.Instrument{ID: "i1", Name: "ES", PointValueUSD: 50})
	require.NoError(t, err)

	list, err := s.ListInstruments(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "ES", list[0].Name)

	inst, err := s.FindInstrument(ctx, "i2")
	require.NoError(t, err)
	require.NotNil(t, inst)
	inst.PointValueUSD = 2
	n, err := s.UpdateInstrument(ctx, *inst)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	inst, err = s.FindInstrument(ctx, "i2")
	require.NoError(t, err)
	assert.Equal(t, 2.0, inst.PointValueUSD)

	_, err = s.InsertAccount(ctx, journal.Account{ID: "a1", Name: "Eval", Balance: 1000})
	require.NoError(t, err)
	acc, err := s.FindAccount(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, acc.Balance)

	n, err = s.RemoveAccount(ctx, "a1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	acc, err = s.FindAccount(ctx, "a1")
	require.NoError(t, err)
	assert.Nil(t, acc)

	_, err = s.InsertStrategy(ctx, journal.Strategy{ID: "s1", Name: "ORB"})
	require.NoError(t, err)
	strats, err := s.ListStrategies(ctx)
	require.NoError(t, err)
	require.Len(t, strats, 1)
	assert.Equal(t, "ORB", strats[0].Name)
}

func TestSQLiteTasks(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	_, err := s.InsertTask(ctx, tasks.Task{ID: "t1", Name: "M5", Period: 5, Enabled: true, CreatedAt: base})
	require.NoError(t, err)
	_, err = s.InsertTask(ctx, tasks.Task{ID: "t2", Name: "H1", Period: 60, NotifyBefore: 30, CreatedAt: base.Add(time.Minute)})
	require.NoError(t, err)

	list, err := s.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "t2", list[0].ID)
	assert.True(t, list[1].CreatedAt.Equal(base))

	list[1].Enabled = false
	n, err := s.UpdateTask(ctx, list[1])
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = s.RemoveTask(ctx, "t2")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	list, err = s.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Enabled)
}

func TestNormalizeLegacyDocument(t *testing.T) {
	t.Parallel()

	raw := `{"_id":"abc","date":{"$$date":1700000000000},"symbol":"ES","direction":"Short",` +
		`"entryPrice":10,"status":"Open","imageFileName":"img_1.png","createdAt":{"$$date":1700000000000}}`

	e, err := decode[journal.Entry]([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "abc", e.ID)
	assert.EqualValues(t, 1700000000000, e.Date)
	assert.Equal(t, []string{"img_1.png"}, e.Images)
	assert.Equal(t, int64(1700000000000), e.CreatedAt.UnixMilli())
	assert.True(t, e.UpdatedAt.IsZero())
}

func TestNormalizeKeepsExplicitID(t *testing.T) {
	t.Parallel()

	e, err := decode[journal.Entry]([]byte(`{"_id":"old","id":"new","date":5,"imageFileNames":["x.png"],"imageFileName":"y.png"}`))
	require.NoError(t, err)
	assert.Equal(t, "new", e.ID)
	assert.EqualValues(t, 5, e.Date)
	assert.Equal(t, []string{"x.png"}, e.Images)
}

func TestImportNeDB(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)
	ctx := context.Background()

	data := strings.Join([]string{
		`{"$$indexCreated":{"fieldName":"createdAt"}}`,
		`{"_id":"k1","name":"M15","period":15,"notifyBefore":60,"enabled":true,"createdAt":{"$$date":1700000000000}}`,
		`{"_id":"k2","name":"H4","period":240,"notifyBefore":0,"enabled":true,"createdAt":{"$$date":1700000001000}}`,
		`{"_id":"k1","name":"M15 close","period":15,"notifyBefore":30,"enabled":false,"createdAt":{"$$date":1700000000000}}`,
		`{"_id":"k2","$$deleted":true}`,
		``,
	}, "\n")

	n, err := s.ImportNeDB(ctx, KindTasks, strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	list, err := s.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "k1", list[0].ID)
	assert.Equal(t, "M15 close", list[0].Name)
	assert.Equal(t, 30, list[0].NotifyBefore)
	assert.False(t, list[0].Enabled)
}

func TestImportNeDBJournal(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)
	ctx := context.Background()

	data := `{"_id":"j1","date":1700000000000,"symbol":"NQ","direction":"Long","entryPrice":100,"exitPrice":104,"accountId":"acc","imageFileName":"img.png"}` + "\n"
	n, err := s.ImportNeDB(ctx, KindJournal, strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.FindEntries(ctx, journal.EntryQuery{AccountID: "acc"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, journal.Open, got[0].Status)
	assert.Equal(t, []string{"img.png"}, got[0].Images)
}

func TestImportNeDBRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)
	_, err := s.ImportNeDB(context.Background(), "widgets", strings.NewReader(""))
	assert.Error(t, err)
}
