package tasks_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/candlewaker/store/memory"
	"github.com/rustyeddy/candlewaker/tasks"
)

// flakyStore fails every write once fail is set.
type flakyStore struct {
	*memory.Store
	fail bool
}

var errBoom = errors.New("boom")

func (f *flakyStore) InsertTask(ctx context.Context, t tasks.Task) (tasks.Task, error) {
	if f.fail {
		return tasks.Task{}, errBoom
	}
	return f.Store.InsertTask(ctx, t)
}

func (f *flakyStore) UpdateTask(ctx context.Context, t tasks.Task) (int64, error) {
	if f.fail {
		return 0, errBoom
	}
	return f.Store.UpdateTask(ctx, t)
}

func (f *flakyStore) RemoveTask(ctx context.Context, id string) (int64, error) {
	if f.fail {
		return 0, errBoom
	}
	return f.Store.RemoveTask(ctx, id)
}

func newService(t *testing.T) (*tasks.Service, *flakyStore) {
	t.Helper()
	st := &flakyStore{Store: memory.New()}
	svc := tasks.NewService(st, zerolog.Nop())
	clock := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})
	return svc, st
}

func TestAddListsNewestFirst(t *testing.T) {
	t.Parallel()

	svc, st := newService(t)
	ctx := context.Background()

	a, err := svc.Add(ctx, " M5 ", 5, 0)
	require.NoError(t, err)
	assert.Equal(t, "M5", a.Name)
	assert.True(t, a.Enabled)

	b, err := svc.Add(ctx, "H1", 60, 30)
	require.NoError(t, err)

	list := svc.Tasks()
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)

	stored, err := st.ListTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, list, stored)

	// a fresh service sees the same list
	again := tasks.NewService(st, zerolog.Nop())
	loaded, err := again.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, list, loaded)
}

func TestAddValidates(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "", 5, 0)
	assert.ErrorIs(t, err, tasks.ErrInvalid)
	_, err = svc.Add(ctx, "x", 0, 0)
	assert.ErrorIs(t, err, tasks.ErrInvalid)
	_, err = svc.Add(ctx, "x", 5, -1)
	assert.ErrorIs(t, err, tasks.ErrInvalid)
	assert.Empty(t, svc.Tasks())
}

func TestToggleUpdateRemove(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	ctx := context.Background()

	task, err := svc.Add(ctx, "M15", 15, 60)
	require.NoError(t, err)

	toggled, err := svc.Toggle(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Enabled)

	period := 30
	updated, err := svc.Update(ctx, task.ID, tasks.Update{Period: &period})
	require.NoError(t, err)
	assert.Equal(t, 30, updated.Period)
	assert.False(t, updated.Enabled)

	got, err := svc.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	require.NoError(t, svc.Remove(ctx, task.ID))
	assert.Empty(t, svc.Tasks())

	assert.ErrorIs(t, svc.Remove(ctx, task.ID), tasks.ErrNotFound)
	_, err = svc.Toggle(ctx, task.ID)
	assert.ErrorIs(t, err, tasks.ErrNotFound)
}

func TestFailedWritesRollBack(t *testing.T) {
	t.Parallel()

	svc, st := newService(t)
	ctx := context.Background()

	task, err := svc.Add(ctx, "M5", 5, 0)
	require.NoError(t, err)
	before := svc.Tasks()

	st.fail = true

	_, err = svc.Add(ctx, "M1", 1, 0)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, before, svc.Tasks())

	_, err = svc.Toggle(ctx, task.ID)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, before, svc.Tasks())

	assert.ErrorIs(t, svc.Remove(ctx, task.ID), errBoom)
	assert.Equal(t, before, svc.Tasks())
}

func TestOnChange(t *testing.T) {
	t.Parallel()

	svc, st := newService(t)
	ctx := context.Background()

	var seen [][]tasks.Task
	svc.OnChange(func(list []tasks.Task) { seen = append(seen, list) })

	task, err := svc.Add(ctx, "M5", 5, 0)
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, task.ID)
	require.NoError(t, err)

	st.fail = true
	_, err = svc.Add(ctx, "M1", 1, 0)
	require.Error(t, err)

	require.Len(t, seen, 2)
	assert.True(t, seen[0][0].Enabled)
	assert.False(t, seen[1][0].Enabled)
}

func TestImport(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	ctx := context.Background()
	created := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	legacy := []tasks.Task{
		{ID: "legacy-1", Name: "M15", Period: 15, NotifyBefore: 60, Enabled: true, CreatedAt: created},
		{Name: "H4", Period: 240, Enabled: false},
		{Name: "broken", Period: 0},
	}

	n, err := svc.Import(ctx, legacy)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list := svc.Tasks()
	require.Len(t, list, 2)
	for _, task := range list {
		assert.NotEqual(t, "legacy-1", task.ID)
		assert.NotEmpty(t, task.ID)
	}
	assert.Equal(t, "H4", list[0].Name)
	assert.True(t, list[1].CreatedAt.Equal(created))

	n, err = svc.Import(ctx, legacy)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Len(t, svc.Tasks(), 2)
}
