package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/candlewaker/journal"
)

func TestEntriesAreCopied(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	e := journal.Entry{ID: "a", Date: 1, ExitPrice: journal.Float(5), Images: []string{"x.png"}}
	_, err := s.InsertEntry(ctx, e)
	require.NoError(t, err)

	*e.ExitPrice = 99
	e.Images[0] = "y.png"

	got, err := s.FindEntry(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 5.0, *got.ExitPrice)
	assert.Equal(t, []string{"x.png"}, got.Images)
}

func TestFindEntriesOrderAndLimit(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	for _, e := range []journal.Entry{
		{ID: "a", Date: 10, AccountID: "x", Status: journal.Open},
		{ID: "b", Date: 30, AccountID: "x", Status: journal.Win},
		{ID: "c", Date: 20, AccountID: "y", Status: journal.Loss},
		{ID: "d", Date: 20, AccountID: "y", Status: journal.Loss},
	} {
		_, err := s.InsertEntry(ctx, e)
		require.NoError(t, err)
	}

	tests := []struct {
		name string
		q    journal.EntryQuery
		want []string
	}{
		{"newest first", journal.EntryQuery{}, []string{"b", "d", "c", "a"}},
		{"ascending", journal.EntryQuery{Ascending: true}, []string{"a", "c", "d", "b"}},
		{"limit", journal.EntryQuery{Limit: 2}, []string{"b", "d"}},
		{"account", journal.EntryQuery{AccountID: "x"}, []string{"b", "a"}},
		{"status", journal.EntryQuery{Statuses: []journal.Status{journal.Loss}}, []string{"d", "c"}},
		{"range", journal.EntryQuery{From: 15, To: 25}, []string{"d", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.FindEntries(ctx, tt.q)
			require.NoError(t, err)
			ids := make([]string, len(got))
			for i, e := range got {
				ids[i] = e.ID
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestUpdateAndRemoveMissing(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	n, err := s.UpdateAccount(ctx, journal.Account{ID: "nope"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	n, err = s.RemoveInstrument(ctx, "nope")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	_, err = s.InsertStrategy(ctx, journal.Strategy{ID: "2", Name: "b"})
	require.NoError(t, err)
	_, err = s.InsertStrategy(ctx, journal.Strategy{ID: "1", Name: "a"})
	require.NoError(t, err)
	list, err := s.ListStrategies(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Name)
}
