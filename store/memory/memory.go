// Package memory is an in-process implementation of the journal and task
// stores. Documents are copied on the way in and out.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/rustyeddy/candlewaker/journal"
	"github.com/rustyeddy/candlewaker/tasks"
)

type Store struct {
	mu          sync.Mutex
	entries     map[string]journal.Entry
	instruments map[string]journal.Instrument
	accounts    map[string]journal.Account
	strategies  map[string]journal.Strategy
	tasks       map[string]tasks.Task
}

func New() *Store {
	return &Store{
		entries:     make(map[string]journal.Entry),
		instruments: make(map[string]journal.Instrument),
		accounts:    make(map[string]journal.Account),
		strategies:  make(map[string]journal.Strategy),
		tasks:       make(map[string]tasks.Task),
	}
}

var (
	_ journal.Store = (*Store)(nil)
	_ tasks.Store   = (*Store)(nil)
)

func copyEntry(e journal.Entry) journal.Entry {
	cp := func(p *float64) *float64 {
		if p == nil {
			return nil
		}
		v := *p
		return &v
	}
	e.ExitPrice = cp(e.ExitPrice)
	e.StopLoss = cp(e.StopLoss)
	e.PositionSize = cp(e.PositionSize)
	e.PnL = cp(e.PnL)
	e.UsdPnL = cp(e.UsdPnL)
	e.RiskReward = cp(e.RiskReward)
	e.Images = append([]string{}, e.Images...)
	return e
}

// Entries

func (s *Store) InsertEntry(ctx context.Context, e journal.Entry) (journal.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.ID] = copyEntry(e)
	return copyEntry(e), nil
}

func (s *Store) FindEntries(ctx context.Context, q journal.EntryQuery) ([]journal.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]journal.Entry, 0)
	for _, e := range s.entries {
		if q.Matches(e) {
			out = append(out, copyEntry(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Date != b.Date {
			if q.Ascending {
				return a.Date < b.Date
			}
			return a.Date > b.Date
		}
		if q.Ascending {
			return a.ID < b.ID
		}
		return a.ID > b.ID
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) FindEntry(ctx context.Context, id string) (*journal.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, nil
	}
	cp := copyEntry(e)
	return &cp, nil
}

func (s *Store) UpdateEntry(ctx context.Context, e journal.Entry) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[e.ID]; !ok {
		return 0, nil
	}
	s.entries[e.ID] = copyEntry(e)
	return 1, nil
}

func (s *Store) RemoveEntry(ctx context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return 0, nil
	}
	delete(s.entries, id)
	return 1, nil
}

func (s *Store) CountEntries(ctx context.Context, q journal.EntryQuery) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, e := range s.entries {
		if q.Matches(e) {
			n++
		}
	}
	return n, nil
}

// Instruments

func (s *Store) InsertInstrument(ctx context.Context, i journal.Instrument) (journal.Instrument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instruments[i.ID] = i
	return i, nil
}

func (s *Store) ListInstruments(ctx context.Context) ([]journal.Instrument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]journal.Instrument, 0, len(s.instruments))
	for _, i := range s.instruments {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool { return byName(out[a].Name, out[a].ID, out[b].Name, out[b].ID) })
	return out, nil
}

func (s *Store) FindInstrument(ctx context.Context, id string) (*journal.Instrument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.instruments[id]
	if !ok {
		return nil, nil
	}
	return &i, nil
}

func (s *Store) UpdateInstrument(ctx context.Context, i journal.Instrument) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.instruments[i.ID]; !ok {
		return 0, nil
	}
	s.instruments[i.ID] = i
	return 1, nil
}

func (s *Store) RemoveInstrument(ctx context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.instruments[id]; !ok {
		return 0, nil
	}
	delete(s.instruments, id)
	return 1, nil
}

// Accounts

func (s *Store) InsertAccount(ctx context.Context, a journal.Account) (journal.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = a
	return a, nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]journal.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]journal.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(a, b int) bool { return byName(out[a].Name, out[a].ID, out[b].Name, out[b].ID) })
	return out, nil
}

func (s *Store) FindAccount(ctx context.Context, id string) (*journal.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *Store) UpdateAccount(ctx context.Context, a journal.Account) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.ID]; !ok {
		return 0, nil
	}
	s.accounts[a.ID] = a
	return 1, nil
}

func (s *Store) RemoveAccount(ctx context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return 0, nil
	}
	delete(s.accounts, id)
	return 1, nil
}

// Strategies

func (s *Store) InsertStrategy(ctx context.Context, st journal.Strategy) (journal.Strategy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strategies[st.ID] = st
	return st, nil
}

func (s *Store) ListStrategies(ctx context.Context) ([]journal.Strategy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]journal.Strategy, 0, len(s.strategies))
	for _, st := range s.strategies {
		out = append(out, st)
	}
	sort.Slice(out, func(a, b int) bool { return byName(out[a].Name, out[a].ID, out[b].Name, out[b].ID) })
	return out, nil
}

func (s *Store) FindStrategy(ctx context.Context, id string) (*journal.Strategy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.strategies[id]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (s *Store) UpdateStrategy(ctx context.Context, st journal.Strategy) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.strategies[st.ID]; !ok {
		return 0, nil
	}
	s.strategies[st.ID] = st
	return 1, nil
}

func (s *Store) RemoveStrategy(ctx context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.strategies[id]; !ok {
		return 0, nil
	}
	delete(s.strategies, id)
	return 1, nil
}

// Tasks

func (s *Store) InsertTask(ctx context.Context, t tasks.Task) (tasks.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = t
	return t, nil
}

func (s *Store) ListTasks(ctx context.Context) ([]tasks.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]tasks.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateTask(ctx context.Context, t tasks.Task) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t.ID]; !ok {
		return 0, nil
	}
	s.tasks[t.ID] = t
	return 1, nil
}

func (s *Store) RemoveTask(ctx context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return 0, nil
	}
	delete(s.tasks, id)
	return 1, nil
}

func byName(an, aid, bn, bid string) bool {
	if an != bn {
		return an < bn
	}
	return aid < bid
}
