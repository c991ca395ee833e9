package journal

import "context"

// EntryQuery filters and orders journal entries. Zero values mean "any".
// From and To are inclusive epoch millis bounds on Date.
type EntryQuery struct {
	AccountID    string
	InstrumentID string
	StrategyID   string
	Statuses     []Status
	From         int64
	To           int64
	Ascending    bool // default newest first
	Limit        int
}

// Matches reports whether e passes the filter part of q.
func (q EntryQuery) Matches(e Entry) bool {
	if q.AccountID != "" && e.AccountID != q.AccountID {
		return false
	}
	if q.InstrumentID != "" && e.InstrumentID != q.InstrumentID {
		return false
	}
	if q.StrategyID != "" && e.StrategyID != q.StrategyID {
		return false
	}
	if len(q.Statuses) > 0 {
		ok := false
		for _, s := range q.Statuses {
			if e.Status == s {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if q.From != 0 && e.Date < q.From {
		return false
	}
	if q.To != 0 && e.Date > q.To {
		return false
	}
	return true
}

// Find methods return nil, nil when the id does not exist. Update and Remove
// return the number of documents affected.
type EntryStore interface {
	InsertEntry(ctx context.Context, e Entry) (Entry, error)
	FindEntries(ctx context.Context, q EntryQuery) ([]Entry, error)
	FindEntry(ctx context.Context, id string) (*Entry, error)
	UpdateEntry(ctx context.Context, e Entry) (int64, error)
	RemoveEntry(ctx context.Context, id string) (int64, error)
	CountEntries(ctx context.Context, q EntryQuery) (int64, error)
}

type InstrumentStore interface {
	InsertInstrument(ctx context.Context, i Instrument) (Instrument, error)
	ListInstruments(ctx context.Context) ([]Instrument, error)
	FindInstrument(ctx context.Context, id string) (*Instrument, error)
	UpdateInstrument(ctx context.Context, i Instrument) (int64, error)
	RemoveInstrument(ctx context.Context, id string) (int64, error)
}

type AccountStore interface {
	InsertAccount(ctx context.Context, a Account) (Account, error)
	ListAccounts(ctx context.Context) ([]Account, error)
	FindAccount(ctx context.Context, id string) (*Account, error)
	UpdateAccount(ctx context.Context, a Account) (int64, error)
	RemoveAccount(ctx context.Context, id string) (int64, error)
}

type StrategyStore interface {
	InsertStrategy(ctx context.Context, s Strategy) (Strategy, error)
	ListStrategies(ctx context.Context) ([]Strategy, error)
	FindStrategy(ctx context.Context, id string) (*Strategy, error)
	UpdateStrategy(ctx context.Context, s Strategy) (int64, error)
	RemoveStrategy(ctx context.Context, id string) (int64, error)
}

// Store is everything the journal service persists.
type Store interface {
	EntryStore
	InstrumentStore
	AccountStore
	StrategyStore
}

// ImageStore keeps screenshots attached to entries. Save takes raw base64 or
// a data URI and returns an opaque filename. Delete is best effort and never
// fails the caller.
type ImageStore interface {
	Save(ctx context.Context, payload string) (string, error)
	Delete(ctx context.Context, filename string)
	Read(ctx context.Context, filename string) (string, error)
}
