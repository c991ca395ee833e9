package journal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Service orchestrates journal writes. It recomputes derived fields, keeps
// account balances in step with settled entries and refuses to delete
// instruments or accounts that entries still reference.
//
// Callers must not run overlapping updates or deletes of the same entry.
// Balance adjustments are serialized per account.
type Service struct {
	store  Store
	images ImageStore
	log    zerolog.Logger
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type Option func(*Service)

// WithClock replaces time.Now for timestamps and default dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, images ImageStore, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		images: images,
		log:    log.With().Str("component", "journal").Logger(),
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) accountLock(accountID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[accountID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[accountID] = l
	}
	return l
}

// AdjustAccountBalance adds delta to the account's balance, rounded to cents.
// An empty id, a non-finite delta or a missing account is a no-op.
func (s *Service) AdjustAccountBalance(ctx context.Context, accountID string, delta float64) error {
	if accountID == "" || !finite(delta) {
		return nil
	}

	l := s.accountLock(accountID)
	l.Lock()
	defer l.Unlock()

	acc, err := s.store.FindAccount(ctx, accountID)
	if err != nil {
		return fmt.Errorf("load account %s: %w", accountID, err)
	}
	if acc == nil {
		s.log.Debug().Str("account", accountID).Msg("balance adjust skipped, account missing")
		return nil
	}

	before := acc.Balance
	acc.Balance = Round2(acc.Balance + delta)
	acc.UpdatedAt = s.now()
	if _, err := s.store.UpdateAccount(ctx, *acc); err != nil {
		return fmt.Errorf("update account %s: %w", accountID, err)
	}

	s.log.Debug().
		Str("account", accountID).
		Float64("delta", delta).
		Float64("before", before).
		Float64("after", acc.Balance).
		Msg("balance adjusted")
	return nil
}

func (s *Service) instrumentFor(ctx context.Context, id string) (*Instrument, error) {
	if id == "" {
		return nil, nil
	}
	inst, err := s.store.FindInstrument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load instrument %s: %w", id, err)
	}
	return inst, nil
}
