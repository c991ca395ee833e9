package journal

import (
	"context"
	"fmt"
	"strings"

	"github.com/rustyeddy/candlewaker/market"
	"github.com/rustyeddy/candlewaker/pkg/id"
)

type InstrumentPatch struct {
	Name          *string  `json:"name,omitempty"`
	PointValueUSD *float64 `json:"pointValueUSD,omitempty"`
}

// AccountPatch edits an account. Setting Balance is a manual correction and
// bypasses settlement.
type AccountPatch struct {
	Name    *string  `json:"name,omitempty"`
	Balance *float64 `json:"balance,omitempty"`
}

type StrategyPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

func validName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %s name is required", ErrInvalidInput, kind)
	}
	return nil
}

func validPointValue(v float64) error {
	if !finite(v) || v < 0 {
		return fmt.Errorf("%w: pointValueUSD must be a non-negative number", ErrInvalidInput)
	}
	return nil
}

// Instruments

func (s *Service) CreateInstrument(ctx context.Context, name string, pointValueUSD float64) (Instrument, error) {
	if err := validName("instrument", name); err != nil {
		return Instrument{}, err
	}
	if err := validPointValue(pointValueUSD); err != nil {
		return Instrument{}, err
	}
	now := s.now()
	inst, err := s.store.InsertInstrument(ctx, Instrument{
		ID:            id.New(),
		Name:          strings.TrimSpace(name),
		PointValueUSD: pointValueUSD,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return Instrument{}, fmt.Errorf("insert instrument: %w", err)
	}
	return inst, nil
}

func (s *Service) ListInstruments(ctx context.Context) ([]Instrument, error) {
	return s.store.ListInstruments(ctx)
}

// UpdateInstrument does not reprice existing entries; their usdPnl changes
// the next time each entry is written.
func (s *Service) UpdateInstrument(ctx context.Context, instID string, p InstrumentPatch) (int64, error) {
	inst, err := s.store.FindInstrument(ctx, instID)
	if err != nil {
		return 0, fmt.Errorf("load instrument %s: %w", instID, err)
	}
	if inst == nil {
		return 0, nil
	}
	if p.Name != nil {
		if err := validName("instrument", *p.Name); err != nil {
			return 0, err
		}
		inst.Name = strings.TrimSpace(*p.Name)
	}
	if p.PointValueUSD != nil {
		if err := validPointValue(*p.PointValueUSD); err != nil {
			return 0, err
		}
		inst.PointValueUSD = *p.PointValueUSD
	}
	inst.UpdatedAt = s.now()
	return s.store.UpdateInstrument(ctx, *inst)
}

// DeleteInstrument fails with ErrInstrumentInUse while any entry references
// it. An empty id deletes nothing.
func (s *Service) DeleteInstrument(ctx context.Context, instID string) (int64, error) {
	if instID == "" {
		return 0, nil
	}
	n, err := s.store.CountEntries(ctx, EntryQuery{InstrumentID: instID})
	if err != nil {
		return 0, fmt.Errorf("count entries for instrument %s: %w", instID, err)
	}
	if n > 0 {
		return 0, ErrInstrumentInUse
	}
	return s.store.RemoveInstrument(ctx, instID)
}

// SeedInstruments inserts the market presets whose names are not taken yet
// and returns how many were added.
func (s *Service) SeedInstruments(ctx context.Context) (int, error) {
	existing, err := s.store.ListInstruments(ctx)
	if err != nil {
		return 0, fmt.Errorf("list instruments: %w", err)
	}
	taken := make(map[string]bool, len(existing))
	for _, i := range existing {
		taken[strings.ToUpper(i.Name)] = true
	}

	added := 0
	for _, name := range market.PresetNames() {
		if taken[name] {
			continue
		}
		if _, err := s.CreateInstrument(ctx, name, market.Presets[name].PointValueUSD); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

// Accounts

func (s *Service) CreateAccount(ctx context.Context, name string, balance float64) (Account, error) {
	if err := validName("account", name); err != nil {
		return Account{}, err
	}
	if !finite(balance) {
		return Account{}, fmt.Errorf("%w: balance must be a number", ErrInvalidInput)
	}
	now := s.now()
	acc, err := s.store.InsertAccount(ctx, Account{
		ID:        id.New(),
		Name:      strings.TrimSpace(name),
		Balance:   Round2(balance),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Account{}, fmt.Errorf("insert account: %w", err)
	}
	return acc, nil
}

func (s *Service) ListAccounts(ctx context.Context) ([]Account, error) {
	return s.store.ListAccounts(ctx)
}

func (s *Service) UpdateAccount(ctx context.Context, accID string, p AccountPatch) (int64, error) {
	l := s.accountLock(accID)
	l.Lock()
	defer l.Unlock()

	acc, err := s.store.FindAccount(ctx, accID)
	if err != nil {
		return 0, fmt.Errorf("load account %s: %w", accID, err)
	}
	if acc == nil {
		return 0, nil
	}
	if p.Name != nil {
		if err := validName("account", *p.Name); err != nil {
			return 0, err
		}
		acc.Name = strings.TrimSpace(*p.Name)
	}
	if p.Balance != nil {
		if !finite(*p.Balance) {
			return 0, fmt.Errorf("%w: balance must be a number", ErrInvalidInput)
		}
		acc.Balance = Round2(*p.Balance)
	}
	acc.UpdatedAt = s.now()
	return s.store.UpdateAccount(ctx, *acc)
}

// DeleteAccount fails with ErrAccountInUse while any entry references it.
// An empty id deletes nothing.
func (s *Service) DeleteAccount(ctx context.Context, accID string) (int64, error) {
	if accID == "" {
		return 0, nil
	}
	n, err := s.store.CountEntries(ctx, EntryQuery{AccountID: accID})
	if err != nil {
		return 0, fmt.Errorf("count entries for account %s: %w", accID, err)
	}
	if n > 0 {
		return 0, ErrAccountInUse
	}
	return s.store.RemoveAccount(ctx, accID)
}

// Strategies

func (s *Service) CreateStrategy(ctx context.Context, name, description string) (Strategy, error) {
	if err := validName("strategy", name); err != nil {
		return Strategy{}, err
	}
	now := s.now()
	st, err := s.store.InsertStrategy(ctx, Strategy{
		ID:          id.New(),
		Name:        strings.TrimSpace(name),
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return Strategy{}, fmt.Errorf("insert strategy: %w", err)
	}
	return st, nil
}

func (s *Service) ListStrategies(ctx context.Context) ([]Strategy, error) {
	return s.store.ListStrategies(ctx)
}

func (s *Service) UpdateStrategy(ctx context.Context, stratID string, p StrategyPatch) (int64, error) {
	st, err := s.store.FindStrategy(ctx, stratID)
	if err != nil {
		return 0, fmt.Errorf("load strategy %s: %w", stratID, err)
	}
	if st == nil {
		return 0, nil
	}
	if p.Name != nil {
		if err := validName("strategy", *p.Name); err != nil {
			return 0, err
		}
		st.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		st.Description = *p.Description
	}
	st.UpdatedAt = s.now()
	return s.store.UpdateStrategy(ctx, *st)
}

// DeleteStrategy removes the strategy even if entries still point at it;
// those entries keep the id and stats label them by it.
func (s *Service) DeleteStrategy(ctx context.Context, stratID string) (int64, error) {
	return s.store.RemoveStrategy(ctx, stratID)
}
