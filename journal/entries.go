package journal

import (
	"context"
	"fmt"

	"github.com/rustyeddy/candlewaker/pkg/id"
)

// CreateEntry saves the draft's images, derives usdPnl and riskReward,
// inserts the entry and, if it is settled, books its P&L to the account.
func (s *Service) CreateEntry(ctx context.Context, d Draft) (Entry, error) {
	e := d.Entry
	if e.Status == "" {
		e.Status = Open
	}
	if !e.Direction.Valid() {
		return Entry{}, fmt.Errorf("%w: direction %q", ErrInvalidInput, e.Direction)
	}
	if !e.Status.Valid() {
		return Entry{}, fmt.Errorf("%w: status %q", ErrInvalidInput, e.Status)
	}

	now := s.now()
	if e.Date == 0 {
		e.Date = now.UnixMilli()
	}

	names, err := s.saveImages(ctx, d.payloads())
	if err != nil {
		return Entry{}, err
	}
	e.Images = append(append([]string{}, e.Images...), names...)

	inst, err := s.instrumentFor(ctx, e.InstrumentID)
	if err != nil {
		s.dropImages(ctx, names)
		return Entry{}, err
	}
	e = Derive(e, inst)

	e.ID = id.New()
	e.CreatedAt = now
	e.UpdatedAt = now

	created, err := s.store.InsertEntry(ctx, e)
	if err != nil {
		s.dropImages(ctx, names)
		return Entry{}, fmt.Errorf("insert entry: %w", err)
	}

	if IsSettled(created) {
		if err := s.AdjustAccountBalance(ctx, created.AccountID, *created.UsdPnL); err != nil {
			return created, err
		}
	}

	s.log.Info().
		Str("entry", created.ID).
		Str("symbol", created.Symbol).
		Str("status", string(created.Status)).
		Float64("usd_pnl", *created.UsdPnL).
		Msg("entry created")
	return created, nil
}

// UpdateEntry applies p to the entry with the given id and re-settles it:
// the old P&L is taken off the old account if the entry was settled, and the
// new P&L is booked to the new account if it is settled now. It returns the
// number of entries modified, 0 when the id does not exist.
func (s *Service) UpdateEntry(ctx context.Context, entryID string, p Patch) (int64, error) {
	if err := p.validate(); err != nil {
		return 0, err
	}

	existing, err := s.store.FindEntry(ctx, entryID)
	if err != nil {
		return 0, fmt.Errorf("load entry %s: %w", entryID, err)
	}
	if existing == nil {
		return 0, nil
	}

	// New images are written first and removed ones deleted only after the
	// entry is stored, so a failed update never points at a missing file.
	added, err := s.saveImages(ctx, p.Images)
	if err != nil {
		return 0, err
	}
	images := make([]string, 0, len(existing.Images)+len(added))
	var removed []string
	for _, name := range existing.Images {
		if contains(p.RemoveImageFileNames, name) {
			removed = append(removed, name)
			continue
		}
		images = append(images, name)
	}
	images = append(images, added...)

	merged := p.Apply(*existing)
	merged.Images = images

	inst, err := s.instrumentFor(ctx, merged.InstrumentID)
	if err != nil {
		s.dropImages(ctx, added)
		return 0, err
	}
	merged = Derive(merged, inst)
	merged.UpdatedAt = s.now()

	n, err := s.store.UpdateEntry(ctx, merged)
	if err != nil {
		s.dropImages(ctx, added)
		return 0, fmt.Errorf("update entry %s: %w", entryID, err)
	}
	if n == 0 {
		s.dropImages(ctx, added)
		return 0, nil
	}
	s.dropImages(ctx, removed)

	if IsSettled(*existing) {
		if err := s.AdjustAccountBalance(ctx, existing.AccountID, -s.bookedUsd(ctx, *existing)); err != nil {
			return n, err
		}
	}
	if IsSettled(merged) {
		if err := s.AdjustAccountBalance(ctx, merged.AccountID, *merged.UsdPnL); err != nil {
			return n, err
		}
	}

	s.log.Info().
		Str("entry", entryID).
		Str("status", string(merged.Status)).
		Float64("usd_pnl", *merged.UsdPnL).
		Msg("entry updated")
	return n, nil
}

// DeleteEntry removes the entry's images, reverses its settlement and
// deletes it. A missing id removes nothing and returns 0.
//
// There is no rollback: if removal fails after the images are gone the
// entry stays without them.
func (s *Service) DeleteEntry(ctx context.Context, entryID string) (int64, error) {
	existing, err := s.store.FindEntry(ctx, entryID)
	if err != nil {
		return 0, fmt.Errorf("load entry %s: %w", entryID, err)
	}
	if existing == nil {
		return 0, nil
	}

	s.dropImages(ctx, existing.Images)

	if IsSettled(*existing) {
		if err := s.AdjustAccountBalance(ctx, existing.AccountID, -s.bookedUsd(ctx, *existing)); err != nil {
			return 0, err
		}
	}

	n, err := s.store.RemoveEntry(ctx, entryID)
	if err != nil {
		return 0, fmt.Errorf("remove entry %s: %w", entryID, err)
	}

	s.log.Info().Str("entry", entryID).Msg("entry deleted")
	return n, nil
}

// GetEntry returns ErrNotFound for unknown ids.
func (s *Service) GetEntry(ctx context.Context, entryID string) (Entry, error) {
	e, err := s.store.FindEntry(ctx, entryID)
	if err != nil {
		return Entry{}, fmt.Errorf("load entry %s: %w", entryID, err)
	}
	if e == nil {
		return Entry{}, fmt.Errorf("entry %s: %w", entryID, ErrNotFound)
	}
	return *e, nil
}

func (s *Service) ListEntries(ctx context.Context, q EntryQuery) ([]Entry, error) {
	entries, err := s.store.FindEntries(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// ReadImage returns the stored image as a data URI. Errors propagate; the
// image is needed to display the entry.
func (s *Service) ReadImage(ctx context.Context, filename string) (string, error) {
	return s.images.Read(ctx, filename)
}

// bookedUsd is the amount a settled entry added to its account. Stored
// documents missing usdPnl are recomputed.
func (s *Service) bookedUsd(ctx context.Context, e Entry) float64 {
	if isNum(e.UsdPnL) {
		return *e.UsdPnL
	}
	inst, err := s.instrumentFor(ctx, e.InstrumentID)
	if err != nil {
		s.log.Warn().Err(err).Str("entry", e.ID).Msg("instrument lookup failed, reversing 0")
		return 0
	}
	return ComputeUsdPnl(e, inst)
}

func (s *Service) saveImages(ctx context.Context, payloads []string) ([]string, error) {
	names := make([]string, 0, len(payloads))
	for _, p := range payloads {
		if p == "" {
			continue
		}
		name, err := s.images.Save(ctx, p)
		if err != nil {
			s.dropImages(ctx, names)
			return nil, fmt.Errorf("save image: %w", err)
		}
		names = append(names, name)
	}
	return names, nil
}

func (s *Service) dropImages(ctx context.Context, names []string) {
	for _, n := range names {
		s.images.Delete(ctx, n)
	}
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
