package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rustyeddy/candlewaker/journal"
)

// named handles the small collections keyed by id and listed by name.
// table is a fixed identifier, never user input.
type named[T any] struct {
	db    *sql.DB
	table string
	key   func(T) (id, name string)
}

func (c named[T]) insert(ctx context.Context, v T) (T, error) {
	id, name := c.key(v)
	doc, err := json.Marshal(v)
	if err != nil {
		return v, fmt.Errorf("encode %s: %w", c.table, err)
	}
	_, err = c.db.ExecContext(ctx,
		"INSERT INTO "+c.table+" (id, name, doc) VALUES (?, ?, ?)", id, name, string(doc))
	return v, err
}

func (c named[T]) list(ctx context.Context) ([]T, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT doc FROM "+c.table+" ORDER BY name ASC, id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		v, err := decode[T]([]byte(doc))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (c named[T]) find(ctx context.Context, id string) (*T, error) {
	var doc string
	err := c.db.QueryRowContext(ctx, "SELECT doc FROM "+c.table+" WHERE id = ?", id).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	v, err := decode[T]([]byte(doc))
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (c named[T]) update(ctx context.Context, v T) (int64, error) {
	id, name := c.key(v)
	doc, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", c.table, err)
	}
	return rowsAffected(c.db.ExecContext(ctx,
		"UPDATE "+c.table+" SET name = ?, doc = ? WHERE id = ?", name, string(doc), id))
}

func (c named[T]) remove(ctx context.Context, id string) (int64, error) {
	return rowsAffected(c.db.ExecContext(ctx, "DELETE FROM "+c.table+" WHERE id = ?", id))
}

func (s *SQLite) instruments() named[journal.Instrument] {
	return named[journal.Instrument]{db: s.db, table: "instruments",
		key: func(i journal.Instrument) (string, string) { return i.ID, i.Name }}
}

func (s *SQLite) accounts() named[journal.Account] {
	return named[journal.Account]{db: s.db, table: "accounts",
		key: func(a journal.Account) (string, string) { return a.ID, a.Name }}
}

func (s *SQLite) strategies() named[journal.Strategy] {
	return named[journal.Strategy]{db: s.db, table: "strategies",
		key: func(st journal.Strategy) (string, string) { return st.ID, st.Name }}
}

func (s *SQLite) InsertInstrument(ctx context.Context, i journal.Instrument) (journal.Instrument, error) {
	return s.instruments().insert(ctx, i)
}

func (s *SQLite) ListInstruments(ctx context.Context) ([]journal.Instrument, error) {
	return s.instruments().list(ctx)
}

func (s *SQLite) FindInstrument(ctx context.Context, id string) (*journal.Instrument, error) {
	return s.instruments().find(ctx, id)
}

func (s *SQLite) UpdateInstrument(ctx context.Context, i journal.Instrument) (int64, error) {
	return s.instruments().update(ctx, i)
}

func (s *SQLite) RemoveInstrument(ctx context.Context, id string) (int64, error) {
	return s.instruments().remove(ctx, id)
}

func (s *SQLite) InsertAccount(ctx context.Context, a journal.Account) (journal.Account, error) {
	return s.accounts().insert(ctx, a)
}

func (s *SQLite) ListAccounts(ctx context.Context) ([]journal.Account, error) {
	return s.accounts().list(ctx)
}

func (s *SQLite) FindAccount(ctx context.Context, id string) (*journal.Account, error) {
	return s.accounts().find(ctx, id)
}

func (s *SQLite) UpdateAccount(ctx context.Context, a journal.Account) (int64, error) {
	return s.accounts().update(ctx, a)
}

func (s *SQLite) RemoveAccount(ctx context.Context, id string) (int64, error) {
	return s.accounts().remove(ctx, id)
}

func (s *SQLite) InsertStrategy(ctx context.Context, st journal.Strategy) (journal.Strategy, error) {
	return s.strategies().insert(ctx, st)
}

func (s *SQLite) ListStrategies(ctx context.Context) ([]journal.Strategy, error) {
	return s.strategies().list(ctx)
}

func (s *SQLite) FindStrategy(ctx context.Context, id string) (*journal.Strategy, error) {
	return s.strategies().find(ctx, id)
}

func (s *SQLite) UpdateStrategy(ctx context.Context, st journal.Strategy) (int64, error) {
	return s.strategies().update(ctx, st)
}

func (s *SQLite) RemoveStrategy(ctx context.Context, id string) (int64, error) {
	return s.strategies().remove(ctx, id)
}
