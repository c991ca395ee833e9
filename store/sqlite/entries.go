package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rustyeddy/candlewaker/journal"
)

func (s *SQLite) InsertEntry(ctx context.Context, e journal.Entry) (journal.Entry, error) {
	if e.Images == nil {
		e.Images = []string{}
	}
	doc, err := json.Marshal(e)
	if err != nil {
		return journal.Entry{}, fmt.Errorf("encode entry: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO journal (id, date, account_id, instrument_id, strategy_id, status, doc)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Date, e.AccountID, e.InstrumentID, e.StrategyID, string(e.Status), string(doc),
	)
	if err != nil {
		return journal.Entry{}, err
	}
	return e, nil
}

func entryWhere(q journal.EntryQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if q.AccountID != "" {
		conds = append(conds, "account_id = ?")
		args = append(args, q.AccountID)
	}
	if q.InstrumentID != "" {
		conds = append(conds, "instrument_id = ?")
		args = append(args, q.InstrumentID)
	}
	if q.StrategyID != "" {
		conds = append(conds, "strategy_id = ?")
		args = append(args, q.StrategyID)
	}
	if len(q.Statuses) > 0 {
		marks := make([]string, len(q.Statuses))
		for i, st := range q.Statuses {
			marks[i] = "?"
			args = append(args, string(st))
		}
		conds = append(conds, "status IN ("+strings.Join(marks, ",")+")")
	}
	if q.From != 0 {
		conds = append(conds, "date >= ?")
		args = append(args, q.From)
	}
	if q.To != 0 {
		conds = append(conds, "date <= ?")
		args = append(args, q.To)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *SQLite) FindEntries(ctx context.Context, q journal.EntryQuery) ([]journal.Entry, error) {
	where, args := entryWhere(q)
	order := " ORDER BY date DESC, id DESC"
	if q.Ascending {
		order = " ORDER BY date ASC, id ASC"
	}
	query := "SELECT doc FROM journal" + where + order
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]journal.Entry, 0)
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		e, err := decode[journal.Entry]([]byte(doc))
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLite) FindEntry(ctx context.Context, id string) (*journal.Entry, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM journal WHERE id = ?`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	e, err := decode[journal.Entry]([]byte(doc))
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *SQLite) UpdateEntry(ctx context.Context, e journal.Entry) (int64, error) {
	if e.Images == nil {
		e.Images = []string{}
	}
	doc, err := json.Marshal(e)
	if err != nil {
		return 0, fmt.Errorf("encode entry: %w", err)
	}
	return rowsAffected(s.db.ExecContext(ctx, `
		UPDATE journal
		SET date = ?, account_id = ?, instrument_id = ?, strategy_id = ?, status = ?, doc = ?
		WHERE id = ?`,
		e.Date, e.AccountID, e.InstrumentID, e.StrategyID, string(e.Status), string(doc), e.ID,
	))
}

func (s *SQLite) RemoveEntry(ctx context.Context, id string) (int64, error) {
	return rowsAffected(s.db.ExecContext(ctx, `DELETE FROM journal WHERE id = ?`, id))
}

func (s *SQLite) CountEntries(ctx context.Context, q journal.EntryQuery) (int64, error) {
	where, args := entryWhere(q)
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM journal"+where, args...).Scan(&n)
	return n, err
}
