package sqlite

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rustyeddy/candlewaker/journal"
	"github.com/rustyeddy/candlewaker/tasks"
)

// Kinds accepted by ImportNeDB.
const (
	KindTasks       = "tasks"
	KindJournal     = "journal"
	KindInstruments = "instruments"
	KindAccounts    = "accounts"
	KindStrategies  = "strategies"
)

// ImportNeDB loads an append-only NeDB datafile (one JSON document per
// line) into the collection named by kind. Later lines for the same _id
// replace earlier ones, {"$$deleted": true} lines drop the document and
// index definitions are skipped. Existing rows with the same id are
// overwritten. It returns the number of documents written.
func (s *SQLite) ImportNeDB(ctx context.Context, kind string, r io.Reader) (int, error) {
	if !validKind(kind) {
		return 0, fmt.Errorf("unknown collection %q (want one of %s)", kind, strings.Join(Kinds, ", "))
	}
	docs, order, err := readNeDB(r)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	n := 0
	for _, id := range order {
		raw, ok := docs[id]
		if !ok {
			continue
		}
		if err := importDoc(ctx, tx, kind, raw); err != nil {
			return n, fmt.Errorf("import %s %s: %w", kind, id, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

func readNeDB(r io.Reader) (map[string][]byte, []string, error) {
	docs := make(map[string][]byte)
	var order []string

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 32*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var head struct {
			ID      string          `json:"_id"`
			Deleted bool            `json:"$$deleted"`
			Index   json.RawMessage `json:"$$indexCreated"`
		}
		if err := json.Unmarshal(b, &head); err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		if head.Index != nil || head.ID == "" {
			continue
		}
		if head.Deleted {
			delete(docs, head.ID)
			continue
		}
		if _, seen := docs[head.ID]; !seen {
			order = append(order, head.ID)
		}
		docs[head.ID] = append([]byte(nil), b...)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	return docs, order, nil
}

func importDoc(ctx context.Context, tx *sql.Tx, kind string, raw []byte) error {
	switch kind {
	case KindTasks:
		t, err := decode[tasks.Task](raw)
		if err != nil {
			return err
		}
		doc, err := json.Marshal(t)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO tasks (id, created_at, doc) VALUES (?, ?, ?)`,
			t.ID, t.CreatedAt.UnixMilli(), string(doc))
		return err

	case KindJournal:
		e, err := decode[journal.Entry](raw)
		if err != nil {
			return err
		}
		if e.Status == "" {
			e.Status = journal.Open
		}
		doc, err := json.Marshal(e)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO journal (id, date, account_id, instrument_id, strategy_id, status, doc)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.Date, e.AccountID, e.InstrumentID, e.StrategyID, string(e.Status), string(doc))
		return err

	case KindInstruments:
		return importNamed[journal.Instrument](ctx, tx, kind, raw,
			func(i journal.Instrument) (string, string) { return i.ID, i.Name })
	case KindAccounts:
		return importNamed[journal.Account](ctx, tx, kind, raw,
			func(a journal.Account) (string, string) { return a.ID, a.Name })
	case KindStrategies:
		return importNamed[journal.Strategy](ctx, tx, kind, raw,
			func(st journal.Strategy) (string, string) { return st.ID, st.Name })
	}
	return fmt.Errorf("unknown collection %q", kind)
}

var Kinds = []string{KindTasks, KindJournal, KindInstruments, KindAccounts, KindStrategies}

func validKind(kind string) bool {
	for _, k := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func importNamed[T any](ctx context.Context, tx *sql.Tx, table string, raw []byte, key func(T) (string, string)) error {
	v, err := decode[T](raw)
	if err != nil {
		return err
	}
	doc, err := json.Marshal(v)
	if err != nil {
		return err
	}
	id, name := key(v)
	_, err = tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO "+table+" (id, name, doc) VALUES (?, ?, ?)", id, name, string(doc))
	return err
}
