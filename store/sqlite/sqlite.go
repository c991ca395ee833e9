// Package sqlite stores journal and task documents in a single SQLite file.
package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/candlewaker/journal"
	"github.com/rustyeddy/candlewaker/tasks"
)

type SQLite struct {
	db   *sql.DB
	path string
}

var (
	_ journal.Store = (*SQLite)(nil)
	_ tasks.Store   = (*SQLite)(nil)
)

// NewSQLite opens (creating if needed) the database at path and applies the
// schema.
func NewSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// One writer at a time; the app is single user.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{db: db, path: path}, nil
}

func (s *SQLite) Path() string { return s.path }

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func rowsAffected(res sql.Result, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// normalize rewrites a stored document into the canonical shape before it
// is decoded. "_id" becomes "id". createdAt and updatedAt stored as epoch
// millis or as {"$$date": millis} become RFC 3339, while "date" always ends
// up as epoch millis. A lone "imageFileName" becomes a one element
// "imageFileNames" list.
func normalize(raw []byte) ([]byte, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}

	if legacy, ok := m["_id"]; ok {
		if cur, ok := m["id"]; !ok || isEmpty(cur) {
			m["id"] = legacy
		}
		delete(m, "_id")
	}

	for _, k := range []string{"createdAt", "updatedAt"} {
		v, ok := m[k]
		if !ok {
			continue
		}
		t, ok := parseStamp(v)
		if !ok {
			delete(m, k)
			continue
		}
		b, _ := json.Marshal(t)
		m[k] = b
	}

	if v, ok := m["date"]; ok {
		if t, ok := parseStamp(v); ok {
			m["date"] = []byte(strconv.FormatInt(t.UnixMilli(), 10))
		}
	}

	if single, ok := m["imageFileName"]; ok {
		if list, ok := m["imageFileNames"]; (!ok || isEmpty(list)) && !isEmpty(single) {
			m["imageFileNames"] = append(append([]byte("["), single...), ']')
		}
		delete(m, "imageFileName")
	}
	if list, ok := m["imageFileNames"]; !ok || isEmpty(list) {
		m["imageFileNames"] = []byte("[]")
	}

	return json.Marshal(m)
}

func isEmpty(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	return len(v) == 0 || string(v) == "null" || string(v) == `""` || string(v) == "[]"
}

func parseStamp(v json.RawMessage) (time.Time, bool) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || string(v) == "null" {
		return time.Time{}, false
	}

	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t, true
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms), true
		}
		return time.Time{}, false
	}

	var ms float64
	if err := json.Unmarshal(v, &ms); err == nil {
		return time.UnixMilli(int64(ms)), true
	}

	var wrapped struct {
		Date *float64 `json:"$$date"`
	}
	if err := json.Unmarshal(v, &wrapped); err == nil && wrapped.Date != nil {
		return time.UnixMilli(int64(*wrapped.Date)), true
	}
	return time.Time{}, false
}

func decode[T any](raw []byte) (T, error) {
	var out T
	norm, err := normalize(raw)
	if err != nil {
		return out, fmt.Errorf("normalize document: %w", err)
	}
	if err := json.Unmarshal(norm, &out); err != nil {
		return out, fmt.Errorf("decode document: %w", err)
	}
	return out, nil
}
