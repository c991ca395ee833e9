package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rustyeddy/candlewaker/tasks"
)

func (s *SQLite) InsertTask(ctx context.Context, t tasks.Task) (tasks.Task, error) {
	doc, err := json.Marshal(t)
	if err != nil {
		return tasks.Task{}, fmt.Errorf("encode task: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, created_at, doc) VALUES (?, ?, ?)`,
		t.ID, t.CreatedAt.UnixMilli(), string(doc))
	if err != nil {
		return tasks.Task{}, err
	}
	return t, nil
}

func (s *SQLite) ListTasks(ctx context.Context) ([]tasks.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM tasks ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]tasks.Task, 0)
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		t, err := decode[tasks.Task]([]byte(doc))
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLite) UpdateTask(ctx context.Context, t tasks.Task) (int64, error) {
	doc, err := json.Marshal(t)
	if err != nil {
		return 0, fmt.Errorf("encode task: %w", err)
	}
	return rowsAffected(s.db.ExecContext(ctx,
		`UPDATE tasks SET created_at = ?, doc = ? WHERE id = ?`,
		t.CreatedAt.UnixMilli(), string(doc), t.ID))
}

func (s *SQLite) RemoveTask(ctx context.Context, id string) (int64, error) {
	return rowsAffected(s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id))
}
