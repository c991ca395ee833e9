// Package tasks manages candle close reminders.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound = errors.New("task not found")
	ErrInvalid  = errors.New("invalid task")
)

// Task is a recurring reminder aligned to candle closes of Period minutes.
type Task struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Period       int       `json:"period"`       // minutes
	NotifyBefore int       `json:"notifyBefore"` // seconds
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if t.Period <= 0 {
		return fmt.Errorf("%w: period must be positive minutes", ErrInvalid)
	}
	if t.NotifyBefore < 0 {
		return fmt.Errorf("%w: notifyBefore must not be negative", ErrInvalid)
	}
	return nil
}

// Update changes selected task fields; nil fields are kept.
type Update struct {
	Name         *string `json:"name,omitempty"`
	Period       *int    `json:"period,omitempty"`
	NotifyBefore *int    `json:"notifyBefore,omitempty"`
	Enabled      *bool   `json:"enabled,omitempty"`
}

func (u Update) Apply(t Task) Task {
	if u.Name != nil {
		t.Name = strings.TrimSpace(*u.Name)
	}
	if u.Period != nil {
		t.Period = *u.Period
	}
	if u.NotifyBefore != nil {
		t.NotifyBefore = *u.NotifyBefore
	}
	if u.Enabled != nil {
		t.Enabled = *u.Enabled
	}
	return t
}

// Store persists tasks. ListTasks returns newest first. UpdateTask and
// RemoveTask return the number of tasks affected.
type Store interface {
	InsertTask(ctx context.Context, t Task) (Task, error)
	ListTasks(ctx context.Context) ([]Task, error)
	UpdateTask(ctx context.Context, t Task) (int64, error)
	RemoveTask(ctx context.Context, id string) (int64, error)
}
