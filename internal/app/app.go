// Package app wires configuration, storage and services together for the
// CLI and the local API.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/candlewaker/config"
	"github.com/rustyeddy/candlewaker/countdown"
	"github.com/rustyeddy/candlewaker/images"
	"github.com/rustyeddy/candlewaker/journal"
	"github.com/rustyeddy/candlewaker/notify"
	"github.com/rustyeddy/candlewaker/store/sqlite"
	"github.com/rustyeddy/candlewaker/tasks"
)

type App struct {
	Config  *config.Config
	Log     zerolog.Logger
	DB      *sqlite.SQLite
	Images  *images.FileStore
	Journal *journal.Service
	Tasks   *tasks.Service
	Runner  *countdown.Runner
}

// Options tune New. Out receives console reminders; nil keeps them in the
// log only.
type Options struct {
	Out io.Writer
}

// New opens the database and image directory named by cfg and builds the
// services. The task list is loaded and kept in sync with the countdown
// runner, which is not started.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts Options) (*App, error) {
	db, err := sqlite.NewSQLite(cfg.Database())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	imgs, err := images.NewFileStore(cfg.Images(), log)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open images dir: %w", err)
	}

	var notifier notify.Notifier = notify.NewLog(log)
	if opts.Out != nil {
		player := notify.CommandPlayer{Command: cfg.Notify.PlayerCommand}
		notifier = notify.Multi{notifier, notify.NewConsole(opts.Out, cfg.Notify, player, log)}
	}

	a := &App{
		Config:  cfg,
		Log:     log,
		DB:      db,
		Images:  imgs,
		Journal: journal.NewService(db, imgs, log),
		Tasks:   tasks.NewService(db, log),
		Runner: countdown.NewRunner(notifier, log,
			countdown.WithUrgentSeconds(cfg.Countdown.UrgentSeconds)),
	}

	a.Tasks.OnChange(a.Runner.Sync)
	if _, err := a.Tasks.Load(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Debug().
		Str("db", db.Path()).
		Str("images", imgs.Dir()).
		Msg("app ready")
	return a, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}
