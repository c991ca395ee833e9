package countdown

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/candlewaker/market"
	"github.com/rustyeddy/candlewaker/notify"
	"github.com/rustyeddy/candlewaker/tasks"
)

// TaskSnapshot is a task's current countdown.
type TaskSnapshot struct {
	TaskID  string `json:"taskId"`
	Name    string `json:"name"`
	Period  int    `json:"period"`
	Enabled bool   `json:"enabled"`
	Snapshot
}

type watch struct {
	mu     sync.Mutex
	task   tasks.Task
	engine *Engine
	entry  cron.EntryID
	last   Snapshot

	pending []notice // queued by fire, sent once w.mu is released
}

type notice struct{ title, body string }

// take returns and clears the queued notices. Callers hold w.mu.
func (w *watch) take() []notice {
	out := w.pending
	w.pending = nil
	return out
}

// Runner ticks one Engine per watched task on its own one second cron
// entry. Disabled tasks keep counting but never notify.
type Runner struct {
	cron     *cron.Cron
	log      zerolog.Logger
	notifier notify.Notifier
	now      func() time.Time
	urgent   int

	mu      sync.Mutex
	watches map[string]*watch
	order   []string
	hooks   []func(TaskSnapshot)

	sending sync.WaitGroup
}

type RunnerOption func(*Runner)

func WithRunnerClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

func WithUrgentSeconds(n int) RunnerOption {
	return func(r *Runner) { r.urgent = n }
}

func NewRunner(notifier notify.Notifier, log zerolog.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		cron:     cron.New(cron.WithSeconds()),
		log:      log.With().Str("component", "countdown").Logger(),
		notifier: notifier,
		now:      time.Now,
		urgent:   DefaultUrgentSeconds,
		watches:  make(map[string]*watch),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Runner) Start() {
	r.cron.Start()
	r.log.Info().Int("tasks", r.count()).Msg("countdown started")
}

// Stop halts every timer and waits for running ticks and notifications to
// finish.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.sending.Wait()
	r.log.Info().Msg("countdown stopped")
}

// OnTick registers fn to receive every tick of every task. Hooks run on the
// cron goroutine of the task.
func (r *Runner) OnTick(fn func(TaskSnapshot)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, fn)
}

// Watch starts the timer for t, or reconfigures it if t is already watched.
func (r *Runner) Watch(t tasks.Task) error {
	notices, err := r.watch(t)
	r.send(notices)
	return err
}

func (r *Runner) watch(t tasks.Task) ([]notice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if w, ok := r.watches[t.ID]; ok {
		w.mu.Lock()
		defer w.mu.Unlock()
		changed := w.task.Period != t.Period || w.task.NotifyBefore != t.NotifyBefore
		w.task = t
		if changed {
			w.engine.Reconfigure(t.Period, t.NotifyBefore, r.now())
			w.last = w.engine.Tick(r.now())
		}
		return w.take(), nil
	}

	w := &watch{task: t}
	w.engine = NewEngine(t.Period, t.NotifyBefore, r.now(), func(s Snapshot) { r.fire(w, s) })
	w.engine.SetUrgentSeconds(r.urgent)
	w.last = w.engine.Tick(r.now())

	taskID := t.ID
	entry, err := r.cron.AddFunc("@every 1s", func() { r.tick(taskID) })
	if err != nil {
		return nil, fmt.Errorf("schedule task %s: %w", t.ID, err)
	}
	w.entry = entry
	r.watches[t.ID] = w
	r.order = append(r.order, t.ID)

	r.log.Debug().Str("task", t.Name).Int("period", t.Period).Msg("watching task")
	return w.take(), nil
}

// Unwatch stops the task's timer. Unknown ids are ignored.
func (r *Runner) Unwatch(taskID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unwatch(taskID)
}

func (r *Runner) unwatch(taskID string) {
	w, ok := r.watches[taskID]
	if !ok {
		return
	}
	r.cron.Remove(w.entry)
	w.mu.Lock()
	w.engine.Stop()
	w.mu.Unlock()
	delete(r.watches, taskID)
	for i, id := range r.order {
		if id == taskID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Sync makes the watched set equal to list. It fits tasks.Service.OnChange.
func (r *Runner) Sync(list []tasks.Task) {
	keep := make(map[string]bool, len(list))
	for _, t := range list {
		keep[t.ID] = true
	}

	r.mu.Lock()
	for id := range r.watches {
		if !keep[id] {
			r.unwatch(id)
		}
	}
	r.mu.Unlock()

	for _, t := range list {
		if err := r.Watch(t); err != nil {
			r.log.Error().Err(err).Str("task", t.ID).Msg("watch failed")
		}
	}

	r.mu.Lock()
	r.order = r.order[:0]
	for _, t := range list {
		if _, ok := r.watches[t.ID]; ok {
			r.order = append(r.order, t.ID)
		}
	}
	r.mu.Unlock()
}

// Snapshots returns the last tick of every watched task in task list order.
func (r *Runner) Snapshots() []TaskSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]TaskSnapshot, 0, len(r.order))
	for _, id := range r.order {
		w := r.watches[id]
		w.mu.Lock()
		out = append(out, taskSnapshot(w.task, w.last))
		w.mu.Unlock()
	}
	return out
}

func (r *Runner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.watches)
}

func (r *Runner) tick(taskID string) {
	r.mu.Lock()
	w, ok := r.watches[taskID]
	hooks := r.hooks
	r.mu.Unlock()
	if !ok {
		return
	}

	w.mu.Lock()
	w.last = w.engine.Tick(r.now())
	snap := taskSnapshot(w.task, w.last)
	notices := w.take()
	w.mu.Unlock()

	r.send(notices)
	for _, fn := range hooks {
		fn(snap)
	}
}

// fire runs inside Engine.Tick with w.mu held, so it only queues the notice.
func (r *Runner) fire(w *watch, s Snapshot) {
	if !w.task.Enabled {
		return
	}
	title := fmt.Sprintf("%s (%s)", w.task.Name, market.PeriodLabel(w.task.Period))
	body := "Candle closed"
	if s.SecondsLeft > 0 {
		body = "Candle closes in " + s.Formatted
	}

	r.log.Info().
		Str("task", w.task.Name).
		Int("seconds_left", s.SecondsLeft).
		Time("target", s.Target).
		Msg("countdown notify")
	w.pending = append(w.pending, notice{title: title, body: body})
}

// send delivers notices on a separate goroutine with no runner lock held.
func (r *Runner) send(notices []notice) {
	if r.notifier == nil || len(notices) == 0 {
		return
	}
	r.sending.Add(1)
	go func() {
		defer r.sending.Done()
		for _, n := range notices {
			r.notifier.Notify(n.title, n.body)
		}
	}()
}

func taskSnapshot(t tasks.Task, s Snapshot) TaskSnapshot {
	return TaskSnapshot{
		TaskID:   t.ID,
		Name:     t.Name,
		Period:   t.Period,
		Enabled:  t.Enabled,
		Snapshot: s,
	}
}
