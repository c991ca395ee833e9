package tasks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/candlewaker/pkg/id"
)

// Service keeps an in-memory projection of the task list. Mutations are
// applied to the projection first and then written to the store; when the
// write fails the previous projection is restored.
type Service struct {
	store Store
	log   zerolog.Logger
	now   func() time.Time

	mu       sync.Mutex
	tasks    []Task
	watchers []func([]Task)
}

func NewService(store Store, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With().Str("component", "tasks").Logger(),
		now:   time.Now,
	}
}

// SetClock replaces time.Now for createdAt stamps.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// OnChange registers fn to receive the task list after every successful
// load or mutation.
func (s *Service) OnChange(fn func([]Task)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

// Load replaces the projection with the store's contents.
func (s *Service) Load(ctx context.Context) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	s.tasks = list
	s.notify()
	return clone(s.tasks), nil
}

// Tasks returns a copy of the projection.
func (s *Service) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.tasks)
}

func (s *Service) Get(taskID string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(taskID)
	if i < 0 {
		return Task{}, ErrNotFound
	}
	return s.tasks[i], nil
}

// Add creates an enabled task.
func (s *Service) Add(ctx context.Context, name string, period, notifyBefore int) (Task, error) {
	t := Task{
		ID:           id.New(),
		Name:         strings.TrimSpace(name),
		Period:       period,
		NotifyBefore: notifyBefore,
		Enabled:      true,
		CreatedAt:    s.now(),
	}
	if err := t.Validate(); err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := clone(s.tasks)
	s.tasks = append([]Task{t}, s.tasks...)

	created, err := s.store.InsertTask(ctx, t)
	if err != nil {
		s.tasks = prev
		s.log.Error().Err(err).Str("task", t.Name).Msg("add task failed, rolled back")
		return Task{}, fmt.Errorf("insert task: %w", err)
	}
	s.tasks[0] = created
	s.notify()
	return created, nil
}

// Remove deletes a task.
func (s *Service) Remove(ctx context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(taskID)
	if i < 0 {
		return ErrNotFound
	}
	prev := clone(s.tasks)
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)

	if _, err := s.store.RemoveTask(ctx, taskID); err != nil {
		s.tasks = prev
		s.log.Error().Err(err).Str("task", taskID).Msg("remove task failed, rolled back")
		return fmt.Errorf("remove task: %w", err)
	}
	s.notify()
	return nil
}

// Toggle flips Enabled.
func (s *Service) Toggle(ctx context.Context, taskID string) (Task, error) {
	s.mu.Lock()
	t, ok := s.find(taskID)
	s.mu.Unlock()
	if !ok {
		return Task{}, ErrNotFound
	}
	enabled := !t.Enabled
	return s.Update(ctx, taskID, Update{Enabled: &enabled})
}

// Update changes fields of a task.
func (s *Service) Update(ctx context.Context, taskID string, u Update) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(taskID)
	if i < 0 {
		return Task{}, ErrNotFound
	}
	next := u.Apply(s.tasks[i])
	if err := next.Validate(); err != nil {
		return Task{}, err
	}

	prev := clone(s.tasks)
	s.tasks[i] = next

	if _, err := s.store.UpdateTask(ctx, next); err != nil {
		s.tasks = prev
		s.log.Error().Err(err).Str("task", taskID).Msg("update task failed, rolled back")
		return Task{}, fmt.Errorf("update task: %w", err)
	}
	s.notify()
	return next, nil
}

// Import copies tasks from an older install into an empty store. It does
// nothing when the store already has tasks and returns the number imported.
func (s *Service) Import(ctx context.Context, legacy []Task) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.ListTasks(ctx)
	if err != nil {
		return 0, fmt.Errorf("list tasks: %w", err)
	}
	if len(current) > 0 || len(legacy) == 0 {
		return 0, nil
	}

	n := 0
	for _, t := range legacy {
		if t.CreatedAt.IsZero() {
			t.CreatedAt = s.now()
		}
		if t.ID == "" || !id.Valid(t.ID) {
			t.ID = id.At(t.CreatedAt)
		}
		if err := t.Validate(); err != nil {
			s.log.Warn().Err(err).Str("task", t.Name).Msg("skipping legacy task")
			continue
		}
		if _, err := s.store.InsertTask(ctx, t); err != nil {
			return n, fmt.Errorf("import task %q: %w", t.Name, err)
		}
		n++
	}

	list, err := s.store.ListTasks(ctx)
	if err != nil {
		return n, fmt.Errorf("list tasks: %w", err)
	}
	s.tasks = list
	s.notify()
	s.log.Info().Int("count", n).Msg("imported legacy tasks")
	return n, nil
}

func (s *Service) index(taskID string) int {
	for i, t := range s.tasks {
		if t.ID == taskID {
			return i
		}
	}
	return -1
}

func (s *Service) find(taskID string) (Task, bool) {
	i := s.index(taskID)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i], true
}

// notify runs with s.mu held.
func (s *Service) notify() {
	if len(s.watchers) == 0 {
		return
	}
	list := clone(s.tasks)
	for _, fn := range s.watchers {
		fn(list)
	}
}

func clone(in []Task) []Task {
	out := make([]Task, len(in))
	copy(out, in)
	return out
}
