package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Service applies the tree, default-field and timestamp policy on top of a
// Store. It holds no state besides its collaborators.
type Service struct {
	store  Store
	bus    *Bus
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for createdAt/updatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithBus publishes a Change after every successful mutation.
func WithBus(b *Bus) Option {
	return func(s *Service) { s.bus = b }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a Service over store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// ListRoots returns the root tasks passing f, each with its full subtree,
// in sibling order.
func (s *Service) ListRoots(ctx context.Context, f Filter) ([]*Task, error) {
	rows, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return Roots(rows, f), nil
}

// Get returns the subtree rooted at id.
func (s *Service) Get(ctx context.Context, id int64) (*Task, error) {
	rows, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	t := Subtree(rows, id)
	if t == nil {
		return nil, ErrNotFound
	}
	return t, nil
}

// Exists reports whether a task with id exists.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	ok, err := s.store.Exists(ctx, id)
	if err != nil {
		return false, fmt.Errorf("check task %d: %w", id, err)
	}
	return ok, nil
}

// Create validates in, verifies the parent chain and persists a new task.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Task, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.ParentID != nil {
		if err := s.checkAncestry(ctx, *in.ParentID); err != nil {
			return nil, err
		}
	}

	now := s.timestamp()
	t := &Task{
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority.OrDefault(),
		DueDate:     in.DueDate,
		ParentID:    in.ParentID,
		SortOrder:   in.SortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
		Children:    []*Task{},
	}
	start := time.Now()
	if err := s.store.Insert(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.changed(ctx, Created, t, start)
	return t, nil
}

// checkAncestry walks up from parentID. The parent must exist and its chain
// must reach a root without revisiting a task.
func (s *Service) checkAncestry(ctx context.Context, parentID int64) error {
	seen := make(map[int64]bool)
	id := parentID
	for {
		if seen[id] {
			return ErrCycle
		}
		seen[id] = true
		p, err := s.store.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			if id == parentID {
				return ErrParentNotFound
			}
			// dangling link above the parent; nothing left to loop through
			return nil
		}
		if err != nil {
			return fmt.Errorf("load ancestor %d: %w", id, err)
		}
		if p.ParentID == nil {
			return nil
		}
		id = *p.ParentID
	}
}

// Update replaces title, description, priority, due date and sort order.
// Concurrent updates of one row are last-writer-wins.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*Task, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Title = in.Title
	t.Description = in.Description
	t.Priority = in.Priority.OrDefault()
	t.DueDate = in.DueDate
	t.SortOrder = in.SortOrder
	t.UpdatedAt = s.timestamp()

	start := time.Now()
	if err := s.store.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}
	s.changed(ctx, Updated, t, start)
	return s.Get(ctx, id)
}

// Toggle flips IsCompleted.
func (s *Service) Toggle(ctx context.Context, id int64) (*Task, error) {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	t.IsCompleted = !t.IsCompleted
	t.UpdatedAt = s.timestamp()

	start := time.Now()
	if err := s.store.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("toggle task %d: %w", id, err)
	}
	s.changed(ctx, Toggled, t, start)
	return s.Get(ctx, id)
}

// Delete removes id and its descendants. Deleting an absent id is a no-op.
func (s *Service) Delete(ctx context.Context, id int64) error {
	t, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	start := time.Now()
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	s.changed(ctx, Deleted, t, start)
	return nil
}

// Stats counts all, completed and root tasks.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.store.All(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("task stats: %w", err)
	}
	st := Stats{Total: len(rows)}
	for i := range rows {
		if rows[i].IsCompleted {
			st.Completed++
		}
		if rows[i].IsRoot() {
			st.Roots++
		}
	}
	return st, nil
}

func (s *Service) changed(ctx context.Context, kind ChangeKind, t *Task, start time.Time) {
	s.logger.InfoContext(ctx, "task_changed",
		"op", string(kind),
		"id", t.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if s.bus != nil {
		s.bus.Publish(Change{Kind: kind, TaskID: t.ID, ParentID: t.ParentID, At: s.timestamp()})
	}
}
