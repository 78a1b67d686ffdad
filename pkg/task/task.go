package task

import (
	"context"
	"time"
)

// Task is a node in the task tree. Only ParentID is stored; Children is
// rebuilt by Materialize on every read.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	IsCompleted bool       `json:"isCompleted"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	ParentID    *int64     `json:"parentId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	SortOrder   int        `json:"sortOrder"`
	Children    []*Task    `json:"children"`
}

// IsRoot reports whether the task has no parent.
func (t *Task) IsRoot() bool {
	return t.ParentID == nil
}

// CreateInput carries the caller-supplied fields of a new task.
type CreateInput struct {
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	ParentID    *int64     `json:"parentId,omitempty"`
	SortOrder   int        `json:"sortOrder,omitempty"`
}

// UpdateInput replaces the mutable fields of a task. ParentID and
// IsCompleted are deliberately absent.
type UpdateInput struct {
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	SortOrder   int        `json:"sortOrder,omitempty"`
}

// Filter selects root tasks for ListRoots. Priority is parsed leniently:
// an unknown value disables the priority filter. The zero value hides
// completed roots; DefaultFilter is the unfiltered listing.
type Filter struct {
	IncludeCompleted bool
	Priority         string
}

// DefaultFilter returns the filter used when a caller sets nothing: every
// root, completed or not, of any priority.
func DefaultFilter() Filter {
	return Filter{IncludeCompleted: true}
}

// Match reports whether t passes the filter.
func (f Filter) Match(t *Task) bool {
	if !f.IncludeCompleted && t.IsCompleted {
		return false
	}
	if p, ok := ParsePriority(f.Priority); ok && t.Priority != p {
		return false
	}
	return true
}

// Stats summarizes the task table.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Roots     int `json:"roots"`
}

// Store is the contract for task persistence. All returns every row ordered
// by sort_order, then id. Delete removes the row and its whole subtree and
// is a no-op for an absent id.
type Store interface {
	All(ctx context.Context) ([]Task, error)
	Get(ctx context.Context, id int64) (*Task, error)
	Insert(ctx context.Context, t *Task) error
	Save(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
	EnsureTable(ctx context.Context) error
}
