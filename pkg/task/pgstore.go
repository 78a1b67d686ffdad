package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgColumns = `id, title, description, is_completed, priority, due_date, parent_id, created_at, updated_at, sort_order`

// PgStore is a PostgreSQL-backed task store.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a PgStore.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// EnsureTable creates the tasks table if it doesn't exist.
func (s *PgStore) EnsureTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tasks (
			id           BIGSERIAL PRIMARY KEY,
			title        VARCHAR(200) NOT NULL,
			description  VARCHAR(2000),
			is_completed BOOLEAN NOT NULL DEFAULT FALSE,
			priority     TEXT NOT NULL DEFAULT 'Medium' CHECK (priority IN ('Low', 'Medium', 'High')),
			due_date     TEXT,
			parent_id    BIGINT REFERENCES tasks(id) ON DELETE CASCADE,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			sort_order   BIGINT NOT NULL DEFAULT 0
		)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_id)`)
	return err
}

// All returns every task in sibling order.
func (s *PgStore) All(ctx context.Context) ([]Task, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+pgColumns+` FROM tasks ORDER BY sort_order ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanPgTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}
	return tasks, nil
}

// Get retrieves a single task row by ID, without children.
func (s *PgStore) Get(ctx context.Context, id int64) (*Task, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+pgColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanPgTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

// Insert stores t and sets its ID.
func (s *PgStore) Insert(ctx context.Context, t *Task) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO tasks (title, description, is_completed, priority, due_date, parent_id, created_at, updated_at, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		t.Title, t.Description, t.IsCompleted, string(t.Priority), nullableTime(t.DueDate), t.ParentID, t.CreatedAt, t.UpdatedAt, t.SortOrder).
		Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// Save writes every stored column of t except id, parent_id and created_at.
func (s *PgStore) Save(ctx context.Context, t *Task) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE tasks SET title = $1, description = $2, is_completed = $3, priority = $4,
			due_date = $5, updated_at = $6, sort_order = $7
		WHERE id = $8`,
		t.Title, t.Description, t.IsCompleted, string(t.Priority), nullableTime(t.DueDate), t.UpdatedAt, t.SortOrder, t.ID)
	if err != nil {
		return fmt.Errorf("save task %d: %w", t.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes id and every descendant.
func (s *PgStore) Delete(ctx context.Context, id int64) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM tasks WHERE id IN (
			WITH RECURSIVE subtree(id) AS (
				SELECT id FROM tasks WHERE id = $1
				UNION
				SELECT t.id FROM tasks t JOIN subtree s ON t.parent_id = s.id
			)
			SELECT id FROM subtree
		)`, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return nil
}

// Exists reports whether a row with id exists.
func (s *PgStore) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, id).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("exists task %d: %w", id, err)
	}
	return ok, nil
}

// due_date is TEXT so the offset the caller sent survives; TIMESTAMPTZ
// would rewrite it into the session zone.
func scanPgTask(row pgx.Row) (*Task, error) {
	var t Task
	var priority string
	var due *string
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.IsCompleted, &priority, &due,
		&t.ParentID, &t.CreatedAt, &t.UpdatedAt, &t.SortOrder)
	if err != nil {
		return nil, err
	}
	if due != nil {
		if t.DueDate, err = parseDueDate(*due); err != nil {
			return nil, fmt.Errorf("parse due_date of task %d: %w", t.ID, err)
		}
	}
	t.Priority = Priority(priority)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}
