package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const sqliteColumns = `id, title, description, is_completed, priority, due_date, parent_id, created_at, updated_at, sort_order`

// SQLiteStore is a SQLite-backed task store. It expects a *sql.DB opened
// with foreign keys enabled.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLiteStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// EnsureTable creates the tasks table if it doesn't exist.
func (s *SQLiteStore) EnsureTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS tasks (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			title        TEXT NOT NULL CHECK (length(title) <= 200),
			description  TEXT CHECK (description IS NULL OR length(description) <= 2000),
			is_completed INTEGER NOT NULL DEFAULT 0,
			priority     TEXT NOT NULL DEFAULT 'Medium' CHECK (priority IN ('Low', 'Medium', 'High')),
			due_date     TEXT,
			parent_id    INTEGER REFERENCES tasks(id) ON DELETE CASCADE,
			created_at   TEXT NOT NULL,
			updated_at   TEXT NOT NULL,
			sort_order   INTEGER NOT NULL DEFAULT 0
		)`)
	if err != nil {
		return fmt.Errorf("creating tasks table: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_id)`)
	if err != nil {
		return fmt.Errorf("creating parent index: %w", err)
	}
	return nil
}

// All returns every task in sibling order.
func (s *SQLiteStore) All(ctx context.Context) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sqliteColumns+` FROM tasks ORDER BY sort_order ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanSQLiteTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

// Get retrieves a single task row by ID, without children.
func (s *SQLiteStore) Get(ctx context.Context, id int64) (*Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanSQLiteTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting task %d: %w", id, err)
	}
	return t, nil
}

// Insert stores t and sets its ID. AUTOINCREMENT keeps deleted ids from
// being handed out again.
func (s *SQLiteStore) Insert(ctx context.Context, t *Task) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (title, description, is_completed, priority, due_date, parent_id, created_at, updated_at, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Title,
		nullableString(t.Description),
		boolToInt(t.IsCompleted),
		string(t.Priority),
		nullableTime(t.DueDate),
		nullableInt64(t.ParentID),
		t.CreatedAt.UTC().Format(time.RFC3339Nano),
		t.UpdatedAt.UTC().Format(time.RFC3339Nano),
		t.SortOrder,
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading task id: %w", err)
	}
	t.ID = id
	return nil
}

// Save writes every stored column of t except id, parent_id and created_at.
func (s *SQLiteStore) Save(ctx context.Context, t *Task) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET title = ?, description = ?, is_completed = ?, priority = ?,
			due_date = ?, updated_at = ?, sort_order = ?
		WHERE id = ?`,
		t.Title,
		nullableString(t.Description),
		boolToInt(t.IsCompleted),
		string(t.Priority),
		nullableTime(t.DueDate),
		t.UpdatedAt.UTC().Format(time.RFC3339Nano),
		t.SortOrder,
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("saving task %d: %w", t.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("saving task %d: %w", t.ID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes id and every descendant.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `
		WITH RECURSIVE subtree(id) AS (
			SELECT id FROM tasks WHERE id = ?
			UNION
			SELECT t.id FROM tasks t JOIN subtree s ON t.parent_id = s.id
		)
		DELETE FROM tasks WHERE id IN (SELECT id FROM subtree)`, id)
	if err != nil {
		return fmt.Errorf("deleting task %d: %w", id, err)
	}
	return nil
}

// Exists reports whether a row with id exists.
func (s *SQLiteStore) Exists(ctx context.Context, id int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM tasks WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking task %d: %w", id, err)
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTask(row scanner) (*Task, error) {
	var (
		t                    Task
		description, due     sql.NullString
		parent               sql.NullInt64
		completed            int
		priority             string
		createdAt, updatedAt string
	)
	err := row.Scan(&t.ID, &t.Title, &description, &completed, &priority, &due,
		&parent, &createdAt, &updatedAt, &t.SortOrder)
	if err != nil {
		return nil, err
	}
	t.IsCompleted = completed != 0
	t.Priority = Priority(priority)
	if description.Valid {
		d := description.String
		t.Description = &d
	}
	if parent.Valid {
		p := parent.Int64
		t.ParentID = &p
	}
	if due.Valid {
		if t.DueDate, err = parseDueDate(due.String); err != nil {
			return nil, fmt.Errorf("parsing due_date of task %d: %w", t.ID, err)
		}
	}
	if t.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at of task %d: %w", t.ID, err)
	}
	if t.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at of task %d: %w", t.ID, err)
	}
	return &t, nil
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

// nullableTime keeps the caller's offset; due dates are stored as given.
func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

func parseDueDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
