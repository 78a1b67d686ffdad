// Package testutil provides SQLite-backed fixtures for service, API and
// client tests.
package testutil

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"treetodo/internal/db"
	"treetodo/pkg/task"
)

// NewDB opens a private in-memory SQLite database closed at test cleanup.
func NewDB(t testing.TB) *sql.DB {
	t.Helper()
	conn, err := db.OpenSQLite(db.Memory)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// NewStore returns an empty SQLite task store with its table in place.
func NewStore(t testing.TB) *task.SQLiteStore {
	t.Helper()
	store := task.NewSQLiteStore(NewDB(t))
	require.NoError(t, store.EnsureTable(context.Background()))
	return store
}

// NewService returns a service over a fresh store that logs nowhere.
func NewService(t testing.TB, opts ...task.Option) *task.Service {
	t.Helper()
	opts = append([]task.Option{task.WithLogger(DiscardLogger())}, opts...)
	return task.NewService(NewStore(t), opts...)
}

// DiscardLogger drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Clock returns a time source that starts at start and advances by step on
// every call.
func Clock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(step)
		return now
	}
}

// Create persists a task with the given title and optional parent, failing
// the test on error.
func Create(t testing.TB, svc *task.Service, title string, parent *int64) *task.Task {
	t.Helper()
	created, err := svc.Create(context.Background(), task.CreateInput{Title: title, ParentID: parent})
	require.NoError(t, err)
	return created
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
