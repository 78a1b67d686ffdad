package task_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treetodo/internal/db"
	"treetodo/internal/testutil"
	"treetodo/pkg/task"
)

// Runs against a disposable Postgres database named by
// TREETODO_TEST_DATABASE_URL. The tasks table is dropped first.
func TestPgStore(t *testing.T) {
	url := os.Getenv("TREETODO_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TREETODO_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := db.ConnectURL(ctx, url)
	require.NoError(t, err)
	defer pool.Close()

	_, err = pool.Exec(ctx, `DROP TABLE IF EXISTS tasks`)
	require.NoError(t, err)
	store := task.NewPgStore(pool)
	require.NoError(t, store.EnsureTable(ctx))
	require.NoError(t, store.EnsureTable(ctx))

	svc := task.NewService(store, task.WithLogger(testutil.DiscardLogger()))
	root := testutil.Create(t, svc, "Root", nil)
	kid := testutil.Create(t, svc, "Kid", &root.ID)
	testutil.Create(t, svc, "Grandkid", &kid.ID)

	got, err := svc.Get(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, root.CreatedAt, got.CreatedAt)
	require.Len(t, got.Children, 1)
	require.Len(t, got.Children[0].Children, 1)

	due := time.Date(2025, 4, 1, 23, 30, 0, 0, time.FixedZone("", 5*60*60))
	tz, err := svc.Create(ctx, task.CreateInput{Title: "Tz", DueDate: &due, SortOrder: 3000000000})
	require.NoError(t, err)
	tz, err = svc.Get(ctx, tz.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-04-01T23:30:00+05:00", tz.DueDate.Format(time.RFC3339Nano))
	assert.Equal(t, 3000000000, tz.SortOrder)
	require.NoError(t, svc.Delete(ctx, tz.ID))

	toggled, err := svc.Toggle(ctx, kid.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsCompleted)

	_, err = svc.Create(ctx, task.CreateInput{Title: "x", ParentID: testutil.Ptr(int64(1 << 40))})
	assert.ErrorIs(t, err, task.ErrParentNotFound)

	require.NoError(t, svc.Delete(ctx, root.ID))
	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, task.Stats{}, st)
}
