package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treetodo/internal/api"
	"treetodo/internal/testutil"
	"treetodo/pkg/task"
)

func newTestAPI(t *testing.T) (string, *task.Service) {
	t.Helper()
	svc := testutil.NewService(t)
	ts := httptest.NewServer(api.New(svc, nil, api.WithLogger(testutil.DiscardLogger())))
	t.Cleanup(ts.Close)
	return ts.URL, svc
}

func run(t *testing.T, base string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(&App{API: base})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCmd_AddListShow(t *testing.T) {
	base, svc := newTestAPI(t)

	out, err := run(t, base, "add", "--title", "Root", "--priority", "high", "--due", "2025-10-01")
	require.NoError(t, err)
	assert.Equal(t, "Created task #1 Root\n", out)

	out, err = run(t, base, "add", "--title", "Child", "--parent", "1")
	require.NoError(t, err)
	assert.Equal(t, "Created task #2 Child\n", out)

	out, err = run(t, base, "list")
	require.NoError(t, err)
	assert.Equal(t, "[ ] #1 Root [High] due 2025-10-01\n└─ [ ] #2 Child [Medium]\n", out)

	out, err = run(t, base, "list", "--format", "json")
	require.NoError(t, err)
	var roots []task.Task
	require.NoError(t, json.Unmarshal([]byte(out), &roots))
	require.Len(t, roots, 1)
	assert.Len(t, roots[0].Children, 1)

	out, err = run(t, base, "show", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Parent:      #1")

	got, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, task.High, got.Priority)
}

func TestCmd_EditToggleRemove(t *testing.T) {
	base, svc := newTestAPI(t)
	ctx := context.Background()
	desc := "keep me"
	created, err := svc.Create(ctx, task.CreateInput{Title: "Old", Description: &desc, Priority: task.Low, SortOrder: 3})
	require.NoError(t, err)

	_, err = run(t, base, "edit", "1", "--title", "New")
	require.NoError(t, err)
	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, "keep me", *got.Description, "unchanged flags keep their values")
	assert.Equal(t, task.Low, got.Priority)
	assert.Equal(t, 3, got.SortOrder)

	out, err := run(t, base, "toggle", "1")
	require.NoError(t, err)
	assert.Equal(t, "Task #1 is now done\n", out)

	out, err = run(t, base, "list", "--include-completed=false")
	require.NoError(t, err)
	assert.Equal(t, "No tasks found.\n", out)

	out, err = run(t, base, "rm", "1")
	require.NoError(t, err)
	assert.Equal(t, "Deleted task #1\n", out)

	_, err = run(t, base, "rm", "1")
	require.Error(t, err)
	assert.Equal(t, "Task not found", err.Error())
}

func TestCmd_Errors(t *testing.T) {
	base, _ := newTestAPI(t)

	_, err := run(t, base, "add", "--title", "   ")
	require.Error(t, err)
	assert.Equal(t, "Title is required", err.Error())

	_, err = run(t, base, "add", "--title", "Orphan", "--parent", "999")
	require.Error(t, err)
	assert.Equal(t, "Parent task not found", err.Error())

	_, err = run(t, base, "add", "--title", "x", "--priority", "urgent")
	assert.Error(t, err)

	_, err = run(t, base, "show", "abc")
	assert.Error(t, err)

	_, err = run(t, "http://127.0.0.1:1", "status")
	require.Error(t, err)
	assert.Equal(t, "Network error: failed to fetch status", err.Error())
}

func TestCmd_Status(t *testing.T) {
	base, svc := newTestAPI(t)
	testutil.Create(t, svc, "a", nil)

	out, err := run(t, base, "status")
	require.NoError(t, err)
	assert.Equal(t, "total 1  done 0  roots 1\n", out)
}
