package client

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treetodo/pkg/task"
)

func TestForm_Validate(t *testing.T) {
	errs := Form{Title: "   ", Description: strings.Repeat("d", 2001), DueDate: "31/12/2025"}.Validate()
	assert.Equal(t, FieldErrors{
		Title:       "Title is required",
		Description: "Description must be 2000 characters or less",
		DueDate:     "Invalid date",
	}, errs)
	assert.False(t, errs.Empty())

	errs = Form{Title: " " + strings.Repeat("x", 200) + " "}.Validate()
	assert.True(t, errs.Empty(), "title is trimmed before counting")

	errs = Form{Title: strings.Repeat("x", 201)}.Validate()
	assert.Equal(t, "Title must be 200 characters or less", errs.Title)
}

func TestForm_CreateInput(t *testing.T) {
	parent := int64(3)
	in, err := Form{Title: "  Plan  ", Description: "  ", DueDate: "2025-12-31"}.CreateInput(&parent)
	require.NoError(t, err)
	assert.Equal(t, "Plan", in.Title)
	assert.Nil(t, in.Description)
	assert.Equal(t, task.Medium, in.Priority)
	require.NotNil(t, in.DueDate)
	assert.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), *in.DueDate)
	assert.Equal(t, &parent, in.ParentID)

	_, err = Form{}.CreateInput(nil)
	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "Title is required", fe.Title)
}

func TestForm_RoundTripFromTask(t *testing.T) {
	desc := "notes"
	due := time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)
	f := FormFor(&task.Task{Title: "Edit me", Description: &desc, Priority: task.High, DueDate: &due, SortOrder: 7})
	assert.Equal(t, Form{Title: "Edit me", Description: "notes", Priority: task.High, DueDate: "2025-02-14"}, f)

	in, err := f.UpdateInput(7)
	require.NoError(t, err)
	assert.Equal(t, task.UpdateInput{Title: "Edit me", Description: &desc, Priority: task.High, DueDate: &due, SortOrder: 7}, in)
}

func TestNextPriority(t *testing.T) {
	assert.Equal(t, task.Medium, NextPriority(task.Low))
	assert.Equal(t, task.High, NextPriority(task.Medium))
	assert.Equal(t, task.Low, NextPriority(task.High))
	assert.Equal(t, task.High, NextPriority(""))
}

func TestFormFor_DueDateInOwnOffset(t *testing.T) {
	due := time.Date(2025, 4, 2, 1, 0, 0, 0, time.FixedZone("", 5*60*60))
	f := FormFor(&task.Task{Title: "Tz", DueDate: &due})
	assert.Equal(t, "2025-04-02", f.DueDate)
}
