package task

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	// ErrNotFound is returned when the target task does not exist.
	ErrNotFound = errors.New("task not found")
	// ErrParentNotFound is returned when a new task names a missing parent.
	ErrParentNotFound = errors.New("parent task not found")
	// ErrCycle is returned when a parent chain loops back on itself.
	ErrCycle = errors.New("parent chain contains a cycle")
)

const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 2000
)

// ValidationError lists every problem found in a create or update payload.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid task: " + strings.Join(e.Problems, "; ")
}

func validateFields(title string, description *string, priority Priority) error {
	var problems []string
	switch {
	case strings.TrimSpace(title) == "":
		problems = append(problems, "Title is required")
	case utf8.RuneCountInString(title) > MaxTitleLen:
		problems = append(problems, "Title must be 200 characters or less")
	}
	if description != nil && utf8.RuneCountInString(*description) > MaxDescriptionLen {
		problems = append(problems, "Description must be 2000 characters or less")
	}
	if priority != "" && !priority.Valid() {
		problems = append(problems, "Priority must be one of Low, Medium, High")
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Validate checks a create payload without touching the store.
func (in CreateInput) Validate() error {
	return validateFields(in.Title, in.Description, in.Priority)
}

// Validate checks an update payload without touching the store.
func (in UpdateInput) Validate() error {
	return validateFields(in.Title, in.Description, in.Priority)
}
