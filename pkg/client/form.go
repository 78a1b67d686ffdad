package client

import (
	"strings"
	"time"
	"unicode/utf8"

	"treetodo/pkg/task"
)

// DateLayout is the due-date format accepted by forms.
const DateLayout = "2006-01-02"

// Form holds the raw field values of the create/edit form.
type Form struct {
	Title       string
	Description string
	Priority    task.Priority
	DueDate     string
}

// FormFor pre-fills a form from an existing task.
func FormFor(t *task.Task) Form {
	f := Form{Title: t.Title, Priority: t.Priority}
	if t.Description != nil {
		f.Description = *t.Description
	}
	if t.DueDate != nil {
		f.DueDate = t.DueDate.Format(DateLayout)
	}
	return f
}

// FieldErrors holds one message per invalid field.
type FieldErrors struct {
	Title       string
	Description string
	DueDate     string
}

func (e FieldErrors) Empty() bool {
	return e.Title == "" && e.Description == "" && e.DueDate == ""
}

func (e FieldErrors) Error() string {
	var parts []string
	for _, m := range []string{e.Title, e.Description, e.DueDate} {
		if m != "" {
			parts = append(parts, m)
		}
	}
	return strings.Join(parts, "; ")
}

// Validate applies the same field rules as the server, plus due-date
// parsing.
func (f Form) Validate() FieldErrors {
	var errs FieldErrors
	title := strings.TrimSpace(f.Title)
	switch {
	case title == "":
		errs.Title = "Title is required"
	case utf8.RuneCountInString(title) > task.MaxTitleLen:
		errs.Title = "Title must be 200 characters or less"
	}
	if utf8.RuneCountInString(f.Description) > task.MaxDescriptionLen {
		errs.Description = "Description must be 2000 characters or less"
	}
	if _, err := f.due(); err != nil {
		errs.DueDate = "Invalid date"
	}
	return errs
}

func (f Form) due() (*time.Time, error) {
	s := strings.TrimSpace(f.DueDate)
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (f Form) fields() (title string, desc *string, prio task.Priority, due *time.Time) {
	title = strings.TrimSpace(f.Title)
	if d := strings.TrimSpace(f.Description); d != "" {
		desc = &d
	}
	prio = f.Priority.OrDefault()
	due, _ = f.due()
	return title, desc, prio, due
}

// CreateInput validates the form and builds a create payload under parent.
func (f Form) CreateInput(parent *int64) (task.CreateInput, error) {
	if errs := f.Validate(); !errs.Empty() {
		return task.CreateInput{}, errs
	}
	title, desc, prio, due := f.fields()
	return task.CreateInput{Title: title, Description: desc, Priority: prio, DueDate: due, ParentID: parent}, nil
}

// UpdateInput validates the form and builds an update payload. sortOrder is
// carried over from the task being edited.
func (f Form) UpdateInput(sortOrder int) (task.UpdateInput, error) {
	if errs := f.Validate(); !errs.Empty() {
		return task.UpdateInput{}, errs
	}
	title, desc, prio, due := f.fields()
	return task.UpdateInput{Title: title, Description: desc, Priority: prio, DueDate: due, SortOrder: sortOrder}, nil
}

// NextPriority cycles Low, Medium, High.
func NextPriority(p task.Priority) task.Priority {
	switch p.OrDefault() {
	case task.Low:
		return task.Medium
	case task.Medium:
		return task.High
	default:
		return task.Low
	}
}
