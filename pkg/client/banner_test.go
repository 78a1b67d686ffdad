package client

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBanner_FetchErrorClearsOnRecovery(t *testing.T) {
	var b Banner
	b.Fetched(&NetworkError{Err: errors.New("connection refused")})
	assert.Equal(t, "Network error: failed to fetch tasks", b.Text())

	b.Fetched(nil)
	assert.Empty(t, b.Text())
}

func TestBanner_ActionErrorOutlivesRefresh(t *testing.T) {
	var b Banner
	b.Acted(&APIError{Status: 400, Errors: []string{"Parent task not found"}}, "create task")
	b.Fetched(nil)
	assert.Equal(t, "Parent task not found", b.Text())

	b.Acted(nil, "toggle task")
	assert.Empty(t, b.Text())
}

func TestBanner_RejectedShowsFormErrors(t *testing.T) {
	var b Banner
	b.Fetched(&NetworkError{Err: errors.New("down")})
	b.Rejected(FieldErrors{Title: "Title is required"})
	assert.Equal(t, "Title is required", b.Text())
}
