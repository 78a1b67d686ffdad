package task

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Priority is the closed set of task priorities. It is persisted and
// transmitted as its name.
type Priority string

const (
	Low    Priority = "Low"
	Medium Priority = "Medium"
	High   Priority = "High"
)

// Priorities lists every valid priority, lowest first.
var Priorities = []Priority{Low, Medium, High}

// ParsePriority matches s case-insensitively against the known names.
func ParsePriority(s string) (Priority, bool) {
	s = strings.TrimSpace(s)
	for _, p := range Priorities {
		if strings.EqualFold(s, string(p)) {
			return p, true
		}
	}
	return "", false
}

// Valid reports whether p is exactly one of the known names.
func (p Priority) Valid() bool {
	for _, v := range Priorities {
		if p == v {
			return true
		}
	}
	return false
}

// OrDefault returns Medium for the zero value and p otherwise.
func (p Priority) OrDefault() Priority {
	if p == "" {
		return Medium
	}
	return p
}

// UnmarshalJSON normalizes the case of known names. Unknown names are kept
// as-is so validation can report them with the other field problems.
func (p *Priority) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("priority must be a string: %w", err)
	}
	if v, ok := ParsePriority(s); ok {
		*p = v
		return nil
	}
	*p = Priority(s)
	return nil
}
