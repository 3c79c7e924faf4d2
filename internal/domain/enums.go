package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Priority is a ticket's urgency.
type Priority string

const (
	PriorityLow  Priority = "LOW"
	PriorityMed  Priority = "MED"
	PriorityHigh Priority = "HIGH"

	DefaultPriority = PriorityMed
)

// Priorities lists every valid priority, lowest first.
var Priorities = []Priority{PriorityLow, PriorityMed, PriorityHigh}

// ParsePriority accepts a priority name in any letter case.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", invalidPriority(s)
	}
	return p, nil
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMed, PriorityHigh:
		return true
	}
	return false
}

func (p Priority) String() string { return string(p) }

func (p Priority) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, invalidPriority(string(p))
	}
	return []byte(p), nil
}

func (p *Priority) UnmarshalText(text []byte) error {
	parsed, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Scan implements sql.Scanner so a stored value outside the enum is
// reported instead of silently loaded.
func (p *Priority) Scan(src any) error {
	s, err := scanString(src)
	if err != nil {
		return fmt.Errorf("scan priority: %w", err)
	}
	return p.UnmarshalText([]byte(s))
}

// Value implements driver.Valuer.
func (p Priority) Value() (driver.Value, error) {
	if !p.Valid() {
		return nil, invalidPriority(string(p))
	}
	return string(p), nil
}

// Status is a ticket's completion state.
type Status string

const (
	StatusBacklog Status = "BACKLOG"
	StatusDone    Status = "DONE"

	DefaultStatus = StatusBacklog
)

// Statuses lists every valid status.
var Statuses = []Status{StatusBacklog, StatusDone}

// ParseStatus accepts a status name in any letter case.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", invalidStatus(s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusBacklog, StatusDone:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, invalidStatus(string(s))
	}
	return []byte(s), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s *Status) Scan(src any) error {
	v, err := scanString(src)
	if err != nil {
		return fmt.Errorf("scan status: %w", err)
	}
	return s.UnmarshalText([]byte(v))
}

func (s Status) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, invalidStatus(string(s))
	}
	return string(s), nil
}

func scanString(src any) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case nil:
		return "", fmt.Errorf("unexpected NULL")
	default:
		return "", fmt.Errorf("unsupported type %T", src)
	}
}

func invalidPriority(v string) error {
	return &ValidationError{
		Field:   "priority",
		Message: fmt.Sprintf("invalid priority %q (expected one of %s)", v, joinValues(Priorities)),
	}
}

func invalidStatus(v string) error {
	return &ValidationError{
		Field:   "status",
		Message: fmt.Sprintf("invalid status %q (expected one of %s)", v, joinValues(Statuses)),
	}
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
