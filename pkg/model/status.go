package model

import (
	"fmt"
	"strings"
)

// Status is the derived state of a task row.
type Status int

const (
	Completed Status = iota + 1
	NewTask
	Delay
	Working
)

// Statuses is the order grouped charts and summaries traverse.
var Statuses = []Status{Completed, Working, NewTask, Delay}

// Valid reports whether s is one of the four statuses.
func (s Status) Valid() bool {
	return s >= Completed && s <= Working
}

// Label is the display name of s.
func (s Status) Label() string {
	switch s {
	case Completed:
		return "Completed"
	case NewTask:
		return "New Task"
	case Delay:
		return "Delay"
	case Working:
		return "Working"
	}
	return ""
}

func (s Status) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return s.Label()
}

// CSSClass is the table cell class for s.
func (s Status) CSSClass() string {
	switch s {
	case Completed:
		return "status-completed"
	case NewTask:
		return "status-newtask"
	case Delay:
		return "status-delay"
	case Working:
		return "status-working"
	}
	return ""
}

// Color is the chart color for s.
func (s Status) Color() string {
	switch s {
	case Completed:
		return "green"
	case NewTask:
		return "blue"
	case Delay:
		return "red"
	case Working:
		return "orange"
	}
	return "gray"
}

// ParseStatus is the inverse of Label. "NewTask" is accepted as well.
func ParseStatus(label string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "completed":
		return Completed, nil
	case "new task", "newtask":
		return NewTask, nil
	case "delay":
		return Delay, nil
	case "working":
		return Working, nil
	}
	return 0, fmt.Errorf("unknown status %q", label)
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid status %d", int(s))
	}
	return []byte(s.Label()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
