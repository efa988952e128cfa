package domain

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusTodo       Status = "Todo"
	StatusInProgress Status = "InProgress"
	StatusDone       Status = "Done"
	StatusExpired    Status = "Expired"
)

// Statuses lists the board columns in display order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone, StatusExpired}

// legacy labels written by older clients and data files
var statusAliases = map[string]Status{
	"todo":        StatusTodo,
	"to do":       StatusTodo,
	"inprogress":  StatusInProgress,
	"in progress": StatusInProgress,
	"in_progress": StatusInProgress,
	"done":        StatusDone,
	"expired":     StatusExpired,
	"timeout":     StatusExpired,
	"overdue":     StatusExpired,
}

func ParseStatus(s string) (Status, error) {
	st, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", s)}
	}
	return st, nil
}

func (s *Status) UnmarshalText(b []byte) error {
	st, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// Terminal reports whether the sweep leaves the status alone.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusExpired
}

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow, nil
	case "medium", "":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	}
	return "", &ValidationError{Field: "priority", Message: fmt.Sprintf("unknown priority %q", s)}
}

func (p *Priority) UnmarshalText(b []byte) error {
	pr, err := ParsePriority(string(b))
	if err != nil {
		return err
	}
	*p = pr
	return nil
}

// ExpiryReason records which rule moved a task into StatusExpired.
type ExpiryReason string

const (
	ReasonNone             ExpiryReason = ""
	ReasonPastDue          ExpiryReason = "past_due"
	ReasonDurationExceeded ExpiryReason = "duration_exceeded"
	ReasonAgeExceeded      ExpiryReason = "age_exceeded"
	ReasonManual           ExpiryReason = "manual"
)

type Task struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Status        Status       `json:"status"`
	Priority      Priority     `json:"priority"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
	DueDate       time.Time    `json:"dueDate"`
	Duration      *int         `json:"duration,omitempty"` // minutes
	ExpiredReason ExpiryReason `json:"expiredReason,omitempty"`
	StreamingData []StreamItem `json:"streamingData,omitempty"`
}

// Clone returns a copy that shares no pointers or slices with t.
func (t Task) Clone() Task {
	if t.Duration != nil {
		d := *t.Duration
		t.Duration = &d
	}
	if t.StreamingData != nil {
		items := make([]StreamItem, len(t.StreamingData))
		for i, it := range t.StreamingData {
			items[i] = it.Clone()
		}
		t.StreamingData = items
	}
	return t
}

// NewTask carries the caller-supplied fields of a create request.
type NewTask struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Duration    *int       `json:"duration,omitempty"`
}

// TaskPatch is a partial update; nil fields are left untouched.
type TaskPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Duration    *int       `json:"duration,omitempty"`
}

func IntPtr(v int) *int { return &v }
