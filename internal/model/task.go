package model

import "time"

// Status is the workflow state of a task.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusBlocked    Status = "blocked"
	StatusCompleted  Status = "completed"
)

// Statuses lists every known status, in workflow order.
func Statuses() []Status {
	return []Status{StatusNotStarted, StatusInProgress, StatusBlocked, StatusCompleted}
}

// Valid reports whether s is a member of the known status set.
func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusBlocked, StatusCompleted:
		return true
	}
	return false
}

// Label returns a human-readable form for display.
func (s Status) Label() string {
	switch s {
	case StatusNotStarted:
		return "Not started"
	case StatusInProgress:
		return "In progress"
	case StatusBlocked:
		return "Blocked"
	case StatusCompleted:
		return "Completed"
	}
	return string(s)
}

// Priority is how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every known priority.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// Valid reports whether p is a member of the known priority set.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Label returns a human-readable form for display.
func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	}
	return string(p)
}

// Task represents a single item on a user's board.
type Task struct {
	ID          uint `gorm:"primaryKey"`
	UserID      uint `gorm:"index"`
	Title       string
	Description string
	Status      Status   `gorm:"type:text;default:not_started"`
	Priority    Priority `gorm:"type:text;default:medium"`
	Progress    int      `gorm:"default:0"`
	DueDate     *time.Time
	IsPinned    bool `gorm:"default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Normalize reconciles the status/progress pair. It must run before every
// save, whatever the entry point. A completed task always reads 100%.
// Reaching 100% without an explicit completion promotes the task to
// in_progress only, never to completed.
func (t *Task) Normalize() {
	if t.Status == StatusCompleted {
		t.Progress = 100
	} else if t.Progress == 100 {
		t.Status = StatusInProgress
	}
	if t.Progress < 0 {
		t.Progress = 0
	}
	if t.Progress > 100 {
		t.Progress = 100
	}
}

// IsOverdue reports whether the task's due date has passed as of today and
// the task is not completed. Tasks without a due date are never overdue.
func (t *Task) IsOverdue(today time.Time) bool {
	if t.DueDate == nil || t.Status == StatusCompleted {
		return false
	}
	return DateOnly(*t.DueDate).Before(DateOnly(today))
}

// DateOnly strips the time-of-day component; due dates are calendar dates.
func DateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
