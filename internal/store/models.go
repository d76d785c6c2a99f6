package store

import "time"

// Priority levels map onto a 1..3 integer scale in the database.
type Priority int

const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	}
	return "unknown"
}

// Status values are stored as text. Transitions are free-form; the
// completed flag tracks status == done.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusCanceled   Status = "canceled"
)

// Recurrence controls regeneration of a task once it is completed.
type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

type Task struct {
	ID               int64
	Title            string
	Description      string
	CategoryID       *int64
	Category         string // joined category name, empty when uncategorized
	Priority         Priority
	EstimatedMinutes int
	DueAt            *time.Time
	Status           Status
	Recurrence       Recurrence
	RecurrenceUntil  *time.Time
	Completed        bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Reminder struct {
	ID        int64
	TaskID    int64
	TaskTitle string // joined task title for notification bodies
	RemindAt  time.Time
	Sent      bool
	CreatedAt time.Time
}

type FocusSession struct {
	ID              int64
	TaskID          *int64
	TaskTitle       string
	StartedAt       time.Time
	EndedAt         time.Time
	DurationMinutes int
	Note            string
	CreatedAt       time.Time
}

type Category struct {
	ID   int64
	Name string
}

type Setting struct {
	Key   string
	Value string
}

// TaskDraft carries the writable fields of a task for create/update calls.
type TaskDraft struct {
	Title            string
	Description      string
	Category         string // category name, created on demand; empty for none
	Priority         Priority
	EstimatedMinutes int
	DueAt            *time.Time
	Recurrence       Recurrence
	RecurrenceUntil  *time.Time
}
