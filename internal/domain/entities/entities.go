package entities

import (
	"errors"
	"fmt"
	"time"
)

// Common errors
var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrTimeEntryNotFound = errors.New("time entry not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrNotOwner          = errors.New("resource does not belong to the caller")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrTimerNotActive    = errors.New("timer is not active")
	ErrEmptySearchQuery  = errors.New("search query cannot be empty or contain only special characters")
	ErrSearchFailed      = errors.New("search failed, please try a different query")
)

// TimerConflictError is returned when a user attempts to start a second
// active timer. It carries the title of the task already being timed so the
// caller can report which timer is blocking.
type TimerConflictError struct {
	TaskTitle string
}

func (e *TimerConflictError) Error() string {
	return fmt.Sprintf("you already have an active timer for task '%s'", e.TaskTitle)
}

// Enums and types
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

type TimeEntryStatus string

const (
	TimeEntryStatusActive TimeEntryStatus = "active"
	// TimeEntryStatusPaused is reserved. No transition currently produces it,
	// but it remains part of the persisted enum.
	TimeEntryStatusPaused    TimeEntryStatus = "paused"
	TimeEntryStatusCompleted TimeEntryStatus = "completed"
)

// User represents an account that owns tasks and time entries
type User struct {
	ID        int64      `json:"id" db:"id"`
	Email     string     `json:"email" db:"email"`
	Username  string     `json:"username" db:"username"`
	IsActive  bool       `json:"is_active" db:"is_active"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" db:"deleted_at"`
}

// Task represents a task in the system
type Task struct {
	ID               int64        `json:"id" db:"id"`
	Title            string       `json:"title" db:"title"`
	Description      *string      `json:"description" db:"description"`
	Category         *string      `json:"category" db:"category"`
	Status           TaskStatus   `json:"status" db:"status"`
	Priority         TaskPriority `json:"priority" db:"priority"`
	DueDate          *time.Time   `json:"due_date" db:"due_date"`
	EstimatedMinutes *int         `json:"estimated_minutes" db:"estimated_minutes"`
	ActualMinutes    *int         `json:"actual_minutes" db:"actual_minutes"`
	IsArchived       bool         `json:"is_archived" db:"is_archived"`
	OwnerID          int64        `json:"owner_id" db:"owner_id"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at" db:"updated_at"`
}

// TimeEntry represents a time tracking entry
type TimeEntry struct {
	ID              int64           `json:"id" db:"id"`
	TaskID          int64           `json:"task_id" db:"task_id"`
	OwnerID         int64           `json:"owner_id" db:"owner_id"`
	StartTime       time.Time       `json:"start_time" db:"start_time"`
	EndTime         *time.Time      `json:"end_time" db:"end_time"`
	DurationMinutes *int            `json:"duration_minutes" db:"duration_minutes"`
	Status          TimeEntryStatus `json:"status" db:"status"`
	Description     *string         `json:"description" db:"description"`
	Category        *string         `json:"category" db:"category"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// ActiveTimer is the read model returned for the "current timer" query.
type ActiveTimer struct {
	TimeEntryID    int64     `json:"time_entry_id"`
	TaskID         int64     `json:"task_id"`
	TaskTitle      string    `json:"task_title"`
	StartTime      time.Time `json:"start_time"`
	ElapsedMinutes int       `json:"elapsed_minutes"`
	Description    *string   `json:"description"`
	Category       *string   `json:"category"`
}

// Business logic methods for Task

func (t *Task) IsOverdue() bool {
	if t.DueDate == nil {
		return false
	}
	return time.Now().After(*t.DueDate) && t.Status != TaskStatusDone
}

func (t *Task) BelongsTo(userID int64) bool {
	return t.OwnerID == userID
}

// AddActualMinutes folds a completed timer duration into the task's total.
// A nil prior total counts as zero.
func (t *Task) AddActualMinutes(minutes int) {
	if t.ActualMinutes == nil {
		t.ActualMinutes = &minutes
		return
	}
	total := *t.ActualMinutes + minutes
	t.ActualMinutes = &total
}

// SubtractActualMinutes removes a deleted timer's duration from the task's
// total, flooring at zero.
func (t *Task) SubtractActualMinutes(minutes int) {
	if t.ActualMinutes == nil {
		return
	}
	total := *t.ActualMinutes - minutes
	if total < 0 {
		total = 0
	}
	t.ActualMinutes = &total
}

// Business logic methods for TimeEntry

func (te *TimeEntry) IsActive() bool {
	return te.Status == TimeEntryStatusActive
}

func (te *TimeEntry) BelongsTo(userID int64) bool {
	return te.OwnerID == userID
}

// ElapsedMinutes computes whole minutes since the timer started. Persisted
// timestamps may have lost zone information, so both sides are normalized to
// UTC before subtracting.
func (te *TimeEntry) ElapsedMinutes(now time.Time) int {
	return int(now.UTC().Sub(te.StartTime.UTC()).Minutes())
}

// Stop transitions an active entry to completed, computing the duration the
// same way ElapsedMinutes does. Stopping a non-active entry is rejected.
func (te *TimeEntry) Stop(now time.Time) error {
	if te.Status != TimeEntryStatusActive {
		return ErrTimerNotActive
	}

	duration := te.ElapsedMinutes(now)
	te.EndTime = &now
	te.DurationMinutes = &duration
	te.Status = TimeEntryStatusCompleted
	te.UpdatedAt = now

	return nil
}

// Utility methods

func (ts TaskStatus) IsValid() bool {
	switch ts {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}

func (tp TaskPriority) IsValid() bool {
	switch tp {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	default:
		return false
	}
}

func (ts TimeEntryStatus) IsValid() bool {
	switch ts {
	case TimeEntryStatusActive, TimeEntryStatusPaused, TimeEntryStatusCompleted:
		return true
	default:
		return false
	}
}
