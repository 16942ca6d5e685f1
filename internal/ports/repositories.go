package ports

import (
	"context"
	"time"

	"github.com/taskforge/api/internal/domain/entities"
	"github.com/taskforge/api/internal/pagination"
	"github.com/taskforge/api/internal/search"
)

// TaskListFilter holds the structured constraints for the task list scan.
// Nil fields add no constraint.
type TaskListFilter struct {
	Status    *entities.TaskStatus
	Category  *string
	DueBefore *time.Time
	Archived  *bool
}

// RankedTask is a search hit with its relevance score.
type RankedTask struct {
	Task entities.Task
	Rank float64
}

// TaskRepository defines the interface for task data operations
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) (*entities.Task, error)
	GetByID(ctx context.Context, id int64) (*entities.Task, error)
	Update(ctx context.Context, task *entities.Task) (*entities.Task, error)
	Delete(ctx context.Context, id int64) error
	SetArchived(ctx context.Context, id int64, archived bool) (*entities.Task, error)

	// ListPage returns up to limit+1 rows ordered by (created_at DESC,
	// id DESC), resuming after cursor when non-nil. The extra row lets the
	// caller detect a further page.
	ListPage(ctx context.Context, ownerID int64, filter TaskListFilter, cursor *pagination.Cursor, limit int) ([]entities.Task, error)
	Count(ctx context.Context, ownerID int64, filter TaskListFilter) (int, error)

	// Search executes a ranked full-text query, returning up to limit+1 rows.
	Search(ctx context.Context, query search.Query, limit int) ([]RankedTask, error)
	CountSearch(ctx context.Context, query search.Query) (int, error)
	Suggestions(ctx context.Context, ownerID int64, prefix string, limit int) ([]string, error)
}

// TimeEntryFilter holds the optional constraints for listing time entries.
type TimeEntryFilter struct {
	TaskID   *int64
	Category *string
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
}

// TimeSummary aggregates completed time entries over a period.
type TimeSummary struct {
	TotalTimeMinutes       int     `json:"total_time_minutes"`
	TotalEntries           int     `json:"total_entries"`
	AverageSessionMinutes  float64 `json:"average_session_minutes"`
	MostProductiveCategory *string `json:"most_productive_category"`
	TodayTimeMinutes       int     `json:"today_time_minutes"`
	ThisWeekTimeMinutes    int     `json:"this_week_time_minutes"`
}

// TimeEntryRepository defines the interface for time entry data operations
type TimeEntryRepository interface {
	// CreateActive inserts a new active entry for the owner, guarded so that
	// at most one active entry per owner can exist. When another active
	// entry is already present it returns entities.TimerConflictError naming
	// the task being timed, and inserts nothing.
	CreateActive(ctx context.Context, entry *entities.TimeEntry) (*entities.TimeEntry, error)

	GetByID(ctx context.Context, id int64) (*entities.TimeEntry, error)
	GetActiveEntry(ctx context.Context, ownerID int64) (*entities.TimeEntry, error)
	List(ctx context.Context, ownerID int64, filter TimeEntryFilter) ([]entities.TimeEntry, error)
	Update(ctx context.Context, entry *entities.TimeEntry) (*entities.TimeEntry, error)

	// Complete persists a stopped entry and folds its duration into the
	// owning task's actual_minutes in a single transaction.
	Complete(ctx context.Context, entry *entities.TimeEntry) (*entities.TimeEntry, error)

	// Remove deletes an entry; when it was completed with a recorded
	// duration, the owning task's actual_minutes is decremented (floored at
	// zero) in the same transaction.
	Remove(ctx context.Context, entry *entities.TimeEntry) error

	Summary(ctx context.Context, ownerID int64, from, to time.Time) (*TimeSummary, error)
}

// UserRepository defines the interface for user lookups. Account creation
// and credentials live outside this service.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*entities.User, error)
}
