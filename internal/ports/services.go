package ports

import (
	"time"

	"github.com/taskforge/api/internal/domain/entities"
	"github.com/taskforge/api/internal/search"
)

// Request/response types exchanged between the HTTP layer and the services.

type CreateTaskRequest struct {
	Title            string                 `json:"title" validate:"required,max=200"`
	Description      *string                `json:"description"`
	Category         *string                `json:"category" validate:"omitempty,max=100"`
	Status           *entities.TaskStatus   `json:"status"`
	Priority         *entities.TaskPriority `json:"priority"`
	DueDate          *time.Time             `json:"due_date"`
	EstimatedMinutes *int                   `json:"estimated_minutes" validate:"omitempty,min=1"`
}

type UpdateTaskRequest struct {
	Title            *string                `json:"title" validate:"omitempty,max=200"`
	Description      *string                `json:"description"`
	Category         *string                `json:"category" validate:"omitempty,max=100"`
	Status           *entities.TaskStatus   `json:"status"`
	Priority         *entities.TaskPriority `json:"priority"`
	DueDate          *time.Time             `json:"due_date"`
	EstimatedMinutes *int                   `json:"estimated_minutes" validate:"omitempty,min=1"`
	ActualMinutes    *int                   `json:"actual_minutes" validate:"omitempty,min=0"`
	IsArchived       *bool                  `json:"is_archived"`
}

// ListTasksRequest carries the list-tasks query parameters. The limit is
// clamped, not validated, so an oversized request still succeeds.
type ListTasksRequest struct {
	Cursor       string
	Limit        int
	Filter       TaskListFilter
	IncludeTotal bool
}

type TaskListResponse struct {
	Items      []entities.Task `json:"items"`
	NextCursor *string         `json:"next_cursor"`
	HasNext    bool            `json:"has_next"`
	TotalCount *int            `json:"total_count"`
}

type SearchTasksRequest struct {
	Query              string
	Limit              int
	Filters            search.Filters
	IncludeSuggestions bool
}

type TaskSearchResponse struct {
	Items        []entities.Task `json:"items"`
	Query        string          `json:"query"`
	TotalMatches int             `json:"total_matches"`
	SearchTimeMs float64         `json:"search_time_ms"`
	HasMore      bool            `json:"has_more"`
	// Suggestions is null when the caller disabled them and an empty list
	// when they were requested but nothing matched.
	Suggestions []string `json:"suggestions"`
}

type StartTimerRequest struct {
	TaskID      int64   `json:"task_id" validate:"required"`
	Description *string `json:"description"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
}

type StopTimerRequest struct {
	Description *string `json:"description"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
}

type UpdateTimeEntryRequest struct {
	Description *string    `json:"description"`
	Category    *string    `json:"category" validate:"omitempty,max=100"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
}
