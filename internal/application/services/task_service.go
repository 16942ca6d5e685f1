package services

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/taskforge/api/internal/domain/entities"
	"github.com/taskforge/api/internal/infrastructure/logger"
	"github.com/taskforge/api/internal/pagination"
	"github.com/taskforge/api/internal/ports"
	"github.com/taskforge/api/internal/search"
)

// TaskService handles task CRUD, cursor-paginated listing, and full-text
// search.
type TaskService struct {
	taskRepo ports.TaskRepository
	logger   *logger.Logger
	now      func() time.Time
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo ports.TaskRepository, logger *logger.Logger) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateTask creates a new task owned by the caller
func (s *TaskService) CreateTask(ctx context.Context, ownerID int64, req ports.CreateTaskRequest) (*entities.Task, error) {
	task := &entities.Task{
		Title:            req.Title,
		Description:      req.Description,
		Category:         req.Category,
		Status:           entities.TaskStatusTodo,
		Priority:         entities.TaskPriorityMedium,
		DueDate:          req.DueDate,
		EstimatedMinutes: req.EstimatedMinutes,
		OwnerID:          ownerID,
	}

	if req.Status != nil {
		if !req.Status.IsValid() {
			return nil, entities.ErrInvalidStatus
		}
		task.Status = *req.Status
	}
	if req.Priority != nil {
		if !req.Priority.IsValid() {
			return nil, entities.ErrInvalidStatus
		}
		task.Priority = *req.Priority
	}

	created, err := s.taskRepo.Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Infow("Task created", "task_id", created.ID, "owner_id", ownerID)

	return created, nil
}

// GetTask retrieves a task, enforcing ownership
func (s *TaskService) GetTask(ctx context.Context, ownerID, taskID int64) (*entities.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !task.BelongsTo(ownerID) {
		return nil, entities.ErrNotOwner
	}

	return task, nil
}

// UpdateTask applies a partial update to a task
func (s *TaskService) UpdateTask(ctx context.Context, ownerID, taskID int64, req ports.UpdateTaskRequest) (*entities.Task, error) {
	task, err := s.GetTask(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = req.Description
	}
	if req.Category != nil {
		task.Category = req.Category
	}
	if req.Status != nil {
		if !req.Status.IsValid() {
			return nil, entities.ErrInvalidStatus
		}
		task.Status = *req.Status
	}
	if req.Priority != nil {
		if !req.Priority.IsValid() {
			return nil, entities.ErrInvalidStatus
		}
		task.Priority = *req.Priority
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.EstimatedMinutes != nil {
		task.EstimatedMinutes = req.EstimatedMinutes
	}
	if req.ActualMinutes != nil {
		task.ActualMinutes = req.ActualMinutes
	}
	if req.IsArchived != nil {
		task.IsArchived = *req.IsArchived
	}

	updated, err := s.taskRepo.Update(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.logger.Infow("Task updated", "task_id", updated.ID, "owner_id", ownerID)

	return updated, nil
}

// DeleteTask archives a task, or permanently deletes it when hard is set
func (s *TaskService) DeleteTask(ctx context.Context, ownerID, taskID int64, hard bool) error {
	task, err := s.GetTask(ctx, ownerID, taskID)
	if err != nil {
		return err
	}

	if hard {
		if err := s.taskRepo.Delete(ctx, task.ID); err != nil {
			return err
		}
		s.logger.Infow("Task deleted", "task_id", task.ID, "owner_id", ownerID)
		return nil
	}

	if _, err := s.taskRepo.SetArchived(ctx, task.ID, true); err != nil {
		return err
	}

	s.logger.Infow("Task archived", "task_id", task.ID, "owner_id", ownerID)

	return nil
}

// UnarchiveTask clears a task's archived flag
func (s *TaskService) UnarchiveTask(ctx context.Context, ownerID, taskID int64) (*entities.Task, error) {
	task, err := s.GetTask(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	return s.taskRepo.SetArchived(ctx, task.ID, false)
}

// ListTasks returns one page of the caller's tasks, ordered newest first.
// An unreadable cursor degrades to "start from the beginning" and an
// out-of-range limit is clamped; listing never fails on bad pagination
// input.
func (s *TaskService) ListTasks(ctx context.Context, ownerID int64, req ports.ListTasksRequest) (*ports.TaskListResponse, error) {
	limit := pagination.ClampLimit(req.Limit)
	cursor := pagination.DecodeCursor(req.Cursor)

	rows, err := s.taskRepo.ListPage(ctx, ownerID, req.Filter, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	page := pagination.BuildPage(rows, limit, func(t entities.Task) string {
		return pagination.EncodeCursor(t.ID, t.CreatedAt)
	})

	resp := &ports.TaskListResponse{
		Items:      page.Items,
		NextCursor: page.NextCursor,
		HasNext:    page.HasNext,
	}
	if resp.Items == nil {
		resp.Items = []entities.Task{}
	}

	if req.IncludeTotal {
		total, err := s.taskRepo.Count(ctx, ownerID, req.Filter)
		if err != nil {
			return nil, fmt.Errorf("failed to count tasks: %w", err)
		}
		resp.TotalCount = &total
	}

	return resp, nil
}

// SearchTasks runs the full-text pipeline: normalize, build, execute, rank,
// count, suggest. A query that normalizes to nothing is rejected; store
// failures are logged and replaced by a generic error so internals never
// reach the caller.
func (s *TaskService) SearchTasks(ctx context.Context, ownerID int64, req ports.SearchTasksRequest) (*ports.TaskSearchResponse, error) {
	start := s.now()

	normalized := search.NormalizeQuery(req.Query)
	if normalized == "" {
		return nil, entities.ErrEmptySearchQuery
	}

	limit := pagination.ClampLimit(req.Limit)
	query := search.BuildQuery(normalized, req.Filters, ownerID)

	ranked, err := s.taskRepo.Search(ctx, query, limit)
	if err != nil {
		s.logger.Errorw("Search execution failed", "error", err, "owner_id", ownerID, "query", normalized)
		return nil, entities.ErrSearchFailed
	}

	hasMore := len(ranked) > limit
	if hasMore {
		ranked = ranked[:limit]
	}

	items := make([]entities.Task, 0, len(ranked))
	for _, rt := range ranked {
		items = append(items, rt.Task)
	}

	totalMatches, err := s.taskRepo.CountSearch(ctx, query)
	if err != nil {
		s.logger.Errorw("Search count failed", "error", err, "owner_id", ownerID, "query", normalized)
		return nil, entities.ErrSearchFailed
	}

	// Suggestions stay null when disabled; when enabled they are at worst an
	// empty list. The prefix threshold counts characters, not bytes.
	var suggestions []string
	if req.IncludeSuggestions {
		suggestions = []string{}
		if utf8.RuneCountInString(normalized) >= search.MinSuggestionQueryLen {
			candidates, err := s.taskRepo.Suggestions(ctx, ownerID, normalized, search.MaxSuggestions)
			if err != nil {
				s.logger.Errorw("Search suggestions failed", "error", err, "owner_id", ownerID, "query", normalized)
				return nil, entities.ErrSearchFailed
			}
			suggestions = search.DedupeSuggestions(candidates)
		}
	}

	stats := search.CalculateStats(start, totalMatches, normalized)

	return &ports.TaskSearchResponse{
		Items:        items,
		Query:        normalized,
		TotalMatches: stats.TotalMatches,
		SearchTimeMs: stats.SearchTimeMs,
		HasMore:      hasMore,
		Suggestions:  suggestions,
	}, nil
}
