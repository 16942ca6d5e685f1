package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskforge/api/internal/application/services"
	"github.com/taskforge/api/internal/domain/entities"
	"github.com/taskforge/api/internal/infrastructure/logger"
	"github.com/taskforge/api/internal/ports"
	"github.com/taskforge/api/internal/search"
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskService *services.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *services.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// CreateTask handles task creation
func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req ports.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), ownerIDFromContext(c), req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, task)
}

// GetTask handles fetching a single task
func (h *TaskHandler) GetTask(c echo.Context) error {
	taskID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	task, err := h.taskService.GetTask(c.Request().Context(), ownerIDFromContext(c), taskID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, task)
}

// UpdateTask handles partial task updates
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	taskID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req ports.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), ownerIDFromContext(c), taskID, req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, task)
}

// DeleteTask archives a task; ?hard=true deletes it permanently
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	taskID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	hard := c.QueryParam("hard") == "true"

	if err := h.taskService.DeleteTask(c.Request().Context(), ownerIDFromContext(c), taskID, hard); err != nil {
		return toHTTPError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// UnarchiveTask restores an archived task
func (h *TaskHandler) UnarchiveTask(c echo.Context) error {
	taskID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	task, err := h.taskService.UnarchiveTask(c.Request().Context(), ownerIDFromContext(c), taskID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, task)
}

// ListTasks returns one cursor-paginated page of the caller's tasks
func (h *TaskHandler) ListTasks(c echo.Context) error {
	req := ports.ListTasksRequest{
		Cursor:       c.QueryParam("cursor"),
		Limit:        queryInt(c, "limit", 0),
		IncludeTotal: c.QueryParam("include_total") == "true",
	}

	filter, err := parseListFilter(c)
	if err != nil {
		return err
	}
	req.Filter = filter

	resp, err := h.taskService.ListTasks(c.Request().Context(), ownerIDFromContext(c), req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, resp)
}

// SearchTasks runs a full-text search over the caller's tasks
func (h *TaskHandler) SearchTasks(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" || len(q) > 200 {
		return echo.NewHTTPError(http.StatusBadRequest, "query must be between 1 and 200 characters")
	}

	filters, err := parseSearchFilters(c)
	if err != nil {
		return err
	}

	includeSuggestions := true
	if v := c.QueryParam("include_suggestions"); v != "" {
		includeSuggestions = v == "true"
	}

	req := ports.SearchTasksRequest{
		Query:              q,
		Limit:              queryInt(c, "limit", 0),
		Filters:            filters,
		IncludeSuggestions: includeSuggestions,
	}

	resp, err := h.taskService.SearchTasks(c.Request().Context(), ownerIDFromContext(c), req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, resp)
}

func parseListFilter(c echo.Context) (ports.TaskListFilter, error) {
	var filter ports.TaskListFilter

	if v := c.QueryParam("status"); v != "" {
		status := entities.TaskStatus(v)
		if !status.IsValid() {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "invalid status")
		}
		filter.Status = &status
	}

	if v := c.QueryParam("category"); v != "" {
		filter.Category = &v
	}

	if v := c.QueryParam("due_before"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "invalid due_before timestamp")
		}
		filter.DueBefore = &t
	}

	if v := c.QueryParam("archived"); v != "" {
		archived := v == "true"
		filter.Archived = &archived
	}

	return filter, nil
}

func parseSearchFilters(c echo.Context) (search.Filters, error) {
	var filters search.Filters

	if v := c.QueryParam("status"); v != "" {
		status := entities.TaskStatus(v)
		if !status.IsValid() {
			return filters, echo.NewHTTPError(http.StatusBadRequest, "invalid status")
		}
		filters.Status = &status
	}

	if v := c.QueryParam("category"); v != "" {
		filters.Category = &v
	}

	if v := c.QueryParam("priority"); v != "" {
		priority := entities.TaskPriority(v)
		if !priority.IsValid() {
			return filters, echo.NewHTTPError(http.StatusBadRequest, "invalid priority")
		}
		filters.Priority = &priority
	}

	for param, dest := range map[string]**time.Time{
		"created_after":  &filters.CreatedAfter,
		"created_before": &filters.CreatedBefore,
		"due_after":      &filters.DueAfter,
		"due_before":     &filters.DueBefore,
	} {
		if v := c.QueryParam(param); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return filters, echo.NewHTTPError(http.StatusBadRequest, "invalid "+param+" timestamp")
			}
			*dest = &t
		}
	}

	if v := c.QueryParam("archived"); v != "" {
		archived := v == "true"
		filters.Archived = &archived
	}

	return filters, nil
}

// Shared parameter helpers

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func pathIDValue(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func queryInt(c echo.Context, name string, fallback int) int {
	v := c.QueryParam(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// ownerIDFromContext extracts the authenticated owner id set by the auth
// middleware.
func ownerIDFromContext(c echo.Context) int64 {
	if id, ok := c.Get("owner_id").(int64); ok {
		return id
	}
	return 0
}
