package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskforge/api/internal/application/services"
	"github.com/taskforge/api/internal/infrastructure/logger"
	"github.com/taskforge/api/internal/ports"
)

// TimeHandler handles time tracking requests
type TimeHandler struct {
	timerService *services.TimerService
	logger       *logger.Logger
}

// NewTimeHandler creates a new time handler
func NewTimeHandler(timerService *services.TimerService, logger *logger.Logger) *TimeHandler {
	return &TimeHandler{
		timerService: timerService,
		logger:       logger,
	}
}

// StartTimer starts a timer for one of the caller's tasks
func (h *TimeHandler) StartTimer(c echo.Context) error {
	var req ports.StartTimerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	entry, err := h.timerService.StartTimer(c.Request().Context(), ownerIDFromContext(c), req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, entry)
}

// StopTimer stops an active timer. The body is optional and may override
// the entry's description and category.
func (h *TimeHandler) StopTimer(c echo.Context) error {
	entryID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req ports.StopTimerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	entry, err := h.timerService.StopTimer(c.Request().Context(), ownerIDFromContext(c), entryID, req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, entry)
}

// ActiveTimer returns the caller's running timer, or null when there is
// none. Having no timer is not an error.
func (h *TimeHandler) ActiveTimer(c echo.Context) error {
	timer, err := h.timerService.ActiveTimer(c.Request().Context(), ownerIDFromContext(c))
	if err != nil {
		return toHTTPError(err)
	}

	if timer == nil {
		return c.JSON(http.StatusOK, nil)
	}

	return c.JSON(http.StatusOK, timer)
}

// ListTimeEntries lists the caller's entries with optional filters
func (h *TimeHandler) ListTimeEntries(c echo.Context) error {
	filter := ports.TimeEntryFilter{
		Limit: queryInt(c, "limit", 0),
	}

	if v := c.QueryParam("task_id"); v != "" {
		taskID, err := pathIDValue(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid task_id")
		}
		filter.TaskID = &taskID
	}

	if v := c.QueryParam("category"); v != "" {
		filter.Category = &v
	}

	for param, dest := range map[string]**time.Time{
		"date_from": &filter.DateFrom,
		"date_to":   &filter.DateTo,
	} {
		if v := c.QueryParam(param); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid "+param+" timestamp")
			}
			*dest = &t
		}
	}

	entries, err := h.timerService.ListTimeEntries(c.Request().Context(), ownerIDFromContext(c), filter)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, entries)
}

// UpdateTimeEntry applies a partial update to an entry
func (h *TimeHandler) UpdateTimeEntry(c echo.Context) error {
	entryID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req ports.UpdateTimeEntryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	entry, err := h.timerService.UpdateTimeEntry(c.Request().Context(), ownerIDFromContext(c), entryID, req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, entry)
}

// DeleteTimeEntry removes an entry, rolling its duration out of the task
func (h *TimeHandler) DeleteTimeEntry(c echo.Context) error {
	entryID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.timerService.DeleteTimeEntry(c.Request().Context(), ownerIDFromContext(c), entryID); err != nil {
		return toHTTPError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// Summary aggregates the caller's completed entries over the past N days
func (h *TimeHandler) Summary(c echo.Context) error {
	days := queryInt(c, "days", 30)

	summary, err := h.timerService.Summary(c.Request().Context(), ownerIDFromContext(c), days)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, summary)
}
