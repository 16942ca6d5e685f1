package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskforge/api/internal/domain/entities"
)

// toHTTPError maps domain errors onto stable, distinguishable HTTP statuses.
// Internal causes are never forwarded to the caller.
func toHTTPError(err error) error {
	var conflict *entities.TimerConflictError
	if errors.As(err, &conflict) {
		return echo.NewHTTPError(http.StatusBadRequest, conflict.Error())
	}

	switch {
	case errors.Is(err, entities.ErrTaskNotFound),
		errors.Is(err, entities.ErrTimeEntryNotFound),
		errors.Is(err, entities.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())

	case errors.Is(err, entities.ErrNotOwner):
		return echo.NewHTTPError(http.StatusForbidden, "not authorized to access this resource")

	case errors.Is(err, entities.ErrEmptySearchQuery),
		errors.Is(err, entities.ErrTimerNotActive),
		errors.Is(err, entities.ErrInvalidStatus):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())

	case errors.Is(err, entities.ErrSearchFailed):
		return echo.NewHTTPError(http.StatusInternalServerError, entities.ErrSearchFailed.Error())

	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
