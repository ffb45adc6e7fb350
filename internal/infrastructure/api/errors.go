package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gridcast-io/gridcast/internal/application"
	"github.com/gridcast-io/gridcast/internal/domain"
	"github.com/gridcast-io/gridcast/internal/infrastructure/ingest"
)

// mapDomainError maps domain/application errors to HTTP errors.
func mapDomainError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNoWindows):
		// an empty dataset is a state, not a failure
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, ingest.ErrEmptyPayload),
		errors.Is(err, application.ErrUnknownFormat):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
