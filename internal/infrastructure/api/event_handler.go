package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gridcast-io/gridcast/internal/application"
)

// EventHandler handles post event ingestion HTTP requests.
type EventHandler struct {
	ingestUseCase *application.IngestEventsUseCase
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(ingestUseCase *application.IngestEventsUseCase) *EventHandler {
	return &EventHandler{
		ingestUseCase: ingestUseCase,
	}
}

// RegisterRoutes registers the event routes on the given group.
// auth guards uploads only; reads stay public.
func (h *EventHandler) RegisterRoutes(g *echo.Group, authConfig AuthConfig) {
	g.POST("/events", h.IngestJSON, RequireAuthMiddleware(authConfig))
	g.POST("/events/csv", h.IngestCSV, RequireAuthMiddleware(authConfig))
}

// IngestResponse is the response for a successfully ingested payload.
type IngestResponse struct {
	Accepted int `json:"accepted"`
	Skipped  int `json:"skipped"`
	Stored   int `json:"stored"`
}

// IngestJSON handles POST /api/v1/events
// accepts a JSON array of post records and stores the normalized events.
func (h *EventHandler) IngestJSON(c echo.Context) error {
	return h.ingest(c, application.FormatJSON)
}

// IngestCSV handles POST /api/v1/events/csv
// accepts a CSV export with a header row and stores the normalized events.
func (h *EventHandler) IngestCSV(c echo.Context) error {
	return h.ingest(c, application.FormatCSV)
}

func (h *EventHandler) ingest(c echo.Context, format application.PayloadFormat) error {
	body := c.Request().Body
	if body == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "empty request body")
	}

	output, err := h.ingestUseCase.Execute(c.Request().Context(), application.IngestEventsInput{
		Payload: body,
		Format:  format,
	})
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusCreated, IngestResponse{
		Accepted: output.Accepted,
		Skipped:  output.Skipped,
		Stored:   output.Stored,
	})
}
