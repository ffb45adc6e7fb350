package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gridcast-io/gridcast/internal/application"
	"github.com/gridcast-io/gridcast/internal/domain"
)

// ReportHandler handles reporting window and grid HTTP requests.
type ReportHandler struct {
	buildUseCase *application.BuildReportUseCase
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(buildUseCase *application.BuildReportUseCase) *ReportHandler {
	return &ReportHandler{
		buildUseCase: buildUseCase,
	}
}

// RegisterRoutes registers the report routes on the given group.
func (h *ReportHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/windows", h.ListWindows)
	g.GET("/report", h.GetReport)
}

// WindowResponse describes one selectable reporting window.
type WindowResponse struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Anchor  string    `json:"anchor"`
	Label   string    `json:"label"`
	Ongoing bool      `json:"ongoing"`
}

// WindowListResponse is the response for the window catalog.
type WindowListResponse struct {
	Windows  []WindowResponse `json:"windows"`
	Selected WindowResponse   `json:"selected"`
}

// GridResponse is the serialized hour-by-day grid.
type GridResponse struct {
	Cells         [][]int  `json:"cells"`
	Columns       []string `json:"columns"`
	Totals        []int    `json:"totals"`
	Total         int      `json:"total"`
	MaxValue      int      `json:"max_value"`
	PeakHour      string   `json:"peak_hour"`
	BusiestColumn string   `json:"busiest_column"`
}

// AverageResponse is the serialized historical average grid.
type AverageResponse struct {
	Cells         [][]float64 `json:"cells"`
	Columns       []string    `json:"columns"`
	Totals        []float64   `json:"totals"`
	Total         float64     `json:"total"`
	MaxValue      float64     `json:"max_value"`
	PeakHour      string      `json:"peak_hour"`
	BusiestColumn string      `json:"busiest_column"`
	WeeksAveraged int         `json:"weeks_averaged"`
}

// ForecastResponse is the serialized forecast bundle.
type ForecastResponse struct {
	Pace          string  `json:"pace"`
	Next24h       int     `json:"next_24h"`
	Next24hMin    int     `json:"next_24h_min"`
	Next24hMax    int     `json:"next_24h_max"`
	EndOfRange    int     `json:"end_of_range"`
	EndOfRangeMin int     `json:"end_of_range_min"`
	EndOfRangeMax int     `json:"end_of_range_max"`
	TrendFactor   float64 `json:"trend_factor"`
	TrendLabel    string  `json:"trend_label"`
	Momentum      float64 `json:"momentum"`
	MomentumLabel string  `json:"momentum_label"`
	DailyAvg      string  `json:"daily_avg"`
}

// ReportResponse is the full payload for one selected window.
type ReportResponse struct {
	Windows  []WindowResponse  `json:"windows"`
	Selected WindowResponse    `json:"selected"`
	Grid     *GridResponse     `json:"grid"`
	Average  *AverageResponse  `json:"average,omitempty"`
	Forecast *ForecastResponse `json:"forecast"`
	BuiltAt  time.Time         `json:"built_at"`
}

// ListWindows handles GET /api/v1/windows
// returns the selectable reporting windows for the current dataset.
func (h *ReportHandler) ListWindows(c echo.Context) error {
	at, err := parseTimeParam(c.QueryParam("at"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid at parameter, expected RFC3339")
	}

	now := referenceNow(at)
	windows, selected, err := h.buildUseCase.ListWindows(c.Request().Context(), at)
	if err != nil {
		return mapDomainError(err)
	}

	resp := WindowListResponse{
		Windows:  make([]WindowResponse, 0, len(windows)),
		Selected: toWindowResponse(selected, now),
	}
	for _, w := range windows {
		resp.Windows = append(resp.Windows, toWindowResponse(w, now))
	}

	return c.JSON(http.StatusOK, resp)
}

// GetReport handles GET /api/v1/report
// computes the grid, average, and forecast for the selected window.
// query params:
//   - window: RFC3339 start of a specific window (default: ongoing window)
//   - at: RFC3339 override for "now", mainly for reproducing past reports
func (h *ReportHandler) GetReport(c echo.Context) error {
	windowStart, err := parseTimeParam(c.QueryParam("window"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid window parameter, expected RFC3339")
	}

	at, err := parseTimeParam(c.QueryParam("at"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid at parameter, expected RFC3339")
	}

	report, err := h.buildUseCase.Execute(c.Request().Context(), application.BuildReportInput{
		WindowStart: windowStart,
		At:          at,
	})
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, toReportResponse(report))
}

// parseTimeParam parses an optional RFC3339 query parameter.
func parseTimeParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// referenceNow resolves the instant window states are judged against.
func referenceNow(at *time.Time) time.Time {
	if at != nil {
		return *at
	}
	return time.Now()
}

func toWindowResponse(w domain.Window, now time.Time) WindowResponse {
	return WindowResponse{
		Start:   w.Start,
		End:     w.End,
		Anchor:  w.Anchor.String(),
		Label:   w.Label,
		Ongoing: w.IsOngoing(now),
	}
}

func toGridResponse(g *domain.Grid) *GridResponse {
	if g == nil {
		return nil
	}
	cells := make([][]int, len(g.Cells))
	for h := range g.Cells {
		cells[h] = g.Cells[h]
	}
	return &GridResponse{
		Cells:         cells,
		Columns:       g.Columns,
		Totals:        g.Totals,
		Total:         g.Total,
		MaxValue:      g.MaxValue,
		PeakHour:      g.PeakHour,
		BusiestColumn: g.BusiestColumn,
	}
}

func toAverageResponse(a *domain.AverageGrid) *AverageResponse {
	if a == nil {
		return nil
	}
	cells := make([][]float64, len(a.Cells))
	for h := range a.Cells {
		cells[h] = a.Cells[h]
	}
	return &AverageResponse{
		Cells:         cells,
		Columns:       a.Columns,
		Totals:        a.Totals,
		Total:         a.Total,
		MaxValue:      a.MaxValue,
		PeakHour:      a.PeakHour,
		BusiestColumn: a.BusiestColumn,
		WeeksAveraged: a.WeeksAveraged,
	}
}

func toForecastResponse(f *domain.Forecast) *ForecastResponse {
	if f == nil {
		return nil
	}
	return &ForecastResponse{
		Pace:          f.Pace,
		Next24h:       f.Next24h,
		Next24hMin:    f.Next24hMin,
		Next24hMax:    f.Next24hMax,
		EndOfRange:    f.EndOfRange,
		EndOfRangeMin: f.EndOfRangeMin,
		EndOfRangeMax: f.EndOfRangeMax,
		TrendFactor:   f.TrendFactor,
		TrendLabel:    f.TrendLabel,
		Momentum:      f.Momentum,
		MomentumLabel: f.MomentumLabel,
		DailyAvg:      f.DailyAvg,
	}
}

func toReportResponse(r *application.Report) ReportResponse {
	resp := ReportResponse{
		Windows:  make([]WindowResponse, 0, len(r.Windows)),
		Selected: toWindowResponse(r.Selected, r.BuiltAt),
		Grid:     toGridResponse(r.Grid),
		Average:  toAverageResponse(r.Average),
		Forecast: toForecastResponse(r.Forecast),
		BuiltAt:  r.BuiltAt,
	}
	for _, w := range r.Windows {
		resp.Windows = append(resp.Windows, toWindowResponse(w, r.BuiltAt))
	}
	return resp
}
