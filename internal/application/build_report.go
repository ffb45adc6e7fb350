package application

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/gridcast-io/gridcast/internal/domain"
	"github.com/gridcast-io/gridcast/internal/infrastructure/logging"
)

// TimeProvider abstracts time acquisition for testability.
// inject a custom implementation to control time in tests.
type TimeProvider func() time.Time

// RealTime returns the current UTC time.
// use this in production.
func RealTime() time.Time {
	return time.Now().UTC()
}

// Report is the full render payload for one selected window: the window
// catalog, the bucketed grid, the historical average, and the forecast.
// Average is nil when no historical data exists.
type Report struct {
	Windows  []domain.Window     `json:"windows"`
	Selected domain.Window       `json:"selected"`
	Grid     *domain.Grid        `json:"grid"`
	Average  *domain.AverageGrid `json:"average,omitempty"`
	Forecast *domain.Forecast    `json:"forecast"`
	BuiltAt  time.Time           `json:"built_at"`
}

// ReportCache memoizes computed reports. purely a performance layer: a
// miss recomputes the identical result a hit would have returned, and the
// use case is fully correct with a nil cache.
type ReportCache interface {
	Get(ctx context.Context, key string) (*Report, bool)
	Set(ctx context.Context, key string, report *Report)
}

// ReportMetrics abstracts prometheus metrics for report builds.
// keeps the use case decoupled from the metrics package.
type ReportMetrics interface {
	RecordReportBuild(durationSeconds float64)
	RecordCacheHit()
	RecordCacheMiss()
}

// BuildReportInput selects what to compute.
type BuildReportInput struct {
	// WindowStart selects a specific window by its start instant.
	// nil picks the default (ongoing window closest to its end).
	WindowStart *time.Time

	// At overrides "now" for the computation. nil uses the time provider.
	At *time.Time
}

// BuildReportUseCase computes the grid, average, and forecast bundle for
// a selected reporting window.
type BuildReportUseCase struct {
	eventRepo    domain.EventRepository
	zone         *domain.Zone
	catalog      *domain.Catalog
	forecastCfg  domain.ForecastConfig
	weeksBack    int
	cache        ReportCache
	metrics      ReportMetrics
	timeProvider TimeProvider
	logger       *logging.Logger
}

// NewBuildReportUseCase creates a new BuildReportUseCase.
func NewBuildReportUseCase(
	eventRepo domain.EventRepository,
	zone *domain.Zone,
	catalog *domain.Catalog,
	forecastCfg domain.ForecastConfig,
	weeksBack int,
	logger *logging.Logger,
) *BuildReportUseCase {
	return &BuildReportUseCase{
		eventRepo:    eventRepo,
		zone:         zone,
		catalog:      catalog,
		forecastCfg:  forecastCfg,
		weeksBack:    weeksBack,
		timeProvider: RealTime,
		logger:       logger.WithComponent("build_report"),
	}
}

// WithCache sets the report cache.
func (uc *BuildReportUseCase) WithCache(c ReportCache) *BuildReportUseCase {
	uc.cache = c
	return uc
}

// WithMetrics sets the metrics recorder.
func (uc *BuildReportUseCase) WithMetrics(m ReportMetrics) *BuildReportUseCase {
	uc.metrics = m
	return uc
}

// WithTimeProvider sets a custom time provider for testing.
func (uc *BuildReportUseCase) WithTimeProvider(tp TimeProvider) *BuildReportUseCase {
	uc.timeProvider = tp
	return uc
}

// Execute loads the dataset and computes the report for the selected
// window. returns domain.ErrNoWindows for an empty dataset and
// domain.ErrNotFound for a selection that matches no enumerated window.
func (uc *BuildReportUseCase) Execute(ctx context.Context, input BuildReportInput) (*Report, error) {
	now := uc.timeProvider()
	if input.At != nil {
		now = *input.At
	}

	events, err := uc.eventRepo.ListAll(ctx)
	if err != nil {
		uc.logger.Error("report build failed: loading events",
			"error", err.Error(),
		)
		return nil, fmt.Errorf("loading events: %w", err)
	}

	return uc.BuildFromEvents(ctx, events, input.WindowStart, now)
}

// BuildFromEvents computes the report from an already-loaded dataset.
// pure apart from the optional cache; the worker and tests call this
// directly.
func (uc *BuildReportUseCase) BuildFromEvents(ctx context.Context, events []domain.Event, windowStart *time.Time, now time.Time) (*Report, error) {
	windows := uc.catalog.EnumerateWindows(events, now)
	if len(windows) == 0 {
		return nil, domain.ErrNoWindows
	}

	selected, err := resolveSelection(windows, windowStart, now)
	if err != nil {
		return nil, err
	}

	key := reportKey(selected, events, now)
	if uc.cache != nil {
		if cached, ok := uc.cache.Get(ctx, key); ok {
			if uc.metrics != nil {
				uc.metrics.RecordCacheHit()
			}
			uc.logger.ReportBuilt(selected.Label, cached.Grid.Total, true, 0)
			return cached, nil
		}
		if uc.metrics != nil {
			uc.metrics.RecordCacheMiss()
		}
	}

	started := time.Now()

	grid, err := domain.BuildGrid(events, selected, now, uc.zone)
	if err != nil {
		return nil, fmt.Errorf("building grid: %w", err)
	}

	avg, err := domain.BuildAverage(events, selected, uc.weeksBack, now, uc.zone)
	if err != nil {
		return nil, fmt.Errorf("building average: %w", err)
	}

	forecast := domain.CalculateForecast(grid, avg, now, uc.zone, uc.forecastCfg)

	report := &Report{
		Windows:  windows,
		Selected: selected,
		Grid:     grid,
		Average:  avg,
		Forecast: forecast,
		BuiltAt:  now,
	}

	elapsed := time.Since(started)
	if uc.metrics != nil {
		uc.metrics.RecordReportBuild(elapsed.Seconds())
	}
	if uc.cache != nil {
		uc.cache.Set(ctx, key, report)
	}

	uc.logger.ReportBuilt(selected.Label, grid.Total, false, elapsed.Milliseconds())
	return report, nil
}

// ListWindows enumerates the reporting windows for the current dataset
// and the window the UI should land on. at overrides "now" when non-nil.
func (uc *BuildReportUseCase) ListWindows(ctx context.Context, at *time.Time) ([]domain.Window, domain.Window, error) {
	now := uc.timeProvider()
	if at != nil {
		now = *at
	}

	events, err := uc.eventRepo.ListAll(ctx)
	if err != nil {
		return nil, domain.Window{}, fmt.Errorf("loading events: %w", err)
	}

	windows := uc.catalog.EnumerateWindows(events, now)
	if len(windows) == 0 {
		return nil, domain.Window{}, domain.ErrNoWindows
	}

	selected, ok := domain.PickDefault(windows, now)
	if !ok {
		return nil, domain.Window{}, domain.ErrNoWindows
	}

	return windows, selected, nil
}

// resolveSelection matches an explicit window start against the catalog,
// or falls back to the default pick.
func resolveSelection(windows []domain.Window, windowStart *time.Time, now time.Time) (domain.Window, error) {
	if windowStart == nil {
		selected, ok := domain.PickDefault(windows, now)
		if !ok {
			return domain.Window{}, domain.ErrNoWindows
		}
		return selected, nil
	}

	for _, w := range windows {
		if w.Start.Equal(*windowStart) {
			return w, nil
		}
	}
	return domain.Window{}, fmt.Errorf("window starting %s: %w", windowStart.Format(time.RFC3339), domain.ErrNotFound)
}

// reportKey fingerprints the determining inputs of a report: window
// bounds, dataset size, newest timestamp, and the minute-truncated
// current instant. a structural hash, not string concatenation of object
// fields, so distinct inputs cannot collide by formatting accident.
func reportKey(w domain.Window, events []domain.Event, now time.Time) string {
	_, newest, _ := domain.EventSpan(events)

	h := fnv.New64a()
	fmt.Fprintf(h, "%d|%d|%d|%d|%d",
		w.Start.UnixMilli(),
		w.End.UnixMilli(),
		len(events),
		newest.UnixMilli(),
		now.Truncate(time.Minute).UnixMilli(),
	)
	return "gridcast:report:" + strconv.FormatUint(h.Sum64(), 16)
}
