package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gridcast-io/gridcast/internal/application"
	"github.com/gridcast-io/gridcast/internal/domain"
	"github.com/gridcast-io/gridcast/internal/infrastructure/logging"
)

// RefreshWorkerConfig holds configuration for the report refresher.
type RefreshWorkerConfig struct {
	// Interval is how often the default report is recomputed.
	Interval time.Duration

	// BuildTimeout is the max time for a single refresh.
	BuildTimeout time.Duration
}

// DefaultRefreshWorkerConfig returns sensible defaults.
func DefaultRefreshWorkerConfig() RefreshWorkerConfig {
	return RefreshWorkerConfig{
		Interval:     5 * time.Minute,
		BuildTimeout: 30 * time.Second,
	}
}

// RefreshWorker periodically recomputes the default report so the cache
// is warm when a dashboard asks for it. the grid advances on its own as
// hours pass even when no new events arrive, so refreshing on a timer
// keeps the served report honest.
type RefreshWorker struct {
	buildUseCase *application.BuildReportUseCase
	config       RefreshWorkerConfig
	logger       *logging.Logger

	wg       sync.WaitGroup
	stopOnce sync.Once
	stop     chan struct{}
}

// NewRefreshWorker creates a new report refresher.
func NewRefreshWorker(
	buildUseCase *application.BuildReportUseCase,
	config RefreshWorkerConfig,
	logger *logging.Logger,
) *RefreshWorker {
	return &RefreshWorker{
		buildUseCase: buildUseCase,
		config:       config,
		logger:       logger.WithComponent("refresh_worker"),
		stop:         make(chan struct{}),
	}
}

// Start begins the refresh loop. returns immediately.
func (w *RefreshWorker) Start(ctx context.Context) {
	w.logger.Info("refresh worker starting",
		"interval", w.config.Interval.String(),
		"build_timeout", w.config.BuildTimeout.String(),
	)

	w.wg.Add(1)
	go w.run(ctx)
}

// Stop gracefully shuts down the worker.
func (w *RefreshWorker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
		w.wg.Wait()
		w.logger.Info("refresh worker stopped")
	})
}

// run is the main refresh loop.
func (w *RefreshWorker) run(ctx context.Context) {
	defer w.wg.Done()

	// warm the cache immediately on startup
	w.refresh(ctx)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.refresh(ctx)

		case <-w.stop:
			return

		case <-ctx.Done():
			return
		}
	}
}

// refresh recomputes the default report once.
func (w *RefreshWorker) refresh(ctx context.Context) {
	refreshCtx, cancel := context.WithTimeout(ctx, w.config.BuildTimeout)
	defer cancel()

	report, err := w.buildUseCase.Execute(refreshCtx, application.BuildReportInput{})
	if err != nil {
		// an empty dataset is normal before the first upload
		if errors.Is(err, domain.ErrNoWindows) {
			w.logger.Debug("refresh skipped, no events stored yet")
			return
		}
		w.logger.Error("report refresh failed",
			"error", err.Error(),
		)
		return
	}

	w.logger.Debug("report refreshed",
		"window", report.Selected.Label,
		"total", report.Grid.Total,
	)
}
