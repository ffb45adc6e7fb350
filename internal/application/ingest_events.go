package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gridcast-io/gridcast/internal/domain"
	"github.com/gridcast-io/gridcast/internal/infrastructure/ingest"
	"github.com/gridcast-io/gridcast/internal/infrastructure/logging"
)

// PayloadFormat identifies the wire shape of an ingestion payload.
type PayloadFormat string

const (
	FormatJSON PayloadFormat = "json"
	FormatCSV  PayloadFormat = "csv"
)

var ErrUnknownFormat = errors.New("unknown payload format")

// IngestEventsInput contains one raw payload to ingest.
type IngestEventsInput struct {
	Payload io.Reader
	Format  PayloadFormat
}

// IngestEventsOutput contains the result of ingesting a payload.
type IngestEventsOutput struct {
	Accepted int
	Skipped  int
	Stored   int
}

// IngestMetrics abstracts prometheus metrics for ingestion.
type IngestMetrics interface {
	RecordIngestBatch(format string, accepted, skipped int)
}

// IngestEventsUseCase normalizes raw post payloads and persists them.
type IngestEventsUseCase struct {
	eventRepo    domain.EventRepository
	parser       *ingest.Parser
	metrics      IngestMetrics
	timeProvider TimeProvider
	logger       *logging.Logger
}

// NewIngestEventsUseCase creates a new IngestEventsUseCase.
func NewIngestEventsUseCase(
	eventRepo domain.EventRepository,
	parser *ingest.Parser,
	logger *logging.Logger,
) *IngestEventsUseCase {
	return &IngestEventsUseCase{
		eventRepo:    eventRepo,
		parser:       parser,
		timeProvider: RealTime,
		logger:       logger.WithComponent("ingest_events"),
	}
}

// WithMetrics sets the metrics recorder.
func (uc *IngestEventsUseCase) WithMetrics(m IngestMetrics) *IngestEventsUseCase {
	uc.metrics = m
	return uc
}

// WithTimeProvider sets a custom time provider for testing.
func (uc *IngestEventsUseCase) WithTimeProvider(tp TimeProvider) *IngestEventsUseCase {
	uc.timeProvider = tp
	return uc
}

// Execute parses and stores one payload. unparseable records are skipped
// and counted; a payload with no usable records at all is an error.
func (uc *IngestEventsUseCase) Execute(ctx context.Context, input IngestEventsInput) (*IngestEventsOutput, error) {
	now := uc.timeProvider()

	result, err := uc.parse(input, now)
	if err != nil {
		uc.logger.Warn("payload rejected",
			"format", string(input.Format),
			"reason", err.Error(),
		)
		return nil, err
	}

	stored, err := uc.eventRepo.SaveBatch(ctx, result.Events)
	if err != nil {
		uc.logger.Error("event batch save failed",
			"format", string(input.Format),
			"batch_size", len(result.Events),
			"error", err.Error(),
		)
		return nil, fmt.Errorf("saving events: %w", err)
	}

	if uc.metrics != nil {
		uc.metrics.RecordIngestBatch(string(input.Format), len(result.Events), result.Skipped)
	}
	uc.logger.BatchIngested(len(result.Events), result.Skipped, string(input.Format))

	return &IngestEventsOutput{
		Accepted: len(result.Events),
		Skipped:  result.Skipped,
		Stored:   stored,
	}, nil
}

func (uc *IngestEventsUseCase) parse(input IngestEventsInput, now time.Time) (*ingest.Result, error) {
	switch input.Format {
	case FormatJSON:
		return uc.parser.ParseJSON(input.Payload, now)
	case FormatCSV:
		return uc.parser.ParseCSV(input.Payload, now)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, input.Format)
	}
}
