package aggregate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"emotionagg/internal/grid"
	"emotionagg/internal/store"
)

var (
	ErrInvalidDate    = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidSubject = errors.New("subject is required")
	ErrPersist        = errors.New("persisting day grid")
)

const (
	MessageSaved       = "saved"
	MessageNoDataSaved = "no data, but saved"
	MessagePersistFail = "grid built but not saved"
)

// Outcome describes one pipeline run. Grid is populated whenever
// aggregation succeeded, even if persisting it failed.
type Outcome struct {
	RunID              string
	Subject            string
	Date               string
	HasData            bool
	ProcessedSlots     int
	FailedSlots        int
	TotalEmotionPoints float64
	GridLength         int
	Message            string
	Grid               grid.DayGrid
}

type Pipeline struct {
	aggregator *Aggregator
	sink       store.SummarySink
	logger     *zap.Logger
}

func NewPipeline(aggregator *Aggregator, sink store.SummarySink, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{aggregator: aggregator, sink: sink, logger: logger}
}

// Run aggregates one subject-day and upserts the resulting grid. A day with
// no payloads still persists an all-zero grid.
func (p *Pipeline) Run(ctx context.Context, subject, date string) (*Outcome, error) {
	if err := ValidateDate(date); err != nil {
		return nil, err
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, ErrInvalidSubject
	}

	runID := uuid.NewString()
	logger := p.logger.With(zap.String("run_id", runID), zap.String("subject", subject), zap.String("date", date))
	logger.Info("starting aggregation run")

	result, err := p.aggregator.Aggregate(ctx, subject, date)
	if err != nil {
		return nil, err
	}

	g := grid.Build(result.Slots, p.aggregator.Vocabulary())
	outcome := &Outcome{
		RunID:              runID,
		Subject:            subject,
		Date:               date,
		HasData:            len(result.Slots) > 0,
		ProcessedSlots:     result.Processed,
		FailedSlots:        result.Failed,
		TotalEmotionPoints: result.TotalScore,
		GridLength:         g.Len(),
		Grid:               g,
	}

	if err := p.sink.UpsertSummary(ctx, subject, date, g); err != nil {
		outcome.Message = MessagePersistFail
		logger.Error("persisting day grid failed", zap.Error(err))
		return outcome, fmt.Errorf("%w for %s/%s: %w", ErrPersist, subject, date, err)
	}

	outcome.Message = MessageSaved
	if !outcome.HasData {
		outcome.Message = MessageNoDataSaved
	}
	logger.Info("aggregation run complete",
		zap.Bool("has_data", outcome.HasData),
		zap.Int("processed_slots", outcome.ProcessedSlots),
		zap.Int("failed_slots", outcome.FailedSlots),
		zap.Float64("total_emotion_points", outcome.TotalEmotionPoints))
	return outcome, nil
}

// ValidateDate accepts calendar dates in YYYY-MM-DD form.
func ValidateDate(date string) error {
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return nil
}
