package event

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// LogPublisher writes events to the structured log. It stands in for the
// external notification pipeline in development and tests.
type LogPublisher struct {
	log *zap.Logger
}

// NewLogPublisher creates a Publisher backed by the given logger.
func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	p.log.Info("booking event",
		zap.String("type", string(e.Type)),
		zap.String("booking_id", e.BookingID),
		zap.String("structure_id", e.StructureID),
		zap.String("stay_id", e.StayID),
		zap.String("date", e.Date),
		zap.String("start_time", e.StartTime),
		zap.Time("occurred_at", e.OccurredAt),
	)
}
