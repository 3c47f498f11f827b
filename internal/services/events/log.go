package events

import (
	"context"

	"github.com/phambaophuc/ecovision/internal/models"
	"go.uber.org/zap"
)

// LogPublisher writes events to the operator log when no broker is set up.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (l *LogPublisher) Publish(ctx context.Context, event *models.IdentificationEvent) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("source", event.Source),
		zap.String("status", event.Status),
		zap.Int64("duration_ms", event.DurationMS),
	}
	if event.Result != nil {
		fields = append(fields, zap.String("scientific_name", event.Result.ScientificName))
	}
	if event.Error != "" {
		fields = append(fields, zap.String("error", event.Error))
	}
	l.logger.Info("Identification event", fields...)
	return nil
}

func (l *LogPublisher) HealthCheck() string { return models.HealthNotConfigured }

func (l *LogPublisher) Close() error { return nil }
