package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/phambaophuc/ecovision/internal/models"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

func (q *QueuePublisher) Publish(ctx context.Context, event *models.IdentificationEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// amqp.Channel is not safe for concurrent publishing.
	q.mu.Lock()
	err = q.channel.Publish(
		"",          // exchange
		q.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         eventBytes,
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID,
			Timestamp:    time.Now(),
		},
	)
	q.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	q.logger.Debug("Event published to queue", zap.String("event_id", event.ID))
	return nil
}
