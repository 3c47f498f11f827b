package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/phambaophuc/ecovision/internal/models"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Publisher records identification outcomes for operators.
type Publisher interface {
	Publish(ctx context.Context, event *models.IdentificationEvent) error
	HealthCheck() string
	Close() error
}

// QueuePublisher sends events to a durable RabbitMQ queue.
type QueuePublisher struct {
	mu        sync.Mutex
	conn      *amqp.Connection
	channel   *amqp.Channel
	logger    *zap.Logger
	queueName string
}

func NewQueuePublisher(rabbitmqURL, queueName string, logger *zap.Logger) (*QueuePublisher, error) {
	conn, err := amqp.Dial(rabbitmqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	// Declare queue
	_, err = channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &QueuePublisher{
		conn:      conn,
		channel:   channel,
		logger:    logger,
		queueName: queueName,
	}, nil
}

// Close closes the queue connection
func (q *QueuePublisher) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.channel != nil {
		q.channel.Close()
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}
