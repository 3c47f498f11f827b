package events

import "github.com/phambaophuc/ecovision/internal/models"

// HealthCheck checks if RabbitMQ is available
func (q *QueuePublisher) HealthCheck() string {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.conn == nil || q.conn.IsClosed() {
		return models.HealthUnhealthy + ": connection closed"
	}

	if q.channel == nil {
		return models.HealthUnhealthy + ": channel not available"
	}

	if _, err := q.channel.QueueInspect(q.queueName); err != nil {
		return models.HealthUnhealthy + ": " + err.Error()
	}

	return models.HealthHealthy
}
