package models

import "time"

// IdentificationEvent records the outcome of one POST /api/identify call.
type IdentificationEvent struct {
	ID         string                `json:"id"`
	Source     string                `json:"source"`
	Status     string                `json:"status"`
	CreatedAt  time.Time             `json:"created_at"`
	DurationMS int64                 `json:"duration_ms"`
	Result     *IdentificationResult `json:"result,omitempty"`
	Error      string                `json:"error,omitempty"`
}

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)
