package webhook

import (
	"time"

	"github.com/google/uuid"
)

// Event types posted to the configured endpoint.
const (
	EventFraudDetected = "fraud.detected"
	EventActorBlocked  = "actor.blocked"
)

// EventPayload is the body sent to the webhook endpoint.
type EventPayload struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// DeliveryJob is a queued delivery awaiting retry.
type DeliveryJob struct {
	ID          uuid.UUID  `json:"id"`
	EventType   string     `json:"event_type"`
	Payload     []byte     `json:"payload"`
	Attempts    int        `json:"attempts"`
	MaxAttempts int        `json:"max_attempts"`
	NextRetryAt *time.Time `json:"next_retry_at,omitempty"`
	Status      string     `json:"status"`
	LastError   string     `json:"last_error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
