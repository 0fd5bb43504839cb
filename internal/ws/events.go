package ws

import (
	"time"
)

type EventType string

const (
	EventDecision      EventType = "attendance.decision"
	EventFraudDetected EventType = "fraud.detected"
	EventActorBlocked  EventType = "actor.blocked"
	EventAlert         EventType = "alert.triggered"
)

type Event struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}
