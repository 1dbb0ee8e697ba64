package eventbus

import "time"

// Event types published by the trigger service.
const (
	TypeTriggerRegistered = "trigger.registered"
	TypeTriggerNotified   = "trigger.notified"
)

// Payload keys carried by trigger events.
const (
	KeyTrigger    = "trigger"
	KeyService    = "service"
	KeyStatus     = "status"
	KeyMessage    = "message"
	KeyDurationMS = "duration_ms"
)

// Event is a fact published to the bus.
type Event struct {
	Type      string            `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Payload   map[string]string `json:"payload"`
}

// Listener handles an event.
type Listener func(Event)
