package service

// EventPublisher publishes trigger events without tying services to a
// concrete bus.
type EventPublisher interface {
	Publish(eventType string, payload map[string]string)
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, map[string]string) {}
