// Package eventbus fans trigger events out to listeners such as the
// delivery log. Events are queued on a buffered channel and handled by a
// small worker pool, so publishers never wait on listeners.
package eventbus

import (
	"log/slog"
	"sync"
	"time"
)

const (
	defaultWorkers    = 3
	defaultBufferSize = 100
)

// EventBus publishes events to subscribed listeners.
type EventBus interface {
	// Publish enqueues an event. It never blocks: with a full buffer, or
	// after Close, the event is dropped and a warning is logged.
	Publish(eventType string, payload map[string]string)

	// Subscribe registers a listener called for every event. Subscribe
	// before the first Publish.
	Subscribe(listener Listener)

	// Close stops accepting events and waits for queued ones to be handled.
	Close()
}

type inMemoryBus struct {
	ch        chan Event
	listeners []Listener
	logger    *slog.Logger
	now       func() time.Time

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// New returns an in-memory EventBus running workers goroutines. Non-positive
// workers selects the default of 3.
func New(workers int, logger *slog.Logger) EventBus {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	b := &inMemoryBus{
		ch:     make(chan Event, defaultBufferSize),
		logger: logger,
		now:    time.Now,
	}
	for i := 0; i < workers; i++ {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			for e := range b.ch {
				b.dispatch(e)
			}
		}()
	}
	return b
}

// dispatch calls every listener, isolating panics per listener.
func (b *inMemoryBus) dispatch(e Event) {
	b.mu.RLock()
	listeners := make([]Listener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.RUnlock()

	for _, l := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error("event listener panicked", "event", e.Type, "panic", r)
				}
			}()
			l(e)
		}()
	}
}

func (b *inMemoryBus) Publish(eventType string, payload map[string]string) {
	e := Event{
		Type:      eventType,
		Timestamp: b.now().UTC(),
		Payload:   payload,
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		b.logger.Warn("event bus closed, dropping event", "event", eventType)
		return
	}
	select {
	case b.ch <- e:
	default:
		b.logger.Warn("event bus buffer full, dropping event", "event", eventType)
	}
}

func (b *inMemoryBus) Subscribe(listener Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, listener)
}

func (b *inMemoryBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	close(b.ch)
	b.mu.Unlock()
	b.wg.Wait()
}
