package channel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/shaharia-lab/notifier/internal/trigger"
)

// WebhookAdapter posts {"text": content} to the trigger URL. Content is the
// payload text, or, when the payload carries a "state" marker, the data of
// the next state in the trigger's sequence.
type WebhookAdapter struct {
	def       *trigger.Definition
	poster    Poster
	providers Providers
	logger    *slog.Logger

	mu      sync.Mutex
	machine *trigger.StateMachine
}

// NewWebhookAdapter returns a chat webhook adapter for def using providers
// for state content.
func NewWebhookAdapter(def *trigger.Definition, deps Deps, providers Providers) *WebhookAdapter {
	return &WebhookAdapter{
		def:       def,
		poster:    deps.Poster,
		providers: providers,
		logger:    deps.Logger,
	}
}

// stateMachine returns the trigger's state machine, creating it on first use.
func (a *WebhookAdapter) stateMachine() (*trigger.StateMachine, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.machine != nil {
		return a.machine, nil
	}
	m, err := trigger.NewStateMachine(a.def.State)
	if err != nil {
		// Not a client error: the definition should never have been accepted.
		return nil, fmt.Errorf("trigger %s has no usable state sequence: %v", a.def.Name, err)
	}
	a.machine = m
	return m, nil
}

// Content resolves the text to send for payload.
func (a *WebhookAdapter) Content(ctx context.Context, payload Payload) (string, error) {
	if !payload.Has("state") {
		text, _ := payload.String("text")
		return text, nil
	}

	m, err := a.stateMachine()
	if err != nil {
		return "", err
	}
	next, exhausted := m.Advance()
	if exhausted {
		return "", &trigger.TransitionExhaustedError{}
	}

	name := ProviderName(next.Name)
	if alias, ok := a.def.Providers[next.Name]; ok && alias != "" {
		name = alias
	}
	provider, ok := a.providers[name]
	if !ok {
		return fmt.Sprintf("Triggering %s", next.Name), nil
	}
	text, err := provider(ctx)
	if err != nil {
		return "", &trigger.ProviderError{State: next.Name, Err: err}
	}
	return text, nil
}

// Trigger implements Adapter.
func (a *WebhookAdapter) Trigger(ctx context.Context, payload Payload) (string, error) {
	text, err := a.Content(ctx, payload)
	if err != nil {
		return "", err
	}

	status, err := a.poster.PostJSON(ctx, a.def.URL, map[string]string{"text": text})
	if err != nil || status != http.StatusOK {
		a.logger.Warn("webhook delivery failed",
			"trigger", a.def.Name,
			"service", a.def.Service,
			"status", status,
			"error", err,
		)
		return "", &trigger.TransportError{
			Message: fmt.Sprintf("Error while triggering %s channel trigger", a.def.Service),
			Err:     err,
		}
	}
	return fmt.Sprintf("%s channel triggered successfully", a.def.Service), nil
}

// CurrentState reports the state the trigger is at, or "" before the first
// state-aware notification.
func (a *WebhookAdapter) CurrentState() string {
	a.mu.Lock()
	m := a.machine
	a.mu.Unlock()
	if m == nil {
		return ""
	}
	return m.CurrentStateName()
}
