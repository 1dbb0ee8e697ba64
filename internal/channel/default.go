package channel

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shaharia-lab/notifier/internal/trigger"
)

// DefaultAdapter serves triggers whose service has no dedicated channel. It
// delivers nothing and echoes what it would have triggered.
type DefaultAdapter struct {
	def *trigger.Definition
}

// NewDefaultAdapter returns the no-op adapter for def.
func NewDefaultAdapter(def *trigger.Definition, _ Deps) Adapter {
	return &DefaultAdapter{def: def}
}

// Trigger implements Adapter.
func (a *DefaultAdapter) Trigger(_ context.Context, payload Payload) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		b = []byte(fmt.Sprint(map[string]any(payload)))
	}
	return fmt.Sprintf("DEFAULT:: Triggering %s with %s", a.def.Name, b), nil
}
