// Package channel implements per-channel delivery for registered triggers.
// Every channel kind provides an Adapter; the Catalog maps kind tags to the
// constructors that build them.
package channel

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaharia-lab/notifier/internal/notification"
	"github.com/shaharia-lab/notifier/internal/trigger"
)

// Payload is the notify-time data handed to an adapter.
type Payload map[string]any

// String returns the value under key rendered as text, and whether it is
// present and non-empty.
func (p Payload) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok || !truthy(v) {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}

// Has reports whether key is present with a non-empty value.
func (p Payload) Has(key string) bool {
	v, ok := p[key]
	return ok && truthy(v)
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	case float64:
		return t != 0
	case int:
		return t != 0
	case interface{ String() string }:
		s := t.String()
		return s != "" && s != "0"
	}
	return true
}

// Adapter delivers a notification for one registered trigger. On success it
// returns the caller-facing message; failures are reported with the error
// types of the trigger package.
type Adapter interface {
	Trigger(ctx context.Context, payload Payload) (string, error)
}

// Deps are the collaborators shared by every adapter the Catalog builds.
type Deps struct {
	Mailer notification.Provider
	Poster Poster
	Logger *slog.Logger
	Now    func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Poster == nil {
		d.Poster = NewHTTPPoster()
	}
	return d
}

// Constructor builds the adapter for a definition.
type Constructor func(def *trigger.Definition, deps Deps) Adapter
