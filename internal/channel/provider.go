package channel

import (
	"context"
	"fmt"
	"time"
)

// ProviderFunc produces the notification text for a state.
type ProviderFunc func(ctx context.Context) (string, error)

// Providers maps provider names to their functions.
type Providers map[string]ProviderFunc

// ProviderName is the conventional provider name for a state.
func ProviderName(state string) string {
	return fmt.Sprintf("get_%s_data", state)
}

// SlackProviders returns the state data providers of the slack channel.
func SlackProviders(now func() time.Time) Providers {
	return Providers{
		ProviderName("assign"): func(_ context.Context) (string, error) {
			return fmt.Sprintf("Triggering assign at %s", now().UTC().Format(time.RFC3339)), nil
		},
	}
}
