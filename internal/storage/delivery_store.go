package storage

import (
	"context"
	"time"
)

// DefaultDeliveryLimit is used by ListDeliveries when limit is not positive.
const DefaultDeliveryLimit = 50

// DeliveryLogEntry records the outcome of one notify call.
type DeliveryLogEntry struct {
	ID         string    `json:"id"`
	Trigger    string    `json:"trigger"`
	Service    string    `json:"service"`
	Status     int       `json:"status"`
	Message    string    `json:"message"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// DeliveryStore persists the delivery log.
type DeliveryStore interface {
	// LogDelivery records a delivery. An empty ID is assigned by the store.
	LogDelivery(ctx context.Context, entry DeliveryLogEntry) error
	// ListDeliveries returns the most recent entries first, up to limit.
	ListDeliveries(ctx context.Context, limit int) ([]DeliveryLogEntry, error)
	// PruneDeliveries removes entries created before cutoff and reports how
	// many were removed.
	PruneDeliveries(ctx context.Context, cutoff time.Time) (int64, error)
}
