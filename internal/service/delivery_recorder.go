package service

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/shaharia-lab/notifier/internal/eventbus"
	"github.com/shaharia-lab/notifier/internal/storage"
)

const recordTimeout = 5 * time.Second

// DeliveryRecorder returns an event listener that writes every
// trigger.notified event to store.
func DeliveryRecorder(store storage.DeliveryStore, logger *slog.Logger) eventbus.Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return func(e eventbus.Event) {
		if e.Type != eventbus.TypeTriggerNotified {
			return
		}
		status, _ := strconv.Atoi(e.Payload[eventbus.KeyStatus])
		duration, _ := strconv.ParseInt(e.Payload[eventbus.KeyDurationMS], 10, 64)
		entry := storage.DeliveryLogEntry{
			Trigger:    e.Payload[eventbus.KeyTrigger],
			Service:    e.Payload[eventbus.KeyService],
			Status:     status,
			Message:    e.Payload[eventbus.KeyMessage],
			DurationMS: duration,
			CreatedAt:  e.Timestamp,
		}

		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := store.LogDelivery(ctx, entry); err != nil {
			logger.Warn("recording delivery failed", "trigger", entry.Trigger, "error", err)
		}
	}
}
