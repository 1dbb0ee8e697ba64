package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/notifier/internal/storage"
)

func TestSQLiteDeliveryStore(t *testing.T) {
	db, _, err := storage.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	defer db.Close()

	store := storage.NewSQLiteDeliveryStore(db)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("log and list", func(t *testing.T) {
		entry := storage.DeliveryLogEntry{
			Trigger:    "ping",
			Service:    "slack",
			Status:     200,
			Message:    "slack channel triggered successfully",
			DurationMS: 12,
			CreatedAt:  base,
		}
		require.NoError(t, store.LogDelivery(ctx, entry))

		list, err := store.ListDeliveries(ctx, 10)
		require.NoError(t, err)
		require.Len(t, list, 1)

		got := list[0]
		assert.NotEmpty(t, got.ID)
		assert.Equal(t, entry.Trigger, got.Trigger)
		assert.Equal(t, entry.Service, got.Service)
		assert.Equal(t, entry.Status, got.Status)
		assert.Equal(t, entry.Message, got.Message)
		assert.Equal(t, entry.DurationMS, got.DurationMS)
		assert.True(t, entry.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("latest first", func(t *testing.T) {
		entry := storage.DeliveryLogEntry{
			Trigger:   "ops",
			Service:   "email",
			Status:    500,
			Message:   "Server error. Unable to connect to email server",
			CreatedAt: base.Add(time.Hour),
		}
		require.NoError(t, store.LogDelivery(ctx, entry))

		list, err := store.ListDeliveries(ctx, 10)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "ops", list[0].Trigger)
		assert.Equal(t, 500, list[0].Status)
	})

	t.Run("limit", func(t *testing.T) {
		list, err := store.ListDeliveries(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("default limit", func(t *testing.T) {
		list, err := store.ListDeliveries(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("prune", func(t *testing.T) {
		n, err := store.PruneDeliveries(ctx, base.Add(30*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		list, err := store.ListDeliveries(ctx, 10)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "ops", list[0].Trigger)
	})
}

func TestSQLiteDeliveryStore_EmptyList(t *testing.T) {
	db, _, err := storage.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	defer db.Close()

	list, err := storage.NewSQLiteDeliveryStore(db).ListDeliveries(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
