package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SQLiteDeliveryStore implements DeliveryStore backed by SQLite.
type SQLiteDeliveryStore struct {
	db *sql.DB
}

// NewSQLiteDeliveryStore returns a new SQLiteDeliveryStore.
func NewSQLiteDeliveryStore(db *sql.DB) *SQLiteDeliveryStore {
	return &SQLiteDeliveryStore{db: db}
}

// LogDelivery inserts a delivery record.
func (s *SQLiteDeliveryStore) LogDelivery(ctx context.Context, entry DeliveryLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO delivery_log (id, trigger_name, service, status, message, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Trigger, entry.Service, entry.Status,
		entry.Message, entry.DurationMS, entry.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting delivery log: %w", err)
	}
	return nil
}

// ListDeliveries returns the most recent entries ordered by created_at descending.
func (s *SQLiteDeliveryStore) ListDeliveries(ctx context.Context, limit int) (entries []DeliveryLogEntry, err error) {
	if limit <= 0 {
		limit = DefaultDeliveryLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, trigger_name, service, status, message, duration_ms, created_at
		FROM delivery_log
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying delivery log: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", cerr)
		}
	}()

	entries = []DeliveryLogEntry{}
	for rows.Next() {
		var e DeliveryLogEntry
		if err := rows.Scan(&e.ID, &e.Trigger, &e.Service, &e.Status,
			&e.Message, &e.DurationMS, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning delivery log row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating delivery log rows: %w", err)
	}
	return entries, nil
}

// PruneDeliveries deletes entries older than cutoff.
func (s *SQLiteDeliveryStore) PruneDeliveries(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM delivery_log WHERE created_at < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("pruning delivery log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned deliveries: %w", err)
	}
	return n, nil
}
