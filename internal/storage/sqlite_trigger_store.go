package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shaharia-lab/notifier/internal/trigger"
)

// SQLiteTriggerStore keeps the snapshot document in a single
// trigger_snapshots row.
type SQLiteTriggerStore struct {
	db *sql.DB
}

// NewSQLiteTriggerStore returns a new SQLiteTriggerStore.
func NewSQLiteTriggerStore(db *sql.DB) *SQLiteTriggerStore {
	return &SQLiteTriggerStore{db: db}
}

// Load implements TriggerStore.
func (s *SQLiteTriggerStore) Load(ctx context.Context) ([]*trigger.Definition, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		"SELECT document FROM trigger_snapshots WHERE id = 1").Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return []*trigger.Definition{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying trigger snapshot: %w", err)
	}
	return DecodeSnapshot([]byte(doc))
}

// Save implements TriggerStore.
func (s *SQLiteTriggerStore) Save(ctx context.Context, defs []*trigger.Definition) error {
	doc, err := EncodeSnapshot(defs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO trigger_snapshots (id, version, document, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			version = excluded.version,
			document = excluded.document,
			updated_at = excluded.updated_at`,
		SnapshotVersion, string(doc), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving trigger snapshot: %w", err)
	}
	return nil
}
