// Package storage persists the trigger registry snapshot and the delivery
// log.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shaharia-lab/notifier/internal/trigger"
)

// SnapshotVersion is the current snapshot document version.
const SnapshotVersion = 1

// TriggerStore loads and saves the full set of trigger definitions as one
// snapshot. There is no incremental format.
type TriggerStore interface {
	// Load returns the persisted definitions in registration order. A store
	// that has never been written returns an empty slice.
	Load(ctx context.Context) ([]*trigger.Definition, error)
	// Save replaces the persisted snapshot with defs.
	Save(ctx context.Context, defs []*trigger.Definition) error
}

// Snapshot is the versioned document written by every TriggerStore.
// Unknown fields are ignored on load.
type Snapshot struct {
	Version  int                   `json:"version"`
	Triggers []*trigger.Definition `json:"triggers"`
}

// EncodeSnapshot renders defs as a snapshot document.
func EncodeSnapshot(defs []*trigger.Definition) ([]byte, error) {
	if defs == nil {
		defs = []*trigger.Definition{}
	}
	data, err := json.MarshalIndent(Snapshot{Version: SnapshotVersion, Triggers: defs}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a snapshot document. Documents written by a newer
// version are rejected rather than partially read.
func DecodeSnapshot(data []byte) ([]*trigger.Definition, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	if snap.Version < 1 || snap.Version > SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	out := make([]*trigger.Definition, 0, len(snap.Triggers))
	for _, d := range snap.Triggers {
		if d == nil || d.Name == "" {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// Drivers accepted by OpenTriggerStore.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// OpenTriggerStore returns the TriggerStore for driver. The file driver
// writes to snapshotPath; the sqlite driver uses db.
func OpenTriggerStore(driver, snapshotPath string, db *sql.DB) (TriggerStore, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverFile:
		return NewFileTriggerStore(snapshotPath), nil
	case DriverSQLite, "sqlite3":
		if db == nil {
			return nil, fmt.Errorf("sqlite driver requires a database")
		}
		return NewSQLiteTriggerStore(db), nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", driver)
	}
}
