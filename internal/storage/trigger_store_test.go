package storage_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/notifier/internal/storage"
	"github.com/shaharia-lab/notifier/internal/trigger"
)

func sampleDefinitions(t *testing.T) []*trigger.Definition {
	t.Helper()
	var state trigger.StateSpec
	require.NoError(t, json.Unmarshal([]byte(`{"transitions":{"assign":{"to":"ops"},"close":""}}`), &state))
	return []*trigger.Definition{
		{
			Name:      "ping",
			Service:   "slack",
			URL:       "https://hooks.example.com/T1",
			Structure: trigger.Structure{"text": trigger.FieldString},
		},
		{
			Name:      "ticket",
			Service:   "webhook",
			URL:       "https://hooks.example.com/T2",
			Structure: trigger.Structure{"state": trigger.FieldString},
			State:     &state,
			Providers: map[string]string{"assign": "get_assign_data"},
		},
	}
}

func assertSameDefinitions(t *testing.T, want, got []*trigger.Definition) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Name, got[i].Name)
		assert.Equal(t, want[i].Service, got[i].Service)
		assert.Equal(t, want[i].URL, got[i].URL)
		assert.Equal(t, want[i].Structure, got[i].Structure)
		assert.Equal(t, want[i].Providers, got[i].Providers)
		if want[i].State == nil {
			assert.Nil(t, got[i].State)
			continue
		}
		require.NotNil(t, got[i].State)
		require.Len(t, got[i].State.Transitions, len(want[i].State.Transitions))
		for j, tr := range want[i].State.Transitions {
			assert.Equal(t, tr.Name, got[i].State.Transitions[j].Name)
			assert.JSONEq(t, string(tr.Data), string(got[i].State.Transitions[j].Data))
		}
	}
}

func TestFileTriggerStore_MissingFileIsEmpty(t *testing.T) {
	store := storage.NewFileTriggerStore(filepath.Join(t.TempDir(), "triggers.json"))

	defs, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, defs)
	assert.Empty(t, defs)
}

func TestFileTriggerStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "triggers.json")
	store := storage.NewFileTriggerStore(path)
	ctx := context.Background()
	want := sampleDefinitions(t)

	require.NoError(t, store.Save(ctx, want))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"version": 1`)

	got, err := storage.NewFileTriggerStore(path).Load(ctx)
	require.NoError(t, err)
	assertSameDefinitions(t, want, got)

	// A second save replaces the snapshot instead of appending to it.
	require.NoError(t, store.Save(ctx, want[:1]))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	assertSameDefinitions(t, want[:1], got)

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFileTriggerStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triggers.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := storage.NewFileTriggerStore(path).Load(context.Background())
	assert.Error(t, err)
}

func TestDecodeSnapshot_Version(t *testing.T) {
	_, err := storage.DecodeSnapshot([]byte(`{"version":2,"triggers":[]}`))
	assert.ErrorContains(t, err, "unsupported snapshot version 2")

	defs, err := storage.DecodeSnapshot([]byte(`{"version":1,"triggers":[{"name":"a","service":"slack","url":"u","structure":{}},{"name":""}],"extra":true}`))
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "a", defs[0].Name)
}

func TestSQLiteTriggerStore_SaveAndLoad(t *testing.T) {
	db, _, err := storage.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	defer db.Close()

	store := storage.NewSQLiteTriggerStore(db)
	ctx := context.Background()

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	want := sampleDefinitions(t)
	require.NoError(t, store.Save(ctx, want))
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assertSameDefinitions(t, want, got)
}

func TestOpenTriggerStore(t *testing.T) {
	db, _, err := storage.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	defer db.Close()

	path := filepath.Join(t.TempDir(), "triggers.json")

	s, err := storage.OpenTriggerStore("", path, nil)
	require.NoError(t, err)
	assert.IsType(t, &storage.FileTriggerStore{}, s)

	s, err = storage.OpenTriggerStore("SQLite", path, db)
	require.NoError(t, err)
	assert.IsType(t, &storage.SQLiteTriggerStore{}, s)

	_, err = storage.OpenTriggerStore("sqlite", path, nil)
	assert.Error(t, err)

	_, err = storage.OpenTriggerStore("redis", path, db)
	assert.ErrorContains(t, err, "unknown storage driver")
}
