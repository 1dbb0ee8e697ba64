package registry_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/notifier/internal/channel"
	"github.com/shaharia-lab/notifier/internal/registry"
	"github.com/shaharia-lab/notifier/internal/storage"
	"github.com/shaharia-lab/notifier/internal/storage/mocks"
	"github.com/shaharia-lab/notifier/internal/trigger"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCatalog() *channel.Catalog {
	return channel.NewCatalog(channel.Deps{Logger: discardLogger()})
}

func definition(name, service string) *trigger.Definition {
	return &trigger.Definition{
		Name:      name,
		Service:   service,
		URL:       "https://hooks.example.com/" + name,
		Structure: trigger.Structure{"text": trigger.FieldString},
	}
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	store := &mocks.MockTriggerStore{}
	store.On("Save", mock.Anything, mock.Anything).Return(nil)

	reg := registry.New(store, newCatalog(), discardLogger())
	ctx := context.Background()

	require.NoError(t, reg.Register(ctx, definition("ping", "slack")))
	require.NoError(t, reg.Register(ctx, definition("mail", "EMAIL")))
	require.NoError(t, reg.Register(ctx, definition("misc", "pager")))

	def, adapter, ok := reg.Lookup("ping")
	require.True(t, ok)
	assert.Equal(t, "slack", def.Service)
	assert.IsType(t, &channel.WebhookAdapter{}, adapter)

	_, adapter, ok = reg.Lookup("mail")
	require.True(t, ok)
	assert.IsType(t, &channel.EmailAdapter{}, adapter)

	_, adapter, ok = reg.Lookup("misc")
	require.True(t, ok)
	assert.IsType(t, &channel.DefaultAdapter{}, adapter)

	_, _, ok = reg.Lookup("missing")
	assert.False(t, ok)

	names := []string{}
	for _, d := range reg.List() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"ping", "mail", "misc"}, names)
	assert.Equal(t, 3, reg.Len())
}

func TestRegistry_DuplicateNameDoesNotPersist(t *testing.T) {
	store := &mocks.MockTriggerStore{}
	store.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

	reg := registry.New(store, newCatalog(), discardLogger())
	ctx := context.Background()

	require.NoError(t, reg.Register(ctx, definition("ping", "slack")))

	err := reg.Register(ctx, definition("ping", "email"))
	var conflict *trigger.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "Trigger ping already registered. Please try another name", err.Error())

	def, _, _ := reg.Lookup("ping")
	assert.Equal(t, "slack", def.Service)
	store.AssertNumberOfCalls(t, "Save", 1)
}

func TestRegistry_PersistFailureLeavesRegistryUnchanged(t *testing.T) {
	store := &mocks.MockTriggerStore{}
	store.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	reg := registry.New(store, newCatalog(), discardLogger())

	err := reg.Register(context.Background(), definition("ping", "slack"))
	var perr *trigger.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 500, trigger.StatusCode(err))

	_, _, ok := reg.Lookup("ping")
	assert.False(t, ok)
	assert.Zero(t, reg.Len())
}

func TestRegistry_SavesFullSnapshot(t *testing.T) {
	store := &mocks.MockTriggerStore{}
	store.On("Save", mock.Anything, mock.MatchedBy(func(defs []*trigger.Definition) bool {
		return len(defs) == 1 && defs[0].Name == "a"
	})).Return(nil).Once()
	store.On("Save", mock.Anything, mock.MatchedBy(func(defs []*trigger.Definition) bool {
		return len(defs) == 2 && defs[0].Name == "a" && defs[1].Name == "b"
	})).Return(nil).Once()

	reg := registry.New(store, newCatalog(), discardLogger())
	require.NoError(t, reg.Register(context.Background(), definition("a", "slack")))
	require.NoError(t, reg.Register(context.Background(), definition("b", "slack")))
	store.AssertExpectations(t)
}

func TestRegistry_LoadFailureStartsEmpty(t *testing.T) {
	store := &mocks.MockTriggerStore{}
	store.On("Save", mock.Anything, mock.Anything).Return(nil)
	store.On("Load", mock.Anything).Return(nil, errors.New("corrupt snapshot"))

	reg := registry.New(store, newCatalog(), discardLogger())
	require.NoError(t, reg.Register(context.Background(), definition("ping", "slack")))

	err := reg.Load(context.Background())
	assert.Error(t, err)
	assert.Zero(t, reg.Len())
}

func TestRegistry_ReloadFromFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triggers.json")
	ctx := context.Background()

	var state trigger.StateSpec
	require.NoError(t, json.Unmarshal([]byte(`{"transitions":{"assign":{},"close":{}}}`), &state))
	ticket := definition("ticket", "slack")
	ticket.State = &state

	first := registry.New(storage.NewFileTriggerStore(path), newCatalog(), discardLogger())
	require.NoError(t, first.Load(ctx))
	require.NoError(t, first.Register(ctx, ticket))
	require.NoError(t, first.Register(ctx, definition("mail", "email")))

	second := registry.New(storage.NewFileTriggerStore(path), newCatalog(), discardLogger())
	require.NoError(t, second.Load(ctx))
	require.Equal(t, 2, second.Len())

	def, adapter, ok := second.Lookup("ticket")
	require.True(t, ok)
	assert.Equal(t, ticket.Service, def.Service)
	assert.Equal(t, ticket.URL, def.URL)
	assert.Equal(t, ticket.Structure, def.Structure)
	require.NotNil(t, def.State)
	assert.Equal(t, "assign", def.State.Transitions[0].Name)
	assert.Equal(t, "close", def.State.Transitions[1].Name)
	assert.IsType(t, &channel.WebhookAdapter{}, adapter)

	_, adapter, ok = second.Lookup("mail")
	require.True(t, ok)
	assert.IsType(t, &channel.EmailAdapter{}, adapter)
}

func TestRegistry_RegisterRestartsStateSequences(t *testing.T) {
	store := &mocks.MockTriggerStore{}
	store.On("Save", mock.Anything, mock.Anything).Return(nil)

	var state trigger.StateSpec
	require.NoError(t, json.Unmarshal([]byte(`{"transitions":{"assign":{},"close":{}}}`), &state))
	ticket := definition("ticket", "webhook")
	ticket.State = &state

	reg := registry.New(store, newCatalog(), discardLogger())
	ctx := context.Background()
	require.NoError(t, reg.Register(ctx, ticket))

	_, adapter, _ := reg.Lookup("ticket")
	hook := adapter.(*channel.WebhookAdapter)
	_, err := hook.Content(ctx, channel.Payload{"state": "next"})
	require.NoError(t, err)
	assert.Equal(t, "close", hook.CurrentState())

	require.NoError(t, reg.Register(ctx, definition("other", "slack")))

	_, adapter, _ = reg.Lookup("ticket")
	assert.Equal(t, "", adapter.(*channel.WebhookAdapter).CurrentState())
}

func TestRegistry_LookupReturnsCopy(t *testing.T) {
	store := &mocks.MockTriggerStore{}
	store.On("Save", mock.Anything, mock.Anything).Return(nil)

	reg := registry.New(store, newCatalog(), discardLogger())
	require.NoError(t, reg.Register(context.Background(), definition("ping", "slack")))

	def, _, _ := reg.Lookup("ping")
	def.Structure["extra"] = trigger.FieldInteger

	again, _, _ := reg.Lookup("ping")
	_, ok := again.Structure["extra"]
	assert.False(t, ok)
}
