package trigger_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/notifier/internal/trigger"
)

func mustParse(t *testing.T, body string) *trigger.Registration {
	t.Helper()
	reg, err := trigger.ParseRegistration([]byte(body))
	require.NoError(t, err)
	return reg
}

func TestParseRegistration_RejectsNonObject(t *testing.T) {
	for _, body := range []string{`[]`, `"ping"`, `42`, ``} {
		_, err := trigger.ParseRegistration([]byte(body))
		require.Error(t, err, body)
		assert.Equal(t, "Invalid trigger data. dict data expected", err.Error())
	}
}

func TestValidateRegistration_FieldOrder(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "url checked first",
			body:    `{"name":"x","service":1,"url":2,"structure":[]}`,
			wantErr: "Invalid type for url. Expected string, got number",
		},
		{
			name:    "missing url",
			body:    `{"name":"x","service":"slack","structure":{}}`,
			wantErr: "Invalid type for url. Expected string, got null",
		},
		{
			name:    "service after url",
			body:    `{"name":"x","service":true,"url":"http://h","structure":[]}`,
			wantErr: "Invalid type for service. Expected string, got boolean",
		},
		{
			name:    "structure last",
			body:    `{"name":"x","service":"slack","url":"http://h","structure":["msg"]}`,
			wantErr: "Invalid type for structure. Expected object, got array",
		},
		{
			name: "valid",
			body: `{"name":"x","service":"slack","url":"http://h","structure":{}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := trigger.ValidateRegistration(mustParse(t, tt.body))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
			assert.Equal(t, http.StatusBadRequest, trigger.StatusCode(err))
		})
	}
}

func TestValidateStructure(t *testing.T) {
	got, err := trigger.ValidateStructure(json.RawMessage(`{"a":"str","b":"int","c":"float","d":"function"}`))
	require.NoError(t, err)
	assert.Equal(t, trigger.Structure{
		"a": trigger.FieldString,
		"b": trigger.FieldInteger,
		"c": trigger.FieldFloat,
		"d": trigger.FieldCallable,
	}, got)

	_, err = trigger.ValidateStructure(json.RawMessage(`{"a":"str","b":"list"}`))
	require.Error(t, err)
	assert.Equal(t, "Type list not allowed in payload", err.Error())

	_, err = trigger.ValidateStructure(json.RawMessage(`{"a":5}`))
	require.Error(t, err)
	assert.Equal(t, "Type 5 not allowed in payload", err.Error())
}

func TestNewDefinition(t *testing.T) {
	def, err := trigger.NewDefinition(mustParse(t, `{
		"name":"ping","service":"slack","url":"https://hooks/x",
		"structure":{"msg":"str"},
		"state":{"name":"Slack","transitions":{"open":"o","assign":"a","close":"c"}},
		"providers":{"assign":"get_assign_data"}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "ping", def.Name)
	assert.Equal(t, "slack", def.Service)
	assert.Equal(t, "https://hooks/x", def.URL)
	assert.Equal(t, trigger.Structure{"msg": trigger.FieldString}, def.Structure)
	require.NotNil(t, def.State)
	assert.Equal(t, "Slack", def.State.Name)
	require.Len(t, def.State.Transitions, 3)
	assert.Equal(t, "assign", def.State.Transitions[1].Name)
	assert.Equal(t, map[string]string{"assign": "get_assign_data"}, def.Providers)
}

func TestNewDefinition_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "name not scalar string",
			body:    `{"name":{"a":1},"service":"slack","url":"u","structure":{}}`,
			wantErr: "Invalid type for name. Expected string, got object",
		},
		{
			name:    "empty name",
			body:    `{"name":"  ","service":"slack","url":"u","structure":{}}`,
			wantErr: "Invalid trigger name. A non-empty name is required",
		},
		{
			name:    "disallowed type tag",
			body:    `{"name":"x","service":"slack","url":"u","structure":{"f":"dict"}}`,
			wantErr: "Type dict not allowed in payload",
		},
		{
			name:    "empty state",
			body:    `{"name":"x","service":"slack","url":"u","structure":{},"state":{"transitions":{}}}`,
			wantErr: "State map must be a valid dict of transitions",
		},
		{
			name:    "state not a mapping",
			body:    `{"name":"x","service":"slack","url":"u","structure":{},"state":"open"}`,
			wantErr: "Invalid type for state. Expected object, got string",
		},
		{
			name:    "providers not a mapping of strings",
			body:    `{"name":"x","service":"slack","url":"u","structure":{},"providers":{"a":1}}`,
			wantErr: "Invalid providers. Expected a mapping of state name to provider name",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := trigger.NewDefinition(mustParse(t, tt.body))
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestStateSpec_FlatMappingAndRoundTrip(t *testing.T) {
	spec := specOf(t, `{"open":{"x":1},"close":null}`)
	require.Len(t, spec.Transitions, 2)
	assert.Equal(t, "open", spec.Transitions[0].Name)

	out, err := json.Marshal(spec)
	require.NoError(t, err)
	assert.Equal(t, `{"transitions":{"open":{"x":1},"close":null}}`, string(out))

	again := specOf(t, string(out))
	assert.Equal(t, spec.Transitions, again.Transitions)
}

func TestCheckPayload(t *testing.T) {
	structure := trigger.Structure{"msg": trigger.FieldString, "count": trigger.FieldInteger}

	assert.NoError(t, trigger.CheckPayload(structure, map[string]any{"msg": "hi"}))
	assert.NoError(t, trigger.CheckPayload(structure, map[string]any{"count": json.Number("3")}))
	assert.NoError(t, trigger.CheckPayload(nil, map[string]any{"x": 1}))

	err := trigger.CheckPayload(structure, map[string]any{"msg": 1.5, "count": "three"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, trigger.StatusCode(err))
	assert.Equal(t, "Invalid type for msg. Expected str, got number", err.Error())
}

func TestStatusCodeAndMessage(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		message string
	}{
		{&trigger.NotFoundError{Name: "x"}, http.StatusNotFound, "No triggers registered for x"},
		{&trigger.PayloadError{Message: "Invalid payload"}, http.StatusBadRequest, "Invalid payload"},
		{&trigger.TransitionExhaustedError{}, http.StatusBadRequest, "Invalid transition. State end"},
		{&trigger.AdapterContractError{Name: "x"}, http.StatusInternalServerError, "Trigger for x does not show a custom trigger"},
		{&trigger.ProviderError{State: "a"}, http.StatusInternalServerError, "Error fetching provider data"},
		{assert.AnError, http.StatusInternalServerError, "Server error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, trigger.StatusCode(tt.err))
		assert.Equal(t, tt.message, trigger.Message(tt.err))
	}
}
