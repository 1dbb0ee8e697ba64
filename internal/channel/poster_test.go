package channel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestHTTPPoster_PostJSON(t *testing.T) {
	var gotUA, gotCT string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotCT = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	p := NewHTTPPoster(WithUserAgent("notifier-test"), WithTimeout(time.Second))
	status, err := p.PostJSON(context.Background(), srv.URL, map[string]string{"text": "hi"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, "notifier-test", gotUA)
	assert.Equal(t, "application/json", gotCT)
	assert.Equal(t, map[string]string{"text": "hi"}, gotBody)
}

func TestHTTPPoster_CustomTransport(t *testing.T) {
	called := false
	p := NewHTTPPoster(WithTransport(roundTripFunc(func(r *http.Request) (*http.Response, error) {
		called = true
		return &http.Response{StatusCode: http.StatusTeapot, Body: http.NoBody, Request: r}, nil
	})))

	status, err := p.PostJSON(context.Background(), "http://hooks.invalid/x", map[string]string{"text": "hi"})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, http.StatusTeapot, status)
}

func TestHTTPPoster_Errors(t *testing.T) {
	p := NewHTTPPoster()

	_, err := p.PostJSON(context.Background(), "http://127.0.0.1:1/x", map[string]string{})
	assert.Error(t, err)

	_, err = p.PostJSON(context.Background(), "://bad", map[string]string{})
	assert.Error(t, err)

	_, err = p.PostJSON(context.Background(), "http://example.com", map[string]any{"f": func() {}})
	assert.Error(t, err)
}
