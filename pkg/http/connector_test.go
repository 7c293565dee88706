package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoBody struct {
	Text string `json:"text"`
}

func TestDoRequest_RoundTripsJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/echo", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "v1", r.Header.Get("X-Version"))

		var in echoBody
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(echoBody{Text: in.Text + "!"})
	}))
	defer srv.Close()

	c := NewConnector(&ConnectorConfig{BaseURL: srv.URL}, WithRequestLogging())

	var out echoBody
	err := c.DoRequest(context.Background(), http.MethodPost, "/echo", echoBody{Text: "hi"}, &out, WithHeader("X-Version", "v1"))

	require.NoError(t, err)
	assert.Equal(t, "hi!", out.Text)
}

func TestDoRequest_WithURLOverridesBase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/other", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewConnector(&ConnectorConfig{BaseURL: "http://unused.invalid"})

	err := c.DoRequest(context.Background(), http.MethodGet, "/ignored", nil, nil, WithURL(srv.URL+"/other"))
	require.NoError(t, err)
}

func TestDoRequest_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewConnector(&ConnectorConfig{BaseURL: srv.URL})

	err := c.DoRequest(context.Background(), http.MethodGet, "/indexes/x", nil, nil)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.True(t, IsStatus(err, http.StatusNotFound))
	assert.False(t, IsStatus(err, http.StatusInternalServerError))
}

func TestDoRequest_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewConnector(&ConnectorConfig{BaseURL: url})

	err := c.DoRequest(context.Background(), http.MethodGet, "/", nil, nil)

	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr))
}

func TestHeaderAuth(t *testing.T) {
	var gotKey, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Api-Key")
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	c := NewConnector(&ConnectorConfig{BaseURL: srv.URL},
		WithHeaderAuth("Api-Key", "pc-secret"),
		WithAuthToken(""),
	)

	require.NoError(t, c.DoRequest(context.Background(), http.MethodGet, "/", nil, nil))
	assert.Equal(t, "pc-secret", gotKey)
	assert.Empty(t, gotAuth)
}

func TestRedactHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Api-Key", "pcsk_1234567890")
	h.Set("Authorization", "short")
	h.Set("Accept", "application/json")

	out := redactHeaders(h)

	assert.Equal(t, "pcsk...****", out.Get("Api-Key"))
	assert.Equal(t, "*****", out.Get("Authorization"))
	assert.Equal(t, "application/json", out.Get("Accept"))
	assert.Equal(t, "pcsk_1234567890", h.Get("Api-Key"))
}
