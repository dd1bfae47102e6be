package slack

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPost_SendsWebhookPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(config.Config{SlackWebhookURL: srv.URL}, zerolog.Nop())
	require.True(t, c.Configured())

	require.NoError(t, c.Post(context.Background(), "🚀 *Product Updates*"))

	assert.Equal(t, "🚀 *Product Updates*", got["text"])
	assert.Equal(t, false, got["unfurl_links"])
	assert.Equal(t, false, got["unfurl_media"])
}

func TestPost_Non200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("invalid_token"))
	}))
	defer srv.Close()

	c := NewClient(config.Config{SlackWebhookURL: srv.URL}, zerolog.Nop())

	err := c.Post(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=403")
	assert.Contains(t, err.Error(), "invalid_token")
}

func TestPost_MissingWebhookIsError(t *testing.T) {
	c := NewClient(config.Config{}, zerolog.Nop())

	assert.False(t, c.Configured())
	assert.Error(t, c.Post(context.Background(), "hi"))
}
