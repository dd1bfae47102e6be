package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/config"
	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/pipeline"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	mu   sync.Mutex
	opts []pipeline.RunOptions
	last map[string]any
}

func (s *stubService) Run(_ context.Context, opts pipeline.RunOptions) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts = append(s.opts, opts)
	return "", nil
}

func (s *stubService) LastRun(_ context.Context) (map[string]any, error) {
	return s.last, nil
}

func TestHealthz(t *testing.T) {
	svc := &stubService{}
	r := NewRouter(config.Config{AppEnv: "test"}, zerolog.Nop(), svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestLastRun(t *testing.T) {
	svc := &stubService{last: map[string]any{"last_run": "2026-08-21"}}
	r := NewRouter(config.Config{AppEnv: "test"}, zerolog.Nop(), svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/last-run", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"last_run":"2026-08-21"}`, w.Body.String())
}

func TestRunNow_QueuesWithOptions(t *testing.T) {
	svc := &stubService{}
	r := NewRouter(config.Config{AppEnv: "test"}, zerolog.Nop(), svc)

	body := `{"start_date":"2026-08-01","customer":"acme","deliver":true}`
	req := httptest.NewRequest(http.MethodPost, "/admin/run", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"status":"queued"}`, w.Body.String())

	require.Eventually(t, func() bool {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		return len(svc.opts) == 1
	}, time.Second, 10*time.Millisecond)
	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Equal(t, "2026-08-01", svc.opts[0].StartDate)
	assert.Equal(t, "acme", svc.opts[0].Customer)
	assert.True(t, svc.opts[0].Deliver)
}

func TestRunNow_EmptyBodyDefaultsToDeliveredRun(t *testing.T) {
	svc := &stubService{}
	r := NewRouter(config.Config{AppEnv: "test"}, zerolog.Nop(), svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/run", nil))

	assert.Equal(t, http.StatusAccepted, w.Code)
	require.Eventually(t, func() bool {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		return len(svc.opts) == 1
	}, time.Second, 10*time.Millisecond)
	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.True(t, svc.opts[0].Deliver)
}
