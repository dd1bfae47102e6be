package granola

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var longNotes = strings.Repeat("Customer asked about exports. ", 5)

func writeCache(t *testing.T, state map[string]any) string {
	t.Helper()
	inner, err := json.Marshal(map[string]any{"state": state})
	require.NoError(t, err)
	outer, err := json.Marshal(map[string]any{"cache": string(inner)})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "cache-v3.json")
	require.NoError(t, os.WriteFile(path, outer, 0o644))
	return path
}

func cacheClient(path string) *Client {
	return NewClient(config.Config{GranolaCachePath: path, HTTPTimeout: 5 * time.Second}, zerolog.Nop())
}

func day(offset int) string {
	return time.Now().AddDate(0, 0, offset).Format("2006-01-02")
}

func TestCustomerMeetings_MatchesFolderAndWindow(t *testing.T) {
	path := writeCache(t, map[string]any{
		"documents": map[string]any{
			"d1": map[string]any{"title": "Kickoff", "created_at": day(-3) + "T10:00:00Z", "notes_markdown": longNotes},
			"d2": map[string]any{"title": "Old sync", "created_at": day(-60) + "T10:00:00Z", "notes_markdown": longNotes},
			"d3": map[string]any{"title": "Thin notes", "created_at": day(-2) + "T10:00:00Z", "notes_markdown": "too short"},
			"d4": map[string]any{"title": "Recent sync", "created_at": day(-1) + "T10:00:00Z", "notes_plain": longNotes},
			"d5": map[string]any{"title": "Other customer", "created_at": day(-1) + "T10:00:00Z", "notes_markdown": longNotes},
		},
		"documentLists": map[string]any{
			"f1": []string{"d1", "d2", "d3", "d4"},
			"f2": []string{"d5"},
		},
		"documentListsMetadata": map[string]any{
			"f1": map[string]any{"title": "Acme Corp"},
			"f2": map[string]any{"title": "Globex"},
		},
	})
	c := cacheClient(path)

	meetings, err := c.CustomerMeetings(context.Background(), []string{"acme"}, 30)
	require.NoError(t, err)

	// d2 outside the window, d3 below the notes floor, d5 in another folder
	require.Len(t, meetings, 2)
	assert.Equal(t, "Recent sync", meetings[0].Title)
	assert.Equal(t, "Kickoff", meetings[1].Title)
	assert.Equal(t, longNotes, meetings[0].Notes)
}

func TestCustomerMeetings_PrefersMarkdownNotes(t *testing.T) {
	path := writeCache(t, map[string]any{
		"documents": map[string]any{
			"d1": map[string]any{"title": "Sync", "created_at": day(-1) + "T10:00:00Z",
				"notes_markdown": "# Markdown " + longNotes, "notes_plain": "plain " + longNotes},
		},
		"documentLists":         map[string]any{"f1": []string{"d1"}},
		"documentListsMetadata": map[string]any{"f1": map[string]any{"title": "Acme"}},
	})

	meetings, err := cacheClient(path).CustomerMeetings(context.Background(), []string{"acme"}, 30)
	require.NoError(t, err)
	require.Len(t, meetings, 1)
	assert.True(t, strings.HasPrefix(meetings[0].Notes, "# Markdown"))
}

func TestCustomerMeetings_MissingCacheAndAPIIsEmptyNotError(t *testing.T) {
	c := NewClient(config.Config{
		GranolaCachePath: filepath.Join(t.TempDir(), "missing.json"),
		HTTPTimeout:      time.Second,
	}, zerolog.Nop())

	meetings, err := c.CustomerMeetings(context.Background(), []string{"acme"}, 30)

	require.NoError(t, err)
	assert.Empty(t, meetings)
}

func TestCustomerMeetings_FallsBackToAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/get-documents", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"docs": []map[string]any{
				{"title": "API sync", "created_at": day(-1) + "T10:00:00Z", "notes_markdown": longNotes, "folder_title": "Acme Corp"},
				{"title": "Other", "created_at": day(-1) + "T10:00:00Z", "notes_markdown": longNotes, "folder_title": "Globex"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(config.Config{
		GranolaCachePath: filepath.Join(t.TempDir(), "missing.json"),
		GranolaAPIBase:   srv.URL,
		GranolaAPIToken:  "tok",
		HTTPTimeout:      5 * time.Second,
	}, zerolog.Nop())

	meetings, err := c.CustomerMeetings(context.Background(), []string{"acme"}, 30)
	require.NoError(t, err)
	require.Len(t, meetings, 1)
	assert.Equal(t, "API sync", meetings[0].Title)
}

func TestCustomerMeetings_APIFailureIsEmptyNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(config.Config{
		GranolaCachePath: filepath.Join(t.TempDir(), "missing.json"),
		GranolaAPIBase:   srv.URL,
		HTTPTimeout:      5 * time.Second,
	}, zerolog.Nop())

	meetings, err := c.CustomerMeetings(context.Background(), []string{"acme"}, 30)
	require.NoError(t, err)
	assert.Empty(t, meetings)
}
