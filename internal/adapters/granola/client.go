/* Copyright (c) 2026 Eric Schwartz
 * SPDX-License-Identifier: BSD-3-Clause */
package granola

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/config"
	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/domain"
	"github.com/rs/zerolog"
)

// minNotesChars filters out meetings without meaningful content.
const minNotesChars = 50

type Client struct {
	cachePath string
	apiBase   string
	apiToken  string
	http      *http.Client
	log       zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
	return &Client{
		cachePath: cfg.GranolaCachePath,
		apiBase:   cfg.GranolaAPIBase,
		apiToken:  cfg.GranolaAPIToken,
		http:      &http.Client{Timeout: cfg.HTTPTimeout},
		log:       log,
	}
}

// The cache snapshot is double-encoded: the file is a JSON object whose
// "cache" field is itself a JSON document carrying the state.
type cacheState struct {
	Documents     map[string]cacheDoc `json:"documents"`
	DocumentLists map[string][]string `json:"documentLists"`
	ListsMetadata map[string]struct {
		Title string `json:"title"`
	} `json:"documentListsMetadata"`
}

type cacheDoc struct {
	Title         string `json:"title"`
	CreatedAt     string `json:"created_at"`
	NotesMarkdown string `json:"notes_markdown"`
	NotesPlain    string `json:"notes_plain"`
}

// CustomerMeetings returns meetings from folders whose title matches any of
// the alias terms, restricted to the lookback window, newest first. The
// local cache snapshot is tried first; if it is unavailable the API path is
// used; if that too is unavailable an empty set is returned without error.
func (c *Client) CustomerMeetings(ctx context.Context, terms []string, daysBack int) ([]domain.Meeting, error) {
	state, err := c.loadCache()
	if err != nil {
		c.log.Info().Err(err).Msg("granola cache unavailable, trying API")
		meetings, apiErr := c.fetchMeetingsAPI(ctx, terms, daysBack)
		if apiErr != nil {
			c.log.Warn().Err(apiErr).Msg("granola API unavailable, proceeding without meetings")
			return nil, nil
		}
		return meetings, nil
	}

	cutoff := time.Now().AddDate(0, 0, -daysBack).Format("2006-01-02")

	// Folders matching any alias term
	var folderIDs []string
	for listID, meta := range state.ListsMetadata {
		title := strings.ToLower(meta.Title)
		for _, term := range terms {
			if term != "" && strings.Contains(title, term) {
				folderIDs = append(folderIDs, listID)
				c.log.Debug().Str("folder", meta.Title).Msg("granola folder matched")
				break
			}
		}
	}

	docIDs := map[string]struct{}{}
	for _, fid := range folderIDs {
		for _, did := range state.DocumentLists[fid] {
			docIDs[did] = struct{}{}
		}
	}

	var meetings []domain.Meeting
	for did := range docIDs {
		doc, ok := state.Documents[did]
		if !ok { continue }
		created := doc.CreatedAt
		if len(created) >= 10 { created = created[:10] }
		if created < cutoff { continue }
		notes := doc.NotesMarkdown
		if notes == "" { notes = doc.NotesPlain }
		if len(notes) < minNotesChars { continue }
		title := doc.Title
		if title == "" { title = "Untitled" }
		meetings = append(meetings, domain.Meeting{Title: title, Date: created, Notes: notes})
	}

	sort.Slice(meetings, func(i, j int) bool { return meetings[i].Date > meetings[j].Date })
	return meetings, nil
}

func (c *Client) loadCache() (*cacheState, error) {
	if c.cachePath == "" { return nil, fmt.Errorf("granola: no cache path configured") }
	data, err := os.ReadFile(c.cachePath)
	if err != nil { return nil, err }
	var outer struct {
		Cache string `json:"cache"`
	}
	if err := json.Unmarshal(data, &outer); err != nil { return nil, err }
	var inner struct {
		State cacheState `json:"state"`
	}
	if err := json.Unmarshal([]byte(outer.Cache), &inner); err != nil { return nil, err }
	return &inner.State, nil
}

func (c *Client) fetchMeetingsAPI(ctx context.Context, terms []string, daysBack int) ([]domain.Meeting, error) {
	if c.apiBase == "" { return nil, fmt.Errorf("granola: no API base configured") }
	body := map[string]any{"limit": 100, "include_last_viewed_panel": true}
	b, _ := json.Marshal(body)
	u := strings.TrimRight(c.apiBase, "/") + "/v2/get-documents"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(b))
	if err != nil { return nil, err }
	req.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" { req.Header.Set("Authorization", "Bearer "+c.apiToken) }
	resp, err := c.http.Do(req)
	if err != nil { return nil, err }
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		rb, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("granola api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(rb)))
	}
	var out struct {
		Docs []struct {
			Title         string `json:"title"`
			CreatedAt     string `json:"created_at"`
			NotesMarkdown string `json:"notes_markdown"`
			NotesPlain    string `json:"notes_plain"`
			FolderTitle   string `json:"folder_title"`
		} `json:"docs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil { return nil, err }

	cutoff := time.Now().AddDate(0, 0, -daysBack).Format("2006-01-02")
	var meetings []domain.Meeting
	for _, d := range out.Docs {
		folder := strings.ToLower(d.FolderTitle)
		matched := false
		for _, term := range terms {
			if term != "" && strings.Contains(folder, term) { matched = true; break }
		}
		if !matched { continue }
		created := d.CreatedAt
		if len(created) >= 10 { created = created[:10] }
		if created < cutoff { continue }
		notes := d.NotesMarkdown
		if notes == "" { notes = d.NotesPlain }
		if len(notes) < minNotesChars { continue }
		title := d.Title
		if title == "" { title = "Untitled" }
		meetings = append(meetings, domain.Meeting{Title: title, Date: created, Notes: notes})
	}
	sort.Slice(meetings, func(i, j int) bool { return meetings[i].Date > meetings[j].Date })
	return meetings, nil
}
