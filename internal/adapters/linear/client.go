/* Copyright (c) 2026 Eric Schwartz
 * SPDX-License-Identifier: BSD-3-Clause */
package linear

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/config"
	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/domain"
	"github.com/rs/zerolog"
)

type Client struct {
	url      string
	key      string
	pageSize int
	http     *http.Client
	log      zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
	return &Client{
		url:      cfg.LinearURL,
		key:      cfg.LinearAPIKey,
		pageSize: cfg.LinearPageSize,
		http:     &http.Client{Timeout: cfg.HTTPTimeout},
		log:      log,
	}
}

// completedIssuesQuery fetches issues in a completed workflow state updated
// since the boundary. One page only; the page size is assumed sufficient
// per run.
const completedIssuesQuery = `
query CompletedIssues($since: DateTimeOrDuration!, $first: Int!) {
    issues(
        filter: {
            state: { type: { eq: "completed" } }
            updatedAt: { gte: $since }
        }
        first: $first
        orderBy: updatedAt
    ) {
        nodes {
            id
            title
            description
            updatedAt
            state { name }
            team { name }
            assignee {
                name
                email
            }
            project {
                name
                initiatives {
                    nodes { name }
                }
            }
            labels { nodes { name } }
            comments {
                nodes {
                    body
                    user { name }
                }
            }
        }
    }
}`

type issueNode struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	UpdatedAt   string  `json:"updatedAt"`
	State       struct {
		Name string `json:"name"`
	} `json:"state"`
	Team *struct {
		Name string `json:"name"`
	} `json:"team"`
	Assignee *struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"assignee"`
	Project *struct {
		Name        string `json:"name"`
		Initiatives struct {
			Nodes []struct {
				Name string `json:"name"`
			} `json:"nodes"`
		} `json:"initiatives"`
	} `json:"project"`
	Labels struct {
		Nodes []struct {
			Name string `json:"name"`
		} `json:"nodes"`
	} `json:"labels"`
	Comments struct {
		Nodes []struct {
			Body string `json:"body"`
			User *struct {
				Name string `json:"name"`
			} `json:"user"`
		} `json:"nodes"`
	} `json:"comments"`
}

type gqlResponse struct {
	Data struct {
		Issues struct {
			Nodes []issueNode `json:"nodes"`
		} `json:"issues"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// CompletedSince returns normalized tickets for completed issues updated
// since the boundary (a YYYY-MM-DD or RFC3339 string).
func (c *Client) CompletedSince(ctx context.Context, since string) ([]domain.Ticket, error) {
	if c.key == "" { return nil, errors.New("linear: missing api key") }
	body := map[string]any{
		"query":     completedIssuesQuery,
		"variables": map[string]any{"since": since, "first": c.pageSize},
	}
	out, err := c.doGraphQL(ctx, body)
	if err != nil { return nil, err }
	if len(out.Errors) > 0 {
		return nil, fmt.Errorf("linear graphql: %s", out.Errors[0].Message)
	}
	nodes := out.Data.Issues.Nodes
	tickets := make([]domain.Ticket, 0, len(nodes))
	for _, n := range nodes {
		tickets = append(tickets, normalize(n))
	}
	return tickets, nil
}

func (c *Client) doGraphQL(ctx context.Context, body any) (*gqlResponse, error) {
	b, err := json.Marshal(body)
	if err != nil { return nil, err }
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(300*(1<<attempt)) * time.Millisecond)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(b))
		if err != nil { return nil, err }
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", c.key)
		resp, err := c.http.Do(req)
		if err != nil { lastErr = err; continue }
		if resp.StatusCode >= 300 {
			rb, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("linear api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(rb)))
			// retry on 429/5xx only
			if resp.StatusCode == 429 || resp.StatusCode >= 500 { continue }
			return nil, lastErr
		}
		var out gqlResponse
		err = json.NewDecoder(resp.Body).Decode(&out)
		resp.Body.Close()
		if err != nil { return nil, err }
		return &out, nil
	}
	return nil, lastErr
}

func normalize(n issueNode) domain.Ticket {
	t := domain.Ticket{
		ID:    n.ID,
		Title: n.Title,
		Team:  "",
	}
	if n.Description != nil { t.Description = *n.Description }
	if n.Team != nil { t.Team = n.Team.Name }
	if ts, err := time.Parse(time.RFC3339, n.UpdatedAt); err == nil {
		t.UpdatedAt = ts.UTC()
	}
	if n.Assignee != nil {
		t.Assignee = &domain.Assignee{Name: n.Assignee.Name, Email: n.Assignee.Email}
	}
	if n.Project != nil {
		p := &domain.Project{Name: n.Project.Name}
		for _, init := range n.Project.Initiatives.Nodes {
			p.Initiatives = append(p.Initiatives, init.Name)
		}
		t.Project = p
	}
	for _, l := range n.Labels.Nodes {
		t.Labels = append(t.Labels, l.Name)
	}
	for _, cm := range n.Comments.Nodes {
		author := "Unknown"
		if cm.User != nil && cm.User.Name != "" { author = cm.User.Name }
		t.Comments = append(t.Comments, domain.Comment{Author: author, Body: cm.Body})
	}
	return t
}
