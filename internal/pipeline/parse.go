/* Copyright (c) 2026 Eric Schwartz
 * SPDX-License-Identifier: BSD-3-Clause */
package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/domain"
)

// ParseFailure means both decode tiers failed: the direct decode of the
// response body and the retry against the extracted bracket substring.
// It is a recoverable condition, never surfaced past the owning stage.
type ParseFailure struct {
	Stage   string
	Direct  error
	Extract error
}

func (e *ParseFailure) Error() string {
	if e.Extract != nil {
		return fmt.Sprintf("%s: direct decode failed (%v); extracted substring failed (%v)", e.Stage, e.Direct, e.Extract)
	}
	return fmt.Sprintf("%s: direct decode failed (%v); no delimited substring found", e.Stage, e.Direct)
}

// extractDelimited returns the substring from the first open delimiter to
// the last close delimiter, which recovers a JSON document wrapped in prose.
func extractDelimited(s string, open, close byte) (string, bool) {
	i := strings.IndexByte(s, open)
	j := strings.LastIndexByte(s, close)
	if i < 0 || j <= i { return "", false }
	return s[i : j+1], true
}

// decodeDecisions parses the classifier response: direct decode first, then
// the first array-delimited substring.
func decodeDecisions(text string) ([]domain.Decision, error) {
	text = strings.TrimSpace(text)
	var out []domain.Decision
	directErr := json.Unmarshal([]byte(text), &out)
	if directErr == nil { return out, nil }
	sub, ok := extractDelimited(text, '[', ']')
	if !ok { return nil, &ParseFailure{Stage: "decisions", Direct: directErr} }
	var retry []domain.Decision
	if err := json.Unmarshal([]byte(sub), &retry); err != nil {
		return nil, &ParseFailure{Stage: "decisions", Direct: directErr, Extract: err}
	}
	return retry, nil
}

type rawGroup struct {
	Name    string   `json:"name"`
	Tickets []string `json:"tickets"`
	Summary string   `json:"summary"`
}

type rawGrouping struct {
	Groups         []rawGroup `json:"groups"`
	UngroupedFixes []string   `json:"ungrouped_fixes"`
}

// decodeGrouping parses the grouper response with the same two tiers,
// extracting the first object-delimited substring on the retry.
func decodeGrouping(text string) (*rawGrouping, error) {
	text = strings.TrimSpace(text)
	var out rawGrouping
	directErr := json.Unmarshal([]byte(text), &out)
	if directErr == nil { return &out, nil }
	sub, ok := extractDelimited(text, '{', '}')
	if !ok { return nil, &ParseFailure{Stage: "grouping", Direct: directErr} }
	var retry rawGrouping
	if err := json.Unmarshal([]byte(sub), &retry); err != nil {
		return nil, &ParseFailure{Stage: "grouping", Direct: directErr, Extract: err}
	}
	return &retry, nil
}
