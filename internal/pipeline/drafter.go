/* Copyright (c) 2026 Eric Schwartz
 * SPDX-License-Identifier: BSD-3-Clause */
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/domain"
)

func formatGroupBlock(g domain.Group) string {
	members := g.Tickets
	if len(members) > maxGroupRender { members = members[:maxGroupRender] }
	lines := make([]string, 0, len(members))
	for _, t := range members {
		lines = append(lines, fmt.Sprintf("  - %s: %s", t.Title, truncate(orDefault(t.Description, "No description"), maxGroupMemberChars)))
	}
	return fmt.Sprintf("GROUP: %s\nSummary: %s\nRelated tickets:\n%s",
		g.Name, orDefault(g.Summary, "N/A"), strings.Join(lines, "\n"))
}

func formatFixBlock(t domain.Ticket) string {
	return fmt.Sprintf("Title: %s\nDescription: %s",
		t.Title, truncate(orDefault(t.Description, "No description"), maxFixDescChars))
}

// Draft renders grouped features and ungrouped fixes into one formatting
// prompt and returns the model's marked-up text verbatim. This is the only
// stage whose output is not machine-parsed downstream: the terminal artifact
// is presentation text judged by a human reader. Empty classification means
// an empty draft with no inference call.
func (s *Service) Draft(ctx context.Context, c domain.Classification, g domain.Grouping) string {
	if c.Empty() { return "" }

	var featuresText string
	if len(g.Groups) > 0 {
		blocks := make([]string, 0, len(g.Groups))
		for _, grp := range g.Groups {
			blocks = append(blocks, formatGroupBlock(grp))
		}
		featuresText = strings.Join(blocks, "\n\n")
	} else if len(c.Features) > 0 {
		blocks := make([]string, 0, len(c.Features))
		for _, f := range c.Features {
			blocks = append(blocks, formatFixBlock(f.Ticket))
		}
		featuresText = strings.Join(blocks, "\n\n")
	} else {
		featuresText = "None"
	}

	// Prefer the grouper's ungrouped list; fall back to all raw fixes when
	// grouping produced none.
	var fixesText string
	if len(g.UngroupedFixes) > 0 {
		blocks := make([]string, 0, len(g.UngroupedFixes))
		for _, t := range g.UngroupedFixes {
			blocks = append(blocks, formatFixBlock(t))
		}
		fixesText = strings.Join(blocks, "\n\n")
	} else if len(c.Fixes) > 0 {
		blocks := make([]string, 0, len(c.Fixes))
		for _, f := range c.Fixes {
			blocks = append(blocks, formatFixBlock(f.Ticket))
		}
		fixesText = strings.Join(blocks, "\n\n")
	} else {
		fixesText = "None"
	}

	prompt := fmt.Sprintf(draftPromptTemplate, s.cfg.ProductContext, s.cfg.VoiceTone, featuresText, fixesText)
	text, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		s.log.Warn().Err(err).Msg("draft: inference call failed")
		return ""
	}
	return strings.TrimSpace(text)
}
