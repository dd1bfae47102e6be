/* Copyright (c) 2026 Eric Schwartz
 * SPDX-License-Identifier: BSD-3-Clause */
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/domain"
)

const noMeetingsContext = "No recent meetings found for this customer."

// Personalize produces release notes tailored to one customer from that
// customer's recent meeting notes. Substitutes for the generic Draft stage.
// Every retrieval failure degrades: no meeting source, no cache, no API all
// fall through to an empty meeting set rather than failing the run.
func (s *Service) Personalize(ctx context.Context, customer string, daysBack int, c domain.Classification) string {
	if c.Empty() { return "" }

	var meetings []domain.Meeting
	if s.meetings == nil {
		s.log.Info().Msg("personalize: no meeting source configured, proceeding without context")
	} else {
		terms := s.cfg.AliasTerms(customer)
		m, err := s.meetings.CustomerMeetings(ctx, terms, daysBack)
		if err != nil {
			s.log.Warn().Err(err).Str("customer", customer).Msg("personalize: meeting retrieval failed")
		} else {
			meetings = m
		}
	}
	s.log.Info().Str("customer", customer).Int("meetings", len(meetings)).Msg("personalize: meetings found")

	summary := s.summarizeMeetings(ctx, customer, meetings)

	notesParts := make([]string, 0, len(meetings))
	for _, m := range meetings {
		notesParts = append(notesParts, m.Notes)
	}
	rawNotes := truncate(strings.Join(notesParts, "\n\n"), maxMeetingNotesChars)

	prompt := fmt.Sprintf(tailorPromptTemplate,
		customer, summary, orDefault(rawNotes, "None"),
		orDefault(listTickets(c.Features, 500), "None"),
		orDefault(listTickets(c.Fixes, 300), "None"))
	text, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		s.log.Warn().Err(err).Msg("personalize: tailoring call failed")
		return ""
	}
	return strings.TrimSpace(text)
}

// summarizeMeetings extracts pain points, requests, and interests from the
// concatenated notes via one inference call.
func (s *Service) summarizeMeetings(ctx context.Context, customer string, meetings []domain.Meeting) string {
	if len(meetings) == 0 { return noMeetingsContext }
	blocks := make([]string, 0, len(meetings))
	for _, m := range meetings {
		blocks = append(blocks, fmt.Sprintf("=== %s (%s) ===\n%s", m.Title, m.Date, m.Notes))
	}
	prompt := fmt.Sprintf(meetingSummaryPromptTemplate, customer, strings.Join(blocks, "\n\n"))
	out, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		s.log.Warn().Err(err).Msg("personalize: context extraction failed")
		return noMeetingsContext
	}
	return strings.TrimSpace(out)
}

func listTickets(ts []domain.ClassifiedTicket, descCap int) string {
	lines := make([]string, 0, len(ts))
	for _, t := range ts {
		lines = append(lines, fmt.Sprintf("- %s: %s", t.Ticket.Title, truncate(orDefault(t.Ticket.Description, "No description"), descCap)))
	}
	return strings.Join(lines, "\n")
}
