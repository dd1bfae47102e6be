/* Copyright (c) 2026 Eric Schwartz
 * SPDX-License-Identifier: BSD-3-Clause */
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/domain"
)

// backendSignals mark excluded tickets as candidate supporting work for a
// grouped feature. Rescued tickets join the grouping prompt but are never
// promoted to standalone feature/fix status.
var backendSignals = []string{"backend", "endpoint", "api", "schema"}

func isBackendAdjacent(reason string) bool {
	lower := strings.ToLower(reason)
	for _, kw := range backendSignals {
		if strings.Contains(lower, kw) { return true }
	}
	return false
}

// Group bundles classified tickets into customer-legible capabilities via
// one inference call. Total failure degrades to zero groups with every fix
// ungrouped. Unresolved member ids become placeholder tickets. Candidates
// referenced by no group and absent from ungrouped_fixes are dropped from
// the draft; that is accepted behavior.
func (s *Service) Group(ctx context.Context, c domain.Classification) domain.Grouping {
	if c.Empty() { return domain.Grouping{} }

	type candidate struct {
		ticket domain.Ticket
		origin string
	}
	var candidates []candidate
	for _, f := range c.Features {
		candidates = append(candidates, candidate{f.Ticket, "feature"})
	}
	for _, f := range c.Fixes {
		candidates = append(candidates, candidate{f.Ticket, "fix"})
	}
	rescued := 0
	for _, e := range c.Excluded {
		if isBackendAdjacent(e.Reason) {
			candidates = append(candidates, candidate{e.Ticket, "excluded (backend)"})
			rescued++
		}
	}
	if rescued > 0 {
		s.log.Info().Int("rescued", rescued).Msg("group: backend-adjacent excluded tickets included")
	}

	fallback := func() domain.Grouping {
		fixes := make([]domain.Ticket, 0, len(c.Fixes))
		for _, f := range c.Fixes {
			fixes = append(fixes, f.Ticket)
		}
		return domain.Grouping{UngroupedFixes: fixes}
	}

	blocks := make([]string, 0, len(candidates))
	for _, cand := range candidates {
		blocks = append(blocks, groupTicketBlock(cand.ticket, cand.origin))
	}
	prompt := fmt.Sprintf(groupPromptTemplate, strings.Join(blocks, "\n\n"))

	raw, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		s.log.Warn().Err(err).Msg("group: inference call failed, leaving all fixes ungrouped")
		return fallback()
	}
	rg, perr := decodeGrouping(raw)
	if perr != nil {
		s.log.Warn().Err(perr).Msg("group: could not parse grouping, leaving all fixes ungrouped")
		return fallback()
	}

	byID := make(map[string]domain.Ticket, len(candidates))
	for _, cand := range candidates {
		byID[cand.ticket.ID] = cand.ticket
	}
	resolve := func(id string) domain.Ticket {
		if t, ok := byID[id]; ok { return t }
		s.log.Warn().Str("id", id).Msg("group: unknown ticket id, synthesizing placeholder")
		return domain.Ticket{ID: id, Title: "Unknown"}
	}

	var out domain.Grouping
	for _, g := range rg.Groups {
		group := domain.Group{Name: g.Name, Summary: g.Summary}
		for _, id := range g.Tickets {
			group.Tickets = append(group.Tickets, resolve(id))
		}
		out.Groups = append(out.Groups, group)
	}
	for _, id := range rg.UngroupedFixes {
		out.UngroupedFixes = append(out.UngroupedFixes, resolve(id))
	}

	s.log.Info().
		Int("groups", len(out.Groups)).
		Int("ungrouped_fixes", len(out.UngroupedFixes)).
		Msg("group: result")
	return out
}
