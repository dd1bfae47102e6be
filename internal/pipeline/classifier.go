/* Copyright (c) 2026 Eric Schwartz
 * SPDX-License-Identifier: BSD-3-Clause */
package pipeline

import (
	"context"

	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/domain"
)

// defaultReason is the sentinel attached to tickets the model returned no
// decision for. Must be non-empty: a ticket is never dropped from accounting.
const defaultReason = "No reason given"

// Classify partitions tickets into feature/fix/excluded via one batched
// inference call. Every input ticket lands in exactly one partition; a
// ticket absent from the decision list defaults to excluded. Transport and
// parse failures are recoverable: they yield empty partitions and a warning.
func (s *Service) Classify(ctx context.Context, tickets []domain.Ticket) domain.Classification {
	if len(tickets) == 0 { return domain.Classification{} }

	prompt := s.buildClassifyPrompt(tickets)
	raw, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		s.log.Warn().Err(err).Int("tickets", len(tickets)).Msg("classify: inference call failed")
		return domain.Classification{}
	}

	decisions, perr := decodeDecisions(raw)
	if perr != nil {
		s.log.Warn().Err(perr).Msg("classify: could not parse decisions")
		return domain.Classification{}
	}

	// Explicit total join: tickets keyed by id, decisions keyed by id.
	// Decisions for ids not in the input batch are silently ignored.
	byID := make(map[string]domain.Decision, len(decisions))
	for _, d := range decisions {
		byID[d.ID] = d
	}

	var out domain.Classification
	for _, t := range tickets {
		decision := domain.DecisionExclude
		reason := defaultReason
		if d, ok := byID[t.ID]; ok {
			if d.Decision == domain.DecisionFeature || d.Decision == domain.DecisionFix {
				decision = d.Decision
			}
			if d.Reason != "" { reason = d.Reason }
		}
		ct := domain.ClassifiedTicket{Ticket: t, Reason: reason}
		switch decision {
		case domain.DecisionFeature:
			out.Features = append(out.Features, ct)
		case domain.DecisionFix:
			out.Fixes = append(out.Fixes, ct)
		default:
			out.Excluded = append(out.Excluded, ct)
		}
	}

	s.log.Info().
		Int("features", len(out.Features)).
		Int("fixes", len(out.Fixes)).
		Int("excluded", len(out.Excluded)).
		Msg("classify: partitions")
	return out
}
