/* Copyright (c) 2026 Eric Schwartz
 * SPDX-License-Identifier: BSD-3-Clause */
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/config"
	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/domain"
	"github.com/rs/zerolog"
)

type Tracker interface {
	CompletedSince(ctx context.Context, since string) ([]domain.Ticket, error)
}

type LLM interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Notifier interface {
	Post(ctx context.Context, text string) error
	Configured() bool
}

// CheckpointStore persists the last-run boundary. Load reports absence via
// the bool; absence is not an error. A Save failure is recoverable: callers
// log and continue.
type CheckpointStore interface {
	Load(ctx context.Context) (string, bool, error)
	Save(ctx context.Context, boundary string) error
}

type MeetingSource interface {
	CustomerMeetings(ctx context.Context, terms []string, daysBack int) ([]domain.Meeting, error)
}

// RunRecorder is optional accounting (postgres-backed when configured).
type RunRecorder interface {
	StartRun(ctx context.Context, since string) (int64, error)
	FinishRun(ctx context.Context, id int64, scanned, features, fixes, excluded int, ok bool, note string) error
}

type Service struct {
	cfg      config.Config
	log      zerolog.Logger
	store    CheckpointStore
	tracker  Tracker
	llm      LLM
	notifier Notifier
	meetings MeetingSource
	runs     RunRecorder
}

func New(cfg config.Config, log zerolog.Logger, store CheckpointStore, tracker Tracker, llm LLM, notifier Notifier, meetings MeetingSource, runs RunRecorder) *Service {
	return &Service{cfg: cfg, log: log, store: store, tracker: tracker, llm: llm, notifier: notifier, meetings: meetings, runs: runs}
}

// RunOptions are the operator-facing controls for one invocation.
type RunOptions struct {
	StartDate    string `json:"start_date"`
	Customer     string `json:"customer"`
	LookbackDays int    `json:"lookback_days"`
	Deliver      bool   `json:"deliver"`
}

// Run executes the full pipeline once: resolve boundary, fetch, classify,
// group, draft (or personalize), deliver, advance checkpoint. Strictly
// sequential; no stage retries. There is no fatal path under normal
// operation - the worst outcome is an empty draft.
func (s *Service) Run(ctx context.Context, opts RunOptions) (string, error) {
	since := s.resolveSince(ctx, opts.StartDate)
	s.log.Info().Str("since", since).Str("customer", opts.Customer).Msg("run: start")

	var runID int64
	var counts [4]int // scanned, features, fixes, excluded
	var runErr error
	if s.runs != nil {
		id, err := s.runs.StartRun(ctx, since)
		if err != nil {
			s.log.Error().Err(err).Msg("run: start accounting failed")
		} else {
			runID = id
		}
		defer func() {
			if runID == 0 { return }
			note := ""
			if runErr != nil { note = runErr.Error() }
			if err := s.runs.FinishRun(ctx, runID, counts[0], counts[1], counts[2], counts[3], runErr == nil, note); err != nil {
				s.log.Error().Err(err).Msg("run: finish accounting failed")
			}
		}()
	}

	tickets, err := s.tracker.CompletedSince(ctx, since)
	if err != nil {
		// transport errors are non-fatal: degrade to an empty fetch
		s.log.Error().Err(err).Msg("run: tracker fetch failed")
		runErr = err
		tickets = nil
	}
	counts[0] = len(tickets)
	s.log.Info().Int("tickets", len(tickets)).Msg("run: completed tickets fetched")
	if len(tickets) == 0 {
		s.log.Info().Msg("run: no tickets to process")
		return "", nil
	}

	classified := s.Classify(ctx, tickets)
	counts[1], counts[2], counts[3] = len(classified.Features), len(classified.Fixes), len(classified.Excluded)
	s.logPartitions(classified)
	if classified.Empty() {
		s.log.Info().Msg("run: no customer-worthy tickets found")
		return "", nil
	}

	grouped := s.Group(ctx, classified)

	var notes string
	if opts.Customer != "" {
		days := opts.LookbackDays
		if days <= 0 { days = s.cfg.MeetingLookback }
		notes = s.Personalize(ctx, opts.Customer, days, classified)
	} else {
		notes = s.Draft(ctx, classified, grouped)
	}

	today := time.Now().Format("2006-01-02")
	if opts.Deliver && notes != "" {
		s.deliver(ctx, opts.Customer, since, today, notes)
	}

	// Checkpoint advances even when delivery failed; a failed save is
	// logged and swallowed.
	if err := s.store.Save(ctx, today); err != nil {
		s.log.Error().Err(err).Msg("run: checkpoint save failed")
	} else {
		s.log.Info().Str("boundary", today).Msg("run: checkpoint saved")
	}
	return notes, nil
}

// resolveSince applies the three-tier precedence: explicit operator
// override, then the stored checkpoint, then the default lookback window.
func (s *Service) resolveSince(ctx context.Context, override string) string {
	if strings.TrimSpace(override) == "" { override = s.cfg.StartDateOverride }
	if o := strings.TrimSpace(override); o != "" {
		s.log.Info().Str("since", o).Msg("run: using explicit start date")
		return o
	}
	stored, ok, err := s.store.Load(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("run: checkpoint load failed, using default window")
	} else if ok {
		return stored
	}
	return time.Now().AddDate(0, 0, -s.cfg.LookbackDays).Format("2006-01-02")
}

func (s *Service) deliver(ctx context.Context, customer, since, today, notes string) {
	if s.notifier == nil || !s.notifier.Configured() {
		s.log.Info().Msg("run: no chat webhook configured, skipping delivery")
		return
	}
	var header string
	if customer != "" {
		header = fmt.Sprintf("🚀 *Product Updates for %s* (%s → %s)\n%s\n\n", strings.ToUpper(customer), since, today, strings.Repeat("─", 40))
	} else {
		header = fmt.Sprintf("🚀 *Product Updates* (%s → %s)\n%s\n\n", since, today, strings.Repeat("─", 40))
	}
	if err := s.notifier.Post(ctx, header+notes); err != nil {
		// non-fatal: the run still reports success for checkpoint purposes
		s.log.Error().Err(err).Msg("run: chat delivery failed")
		return
	}
	s.log.Info().Msg("run: delivered to chat")
}

func (s *Service) logPartitions(c domain.Classification) {
	for _, f := range c.Features {
		s.log.Debug().Str("title", f.Ticket.Title).Str("assignee", f.Ticket.AssigneeLabel()).Str("reason", f.Reason).Msg("feature selected")
	}
	for _, f := range c.Fixes {
		s.log.Debug().Str("title", f.Ticket.Title).Str("assignee", f.Ticket.AssigneeLabel()).Str("reason", f.Reason).Msg("fix selected")
	}
	for _, e := range c.Excluded {
		s.log.Debug().Str("title", e.Ticket.Title).Str("reason", e.Reason).Msg("ticket excluded")
	}
}

// LastRun reports the most recent run for the admin surface: the accounting
// row when a recorder backs the run, otherwise just the stored boundary.
func (s *Service) LastRun(ctx context.Context) (map[string]any, error) {
	type lastRunner interface {
		LastRun(ctx context.Context) (map[string]any, error)
	}
	if lr, ok := s.runs.(lastRunner); ok && s.runs != nil {
		return lr.LastRun(ctx)
	}
	boundary, ok, err := s.store.Load(ctx)
	if err != nil { return nil, err }
	if !ok { return map[string]any{"last_run": nil}, nil }
	return map[string]any{"last_run": boundary}, nil
}
