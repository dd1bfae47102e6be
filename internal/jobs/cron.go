/* Copyright (c) 2026 Eric Schwartz
 * SPDX-License-Identifier: BSD-3-Clause */
package jobs

import (
	"context"
	"time"

	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/config"
	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/pipeline"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type service interface {
	Run(ctx context.Context, opts pipeline.RunOptions) (string, error)
}

type Cron struct {
	cfg config.Config
	log zerolog.Logger
	svc service
	c   *cron.Cron
}

func NewCron(cfg config.Config, log zerolog.Logger, svc service) *Cron {
	loc, _ := time.LoadLocation(cfg.TZ)
	c := cron.New(cron.WithLocation(loc), cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow)))
	cr := &Cron{cfg: cfg, log: log, svc: svc, c: c}
	_, _ = c.AddFunc(cfg.DigestCron, cr.weekly)
	return cr
}

func (cr *Cron) Start() { cr.c.Start() }
func (cr *Cron) Stop()  { cr.c.Stop() }

func (cr *Cron) weekly() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	cr.log.Info().Msg("cron: weekly release notes")
	if _, err := cr.svc.Run(ctx, pipeline.RunOptions{Deliver: true}); err != nil {
		cr.log.Error().Err(err).Msg("cron: run failed")
	}
}
