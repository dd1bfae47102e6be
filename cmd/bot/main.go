/* Copyright (c) 2026 Eric Schwartz
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/adapters/granola"
	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/adapters/linear"
	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/adapters/openai"
	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/adapters/slack"
	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/config"
	apphttp "github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/http"
	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/jobs"
	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/logger"
	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/pipeline"
	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/repo"
	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/state"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.New(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Checkpoint store: postgres when a DSN is configured, local file otherwise
	var store pipeline.CheckpointStore
	var runs pipeline.RunRecorder
	if cfg.DBDSN != "" {
		db := repo.MustOpen(ctx, cfg, log)
		defer db.Close()
		pg := repo.NewStore(db, log)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("schema init failed")
		}
		store = pg
		runs = pg
	} else {
		store = state.NewFileStore(cfg.StateFile, log)
	}

	// Adapters
	tracker := linear.NewClient(cfg, log)
	llm := openai.NewClient(cfg, log)
	notifier := slack.NewClient(cfg, log)
	meetings := granola.NewClient(cfg, log)

	svc := pipeline.New(cfg, log, store, tracker, llm, notifier, meetings, runs)

	// HTTP server (Gin)
	router := apphttp.NewRouter(cfg, log, svc)

	// Cron
	cron := jobs.NewCron(cfg, log, svc)
	cron.Start()
	defer cron.Stop()

	// graceful shutdown
	errCh := make(chan error, 1)
	go func() { errCh <- router.Run(cfg.HTTPAddr) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info().Msg("shutting down...")
	case err := <-errCh:
		if err != nil { log.Error().Err(err).Msg("http server error") }
	}

	time.Sleep(500 * time.Millisecond)
}
