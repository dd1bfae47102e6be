/* Copyright (c) 2026 Eric Schwartz
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
	"context"
	"net/http"

	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/config"
	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/pipeline"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type service interface {
	Run(ctx context.Context, opts pipeline.RunOptions) (string, error)
	LastRun(ctx context.Context) (map[string]any, error)
}

type Handlers struct {
	cfg config.Config
	log zerolog.Logger
	svc service
}

func NewHandlers(cfg config.Config, log zerolog.Logger, svc service) *Handlers {
	return &Handlers{cfg: cfg, log: log, svc: svc}
}

func (h *Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) LastRun(c *gin.Context) {
	lr, err := h.svc.LastRun(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, lr)
}

func (h *Handlers) RunNow(c *gin.Context) {
	var opts pipeline.RunOptions
	// empty body means a default delivered run
	if err := c.ShouldBindJSON(&opts); err != nil {
		opts = pipeline.RunOptions{Deliver: true}
	}
	// Run in background detached from the HTTP request to avoid context cancellation
	go func() {
		if _, err := h.svc.Run(context.Background(), opts); err != nil {
			h.log.Error().Err(err).Msg("admin run failed")
		}
	}()
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
