// Package api exposes the event log and analyzer controls over HTTP for
// the external dashboard. The surface is read-mostly: the dashboard polls
// recent events, threats, and stats; start/stop mirror the dashboard's
// analyzer controls.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arjitrawat15/NetGuard-AI/internal/analyzer"
	"github.com/arjitrawat15/NetGuard-AI/internal/logging"
	"github.com/arjitrawat15/NetGuard-AI/internal/store"
)

// Server serves the dashboard API.
type Server struct {
	analyzer *analyzer.Analyzer
	log      *store.EventLog
	router   *gin.Engine
	srv      *http.Server

	// runCtx parents analyzer restarts triggered over the API.
	runCtx context.Context
}

// NewServer wires the dashboard API.
func NewServer(runCtx context.Context, a *analyzer.Analyzer, log *store.EventLog) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		analyzer: a,
		log:      log,
		router:   router,
		runCtx:   runCtx,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	apiGroup := s.router.Group("/api")
	{
		apiGroup.GET("/events", s.handleEvents)
		apiGroup.GET("/threats", s.handleThreats)
		apiGroup.GET("/stats", s.handleStats)
		apiGroup.GET("/status", s.handleStatus)
		apiGroup.POST("/analyzer/start", s.handleStart)
		apiGroup.POST("/analyzer/stop", s.handleStop)
	}
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// Run starts the HTTP listener and blocks until the context is canceled.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.ListenAndServe()
	}()
	logging.APILogger().Info("dashboard API listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// handleEvents returns recent log entries, newest first. ?limit=N caps
// the count (default 100).
func (s *Server) handleEvents(c *gin.Context) {
	limit := queryLimit(c, 100)
	c.JSON(http.StatusOK, gin.H{
		"events": s.log.Recent(limit),
		"count":  s.log.Size(),
	})
}

// handleThreats returns recent threat-labeled entries, newest first.
func (s *Server) handleThreats(c *gin.Context) {
	limit := queryLimit(c, 100)
	threats := s.log.Threats(limit)
	c.JSON(http.StatusOK, gin.H{
		"threats": threats,
		"count":   len(threats),
	})
}

// handleStats returns log and pipeline aggregates in one payload.
func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"log":      s.log.Stats(),
		"pipeline": s.analyzer.Stats(),
	})
}

// handleStatus is the lightweight poll target for the dashboard's
// running indicator.
func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"running":  s.analyzer.Running(),
		"degraded": s.analyzer.Stats().DegradedMode,
	})
}

func (s *Server) handleStart(c *gin.Context) {
	if err := s.analyzer.Start(s.runCtx); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"running": true})
}

func (s *Server) handleStop(c *gin.Context) {
	if err := s.analyzer.Stop(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"running": false})
}

func queryLimit(c *gin.Context, def int) int {
	raw := c.Query("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
