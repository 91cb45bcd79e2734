// Package server provides the HTTP API: the cron-triggered sync endpoint,
// read access to application records, health, and Prometheus metrics.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/jobtrail/internal/metrics"
	"github.com/jonathan/jobtrail/internal/pipeline"
	"github.com/jonathan/jobtrail/internal/store"
)

// SyncRunner executes one sync over an optional lookback override.
type SyncRunner interface {
	Run(ctx context.Context, lookbackHours int) (pipeline.Counters, error)
}

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	runner     SyncRunner
	store      store.Store
	metrics    *metrics.Metrics
	cronSecret string
	log        *logrus.Entry
}

// Config holds server configuration.
type Config struct {
	Port       int
	CronSecret string
}

// New creates a new server instance.
func New(cfg Config, runner SyncRunner, st store.Store, m *metrics.Metrics) *Server {
	s := &Server{
		runner:     runner,
		store:      st,
		metrics:    m,
		cronSecret: cfg.CronSecret,
		log:        logrus.WithField("component", "server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /sync", s.handleSync)
	mux.HandleFunc("GET /applications", s.handleListApplications)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // sync runs can be slow
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.log.WithField("addr", s.httpServer.Addr).Info("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.WithError(err).Fatal("server error")
		}
	}()

	<-stop
	s.log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}

// handleSync runs the pipeline. It is the cron trigger and requires the
// shared secret as a bearer token. An optional hours query parameter
// overrides the configured lookback window.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	hours := 0
	if raw := r.URL.Query().Get("hours"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 720 {
			s.errorResponse(w, http.StatusBadRequest, "hours must be an integer between 1 and 720")
			return
		}
		hours = v
	}

	counters, err := s.runner.Run(r.Context(), hours)
	s.metrics.RecordRun(counters, err)
	if err != nil {
		s.log.WithError(err).Error("sync run failed")
		s.errorResponse(w, http.StatusInternalServerError, "sync failed")
		return
	}

	s.jsonResponse(w, http.StatusOK, counters.Report())
}

// handleListApplications returns stored records, most recently updated first.
func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 500 {
			s.errorResponse(w, http.StatusBadRequest, "limit must be an integer between 1 and 500")
			return
		}
		limit = v
	}

	records, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.log.WithError(err).Error("failed to list applications")
		s.errorResponse(w, http.StatusInternalServerError, "failed to list applications")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"applications": records,
		"count":        len(records),
	})
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// authorized checks the bearer token against the cron secret.
func (s *Server) authorized(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || s.cronSecret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.cronSecret)) == 1
}

// withLogging adds request logging.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Info("request completed")
	})
}

// jsonResponse writes a JSON response.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.WithError(err).Error("failed to encode JSON response")
	}
}

// errorResponse writes an error JSON response.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
