// Package http exposes the operational surface of the bot: banner, health,
// initialization status, and a manual processing trigger.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	healthuc "github.com/kailas-cloud/mailbot/internal/usecase/health"
	"github.com/kailas-cloud/mailbot/internal/usecase/startup"
	"github.com/kailas-cloud/mailbot/internal/version"
)

// Trigger requests an immediate processing cycle.
type Trigger interface {
	TriggerNow()
}

// StatusReporter reports initialization progress.
type StatusReporter interface {
	State() startup.State
	LastError() error
}

// Server holds the HTTP handlers.
type Server struct {
	health  *healthuc.Service
	status  StatusReporter
	trigger Trigger
	logger  *zap.Logger
}

// NewServer creates the operational HTTP server.
func NewServer(health *healthuc.Service, status StatusReporter, trigger Trigger, logger *zap.Logger) *Server {
	return &Server{health: health, status: status, trigger: trigger, logger: logger}
}

// Routes mounts all handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/", s.handleRoot)
	r.Get("/healthz", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Post("/process", s.handleProcess)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "mailbot",
		"version": version.Version,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"init":   report.Init,
		"checks": report.Checks,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{
		"state": s.status.State(),
	}
	if err := s.status.LastError(); err != nil {
		resp["last_error"] = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleProcess triggers a cycle and returns immediately; processing runs in
// the poll loop's goroutine.
func (s *Server) handleProcess(w http.ResponseWriter, _ *http.Request) {
	s.trigger.TriggerNow()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "triggered"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
