// Package startup brings the vector indexes to a queryable state and tracks
// initialization as an explicit state machine, so request handlers can gate
// on readiness instead of racing the bootstrap.
package startup

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// State is the initialization lifecycle.
type State string

const (
	// StateNotStarted means initialization has not been triggered yet.
	StateNotStarted State = "not_started"
	// StateInProgress means a bootstrap attempt is running.
	StateInProgress State = "in_progress"
	// StateReady means all targets are queryable.
	StateReady State = "ready"
	// StateFailed means the last attempt failed; Run can be called again.
	StateFailed State = "failed"
)

// Initializer is one bootstrap target, typically a vector index.
type Initializer interface {
	EnsureReady(ctx context.Context) error
}

// Target pairs an initializer with a name for logs and status reports.
type Target struct {
	Name string
	Init Initializer
}

// Service runs initialization exactly once at a time.
type Service struct {
	targets []Target
	logger  *zap.Logger

	mu      sync.Mutex
	state   State
	lastErr error
}

// New creates a startup service in the not-started state.
func New(targets []Target, logger *zap.Logger) *Service {
	return &Service{targets: targets, logger: logger, state: StateNotStarted}
}

// Run initializes all targets in order. A call while another attempt is in
// progress, or after success, returns immediately without side effects. After
// a failure the next call starts a fresh attempt.
func (s *Service) Run(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateInProgress:
		s.mu.Unlock()
		return nil
	case StateReady:
		s.mu.Unlock()
		return nil
	}
	s.state = StateInProgress
	s.lastErr = nil
	s.mu.Unlock()

	for _, t := range s.targets {
		s.logger.Info("initializing", zap.String("target", t.Name))
		if err := t.Init.EnsureReady(ctx); err != nil {
			wrapped := fmt.Errorf("initialize %s: %w", t.Name, err)
			s.logger.Error("initialization failed",
				zap.String("target", t.Name), zap.Error(err))

			s.mu.Lock()
			s.state = StateFailed
			s.lastErr = wrapped
			s.mu.Unlock()
			return wrapped
		}
	}

	s.mu.Lock()
	s.state = StateReady
	s.mu.Unlock()
	s.logger.Info("initialization complete", zap.Int("targets", len(s.targets)))
	return nil
}

// State reports the current lifecycle state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ready reports whether all targets are queryable.
func (s *Service) Ready() bool {
	return s.State() == StateReady
}

// LastError returns the error of the most recent failed attempt, nil
// otherwise.
func (s *Service) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
