// Package scheduler runs periodic maintenance for open grid sessions.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SessionEvictor drops sessions idle past their TTL and returns their ids
type SessionEvictor interface {
	EvictIdle() []string
}

// SessionSweeper evicts idle grid sessions on a cron schedule
type SessionSweeper struct {
	spec    string
	evictor SessionEvictor
	logger  *zap.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	swept   int
	running bool
}

// NewSessionSweeper creates a sweeper. An empty spec disables it.
func NewSessionSweeper(spec string, evictor SessionEvictor, logger *zap.Logger) *SessionSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionSweeper{spec: spec, evictor: evictor, logger: logger.Named("session_sweeper")}
}

// Start schedules the sweep. It returns immediately.
func (s *SessionSweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.spec == "" {
		s.logger.Info("Session sweeper disabled")
		return nil
	}
	if s.running {
		return ErrAlreadyRunning
	}

	cronLogger := cronLogger{logger: s.logger}
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	if _, err := c.AddFunc(s.spec, func() { s.Sweep() }); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidSchedule, s.spec, err)
	}
	c.Start()

	s.cron = c
	s.running = true
	s.logger.Info("Session sweeper started", zap.String("schedule", s.spec))
	return nil
}

// Stop halts the schedule and waits for a running sweep or ctx.
func (s *SessionSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	c := s.cron
	s.mu.Unlock()

	select {
	case <-c.Stop().Done():
		s.logger.Info("Session sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Sweep evicts idle sessions once and returns how many were dropped
func (s *SessionSweeper) Sweep() int {
	evicted := s.evictor.EvictIdle()

	s.mu.Lock()
	s.swept += len(evicted)
	s.mu.Unlock()

	if len(evicted) > 0 {
		s.logger.Debug("Swept idle sessions", zap.Int("count", len(evicted)))
	}
	return len(evicted)
}

// Swept returns the total number of sessions evicted so far
func (s *SessionSweeper) Swept() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.swept
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
