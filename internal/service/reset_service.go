package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chanpio/honbob/internal/calendar"
	"github.com/chanpio/honbob/internal/config"
	"github.com/chanpio/honbob/internal/repository"
	"github.com/chanpio/honbob/internal/session"
	"github.com/rs/zerolog"
)

// resetService is the concrete implementation of ResetService. A
// once-per-minute tick checks for Saturday 00:00 in the reference
// zone; the minute-wide window means the trigger fires exactly once
// per week.
type resetService struct {
	records  repository.RecordRepository
	sessions session.Store
	app      config.AppConfig
	log      zerolog.Logger
	now      func() time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	running bool
	mu      sync.Mutex
}

// NewResetService creates a new ResetService
func NewResetService(records repository.RecordRepository, sessions session.Store, app config.AppConfig, log zerolog.Logger, now func() time.Time) ResetService {
	return &resetService{
		records:  records,
		sessions: sessions,
		app:      app,
		log:      log.With().Str("service", "reset").Logger(),
		now:      now,
	}
}

// Start runs the periodic reset check until the context is cancelled
// or Stop is called. It is the only autonomous background activity.
func (s *resetService) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.log.Info().Dur("interval", s.app.ResetCheckInterval).Msg("Reset checker started")

	ticker := time.NewTicker(s.app.ResetCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.log.Info().Msg("Reset checker stopping")
			return
		case <-ticker.C:
			if calendar.IsResetMoment(s.now(), s.app.ZoneOffsetMinutes) {
				if err := s.ResetNow(s.ctx); err != nil {
					s.log.Error().Err(err).Msg("Weekly reset failed")
				}
			}
		}
	}
}

// Stop stops the periodic reset check
func (s *resetService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.cancel()
	s.running = false
	s.log.Info().Msg("Reset checker stopped")
}

// ResetNow clears the entire roster and every session's cached
// record id. A submission in flight at the same moment is not ordered
// against the reset; the last writer wins.
func (s *resetService) ResetNow(ctx context.Context) error {
	if err := s.records.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear roster: %w", err)
	}

	if err := s.sessions.ClearAllMyRecords(ctx); err != nil {
		// The roster is already gone; stale cache entries resolve to
		// missing records and get cleared lazily.
		s.log.Warn().Err(err).Msg("Failed to clear cached record ids")
	}

	s.log.Info().Msg("Roster cleared")
	return nil
}
