package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/chanpio/honbob/internal/calendar"
	"github.com/chanpio/honbob/internal/config"
	"github.com/chanpio/honbob/internal/models"
	"github.com/chanpio/honbob/internal/repository"
	"github.com/chanpio/honbob/internal/session"
	"github.com/chanpio/honbob/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Dialog messages for the non-error submission exits.
const (
	declineMessage = "다음에 함께해요!"
	resetMessage   = "모든 기록을 초기화했어요!"
)

// submissionService is the concrete implementation of SubmissionService
type submissionService struct {
	records  repository.RecordRepository
	sessions session.Store
	reset    ResetService
	app      config.AppConfig
	log      zerolog.Logger
	now      func() time.Time
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(records repository.RecordRepository, sessions session.Store, reset ResetService, app config.AppConfig, log zerolog.Logger, now func() time.Time) SubmissionService {
	return &submissionService{
		records:  records,
		sessions: sessions,
		reset:    reset,
		app:      app,
		log:      log.With().Str("service", "submission").Logger(),
		now:      now,
	}
}

// Submit validates and upserts one user's availability record.
//
// The workflow checks the reset keyword first (administrative
// override, short-circuits everything), then validates, then upserts
// by id: an existing handle carrying the id is overwritten, otherwise
// a fresh handle is created. The lookup-then-write is not
// transactional; two concurrent first submissions under the same id
// can race to create two handles, and the last writer wins.
func (s *submissionService) Submit(ctx context.Context, sessionID string, req *models.SubmitRequest) (*models.SubmitResult, error) {
	today := calendar.At(s.now(), s.app.ZoneOffsetMinutes)

	if validation.IsResetKeyword(req.Name, s.app.ResetKeyword) {
		if err := s.reset.ResetNow(ctx); err != nil {
			return nil, fmt.Errorf("reset failed: %w", err)
		}
		s.log.Info().Msg("Roster reset via keyword")
		return &models.SubmitResult{
			Status:  models.SubmitReset,
			Message: resetMessage,
			View:    models.ViewIntake,
		}, nil
	}

	if err := validation.CheckSubmission(req, today); err != nil {
		if validation.IsGracefulDecline(err) {
			// Not an error: a graceful no-op exit back to intake.
			return &models.SubmitResult{
				Status:  models.SubmitDeclined,
				Message: declineMessage,
				View:    models.ViewIntake,
			}, nil
		}
		return nil, err
	}

	record := s.deriveRecord(req, today)

	// Edit mode writes to the primed handle unconditionally; the
	// normal path reuses the session's cached id when present and
	// scans the store for its handle.
	editing, err := s.sessions.Editing(ctx, sessionID)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to read editing state, treating as new submission")
		editing = nil
	}

	if editing != nil {
		record.ID = editing.ID
		record.Handle = editing.Handle
	} else {
		if err := s.resolveIdentity(ctx, sessionID, record); err != nil {
			return nil, err
		}
	}

	if err := s.records.Put(ctx, record); err != nil {
		// Retryable: the caller keeps the entered field values.
		return nil, fmt.Errorf("failed to write record: %w", err)
	}

	if err := s.sessions.SetMyRecordID(ctx, sessionID, record.ID); err != nil {
		s.log.Warn().Err(err).Str("record_id", record.ID).Msg("Failed to cache record id")
	}
	if editing != nil {
		if err := s.sessions.ClearEditing(ctx, sessionID); err != nil {
			s.log.Warn().Err(err).Msg("Failed to clear editing state")
		}
	}

	s.log.Info().
		Str("record_id", record.ID).
		Str("handle", record.Handle).
		Str("today", string(today)).
		Bool("edit", editing != nil).
		Msg("Record committed")

	return &models.SubmitResult{
		Status:   models.SubmitCommitted,
		RecordID: record.ID,
		View:     models.ViewRoster,
	}, nil
}

// MyRecord returns the session's own record and primes edit mode for
// the next submission, which then writes back to the same handle.
func (s *submissionService) MyRecord(ctx context.Context, sessionID string) (*models.StoredRecord, error) {
	myID, err := s.sessions.MyRecordID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cached record id: %w", err)
	}
	if myID == "" {
		return nil, nil
	}

	record, err := s.records.FindByID(ctx, myID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up record: %w", err)
	}
	if record == nil {
		// The record is gone (deleted or weekly reset); the stale
		// cache entry goes with it.
		if err := s.sessions.ClearMyRecordID(ctx, sessionID); err != nil {
			s.log.Warn().Err(err).Msg("Failed to clear stale record id")
		}
		return nil, nil
	}

	state := &models.EditState{
		Handle: record.Handle,
		ID:     record.ID,
		Name:   record.Name,
		Today:  record.AvailableToday,
		Days:   record.AvailableDays,
	}
	if err := s.sessions.SetEditing(ctx, sessionID, state); err != nil {
		return nil, fmt.Errorf("failed to prime editing state: %w", err)
	}

	return record, nil
}

// deriveRecord builds the persisted form of the submission. On a
// weekend the today flag is forced unset regardless of what the form
// sent, and the day set covers next week.
func (s *submissionService) deriveRecord(req *models.SubmitRequest, today calendar.Weekday) *models.StoredRecord {
	record := &models.StoredRecord{
		AvailabilityRecord: models.AvailabilityRecord{
			Name:          req.Name,
			AvailableDays: models.NormalizeDays(req.AvailableDays),
		},
	}

	if !calendar.IsWeekend(today) && req.AvailableToday != nil {
		v := *req.AvailableToday
		record.AvailableToday = &v
		record.AvailableDays = models.ApplyTodayChoice(record.AvailableDays, today, v)
	}

	return record
}

// resolveIdentity fills in the record's id and handle: the session's
// cached id when present (overwriting its existing handle, if any),
// otherwise a fresh timestamp-derived id under a fresh handle.
func (s *submissionService) resolveIdentity(ctx context.Context, sessionID string, record *models.StoredRecord) error {
	myID, err := s.sessions.MyRecordID(ctx, sessionID)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to read cached record id, assigning a new one")
		myID = ""
	}

	if myID == "" {
		record.ID = strconv.FormatInt(s.now().UnixMilli(), 10)
		record.Handle = uuid.NewString()
		return nil
	}

	record.ID = myID
	existing, err := s.records.FindByID(ctx, myID)
	if err != nil {
		return fmt.Errorf("failed to look up record: %w", err)
	}
	if existing != nil {
		record.Handle = existing.Handle
	} else {
		record.Handle = uuid.NewString()
	}
	return nil
}
