package service

import (
	"context"
	"time"

	"github.com/chanpio/honbob/internal/config"
	"github.com/chanpio/honbob/internal/models"
	"github.com/chanpio/honbob/internal/repository"
	"github.com/chanpio/honbob/internal/session"
	"github.com/rs/zerolog"
)

// SubmissionService runs the intake workflow: validate one user's
// availability and upsert it into the shared store.
type SubmissionService interface {
	Submit(ctx context.Context, sessionID string, req *models.SubmitRequest) (*models.SubmitResult, error)
	MyRecord(ctx context.Context, sessionID string) (*models.StoredRecord, error)
}

// RosterService maintains the live roster projection and computes
// lunch appointments over a selection.
type RosterService interface {
	Snapshot(ctx context.Context) (*models.RosterResponse, error)
	Reserve(ctx context.Context, req *models.ReserveRequest) (*models.ReserveResponse, error)
	SubscribeSnapshots(onChange func(*models.RosterResponse)) (unsubscribe func())
	Stop()
}

// UndoService implements soft delete with a single per-session
// pending-undo slot.
type UndoService interface {
	Delete(ctx context.Context, sessionID, recordID string) (*models.DeleteResponse, error)
	Undo(ctx context.Context, sessionID string) (*models.UndoResponse, error)
}

// ResetService clears the whole roster, either on the weekly
// Saturday 00:00 trigger or on demand via the reset keyword.
type ResetService interface {
	Start(ctx context.Context)
	Stop()
	ResetNow(ctx context.Context) error
}

// Services holds all service interfaces
type Services struct {
	Submission SubmissionService
	Roster     RosterService
	Undo       UndoService
	Reset      ResetService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, sessions session.Store, cfg *config.Config, log zerolog.Logger) *Services {
	clock := time.Now

	resetSvc := NewResetService(repos.Records, sessions, cfg.App, log, clock)
	submissionSvc := NewSubmissionService(repos.Records, sessions, resetSvc, cfg.App, log, clock)
	rosterSvc := NewRosterService(repos.Records, cfg.App, log, clock)
	undoSvc := NewUndoService(repos.Records, sessions, cfg.App, log, clock)

	return &Services{
		Submission: submissionSvc,
		Roster:     rosterSvc,
		Undo:       undoSvc,
		Reset:      resetSvc,
	}
}
