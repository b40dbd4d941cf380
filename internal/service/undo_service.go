package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chanpio/honbob/internal/config"
	"github.com/chanpio/honbob/internal/models"
	"github.com/chanpio/honbob/internal/repository"
	"github.com/chanpio/honbob/internal/session"
	"github.com/rs/zerolog"
)

const (
	deleteMessage    = "삭제했어요. 잠시 동안 되돌릴 수 있어요."
	undoneMessage    = "기록을 되돌렸어요!"
	nothingToUndoMsg = "되돌릴 수 있는 기록이 없어요"
)

// ErrRecordNotFound is returned when a delete targets a record no
// longer in the store.
var ErrRecordNotFound = errors.New("record not found")

// pendingDelete is the local-only snapshot retained after a delete:
// the full field set plus the original handle, so undo restores the
// record indistinguishably from its pre-delete state.
type pendingDelete struct {
	snapshot models.StoredRecord
	wasMine  bool
	expires  time.Time
	timer    *time.Timer
}

// undoService is the concrete implementation of UndoService. Each
// session holds at most one pending-undo slot; a second delete before
// the first's window elapses silently replaces it.
type undoService struct {
	records  repository.RecordRepository
	sessions session.Store
	app      config.AppConfig
	log      zerolog.Logger
	now      func() time.Time

	mu      sync.Mutex
	pending map[string]*pendingDelete
}

// NewUndoService creates a new UndoService
func NewUndoService(records repository.RecordRepository, sessions session.Store, app config.AppConfig, log zerolog.Logger, now func() time.Time) UndoService {
	return &undoService{
		records:  records,
		sessions: sessions,
		app:      app,
		log:      log.With().Str("service", "undo").Logger(),
		now:      now,
		pending:  make(map[string]*pendingDelete),
	}
}

// Delete removes the record from the shared store immediately —
// visible to every viewer — and retains the deleter's local snapshot
// for the grace window.
func (s *undoService) Delete(ctx context.Context, sessionID, recordID string) (*models.DeleteResponse, error) {
	record, err := s.records.FindByID(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up record: %w", err)
	}
	if record == nil {
		return nil, ErrRecordNotFound
	}

	myID, err := s.sessions.MyRecordID(ctx, sessionID)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to read cached record id")
		myID = ""
	}
	wasMine := myID != "" && myID == recordID

	if err := s.records.Delete(ctx, record.Handle); err != nil {
		return nil, fmt.Errorf("failed to delete record: %w", err)
	}
	if wasMine {
		if err := s.sessions.ClearMyRecordID(ctx, sessionID); err != nil {
			s.log.Warn().Err(err).Msg("Failed to clear cached record id")
		}
	}

	deadline := s.now().Add(s.app.UndoGrace)
	p := &pendingDelete{
		snapshot: models.StoredRecord{
			Handle:             record.Handle,
			AvailabilityRecord: record.AvailabilityRecord.Clone(),
		},
		wasMine: wasMine,
		expires: deadline,
	}

	s.mu.Lock()
	if old := s.pending[sessionID]; old != nil && old.timer != nil {
		// Last-delete-undoable-only: the earlier snapshot is
		// discarded without notice.
		old.timer.Stop()
	}
	s.pending[sessionID] = p
	p.timer = time.AfterFunc(s.app.UndoGrace, func() { s.expire(sessionID, p) })
	s.mu.Unlock()

	s.log.Info().
		Str("record_id", recordID).
		Str("handle", record.Handle).
		Bool("was_mine", wasMine).
		Time("undo_deadline", deadline).
		Msg("Record deleted, undo pending")

	return &models.DeleteResponse{
		RecordID:      recordID,
		Message:       deleteMessage,
		UndoDeadline:  deadline,
		UndoAvailable: true,
	}, nil
}

// Undo restores the pending snapshot at its original handle. After
// the grace window it is a no-op; the store keeps no trash.
func (s *undoService) Undo(ctx context.Context, sessionID string) (*models.UndoResponse, error) {
	s.mu.Lock()
	p := s.pending[sessionID]
	if p == nil || s.now().After(p.expires) {
		s.mu.Unlock()
		return &models.UndoResponse{Restored: false, Message: nothingToUndoMsg}, nil
	}
	delete(s.pending, sessionID)
	if p.timer != nil {
		p.timer.Stop()
	}
	s.mu.Unlock()

	if err := s.records.Put(ctx, &p.snapshot); err != nil {
		// Put the slot back so the user can retry within the window.
		s.mu.Lock()
		s.pending[sessionID] = p
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to restore record: %w", err)
	}

	if p.wasMine {
		if err := s.sessions.SetMyRecordID(ctx, sessionID, p.snapshot.ID); err != nil {
			s.log.Warn().Err(err).Msg("Failed to restore cached record id")
		}
	}

	s.log.Info().
		Str("record_id", p.snapshot.ID).
		Str("handle", p.snapshot.Handle).
		Msg("Record restored")

	return &models.UndoResponse{
		Restored: true,
		RecordID: p.snapshot.ID,
		Message:  undoneMessage,
	}, nil
}

// expire discards the snapshot once the grace window elapses, making
// the deletion irreversible.
func (s *undoService) expire(sessionID string, p *pendingDelete) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Only clear the slot if it still holds this snapshot; a newer
	// delete may have replaced it.
	if s.pending[sessionID] == p {
		delete(s.pending, sessionID)
	}
}
