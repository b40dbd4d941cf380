package service_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/chanpio/honbob/internal/calendar"
	"github.com/chanpio/honbob/internal/mocks"
	"github.com/chanpio/honbob/internal/models"
	"github.com/chanpio/honbob/internal/service"
	"github.com/rs/zerolog"
)

func newUndoFixture(grace time.Duration) (service.UndoService, *mocks.MockRecordRepository, *mocks.MockSessionStore) {
	repo := mocks.NewMockRecordRepository()
	sessions := mocks.NewMockSessionStore()
	app := testAppConfig()
	app.UndoGrace = grace
	// The expiry timer runs on real time, so the clock does too.
	undo := service.NewUndoService(repo, sessions, app, zerolog.Nop(), time.Now)
	return undo, repo, sessions
}

func TestUndo_DeleteThenRestore(t *testing.T) {
	undo, repo, sessions := newUndoFixture(5 * time.Second)
	ctx := context.Background()

	v := true
	original := &models.StoredRecord{
		Handle: "handle-1",
		AvailabilityRecord: models.AvailabilityRecord{
			ID:             "100",
			Name:           "피오",
			AvailableToday: &v,
			AvailableDays:  []calendar.Weekday{calendar.Thu, calendar.Fri},
		},
	}
	repo.Put(ctx, original)
	sessions.SetMyRecordID(ctx, "sess-1", "100")

	result, err := undo.Delete(ctx, "sess-1", "100")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !result.UndoAvailable {
		t.Error("Delete should offer undo")
	}
	if repo.Count() != 0 {
		t.Error("Delete must remove the record from the store immediately")
	}
	if myID, _ := sessions.MyRecordID(ctx, "sess-1"); myID != "" {
		t.Error("Deleting own record clears the cached id")
	}

	restored, err := undo.Undo(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if !restored.Restored {
		t.Fatal("Undo within the grace window should restore")
	}

	records, _ := repo.GetAll(ctx)
	if len(records) != 1 {
		t.Fatalf("Expected the record back, got %d records", len(records))
	}
	got := records[0]
	// Restored at the same handle with every field intact.
	if got.Handle != "handle-1" {
		t.Errorf("Expected original handle, got %s", got.Handle)
	}
	if got.AvailabilityRecord.ID != "100" || got.Name != "피오" {
		t.Errorf("Restored fields differ: %+v", got.AvailabilityRecord)
	}
	if got.AvailableToday == nil || !*got.AvailableToday {
		t.Error("Restored today flag differs")
	}
	if !reflect.DeepEqual(got.AvailableDays, []calendar.Weekday{calendar.Thu, calendar.Fri}) {
		t.Errorf("Restored day set differs: %v", got.AvailableDays)
	}

	// The deleter's identity comes back with their record.
	if myID, _ := sessions.MyRecordID(ctx, "sess-1"); myID != "100" {
		t.Errorf("Expected restored cached id 100, got %q", myID)
	}
}

func TestUndo_AfterExpiryIsNoOp(t *testing.T) {
	undo, repo, _ := newUndoFixture(30 * time.Millisecond)
	ctx := context.Background()

	repo.Put(ctx, storedRecord("handle-1", "100", "헌우", calendar.Thu))

	if _, err := undo.Delete(ctx, "sess-1", "100"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	time.Sleep(80 * time.Millisecond)

	result, err := undo.Undo(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if result.Restored {
		t.Error("Undo after the grace window must be a no-op")
	}
	if repo.Count() != 0 {
		t.Error("The deletion is permanent after expiry")
	}

	// A second attempt stays a no-op.
	again, _ := undo.Undo(ctx, "sess-1")
	if again.Restored {
		t.Error("Repeated undo attempts stay no-ops")
	}
}

func TestUndo_SecondDeleteReplacesSlot(t *testing.T) {
	undo, repo, _ := newUndoFixture(5 * time.Second)
	ctx := context.Background()

	repo.Put(ctx, storedRecord("h1", "1", "성만", calendar.Thu))
	repo.Put(ctx, storedRecord("h2", "2", "재민", calendar.Fri))

	if _, err := undo.Delete(ctx, "sess-1", "1"); err != nil {
		t.Fatalf("First delete failed: %v", err)
	}
	if _, err := undo.Delete(ctx, "sess-1", "2"); err != nil {
		t.Fatalf("Second delete failed: %v", err)
	}

	// Only the last delete is undoable; the first snapshot was
	// silently discarded.
	result, err := undo.Undo(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if !result.Restored || result.RecordID != "2" {
		t.Errorf("Expected record 2 restored, got %+v", result)
	}

	records, _ := repo.GetAll(ctx)
	if len(records) != 1 || records[0].AvailabilityRecord.ID != "2" {
		t.Errorf("Record 1 should remain gone, got %+v", records)
	}
}

func TestUndo_DeleteMissingRecord(t *testing.T) {
	undo, _, _ := newUndoFixture(5 * time.Second)

	_, err := undo.Delete(context.Background(), "sess-1", "nope")
	if !errors.Is(err, service.ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}
}

func TestUndo_NothingPending(t *testing.T) {
	undo, _, _ := newUndoFixture(5 * time.Second)

	result, err := undo.Undo(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if result.Restored {
		t.Error("Undo with no pending delete is a no-op")
	}
}

func TestReset_ClearsRosterAndIdentities(t *testing.T) {
	repo := mocks.NewMockRecordRepository()
	sessions := mocks.NewMockSessionStore()
	ctx := context.Background()

	repo.Put(ctx, storedRecord("h1", "1", "피오", calendar.Thu))
	repo.Put(ctx, storedRecord("h2", "2", "헌우", calendar.Fri))
	sessions.SetMyRecordID(ctx, "sess-1", "1")
	sessions.SetMyRecordID(ctx, "sess-2", "2")

	reset := service.NewResetService(repo, sessions, testAppConfig(), zerolog.Nop(), fixedClock(thursdayNoon))
	if err := reset.ResetNow(ctx); err != nil {
		t.Fatalf("ResetNow failed: %v", err)
	}

	if repo.Count() != 0 {
		t.Error("Reset clears the entire roster")
	}
	for _, sid := range []string{"sess-1", "sess-2"} {
		if myID, _ := sessions.MyRecordID(ctx, sid); myID != "" {
			t.Errorf("Reset clears cached id for %s", sid)
		}
	}
}
