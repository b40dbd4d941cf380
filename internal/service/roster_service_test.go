package service_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/chanpio/honbob/internal/calendar"
	"github.com/chanpio/honbob/internal/mocks"
	"github.com/chanpio/honbob/internal/models"
	"github.com/chanpio/honbob/internal/service"
	"github.com/rs/zerolog"
)

func storedRecord(handle, id, name string, days ...calendar.Weekday) *models.StoredRecord {
	return &models.StoredRecord{
		Handle: handle,
		AvailabilityRecord: models.AvailabilityRecord{
			ID:            id,
			Name:          name,
			AvailableDays: days,
		},
	}
}

func TestRoster_SnapshotFiltersPastDays(t *testing.T) {
	repo := mocks.NewMockRecordRepository()
	ctx := context.Background()

	// Monday and Wednesday are already past on Thursday.
	repo.Put(ctx, storedRecord("h1", "1", "피오", calendar.Mon, calendar.Thu, calendar.Fri))

	roster := service.NewRosterService(repo, testAppConfig(), zerolog.Nop(), fixedClock(thursdayNoon))
	defer roster.Stop()

	snapshot, err := roster.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snapshot.Today != calendar.Thu || snapshot.TodayLabel != "목" {
		t.Errorf("Expected Thu/목, got %s/%s", snapshot.Today, snapshot.TodayLabel)
	}
	if len(snapshot.Entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(snapshot.Entries))
	}

	entry := snapshot.Entries[0]
	want := []calendar.Weekday{calendar.Thu, calendar.Fri}
	if !reflect.DeepEqual(entry.Days, want) {
		t.Errorf("Expected %v with Monday hidden, got %v", want, entry.Days)
	}
	if !reflect.DeepEqual(entry.DayLabels, []string{"목", "금"}) {
		t.Errorf("Expected display labels 목 금, got %v", entry.DayLabels)
	}
}

func TestRoster_LiveProjection(t *testing.T) {
	repo := mocks.NewMockRecordRepository()
	ctx := context.Background()

	roster := service.NewRosterService(repo, testAppConfig(), zerolog.Nop(), fixedClock(thursdayNoon))
	defer roster.Stop()

	var pushed []*models.RosterResponse
	unsubscribe := roster.SubscribeSnapshots(func(s *models.RosterResponse) {
		pushed = append(pushed, s)
	})
	defer unsubscribe()

	// Every mutation pushes a wholesale snapshot.
	repo.Put(ctx, storedRecord("h1", "1", "피오", calendar.Thu))
	repo.Put(ctx, storedRecord("h2", "2", "헌우", calendar.Thu))
	repo.Delete(ctx, "h1")

	if len(pushed) != 3 {
		t.Fatalf("Expected 3 pushed snapshots, got %d", len(pushed))
	}
	last := pushed[2]
	if len(last.Entries) != 1 || last.Entries[0].Name != "헌우" {
		t.Errorf("Expected only 헌우 after delete, got %+v", last.Entries)
	}

	// The in-process projection reflects the last push.
	snapshot, _ := roster.Snapshot(ctx)
	if len(snapshot.Entries) != 1 {
		t.Errorf("Expected projection of 1 entry, got %d", len(snapshot.Entries))
	}
}

func TestRoster_Reserve(t *testing.T) {
	repo := mocks.NewMockRecordRepository()
	ctx := context.Background()

	// A has {Thu, Fri}, B has {Thu}, today is Thu: common = [Thu].
	repo.Put(ctx, storedRecord("h1", "1", "피오", calendar.Thu, calendar.Fri))
	repo.Put(ctx, storedRecord("h2", "2", "헌우", calendar.Thu))

	roster := service.NewRosterService(repo, testAppConfig(), zerolog.Nop(), fixedClock(thursdayNoon))
	defer roster.Stop()

	result, err := roster.Reserve(ctx, &models.ReserveRequest{RecordIDs: []string{"1", "2"}})
	if err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	if !reflect.DeepEqual(result.CommonDays, []calendar.Weekday{calendar.Thu}) {
		t.Errorf("Expected common [Thu], got %v", result.CommonDays)
	}
	if result.NoCommonDay {
		t.Error("Thu is common, NoCommonDay should be false")
	}
	if result.Members != "피오, 헌우" {
		t.Errorf("Expected joined member names, got %q", result.Members)
	}
	if result.View != models.ViewConfirmation {
		t.Errorf("Expected confirmation view, got %s", result.View)
	}

	// Selection order does not change the computed days.
	flipped, err := roster.Reserve(ctx, &models.ReserveRequest{RecordIDs: []string{"2", "1"}})
	if err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	if !reflect.DeepEqual(flipped.CommonDays, result.CommonDays) {
		t.Errorf("Intersection should be order-independent: %v vs %v", flipped.CommonDays, result.CommonDays)
	}
}

func TestRoster_ReserveNoCommonDay(t *testing.T) {
	repo := mocks.NewMockRecordRepository()
	ctx := context.Background()

	// A has {Fri}, B has {Mon}, today is Thu: no common day (Monday
	// is past anyway).
	repo.Put(ctx, storedRecord("h1", "1", "성만", calendar.Fri))
	repo.Put(ctx, storedRecord("h2", "2", "재민", calendar.Mon))

	roster := service.NewRosterService(repo, testAppConfig(), zerolog.Nop(), fixedClock(thursdayNoon))
	defer roster.Stop()

	result, err := roster.Reserve(ctx, &models.ReserveRequest{RecordIDs: []string{"1", "2"}})
	if err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	if !result.NoCommonDay {
		t.Error("Disjoint day sets should report no common day")
	}
	if len(result.CommonDays) != 0 {
		t.Errorf("Expected empty common days, got %v", result.CommonDays)
	}
	if result.Message == "" {
		t.Error("No-common-day must render an explicit message, not blank")
	}
}

func TestRoster_ReserveEmptySelection(t *testing.T) {
	repo := mocks.NewMockRecordRepository()
	roster := service.NewRosterService(repo, testAppConfig(), zerolog.Nop(), fixedClock(thursdayNoon))
	defer roster.Stop()

	_, err := roster.Reserve(context.Background(), &models.ReserveRequest{})
	if !errors.Is(err, service.ErrEmptySelection) {
		t.Errorf("Expected ErrEmptySelection, got %v", err)
	}

	// Ids that vanished from the roster leave an empty selection too.
	_, err = roster.Reserve(context.Background(), &models.ReserveRequest{RecordIDs: []string{"ghost"}})
	if !errors.Is(err, service.ErrEmptySelection) {
		t.Errorf("Expected ErrEmptySelection for unknown ids, got %v", err)
	}
}

func TestCommonAvailableDays_PastDaysExcluded(t *testing.T) {
	// Monday is common in stored data but already past on Thursday.
	records := []*models.StoredRecord{
		storedRecord("h1", "1", "a", calendar.Mon, calendar.Fri),
		storedRecord("h2", "2", "b", calendar.Mon, calendar.Fri),
	}

	got := service.CommonAvailableDays(records, calendar.Thu)
	if !reflect.DeepEqual(got, []calendar.Weekday{calendar.Fri}) {
		t.Errorf("Expected [Fri], got %v", got)
	}
}

func TestCommonAvailableDays_WeekendKeepsWholeWeek(t *testing.T) {
	records := []*models.StoredRecord{
		storedRecord("h1", "1", "a", calendar.Mon, calendar.Fri),
		storedRecord("h2", "2", "b", calendar.Mon, calendar.Fri),
	}

	got := service.CommonAvailableDays(records, calendar.Sun)
	want := []calendar.Weekday{calendar.Mon, calendar.Fri}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("On a weekend no weekday is past; expected %v, got %v", want, got)
	}
}
