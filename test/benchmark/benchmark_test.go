package benchmark

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/chanpio/honbob/internal/calendar"
	"github.com/chanpio/honbob/internal/config"
	"github.com/chanpio/honbob/internal/mocks"
	"github.com/chanpio/honbob/internal/models"
	"github.com/chanpio/honbob/internal/service"
	"github.com/rs/zerolog"
)

// Thursday 2025-04-24 12:00 in UTC+9.
var thursdayNoon = time.Date(2025, 4, 24, 3, 0, 0, 0, time.UTC)

func benchAppConfig() config.AppConfig {
	return config.AppConfig{
		ZoneOffsetMinutes:  9 * 60,
		UndoGrace:          5 * time.Second,
		ResetKeyword:       "초기화",
		ResetCheckInterval: time.Minute,
	}
}

func seedRoster(repo *mocks.MockRecordRepository, n int) {
	dayPool := []calendar.Weekday{calendar.Mon, calendar.Tue, calendar.Wed, calendar.Thu, calendar.Fri}
	for i := 0; i < n; i++ {
		repo.Put(context.Background(), &models.StoredRecord{
			Handle: "handle-" + strconv.Itoa(i),
			AvailabilityRecord: models.AvailabilityRecord{
				ID:            strconv.Itoa(1745470800000 + i),
				Name:          "member-" + strconv.Itoa(i),
				AvailableDays: dayPool[i%3 : i%3+3],
			},
		})
	}
}

// BenchmarkRosterSnapshot benchmarks rendering a full roster snapshot
func BenchmarkRosterSnapshot(b *testing.B) {
	repo := mocks.NewMockRecordRepository()
	seedRoster(repo, 1000)

	clock := func() time.Time { return thursdayNoon }
	roster := service.NewRosterService(repo, benchAppConfig(), zerolog.Nop(), clock)
	defer roster.Stop()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		snapshot, err := roster.Snapshot(context.Background())
		if err != nil {
			b.Fatalf("Snapshot failed: %v", err)
		}
		if len(snapshot.Entries) != 1000 {
			b.Fatalf("Expected 1000 entries, got %d", len(snapshot.Entries))
		}
	}

	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "entries/sec")
}

// BenchmarkCommonAvailableDays benchmarks the selection intersection
func BenchmarkCommonAvailableDays(b *testing.B) {
	dayPool := []calendar.Weekday{calendar.Mon, calendar.Tue, calendar.Wed, calendar.Thu, calendar.Fri}
	selected := make([]*models.StoredRecord, 50)
	for i := range selected {
		selected[i] = &models.StoredRecord{
			Handle: "handle-" + strconv.Itoa(i),
			AvailabilityRecord: models.AvailabilityRecord{
				ID:            strconv.Itoa(i),
				Name:          "member-" + strconv.Itoa(i),
				AvailableDays: dayPool[i%3:],
			},
		}
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		common := service.CommonAvailableDays(selected, calendar.Thu)
		if len(common) == 0 {
			b.Fatal("Expected a non-empty intersection")
		}
	}
}

// BenchmarkReserve benchmarks an end-to-end selection over a live roster
func BenchmarkReserve(b *testing.B) {
	repo := mocks.NewMockRecordRepository()
	seedRoster(repo, 200)

	clock := func() time.Time { return thursdayNoon }
	roster := service.NewRosterService(repo, benchAppConfig(), zerolog.Nop(), clock)
	defer roster.Stop()

	ids := make([]string, 20)
	for i := range ids {
		ids[i] = strconv.Itoa(1745470800000 + i*3)
	}
	req := &models.ReserveRequest{RecordIDs: ids}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := roster.Reserve(context.Background(), req); err != nil {
			b.Fatalf("Reserve failed: %v", err)
		}
	}
}
