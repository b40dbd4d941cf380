package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chanpio/honbob/internal/calendar"
	"github.com/chanpio/honbob/internal/config"
	"github.com/chanpio/honbob/internal/models"
	"github.com/chanpio/honbob/internal/repository"
	"github.com/rs/zerolog"
)

// memberDelimiter joins the selected members' names in the
// confirmation view.
const memberDelimiter = ", "

const (
	reserveMessage     = "점약이 완료되었습니다!"
	noCommonDayMessage = "겹치는 요일이 없어요"
)

// ErrEmptySelection rejects a reservation with no members selected.
var ErrEmptySelection = errors.New("selection is empty")

// rosterService is the concrete implementation of RosterService. It
// holds a live projection of the shared store, replaced wholesale on
// every upstream change.
type rosterService struct {
	records repository.RecordRepository
	app     config.AppConfig
	log     zerolog.Logger
	now     func() time.Time

	mu         sync.RWMutex
	projection []*models.StoredRecord
	loaded     bool

	subMu   sync.Mutex
	subs    map[int]func(*models.RosterResponse)
	nextSub int

	unsubscribe func()
}

// NewRosterService creates a roster service subscribed to the store
func NewRosterService(records repository.RecordRepository, app config.AppConfig, log zerolog.Logger, now func() time.Time) RosterService {
	s := &rosterService{
		records: records,
		app:     app,
		log:     log.With().Str("service", "roster").Logger(),
		now:     now,
		subs:    make(map[int]func(*models.RosterResponse)),
	}

	s.unsubscribe = records.Subscribe(s.onChange)
	return s
}

// Stop detaches the roster from the store subscription
func (s *rosterService) Stop() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// onChange replaces the projection with the upstream snapshot and
// fans the rendered roster out to snapshot subscribers.
func (s *rosterService) onChange(records []*models.StoredRecord) {
	s.mu.Lock()
	s.projection = records
	s.loaded = true
	s.mu.Unlock()

	response := s.render(records)

	s.subMu.Lock()
	subs := make([]func(*models.RosterResponse), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(response)
	}
}

// SubscribeSnapshots registers a callback for rendered roster
// snapshots, for the event-stream surface.
func (s *rosterService) SubscribeSnapshots(onChange func(*models.RosterResponse)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = onChange
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// current returns the projection, falling back to a one-shot read
// before the first push arrives.
func (s *rosterService) current(ctx context.Context) ([]*models.StoredRecord, error) {
	s.mu.RLock()
	records, loaded := s.projection, s.loaded
	s.mu.RUnlock()

	if loaded {
		return records, nil
	}

	records, err := s.records.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}
	s.mu.Lock()
	if !s.loaded {
		s.projection = records
		s.loaded = true
	}
	s.mu.Unlock()
	return records, nil
}

// Snapshot returns the current roster.
func (s *rosterService) Snapshot(ctx context.Context) (*models.RosterResponse, error) {
	records, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return s.render(records), nil
}

// Reserve computes the confirmation for a non-empty selection: the
// intersection of the selected members' day sets, minus days already
// past, and the member names joined by a fixed delimiter. Read-only.
func (s *rosterService) Reserve(ctx context.Context, req *models.ReserveRequest) (*models.ReserveResponse, error) {
	if len(req.RecordIDs) == 0 {
		return nil, ErrEmptySelection
	}

	records, err := s.current(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.StoredRecord, len(records))
	for _, r := range records {
		byID[r.AvailabilityRecord.ID] = r
	}

	selected := make([]*models.StoredRecord, 0, len(req.RecordIDs))
	names := make([]string, 0, len(req.RecordIDs))
	seen := make(map[string]bool, len(req.RecordIDs))
	for _, id := range req.RecordIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		record, ok := byID[id]
		if !ok {
			// Deleted between render and reserve; drop it from the
			// selection rather than failing the whole group.
			s.log.Warn().Str("record_id", id).Msg("Selected record no longer in roster")
			continue
		}
		selected = append(selected, record)
		names = append(names, record.Name)
	}

	if len(selected) == 0 {
		return nil, ErrEmptySelection
	}

	today := calendar.At(s.now(), s.app.ZoneOffsetMinutes)
	common := CommonAvailableDays(selected, today)

	response := &models.ReserveResponse{
		CommonDays:      common,
		CommonDayLabels: labels(common),
		NoCommonDay:     len(common) == 0,
		Members:         strings.Join(names, memberDelimiter),
		Message:         reserveMessage,
		View:            models.ViewConfirmation,
	}
	if response.NoCommonDay {
		response.Message = noCommonDayMessage
	}
	return response, nil
}

// CommonAvailableDays intersects the selected records' day sets and
// drops days already past this week. The result follows the fixed
// Mon..Fri order, so selection order never matters.
func CommonAvailableDays(selected []*models.StoredRecord, today calendar.Weekday) []calendar.Weekday {
	common := make([]calendar.Weekday, 0, len(calendar.WeekOrder))
	for _, d := range calendar.WeekOrder {
		if calendar.IsPastDay(d, today) {
			continue
		}
		all := true
		for _, r := range selected {
			if !r.HasDay(d) {
				all = false
				break
			}
		}
		if all {
			common = append(common, d)
		}
	}
	return common
}

// render builds the roster view: display labels applied and each
// member's already-past days hidden.
func (s *rosterService) render(records []*models.StoredRecord) *models.RosterResponse {
	today := calendar.At(s.now(), s.app.ZoneOffsetMinutes)

	entries := make([]models.RosterEntry, 0, len(records))
	for _, r := range records {
		days := make([]calendar.Weekday, 0, len(r.AvailableDays))
		for _, d := range r.AvailableDays {
			if calendar.IsPastDay(d, today) {
				continue
			}
			days = append(days, d)
		}

		entries = append(entries, models.RosterEntry{
			ID:        r.AvailabilityRecord.ID,
			Name:      r.Name,
			Days:      days,
			DayLabels: labels(days),
			Today:     r.AvailableToday != nil && *r.AvailableToday,
		})
	}

	return &models.RosterResponse{
		Today:      today,
		TodayLabel: calendar.Label(today),
		Weekend:    calendar.IsWeekend(today),
		Entries:    entries,
	}
}

func labels(days []calendar.Weekday) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = calendar.Label(d)
	}
	return out
}
