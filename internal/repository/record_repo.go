package repository

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/chanpio/honbob/internal/calendar"
	"github.com/chanpio/honbob/internal/database"
	"github.com/chanpio/honbob/internal/models"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// notifyChannel is the Postgres NOTIFY channel raised by the records
// table trigger on every change.
const notifyChannel = "records_changed"

// recordRepo is the Postgres-backed implementation of
// RecordRepository. Realtime subscription rides on LISTEN/NOTIFY: a
// dedicated listener connection re-reads the full record set on every
// notification and fans the snapshot out to subscribers.
type recordRepo struct {
	db  *database.DB
	log zerolog.Logger

	mu      sync.Mutex
	subs    map[int]func([]*models.StoredRecord)
	nextSub int

	listener *pq.Listener
	done     chan struct{}
}

// NewRecordRepo creates the record repository and starts its
// notification loop.
func NewRecordRepo(db *database.DB, log zerolog.Logger) (RecordRepository, error) {
	listener, err := db.NewListener(notifyChannel)
	if err != nil {
		return nil, err
	}

	r := &recordRepo{
		db:       db,
		log:      log.With().Str("repository", "records").Logger(),
		subs:     make(map[int]func([]*models.StoredRecord)),
		listener: listener,
		done:     make(chan struct{}),
	}

	go r.listen()
	return r, nil
}

// Put writes the whole record at its handle
func (r *recordRepo) Put(ctx context.Context, record *models.StoredRecord) error {
	query := `
		INSERT INTO records (handle, id, name, available_today, available_days, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		ON CONFLICT (handle) DO UPDATE SET
			id = EXCLUDED.id,
			name = EXCLUDED.name,
			available_today = EXCLUDED.available_today,
			available_days = EXCLUDED.available_days,
			updated_at = now()
	`
	_, err := r.db.ExecContext(ctx, query,
		record.Handle, record.ID, record.Name,
		todayValue(record.AvailableToday), pq.Array(daysToStrings(record.AvailableDays)),
	)
	return err
}

// GetAll reads every record currently in the store
func (r *recordRepo) GetAll(ctx context.Context) ([]*models.StoredRecord, error) {
	query := `SELECT handle, id, name, available_today, available_days FROM records ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.StoredRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// FindByID scans handles for one carrying the given domain id
func (r *recordRepo) FindByID(ctx context.Context, id string) (*models.StoredRecord, error) {
	query := `SELECT handle, id, name, available_today, available_days FROM records WHERE id = $1 LIMIT 1`

	row := r.db.QueryRowContext(ctx, query, id)
	record, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Delete removes the entry at the given handle
func (r *recordRepo) Delete(ctx context.Context, handle string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM records WHERE handle = $1", handle)
	return err
}

// DeleteAll clears the entire roster
func (r *recordRepo) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM records")
	return err
}

// Subscribe registers a live full-snapshot callback
func (r *recordRepo) Subscribe(onChange func([]*models.StoredRecord)) func() {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = onChange
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}

// Close stops the notification loop and closes the listener
func (r *recordRepo) Close() error {
	close(r.done)
	return r.listener.Close()
}

// listen dispatches a fresh snapshot to subscribers on every
// notification. The periodic Ping keeps the listener connection
// honest across idle stretches.
func (r *recordRepo) listen() {
	for {
		select {
		case <-r.done:
			return
		case n := <-r.listener.Notify:
			if n == nil {
				// nil is delivered on reconnect; the set may have
				// changed while we were away.
				r.dispatch()
				continue
			}
			r.dispatch()
		case <-time.After(90 * time.Second):
			if err := r.listener.Ping(); err != nil {
				r.log.Error().Err(err).Msg("Listener ping failed")
			}
		}
	}
}

// dispatch reads the full record set and hands it to every
// subscriber. Each subscriber gets the same wholesale snapshot.
func (r *recordRepo) dispatch() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	records, err := r.GetAll(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to read records for dispatch")
		return
	}

	r.mu.Lock()
	subs := make([]func([]*models.StoredRecord), 0, len(r.subs))
	for _, fn := range r.subs {
		subs = append(subs, fn)
	}
	r.mu.Unlock()

	for _, fn := range subs {
		fn(records)
	}
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (*models.StoredRecord, error) {
	var record models.StoredRecord
	var today sql.NullBool
	var days pq.StringArray

	if err := s.Scan(&record.Handle, &record.ID, &record.Name, &today, &days); err != nil {
		return nil, err
	}

	if today.Valid {
		v := today.Bool
		record.AvailableToday = &v
	}
	record.AvailableDays = stringsToDays(days)
	return &record, nil
}

func todayValue(today *bool) sql.NullBool {
	if today == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *today, Valid: true}
}

func daysToStrings(days []calendar.Weekday) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = string(d)
	}
	return out
}

func stringsToDays(values []string) []calendar.Weekday {
	out := make([]calendar.Weekday, 0, len(values))
	for _, v := range values {
		d := calendar.Weekday(v)
		if calendar.IsValid(d) {
			out = append(out, d)
		}
	}
	return out
}
