package repository

import (
	"context"

	"github.com/chanpio/honbob/internal/database"
	"github.com/chanpio/honbob/internal/models"
	"github.com/rs/zerolog"
)

// RecordRepository is the shared record store: a keyed store of
// availability records addressed by opaque handles, with a live
// subscription over the full record set.
type RecordRepository interface {
	// Put writes the whole record at its handle, creating or
	// overwriting the entry.
	Put(ctx context.Context, record *models.StoredRecord) error

	// GetAll reads every record currently in the store.
	GetAll(ctx context.Context) ([]*models.StoredRecord, error)

	// FindByID scans existing handles for one carrying the given
	// domain id. Returns nil when no handle matches. Handle and id
	// are independent, so upsert-by-id goes through this lookup.
	FindByID(ctx context.Context, id string) (*models.StoredRecord, error)

	// Delete removes the entry at the given handle.
	Delete(ctx context.Context, handle string) error

	// DeleteAll clears the entire roster (weekly reset).
	DeleteAll(ctx context.Context) error

	// Subscribe registers a callback invoked with the full record
	// set whenever it changes. Snapshots replace each other
	// wholesale; callers never see a partially applied update. The
	// returned function unsubscribes. The store never assumes it has
	// a single subscriber.
	Subscribe(onChange func([]*models.StoredRecord)) (unsubscribe func())

	// Close releases the subscription transport.
	Close() error
}

// Repositories holds all repository interfaces
type Repositories struct {
	Records RecordRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB, log zerolog.Logger) (*Repositories, error) {
	records, err := NewRecordRepo(db, log)
	if err != nil {
		return nil, err
	}
	return &Repositories{
		Records: records,
	}, nil
}
