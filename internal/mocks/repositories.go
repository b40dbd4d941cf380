package mocks

import (
	"context"
	"sync"

	"github.com/chanpio/honbob/internal/models"
)

// MockRecordRepository is an in-memory implementation of
// repository.RecordRepository. Mutations push a full snapshot to
// subscribers synchronously, mimicking the store's realtime channel.
type MockRecordRepository struct {
	mu      sync.Mutex
	records map[string]*models.StoredRecord
	order   []string

	subs    map[int]func([]*models.StoredRecord)
	nextSub int

	PutError    error
	GetError    error
	DeleteError error

	PutCalls    int
	DeleteCalls int
}

func NewMockRecordRepository() *MockRecordRepository {
	return &MockRecordRepository{
		records: make(map[string]*models.StoredRecord),
		subs:    make(map[int]func([]*models.StoredRecord)),
	}
}

func (m *MockRecordRepository) Put(ctx context.Context, record *models.StoredRecord) error {
	if m.PutError != nil {
		return m.PutError
	}

	m.mu.Lock()
	m.PutCalls++
	copied := &models.StoredRecord{
		Handle:             record.Handle,
		AvailabilityRecord: record.AvailabilityRecord.Clone(),
	}
	if _, exists := m.records[record.Handle]; !exists {
		m.order = append(m.order, record.Handle)
	}
	m.records[record.Handle] = copied
	m.mu.Unlock()

	m.notify()
	return nil
}

func (m *MockRecordRepository) GetAll(ctx context.Context) ([]*models.StoredRecord, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(), nil
}

func (m *MockRecordRepository) FindByID(ctx context.Context, id string) (*models.StoredRecord, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, handle := range m.order {
		if r := m.records[handle]; r != nil && r.AvailabilityRecord.ID == id {
			copied := &models.StoredRecord{
				Handle:             r.Handle,
				AvailabilityRecord: r.AvailabilityRecord.Clone(),
			}
			return copied, nil
		}
	}
	return nil, nil
}

func (m *MockRecordRepository) Delete(ctx context.Context, handle string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}

	m.mu.Lock()
	m.DeleteCalls++
	delete(m.records, handle)
	for i, h := range m.order {
		if h == handle {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.mu.Unlock()

	m.notify()
	return nil
}

func (m *MockRecordRepository) DeleteAll(ctx context.Context) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}

	m.mu.Lock()
	m.records = make(map[string]*models.StoredRecord)
	m.order = nil
	m.mu.Unlock()

	m.notify()
	return nil
}

func (m *MockRecordRepository) Subscribe(onChange func([]*models.StoredRecord)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = onChange
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *MockRecordRepository) Close() error { return nil }

// Count returns the number of stored records.
func (m *MockRecordRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func (m *MockRecordRepository) notify() {
	m.mu.Lock()
	snapshot := m.snapshotLocked()
	subs := make([]func([]*models.StoredRecord), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

func (m *MockRecordRepository) snapshotLocked() []*models.StoredRecord {
	out := make([]*models.StoredRecord, 0, len(m.order))
	for _, handle := range m.order {
		r := m.records[handle]
		out = append(out, &models.StoredRecord{
			Handle:             r.Handle,
			AvailabilityRecord: r.AvailabilityRecord.Clone(),
		})
	}
	return out
}
