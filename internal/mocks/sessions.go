package mocks

import (
	"context"
	"sync"

	"github.com/chanpio/honbob/internal/models"
)

// MockSessionStore is an in-memory implementation of session.Store.
type MockSessionStore struct {
	mu         sync.Mutex
	myRecords  map[string]string
	editStates map[string]*models.EditState

	GetError error
	SetError error
}

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{
		myRecords:  make(map[string]string),
		editStates: make(map[string]*models.EditState),
	}
}

func (m *MockSessionStore) MyRecordID(ctx context.Context, sessionID string) (string, error) {
	if m.GetError != nil {
		return "", m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.myRecords[sessionID], nil
}

func (m *MockSessionStore) SetMyRecordID(ctx context.Context, sessionID, recordID string) error {
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.myRecords[sessionID] = recordID
	return nil
}

func (m *MockSessionStore) ClearMyRecordID(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.myRecords, sessionID)
	return nil
}

func (m *MockSessionStore) Editing(ctx context.Context, sessionID string) (*models.EditState, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.editStates[sessionID], nil
}

func (m *MockSessionStore) SetEditing(ctx context.Context, sessionID string, state *models.EditState) error {
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.editStates[sessionID] = state
	return nil
}

func (m *MockSessionStore) ClearEditing(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.editStates, sessionID)
	return nil
}

func (m *MockSessionStore) ClearAllMyRecords(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.myRecords = make(map[string]string)
	return nil
}
