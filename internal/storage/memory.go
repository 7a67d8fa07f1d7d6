package storage

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"skillpath_quiz/internal/core"
	"skillpath_quiz/internal/quizerr"
)

// MemoryProgressStore keeps encoded session records in process memory. It
// goes through the same codec as the Redis store.
type MemoryProgressStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemoryProgressStore creates an empty in-memory progress store.
func NewMemoryProgressStore() *MemoryProgressStore {
	return &MemoryProgressStore{records: make(map[string][]byte)}
}

// Save stores or replaces the session of s.UserID.
func (m *MemoryProgressStore) Save(ctx context.Context, s core.Session) error {
	if s.UserID == "" {
		return quizerr.New(quizerr.CodeInvalidArgument, "user id cannot be empty")
	}
	data, err := EncodeSession(s)
	if err != nil {
		return quizerr.Wrap(quizerr.CodeStorage, "save session", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[s.UserID] = data
	return nil
}

// Load returns the stored session of userID.
func (m *MemoryProgressStore) Load(ctx context.Context, userID string) (core.Session, error) {
	m.mu.RLock()
	data, ok := m.records[userID]
	m.mu.RUnlock()
	if !ok {
		return core.Session{}, quizerr.New(quizerr.CodeSessionNotFound,
			fmt.Sprintf("no active quiz for user %s", userID))
	}

	s, err := DecodeSession(data)
	if err != nil {
		return core.Session{}, quizerr.Wrap(quizerr.CodeStorage, "load session", err)
	}
	return s, nil
}

// Delete removes the session of userID. Deleting a missing session is not an error.
func (m *MemoryProgressStore) Delete(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, userID)
	return nil
}

// MemoryResultStore is an in-process result history.
type MemoryResultStore struct {
	mu      sync.RWMutex
	results map[string][]core.Result
}

// NewMemoryResultStore creates an empty in-memory result history.
func NewMemoryResultStore() *MemoryResultStore {
	return &MemoryResultStore{results: make(map[string][]core.Result)}
}

// Append records a finished quiz. A result id already recorded is ignored.
func (m *MemoryResultStore) Append(ctx context.Context, r core.Result) error {
	if r.UserID == "" {
		return quizerr.New(quizerr.CodeInvalidArgument, "user id cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if hasResult(m.results[r.UserID], r.ID) {
		return nil
	}
	m.results[r.UserID] = append(m.results[r.UserID], r)
	return nil
}

// List returns the results of userID, newest first.
func (m *MemoryResultStore) List(ctx context.Context, userID string, limit int) ([]core.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return newestFirst(slices.Clone(m.results[userID]), limit), nil
}
