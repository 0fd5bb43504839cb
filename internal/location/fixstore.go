package location

import (
	"context"
	"sync"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// MemoryFixStore is a process-local FixStore. Suitable for tests and
// single-instance deployments; multi-instance deployments should use the
// database-backed store instead.
type MemoryFixStore struct {
	mu    sync.RWMutex
	fixes map[string]domain.KnownFix
}

// NewMemoryFixStore creates an empty in-memory fix store.
func NewMemoryFixStore() *MemoryFixStore {
	return &MemoryFixStore{fixes: make(map[string]domain.KnownFix)}
}

// LastFix implements FixStore.
func (s *MemoryFixStore) LastFix(_ context.Context, actorID string) (*domain.KnownFix, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fix, ok := s.fixes[actorID]
	if !ok {
		return nil, nil
	}
	return &fix, nil
}

// SaveFix implements FixStore.
func (s *MemoryFixStore) SaveFix(_ context.Context, actorID string, fix domain.KnownFix) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fixes[actorID] = fix
	return nil
}
