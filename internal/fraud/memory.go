package fraud

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// MemoryHistoryStore is a process-local HistoryStore capped at
// domain.AttemptHistoryCap entries per actor.
type MemoryHistoryStore struct {
	mu       sync.RWMutex
	attempts map[string][]domain.AttendanceAttempt
}

// NewMemoryHistoryStore creates an empty in-memory history store.
func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{attempts: make(map[string][]domain.AttendanceAttempt)}
}

// Append implements HistoryStore.
func (s *MemoryHistoryStore) Append(_ context.Context, attempt domain.AttendanceAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.attempts[attempt.ActorID], attempt)
	if len(history) > domain.AttemptHistoryCap {
		history = history[len(history)-domain.AttemptHistoryCap:]
	}
	s.attempts[attempt.ActorID] = history
	return nil
}

// Recent implements HistoryStore.
func (s *MemoryHistoryStore) Recent(_ context.Context, actorID string, limit int) ([]domain.AttendanceAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.attempts[actorID]
	if limit > len(history) {
		limit = len(history)
	}

	out := make([]domain.AttendanceAttempt, 0, limit)
	for i := len(history) - 1; i >= len(history)-limit; i-- {
		out = append(out, history[i])
	}
	return out, nil
}

// CountSince implements HistoryStore.
func (s *MemoryHistoryStore) CountSince(_ context.Context, actorID string, cutoff time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, attempt := range s.attempts[actorID] {
		if !attempt.Timestamp.Before(cutoff) {
			count++
		}
	}
	return count, nil
}

// MemoryBlocklistStore is a process-local BlocklistStore.
type MemoryBlocklistStore struct {
	mu      sync.RWMutex
	devices map[string]struct{}
	ips     map[string]struct{}
}

// NewMemoryBlocklistStore creates empty in-memory blocklists.
func NewMemoryBlocklistStore() *MemoryBlocklistStore {
	return &MemoryBlocklistStore{
		devices: make(map[string]struct{}),
		ips:     make(map[string]struct{}),
	}
}

// IsDeviceBlocked implements BlocklistStore.
func (s *MemoryBlocklistStore) IsDeviceBlocked(_ context.Context, fingerprint string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.devices[fingerprint]
	return ok, nil
}

// IsIPBlocked implements BlocklistStore.
func (s *MemoryBlocklistStore) IsIPBlocked(_ context.Context, ip string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ips[ip]
	return ok, nil
}

// BlockDevice implements BlocklistStore.
func (s *MemoryBlocklistStore) BlockDevice(_ context.Context, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices[fingerprint] = struct{}{}
	return nil
}

// BlockIP implements BlocklistStore.
func (s *MemoryBlocklistStore) BlockIP(_ context.Context, ip string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ips[ip] = struct{}{}
	return nil
}

// UnblockDevice implements BlocklistStore.
func (s *MemoryBlocklistStore) UnblockDevice(_ context.Context, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.devices, fingerprint)
	return nil
}

// UnblockIP implements BlocklistStore.
func (s *MemoryBlocklistStore) UnblockIP(_ context.Context, ip string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ips, ip)
	return nil
}

// MemoryRecordStore is a process-local RecordStore.
type MemoryRecordStore struct {
	mu      sync.RWMutex
	records []domain.FraudRecord
}

// NewMemoryRecordStore creates an empty in-memory record log.
func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{}
}

// Create implements RecordStore.
func (s *MemoryRecordStore) Create(_ context.Context, record domain.FraudRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

// Get implements RecordStore.
func (s *MemoryRecordStore) Get(_ context.Context, id uuid.UUID) (*domain.FraudRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.records {
		if s.records[i].ID == id {
			record := s.records[i]
			return &record, nil
		}
	}
	return nil, domain.ErrFraudRecordNotFound
}

// List implements RecordStore.
func (s *MemoryRecordStore) List(_ context.Context, actorID string, limit int) ([]domain.FraudRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.FraudRecord, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		if actorID != "" && s.records[i].ActorID != actorID {
			continue
		}
		out = append(out, s.records[i])
	}
	return out, nil
}

// Resolve implements RecordStore.
func (s *MemoryRecordStore) Resolve(_ context.Context, id uuid.UUID, resolved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == id {
			s.records[i].Resolved = resolved
			return nil
		}
	}
	return domain.ErrFraudRecordNotFound
}
