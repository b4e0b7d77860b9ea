package store

import (
	"context"
	"sync"
	"time"

	"github.com/arturoeanton/repo-describer/internal/domain"
	"github.com/google/uuid"
)

// DefaultMemoryCapacity is the number of records kept when no database is configured.
const DefaultMemoryCapacity = 1000

// MemoryStore keeps the most recent audit records in a fixed-size ring.
type MemoryStore struct {
	mu      sync.Mutex
	entries []domain.AuditLog
	next    int
	full    bool
}

// NewMemoryStore creates a ring holding up to capacity records.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryStore{entries: make([]domain.AuditLog, capacity)}
}

// WriteAudit implements middleware.AuditWriter.
func (s *MemoryStore) WriteAudit(_ context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[s.next] = entry
	s.next = (s.next + 1) % len(s.entries)
	if s.next == 0 {
		s.full = true
	}
	return nil
}

// ListAuditLogs returns recent records, newest first, optionally for one user.
func (s *MemoryStore) ListAuditLogs(_ context.Context, limit int, userID string) ([]domain.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := s.next
	if s.full {
		count = len(s.entries)
	}

	logs := []domain.AuditLog{}
	for i := 0; i < count; i++ {
		idx := (s.next - 1 - i + len(s.entries)) % len(s.entries)
		l := s.entries[idx]
		if userID != "" && l.UserID != userID {
			continue
		}
		logs = append(logs, l)
		if limit > 0 && len(logs) == limit {
			break
		}
	}
	return logs, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
