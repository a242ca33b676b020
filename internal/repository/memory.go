package repository

import (
	"context"
	"sync"
	"time"

	"rentacar/internal/models"
)

type memoryEntry struct {
	dates     models.DateRange
	expiresAt time.Time
}

// MemorySessionRepository keeps booking sessions in process. Entries expire after ttl;
// a zero ttl keeps them until deleted.
type MemorySessionRepository struct {
	sessions sync.Map
	ttl      time.Duration
	now      func() time.Time
}

func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	return &MemorySessionRepository{
		ttl: ttl,
		now: time.Now,
	}
}

func (r *MemorySessionRepository) Get(ctx context.Context, sessionID string) (*models.DateRange, error) {
	val, ok := r.sessions.Load(sessionID)
	if !ok {
		return nil, nil
	}
	entry := val.(memoryEntry)
	if !entry.expiresAt.IsZero() && r.now().After(entry.expiresAt) {
		r.sessions.Delete(sessionID)
		return nil, nil
	}
	dates := entry.dates
	return &dates, nil
}

func (r *MemorySessionRepository) Set(ctx context.Context, sessionID string, dates models.DateRange) error {
	entry := memoryEntry{dates: dates}
	if r.ttl > 0 {
		entry.expiresAt = r.now().Add(r.ttl)
	}
	r.sessions.Store(sessionID, entry)
	return nil
}

func (r *MemorySessionRepository) Delete(ctx context.Context, sessionID string) error {
	r.sessions.Delete(sessionID)
	return nil
}

// Sweep drops expired entries and returns how many were removed.
func (r *MemorySessionRepository) Sweep() int {
	now := r.now()
	removed := 0
	r.sessions.Range(func(key, val any) bool {
		entry := val.(memoryEntry)
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			r.sessions.Delete(key)
			removed++
		}
		return true
	})
	return removed
}
