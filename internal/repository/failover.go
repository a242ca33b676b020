package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"rentacar/internal/domain"
	"rentacar/internal/models"

	"github.com/rs/zerolog"
)

// recoveryInterval is how long the primary stays bypassed after a failure.
const recoveryInterval = time.Minute

// FailoverSessionRepository serves from the primary (Redis) and switches to the fallback
// (memory) when the primary errors, retrying the primary after recoveryInterval.
type FailoverSessionRepository struct {
	primary   domain.SessionRepository
	fallback  domain.SessionRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
}

func NewFailoverSessionRepository(primary, fallback domain.SessionRepository, logger *zerolog.Logger) *FailoverSessionRepository {
	return &FailoverSessionRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverSessionRepository) markDown(err error) {
	if !r.isDown.Swap(true) {
		r.logger.Error().Err(err).Msg("Primary session repository failed, falling back to memory")
	}
	r.mu.Lock()
	r.lastCheck = time.Now()
	r.mu.Unlock()
}

// usePrimary reports whether the primary should be tried for this call.
func (r *FailoverSessionRepository) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return time.Since(r.lastCheck) > recoveryInterval
}

func (r *FailoverSessionRepository) recovered() {
	if r.isDown.Swap(false) {
		r.logger.Info().Msg("Primary session repository recovered")
	}
}

func (r *FailoverSessionRepository) Get(ctx context.Context, sessionID string) (*models.DateRange, error) {
	if r.usePrimary() {
		dates, err := r.primary.Get(ctx, sessionID)
		if err == nil {
			r.recovered()
			return dates, nil
		}
		r.markDown(err)
	}

	return r.fallback.Get(ctx, sessionID)
}

func (r *FailoverSessionRepository) Set(ctx context.Context, sessionID string, dates models.DateRange) error {
	if r.usePrimary() {
		err := r.primary.Set(ctx, sessionID, dates)
		if err == nil {
			r.recovered()
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.Set(ctx, sessionID, dates)
}

func (r *FailoverSessionRepository) Delete(ctx context.Context, sessionID string) error {
	if r.usePrimary() {
		err := r.primary.Delete(ctx, sessionID)
		if err == nil {
			r.recovered()
			// the session may have been written to the fallback while the primary was down
			_ = r.fallback.Delete(ctx, sessionID)
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.Delete(ctx, sessionID)
}
