package repository

import (
	"context"
	"sync/atomic"
	"time"

	"prokat/internal/domain"
	"prokat/internal/models"

	"github.com/rs/zerolog"
)

type FailoverAvailabilityCache struct {
	primary   domain.AvailabilityCache
	fallback  domain.AvailabilityCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverAvailabilityCache(primary, fallback domain.AvailabilityCache, logger *zerolog.Logger) *FailoverAvailabilityCache {
	return &FailoverAvailabilityCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverAvailabilityCache) Get(ctx context.Context, itemID int64) (*models.ItemAvailability, bool, error) {
	if !r.isDown.Load() {
		availability, ok, err := r.primary.Get(ctx, itemID)
		if err == nil {
			return availability, ok, nil
		}
		r.logger.Error().Err(err).Msg("Primary availability cache failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && time.Since(r.lastCheck) > time.Minute {
		availability, ok, err := r.primary.Get(ctx, itemID)
		if err == nil {
			r.isDown.Store(false)
			return availability, ok, nil
		}
		r.lastCheck = time.Now()
	}

	return r.fallback.Get(ctx, itemID)
}

func (r *FailoverAvailabilityCache) Set(ctx context.Context, availability *models.ItemAvailability) error {
	if !r.isDown.Load() {
		err := r.primary.Set(ctx, availability)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("Primary availability cache failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.Set(ctx, availability)
}

func (r *FailoverAvailabilityCache) Invalidate(ctx context.Context, itemID int64) error {
	if !r.isDown.Load() {
		err := r.primary.Invalidate(ctx, itemID)
		if err == nil {
			// Запись могла успеть попасть и в резервный кэш.
			_ = r.fallback.Invalidate(ctx, itemID)
			return nil
		}
		r.logger.Error().Err(err).Msg("Primary availability cache failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.Invalidate(ctx, itemID)
}
