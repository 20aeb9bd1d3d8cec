package repository

import (
	"context"
	"sync"
	"time"

	"prokat/internal/models"
)

type memoryEntry struct {
	availability *models.ItemAvailability
	expiresAt    time.Time
}

type MemoryAvailabilityCache struct {
	entries sync.Map
	ttl     time.Duration
}

func NewMemoryAvailabilityCache(ttl time.Duration) *MemoryAvailabilityCache {
	return &MemoryAvailabilityCache{
		ttl: ttl,
	}
}

func (r *MemoryAvailabilityCache) Get(ctx context.Context, itemID int64) (*models.ItemAvailability, bool, error) {
	val, ok := r.entries.Load(itemID)
	if !ok {
		return nil, false, nil
	}
	entry := val.(*memoryEntry)
	if time.Now().After(entry.expiresAt) {
		r.entries.Delete(itemID)
		return nil, false, nil
	}
	return entry.availability, true, nil
}

func (r *MemoryAvailabilityCache) Set(ctx context.Context, availability *models.ItemAvailability) error {
	r.entries.Store(availability.ItemID, &memoryEntry{
		availability: availability,
		expiresAt:    time.Now().Add(r.ttl),
	})
	return nil
}

func (r *MemoryAvailabilityCache) Invalidate(ctx context.Context, itemID int64) error {
	r.entries.Delete(itemID)
	return nil
}
