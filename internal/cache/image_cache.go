package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/roma2023/SketchAI/internal/models"
)

var ErrImageNotFound = errors.New("image not found")
var ErrImageExpired = errors.New("image expired")

// ImageCache holds generated images in memory until they expire or are deleted.
type ImageCache struct {
	store          map[string]imageEntry
	expiryDuration time.Duration
	mu             sync.Mutex
	now            func() time.Time
}

type imageEntry struct {
	result    models.GenerationResult
	expiresAt time.Time
}

func NewImageCache(expiryDuration time.Duration) *ImageCache {
	return &ImageCache{
		store:          make(map[string]imageEntry),
		expiryDuration: expiryDuration,
		now:            time.Now,
	}
}

func (c *ImageCache) StoreImage(result models.GenerationResult) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := uuid.NewString()
	c.store[id] = imageEntry{result, c.now().Add(c.expiryDuration)}

	return id
}

func (c *ImageCache) GetImage(id string) (models.GenerationResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.store[id]
	if !ok {
		return models.GenerationResult{}, ErrImageNotFound
	}

	if c.now().After(entry.expiresAt) {
		delete(c.store, id)
		return models.GenerationResult{}, ErrImageExpired
	}

	return entry.result, nil
}

func (c *ImageCache) DeleteImage(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, id)
}

func (c *ImageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.store)
}

// Cleanup drops every expired entry.
func (c *ImageCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for id, entry := range c.store {
		if now.After(entry.expiresAt) {
			delete(c.store, id)
			log.Debug().Str("id", id).Msg("Removed expired image from cache")
		}
	}
}

// StartJanitor runs Cleanup every interval until ctx is done.
func (c *ImageCache) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Cleanup()
			}
		}
	}()
}
