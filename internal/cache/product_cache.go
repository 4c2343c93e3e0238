package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/atelierhq/storefront_api/internal/models"
)

// KeyValueStore is the subset of RedisClient the product cache uses.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
}

// tombstone replaces an invalidated entry for InvalidationHold. Reads treat
// it as a miss and fills never overwrite it, so a reader that loaded the
// document before a stock write cannot re-cache the old counters.
const tombstone = "-"

// InvalidationHold is how long an invalidated key refuses fills. A fill
// delayed longer than this can still cache a pre-write document.
const InvalidationHold = 5 * time.Second

// ProductCache is a read-through cache for catalog documents.
// Key: product:{id}.
type ProductCache struct {
	kv  KeyValueStore
	ttl time.Duration
}

// NewProductCache creates a new ProductCache.
func NewProductCache(kv KeyValueStore, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProductCache{kv: kv, ttl: ttl}
}

func (c *ProductCache) key(id string) string {
	return fmt.Sprintf("product:%s", id)
}

// Get returns the cached product. A miss is reported as (nil, nil).
func (c *ProductCache) Get(ctx context.Context, id string) (*models.Product, error) {
	raw, err := c.kv.Get(ctx, c.key(id))
	if err != nil {
		if IsMiss(err) {
			return nil, nil
		}
		return nil, err
	}
	if raw == tombstone {
		return nil, nil
	}
	var p models.Product
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached product: %w", err)
	}
	return &p, nil
}

// Set fills the entry for p unless one exists, including a tombstone left
// by a recent Invalidate.
func (c *ProductCache) Set(ctx context.Context, p *models.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}
	_, err = c.kv.SetNX(ctx, c.key(p.ID.Hex()), string(data), c.ttl)
	return err
}

// Invalidate replaces the entries for ids with tombstones.
func (c *ProductCache) Invalidate(ctx context.Context, ids ...string) error {
	var errs []error
	for _, id := range ids {
		if err := c.kv.Set(ctx, c.key(id), tombstone, InvalidationHold); err != nil {
			errs = append(errs, fmt.Errorf("invalidate %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}
