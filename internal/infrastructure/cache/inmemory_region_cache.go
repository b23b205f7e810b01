package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/compucar/backend/internal/domain/shipping"
)

// InMemoryRegionCache implements shipping.RegionCache with a local map.
// Suitable for single-instance deployments and tests.
type InMemoryRegionCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]regionEntry
}

type regionEntry struct {
	value     interface{}
	expiresAt time.Time
}

// NewInMemoryRegionCache creates an empty cache with the given TTL
func NewInMemoryRegionCache(ttl time.Duration) *InMemoryRegionCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &InMemoryRegionCache{
		ttl:     ttl,
		entries: make(map[string]regionEntry),
	}
}

var _ shipping.RegionCache = (*InMemoryRegionCache)(nil)

func (c *InMemoryRegionCache) get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

func (c *InMemoryRegionCache) set(key string, value interface{}) {
	c.mu.Lock()
	c.entries[key] = regionEntry{value: value, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// GetWilayas returns the cached wilaya list, if present
func (c *InMemoryRegionCache) GetWilayas(ctx context.Context) ([]shipping.Wilaya, bool, error) {
	if v, ok := c.get("wilayas"); ok {
		return v.([]shipping.Wilaya), true, nil
	}
	return nil, false, nil
}

// SetWilayas caches the wilaya list
func (c *InMemoryRegionCache) SetWilayas(ctx context.Context, wilayas []shipping.Wilaya) error {
	c.set("wilayas", wilayas)
	return nil
}

// GetCommunes returns the cached communes of one wilaya, if present
func (c *InMemoryRegionCache) GetCommunes(ctx context.Context, wilayaID int) ([]shipping.Commune, bool, error) {
	if v, ok := c.get("communes:" + strconv.Itoa(wilayaID)); ok {
		return v.([]shipping.Commune), true, nil
	}
	return nil, false, nil
}

// SetCommunes caches the communes of one wilaya
func (c *InMemoryRegionCache) SetCommunes(ctx context.Context, wilayaID int, communes []shipping.Commune) error {
	c.set("communes:"+strconv.Itoa(wilayaID), communes)
	return nil
}

// GetStopdesks returns the cached stopdesks of one wilaya, if present
func (c *InMemoryRegionCache) GetStopdesks(ctx context.Context, wilayaID int) ([]shipping.Stopdesk, bool, error) {
	if v, ok := c.get("stopdesks:" + strconv.Itoa(wilayaID)); ok {
		return v.([]shipping.Stopdesk), true, nil
	}
	return nil, false, nil
}

// SetStopdesks caches the stopdesks of one wilaya
func (c *InMemoryRegionCache) SetStopdesks(ctx context.Context, wilayaID int, desks []shipping.Stopdesk) error {
	c.set("stopdesks:"+strconv.Itoa(wilayaID), desks)
	return nil
}
