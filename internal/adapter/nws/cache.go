package nws

import (
	"context"
	"fmt"
	"sync"

	"github.com/GNSkier/MoonRabbit/internal/domain"
	"github.com/GNSkier/MoonRabbit/internal/observability"
)

// CachedResolver wraps a StationResolver with an in-memory LRU cache keyed by
// coordinate. County centroids never move, so a resolved station stays valid
// for the life of the process.
type CachedResolver struct {
	inner   domain.StationResolver
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedResolver creates a cache decorator around a station resolver.
func NewCachedResolver(inner domain.StationResolver, maxEntries int, metrics *observability.Metrics) *CachedResolver {
	return &CachedResolver{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedResolver) NearestStation(ctx context.Context, lat, lon float64) (domain.Station, error) {
	key := fmt.Sprintf("%.4f,%.4f", lat, lon)
	if station, ok := c.cache.get(key); ok {
		c.metrics.StationCache.WithLabelValues("hit").Inc()
		return station, nil
	}
	c.metrics.StationCache.WithLabelValues("miss").Inc()

	station, err := c.inner.NearestStation(ctx, lat, lon)
	if err != nil {
		return station, err
	}
	// Only cache resolved stations so transient empty responses can be retried.
	if station.ID != "" {
		c.cache.put(key, station)
	}
	return station, nil
}

// lruCache is a simple thread-safe LRU cache for Stations.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value domain.Station
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (domain.Station, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.Station{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value domain.Station) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
