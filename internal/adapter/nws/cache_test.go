package nws

import (
	"context"
	"errors"
	"testing"

	"github.com/GNSkier/MoonRabbit/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingResolver struct {
	calls   int
	station domain.Station
	err     error
}

func (m *countingResolver) NearestStation(_ context.Context, _, _ float64) (domain.Station, error) {
	m.calls++
	return m.station, m.err
}

// --- CachedResolver tests ---

func TestCachedResolver_CacheHit(t *testing.T) {
	inner := &countingResolver{station: domain.Station{ID: "KDSM", Name: "Des Moines Intl"}}
	cached := NewCachedResolver(inner, 10, testMetrics())

	s1, err := cached.NearestStation(context.Background(), 41.5868, -93.625)
	require.NoError(t, err)
	assert.Equal(t, "KDSM", s1.ID)

	s2, err := cached.NearestStation(context.Background(), 41.5868, -93.625)
	require.NoError(t, err)
	assert.Equal(t, "KDSM", s2.ID)

	assert.Equal(t, 1, inner.calls, "should only call inner once")
}

func TestCachedResolver_DifferentCoordinatesMiss(t *testing.T) {
	inner := &countingResolver{station: domain.Station{ID: "KDSM"}}
	cached := NewCachedResolver(inner, 10, testMetrics())

	_, _ = cached.NearestStation(context.Background(), 41.5868, -93.625)
	_, _ = cached.NearestStation(context.Background(), 42.0308, -93.6319)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedResolver_EmptyStationNotCached(t *testing.T) {
	inner := &countingResolver{station: domain.Station{}}
	cached := NewCachedResolver(inner, 10, testMetrics())

	_, _ = cached.NearestStation(context.Background(), 41.5868, -93.625)
	_, _ = cached.NearestStation(context.Background(), 41.5868, -93.625)

	assert.Equal(t, 2, inner.calls, "empty results should be retried")
}

func TestCachedResolver_ErrorNotCached(t *testing.T) {
	inner := &countingResolver{err: errors.New("boom")}
	cached := NewCachedResolver(inner, 10, testMetrics())

	_, err := cached.NearestStation(context.Background(), 41.5868, -93.625)
	require.Error(t, err)

	_, err = cached.NearestStation(context.Background(), 41.5868, -93.625)
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls)
}

// --- LRU cache unit tests ---

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache(3)

	c.put("a", domain.Station{ID: "A"})
	c.put("b", domain.Station{ID: "B"})

	station, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A", station.ID)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.Station{ID: "A"})
	c.put("b", domain.Station{ID: "B"})
	c.put("c", domain.Station{ID: "C"}) // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")

	station, ok := c.get("b")
	assert.True(t, ok)
	assert.Equal(t, "B", station.ID)

	station, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, "C", station.ID)
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.Station{ID: "A"})
	c.put("b", domain.Station{ID: "B"})

	// Access "a" to promote it
	c.get("a")

	// Inserting "c" should evict "b", not "a"
	c.put("c", domain.Station{ID: "C"})

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")

	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.Station{ID: "A1"})
	c.put("a", domain.Station{ID: "A2"})

	station, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A2", station.ID)
}
