package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"jaikod-scoring/utils"
)

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
	err  error
}

func newMapCache() *mapCache {
	return &mapCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, false, c.err
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.data[key] = value
	c.ttls[key] = ttl
	return nil
}

type countingSource struct {
	*MemoryReference
	distCalls   int
	regionCalls int
}

func (s *countingSource) Distribution(ctx context.Context, category string) ([]float64, error) {
	s.distCalls++
	return s.MemoryReference.Distribution(ctx, category)
}

func (s *countingSource) RegionMultipliers(ctx context.Context) (map[string]float64, error) {
	s.regionCalls++
	return s.MemoryReference.RegionMultipliers(ctx)
}

func TestCachedReferenceReadThrough(t *testing.T) {
	src := &countingSource{MemoryReference: NewMemoryReference()}
	cache := newMapCache()
	c := NewCachedReference(src, cache, time.Minute, utils.NewNopLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := c.Distribution(ctx, "mobile-tablet")
		if err != nil {
			t.Fatalf("Distribution: %v", err)
		}
		if len(d) != 11 {
			t.Fatalf("got %d prices, want 11", len(d))
		}
		if _, err := c.RegionMultipliers(ctx); err != nil {
			t.Fatalf("RegionMultipliers: %v", err)
		}
	}

	if src.distCalls != 1 {
		t.Errorf("source distribution calls: got %d, want 1", src.distCalls)
	}
	if src.regionCalls != 1 {
		t.Errorf("source region calls: got %d, want 1", src.regionCalls)
	}
	if ttl := cache.ttls["scoring:dist:mobile-tablet"]; ttl != time.Minute {
		t.Errorf("ttl: got %v, want %v", ttl, time.Minute)
	}
}

func TestCachedReferenceCacheDown(t *testing.T) {
	src := &countingSource{MemoryReference: NewMemoryReference()}
	cache := newMapCache()
	cache.err = errors.New("connection refused")
	c := NewCachedReference(src, cache, time.Minute, utils.NewNopLogger())

	for i := 0; i < 2; i++ {
		if _, err := c.Distribution(context.Background(), "laptop"); err != nil {
			t.Fatalf("Distribution: %v", err)
		}
	}
	if src.distCalls != 2 {
		t.Errorf("source distribution calls: got %d, want 2", src.distCalls)
	}
}

func TestCachedReferenceCorruptEntry(t *testing.T) {
	src := &countingSource{MemoryReference: NewMemoryReference()}
	cache := newMapCache()
	cache.data["scoring:dist:camera"] = []byte("{not json")
	c := NewCachedReference(src, cache, time.Minute, utils.NewNopLogger())

	d, err := c.Distribution(context.Background(), "camera")
	if err != nil {
		t.Fatalf("Distribution: %v", err)
	}
	if len(d) == 0 {
		t.Errorf("expected the source distribution after a corrupt cache entry")
	}
	if src.distCalls != 1 {
		t.Errorf("source distribution calls: got %d, want 1", src.distCalls)
	}
}
