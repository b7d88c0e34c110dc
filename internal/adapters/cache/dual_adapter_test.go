package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeStore is an in-memory CacheProvider that can be forced to fail
type fakeStore struct {
	data   map[string][]byte
	gets   int
	sets   int
	broken bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte)}
}

func (s *fakeStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.gets++
	if s.broken {
		return nil, false, errors.New("store down")
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *fakeStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.sets++
	if s.broken {
		return errors.New("store down")
	}
	s.data[key] = value
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, key string) error {
	delete(s.data, key)
	return nil
}

func TestDualCache_PutThenGetServedFromMemory(t *testing.T) {
	store := newFakeStore()
	c := NewDualCache("test", store, time.Hour, nil)
	ctx := context.Background()

	c.Put(ctx, "amoxicillin", []byte(`{"a":1}`))

	got, ok := c.Get(ctx, "amoxicillin")
	assert.True(t, ok)
	assert.Equal(t, []byte(`{"a":1}`), got)
	// Memory layer answered; the store was only touched by Put
	assert.Equal(t, 0, store.gets)
	assert.Equal(t, 1, store.sets)
}

func TestDualCache_StaleMemoryEntryFallsThroughToStore(t *testing.T) {
	store := newFakeStore()
	c := NewDualCache("test", store, time.Minute, nil)
	ctx := context.Background()

	base := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return base }
	c.Put(ctx, "k", []byte("v"))

	// Advance past the TTL: the memory entry is evicted and the store
	// (whose row is also gone) reports a miss
	delete(store.data, "k")
	c.now = func() time.Time { return base.Add(2 * time.Minute) }

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 1, store.gets)

	// The stale memory entry must be gone, not resurrected later
	c.now = func() time.Time { return base }
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestDualCache_StoreHitWarmsMemory(t *testing.T) {
	store := newFakeStore()
	store.data["k"] = []byte("v")
	c := NewDualCache("test", store, time.Hour, nil)
	ctx := context.Background()

	got, ok := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	// Second read comes from memory
	_, ok = c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, 1, store.gets)
}

func TestDualCache_BrokenStoreIsAMiss(t *testing.T) {
	store := newFakeStore()
	store.broken = true
	c := NewDualCache("test", store, time.Hour, nil)
	ctx := context.Background()

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	// Writes are best-effort: the in-process copy still serves
	c.Put(ctx, "k", []byte("v"))
	got, ok := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}

func TestDualCache_NilStore(t *testing.T) {
	c := NewDualCache("test", nil, time.Hour, nil)
	ctx := context.Background()

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	c.Put(ctx, "k", []byte("v"))
	got, ok := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}

func TestDualCache_Reset(t *testing.T) {
	c := NewDualCache("test", nil, time.Hour, nil)
	ctx := context.Background()

	c.Put(ctx, "k", []byte("v"))
	c.Reset()

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}
