// Package cache provides a thread-safe, sharded LRU cache whose entries
// belong to a generation. Advancing the generation invalidates every entry
// at once, which matches the lifetime of the caches used by the pipeline:
// computed styles, media query results and layout results are all owned
// by one document generation.
//
// Concurrent requests for the same missing key are merged with
// golang.org/x/sync/singleflight: only one caller computes the value,
// the others wait for its result. A slot is either absent or complete.
package cache

import (
	"container/list"
	"fmt"
	"hash/maphash"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

const (
	// DefaultShardCount is used when a non positive shard count is given.
	DefaultShardCount = 16

	// DefaultCapacity is the default maximum entries per shard.
	DefaultCapacity = 256
)

// Generational is a sharded LRU cache with wholesale invalidation.
type Generational[K comparable, V any] struct {
	shards   []*shard[K, V]
	seed     maphash.Seed
	capacity int // per shard

	generation atomic.Uint64
	flights    singleflight.Group

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type shard[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*list.Element
	lru     *list.List // front is most recently used
}

type entry[K comparable, V any] struct {
	key        K
	value      V
	generation uint64
}

// NewGenerational creates a cache with [shards] shards of [capacity] entries.
// Non positive values select the defaults.
func NewGenerational[K comparable, V any](shards, capacity int) *Generational[K, V] {
	if shards <= 0 {
		shards = DefaultShardCount
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Generational[K, V]{
		shards:   make([]*shard[K, V], shards),
		seed:     maphash.MakeSeed(),
		capacity: capacity,
	}
	for i := range c.shards {
		c.shards[i] = &shard[K, V]{entries: make(map[K]*list.Element), lru: list.New()}
	}
	return c
}

func (c *Generational[K, V]) getShard(key K) *shard[K, V] {
	h := maphash.Comparable(c.seed, key)
	return c.shards[h%uint64(len(c.shards))]
}

// Generation returns the current generation.
func (c *Generational[K, V]) Generation() uint64 { return c.generation.Load() }

// Advance starts a new generation, dropping every entry.
// It returns the new generation.
func (c *Generational[K, V]) Advance() uint64 {
	gen := c.generation.Add(1)
	for _, s := range c.shards {
		s.mu.Lock()
		s.entries = make(map[K]*list.Element)
		s.lru.Init()
		s.mu.Unlock()
	}
	return gen
}

// Get returns the value stored for [key] in the current generation.
func (c *Generational[K, V]) Get(key K) (V, bool) {
	s := c.getShard(key)
	gen := c.generation.Load()

	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.entries[key]; ok {
		e := el.Value.(*entry[K, V])
		if e.generation == gen {
			s.lru.MoveToFront(el)
			c.hits.Add(1)
			return e.value, true
		}
		// stale entry, from a generation advanced concurrently
		s.lru.Remove(el)
		delete(s.entries, key)
	}
	c.misses.Add(1)
	var zero V
	return zero, false
}

// Put stores [value] for [key] in the current generation,
// evicting the least recently used entries if needed.
func (c *Generational[K, V]) Put(key K, value V) {
	c.put(key, value, c.generation.Load())
}

func (c *Generational[K, V]) put(key K, value V, gen uint64) {
	if gen != c.generation.Load() {
		return // computed for an outdated generation
	}
	s := c.getShard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.entries[key]; ok {
		e := el.Value.(*entry[K, V])
		e.value, e.generation = value, gen
		s.lru.MoveToFront(el)
		return
	}
	for s.lru.Len() >= c.capacity {
		oldest := s.lru.Back()
		s.lru.Remove(oldest)
		delete(s.entries, oldest.Value.(*entry[K, V]).key)
		c.evictions.Add(1)
	}
	s.entries[key] = s.lru.PushFront(&entry[K, V]{key: key, value: value, generation: gen})
}

// GetOrCompute returns the cached value for [key], or calls [compute]
// to create it. Concurrent calls for the same key and generation share
// one computation. Errors are returned to every waiting caller and
// are not cached.
func (c *Generational[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	gen := c.generation.Load()
	flightKey := fmt.Sprintf("%d/%v", gen, key)
	res, err, _ := c.flights.Do(flightKey, func() (interface{}, error) {
		// another flight may have completed between Get and Do
		if v, ok := c.peek(key, gen); ok {
			return v, nil
		}
		v, err := compute()
		if err != nil {
			return nil, err
		}
		c.put(key, v, gen)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// peek is like Get without statistics.
func (c *Generational[K, V]) peek(key K, gen uint64) (V, bool) {
	s := c.getShard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.entries[key]; ok {
		if e := el.Value.(*entry[K, V]); e.generation == gen {
			return e.value, true
		}
	}
	var zero V
	return zero, false
}

// Delete removes [key], returning true if it was present.
func (c *Generational[K, V]) Delete(key K) bool {
	s := c.getShard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.entries[key]
	if !ok {
		return false
	}
	s.lru.Remove(el)
	delete(s.entries, key)
	return true
}

// Len returns the number of entries across all shards.
func (c *Generational[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.Lock()
		total += len(s.entries)
		s.mu.Unlock()
	}
	return total
}

// Stats is a snapshot of the cache counters.
type Stats struct {
	Len        int
	Generation uint64
	Hits       uint64
	Misses     uint64
	Evictions  uint64
}

// HitRate returns the ratio of hits over lookups, or 0.
func (s Stats) HitRate() float64 {
	if total := s.Hits + s.Misses; total > 0 {
		return float64(s.Hits) / float64(total)
	}
	return 0
}

// Stats returns the current statistics.
func (c *Generational[K, V]) Stats() Stats {
	return Stats{
		Len:        c.Len(),
		Generation: c.generation.Load(),
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Evictions:  c.evictions.Load(),
	}
}
