// Package matchcache memoizes per-pipeline match results.
//
// Profile stores are immutable once built, so the set of rules matching a
// pipeline identity never changes until the next Init. The cache is sharded
// by identity digest and evicts least recently used entries per shard.
package matchcache

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"github.com/phoenixxxx/xgl/pipeline"
)

const (
	// ShardCount is the number of independently locked shards. Must be a
	// power of two.
	ShardCount = 16

	// DefaultCapacity is the per-shard entry limit used when none is given.
	DefaultCapacity = 64

	shardMask = ShardCount - 1
)

// Stats is a snapshot of cache counters.
type Stats struct {
	Len       int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// HitRate returns hits / (hits + misses), or 0 before the first lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache maps pipeline identities to values of type V.
// It is safe for concurrent use and must not be copied.
type Cache[V any] struct {
	shards   [ShardCount]shard[V]
	capacity int

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type shard[V any] struct {
	mu      sync.Mutex
	entries map[pipeline.Identity]*node[V]
	order   recency[V]
}

// New returns a cache holding up to capacity entries per shard.
// A capacity <= 0 selects DefaultCapacity.
func New[V any](capacity int) *Cache[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Cache[V]{capacity: capacity}
	for i := range c.shards {
		c.shards[i].entries = make(map[pipeline.Identity]*node[V])
	}
	return c
}

// Digest hashes every stage's code hash and size into 64 bits.
func Digest(id *pipeline.Identity) uint64 {
	var buf [pipeline.StageCount * 24]byte
	b := buf[:0]
	for i := range id.Shaders {
		sh := &id.Shaders[i]
		b = binary.LittleEndian.AppendUint64(b, sh.CodeHash.Lower)
		b = binary.LittleEndian.AppendUint64(b, sh.CodeHash.Upper)
		b = binary.LittleEndian.AppendUint64(b, sh.CodeSize)
	}
	return xxhash.Sum64(b)
}

func (c *Cache[V]) shardFor(id *pipeline.Identity) *shard[V] {
	return &c.shards[Digest(id)&shardMask]
}

// GetOrCompute returns the value for id, computing and storing it on a miss.
// compute runs under the shard lock, so concurrent callers for the same
// identity compute once.
func (c *Cache[V]) GetOrCompute(id *pipeline.Identity, compute func() V) V {
	s := c.shardFor(id)
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.entries[*id]; ok {
		s.order.moveToFront(n)
		c.hits.Add(1)
		return n.value
	}
	c.misses.Add(1)

	v := compute()
	for s.order.len >= c.capacity {
		oldest := s.order.popBack()
		if oldest == nil {
			break
		}
		delete(s.entries, oldest.key)
		c.evictions.Add(1)
	}
	n := &node[V]{key: *id, value: v}
	s.order.pushFront(n)
	s.entries[*id] = n
	return v
}

// Len returns the number of cached identities.
func (c *Cache[V]) Len() int {
	total := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		total += len(s.entries)
		s.mu.Unlock()
	}
	return total
}

// Clear drops every entry. Counters are kept.
func (c *Cache[V]) Clear() {
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		clear(s.entries)
		s.order = recency[V]{}
		s.mu.Unlock()
	}
}

// Stats returns the current counters.
func (c *Cache[V]) Stats() Stats {
	return Stats{
		Len:       c.Len(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
