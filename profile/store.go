package profile

import "iter"

// DefaultCapacity is the number of rules a store is sized for unless the
// builder knows better.
const DefaultCapacity = 32

// Allocator provides backing storage for stores. Alloc returns nil when it
// cannot satisfy the request; stores treat that as out of memory.
type Allocator interface {
	Alloc(n int) []Rule
	Free(rules []Rule)
}

// HeapAllocator allocates rule storage from the Go heap.
type HeapAllocator struct{}

// Alloc returns a zeroed slice of n rules.
func (HeapAllocator) Alloc(n int) []Rule {
	return make([]Rule, n)
}

// Free is a no-op; the garbage collector reclaims the storage.
func (HeapAllocator) Free([]Rule) {}

// Store is an ordered, fixed-capacity sequence of rules. Insertion order is
// evaluation order. The capacity never grows.
//
// A Store is filled once by a single builder and is read-only afterwards, at
// which point it is safe for concurrent readers.
type Store struct {
	alloc   Allocator
	entries []Rule
	count   int
}

// NewStore allocates a store for up to capacity rules. If the allocator fails
// the store is empty with zero capacity and every Append is rejected.
func NewStore(alloc Allocator, capacity int) *Store {
	if alloc == nil {
		alloc = HeapAllocator{}
	}
	s := &Store{alloc: alloc}
	if capacity <= 0 {
		return s
	}
	mem := alloc.Alloc(capacity)
	if len(mem) < capacity {
		if mem != nil {
			alloc.Free(mem)
		}
		return s
	}
	clear(mem)
	s.entries = mem[:capacity:capacity]
	return s
}

// Len returns the number of rules.
func (s *Store) Len() int { return s.count }

// Cap returns the fixed capacity.
func (s *Store) Cap() int { return len(s.entries) }

// Append adds a rule at the end. It returns false, leaving the store
// unchanged, when the store is full.
func (s *Store) Append(r Rule) bool {
	if s.count >= len(s.entries) {
		return false
	}
	s.entries[s.count] = r
	s.count++
	return true
}

// At returns the rule at index i. It panics if i is out of range.
func (s *Store) At(i int) *Rule {
	if i < 0 || i >= s.count {
		panic("profile: rule index out of range")
	}
	return &s.entries[i]
}

// All iterates the rules in evaluation order.
func (s *Store) All() iter.Seq2[int, *Rule] {
	return func(yield func(int, *Rule) bool) {
		for i := 0; i < s.count; i++ {
			if !yield(i, &s.entries[i]) {
				return
			}
		}
	}
}

// Rules returns a copy of the stored rules in evaluation order.
func (s *Store) Rules() []Rule {
	return append([]Rule(nil), s.entries[:s.count]...)
}

// Free releases the backing storage. Calling Free more than once is a no-op.
func (s *Store) Free() {
	if s.entries == nil {
		return
	}
	s.alloc.Free(s.entries)
	s.entries = nil
	s.count = 0
}
