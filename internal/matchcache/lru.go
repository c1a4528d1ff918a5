package matchcache

import "github.com/phoenixxxx/xgl/pipeline"

// node is an entry in a shard's recency list. It carries the key so the
// oldest entry can be deleted from the shard map in O(1).
type node[V any] struct {
	key   pipeline.Identity
	value V
	prev  *node[V]
	next  *node[V]
}

// recency is a doubly-linked list ordered from most to least recently used.
// It is not safe for concurrent use; the owning shard holds the lock.
type recency[V any] struct {
	head *node[V]
	tail *node[V]
	len  int
}

func (l *recency[V]) pushFront(n *node[V]) {
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
	l.len++
}

func (l *recency[V]) moveToFront(n *node[V]) {
	if n == l.head {
		return
	}
	l.unlink(n)
	l.pushFront(n)
}

// popBack removes and returns the least recently used node, or nil.
func (l *recency[V]) popBack() *node[V] {
	n := l.tail
	if n != nil {
		l.unlink(n)
	}
	return n
}

func (l *recency[V]) unlink(n *node[V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev = nil
	n.next = nil
	l.len--
}
