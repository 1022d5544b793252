package engine

import (
	"iter"

	"github.com/tidwall/btree"
)

// KeyedHeap is a min-ordered priority queue over (key, value) pairs with
// exactly one entry per key, plus O(1) lookup by key. It is the leaf
// structure every other layer of the book (PriceOrderQueue, OrderQueue)
// is built on: ordering comes from an underlying btree.BTreeG[K] (as the
// teacher's order book already leans on for its price levels), and a
// plain map gives the secondary key->value index.
//
// Unlike a classic binary heap, the btree lets Items/Keys/Values walk the
// full key range in ascending order without popping anything off, which
// is exactly what spec requires of them.
type KeyedHeap[K any, V any] struct {
	tree  *btree.BTreeG[K]
	index map[K]V
}

// NewKeyedHeap constructs an empty heap ordered by less.
func NewKeyedHeap[K any, V any](less func(a, b K) bool) *KeyedHeap[K, V] {
	return &KeyedHeap[K, V]{
		tree:  btree.NewBTreeG(less),
		index: make(map[K]V),
	}
}

// Push inserts key/value, failing with ErrDuplicateKey if key is already
// present.
func (h *KeyedHeap[K, V]) Push(key K, value V) error {
	if _, ok := h.index[key]; ok {
		return ErrDuplicateKey
	}
	h.tree.Set(key)
	h.index[key] = value
	return nil
}

// Pop removes and returns the minimum-key pair, failing with
// ErrEmptyPriorityQueue if the heap is empty.
func (h *KeyedHeap[K, V]) Pop() (key K, value V, err error) {
	key, ok := h.tree.PopMin()
	if !ok {
		return key, value, ErrEmptyPriorityQueue
	}
	value = h.index[key]
	delete(h.index, key)
	return key, value, nil
}

// Peek returns the minimum-key pair without removing it, failing with
// ErrEmptyPriorityQueue if the heap is empty.
func (h *KeyedHeap[K, V]) Peek() (key K, value V, err error) {
	key, ok := h.tree.Min()
	if !ok {
		return key, value, ErrEmptyPriorityQueue
	}
	return key, h.index[key], nil
}

// Contains reports whether key is present.
func (h *KeyedHeap[K, V]) Contains(key K) bool {
	_, ok := h.index[key]
	return ok
}

// Get returns the value for key, if present.
func (h *KeyedHeap[K, V]) Get(key K) (V, bool) {
	v, ok := h.index[key]
	return v, ok
}

// Len returns the number of entries in the heap.
func (h *KeyedHeap[K, V]) Len() int {
	return h.tree.Len()
}

// Empty reports whether the heap holds no entries.
func (h *KeyedHeap[K, V]) Empty() bool {
	return h.tree.Len() == 0
}

// Items yields (key, value) pairs in ascending-key order without
// mutating the heap.
func (h *KeyedHeap[K, V]) Items() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		h.tree.Scan(func(key K) bool {
			return yield(key, h.index[key])
		})
	}
}

// Keys yields keys in ascending order without mutating the heap.
func (h *KeyedHeap[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		h.tree.Scan(func(key K) bool {
			return yield(key)
		})
	}
}

// Values yields values in ascending-key order without mutating the heap.
func (h *KeyedHeap[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		h.tree.Scan(func(key K) bool {
			return yield(h.index[key])
		})
	}
}
