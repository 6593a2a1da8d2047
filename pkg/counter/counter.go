// Package counter implements a generic multiset, similar to Python's
// collections.Counter.
package counter

import "iter"

// Counter counts occurrences of comparable items. Distinct items are also
// tracked in first-insertion order so that MostFrequent breaks ties
// deterministically instead of depending on map iteration order.
type Counter[T comparable] struct {
	counts map[T]uint64
	order  []T
}

// New returns an empty Counter.
func New[T comparable]() *Counter[T] {
	return &Counter[T]{counts: make(map[T]uint64)}
}

// FromSeq builds a Counter by consuming seq eagerly, inserting every
// element in sequence order.
func FromSeq[T comparable](seq iter.Seq[T]) *Counter[T] {
	c := New[T]()
	for item := range seq {
		c.Insert(item)
	}
	return c
}

// Insert increments the count of item by one.
func (c *Counter[T]) Insert(item T) {
	if _, seen := c.counts[item]; !seen {
		c.order = append(c.order, item)
	}
	c.counts[item]++
}

// Get returns the count of item. The boolean is false when the item was
// never inserted; absent items are not reported as zero.
func (c *Counter[T]) Get(item T) (uint64, bool) {
	n, ok := c.counts[item]
	return n, ok
}

// Len returns the number of distinct items.
func (c *Counter[T]) Len() int { return len(c.order) }

// MostFrequent returns the item with the greatest count and that count.
// Among items with equal counts, the one inserted first wins. The boolean
// is false when the counter is empty.
func (c *Counter[T]) MostFrequent() (T, uint64, bool) {
	var best T
	if len(c.order) == 0 {
		return best, 0, false
	}
	var bestN uint64
	for _, item := range c.order {
		if n := c.counts[item]; n > bestN {
			best, bestN = item, n
		}
	}
	return best, bestN, true
}
