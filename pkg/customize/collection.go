package customize

import (
	"fmt"
	"sync"
)

// Collection is an insertion-ordered registry of items keyed by ID.
// Add callbacks fire synchronously, in bind order, for every item added.
type Collection[T any] struct {
	mu       sync.RWMutex
	order    []string
	items    map[string]T
	onAdd    []func(T)
	kindName string
}

// NewCollection creates an empty collection; kind names the item type in errors
func NewCollection[T any](kind string) *Collection[T] {
	return &Collection[T]{
		items:    make(map[string]T),
		kindName: kind,
	}
}

// Add registers item under id and fires the add callbacks
func (c *Collection[T]) Add(id string, item T) error {
	c.mu.Lock()
	if _, exists := c.items[id]; exists {
		c.mu.Unlock()
		return fmt.Errorf("%s %q already registered", c.kindName, id)
	}
	c.order = append(c.order, id)
	c.items[id] = item
	callbacks := make([]func(T), len(c.onAdd))
	copy(callbacks, c.onAdd)
	c.mu.Unlock()

	for _, fn := range callbacks {
		fn(item)
	}
	return nil
}

// Get returns the item registered under id
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[id]
	return item, ok
}

// Has reports whether id is registered
func (c *Collection[T]) Has(id string) bool {
	_, ok := c.Get(id)
	return ok
}

// Len returns the number of items
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Each calls fn for every item in insertion order until fn returns false
func (c *Collection[T]) Each(fn func(id string, item T) bool) {
	c.mu.RLock()
	order := make([]string, len(c.order))
	copy(order, c.order)
	items := make([]T, len(order))
	for i, id := range order {
		items[i] = c.items[id]
	}
	c.mu.RUnlock()

	for i, id := range order {
		if !fn(id, items[i]) {
			return
		}
	}
}

// OnAdd registers a callback fired for every subsequently added item
func (c *Collection[T]) OnAdd(fn func(T)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAdd = append(c.onAdd, fn)
}
