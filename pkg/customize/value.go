package customize

import "sync"

// Observer receives the new and previous value of a Value.
type Observer[T any] func(value, previous T)

// Subscription represents an active observer binding.
type Subscription struct {
	id     uint64
	unbind func(id uint64)
}

// Unbind removes the observer. It is safe to call more than once.
func (s *Subscription) Unbind() {
	if s != nil && s.unbind != nil {
		s.unbind(s.id)
		s.unbind = nil
	}
}

type binding[T any] struct {
	id       uint64
	observer Observer[T]
}

type delivery[T any] struct {
	value    T
	previous T
}

// Value is a minimal observable cell. Set delivers synchronously to every
// observer in bind order and never suppresses equal values.
type Value[T any] struct {
	mu       sync.Mutex
	value    T
	bindings []binding[T]
	nextID   uint64
	firing   bool
	pending  []delivery[T]
}

// NewValue creates a Value holding initial
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{value: initial}
}

// Get returns the current value
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value
}

// Set stores value and notifies every observer, even when value is unchanged.
// A Set made from inside an observer is delivered after the current pass
// completes, so every observer sees the values in the order they were set.
func (v *Value[T]) Set(value T) {
	v.mu.Lock()
	v.pending = append(v.pending, delivery[T]{value: value, previous: v.value})
	v.value = value
	if v.firing {
		v.mu.Unlock()
		return
	}
	v.firing = true
	for len(v.pending) > 0 {
		next := v.pending[0]
		v.pending = v.pending[1:]
		bindings := make([]binding[T], len(v.bindings))
		copy(bindings, v.bindings)
		v.mu.Unlock()

		for _, b := range bindings {
			b.observer(next.value, next.previous)
		}
		v.mu.Lock()
	}
	v.pending = nil
	v.firing = false
	v.mu.Unlock()
}

// Bind registers an observer
func (v *Value[T]) Bind(observer Observer[T]) *Subscription {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.nextID++
	id := v.nextID
	v.bindings = append(v.bindings, binding[T]{id: id, observer: observer})
	return &Subscription{id: id, unbind: v.unbind}
}

// Observers returns the number of bound observers
func (v *Value[T]) Observers() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.bindings)
}

func (v *Value[T]) unbind(id uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, b := range v.bindings {
		if b.id == id {
			v.bindings = append(v.bindings[:i], v.bindings[i+1:]...)
			return
		}
	}
}
