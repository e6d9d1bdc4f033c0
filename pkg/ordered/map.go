// Package ordered provides an insertion-ordered string keyed map that
// serialises to a JSON object with its keys in insertion order.
package ordered

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Map is a string keyed map that remembers insertion order.
// Setting an existing key replaces its value and keeps its position.
// The zero value is ready to use.
type Map[V any] struct {
	keys   []string
	values map[string]V
}

// NewMap creates an empty map
func NewMap[V any]() *Map[V] {
	return &Map[V]{values: make(map[string]V)}
}

// Set stores value under key
func (m *Map[V]) Set(key string, value V) {
	if m.values == nil {
		m.values = make(map[string]V)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key
func (m *Map[V]) Get(key string) (V, bool) {
	if m == nil || m.values == nil {
		var zero V
		return zero, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present
func (m *Map[V]) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key, preserving the order of the remaining keys
func (m *Map[V]) Delete(key string) {
	if m == nil || m.values == nil {
		return
	}
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries
func (m *Map[V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order
func (m *Map[V]) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Each calls fn for every entry in insertion order until fn returns false
func (m *Map[V]) Each(fn func(key string, value V) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// ToMap returns an unordered copy
func (m *Map[V]) ToMap() map[string]V {
	out := make(map[string]V, m.Len())
	m.Each(func(k string, v V) bool {
		out[k] = v
		return true
	})
	return out
}

// MarshalJSON writes the entries as a JSON object in insertion order
func (m *Map[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	var err error
	first := true
	m.Each(func(k string, v V) bool {
		if !first {
			buf.WriteByte(',')
		}
		first = false

		var kb, vb []byte
		if kb, err = json.Marshal(k); err != nil {
			return false
		}
		if vb, err = json.Marshal(v); err != nil {
			err = fmt.Errorf("failed to marshal value for %q: %w", k, err)
			return false
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
		return true
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping the document order of its keys
func (m *Map[V]) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid JSON")
	}
	result := gjson.ParseBytes(data)
	if result.Type == gjson.Null {
		return nil
	}
	if !result.IsObject() {
		return fmt.Errorf("expected JSON object")
	}

	m.keys = nil
	m.values = make(map[string]V)

	var err error
	result.ForEach(func(key, value gjson.Result) bool {
		var v V
		if err = json.Unmarshal([]byte(value.Raw), &v); err != nil {
			err = fmt.Errorf("failed to decode value for %q: %w", key.String(), err)
			return false
		}
		m.Set(key.String(), v)
		return true
	})
	return err
}
