package encoding

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Map is a string keyed mapping that remembers insertion order. It marshals to
// a JSON object with its keys in that order.
type Map struct {
	keys   []string
	values map[string]any
}

// Pair is a single key/value entry used to build a Map
type Pair struct {
	Key   string
	Value any
}

func P(key string, value any) Pair {
	return Pair{Key: key, Value: value}
}

func NewMap(pairs ...Pair) *Map {
	m := &Map{
		keys:   make([]string, 0, len(pairs)),
		values: make(map[string]any, len(pairs)),
	}

	for _, p := range pairs {
		m.Set(p.Key, p.Value)
	}

	return m
}

// Set stores value under key. Overwriting an existing key keeps its original
// position.
func (m *Map) Set(key string, value any) {
	if m.values == nil {
		m.values = map[string]any{}
	}

	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}

	m.values[key] = value
}

func (m *Map) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}

	v, ok := m.values[key]
	return v, ok
}

func (m *Map) Keys() []string {
	if m == nil {
		return []string{}
	}

	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Range calls fn for each entry in insertion order until fn returns false
func (m *Map) Range(fn func(key string, value any) bool) {
	if m == nil {
		return
	}

	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

func (m *Map) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}

	buf := bytes.Buffer{}
	buf.WriteByte('{')

	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}

		value, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal value of %s: %w", k, err)
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}
