// Package params holds the pipeline parameter store and the %KEY% macro
// resolver that reads from it.
package params

import (
	"fmt"
	"sort"
)

// Value is a parameter value: either a scalar string or an ordered list of
// strings such as exclusion masks or published ports.
type Value struct {
	text   string
	list   []string
	isList bool
}

// String builds a scalar value.
func String(s string) Value {
	return Value{text: s}
}

// List builds a list value. The slice is copied.
func List(items ...string) Value {
	return Value{list: append([]string(nil), items...), isList: true}
}

// Of converts a loosely typed value (string, []string, []any or any
// fmt.Stringer-compatible scalar) into a Value.
func Of(v any) Value {
	switch typed := v.(type) {
	case Value:
		return typed
	case string:
		return String(typed)
	case []string:
		return List(typed...)
	case []any:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprint(item))
		}
		return List(items...)
	case nil:
		return String("")
	default:
		return String(fmt.Sprint(typed))
	}
}

// IsList reports whether the value holds a list.
func (v Value) IsList() bool {
	return v.isList
}

// Text returns the scalar form. List values return an empty string.
func (v Value) Text() string {
	return v.text
}

// Items returns the list form. A scalar value becomes a one element list,
// an empty scalar becomes an empty list.
func (v Value) Items() []string {
	if v.isList {
		return append([]string(nil), v.list...)
	}
	if v.text == "" {
		return nil
	}
	return []string{v.text}
}

// Store is a key/value parameter map. Later additions overwrite earlier
// values with the same key. A Store belongs to a single pipeline run and is
// not safe for concurrent mutation.
type Store struct {
	values map[string]Value
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{values: make(map[string]Value)}
}

// AddParams merges the mapping into the store.
func (s *Store) AddParams(mapping map[string]Value) *Store {
	for key, value := range mapping {
		s.values[key] = value
	}
	return s
}

// Set stores a single value.
func (s *Store) Set(key string, value Value) *Store {
	s.values[key] = value
	return s
}

// Lookup returns the raw value for key and whether it exists.
func (s *Store) Lookup(key string) (Value, bool) {
	v, ok := s.values[key]
	return v, ok
}

// GetParam returns the raw, unexpanded scalar value for key or def when the
// key is absent.
func (s *Store) GetParam(key, def string) string {
	if v, ok := s.values[key]; ok && !v.isList {
		return v.text
	}
	return def
}

// GetList returns the raw list for key or def when the key is absent.
func (s *Store) GetList(key string, def []string) []string {
	if v, ok := s.values[key]; ok {
		return v.Items()
	}
	return def
}

// Keys returns every key in sorted order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	return len(s.values)
}
