package maputil

import (
	"iter"
	"slices"
	"strings"
)

type OrderedMap[T any] struct {
	keys []string
	// data - Important: Do not ever expose `data` out, always use the Get and Add methods as it will cause corruption between `data` and `keys`
	data map[string]T
	// caseSensitive - if true - will preserve original casing, else it will lowercase everything
	caseSensitive bool
}

func NewOrderedMap[T any](caseSensitive bool) *OrderedMap[T] {
	return &OrderedMap[T]{
		keys:          []string{},
		data:          make(map[string]T),
		caseSensitive: caseSensitive,
	}
}

func (o *OrderedMap[T]) Add(key string, value T) {
	if !o.caseSensitive {
		key = strings.ToLower(key)
	}

	// Overwriting a key keeps its original position.
	if _, ok := o.data[key]; !ok {
		o.keys = append(o.keys, key)
	}

	o.data[key] = value
}

func (o *OrderedMap[T]) Get(key string) (T, bool) {
	if !o.caseSensitive {
		key = strings.ToLower(key)
	}

	val, ok := o.data[key]
	return val, ok
}

func (o *OrderedMap[T]) Len() int {
	return len(o.keys)
}

func (o *OrderedMap[T]) Keys() []string {
	return slices.Clone(o.keys)
}

// All returns an in-order iterator over key-value pairs.
func (o *OrderedMap[T]) All() iter.Seq2[string, T] {
	return func(yield func(string, T) bool) {
		for _, key := range o.keys {
			if value, ok := o.Get(key); ok {
				if !yield(key, value) {
					break
				}
			}
		}
	}
}
