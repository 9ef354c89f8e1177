// Package normalization maps loosely written configuration values onto
// canonical enum values.
package normalization

import (
	"sort"
	"strings"
)

// Normalizer maps case-insensitive, whitespace-trimmed aliases onto values of T.
type Normalizer[T comparable] struct {
	values map[string]T
	keys   []string
}

// New builds a Normalizer from alias -> value pairs.
func New[T comparable](aliases map[string]T) *Normalizer[T] {
	n := &Normalizer[T]{values: make(map[string]T, len(aliases))}
	for alias, v := range aliases {
		key := clean(alias)
		n.values[key] = v
		n.keys = append(n.keys, key)
	}
	sort.Strings(n.keys)
	return n
}

// Lookup returns the value for raw and whether it was recognized.
func (n *Normalizer[T]) Lookup(raw string) (T, bool) {
	v, ok := n.values[clean(raw)]
	return v, ok
}

// Normalize returns the value for raw or the zero value.
func (n *Normalizer[T]) Normalize(raw string) T {
	v, _ := n.Lookup(raw)
	return v
}

// Aliases lists the accepted spellings in sorted order.
func (n *Normalizer[T]) Aliases() []string {
	out := make([]string, len(n.keys))
	copy(out, n.keys)
	return out
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
