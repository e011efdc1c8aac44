// Package types maps type tags ("int", "email", "uuid4", ...) to predicates
// that decide whether a runtime value carries that type.
//
// Strict predicates demand the exact runtime representation. Non-strict
// predicates additionally accept well-formed string and number encodings of
// numeric and boolean tags; the matching coercion lives in package codec.
package types

import (
	"sort"
	"sync"
)

// Predicate reports whether v has the type.
type Predicate func(v any) bool

// Factory builds the predicate for one strictness mode.
type Factory func(strict bool) Predicate

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

// Register adds or replaces the factory for tag. It is meant for
// configuration time, before models are compiled.
func Register(tag string, f Factory) {
	if tag == "" || f == nil {
		return
	}
	mu.Lock()
	registry[tag] = f
	mu.Unlock()
}

// Lookup returns the factory registered for tag.
func Lookup(tag string) (Factory, bool) {
	mu.RLock()
	f, ok := registry[tag]
	mu.RUnlock()
	return f, ok
}

// Tags lists registered tags in ascending order.
func Tags() []string {
	mu.RLock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	mu.RUnlock()
	sort.Strings(out)
	return out
}

// same wraps a predicate that does not depend on strictness.
func same(p Predicate) Factory {
	return func(bool) Predicate { return p }
}

// stringWith builds a factory for string formats.
func stringWith(check func(s string) bool) Factory {
	return same(func(v any) bool {
		s, ok := v.(string)
		return ok && check(s)
	})
}
