// Package rules maps validation rule names to check factories.
//
// A factory receives the rule argument declared on a model, validates it once
// at compile time and returns a Check. A Check reports a failure to its Sink
// only when the value violates the rule. Values whose runtime type the rule
// does not apply to are ignored: enforcing types is the job of package types.
package rules

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/reoring/inputmodel/codec"
)

// Sink receives rule failures. params carries rule-specific details such as
// {"min": 3, "got": 1}.
type Sink interface {
	Fail(rule string, params map[string]any)
}

// Check validates one value.
type Check func(ctx context.Context, v any, sink Sink)

// Factory prepares a Check from a rule argument.
type Factory func(arg any) (Check, error)

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

// Register adds or replaces the factory for name.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	mu.Lock()
	registry[name] = f
	mu.Unlock()
}

// Lookup returns the factory registered for name.
func Lookup(name string) (Factory, bool) {
	mu.RLock()
	f, ok := registry[name]
	mu.RUnlock()
	return f, ok
}

// Names lists registered rule names in ascending order.
func Names() []string {
	mu.RLock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	mu.RUnlock()
	sort.Strings(out)
	return out
}

// Prepare resolves name and builds its Check.
func Prepare(name string, arg any) (Check, error) {
	f, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("rules: unknown rule %q", name)
	}
	c, err := f(arg)
	if err != nil {
		return nil, fmt.Errorf("rules: %s: %w", name, err)
	}
	return c, nil
}

// ---- regex cache ----

const regexCacheSize = 512

var regexCache, _ = lru.New[string, *regexp.Regexp](regexCacheSize)

// CompileRegex compiles pattern once and shares the result between models
// declaring the same pattern.
func CompileRegex(pattern string) (*regexp.Regexp, error) {
	if re, ok := regexCache.Get(pattern); ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	regexCache.Add(pattern, re)
	return re, nil
}

// ---- argument helpers ----

func intArg(arg any) (int, error) {
	n, ok := codec.Int(arg)
	if !ok || n < 0 {
		return 0, fmt.Errorf("expected a non-negative integer, got %#v", arg)
	}
	return int(n), nil
}

func numberArg(arg any) (float64, error) {
	f, ok := codec.Float(arg)
	if !ok {
		return 0, fmt.Errorf("expected a number, got %#v", arg)
	}
	return f, nil
}

func stringArg(arg any) (string, error) {
	s, ok := arg.(string)
	if !ok {
		return "", fmt.Errorf("expected a string, got %#v", arg)
	}
	return s, nil
}

// listArg accepts any slice or array and returns its elements.
func listArg(arg any) ([]any, error) {
	if l, ok := arg.([]any); ok {
		return l, nil
	}
	rv := reflect.ValueOf(arg)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, fmt.Errorf("expected a list, got %#v", arg)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

func stringListArg(arg any) ([]string, error) {
	l, err := listArg(arg)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(l))
	for i, v := range l {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected a list of strings, got %#v", v)
		}
		out[i] = s
	}
	return out, nil
}

// equalValues compares numbers by value regardless of their Go type and
// everything else structurally.
func equalValues(a, b any) bool {
	if fa, ok := codec.Float(a); ok {
		if fb, ok := codec.Float(b); ok {
			return fa == fb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}
