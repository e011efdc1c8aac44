package inputmodel

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mohae/deepcopy"
	"golang.org/x/sync/errgroup"

	"github.com/reoring/inputmodel/codec"
)

// slot is a writable location holding the value under processing. Slots of
// one container share the container's mutex, since siblings are processed
// concurrently and may coerce their value in place.
type slot interface {
	get() any
	set(v any)
}

type boxSlot struct {
	mu sync.Mutex
	v  any
}

func (s *boxSlot) get() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v
}

func (s *boxSlot) set(v any) {
	s.mu.Lock()
	s.v = v
	s.mu.Unlock()
}

type keySlot struct {
	mu  *sync.Mutex
	m   map[string]any
	key string
}

func (s keySlot) get() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[s.key]
}

func (s keySlot) set(v any) {
	s.mu.Lock()
	s.m[s.key] = v
	s.mu.Unlock()
}

type indexSlot struct {
	mu *sync.Mutex
	a  []any
	i  int
}

func (s indexSlot) get() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a[s.i]
}

func (s indexSlot) set(v any) {
	s.mu.Lock()
	s.a[s.i] = v
	s.mu.Unlock()
}

// scope is the per-node processing state: the node's issues and the
// deferred tasks of its subtree. Every concurrently processed child gets its
// own scope; the parent merges them in declaration order.
type scope struct {
	issues  *Accumulator
	tasks   *taskList
	collect bool
	depth   int
}

func newScope(collect bool, depth int) *scope {
	return &scope{issues: NewAccumulator(), tasks: &taskList{}, collect: collect, depth: depth}
}

func (sc *scope) child(delta int) *scope { return newScope(sc.collect, sc.depth+delta) }

func (sc *scope) merge(ch *scope) {
	if ch == nil {
		return
	}
	sc.issues.Merge(ch.issues)
	sc.tasks.splice(ch.tasks)
}

// fanOut runs fn for 0..n-1 concurrently and waits for all of them. Every
// invocation runs to completion; the first error is returned.
func fanOut(n int, fn func(i int) error) error {
	switch n {
	case 0:
		return nil
	case 1:
		return fn(0)
	}
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error { return fn(i) })
	}
	return g.Wait()
}

func (c *Compiled) run(ctx context.Context, s slot, p Path, sc *scope, nullable bool) error {
	if c.inner != nil {
		return c.inner.run(ctx, s, p, sc, nullable || c.meta.nullable)
	}
	if c.meta != nil {
		nullable = nullable || c.meta.nullable
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	switch c.kind {
	case KindObject:
		return c.runObject(ctx, s, p, sc, nullable)
	case KindArray:
		return c.runArray(ctx, s, p, sc, nullable)
	case KindAnyOf:
		return c.runAnyOf(ctx, s, p, sc, nullable)
	default:
		return c.runValue(ctx, s, p, sc, nullable)
	}
}

func typeIssue(p Path, v any, expected []string, nullable bool) Issue {
	if nullable {
		expected = append(expected[:len(expected):len(expected)], "null")
	}
	it := newIssue(p, CodeInvalidType, v, map[string]any{
		"expected": strings.Join(expected, "|"),
		"got":      kindOf(v),
	})
	it.Hint = "expected " + strings.Join(expected, " or ")
	return it
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	}
	if _, ok := codec.Float(v); ok {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}

func (c *Compiled) runValue(ctx context.Context, s slot, p Path, sc *scope, nullable bool) error {
	v := s.get()
	if v == nil && nullable {
		return nil
	}
	tag := ""
	matched := false
	for _, tc := range c.tags {
		if tc.match(v) {
			tag, matched = tc.tag, true
			break
		}
	}
	if !matched {
		expected := make([]string, len(c.tags))
		for i, tc := range c.tags {
			expected[i] = tc.tag
		}
		sc.issues.Add(typeIssue(p, v, expected, nullable))
		return nil
	}
	if v == nil {
		// an explicit "null" tag matched: nothing left to check
		return nil
	}
	if c.coerce && codec.Coercible(tag) {
		v = codec.Coerce(tag, c.strict, v)
		s.set(v)
	}

	nc := len(c.checks)
	bufs := make([]*Accumulator, nc+len(c.validate))
	err := fanOut(len(bufs), func(i int) error {
		acc := NewAccumulator()
		bufs[i] = acc
		sink := issueSink{acc: acc, path: p, value: v}
		if i < nc {
			c.checks[i].run(ctx, v, sink)
			return nil
		}
		if err := c.validate[i-nc](ctx, v, sink); err != nil {
			return &CallbackError{Path: p.String(), Stage: StageValidate, Err: err}
		}
		return nil
	})
	for _, b := range bufs {
		sc.issues.Merge(b)
	}
	if err != nil {
		return err
	}
	if len(c.converts) > 0 && sc.collect && sc.issues.IsEmpty() {
		sc.tasks.add(task{depth: sc.depth, path: p, run: func(ctx context.Context) error {
			out, err := convertChain(ctx, c.converts, s.get())
			if err != nil {
				return &CallbackError{Path: p.String(), Stage: StageConvert, Err: err}
			}
			s.set(out)
			return nil
		}})
	}
	return nil
}

func convertChain(ctx context.Context, fns []ConvertFunc, v any) (any, error) {
	var err error
	for _, fn := range fns {
		if v, err = fn(ctx, v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (c *Compiled) runArray(ctx context.Context, s slot, p Path, sc *scope, nullable bool) error {
	v := s.get()
	if v == nil && nullable {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		sc.issues.Add(typeIssue(p, v, []string{"array"}, nullable))
		return nil
	}
	n := len(arr)
	if c.minLen != nil && n < *c.minLen {
		sc.issues.Add(newIssue(p, CodeArrayMinLength, v, map[string]any{"min": *c.minLen, "got": n}))
	}
	if c.maxLen != nil && n > *c.maxLen {
		sc.issues.Add(newIssue(p, CodeArrayMaxLength, v, map[string]any{"max": *c.maxLen, "got": n}))
	}
	if c.exactLen != nil && n != *c.exactLen {
		sc.issues.Add(newIssue(p, CodeArrayExactLength, v, map[string]any{"exact": *c.exactLen, "got": n}))
	}
	if !sc.issues.IsEmpty() {
		return nil
	}

	mu := &sync.Mutex{}
	children := make([]*scope, n)
	err := fanOut(n, func(i int) error {
		ch := sc.child(1)
		children[i] = ch
		return c.item.process(ctx, indexSlot{mu: mu, a: arr, i: i}, p.Index(i), ch)
	})
	for _, ch := range children {
		sc.merge(ch)
	}
	if err != nil {
		return err
	}
	if len(c.converts) > 0 && sc.collect && sc.issues.IsEmpty() {
		sc.tasks.add(task{depth: sc.depth, path: p, run: func(ctx context.Context) error {
			out, err := convertChain(ctx, c.converts, s.get())
			if err != nil {
				return &CallbackError{Path: p.String(), Stage: StageConvert, Err: err}
			}
			s.set(out)
			return nil
		}})
	}
	return nil
}

func (c *Compiled) runObject(ctx context.Context, s slot, p Path, sc *scope, nullable bool) error {
	v := s.get()
	if v == nil && nullable {
		return nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		sc.issues.Add(typeIssue(p, v, []string{"object"}, nullable))
		return nil
	}
	if !c.moreProps {
		var unknown []string
		for k := range obj {
			if _, declared := c.propIndex[k]; !declared {
				unknown = append(unknown, k)
			}
		}
		sort.Strings(unknown)
		for _, k := range unknown {
			sc.issues.Add(newIssue(p.Field(k), CodeUnknownKey, obj[k], map[string]any{"key": k}))
		}
	}

	children := make([]*scope, len(c.props))
	var present []int
	for i, prop := range c.props {
		if _, ok := obj[prop.name]; ok {
			present = append(present, i)
			continue
		}
		if opt, def, hasDef := prop.node.Optional(); opt {
			if hasDef {
				obj[prop.name] = deepcopy.Copy(def)
			}
			continue
		}
		ch := sc.child(1)
		ch.issues.Add(newIssue(p.Field(prop.name), CodeRequired, nil, map[string]any{"key": prop.name}))
		children[i] = ch
	}

	mu := &sync.Mutex{}
	err := fanOut(len(present), func(j int) error {
		i := present[j]
		prop := c.props[i]
		ch := sc.child(1)
		children[i] = ch
		return prop.node.process(ctx, keySlot{mu: mu, m: obj, key: prop.name}, p.Field(prop.name), ch)
	})
	for _, ch := range children {
		sc.merge(ch)
	}
	if err != nil {
		return err
	}
	if sc.collect && sc.issues.IsEmpty() && c.hasObjectTask() {
		sc.tasks.add(task{depth: sc.depth, path: p, run: func(ctx context.Context) error {
			return c.finishObject(ctx, s, p, obj)
		}})
	}
	return nil
}

func (c *Compiled) hasObjectTask() bool {
	return len(c.behaviors) > 0 || c.baseConstruct != nil || len(c.constructs) > 0 || len(c.converts) > 0
}

// finishObject runs behaviors, base construct, the construct chain and the
// convert chain, in that order.
func (c *Compiled) finishObject(ctx context.Context, s slot, p Path, obj map[string]any) error {
	for _, b := range c.behaviors {
		if err := b.Attach(ctx, obj); err != nil {
			return &CallbackError{Path: p.String(), Stage: StageBehavior, Name: b.Name, Err: err}
		}
	}
	if c.baseConstruct != nil {
		if err := c.baseConstruct(ctx, obj); err != nil {
			return &CallbackError{Path: p.String(), Stage: StageBaseConstruct, Err: err}
		}
	}
	for _, fn := range c.constructs {
		if err := fn(ctx, obj); err != nil {
			return &CallbackError{Path: p.String(), Stage: StageConstruct, Err: err}
		}
	}
	if len(c.converts) == 0 {
		return nil
	}
	out, err := convertChain(ctx, c.converts, obj)
	if err != nil {
		return &CallbackError{Path: p.String(), Stage: StageConvert, Err: err}
	}
	s.set(out)
	return nil
}
