package inputmodel

import (
	"context"
	"strings"
	"sync"

	"github.com/mohae/deepcopy"
)

// stagedSlot holds a candidate's private copy of the value. Once the
// candidate wins, commit publishes the (possibly coerced) copy to the real
// slot and later writes, from deferred tasks, go straight through.
type stagedSlot struct {
	mu        sync.Mutex
	v         any
	target    slot
	committed bool
}

func (s *stagedSlot) get() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.committed {
		return s.target.get()
	}
	return s.v
}

func (s *stagedSlot) set(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.committed {
		s.target.set(v)
		return
	}
	s.v = v
}

func (s *stagedSlot) commit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committed = true
	s.target.set(s.v)
}

// runAnyOf tries candidates in declaration order, each against its own copy
// of the value and with isolated issues and tasks. The first candidate with
// no issues wins; its tasks join the enclosing scope. When none matches, the
// issues of every candidate are reported followed by a no_match issue.
func (c *Compiled) runAnyOf(ctx context.Context, s slot, p Path, sc *scope, nullable bool) error {
	v := s.get()
	if v == nil && nullable {
		return nil
	}
	tried := make([]*scope, 0, len(c.candidates))
	for _, cand := range c.candidates {
		st := &stagedSlot{v: deepcopy.Copy(v), target: s}
		cs := newScope(sc.collect, sc.depth)
		if err := cand.node.process(ctx, st, p.Field(cand.name), cs); err != nil {
			return err
		}
		if cs.issues.IsEmpty() {
			st.commit()
			sc.tasks.splice(cs.tasks)
			return nil
		}
		tried = append(tried, cs)
	}
	for _, cs := range tried {
		sc.issues.Merge(cs.issues)
	}
	names := make([]string, len(c.candidates))
	for i, cand := range c.candidates {
		names[i] = cand.name
	}
	sc.issues.Add(newIssue(p, CodeNoMatch, v, map[string]any{"candidates": strings.Join(names, ",")}))
	return nil
}
