package inputmodel

import (
	"context"
	"sort"
	"sync"

	"github.com/go-logr/logr"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// task is deferred work (convert, construct, behaviors) registered during
// validation. depth is the nesting level of the node that registered it.
type task struct {
	depth int
	path  Path
	run   func(ctx context.Context) error
}

type taskList struct {
	items []task
}

func (l *taskList) add(t task) { l.items = append(l.items, t) }

func (l *taskList) splice(o *taskList) {
	if o == nil {
		return
	}
	l.items = append(l.items, o.items...)
}

// runTasks executes deferred tasks deepest level first, so a container's
// task always observes the converted values of its descendants. Tasks of the
// same level touch disjoint slots and run concurrently. All failures of a
// level are combined; deeper failures stop shallower levels from running.
func runTasks(ctx context.Context, tasks []task, log logr.Logger) error {
	if len(tasks) == 0 {
		return nil
	}
	ordered := make([]task, len(tasks))
	copy(ordered, tasks)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].depth > ordered[j].depth })

	for start := 0; start < len(ordered); {
		end := start
		for end < len(ordered) && ordered[end].depth == ordered[start].depth {
			end++
		}
		level := ordered[start:end]
		var (
			mu   sync.Mutex
			errs error
			g    errgroup.Group
		)
		for _, t := range level {
			t := t
			g.Go(func() error {
				if err := t.run(ctx); err != nil {
					log.V(1).Info("deferred task failed", "path", t.path.String(), "error", err.Error())
					mu.Lock()
					errs = multierr.Append(errs, err)
					mu.Unlock()
				}
				return nil
			})
		}
		_ = g.Wait()
		if errs != nil {
			return errs
		}
		start = end
	}
	return nil
}
