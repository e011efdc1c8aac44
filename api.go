package inputmodel

import (
	"context"

	json "github.com/goccy/go-json"
	"github.com/mohae/deepcopy"
)

type undefined struct{}

// Undefined stands for an omitted input, as opposed to an explicit null.
// Passing it to Process applies the root model's optional/default settings.
var Undefined any = undefined{}

// IsUndefined reports whether v is Undefined.
func IsUndefined(v any) bool {
	_, ok := v.(undefined)
	return ok
}

// Process validates v, coerces accepted values in place and, when every
// check passed, runs the deferred convert/construct/behavior tasks. It
// returns the processed value.
//
// Validation failures are returned as Issues (see AsIssues). Failures of
// user callbacks are returned as *CallbackError, possibly combined when
// several deferred tasks failed. Maps and slices inside v are modified; pass
// a copy when the input must be kept.
func (c *Compiled) Process(ctx context.Context, v any) (any, error) {
	if out, done, err := c.rootPresence(v); done {
		return out, err
	}
	root := &boxSlot{v: v}
	sc := newScope(true, 0)
	if err := c.process(ctx, root, "", sc); err != nil {
		return nil, err
	}
	if err := sc.issues.Err(); err != nil {
		return nil, err
	}
	if err := runTasks(ctx, sc.tasks.items, c.log); err != nil {
		return nil, err
	}
	return root.get(), nil
}

// Check validates a copy of v without running deferred tasks. It returns
// nil, Issues, or a *CallbackError raised by a validate callback.
func (c *Compiled) Check(ctx context.Context, v any) error {
	if _, done, err := c.rootPresence(v); done {
		return err
	}
	root := &boxSlot{v: deepcopy.Copy(v)}
	sc := newScope(false, 0)
	if err := c.process(ctx, root, "", sc); err != nil {
		return err
	}
	return sc.issues.Err()
}

// ProcessJSON decodes data and processes the result. Malformed JSON yields
// a single parse_error issue at the root. Numbers decode as float64.
func (c *Compiled) ProcessJSON(ctx context.Context, data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		it := newIssue("", CodeParseError, nil, map[string]any{"cause": err.Error()})
		return nil, Issues{it}
	}
	return c.Process(ctx, v)
}

func (c *Compiled) rootPresence(v any) (any, bool, error) {
	if !IsUndefined(v) {
		return nil, false, nil
	}
	opt, def, hasDef := c.Optional()
	if !opt {
		return nil, true, Issues{newIssue("", CodeRequired, nil, nil)}
	}
	if hasDef {
		return deepcopy.Copy(def), true, nil
	}
	return Undefined, true, nil
}
