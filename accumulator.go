package inputmodel

import (
	"fmt"

	"github.com/reoring/inputmodel/i18n"
)

// Accumulator collects issues without failing. It is not safe for concurrent
// use: the engine gives every concurrently running check its own Accumulator
// and merges them in declaration order once the batch completes.
type Accumulator struct {
	issues Issues
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator { return &Accumulator{} }

// Add appends one issue.
func (a *Accumulator) Add(it Issue) { a.issues = append(a.issues, it) }

// Merge appends every issue of o, keeping o's order.
func (a *Accumulator) Merge(o *Accumulator) {
	if o == nil || len(o.issues) == 0 {
		return
	}
	a.issues = append(a.issues, o.issues...)
}

// IsEmpty reports whether no issue was recorded.
func (a *Accumulator) IsEmpty() bool { return len(a.issues) == 0 }

// Count returns the number of recorded issues.
func (a *Accumulator) Count() int { return len(a.issues) }

// Issues returns a copy of the recorded issues.
func (a *Accumulator) Issues() Issues {
	if len(a.issues) == 0 {
		return nil
	}
	out := make(Issues, len(a.issues))
	copy(out, a.issues)
	return out
}

// Err is the single point where soft issues turn into a hard failure: it
// returns the aggregate Issues, or nil when nothing was recorded.
func (a *Accumulator) Err() error {
	if len(a.issues) == 0 {
		return nil
	}
	return a.Issues()
}

// Reporter lets validate callbacks record issues next to the built-in rules.
type Reporter interface {
	Report(code string, params map[string]any)
}

// issueSink binds an Accumulator to the path and value being checked. It
// serves both as rules.Sink and Reporter.
type issueSink struct {
	acc   *Accumulator
	path  Path
	value any
}

func (s issueSink) Fail(rule string, params map[string]any) { s.Report(rule, params) }

func (s issueSink) Report(code string, params map[string]any) {
	s.acc.Add(newIssue(s.path, code, s.value, params))
}

func newIssue(p Path, code string, v any, params map[string]any) Issue {
	return Issue{
		Path:    p.String(),
		Code:    code,
		Message: i18n.T(code, messageData(params)),
		Value:   v,
		Params:  params,
	}
}

func messageData(params map[string]any) map[string]string {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]string, len(params))
	for k, v := range params {
		out[k] = fmt.Sprint(v)
	}
	return out
}
