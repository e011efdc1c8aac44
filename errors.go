package inputmodel

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes produced by the engine itself. Rule failures use the rule name
// (see package rules) as their code.
const (
	CodeInvalidType      = "invalid_type"
	CodeRequired         = "required"
	CodeUnknownKey       = "unknown_key"
	CodeNoMatch          = "no_match"
	CodeParseError       = "parse_error"
	CodeArrayMinLength   = "array_min_length"
	CodeArrayMaxLength   = "array_max_length"
	CodeArrayExactLength = "array_exact_length"
)

// Issue represents a single validation entry.
type Issue struct {
	Path    string // Dot path with literal dots escaped (for example: items.2.price).
	Code    string // Engine code or rule name.
	Message string
	Hint    string // Optional: remediation hints, expected types, etc.
	// Value is the offending input value as seen by the check.
	Value any
	// Params carries rule-specific parameters (e.g., {"min":1, "got":0}).
	Params map[string]any
}

// Issues is the aggregate validation failure. It implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at items.2
		p := it.Path
		if p == "" {
			p = "<root>"
		}
		fmt.Fprintf(b, "%s at %s", it.Code, p)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Codes returns the issue codes in order. Handy for assertions and logs.
func (iss Issues) Codes() []string {
	out := make([]string, len(iss))
	for i := range iss {
		out[i] = iss[i].Code
	}
	return out
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// ConfigError reports an authoring mistake found while compiling a model.
// It never surfaces from request processing.
type ConfigError struct {
	Path   string // authoring path, e.g. "properties.address.extends"
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := "inputmodel: invalid model"
	if e.Path != "" {
		msg += " at " + e.Path
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

func configErr(at, format string, args ...any) *ConfigError {
	return &ConfigError{Path: at, Reason: fmt.Sprintf(format, args...)}
}

// Stage names the callback kind that failed.
type Stage string

const (
	StageValidate      Stage = "validate"
	StageConvert       Stage = "convert"
	StageBehavior      Stage = "behavior"
	StageBaseConstruct Stage = "base_construct"
	StageConstruct     Stage = "construct"
)

// CallbackError wraps an error returned by a user callback. It is a system
// failure: it is never merged into Issues.
type CallbackError struct {
	Path  string
	Stage Stage
	Name  string // behavior name, when Stage is StageBehavior
	Err   error
}

func (e *CallbackError) Error() string {
	p := e.Path
	if p == "" {
		p = "<root>"
	}
	stage := string(e.Stage)
	if e.Name != "" {
		stage += " " + e.Name
	}
	return fmt.Sprintf("inputmodel: %s callback failed at %s: %v", stage, p, e.Err)
}

func (e *CallbackError) Unwrap() error { return e.Err }
