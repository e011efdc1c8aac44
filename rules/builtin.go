package rules

import (
	"context"
	"errors"
	"mime"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/reoring/inputmodel/codec"
)

func init() {
	Register("regex", regexRule)
	Register("in", inRule(true))
	Register("private_in", inRule(false))
	Register("min_length", lengthRule("min_length", func(n, want int) bool { return n >= want }, "min"))
	Register("max_length", lengthRule("max_length", func(n, want int) bool { return n <= want }, "max"))
	Register("exact_length", lengthRule("exact_length", func(n, want int) bool { return n == want }, "exact"))
	Register("contains", containsRule)
	Register("equals", equalsRule)
	Register("min_value", valueRule("min_value", func(f, want float64) bool { return f >= want }, "min"))
	Register("max_value", valueRule("max_value", func(f, want float64) bool { return f <= want }, "max"))
	Register("starts_with", affixRule("starts_with", strings.HasPrefix))
	Register("ends_with", affixRule("ends_with", strings.HasSuffix))
	Register("upper_case", caseRule("upper_case", func() cases.Caser { return cases.Upper(language.Und) }))
	Register("lower_case", caseRule("lower_case", func() cases.Caser { return cases.Lower(language.Und) }))
	Register("alpha", charClassRule("alpha", unicode.IsLetter))
	Register("alphanumeric", charClassRule("alphanumeric", func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }))
	Register("numeric", charClassRule("numeric", unicode.IsDigit))
	Register("before", dateRule("before", func(v, bound time.Time) bool { return v.Before(bound) }))
	Register("after", dateRule("after", func(v, bound time.Time) bool { return v.After(bound) }))
	Register("min_byte_size", byteSizeRule("min_byte_size", func(n, want int) bool { return n >= want }, "min"))
	Register("max_byte_size", byteSizeRule("max_byte_size", func(n, want int) bool { return n <= want }, "max"))
	Register("mime_type", mimeRule("mime_type", func(mt string) string { return mt }))
	Register("mime_sub_type", mimeRule("mime_sub_type", func(mt string) string {
		if i := strings.IndexByte(mt, '/'); i >= 0 {
			return mt[i+1:]
		}
		return ""
	}))
}

func regexRule(arg any) (Check, error) {
	var re *regexp.Regexp
	switch t := arg.(type) {
	case *regexp.Regexp:
		if t == nil {
			return nil, errors.New("nil pattern")
		}
		re = t
	case string:
		c, err := CompileRegex(t)
		if err != nil {
			return nil, err
		}
		re = c
	default:
		return nil, errors.New("expected a pattern string or *regexp.Regexp")
	}
	return func(_ context.Context, v any, sink Sink) {
		s, ok := v.(string)
		if ok && !re.MatchString(s) {
			sink.Fail("regex", map[string]any{"pattern": re.String()})
		}
	}, nil
}

// inRule builds in/private_in. The private variant does not disclose the
// allowed values in failure params.
func inRule(disclose bool) Factory {
	name := "private_in"
	if disclose {
		name = "in"
	}
	return func(arg any) (Check, error) {
		allowed, err := listArg(arg)
		if err != nil {
			return nil, err
		}
		return func(_ context.Context, v any, sink Sink) {
			for _, a := range allowed {
				if equalValues(v, a) {
					return
				}
			}
			var params map[string]any
			if disclose {
				params = map[string]any{"allowed": allowed}
			}
			sink.Fail(name, params)
		}, nil
	}
}

func lengthOf(v any) (int, bool) {
	switch t := v.(type) {
	case string:
		return utf8.RuneCountInString(t), true
	case []any:
		return len(t), true
	}
	return 0, false
}

func lengthRule(name string, ok func(n, want int) bool, key string) Factory {
	return func(arg any) (Check, error) {
		want, err := intArg(arg)
		if err != nil {
			return nil, err
		}
		return func(_ context.Context, v any, sink Sink) {
			n, applies := lengthOf(v)
			if applies && !ok(n, want) {
				sink.Fail(name, map[string]any{key: want, "got": n})
			}
		}, nil
	}
}

func containsRule(arg any) (Check, error) {
	return func(_ context.Context, v any, sink Sink) {
		switch t := v.(type) {
		case string:
			needle, isStr := arg.(string)
			if isStr && !strings.Contains(t, needle) {
				sink.Fail("contains", map[string]any{"needle": arg})
			}
		case []any:
			for _, e := range t {
				if equalValues(e, arg) {
					return
				}
			}
			sink.Fail("contains", map[string]any{"needle": arg})
		}
	}, nil
}

func equalsRule(arg any) (Check, error) {
	return func(_ context.Context, v any, sink Sink) {
		if !equalValues(v, arg) {
			sink.Fail("equals", map[string]any{"expected": arg})
		}
	}, nil
}

func valueRule(name string, ok func(f, want float64) bool, key string) Factory {
	return func(arg any) (Check, error) {
		want, err := numberArg(arg)
		if err != nil {
			return nil, err
		}
		return func(_ context.Context, v any, sink Sink) {
			f, applies := codec.Float(v)
			if applies && !ok(f, want) {
				sink.Fail(name, map[string]any{key: want, "got": f})
			}
		}, nil
	}
}

func affixRule(name string, ok func(s, affix string) bool) Factory {
	return func(arg any) (Check, error) {
		affix, err := stringArg(arg)
		if err != nil {
			return nil, err
		}
		return func(_ context.Context, v any, sink Sink) {
			s, applies := v.(string)
			if applies && !ok(s, affix) {
				sink.Fail(name, map[string]any{"affix": affix})
			}
		}, nil
	}
}

// caseRule builds the letter casing checks. A Caser is stateful, so each
// check call gets its own.
func caseRule(name string, caser func() cases.Caser) Factory {
	return func(arg any) (Check, error) {
		if b, isBool := arg.(bool); arg != nil && (!isBool || !b) {
			return nil, errors.New("expected true or no argument")
		}
		return func(_ context.Context, v any, sink Sink) {
			s, applies := v.(string)
			if applies && caser().String(s) != s {
				sink.Fail(name, nil)
			}
		}, nil
	}
}

func charClassRule(name string, ok func(r rune) bool) Factory {
	return func(arg any) (Check, error) {
		return func(_ context.Context, v any, sink Sink) {
			s, applies := v.(string)
			if !applies {
				return
			}
			for _, r := range s {
				if !ok(r) {
					sink.Fail(name, nil)
					return
				}
			}
		}, nil
	}
}

func dateRule(name string, ok func(v, bound time.Time) bool) Factory {
	return func(arg any) (Check, error) {
		var bound func() time.Time
		if s, isStr := arg.(string); isStr && s == "now" {
			bound = time.Now
		} else {
			t, err := codec.ParseDate(arg, false)
			if err != nil {
				return nil, err
			}
			bound = func() time.Time { return t }
		}
		return func(_ context.Context, v any, sink Sink) {
			var t time.Time
			switch v.(type) {
			case time.Time, string:
				parsed, err := codec.ParseDate(v, false)
				if err != nil {
					return
				}
				t = parsed
			default:
				return
			}
			b := bound()
			if !ok(t, b) {
				sink.Fail(name, map[string]any{"bound": codec.FormatDate(b)})
			}
		}, nil
	}
}

func byteSizeRule(name string, ok func(n, want int) bool, key string) Factory {
	return func(arg any) (Check, error) {
		want, err := intArg(arg)
		if err != nil {
			return nil, err
		}
		return func(_ context.Context, v any, sink Sink) {
			var n int
			switch t := v.(type) {
			case string:
				n = len(t)
			case []byte:
				n = len(t)
			default:
				return
			}
			if !ok(n, want) {
				sink.Fail(name, map[string]any{key: want, "got": n})
			}
		}, nil
	}
}

func mimeRule(name string, part func(mediaType string) string) Factory {
	return func(arg any) (Check, error) {
		allowed, err := stringListArg(arg)
		if err != nil {
			return nil, err
		}
		for i := range allowed {
			allowed[i] = strings.ToLower(allowed[i])
		}
		return func(_ context.Context, v any, sink Sink) {
			s, applies := v.(string)
			if !applies {
				return
			}
			mt, _, err := mime.ParseMediaType(s)
			if err == nil {
				got := part(mt)
				for _, a := range allowed {
					if a == got {
						return
					}
				}
			}
			sink.Fail(name, map[string]any{"allowed": allowed})
		}, nil
	}
}
