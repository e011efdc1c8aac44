package inputmodel

import (
	"strconv"
	"strings"
)

// Path is a dot-joined location inside the input. The root is the empty
// path. Literal dots and backslashes inside a segment are escaped as `\.` and
// `\\`, so a property named "a.b" renders as `a\.b` rather than two segments.
type Path string

var segmentEscaper = strings.NewReplacer(`\`, `\\`, ".", `\.`)

// EscapeSegment escapes literal dots and backslashes in a single segment.
func EscapeSegment(s string) string {
	if strings.IndexAny(s, `.\`) < 0 {
		return s
	}
	return segmentEscaper.Replace(s)
}

// Field appends a property segment.
func (p Path) Field(name string) Path {
	return p.join(EscapeSegment(name))
}

// Index appends an array index segment.
func (p Path) Index(i int) Path {
	return p.join(strconv.Itoa(i))
}

func (p Path) join(seg string) Path {
	if p == "" {
		return Path(seg)
	}
	return p + "." + Path(seg)
}

func (p Path) String() string { return string(p) }

// Segments splits the path back into unescaped segments.
func (p Path) Segments() []string {
	if p == "" {
		return nil
	}
	var out []string
	b := &strings.Builder{}
	s := string(p)
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && i+1 < len(s) && (s[i+1] == '.' || s[i+1] == '\\'):
			b.WriteByte(s[i+1])
			i++
		case s[i] == '.':
			out = append(out, b.String())
			b.Reset()
		default:
			b.WriteByte(s[i])
		}
	}
	return append(out, b.String())
}
