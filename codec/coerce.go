// Package codec performs the best-effort coercion applied after a value matched
// a type tag, plus the number/bool/date parsing shared by the type and rule
// registries.
package codec

import "time"

// Coerce converts v to the canonical runtime type for tag:
//
//	int            -> int64
//	float, number  -> float64
//	boolean        -> bool
//	date           -> time.Time (UTC)
//
// Numbers of any Go type are canonicalised too, so 30 decoded from JSON and
// "30" both come out as int64(30). Tags without a canonical form and input
// that cannot be converted are returned unchanged. Coerce never fails.
func Coerce(tag string, strict bool, v any) any {
	switch tag {
	case "int":
		switch t := v.(type) {
		case string:
			if i, ok := ParseInt(t); ok {
				return i
			}
		default:
			if i, ok := Int(t); ok {
				return i
			}
		}
	case "float", "number":
		switch t := v.(type) {
		case string:
			if f, ok := ParseNumber(t); ok {
				return f
			}
		default:
			if f, ok := Float(t); ok {
				return f
			}
		}
	case "boolean":
		if _, isBool := v.(bool); isBool {
			return v
		}
		if b, ok := ParseBool(v); ok {
			return b
		}
	case "date":
		if _, isTime := v.(time.Time); isTime {
			return v
		}
		if t, err := ParseDate(v, strict); err == nil {
			return t.UTC()
		}
	}
	return v
}

// Coercible reports whether Coerce may change values matched by tag.
func Coercible(tag string) bool {
	switch tag {
	case "int", "float", "number", "boolean", "date":
		return true
	}
	return false
}
