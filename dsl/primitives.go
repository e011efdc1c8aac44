package dsl

import (
	inputmodel "github.com/reoring/inputmodel"
)

// Builder yields an authored model.
type Builder interface {
	Model() inputmodel.Model
}

type modelBuilder struct{ m inputmodel.Model }

func (b modelBuilder) Model() inputmodel.Model { return b.m }

// From adapts a plain model so it can be passed where a Builder is expected.
func From(m inputmodel.Model) Builder { return modelBuilder{m: m} }

// ValueBuilder builds a leaf value model.
type ValueBuilder struct {
	m *inputmodel.ValueModel
}

// Type accepts any of the given type tags, tried in order.
func Type(tags ...string) *ValueBuilder {
	return &ValueBuilder{m: &inputmodel.ValueModel{Types: tags, Rules: map[string]any{}}}
}

// String accepts strings.
func String() *ValueBuilder { return Type("string") }

// Int accepts integers (and integer strings unless Strict) as int64.
func Int() *ValueBuilder { return Type("int") }

// Float accepts numbers as float64.
func Float() *ValueBuilder { return Type("float") }

// Number accepts numbers as float64.
func Number() *ValueBuilder { return Type("number") }

// Bool accepts booleans.
func Bool() *ValueBuilder { return Type("boolean") }

// Date accepts RFC 3339 timestamps (and looser layouts unless Strict) as
// time.Time.
func Date() *ValueBuilder { return Type("date") }

// Model returns the built model.
func (b *ValueBuilder) Model() inputmodel.Model { return b.m }

// Strict disables lenient string encodings.
func (b *ValueBuilder) Strict() *ValueBuilder { b.m.StrictType = true; return b }

// NoCoerce keeps matched values as received.
func (b *ValueBuilder) NoCoerce() *ValueBuilder { b.m.NoCoerce = true; return b }

// Validate appends a custom check.
func (b *ValueBuilder) Validate(fn inputmodel.ValidateFunc) *ValueBuilder {
	b.m.Validate = append(b.m.Validate, fn)
	return b
}

// Convert sets the deferred conversion.
func (b *ValueBuilder) Convert(fn inputmodel.ConvertFunc) *ValueBuilder {
	b.m.Convert = fn
	return b
}

// Extends inherits types, rules, validate and convert from parent.
func (b *ValueBuilder) Extends(parent Builder) *ValueBuilder {
	b.m.Extends = parent.Model()
	return b
}

// Rule sets a rule by name; see package rules for the catalog.
func (b *ValueBuilder) Rule(name string, arg any) *ValueBuilder {
	b.m.Rules[name] = arg
	return b
}

func (b *ValueBuilder) Regex(pattern string) *ValueBuilder  { return b.Rule("regex", pattern) }
func (b *ValueBuilder) In(values ...any) *ValueBuilder      { return b.Rule("in", values) }
func (b *ValueBuilder) PrivateIn(values ...any) *ValueBuilder {
	return b.Rule("private_in", values)
}
func (b *ValueBuilder) MinLength(n int) *ValueBuilder       { return b.Rule("min_length", n) }
func (b *ValueBuilder) MaxLength(n int) *ValueBuilder       { return b.Rule("max_length", n) }
func (b *ValueBuilder) ExactLength(n int) *ValueBuilder     { return b.Rule("exact_length", n) }
func (b *ValueBuilder) Contains(v any) *ValueBuilder        { return b.Rule("contains", v) }
func (b *ValueBuilder) Equals(v any) *ValueBuilder          { return b.Rule("equals", v) }
func (b *ValueBuilder) MinValue(f float64) *ValueBuilder    { return b.Rule("min_value", f) }
func (b *ValueBuilder) MaxValue(f float64) *ValueBuilder    { return b.Rule("max_value", f) }
func (b *ValueBuilder) StartsWith(s string) *ValueBuilder   { return b.Rule("starts_with", s) }
func (b *ValueBuilder) EndsWith(s string) *ValueBuilder     { return b.Rule("ends_with", s) }
func (b *ValueBuilder) UpperCase() *ValueBuilder            { return b.Rule("upper_case", true) }
func (b *ValueBuilder) LowerCase() *ValueBuilder            { return b.Rule("lower_case", true) }
func (b *ValueBuilder) Alpha() *ValueBuilder                { return b.Rule("alpha", true) }
func (b *ValueBuilder) Alphanumeric() *ValueBuilder         { return b.Rule("alphanumeric", true) }
func (b *ValueBuilder) Numeric() *ValueBuilder              { return b.Rule("numeric", true) }
func (b *ValueBuilder) MinByteSize(n int) *ValueBuilder     { return b.Rule("min_byte_size", n) }
func (b *ValueBuilder) MaxByteSize(n int) *ValueBuilder     { return b.Rule("max_byte_size", n) }
func (b *ValueBuilder) MimeTypes(t ...string) *ValueBuilder { return b.Rule("mime_type", t) }
func (b *ValueBuilder) MimeSubTypes(t ...string) *ValueBuilder {
	return b.Rule("mime_sub_type", t)
}

// Before requires a date earlier than bound (a time.Time, a date string or
// "now").
func (b *ValueBuilder) Before(bound any) *ValueBuilder { return b.Rule("before", bound) }

// After requires a date later than bound.
func (b *ValueBuilder) After(bound any) *ValueBuilder { return b.Rule("after", bound) }
