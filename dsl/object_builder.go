package dsl

import (
	"fmt"

	inputmodel "github.com/reoring/inputmodel"
)

// ObjectBuilder builds an object model. Unknown keys are rejected unless
// AllowMoreProps is called.
type ObjectBuilder struct {
	m    *inputmodel.ObjectModel
	errs []error
	seen map[string]bool
}

// Object creates a new object builder.
func Object() *ObjectBuilder {
	return &ObjectBuilder{m: &inputmodel.ObjectModel{}, seen: map[string]bool{}}
}

func (b *ObjectBuilder) add(name string, m inputmodel.Model) {
	if name == "" {
		b.errs = append(b.errs, fmt.Errorf("dsl: empty field name"))
		return
	}
	if b.seen[name] {
		b.errs = append(b.errs, fmt.Errorf("dsl: duplicate field %q", name))
		return
	}
	b.seen[name] = true
	b.m.Properties = append(b.m.Properties, inputmodel.Property{Name: name, Model: m})
}

// Field registers a required field.
func (b *ObjectBuilder) Field(name string, f Builder) *ObjectBuilder {
	b.add(name, f.Model())
	return b
}

// Optional registers an optional field whose absence is filled with a copy
// of def.
func (b *ObjectBuilder) Optional(name string, f Builder, def any) *ObjectBuilder {
	b.add(name, Optional(f, def).Model())
	return b
}

// OptionalNoDefault registers an optional field that stays absent when
// omitted.
func (b *ObjectBuilder) OptionalNoDefault(name string, f Builder) *ObjectBuilder {
	b.add(name, OptionalNoDefault(f).Model())
	return b
}

// AllowMoreProps accepts undeclared keys and leaves them untouched.
func (b *ObjectBuilder) AllowMoreProps() *ObjectBuilder {
	b.m.MorePropsAllowed = true
	return b
}

// Behavior attaches fn, run on the accepted object before construct.
func (b *ObjectBuilder) Behavior(name string, fn inputmodel.ConstructFunc) *ObjectBuilder {
	b.m.Behaviors = append(b.m.Behaviors, inputmodel.Behavior{Name: name, Attach: fn})
	return b
}

// BaseConstruct sets the non-chained base constructor.
func (b *ObjectBuilder) BaseConstruct(fn inputmodel.ConstructFunc) *ObjectBuilder {
	b.m.BaseConstruct = fn
	return b
}

// Construct sets the constructor; ancestors' constructors run first.
func (b *ObjectBuilder) Construct(fn inputmodel.ConstructFunc) *ObjectBuilder {
	b.m.Construct = fn
	return b
}

// Convert sets the deferred conversion; ancestors' conversions run first.
func (b *ObjectBuilder) Convert(fn inputmodel.ConvertFunc) *ObjectBuilder {
	b.m.Convert = fn
	return b
}

// Extends inherits properties, behaviors and callbacks from parent.
func (b *ObjectBuilder) Extends(parent Builder) *ObjectBuilder {
	b.m.Extends = parent.Model()
	return b
}

// Model returns the built model. Builder errors surface at compile time as
// far as the model can express them; use Build to see them early.
func (b *ObjectBuilder) Model() inputmodel.Model { return b.m }

// Build returns the model or the first builder error.
func (b *ObjectBuilder) Build() (inputmodel.Model, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	return b.m, nil
}

// MustBuild is like Build but panics on error.
func (b *ObjectBuilder) MustBuild() inputmodel.Model {
	m, err := b.Build()
	if err != nil {
		panic(err)
	}
	return m
}
