package dsl

import (
	inputmodel "github.com/reoring/inputmodel"
)

// AnyOf accepts the first candidate that validates. Candidates are named by
// their index.
func AnyOf(candidates ...Builder) Builder {
	m := &inputmodel.AnyOfModel{}
	for _, c := range candidates {
		m.Candidates = append(m.Candidates, inputmodel.Candidate{Model: c.Model()})
	}
	return From(m)
}

// Named pairs a candidate name with its builder for AnyOfNamed.
type Named struct {
	Name    string
	Builder Builder
}

// AnyOfNamed is AnyOf with explicit candidate names, used as path segments
// in candidate issues.
func AnyOfNamed(candidates ...Named) Builder {
	m := &inputmodel.AnyOfModel{}
	for _, c := range candidates {
		m.Candidates = append(m.Candidates, inputmodel.Candidate{Name: c.Name, Model: c.Builder.Model()})
	}
	return From(m)
}

// Optional marks b optional with a default.
func Optional(b Builder, def any) Builder {
	return From(&inputmodel.MetaModel{Model: b.Model(), Optional: true, Default: def, HasDefault: true})
}

// OptionalNoDefault marks b optional without a default.
func OptionalNoDefault(b Builder) Builder {
	return From(&inputmodel.MetaModel{Model: b.Model(), Optional: true})
}

// Nullable accepts null in addition to b.
func Nullable(b Builder) Builder {
	return From(&inputmodel.MetaModel{Model: b.Model(), Nullable: true})
}

// Ref refers to a model registered by name.
func Ref(name string) Builder { return From(inputmodel.Ref(name)) }

// Register registers b under name in reg (DefaultRegistry when nil) and
// returns a reference to it.
func Register(reg *inputmodel.Registry, name string, b Builder) (Builder, error) {
	if reg == nil {
		reg = inputmodel.DefaultRegistry
	}
	if err := reg.Register(name, b.Model()); err != nil {
		return nil, err
	}
	return Ref(name), nil
}
