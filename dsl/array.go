package dsl

import (
	inputmodel "github.com/reoring/inputmodel"
)

// ArrayBuilder builds an array model.
type ArrayBuilder struct {
	m *inputmodel.ArrayModel
}

// Array accepts lists whose elements all match item.
func Array(item Builder) *ArrayBuilder {
	return &ArrayBuilder{m: &inputmodel.ArrayModel{Item: item.Model()}}
}

// Min sets the minimum number of elements.
func (b *ArrayBuilder) Min(n int) *ArrayBuilder { b.m.MinLength = &n; return b }

// Max sets the maximum number of elements.
func (b *ArrayBuilder) Max(n int) *ArrayBuilder { b.m.MaxLength = &n; return b }

// Exact sets the exact number of elements.
func (b *ArrayBuilder) Exact(n int) *ArrayBuilder { b.m.ExactLength = &n; return b }

// Convert sets the deferred conversion of the whole list.
func (b *ArrayBuilder) Convert(fn inputmodel.ConvertFunc) *ArrayBuilder {
	b.m.Convert = fn
	return b
}

func (b *ArrayBuilder) Model() inputmodel.Model { return b.m }
