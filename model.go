package inputmodel

import "context"

// Model is an authored, declarative description of acceptable input. It is
// one of *ValueModel, *ObjectModel, *ArrayModel, *AnyOfModel, *MetaModel or
// *RefModel. Authored models are never mutated by compilation.
type Model interface {
	isModel()
}

// ValidateFunc is a custom check run after built-in rules. It reports
// findings through r; a returned error aborts processing as a system failure.
type ValidateFunc func(ctx context.Context, v any, r Reporter) error

// ConvertFunc maps an accepted value to its output form. It runs in the
// deferred phase, after every check in the request passed.
type ConvertFunc func(ctx context.Context, v any) (any, error)

// ConstructFunc mutates an accepted object in place.
type ConstructFunc func(ctx context.Context, obj map[string]any) error

// ValueModel describes a leaf value.
type ValueModel struct {
	// Types lists acceptable type tags (see package types), tried in order.
	Types []string
	// StrictType disables lenient matching of string encodings
	// ("42" for int, "true" for boolean, loose date layouts).
	StrictType bool
	// NoCoerce keeps matched values in their input representation.
	NoCoerce bool
	// Rules maps rule names (see package rules) to their arguments.
	Rules    map[string]any
	Validate []ValidateFunc
	Convert  ConvertFunc
	// Extends names a ValueModel whose declarations are inherited.
	Extends Model
}

// Property is one named field of an ObjectModel.
type Property struct {
	Name  string
	Model Model
}

// Behavior attaches derived data or methods to an accepted object.
type Behavior struct {
	Name   string
	Attach ConstructFunc
}

// ObjectModel describes a string-keyed record.
type ObjectModel struct {
	Properties []Property
	Behaviors  []Behavior
	// BaseConstruct is not chained: an own BaseConstruct replaces the
	// inherited one.
	BaseConstruct ConstructFunc
	// Construct and Convert are chained with ancestors, ancestor first.
	Construct ConstructFunc
	Convert   ConvertFunc
	// MorePropsAllowed accepts keys that are not declared.
	MorePropsAllowed bool
	Extends          Model
}

// ArrayModel describes an ordered list where every element matches Item.
type ArrayModel struct {
	Item        Model
	MinLength   *int
	MaxLength   *int
	ExactLength *int
	Convert     ConvertFunc
}

// Candidate is one alternative of an AnyOfModel. An empty Name resolves to
// the candidate's index.
type Candidate struct {
	Name  string
	Model Model
}

// AnyOfModel accepts the first candidate that validates without issues.
type AnyOfModel struct {
	Candidates []Candidate
}

// MetaModel decorates Model with presence and nullability.
type MetaModel struct {
	Model    Model
	Optional bool
	// Default is injected, deep-copied, when an optional property is absent.
	// It only applies when HasDefault is set, so nil can be a default.
	Default    any
	HasDefault bool
	Nullable   bool
}

// RefModel refers to a model registered under Name. It resolves at compile
// time, which allows recursive models.
type RefModel struct {
	Name string
}

func (*ValueModel) isModel()  {}
func (*ObjectModel) isModel() {}
func (*ArrayModel) isModel()  {}
func (*AnyOfModel) isModel()  {}
func (*MetaModel) isModel()   {}
func (*RefModel) isModel()    {}

// Ref returns a reference to a registered model.
func Ref(name string) *RefModel { return &RefModel{Name: name} }

// Kind classifies compiled nodes.
type Kind int

const (
	KindValue Kind = iota
	KindObject
	KindArray
	KindAnyOf
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindAnyOf:
		return "anyOf"
	}
	return "unknown"
}
