// Package dsl provides fluent builders for inputmodel models.
//
// Overview
//   - Values: String()/Int()/Float()/Number()/Bool()/Date()/Type(tags...) return a
//     *ValueBuilder with rule methods (MinLength, Regex, In, ...), Strict, NoCoerce,
//     Validate, Convert and Extends.
//   - Objects: Object().Field(name, b).Optional(name, b, default).AllowMoreProps().
//   - Arrays: Array(item).Min(n).Max(n).Exact(n).
//   - Combinators: AnyOf, AnyOfNamed, Optional, OptionalNoDefault, Nullable, Ref.
//   - Typed output: BindTo[T]() returns a convert function that decodes the
//     processed map into T.
//
// Every builder implements Builder; From(m) adapts a plain inputmodel.Model.
// A builder returns the same model on every Model() call, so a builder shared
// by several parents compiles once.
//
// Example
//
//	user := dsl.Object().
//	    Field("name", dsl.String().MinLength(1)).
//	    Optional("tags", dsl.Array(dsl.String()), []any{}).
//	    Convert(dsl.BindTo[User]()).
//	    MustBuild()
//	c := inputmodel.MustCompile(user)
//	out, err := c.Process(ctx, input) // out is User
package dsl
