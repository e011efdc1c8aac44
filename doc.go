// Package inputmodel compiles declarative input models into processors that
// validate, coerce and convert untyped input (the shape produced by decoding
// JSON into any).
//
// A model is a tree of ValueModel, ObjectModel, ArrayModel, AnyOfModel and
// MetaModel nodes; RefModel names a node held by a Registry. Compile turns a
// model into a *Compiled whose Process runs in two phases:
//
//   - Validation walks the input, fanning out over object properties, array
//     elements and per-value checks. Matched values are coerced in place and
//     every failure is collected as an Issue rather than stopping the walk.
//   - When no issue was recorded, deferred tasks (convert, construct,
//     behaviors) run deepest first so that containers see converted children.
//
// Design policy:
//   - The root package holds the public API; builders live in dsl/, type tags
//     in types/, rules in rules/, coercion in codec/ and document loading in
//     schemadoc/.
//   - Authored models are never mutated; compiled state is memoized per node.
//
// Typical usage:
//
//	m := dsl.Object().
//		Field("name", dsl.String().MinLength(1)).
//		Field("age", dsl.Int().MinValue(0)).
//		MustBuild()
//	c := inputmodel.MustCompile(m)
//	out, err := c.Process(ctx, input)
//	if iss, ok := inputmodel.AsIssues(err); ok {
//		// report iss
//	}
package inputmodel
