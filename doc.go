// Package modelkit provides:
//
// - A declarative Schema for one flat entity: ordered primitive fields plus
// hooks that customize validation and serialization
// - Validate: a staged pipeline (model pre hooks and presence, per-field
// coercion, model post hooks, finalization) producing an immutable Record
// - A stable error model via Issues (location, scope, code, message) that
// aggregates every field failure of a call
// - Serialize: field serializers and wrap serializers rendering a Record into
// an ordered Representation, with JSON and YAML encoders
//
// Design policy:
// - Keep the public API in the root package; helpers live in sub-packages
// (rules/, hooks/, openapi/, i18n/, jsonschema/) and the CLI under cmd/modelkit.
// - Schemas are immutable after Build and safe for concurrent use as long as
// hooks are pure.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	s := modelkit.Model("User").
//	    Field("name", modelkit.String()).Required().
//	    Field("age", modelkit.Int().Ge(0)).Required().
//	    MustBuild()
//
//	rec, err := modelkit.Validate(ctx, s, map[string]any{"name": "sam", "age": 34})
//	if iss, ok := modelkit.AsIssues(err); ok {
//	    // report every issue, not just the first
//	}
//	out, err := modelkit.DumpJSON(ctx, s, rec)
package modelkit
