package modelkit

import "context"

// Stage names a point in the validation or serialization pipeline where hooks
// may run.
type Stage string

const (
	StagePre   Stage = "pre"   // Before type coercion (raw value / raw mapping).
	StagePost  Stage = "post"  // After coercion (typed value / candidate record).
	StageField Stage = "field" // Serialization of a single field.
	StageWrap  Stage = "wrap"  // Serialization of the whole record.
)

// AllFields targets a field hook at every declared field.
const AllFields = "*"

// UnknownPolicy controls how keys not declared in the schema are handled.
type UnknownPolicy int

const (
	UnknownStrip       UnknownPolicy = iota // Drop unknown keys.
	UnknownStrict                           // Reject unknown keys with an issue.
	UnknownPassthrough                      // Keep unknown keys as record extras.
)

// Mode selects the output representation produced by Serialize.
type Mode int

const (
	ModePython Mode = iota // Internal representation: enum members stay Go values.
	ModeJSON               // External representation: JSON-compatible values only.
)

// When gates a serializer hook by Mode.
type When int

const (
	WhenAlways When = iota
	WhenJSON
	WhenPython
)

func (w When) active(m Mode) bool {
	switch w {
	case WhenJSON:
		return m == ModeJSON
	case WhenPython:
		return m == ModePython
	default:
		return true
	}
}

// ValidateOpt bundles validation options.
type ValidateOpt struct {
	// FailFast stops at the first issue instead of collecting every field
	// failure in one pass.
	FailFast bool
}

// SerializeOpt bundles serialization options.
type SerializeOpt struct {
	Mode Mode
	// ExcludeUnset drops fields that were neither present in the input nor
	// explicitly set afterwards (defaults stay out).
	ExcludeUnset bool
	// Exclude lists field names to omit.
	Exclude []string
}

func lastValidateOpt(opts []ValidateOpt) ValidateOpt {
	if len(opts) == 0 {
		return ValidateOpt{}
	}
	return opts[len(opts)-1]
}

func lastSerializeOpt(opts []SerializeOpt) SerializeOpt {
	if len(opts) == 0 {
		return SerializeOpt{}
	}
	return opts[len(opts)-1]
}

type contextKey int

const (
	_ctxKeyFailFast contextKey = iota
	_ctxKeyMode
)

// WithFailFast returns a child context that marks fail-fast validation.
// Validate sets it from ValidateOpt so hooks and rule helpers can honor it.
func WithFailFast(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, _ctxKeyFailFast, enabled)
}

// IsFailFast reports whether the current validation should stop on the first issue.
func IsFailFast(ctx context.Context) bool {
	v := ctx.Value(_ctxKeyFailFast)
	b, _ := v.(bool)
	return b
}

func withMode(ctx context.Context, m Mode) context.Context {
	return context.WithValue(ctx, _ctxKeyMode, m)
}

// ModeFrom returns the serialization mode of the running Serialize call.
// Hooks use it to tell JSON output from the internal representation.
func ModeFrom(ctx context.Context) Mode {
	m, _ := ctx.Value(_ctxKeyMode).(Mode)
	return m
}
