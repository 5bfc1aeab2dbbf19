package modelkit

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeMissing        = "missing"
	CodeModelError     = "model_error"
	CodeValueError     = "value_error"
	CodeExtraForbidden = "extra_forbidden"
	CodeParseError     = "parse_error"

	CodeStringType  = "string_type"
	CodeIntType     = "int_type"
	CodeIntParsing  = "int_parsing"
	CodeIntFromFlt  = "int_from_float"
	CodeFloatType   = "float_type"
	CodeFloatParse  = "float_parsing"
	CodeBoolType    = "bool_type"
	CodeBoolParsing = "bool_parsing"
	CodeEnum        = "enum"

	CodeGreaterThanEqual = "greater_than_equal"
	CodeGreaterThan      = "greater_than"
	CodeLessThanEqual    = "less_than_equal"
	CodeLessThan         = "less_than"
	CodeTooShort         = "string_too_short"
	CodeTooLong          = "string_too_long"
	CodePattern          = "string_pattern_mismatch"
)

// ModelLoc is the location used for issues attached to the whole model.
const ModelLoc = "__model__"

// Scope tells whether an issue belongs to a single field or to the model.
type Scope int

const (
	ScopeField Scope = iota
	ScopeModel
)

func (s Scope) String() string {
	if s == ScopeModel {
		return "model"
	}
	return "field"
}

// Issue represents a single validation entry.
type Issue struct {
	Loc     string // Field name or ModelLoc.
	Scope   Scope
	Code    string // One of the codes listed above.
	Message string
	Input   any   // Optional: offending input value.
	Cause   error // Optional: underlying error.
	// Params carries structured parameters (e.g., {"ge":0}) for i18n.
	Params map[string]any
}

// IsModel reports whether the issue is a model-level failure (presence or
// cross-field rule) rather than a single field failing coercion.
func (it Issue) IsModel() bool { return it.Scope == ScopeModel }

// Issues is a collection of validation errors that implements error. It is the
// aggregate returned by Validate; it is never partially discarded.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. enum at gender: only supported values are M or F
		fmt.Fprintf(b, "%s at %s: %s", it.Code, it.Loc, it.Message)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Fields returns the field-scoped subset in original order.
func (iss Issues) Fields() Issues { return iss.filter(ScopeField) }

// Models returns the model-scoped subset in original order.
func (iss Issues) Models() Issues { return iss.filter(ScopeModel) }

func (iss Issues) filter(s Scope) Issues {
	var out Issues
	for _, it := range iss {
		if it.Scope == s {
			out = append(out, it)
		}
	}
	return out
}

type issueJSON struct {
	Loc     string `json:"loc"`
	Scope   string `json:"scope"`
	Code    string `json:"code"`
	Message string `json:"msg"`
	Input   any    `json:"input,omitempty"`
}

// MarshalJSON renders the error surface as a list of
// {loc, scope, code, msg} entries.
func (iss Issues) MarshalJSON() ([]byte, error) {
	out := make([]issueJSON, 0, len(iss))
	for _, it := range iss {
		out = append(out, issueJSON{Loc: it.Loc, Scope: it.Scope.String(), Code: it.Code, Message: it.Message, Input: it.Input})
	}
	return json.Marshal(out)
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// Schema definition errors.
var (
	ErrDuplicateField = errors.New("duplicate field")
	ErrUnknownField   = errors.New("unknown field")
	ErrUnknownStage   = errors.New("unknown stage")
	ErrNilHook        = errors.New("nil hook")
	ErrNilType        = errors.New("nil type")
	ErrInvalidDefault = errors.New("invalid default")
)

// SchemaError is a programmer error detected while building a Schema.
type SchemaError struct {
	Model string
	Field string
	Stage Stage
	Err   error
}

func (e *SchemaError) Error() string {
	b := &strings.Builder{}
	b.WriteString("modelkit: schema ")
	b.WriteString(e.Model)
	if e.Field != "" {
		fmt.Fprintf(b, " field %q", e.Field)
	}
	if e.Stage != "" {
		fmt.Fprintf(b, " stage %q", string(e.Stage))
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *SchemaError) Unwrap() error { return e.Err }

// Serialization errors. They are never reported as Issues.
var (
	ErrSerialize      = errors.New("modelkit: serialize")
	ErrUnmappedEnum   = errors.New("modelkit: enum value has no external code")
	ErrSchemaMismatch = errors.New("modelkit: record does not belong to schema")
)
