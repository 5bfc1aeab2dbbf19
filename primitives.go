package modelkit

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Kind identifies the primitive semantic type of a field.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindFloat:
		return "number"
	case KindBool:
		return "boolean"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// Constraints describes the declared restrictions of a field type. Nil
// pointers mean "no constraint".
type Constraints struct {
	Ge, Gt, Le, Lt *float64
	MinLen, MaxLen *int
	Pattern        string
	// Enum lists the external codes accepted by an enum type, in member order.
	Enum []string
}

// Type is the primitive semantic type of a field. Coerce converts a raw value
// into the Go representation and applies the declared constraints; failures
// are returned as Issues without a location so the engine can attach the
// field name.
type Type interface {
	Kind() Kind
	Constraints() Constraints
	Coerce(v any) (any, error)
	// Accepts reports whether v is already a valid Go value of this type.
	Accepts(v any) bool
	// Render produces the default serialized form of a typed value.
	Render(v any, m Mode) (any, error)
}

func typeIssue(code string, input any, params map[string]any) Issues {
	return Issues{newIssue("", ScopeField, code, input, params)}
}

// ---------------- String ----------------

// StringType is a text field.
type StringType struct {
	minLen, maxLen *int
	pattern        *regexp.Regexp
}

// String returns a text type without constraints.
func String() *StringType { return &StringType{} }

// MinLen requires at least n characters.
func (s *StringType) MinLen(n int) *StringType { s.minLen = &n; return s }

// MaxLen allows at most n characters.
func (s *StringType) MaxLen(n int) *StringType { s.maxLen = &n; return s }

// Pattern requires the value to match expr. It panics when expr does not compile.
func (s *StringType) Pattern(expr string) *StringType {
	s.pattern = regexp.MustCompile(expr)
	return s
}

func (s *StringType) Kind() Kind { return KindString }

func (s *StringType) Constraints() Constraints {
	c := Constraints{MinLen: s.minLen, MaxLen: s.maxLen}
	if s.pattern != nil {
		c.Pattern = s.pattern.String()
	}
	return c
}

func (s *StringType) Accepts(v any) bool { _, ok := v.(string); return ok }

func (s *StringType) Coerce(v any) (any, error) {
	str, ok := v.(string)
	if !ok {
		return nil, typeIssue(CodeStringType, v, nil)
	}
	n := utf8.RuneCountInString(str)
	if s.minLen != nil && n < *s.minLen {
		return nil, typeIssue(CodeTooShort, v, map[string]any{"min_length": *s.minLen})
	}
	if s.maxLen != nil && n > *s.maxLen {
		return nil, typeIssue(CodeTooLong, v, map[string]any{"max_length": *s.maxLen})
	}
	if s.pattern != nil && !s.pattern.MatchString(str) {
		return nil, typeIssue(CodePattern, v, map[string]any{"pattern": s.pattern.String()})
	}
	return str, nil
}

func (s *StringType) Render(v any, _ Mode) (any, error) { return v, nil }

// ---------------- numeric bounds ----------------

type bounds struct {
	ge, gt, le, lt *float64
}

func (b *bounds) check(f float64, input any) error {
	switch {
	case b.ge != nil && !(f >= *b.ge):
		return typeIssue(CodeGreaterThanEqual, input, map[string]any{"ge": formatBound(*b.ge)})
	case b.gt != nil && !(f > *b.gt):
		return typeIssue(CodeGreaterThan, input, map[string]any{"gt": formatBound(*b.gt)})
	case b.le != nil && !(f <= *b.le):
		return typeIssue(CodeLessThanEqual, input, map[string]any{"le": formatBound(*b.le)})
	case b.lt != nil && !(f < *b.lt):
		return typeIssue(CodeLessThan, input, map[string]any{"lt": formatBound(*b.lt)})
	}
	return nil
}

func (b *bounds) constraints() Constraints {
	return Constraints{Ge: b.ge, Gt: b.gt, Le: b.le, Lt: b.lt}
}

func formatBound(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func ptr[T any](v T) *T { return &v }

// numberLike matches json.Number (encoding/json and go-json share the type).
type numberLike interface {
	Int64() (int64, error)
	Float64() (float64, error)
	String() string
}

// ---------------- Int ----------------

// IntType is an integer field; values are represented as int.
type IntType struct{ b bounds }

// Int returns an integer type without constraints.
func Int() *IntType { return &IntType{} }

// Ge requires value >= n.
func (t *IntType) Ge(n int) *IntType { t.b.ge = ptr(float64(n)); return t }

// Gt requires value > n.
func (t *IntType) Gt(n int) *IntType { t.b.gt = ptr(float64(n)); return t }

// Le requires value <= n.
func (t *IntType) Le(n int) *IntType { t.b.le = ptr(float64(n)); return t }

// Lt requires value < n.
func (t *IntType) Lt(n int) *IntType { t.b.lt = ptr(float64(n)); return t }

func (t *IntType) Kind() Kind               { return KindInt }
func (t *IntType) Constraints() Constraints { return t.b.constraints() }
func (t *IntType) Accepts(v any) bool       { _, ok := v.(int); return ok }

func (t *IntType) Coerce(v any) (any, error) {
	i, err := toInt(v)
	if err != nil {
		return nil, err
	}
	if err := t.b.check(float64(i), v); err != nil {
		return nil, err
	}
	return i, nil
}

func (t *IntType) Render(v any, _ Mode) (any, error) { return v, nil }

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		return intFromInt64(n, v)
	case uint:
		return intFromUint(uint64(n), v)
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return intFromUint(uint64(n), v)
	case uint64:
		return intFromUint(n, v)
	case float32:
		return intFromFloat(float64(n), v)
	case float64:
		return intFromFloat(n, v)
	case bool:
		return 0, typeIssue(CodeIntType, v, nil)
	case numberLike:
		if i, err := n.Int64(); err == nil {
			return intFromInt64(i, v)
		}
		if f, err := n.Float64(); err == nil {
			return intFromFloat(f, v)
		}
		return 0, typeIssue(CodeIntParsing, v, nil)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, typeIssue(CodeIntParsing, v, nil)
		}
		return intFromInt64(i, v)
	}
	return 0, typeIssue(CodeIntType, v, nil)
}

// intLimit is 2^(IntSize-1), the first magnitude past math.MaxInt. It is exact in float64.
const intLimit = float64(-math.MinInt)

func intFromInt64(i int64, input any) (int, error) {
	if i > math.MaxInt || i < math.MinInt {
		return 0, typeIssue(CodeIntParsing, input, nil)
	}
	return int(i), nil
}

func intFromUint(u uint64, input any) (int, error) {
	if u > math.MaxInt {
		return 0, typeIssue(CodeIntParsing, input, nil)
	}
	return int(u), nil
}

func intFromFloat(f float64, input any) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, typeIssue(CodeIntFromFlt, input, nil)
	}
	if f >= intLimit || f < -intLimit {
		return 0, typeIssue(CodeIntParsing, input, nil)
	}
	return int(f), nil
}

// ---------------- Float ----------------

// FloatType is a number field; values are represented as float64.
type FloatType struct{ b bounds }

// Float returns a number type without constraints.
func Float() *FloatType { return &FloatType{} }

func (t *FloatType) Ge(f float64) *FloatType { t.b.ge = ptr(f); return t }
func (t *FloatType) Gt(f float64) *FloatType { t.b.gt = ptr(f); return t }
func (t *FloatType) Le(f float64) *FloatType { t.b.le = ptr(f); return t }
func (t *FloatType) Lt(f float64) *FloatType { t.b.lt = ptr(f); return t }

func (t *FloatType) Kind() Kind               { return KindFloat }
func (t *FloatType) Constraints() Constraints { return t.b.constraints() }
func (t *FloatType) Accepts(v any) bool       { _, ok := v.(float64); return ok }

func (t *FloatType) Coerce(v any) (any, error) {
	f, err := toFloat(v)
	if err != nil {
		return nil, err
	}
	if err := t.b.check(f, v); err != nil {
		return nil, err
	}
	return f, nil
}

func (t *FloatType) Render(v any, _ Mode) (any, error) { return v, nil }

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case bool:
		return 0, typeIssue(CodeFloatType, v, nil)
	case numberLike:
		f, err := n.Float64()
		if err != nil {
			return 0, typeIssue(CodeFloatParse, v, nil)
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, typeIssue(CodeFloatParse, v, nil)
		}
		return f, nil
	}
	return 0, typeIssue(CodeFloatType, v, nil)
}

// ---------------- Bool ----------------

// BoolType is a boolean field.
type BoolType struct{}

// Bool returns the boolean type.
func Bool() *BoolType { return &BoolType{} }

func (BoolType) Kind() Kind                        { return KindBool }
func (BoolType) Constraints() Constraints          { return Constraints{} }
func (BoolType) Accepts(v any) bool                { _, ok := v.(bool); return ok }
func (BoolType) Render(v any, _ Mode) (any, error) { return v, nil }

func (BoolType) Coerce(v any) (any, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "1", "t", "true", "y", "yes", "on":
			return true, nil
		case "0", "f", "false", "n", "no", "off":
			return false, nil
		}
		return nil, typeIssue(CodeBoolParsing, v, nil)
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, numberLike:
		i, err := toInt(v)
		if err == nil && (i == 0 || i == 1) {
			return i == 1, nil
		}
		return nil, typeIssue(CodeBoolParsing, v, nil)
	}
	return nil, typeIssue(CodeBoolType, v, nil)
}
