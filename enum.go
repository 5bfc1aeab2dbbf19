package modelkit

import (
	"fmt"
	"strings"
)

// EnumMember pairs a Go enum value with its external code.
type EnumMember[E comparable] struct {
	Value E
	Code  string
}

// Member constructs an EnumMember.
func Member[E comparable](v E, code string) EnumMember[E] {
	return EnumMember[E]{Value: v, Code: code}
}

// EnumTable is a closed set of values with a bidirectional mapping to their
// external codes (for example Male <-> "M").
type EnumTable[E comparable] struct {
	name    string
	members []E
	codes   []string
	toCode  map[E]string
	toValue map[string]E
}

// NewEnum builds an EnumTable from members in declaration order. It panics
// when a value or a code appears twice.
func NewEnum[E comparable](name string, members ...EnumMember[E]) *EnumTable[E] {
	t := &EnumTable[E]{
		name:    name,
		toCode:  make(map[E]string, len(members)),
		toValue: make(map[string]E, len(members)),
	}
	for _, m := range members {
		if _, dup := t.toCode[m.Value]; dup {
			panic(fmt.Sprintf("modelkit: enum %s: duplicate value %v", name, m.Value))
		}
		if _, dup := t.toValue[m.Code]; dup {
			panic(fmt.Sprintf("modelkit: enum %s: duplicate code %q", name, m.Code))
		}
		t.toCode[m.Value] = m.Code
		t.toValue[m.Code] = m.Value
		t.members = append(t.members, m.Value)
		t.codes = append(t.codes, m.Code)
	}
	return t
}

func (t *EnumTable[E]) Name() string { return t.name }

// Code returns the external code of v.
func (t *EnumTable[E]) Code(v E) (string, bool) {
	c, ok := t.toCode[v]
	return c, ok
}

// Lookup returns the member whose external code is code.
func (t *EnumTable[E]) Lookup(code string) (E, bool) {
	v, ok := t.toValue[code]
	return v, ok
}

// Members returns the values in declaration order.
func (t *EnumTable[E]) Members() []E { return append([]E(nil), t.members...) }

// Codes returns the external codes in declaration order.
func (t *EnumTable[E]) Codes() []string { return append([]string(nil), t.codes...) }

// expected renders the accepted codes as 'A', 'B' or 'C'.
func (t *EnumTable[E]) expected() string {
	q := make([]string, len(t.codes))
	for i, c := range t.codes {
		q[i] = "'" + c + "'"
	}
	if len(q) <= 1 {
		return strings.Join(q, "")
	}
	return strings.Join(q[:len(q)-1], ", ") + " or " + q[len(q)-1]
}

// EnumType is a field whose values are members of an EnumTable.
type EnumType[E comparable] struct{ table *EnumTable[E] }

// EnumOf returns a field type backed by table.
func EnumOf[E comparable](table *EnumTable[E]) *EnumType[E] { return &EnumType[E]{table: table} }

func (t *EnumType[E]) Table() *EnumTable[E] { return t.table }

func (t *EnumType[E]) Kind() Kind { return KindEnum }

func (t *EnumType[E]) Constraints() Constraints { return Constraints{Enum: t.table.Codes()} }

func (t *EnumType[E]) Accepts(v any) bool {
	e, ok := v.(E)
	if !ok {
		return false
	}
	_, known := t.table.toCode[e]
	return known
}

// Coerce accepts a member value or its external code.
func (t *EnumType[E]) Coerce(v any) (any, error) {
	if t.Accepts(v) {
		return v, nil
	}
	if s, ok := v.(string); ok {
		if e, found := t.table.Lookup(s); found {
			return e, nil
		}
	}
	return nil, typeIssue(CodeEnum, v, map[string]any{"expected": t.table.expected()})
}

// Render keeps the member in ModePython and emits its external code in ModeJSON.
func (t *EnumType[E]) Render(v any, m Mode) (any, error) {
	if m != ModeJSON {
		return v, nil
	}
	e, ok := v.(E)
	if !ok {
		return nil, fmt.Errorf("%w: %v (%T) is not a %s", ErrUnmappedEnum, v, v, t.table.name)
	}
	code, ok := t.table.Code(e)
	if !ok {
		return nil, fmt.Errorf("%w: %v in %s", ErrUnmappedEnum, v, t.table.name)
	}
	return code, nil
}
