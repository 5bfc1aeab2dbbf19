package modelkit

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Record is a validated entity instance. It is created only by Validate and
// is immutable; use Clone to obtain a mutable Draft.
type Record struct {
	schema   *Schema
	values   map[string]any
	raw      map[string]any
	presence PresenceMap
	extra    map[string]any
}

// Schema returns the schema the record was validated against.
func (r *Record) Schema() *Schema { return r.schema }

// Get returns the typed value of a field. Unset optional fields report false.
func (r *Record) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Raw returns the input value of a field as it was before coercion.
func (r *Record) Raw(name string) (any, bool) {
	v, ok := r.raw[name]
	return v, ok
}

// Presence returns a copy of the per-field presence flags.
func (r *Record) Presence() PresenceMap { return r.presence.clone() }

// FieldsSet returns the names of fields present in the input, in schema order.
func (r *Record) FieldsSet() []string {
	var out []string
	for _, fs := range r.schema.fields {
		if r.presence.Has(fs.Name, PresenceSeen) {
			out = append(out, fs.Name)
		}
	}
	return out
}

// Extra returns a copy of the undeclared keys kept under UnknownPassthrough.
func (r *Record) Extra() map[string]any {
	if len(r.extra) == 0 {
		return nil
	}
	out := make(map[string]any, len(r.extra))
	for k, v := range r.extra {
		out[k] = v
	}
	return out
}

// Clone returns a mutable staging copy of the record.
func (r *Record) Clone() *Draft {
	return &Draft{
		schema:   r.schema,
		values:   copyMap(r.values),
		presence: r.presence.clone(),
		extra:    copyMap(r.extra),
	}
}

// String renders the debug representation, e.g. name='sam sen' age=43 gender=Female.
func (r *Record) String() string { return reprFields(r.schema, r.values) }

// Value returns the typed value of a field as T.
func Value[T any](r *Record, name string) (T, bool) {
	var zero T
	v, ok := r.values[name]
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// Candidate is the typed, not-yet-finalized result of field coercion handed
// to model post hooks. It also exposes the raw values captured before
// coercion, so rules written against external codes keep working.
type Candidate struct {
	schema *Schema
	values map[string]any
	raw    map[string]any
}

func (c *Candidate) Schema() *Schema { return c.schema }

// Get returns the typed value of a field.
func (c *Candidate) Get(name string) (any, bool) {
	v, ok := c.values[name]
	return v, ok
}

// Raw returns the pre-coercion input value of a field.
func (c *Candidate) Raw(name string) (any, bool) {
	v, ok := c.raw[name]
	return v, ok
}

// CandidateValue returns the typed value of a candidate field as T.
func CandidateValue[T any](c *Candidate, name string) (T, bool) {
	var zero T
	v, ok := c.values[name]
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// Draft is a mutable staging copy of a Record used by wrap serializers.
type Draft struct {
	schema     *Schema
	values     map[string]any
	presence   PresenceMap
	extra      map[string]any
	serialized *Representation
}

func (d *Draft) Schema() *Schema { return d.schema }

// Get returns the current value of a field.
func (d *Draft) Get(name string) (any, bool) {
	v, ok := d.values[name]
	return v, ok
}

// Set assigns a field. The value must be valid for the field type; unknown
// fields are rejected.
func (d *Draft) Set(name string, v any) error {
	fs, ok := d.schema.Field(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if v != nil && !fs.Type.Accepts(v) {
		return fmt.Errorf("modelkit: draft: %v (%T) is not a valid %s for %q", v, v, fs.Type.Kind(), name)
	}
	d.values[name] = v
	d.presence[name] |= PresenceSet
	return nil
}

// Serialized returns the field-serialized representation of the record the
// draft was cloned from. It is only populated inside a wrap serializer.
func (d *Draft) Serialized() *Representation {
	if d.serialized == nil {
		return nil
	}
	return d.serialized.Clone()
}

// DraftValue returns the value of a draft field as T.
func DraftValue[T any](d *Draft, name string) (T, bool) {
	var zero T
	v, ok := d.values[name]
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func reprFields(s *Schema, values map[string]any) string {
	parts := make([]string, 0, len(s.fields))
	for _, fs := range s.fields {
		v, ok := values[fs.Name]
		if !ok {
			continue
		}
		parts = append(parts, fs.Name+"="+reprValue(v))
	}
	return strings.Join(parts, " ")
}

func reprValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "None"
	case string:
		return "'" + strings.ReplaceAll(t, "'", `\'`) + "'"
	case bool:
		if t {
			return "True"
		}
		return "False"
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// sortedKeys returns map keys in ascending order for deterministic behavior.
func sortedKeys(m map[string]any) []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}
