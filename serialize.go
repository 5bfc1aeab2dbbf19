package modelkit

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Serialize renders a validated record. Field serializers active for the
// requested Mode replace their field's value; other fields use the type's
// default rendering. Active wrap serializers then run, outermost first, on a
// staging copy of the record; the validated Record itself is never modified.
//
// Serialization has no recoverable failures: any hook error ends the call and
// is returned wrapped in ErrSerialize.
func Serialize(ctx context.Context, s *Schema, r *Record, opts ...SerializeOpt) (*Representation, error) {
	if r == nil || s == nil || r.schema != s {
		return nil, fmt.Errorf("%w: %w", ErrSerialize, ErrSchemaMismatch)
	}
	opt := lastSerializeOpt(opts)
	ctx = withMode(ctx, opt.Mode)

	draft := r.Clone()
	base, err := s.serializeFields(ctx, draft, opt)
	if err != nil {
		return nil, err
	}

	var wraps []WrapFunc
	for _, w := range s.wrap {
		if w.when.active(opt.Mode) {
			wraps = append(wraps, w.fn)
		}
	}
	if len(wraps) == 0 {
		return base, nil
	}
	draft.serialized = base
	out, err := s.wrapChain(ctx, wraps, opt)(draft)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("%w: wrap serializer returned no representation", ErrSerialize)
	}
	return out, nil
}

// wrapChain composes wrap serializers so each one's continuation runs the
// next, ending with default field serialization.
func (s *Schema) wrapChain(ctx context.Context, wraps []WrapFunc, opt SerializeOpt) SerializeNext {
	next := SerializeNext(func(d *Draft) (*Representation, error) {
		return s.serializeFields(ctx, d, opt)
	})
	for i := len(wraps) - 1; i >= 0; i-- {
		fn, inner := wraps[i], next
		next = func(d *Draft) (*Representation, error) {
			if d == nil || d.schema != s {
				return nil, fmt.Errorf("%w: %w", ErrSerialize, ErrSchemaMismatch)
			}
			out, err := fn(ctx, d, inner)
			if err != nil {
				if errors.Is(err, ErrSerialize) {
					return nil, err
				}
				return nil, fmt.Errorf("%w: wrap: %w", ErrSerialize, err)
			}
			return out, nil
		}
	}
	return next
}

func (s *Schema) serializeFields(ctx context.Context, d *Draft, opt SerializeOpt) (*Representation, error) {
	excluded := make(map[string]struct{}, len(opt.Exclude))
	for _, n := range opt.Exclude {
		excluded[n] = struct{}{}
	}
	rep := NewRepresentation()
	for _, fs := range s.fields {
		if _, skip := excluded[fs.Name]; skip {
			continue
		}
		if opt.ExcludeUnset && !d.presence.explicit(fs.Name) {
			continue
		}
		v := d.values[fs.Name]
		out, err := s.serializeField(ctx, fs, v, opt.Mode)
		if err != nil {
			return nil, err
		}
		rep.Set(fs.Name, out)
	}
	for _, k := range sortedKeys(d.extra) {
		if _, skip := excluded[k]; skip {
			continue
		}
		rep.Set(k, d.extra[k])
	}
	return rep, nil
}

func (s *Schema) serializeField(ctx context.Context, fs FieldSpec, v any, m Mode) (any, error) {
	hooked := false
	for _, h := range s.fieldSer[fs.Name] {
		if !h.when.active(m) {
			continue
		}
		out, err := h.fn(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %w", ErrSerialize, fs.Name, err)
		}
		v, hooked = out, true
	}
	if hooked || v == nil {
		return v, nil
	}
	out, err := fs.Type.Render(v, m)
	if err != nil {
		return nil, fmt.Errorf("%w: field %q: %w", ErrSerialize, fs.Name, err)
	}
	return out, nil
}

// DumpJSON serializes r in ModeJSON and encodes it as a JSON object whose keys
// follow the schema declaration order.
func DumpJSON(ctx context.Context, s *Schema, r *Record, opts ...SerializeOpt) ([]byte, error) {
	opt := lastSerializeOpt(opts)
	opt.Mode = ModeJSON
	rep, err := Serialize(ctx, s, r, opt)
	if err != nil {
		return nil, err
	}
	return json.Marshal(rep)
}

// DumpYAML serializes r in ModeJSON and encodes it as a YAML mapping.
func DumpYAML(ctx context.Context, s *Schema, r *Record, opts ...SerializeOpt) ([]byte, error) {
	opt := lastSerializeOpt(opts)
	opt.Mode = ModeJSON
	rep, err := Serialize(ctx, s, r, opt)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(rep)
}
