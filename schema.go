package modelkit

import (
	"context"
	"errors"
)

// FieldValidatorFunc is a field hook. At StagePre it receives the raw input
// value and returns a value the field type can coerce; at StagePost it
// receives the typed value and returns the (possibly normalized) typed value.
type FieldValidatorFunc func(ctx context.Context, v any) (any, error)

// ModelHook is implemented by ModelPreFunc and ModelPostFunc.
type ModelHook interface{ stage() Stage }

// ModelPreFunc runs before any field coercion with the raw mapping. The
// returned mapping replaces the input for the following stages; returning nil
// keeps the current mapping.
type ModelPreFunc func(ctx context.Context, raw map[string]any) (map[string]any, error)

// ModelPostFunc runs on the typed candidate record to enforce cross-field
// rules.
type ModelPostFunc func(ctx context.Context, c *Candidate) error

func (ModelPreFunc) stage() Stage  { return StagePre }
func (ModelPostFunc) stage() Stage { return StagePost }

// FieldSerializerFunc transforms one typed field value into its external form.
type FieldSerializerFunc func(ctx context.Context, v any) (any, error)

// SerializeNext runs default field-by-field serialization of a draft.
type SerializeNext func(d *Draft) (*Representation, error)

// WrapFunc wraps whole-record serialization. d is a staging copy of the
// record; edits to it never reach the validated Record.
type WrapFunc func(ctx context.Context, d *Draft, next SerializeNext) (*Representation, error)

// FieldSpec declares one field of a Schema.
type FieldSpec struct {
	Name        string
	Type        Type
	Required    bool
	Default     any
	HasDefault  bool
	Description string
	Examples    []any
}

type fieldSerializer struct {
	when When
	fn   FieldSerializerFunc
}

type wrapSerializer struct {
	when When
	fn   WrapFunc
}

// Schema describes one entity type: its fields in declaration order and the
// hooks customizing validation and serialization. A Schema is immutable once
// built and safe for concurrent use, provided the hooks are pure.
type Schema struct {
	name        string
	description string
	fields      []FieldSpec
	index       map[string]int
	unknown     UnknownPolicy

	preField  map[string][]FieldValidatorFunc
	postField map[string][]FieldValidatorFunc
	preModel  []ModelPreFunc
	postModel []ModelPostFunc
	fieldSer  map[string][]fieldSerializer
	wrap      []wrapSerializer
}

func (s *Schema) Name() string                 { return s.name }
func (s *Schema) Description() string          { return s.description }
func (s *Schema) UnknownPolicy() UnknownPolicy { return s.unknown }

// Fields returns the field declarations in order.
func (s *Schema) Fields() []FieldSpec { return append([]FieldSpec(nil), s.fields...) }

// Field returns the declaration of name.
func (s *Schema) Field(name string) (FieldSpec, bool) {
	i, ok := s.index[name]
	if !ok {
		return FieldSpec{}, false
	}
	return s.fields[i], true
}

// ---------------- builder ----------------

type fieldHook struct {
	stage Stage
	field string
	fn    FieldValidatorFunc
}

type fieldSerHook struct {
	field string
	ser   fieldSerializer
}

// ModelBuilder declares a Schema. Errors are collected and reported by Build.
type ModelBuilder struct {
	name        string
	description string
	fields      []FieldSpec
	index       map[string]int
	unknown     UnknownPolicy
	fieldHooks  []fieldHook
	modelHooks  []ModelHook
	fieldSers   []fieldSerHook
	wraps       []wrapSerializer
	errs        []error
}

// FieldStep configures the most recently declared field.
type FieldStep struct {
	b   *ModelBuilder
	idx int // -1 when the declaration was rejected
}

// Model creates a new schema builder with safe defaults (UnknownStrip).
func Model(name string) *ModelBuilder {
	return &ModelBuilder{name: name, index: map[string]int{}, unknown: UnknownStrip}
}

func (b *ModelBuilder) fail(field string, stage Stage, err error) {
	b.errs = append(b.errs, &SchemaError{Model: b.name, Field: field, Stage: stage, Err: err})
}

// Describe sets the model description exported to JSON Schema / OpenAPI.
func (b *ModelBuilder) Describe(text string) *ModelBuilder {
	b.description = text
	return b
}

// Field declares a field. Fields are optional until marked Required.
func (b *ModelBuilder) Field(name string, t Type) *FieldStep {
	if _, dup := b.index[name]; dup {
		b.fail(name, "", ErrDuplicateField)
		return &FieldStep{b: b, idx: -1}
	}
	if t == nil {
		b.fail(name, "", ErrNilType)
		return &FieldStep{b: b, idx: -1}
	}
	b.index[name] = len(b.fields)
	b.fields = append(b.fields, FieldSpec{Name: name, Type: t})
	return &FieldStep{b: b, idx: len(b.fields) - 1}
}

func (f *FieldStep) spec() *FieldSpec {
	if f.idx < 0 {
		return &FieldSpec{}
	}
	return &f.b.fields[f.idx]
}

// Required marks the field as required and returns the builder.
func (f *FieldStep) Required() *ModelBuilder {
	f.spec().Required = true
	return f.b
}

// Optional marks the field as optional (default) and returns the builder.
func (f *FieldStep) Optional() *ModelBuilder {
	f.spec().Required = false
	return f.b
}

// Default sets the value used when the field is missing. It must be a valid
// value of the field type; it is not run through hooks.
func (f *FieldStep) Default(v any) *ModelBuilder {
	sp := f.spec()
	sp.Default = v
	sp.HasDefault = true
	sp.Required = false
	return f.b
}

// Describe attaches a description to the field.
func (f *FieldStep) Describe(text string) *FieldStep {
	f.spec().Description = text
	return f
}

// Examples attaches example values to the field.
func (f *FieldStep) Examples(v ...any) *FieldStep {
	f.spec().Examples = append(f.spec().Examples, v...)
	return f
}

func (f *FieldStep) Field(name string, t Type) *FieldStep { return f.b.Field(name, t) }
func (f *FieldStep) Build() (*Schema, error)              { return f.b.Build() }
func (f *FieldStep) MustBuild() *Schema                   { return f.b.MustBuild() }

// UnknownStrip drops keys not declared in the schema.
func (b *ModelBuilder) UnknownStrip() *ModelBuilder {
	b.unknown = UnknownStrip
	return b
}

// UnknownStrict rejects keys not declared in the schema.
func (b *ModelBuilder) UnknownStrict() *ModelBuilder {
	b.unknown = UnknownStrict
	return b
}

// UnknownPassthrough keeps undeclared keys as record extras.
func (b *ModelBuilder) UnknownPassthrough() *ModelBuilder {
	b.unknown = UnknownPassthrough
	return b
}

// ValidateField registers a field hook at StagePre or StagePost for field, or
// for every field when field is AllFields.
func (b *ModelBuilder) ValidateField(stage Stage, field string, fn FieldValidatorFunc) *ModelBuilder {
	if stage != StagePre && stage != StagePost {
		b.fail(field, stage, ErrUnknownStage)
		return b
	}
	if fn == nil {
		b.fail(field, stage, ErrNilHook)
		return b
	}
	b.fieldHooks = append(b.fieldHooks, fieldHook{stage: stage, field: field, fn: fn})
	return b
}

// ValidateModel registers a model hook. StagePre takes a ModelPreFunc and
// StagePost a ModelPostFunc.
func (b *ModelBuilder) ValidateModel(stage Stage, hook ModelHook) *ModelBuilder {
	if stage != StagePre && stage != StagePost {
		b.fail("", stage, ErrUnknownStage)
		return b
	}
	switch h := hook.(type) {
	case nil:
		b.fail("", stage, ErrNilHook)
		return b
	case ModelPreFunc:
		if h == nil {
			b.fail("", stage, ErrNilHook)
			return b
		}
	case ModelPostFunc:
		if h == nil {
			b.fail("", stage, ErrNilHook)
			return b
		}
	}
	if hook.stage() != stage {
		b.fail("", stage, ErrUnknownStage)
		return b
	}
	b.modelHooks = append(b.modelHooks, hook)
	return b
}

// SerializeField registers a "field" serializer for field, active in the
// modes selected by when.
func (b *ModelBuilder) SerializeField(field string, when When, fn FieldSerializerFunc) *ModelBuilder {
	if fn == nil {
		b.fail(field, StageField, ErrNilHook)
		return b
	}
	b.fieldSers = append(b.fieldSers, fieldSerHook{field: field, ser: fieldSerializer{when: when, fn: fn}})
	return b
}

// SerializeModel registers a "wrap" serializer active in the modes selected
// by when.
func (b *ModelBuilder) SerializeModel(when When, fn WrapFunc) *ModelBuilder {
	if fn == nil {
		b.fail(ModelLoc, StageWrap, ErrNilHook)
		return b
	}
	b.wraps = append(b.wraps, wrapSerializer{when: when, fn: fn})
	return b
}

// Build validates the declarations and returns an immutable Schema.
func (b *ModelBuilder) Build() (*Schema, error) {
	errs := append([]error(nil), b.errs...)
	s := &Schema{
		name:        b.name,
		description: b.description,
		fields:      append([]FieldSpec(nil), b.fields...),
		index:       make(map[string]int, len(b.fields)),
		unknown:     b.unknown,
		preField:    map[string][]FieldValidatorFunc{},
		postField:   map[string][]FieldValidatorFunc{},
		fieldSer:    map[string][]fieldSerializer{},
	}
	for i := range s.fields {
		fs := &s.fields[i]
		s.index[fs.Name] = i
		fs.Examples = append([]any(nil), fs.Examples...)
		if fs.HasDefault && fs.Default != nil {
			cv, err := fs.Type.Coerce(fs.Default)
			if err != nil {
				errs = append(errs, &SchemaError{Model: b.name, Field: fs.Name, Err: ErrInvalidDefault})
				continue
			}
			fs.Default = cv
		}
	}
	// resolve field hooks per field, keeping registration order
	for _, h := range b.fieldHooks {
		if h.field != AllFields {
			if _, ok := s.index[h.field]; !ok {
				errs = append(errs, &SchemaError{Model: b.name, Field: h.field, Stage: h.stage, Err: ErrUnknownField})
				continue
			}
		}
		for _, fs := range s.fields {
			if h.field != AllFields && h.field != fs.Name {
				continue
			}
			if h.stage == StagePre {
				s.preField[fs.Name] = append(s.preField[fs.Name], h.fn)
			} else {
				s.postField[fs.Name] = append(s.postField[fs.Name], h.fn)
			}
		}
	}
	for _, h := range b.modelHooks {
		switch fn := h.(type) {
		case ModelPreFunc:
			s.preModel = append(s.preModel, fn)
		case ModelPostFunc:
			s.postModel = append(s.postModel, fn)
		}
	}
	for _, h := range b.fieldSers {
		if _, ok := s.index[h.field]; !ok {
			errs = append(errs, &SchemaError{Model: b.name, Field: h.field, Stage: StageField, Err: ErrUnknownField})
			continue
		}
		s.fieldSer[h.field] = append(s.fieldSer[h.field], h.ser)
	}
	s.wrap = append(s.wrap, b.wraps...)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return s, nil
}

// MustBuild is like Build but panics on schema errors.
func (b *ModelBuilder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
