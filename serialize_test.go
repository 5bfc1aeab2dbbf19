package modelkit_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/modelkit"
)

type color int

const (
	red color = iota + 1
	blue
	green // not in the table
)

var colors = modelkit.NewEnum("Color", modelkit.Member(red, "R"), modelkit.Member(blue, "B"))

func paintSchema(t *testing.T, extra func(*modelkit.ModelBuilder)) *modelkit.Schema {
	t.Helper()
	b := modelkit.Model("Paint").
		Field("label", modelkit.String()).Required().
		Field("color", modelkit.EnumOf(colors)).Required().
		Field("coats", modelkit.Int()).Default(1)
	if extra != nil {
		extra(b)
	}
	s, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func mustValidate(t *testing.T, s *modelkit.Schema, in map[string]any) *modelkit.Record {
	t.Helper()
	rec, err := modelkit.Validate(context.Background(), s, in)
	if err != nil {
		t.Fatal(err)
	}
	return rec
}

func TestSerialize_DefaultRendering(t *testing.T) {
	s := paintSchema(t, nil)
	rec := mustValidate(t, s, map[string]any{"label": "wall", "color": "B"})

	py, err := modelkit.Serialize(context.Background(), s, rec)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]any{"label": "wall", "color": blue, "coats": 1}, py.Map()); diff != "" {
		t.Fatalf("python mismatch (-want +got):\n%s", diff)
	}

	js, err := modelkit.Serialize(context.Background(), s, rec, modelkit.SerializeOpt{Mode: modelkit.ModeJSON})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"label", "color", "coats"}, js.Keys()); diff != "" {
		t.Fatalf("key order mismatch (-want +got):\n%s", diff)
	}
	if c, _ := js.Get("color"); c != "B" {
		t.Fatalf("json color = %v", c)
	}
}

func TestSerialize_FieldHookGating(t *testing.T) {
	s := paintSchema(t, func(b *modelkit.ModelBuilder) {
		b.SerializeField("label", modelkit.WhenJSON, func(_ context.Context, v any) (any, error) {
			return strings.ToUpper(v.(string)), nil
		})
		b.SerializeField("coats", modelkit.WhenPython, func(_ context.Context, v any) (any, error) {
			return v.(int) * 10, nil
		})
		b.SerializeField("label", modelkit.WhenAlways, func(_ context.Context, v any) (any, error) {
			return v.(string) + "!", nil
		})
	})
	rec := mustValidate(t, s, map[string]any{"label": "wall", "color": "R", "coats": 2})

	py, err := modelkit.Serialize(context.Background(), s, rec, modelkit.SerializeOpt{Mode: modelkit.ModePython})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]any{"label": "wall!", "color": red, "coats": 20}, py.Map()); diff != "" {
		t.Fatalf("python mismatch (-want +got):\n%s", diff)
	}
	b, err := modelkit.DumpJSON(context.Background(), s, rec)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(b), `{"label":"WALL!","color":"R","coats":2}`; got != want {
		t.Fatalf("DumpJSON = %s, want %s", got, want)
	}
}

func TestSerialize_WrapChain(t *testing.T) {
	var trace []string
	s := paintSchema(t, func(b *modelkit.ModelBuilder) {
		b.SerializeModel(modelkit.WhenAlways, func(_ context.Context, d *modelkit.Draft, next modelkit.SerializeNext) (*modelkit.Representation, error) {
			trace = append(trace, "outer")
			if base := d.Serialized(); base == nil || base.Len() != 3 {
				t.Errorf("outer: base representation missing: %v", base)
			}
			rep, err := next(d)
			if err != nil {
				return nil, err
			}
			rep.Set("checked", true)
			return rep, nil
		})
		b.SerializeModel(modelkit.WhenAlways, func(_ context.Context, d *modelkit.Draft, next modelkit.SerializeNext) (*modelkit.Representation, error) {
			trace = append(trace, "inner")
			if err := d.Set("label", "staged"); err != nil {
				return nil, err
			}
			return next(d)
		})
		b.SerializeModel(modelkit.WhenPython, func(_ context.Context, d *modelkit.Draft, next modelkit.SerializeNext) (*modelkit.Representation, error) {
			trace = append(trace, "python only")
			return next(d)
		})
	})
	rec := mustValidate(t, s, map[string]any{"label": "wall", "color": "R"})
	b, err := modelkit.DumpJSON(context.Background(), s, rec)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(b), `{"label":"staged","color":"R","coats":1,"checked":true}`; got != want {
		t.Fatalf("DumpJSON = %s, want %s", got, want)
	}
	if diff := cmp.Diff([]string{"outer", "inner"}, trace); diff != "" {
		t.Fatalf("wrap order mismatch (-want +got):\n%s", diff)
	}
	if label, _ := modelkit.Value[string](rec, "label"); label != "wall" {
		t.Fatalf("record mutated: label=%q", label)
	}
}

func TestSerialize_DraftRejectsInvalidValues(t *testing.T) {
	s := paintSchema(t, nil)
	rec := mustValidate(t, s, map[string]any{"label": "wall", "color": "R"})
	d := rec.Clone()
	if err := d.Set("coats", "two"); err == nil {
		t.Fatal("draft accepted a string for an int field")
	}
	if err := d.Set("nope", 1); !errors.Is(err, modelkit.ErrUnknownField) {
		t.Fatalf("err = %v, want ErrUnknownField", err)
	}
	if err := d.Set("coats", 3); err != nil {
		t.Fatal(err)
	}
	if v, _ := modelkit.DraftValue[int](d, "coats"); v != 3 {
		t.Fatalf("draft coats = %d", v)
	}
	if v, _ := modelkit.Value[int](rec, "coats"); v != 1 {
		t.Fatalf("record coats = %d", v)
	}
}

func TestSerialize_Errors(t *testing.T) {
	boom := errors.New("boom")
	cases := []struct {
		name   string
		extra  func(*modelkit.ModelBuilder)
		target error
	}{
		{
			name: "field hook error",
			extra: func(b *modelkit.ModelBuilder) {
				b.SerializeField("label", modelkit.WhenAlways, func(context.Context, any) (any, error) { return nil, boom })
			},
			target: boom,
		},
		{
			name: "wrap hook error",
			extra: func(b *modelkit.ModelBuilder) {
				b.SerializeModel(modelkit.WhenJSON, func(context.Context, *modelkit.Draft, modelkit.SerializeNext) (*modelkit.Representation, error) {
					return nil, boom
				})
			},
			target: boom,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := paintSchema(t, tc.extra)
			rec := mustValidate(t, s, map[string]any{"label": "wall", "color": "R"})
			_, err := modelkit.DumpJSON(context.Background(), s, rec)
			if !errors.Is(err, modelkit.ErrSerialize) || !errors.Is(err, tc.target) {
				t.Fatalf("err = %v, want ErrSerialize wrapping %v", err, tc.target)
			}
			if _, ok := modelkit.AsIssues(err); ok {
				t.Fatal("serialization errors must not be Issues")
			}
		})
	}
}

func TestSerialize_UnmappedEnum(t *testing.T) {
	if _, err := modelkit.EnumOf(colors).Render(green, modelkit.ModeJSON); !errors.Is(err, modelkit.ErrUnmappedEnum) {
		t.Fatalf("err = %v, want ErrUnmappedEnum", err)
	}
	s := paintSchema(t, func(b *modelkit.ModelBuilder) {
		b.SerializeField("color", modelkit.WhenJSON, func(_ context.Context, v any) (any, error) {
			// a broken mapping that drifts outside the table
			return modelkit.EnumOf(colors).Render(v.(color)+2, modelkit.ModeJSON)
		})
	})
	rec := mustValidate(t, s, map[string]any{"label": "wall", "color": "R"})
	_, err := modelkit.DumpJSON(context.Background(), s, rec)
	if !errors.Is(err, modelkit.ErrSerialize) || !errors.Is(err, modelkit.ErrUnmappedEnum) {
		t.Fatalf("err = %v, want ErrSerialize wrapping ErrUnmappedEnum", err)
	}
	if _, err := modelkit.DumpJSON(context.Background(), s, rec, modelkit.SerializeOpt{Exclude: []string{"color"}}); err != nil {
		t.Fatalf("excluded field still serialized: %v", err)
	}
}

func TestSerialize_SchemaMismatch(t *testing.T) {
	a := paintSchema(t, nil)
	b := paintSchema(t, nil)
	rec := mustValidate(t, a, map[string]any{"label": "wall", "color": "R"})
	_, err := modelkit.Serialize(context.Background(), b, rec)
	if !errors.Is(err, modelkit.ErrSchemaMismatch) {
		t.Fatalf("err = %v, want ErrSchemaMismatch", err)
	}
}

func TestSerialize_ExcludeOptions(t *testing.T) {
	s := paintSchema(t, func(b *modelkit.ModelBuilder) { b.UnknownPassthrough() })
	rec := mustValidate(t, s, map[string]any{"label": "wall", "color": "R", "note": "x"})

	rep, err := modelkit.Serialize(context.Background(), s, rec, modelkit.SerializeOpt{Mode: modelkit.ModeJSON, ExcludeUnset: true})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"label", "color", "note"}, rep.Keys()); diff != "" {
		t.Fatalf("ExcludeUnset keys mismatch (-want +got):\n%s", diff)
	}

	rep, err = modelkit.Serialize(context.Background(), s, rec, modelkit.SerializeOpt{Mode: modelkit.ModeJSON, Exclude: []string{"color", "note"}})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"label", "coats"}, rep.Keys()); diff != "" {
		t.Fatalf("Exclude keys mismatch (-want +got):\n%s", diff)
	}
}

func TestDumpYAML_KeepsOrder(t *testing.T) {
	s := paintSchema(t, nil)
	rec := mustValidate(t, s, map[string]any{"label": "wall", "color": "B", "coats": 2})
	b, err := modelkit.DumpYAML(context.Background(), s, rec)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(b), "label: wall\ncolor: B\ncoats: 2\n"; got != want {
		t.Fatalf("DumpYAML = %q, want %q", got, want)
	}
}

func TestRepresentation(t *testing.T) {
	r := modelkit.NewRepresentation()
	r.Set("b", 1)
	r.Set("a", 2)
	r.Set("b", 3)
	r.Delete("missing")
	if diff := cmp.Diff([]string{"b", "a"}, r.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	c := r.Clone()
	c.Delete("b")
	if r.Len() != 2 || c.Len() != 1 {
		t.Fatalf("clone shares state: %d %d", r.Len(), c.Len())
	}
	b, err := r.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"b":3,"a":2}` {
		t.Fatalf("json = %s", b)
	}
}
