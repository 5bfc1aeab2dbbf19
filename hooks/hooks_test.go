package hooks_test

import (
	"context"
	"errors"
	"testing"

	"github.com/reoring/modelkit"
	"github.com/reoring/modelkit/hooks"
)

type size int

const (
	small size = iota
	large
	huge
)

var sizes = modelkit.NewEnum("Size", modelkit.Member(small, "S"), modelkit.Member(large, "L"))

func TestStripTags(t *testing.T) {
	cases := []struct {
		in   any
		want any
	}{
		{"<b>sam</b> sen", "sam sen"},
		{"  <script>alert(1)</script>ann  ", "ann"},
		{"tom &amp; jerry", "tom & jerry"},
		{42, 42},
	}
	fn := hooks.StripTags()
	for _, tc := range cases {
		got, err := fn(context.Background(), tc.in)
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.want {
			t.Fatalf("StripTags(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestTrimSpace(t *testing.T) {
	got, _ := hooks.TrimSpace()(context.Background(), "  a b \n")
	if got != "a b" {
		t.Fatalf("got %q", got)
	}
}

func TestCapitalize(t *testing.T) {
	cases := map[string]string{
		"sam sen": "Sam sen",
		"SAM SEN": "Sam sen",
		"élodie":  "Élodie",
		"":        "",
		"1st":     "1st",
	}
	for in, want := range cases {
		if got := hooks.Capitalize(in); got != want {
			t.Fatalf("Capitalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEnumCode(t *testing.T) {
	fn := hooks.EnumCode(sizes, "only S or L")
	got, err := fn(context.Background(), "L")
	if err != nil || got != large {
		t.Fatalf("EnumCode(L) = %v, %v", got, err)
	}
	for _, in := range []any{"M", "s", 1, nil} {
		if _, err := fn(context.Background(), in); err == nil || err.Error() != "only S or L" {
			t.Fatalf("EnumCode(%v) err = %v", in, err)
		}
	}
}

func TestEnumLabel(t *testing.T) {
	fn := hooks.EnumLabel(map[size]string{small: "small", large: "large"})
	got, err := fn(context.Background(), large)
	if err != nil || got != "large" {
		t.Fatalf("EnumLabel(large) = %v, %v", got, err)
	}
	for _, in := range []any{huge, "L"} {
		if _, err := fn(context.Background(), in); !errors.Is(err, modelkit.ErrUnmappedEnum) {
			t.Fatalf("EnumLabel(%v) err = %v", in, err)
		}
	}
}

func TestCapitalizeField_InSchema(t *testing.T) {
	s := modelkit.Model("Person").
		Field("name", modelkit.String()).Required().
		Field("size", modelkit.EnumOf(sizes)).Required().
		ValidateField(modelkit.StagePre, "name", hooks.StripTags()).
		ValidateField(modelkit.StagePre, "size", hooks.EnumCode(sizes, "only S or L")).
		SerializeField("size", modelkit.WhenJSON, hooks.EnumLabel(map[size]string{small: "small", large: "large"})).
		SerializeModel(modelkit.WhenJSON, hooks.CapitalizeField("name")).
		MustBuild()
	ctx := context.Background()
	rec, err := modelkit.Validate(ctx, s, map[string]any{"name": "<i>sam sen</i>", "size": "S"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := modelkit.DumpJSON(ctx, s, rec)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(b), `{"name":"Sam sen","size":"small"}`; got != want {
		t.Fatalf("DumpJSON = %s, want %s", got, want)
	}
	if got := rec.String(); got != "name='sam sen' size=0" {
		t.Fatalf("String() = %q", got)
	}
}
