package openapi_test

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/reoring/modelkit"
	"github.com/reoring/modelkit/examples/user"
	"github.com/reoring/modelkit/openapi"
)

func TestSchemaFor_User(t *testing.T) {
	sch, err := openapi.SchemaFor(user.Schema)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"name", "age", "gender"}, sch.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
	age := sch.Properties["age"].Value
	if age.Min == nil || *age.Min != 0 {
		t.Fatalf("age minimum not exported: %+v", age.Min)
	}
	gender := sch.Properties["gender"].Value
	if diff := cmp.Diff([]any{"M", "F"}, gender.Enum); diff != "" {
		t.Fatalf("gender enum mismatch (-want +got):\n%s", diff)
	}
	if gender.Description != "only supported values M or F" {
		t.Fatalf("gender description = %q", gender.Description)
	}
}

func TestSchemaFor_VisitInput(t *testing.T) {
	sch, err := openapi.SchemaFor(user.Schema)
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"valid", `{"name":"sam sen","age":43,"gender":"F"}`, false},
		{"negative age", `{"name":"sam","age":-1,"gender":"F"}`, true},
		{"bad gender", `{"name":"x","age":20,"gender":"Q"}`, true},
		{"missing name", `{"age":20,"gender":"F"}`, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var v any
			if err := json.Unmarshal([]byte(tc.doc), &v); err != nil {
				t.Fatal(err)
			}
			err := sch.VisitJSON(v)
			if tc.wantErr != (err != nil) {
				t.Fatalf("VisitJSON(%s) err=%v, wantErr=%v", tc.doc, err, tc.wantErr)
			}
		})
	}
}

func TestSchemaFor_StrictForbidsExtras(t *testing.T) {
	s := modelkit.Model("Tag").
		Field("label", modelkit.String().MinLen(1).MaxLen(8)).Required().
		Field("weight", modelkit.Float().Gt(0).Le(1)).Default(0.5).
		UnknownStrict().
		MustBuild()
	sch, err := openapi.SchemaFor(s)
	if err != nil {
		t.Fatal(err)
	}
	if err := sch.VisitJSON(map[string]any{"label": "go", "weight": 0.3}); err != nil {
		t.Fatalf("valid doc rejected: %v", err)
	}
	if err := sch.VisitJSON(map[string]any{"label": "go", "other": true}); err == nil {
		t.Fatal("extra property accepted")
	}
	if err := sch.VisitJSON(map[string]any{"label": "go", "weight": 0.0}); err == nil {
		t.Fatal("exclusive minimum not enforced")
	}
	w := sch.Properties["weight"].Value
	if w.Default != 0.5 {
		t.Fatalf("weight default = %v", w.Default)
	}
}

func TestComponents(t *testing.T) {
	tag := modelkit.Model("Tag").Field("label", modelkit.String()).Required().MustBuild()
	comps, err := openapi.Components(user.Schema, tag)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, n := range []string{"User", "Tag"} {
		if ref, ok := comps.Schemas[n]; ok && ref.Value != nil {
			names = append(names, n)
		}
	}
	if diff := cmp.Diff([]string{"User", "Tag"}, names); diff != "" {
		t.Fatalf("components mismatch (-want +got):\n%s", diff)
	}
}
