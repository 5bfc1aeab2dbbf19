package modelkit_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/modelkit"
)

func TestEnumTable(t *testing.T) {
	if code, ok := colors.Code(blue); !ok || code != "B" {
		t.Fatalf("Code(blue) = %q, %v", code, ok)
	}
	if _, ok := colors.Code(green); ok {
		t.Fatal("green has no code")
	}
	if v, ok := colors.Lookup("R"); !ok || v != red {
		t.Fatalf("Lookup(R) = %v, %v", v, ok)
	}
	if diff := cmp.Diff([]color{red, blue}, colors.Members()); diff != "" {
		t.Fatalf("members mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"R", "B"}, colors.Codes()); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestNewEnum_PanicsOnDuplicates(t *testing.T) {
	for name, build := range map[string]func(){
		"value": func() { modelkit.NewEnum("X", modelkit.Member(1, "a"), modelkit.Member(1, "b")) },
		"code":  func() { modelkit.NewEnum("X", modelkit.Member(1, "a"), modelkit.Member(2, "a")) },
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("no panic")
				}
			}()
			build()
		})
	}
}

func TestEnumType_Coerce(t *testing.T) {
	et := modelkit.EnumOf(colors)
	for _, in := range []any{"B", blue} {
		v, err := et.Coerce(in)
		if err != nil || v != blue {
			t.Fatalf("Coerce(%v) = %v, %v", in, v, err)
		}
	}
	_, err := et.Coerce("G")
	iss := mustIssues(t, err)
	if iss[0].Code != modelkit.CodeEnum || iss[0].Message != "Input should be 'R' or 'B'" {
		t.Fatalf("unexpected issue %+v", iss[0])
	}
	if et.Accepts(green) || !et.Accepts(red) || et.Accepts("R") {
		t.Fatal("Accepts must only admit table members")
	}
	if et.Kind() != modelkit.KindEnum || et.Kind().String() != "enum" {
		t.Fatalf("kind = %v", et.Kind())
	}
}
