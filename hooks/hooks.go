// Package hooks provides reusable hook functions for modelkit schemas:
// text normalization for pre validators, enum code mapping in both
// directions, and a wrap serializer that capitalizes a text field.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/reoring/modelkit"
)

var (
	stripPolicyOnce sync.Once
	stripPolicy     *bluemonday.Policy
)

func textPolicy() *bluemonday.Policy {
	stripPolicyOnce.Do(func() {
		stripPolicy = bluemonday.StrictPolicy()
	})
	return stripPolicy
}

// StripTags removes every HTML tag from a text value. Non-string values pass
// through unchanged so type coercion reports them.
func StripTags() modelkit.FieldValidatorFunc {
	return func(_ context.Context, v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return v, nil
		}
		// the policy escapes entities; keep plain text
		return strings.TrimSpace(html.UnescapeString(textPolicy().Sanitize(s))), nil
	}
}

// TrimSpace trims leading and trailing white space from text values.
func TrimSpace() modelkit.FieldValidatorFunc {
	return func(_ context.Context, v any) (any, error) {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s), nil
		}
		return v, nil
	}
}

// Capitalize returns s with its first character in title case and the rest in
// lower case ("sam sen" -> "Sam sen").
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	// a Caser is stateful, so one is made per call
	return string(unicode.ToTitle(r)) + cases.Lower(language.Und).String(s[size:])
}

// CapitalizeField returns a wrap serializer that capitalizes a text field on
// the staging draft before running default serialization.
func CapitalizeField(field string) modelkit.WrapFunc {
	return func(_ context.Context, d *modelkit.Draft, next modelkit.SerializeNext) (*modelkit.Representation, error) {
		if s, ok := modelkit.DraftValue[string](d, field); ok {
			if err := d.Set(field, Capitalize(s)); err != nil {
				return nil, err
			}
		}
		return next(d)
	}
}

// EnumCode returns a pre validator mapping external codes of table to their
// members. Any other input fails with msg.
func EnumCode[E comparable](table *modelkit.EnumTable[E], msg string) modelkit.FieldValidatorFunc {
	return func(_ context.Context, v any) (any, error) {
		if code, ok := v.(string); ok {
			if e, found := table.Lookup(code); found {
				return e, nil
			}
		}
		return nil, errors.New(msg)
	}
}

// EnumLabel returns a field serializer rendering enum members as labels. A
// member without a label is a defect and fails with modelkit.ErrUnmappedEnum.
func EnumLabel[E comparable](labels map[E]string) modelkit.FieldSerializerFunc {
	return func(_ context.Context, v any) (any, error) {
		e, ok := v.(E)
		if !ok {
			return nil, fmt.Errorf("%w: %v (%T)", modelkit.ErrUnmappedEnum, v, v)
		}
		label, ok := labels[e]
		if !ok {
			return nil, fmt.Errorf("%w: %v", modelkit.ErrUnmappedEnum, e)
		}
		return label, nil
	}
}
