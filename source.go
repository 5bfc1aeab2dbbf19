package modelkit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Source produces the raw input mapping for ValidateFrom.
type Source interface {
	Decode() (any, error)
	Format() string
}

// MapSource wraps an in-memory mapping.
func MapSource(m map[string]any) Source { return mapSource{m: m} }

type mapSource struct{ m map[string]any }

func (s mapSource) Decode() (any, error) { return s.m, nil }
func (s mapSource) Format() string       { return "map" }

// JSONBytes wraps a byte slice as a JSON Source. Numbers are kept as
// json.Number so integers never pass through float64.
func JSONBytes(b []byte) Source { return jsonSource{r: bytes.NewReader(b)} }

// JSONReader wraps an io.Reader as a JSON Source.
func JSONReader(r io.Reader) Source { return jsonSource{r: r} }

type jsonSource struct{ r io.Reader }

func (s jsonSource) Format() string { return "json" }

func (s jsonSource) Decode() (any, error) {
	dec := json.NewDecoder(s.r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after JSON document")
	}
	return v, nil
}

// YAMLBytes wraps a byte slice as a YAML Source (first document only).
func YAMLBytes(b []byte) Source { return yamlSource{r: bytes.NewReader(b)} }

// YAMLReader wraps an io.Reader as a YAML Source (first document only).
func YAMLReader(r io.Reader) Source { return yamlSource{r: r} }

type yamlSource struct{ r io.Reader }

func (s yamlSource) Format() string { return "yaml" }

func (s yamlSource) Decode() (any, error) {
	var v any
	if err := yaml.NewDecoder(s.r).Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty YAML document")
		}
		return nil, err
	}
	return yamlNormalizeValue(v), nil
}

// yamlNormalizeValue converts YAML-decoded values (which may contain
// map[any]any) into JSON-like map[string]any recursively.
func yamlNormalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = yamlNormalizeValue(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = yamlNormalizeValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = yamlNormalizeValue(vv)
		}
		return out
	default:
		return v
	}
}

// ValidateFrom decodes src and validates the resulting mapping. Decoding
// failures and non-object documents are reported as model-scoped Issues.
func ValidateFrom(ctx context.Context, s *Schema, src Source, opts ...ValidateOpt) (*Record, error) {
	if src == nil {
		return nil, Issues{IssueAt(ModelLoc, CodeParseError, "nil source", nil)}
	}
	v, err := src.Decode()
	if err != nil {
		return nil, Issues{newIssue(ModelLoc, ScopeModel, CodeParseError, nil, map[string]any{"error": err.Error(), "format": src.Format()})}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, Issues{newIssue(ModelLoc, ScopeModel, CodeModelError, v, nil)}
	}
	return Validate(ctx, s, m, opts...)
}
