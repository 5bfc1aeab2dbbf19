// Package openapi exports modelkit schemas as OpenAPI 3 component schemas.
// The exported schema describes the accepted input mapping; enum fields list
// their external codes.
package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/reoring/modelkit"
)

// SchemaFor converts s into an OpenAPI object schema.
func SchemaFor(s *modelkit.Schema) (*openapi3.Schema, error) {
	out := openapi3.NewObjectSchema()
	out.Title = s.Name()
	out.Description = s.Description()
	for _, fs := range s.Fields() {
		ps, err := fieldSchema(fs)
		if err != nil {
			return nil, err
		}
		out.WithProperty(fs.Name, ps)
		if fs.Required {
			out.Required = append(out.Required, fs.Name)
		}
	}
	if s.UnknownPolicy() == modelkit.UnknownStrict {
		out.WithoutAdditionalProperties()
	} else {
		out.WithAnyAdditionalProperties()
	}
	return out, nil
}

// Components collects schemas under their model names.
func Components(schemas ...*modelkit.Schema) (openapi3.Components, error) {
	comps := openapi3.Components{Schemas: openapi3.Schemas{}}
	for _, s := range schemas {
		os, err := SchemaFor(s)
		if err != nil {
			return openapi3.Components{}, err
		}
		comps.Schemas[s.Name()] = openapi3.NewSchemaRef("", os)
	}
	return comps, nil
}

func fieldSchema(fs modelkit.FieldSpec) (*openapi3.Schema, error) {
	c := fs.Type.Constraints()
	var ps *openapi3.Schema
	switch fs.Type.Kind() {
	case modelkit.KindInt:
		ps = openapi3.NewIntegerSchema()
	case modelkit.KindFloat:
		ps = openapi3.NewFloat64Schema()
	case modelkit.KindBool:
		ps = openapi3.NewBoolSchema()
	case modelkit.KindEnum:
		ps = openapi3.NewStringSchema()
		codes := make([]any, 0, len(c.Enum))
		for _, code := range c.Enum {
			codes = append(codes, code)
		}
		ps.WithEnum(codes...)
	default:
		ps = openapi3.NewStringSchema()
	}
	ps.Title = fs.Name
	ps.Description = fs.Description
	switch {
	case c.Ge != nil:
		ps.WithMin(*c.Ge)
	case c.Gt != nil:
		ps.WithMin(*c.Gt)
		ps.WithExclusiveMin(true)
	}
	switch {
	case c.Le != nil:
		ps.WithMax(*c.Le)
	case c.Lt != nil:
		ps.WithMax(*c.Lt)
		ps.WithExclusiveMax(true)
	}
	if c.MinLen != nil {
		ps.WithMinLength(int64(*c.MinLen))
	}
	if c.MaxLen != nil {
		ps.WithMaxLength(int64(*c.MaxLen))
	}
	if c.Pattern != "" {
		ps.WithPattern(c.Pattern)
	}
	if len(fs.Examples) > 0 {
		ps.Example = fs.Examples[0]
	}
	if fs.HasDefault && fs.Default != nil {
		dv, err := fs.Type.Render(fs.Default, modelkit.ModeJSON)
		if err != nil {
			return nil, err
		}
		ps.Default = dv
	}
	return ps, nil
}
