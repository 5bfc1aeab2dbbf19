package modelkit

import (
	js "github.com/reoring/modelkit/jsonschema"
)

// JSONSchema projects the schema into a JSON Schema representation of its
// external (ModeJSON input) form. Enum fields list their external codes.
func (s *Schema) JSONSchema() (*js.Schema, error) {
	props := make(map[string]*js.Schema, len(s.fields))
	var req []string
	for _, fs := range s.fields {
		ps, err := fieldJSONSchema(fs)
		if err != nil {
			return nil, err
		}
		props[fs.Name] = ps
		if fs.Required {
			req = append(req, fs.Name)
		}
	}
	// Unknown policy mapping
	var additional any
	switch s.unknown {
	case UnknownStrict:
		additional = false
	case UnknownStrip, UnknownPassthrough:
		additional = true
	}
	return &js.Schema{
		Type:                 "object",
		Title:                s.name,
		Description:          s.description,
		Properties:           props,
		Required:             req,
		AdditionalProperties: additional,
	}, nil
}

func fieldJSONSchema(fs FieldSpec) (*js.Schema, error) {
	c := fs.Type.Constraints()
	out := &js.Schema{
		Title:            fs.Name,
		Description:      fs.Description,
		Examples:         fs.Examples,
		Minimum:          c.Ge,
		ExclusiveMinimum: c.Gt,
		Maximum:          c.Le,
		ExclusiveMaximum: c.Lt,
		MinLength:        c.MinLen,
		MaxLength:        c.MaxLen,
		Pattern:          c.Pattern,
	}
	switch fs.Type.Kind() {
	case KindString:
		out.Type = "string"
	case KindInt:
		out.Type = "integer"
	case KindFloat:
		out.Type = "number"
	case KindBool:
		out.Type = "boolean"
	case KindEnum:
		out.Type = "string"
		for _, code := range c.Enum {
			out.Enum = append(out.Enum, code)
		}
	}
	if fs.HasDefault && fs.Default != nil {
		dv, err := fs.Type.Render(fs.Default, ModeJSON)
		if err != nil {
			return nil, err
		}
		out.Default = dv
	}
	return out, nil
}
