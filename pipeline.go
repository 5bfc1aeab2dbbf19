package modelkit

import "context"

// Validate runs the validation pipeline over raw and returns the typed Record
// or the aggregated Issues.
//
// Stages, in order:
//  1. model pre hooks on the raw mapping, then the required-field presence
//     check; any failure here ends validation before field coercion
//  2. per field, in declaration order: pre hooks, type coercion and
//     constraints, post hooks; a failing field does not stop the others
//  3. model post hooks on the typed candidate, only when stage 2 was clean
//  4. finalization into an immutable Record
//
// With ValidateOpt{FailFast: true} the first issue of any stage is returned
// alone.
func Validate(ctx context.Context, s *Schema, raw map[string]any, opts ...ValidateOpt) (*Record, error) {
	if s == nil {
		return nil, Issues{IssueAt(ModelLoc, CodeParseError, "nil schema", nil)}
	}
	if lastValidateOpt(opts).FailFast {
		ctx = WithFailFast(ctx, true)
	}

	input, iss := s.runModelPre(ctx, raw)
	if len(iss) > 0 {
		return nil, iss
	}
	if iss := s.checkPresence(ctx, input); len(iss) > 0 {
		return nil, iss
	}

	st := s.coerceFields(ctx, input)
	if len(st.iss) > 0 {
		return nil, st.iss
	}

	cand := &Candidate{schema: s, values: st.values, raw: st.raw}
	if iss := s.runModelPost(ctx, cand); len(iss) > 0 {
		return nil, iss
	}

	return &Record{schema: s, values: st.values, raw: st.raw, presence: st.presence, extra: st.extra}, nil
}

// runModelPre applies model pre hooks to a shallow copy of raw. The first
// failing hook ends the stage.
func (s *Schema) runModelPre(ctx context.Context, raw map[string]any) (map[string]any, Issues) {
	cur := copyMap(raw)
	if cur == nil {
		cur = map[string]any{}
	}
	for _, h := range s.preModel {
		out, err := h(ctx, cur)
		if err != nil {
			return nil, modelIssues(err)
		}
		if out != nil {
			cur = out
		}
	}
	return cur, nil
}

// checkPresence reports every missing required field. These are model-level
// failures keyed to the field.
func (s *Schema) checkPresence(ctx context.Context, input map[string]any) Issues {
	var iss Issues
	for _, fs := range s.fields {
		if !fs.Required {
			continue
		}
		if _, ok := input[fs.Name]; ok {
			continue
		}
		iss = AppendIssues(iss, newIssue(fs.Name, ScopeModel, CodeMissing, nil, nil))
		if IsFailFast(ctx) {
			return iss
		}
	}
	return iss
}

type coerceState struct {
	values   map[string]any
	raw      map[string]any
	presence PresenceMap
	extra    map[string]any
	iss      Issues
}

func (s *Schema) coerceFields(ctx context.Context, input map[string]any) coerceState {
	st := coerceState{
		values:   make(map[string]any, len(s.fields)),
		raw:      make(map[string]any, len(s.fields)),
		presence: make(PresenceMap, len(s.fields)),
	}
	for _, fs := range s.fields {
		rv, present := input[fs.Name]
		if !present {
			if fs.HasDefault {
				st.values[fs.Name] = fs.Default
				st.presence[fs.Name] |= PresenceDefaultApplied
			}
			continue
		}
		st.presence[fs.Name] |= PresenceSeen
		if rv == nil {
			st.presence[fs.Name] |= PresenceWasNull
		}
		st.raw[fs.Name] = rv
		v, iss := s.coerceField(ctx, fs, rv)
		if len(iss) > 0 {
			st.iss = AppendIssues(st.iss, iss...)
			if IsFailFast(ctx) {
				return st
			}
			continue
		}
		st.values[fs.Name] = v
	}
	// unknown keys in key-sorted order
	for _, k := range sortedKeys(input) {
		if _, known := s.index[k]; known {
			continue
		}
		switch s.unknown {
		case UnknownStrict:
			st.iss = AppendIssues(st.iss, newIssue(k, ScopeField, CodeExtraForbidden, input[k], nil))
			if IsFailFast(ctx) {
				return st
			}
		case UnknownPassthrough:
			if st.extra == nil {
				st.extra = map[string]any{}
			}
			st.extra[k] = input[k]
		}
	}
	return st
}

// coerceField runs pre hooks, coercion and post hooks for one field. The
// first failure aborts the field.
func (s *Schema) coerceField(ctx context.Context, fs FieldSpec, rv any) (any, Issues) {
	v := rv
	for _, h := range s.preField[fs.Name] {
		out, err := h(ctx, v)
		if err != nil {
			return nil, hookIssues(fs.Name, ScopeField, v, err)
		}
		v = out
	}
	cv, err := fs.Type.Coerce(v)
	if err != nil {
		return nil, hookIssues(fs.Name, ScopeField, v, err)
	}
	for _, h := range s.postField[fs.Name] {
		out, err := h(ctx, cv)
		if err != nil {
			return nil, hookIssues(fs.Name, ScopeField, cv, err)
		}
		if !fs.Type.Accepts(out) {
			if out, err = fs.Type.Coerce(out); err != nil {
				return nil, hookIssues(fs.Name, ScopeField, cv, err)
			}
		}
		cv = out
	}
	return cv, nil
}

// runModelPost runs every model post hook and collects their failures.
func (s *Schema) runModelPost(ctx context.Context, c *Candidate) Issues {
	var iss Issues
	for _, h := range s.postModel {
		if err := h(ctx, c); err != nil {
			iss = AppendIssues(iss, modelIssues(err)...)
			if IsFailFast(ctx) {
				return iss
			}
		}
	}
	return iss
}

// modelIssues converts a model hook error; every resulting issue is model
// scoped even when the hook pointed it at a field.
func modelIssues(err error) Issues {
	iss := hookIssues(ModelLoc, ScopeModel, nil, err)
	for i := range iss {
		iss[i].Scope = ScopeModel
	}
	return iss
}
