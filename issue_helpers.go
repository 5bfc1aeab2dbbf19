package modelkit

import (
	"fmt"

	"github.com/reoring/modelkit/i18n"
)

// IssueAt creates an Issue at the given location with provided code, message and params map.
// The scope is derived from the location: ModelLoc yields a model-scoped issue.
func IssueAt(loc, code, msg string, params map[string]any) Issue {
	sc := ScopeField
	if loc == ModelLoc {
		sc = ScopeModel
	}
	return Issue{Loc: loc, Scope: sc, Code: code, Message: msg, Params: params}
}

// newIssue builds an issue whose message comes from the current translator.
func newIssue(loc string, scope Scope, code string, input any, params map[string]any) Issue {
	return Issue{Loc: loc, Scope: scope, Code: code, Message: i18n.T(code, stringParams(params)), Input: input, Params: params}
}

func stringParams(params map[string]any) map[string]string {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]string, len(params))
	for k, v := range params {
		out[k] = fmt.Sprint(v)
	}
	return out
}

// hookIssues converts an error returned by a hook into Issues. Issues returned
// by the hook are kept, with empty locations defaulted to loc; any other error
// becomes a single value_error carrying the error text.
func hookIssues(loc string, scope Scope, input any, err error) Issues {
	if err == nil {
		return nil
	}
	if child, ok := AsIssues(err); ok {
		out := make(Issues, 0, len(child))
		for _, it := range child {
			if it.Loc == "" {
				it.Loc = loc
				it.Scope = scope
			} else if it.Loc == ModelLoc {
				it.Scope = ScopeModel
			}
			if it.Code == "" {
				it.Code = CodeValueError
			}
			if it.Input == nil {
				it.Input = input
			}
			out = append(out, it)
		}
		return out
	}
	return Issues{{
		Loc:     loc,
		Scope:   scope,
		Code:    CodeValueError,
		Message: err.Error(),
		Input:   input,
		Cause:   err,
		Params:  map[string]any{"error": err.Error()},
	}}
}
