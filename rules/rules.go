package rules

import (
	"context"
	"reflect"
	"strings"

	"github.com/reoring/modelkit"
)

// CodeBusinessRule is the issue code produced by Reject.
const CodeBusinessRule = "business_rule"

// Op defines simple comparison operators for If(...).Reject(...)
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

// Conditional composes conditional execution of model rules.
type Conditional struct {
	field string
	raw   bool // compare against the pre-coercion input value
	op    Op
	want  any
	all   []Conditional // composite AND
	any   []Conditional // composite OR
}

// If builds a conditional that evaluates the typed value of field against want.
// A leading '/' in field is accepted and ignored.
func If(field string, op Op, want any) Conditional {
	return Conditional{field: normalizeField(field), op: op, want: want}
}

// IfRaw is like If but reads the input value captured before coercion, for
// rules written against external codes.
func IfRaw(field string, op Op, want any) Conditional {
	return Conditional{field: normalizeField(field), raw: true, op: op, want: want}
}

// IfAll builds a conditional that requires all conditions to hold.
func IfAll(conds ...Conditional) Conditional { return Conditional{all: conds} }

// IfAny builds a conditional that requires any condition to hold.
func IfAny(conds ...Conditional) Conditional { return Conditional{any: conds} }

// And combines the receiver with additional conditions using logical AND.
func (c Conditional) And(others ...Conditional) Conditional {
	return IfAll(append([]Conditional{c}, others...)...)
}

// Or combines the receiver with additional conditions using logical OR.
func (c Conditional) Or(others ...Conditional) Conditional {
	return IfAny(append([]Conditional{c}, others...)...)
}

// Holds evaluates the condition against a candidate record.
func (c Conditional) Holds(cand *modelkit.Candidate) bool {
	if len(c.all) > 0 {
		for _, it := range c.all {
			if !it.Holds(cand) {
				return false
			}
		}
		return true
	}
	if len(c.any) > 0 {
		for _, it := range c.any {
			if it.Holds(cand) {
				return true
			}
		}
		return false
	}
	var (
		cur any
		ok  bool
	)
	if c.raw {
		cur, ok = cand.Raw(c.field)
	} else {
		cur, ok = cand.Get(c.field)
	}
	if !ok {
		return false
	}
	return compare(cur, c.op, c.want)
}

// Reject returns a model post hook that fails with msg when the condition holds.
func (c Conditional) Reject(msg string) modelkit.ModelPostFunc {
	return func(_ context.Context, cand *modelkit.Candidate) error {
		if !c.Holds(cand) {
			return nil
		}
		return modelkit.Issues{modelkit.IssueAt(modelkit.ModelLoc, CodeBusinessRule, msg, nil)}
	}
}

// Then attaches rules to run when the condition is satisfied.
func (c Conditional) Then(rules ...modelkit.ModelPostFunc) modelkit.ModelPostFunc {
	inner := All(rules...)
	return func(ctx context.Context, cand *modelkit.Candidate) error {
		if !c.Holds(cand) {
			return nil
		}
		return inner(ctx, cand)
	}
}

// All executes every rule and concatenates their Issues. Under fail-fast it
// stops at the first failing rule.
func All(rules ...modelkit.ModelPostFunc) modelkit.ModelPostFunc {
	return func(ctx context.Context, cand *modelkit.Candidate) error {
		var out modelkit.Issues
		for _, r := range rules {
			if r == nil {
				continue
			}
			err := r(ctx, cand)
			if err == nil {
				continue
			}
			if iss, ok := modelkit.AsIssues(err); ok {
				out = modelkit.AppendIssues(out, iss...)
			} else {
				return err
			}
			if modelkit.IsFailFast(ctx) {
				break
			}
		}
		if len(out) > 0 {
			return out
		}
		return nil
	}
}

// Any succeeds if any rule passes. When all fail it returns the failure with
// the fewest issues.
func Any(rules ...modelkit.ModelPostFunc) modelkit.ModelPostFunc {
	return func(ctx context.Context, cand *modelkit.Candidate) error {
		var best error
		bestN := -1
		for _, r := range rules {
			if r == nil {
				continue
			}
			err := r(ctx, cand)
			if err == nil {
				return nil
			}
			n := 1
			if iss, ok := modelkit.AsIssues(err); ok {
				n = len(iss)
			}
			if bestN < 0 || n < bestN {
				best, bestN = err, n
			}
		}
		return best
	}
}

// ------- helpers -------

func normalizeField(f string) string { return strings.TrimPrefix(f, "/") }

func compare(cur any, op Op, want any) bool {
	a, aok := toNumber(cur)
	b, bok := toNumber(want)
	if aok && bok {
		switch op {
		case Eq:
			return a == b
		case Ne:
			return a != b
		case Lt:
			return a < b
		case Le:
			return a <= b
		case Gt:
			return a > b
		case Ge:
			return a >= b
		}
		return false
	}
	switch op {
	case Eq:
		return reflect.DeepEqual(cur, want)
	case Ne:
		return !reflect.DeepEqual(cur, want)
	default:
		// ordering is only defined for numbers
		return false
	}
}

// toNumber accepts Go numeric kinds and json.Number-like values. Strings are
// not numbers here: "18" == 18 must stay false for code comparisons.
func toNumber(v any) (float64, bool) {
	if n, ok := v.(interface{ Float64() (float64, error) }); ok {
		f, err := n.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
