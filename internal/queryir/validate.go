package queryir

import (
	"fmt"

	"github.com/roach88/tempo/internal/ir"
)

// ValidationResult lists the structural problems found in a query.
type ValidationResult struct {
	// Valid is true when Problems is empty.
	Valid bool

	// Problems describes each malformed node, in traversal order.
	Problems []string
}

// Validate checks that a query is well formed before it reaches a backend:
//  1. Select names a table
//  2. Field names are non-empty and not repeated
//  3. Equals compares a named field with a scalar literal
//
// Whether a table or column exists is left to the backend.
//
// Validate is a pure function with no side effects.
func Validate(query Query) ValidationResult {
	v := &validator{}
	v.validateQuery(query)

	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

type validator struct {
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case nil:
		v.addProblem("nil query")
	case Select:
		v.validateSelect(query)
	case *Select:
		if query == nil {
			v.addProblem("nil query")
			return
		}
		v.validateSelect(*query)
	default:
		v.addProblem("unknown query type: %T", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	if sel.From == "" {
		v.addProblem("select has no table")
	}

	seen := make(map[string]bool, len(sel.Fields))
	for i, f := range sel.Fields {
		switch {
		case f == "":
			v.addProblem("fields[%d] is empty", i)
		case seen[f]:
			v.addProblem("field %q selected twice", f)
		}
		seen[f] = true
	}

	if sel.Filter != nil {
		v.validatePredicate(sel.Filter)
	}
}

func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case nil:
		return // no filter
	case Equals:
		v.validateEquals(pred)
	case *Equals:
		v.validateEquals(*pred)
	case And:
		v.validateAnd(pred)
	case *And:
		v.validateAnd(*pred)
	default:
		v.addProblem("unknown predicate type: %T", p)
	}
}

func (v *validator) validateEquals(eq Equals) {
	if eq.Field == "" {
		v.addProblem("equals has no field")
	}
	switch eq.Value.(type) {
	case ir.IRString, ir.IRInt, ir.IRBool:
	case nil:
		v.addProblem("field %q compared to nil", eq.Field)
	default:
		v.addProblem("field %q compared to non-scalar %T", eq.Field, eq.Value)
	}
}

func (v *validator) validateAnd(and And) {
	for _, sub := range and.Predicates {
		v.validatePredicate(sub)
	}
}
