package queryir

import "github.com/roach88/tempo/internal/ir"

// Query represents an abstract query.
//
// This is a sealed interface - only types in this package implement it.
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Predicate represents a filter condition.
//
// This is a sealed interface - only types in this package implement it.
// OR predicates and subqueries are deliberately absent.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Select reads rows from one trace table.
//
// Semantics:
//
//	SELECT <fields> FROM <from> WHERE <filter> ORDER BY <table order>
//
// Example:
//
//	Select{
//	  From:   "frame_events",
//	  Fields: []string{"frame_seq", "timeline", "event"},
//	  Filter: And{Predicates: []Predicate{
//	    Equals{Field: "run_id", Value: ir.IRString(runID)},
//	    Equals{Field: "event", Value: ir.IRString("complete")},
//	  }},
//	}
//
// Fields are returned in the order given; an empty list selects every
// column of the table in its declared order. The row order is fixed by the
// table, never by the caller.
type Select struct {
	From   string    // Table name (e.g., "frame_events")
	Fields []string  // Columns to return, in order (nil = all)
	Filter Predicate // WHERE conditions (nil = no filter)
}

func (Select) queryNode() {}

// Equals represents a field-equals-literal predicate.
//
// Semantics:
//
//	<field> = <value>
type Equals struct {
	Field string     // Column name in the selected table
	Value ir.IRValue // Literal value (IRString, IRInt or IRBool)
}

func (Equals) predicateNode() {}

// And represents a conjunction of predicates (all must be true).
// An empty Predicates slice is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Where is shorthand for an And of Equals predicates over field/value
// pairs, skipping pairs whose value is nil. It returns nil when no pair
// survives, which selects every row.
func Where(pairs ...Equals) Predicate {
	var preds []Predicate
	for _, p := range pairs {
		if p.Value == nil {
			continue
		}
		preds = append(preds, p)
	}
	switch len(preds) {
	case 0:
		return nil
	case 1:
		return preds[0]
	default:
		return And{Predicates: preds}
	}
}
