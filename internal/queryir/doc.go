// Package queryir is the abstract query representation used to read traces
// back out of the store.
//
// A query is a Select over one trace table with an optional filter built
// from Equals and And predicates. Backends (today only internal/querysql)
// compile it to their own dialect:
//
//	[cli / harness filters] → [Query IR] → [SQL Backend]
//
// # Sealed interfaces
//
// Query and Predicate are sealed with marker methods, so a backend can
// switch exhaustively over every node type:
//
//	switch q := query.(type) {
//	case Select, *Select:
//	    // the only Query
//	default:
//	    // impossible outside this package
//	}
//
// # Values
//
// Literal values are ir.IRValue scalars (IRString, IRInt, IRBool). Floats
// never appear; progress is filtered in micro-units like it is stored.
package queryir
