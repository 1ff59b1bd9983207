// Package querysql compiles queryir queries to parameterized SQLite SQL.
package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/tempo/internal/ir"
	"github.com/roach88/tempo/internal/queryir"
)

// Table describes one trace table: its columns in declared order and the
// ORDER BY clause every query against it carries.
type Table struct {
	Columns []string
	OrderBy string
}

func (t Table) hasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// TraceTables is the catalog of the trace store schema.
//
// CRITICAL: every OrderBy ends in a unique key so results are identical
// across runs and SQLite versions. Text keys use COLLATE BINARY.
var TraceTables = map[string]Table{
	"runs": {
		Columns: []string{"id", "label", "workers", "time_scale", "specs", "trace_hash", "created_seq"},
		OrderBy: "created_seq ASC, id COLLATE BINARY ASC",
	},
	"frames": {
		Columns: []string{"run_id", "frame_seq", "delta"},
		OrderBy: "run_id COLLATE BINARY ASC, frame_seq ASC",
	},
	"frame_events": {
		Columns: []string{"run_id", "frame_seq", "ord", "timeline", "event", "status", "progress_micro", "completed_loops"},
		OrderBy: "run_id COLLATE BINARY ASC, frame_seq ASC, ord ASC",
	},
}

// SQLCompiler compiles queries against a fixed table catalog.
//
// CRITICAL: table and column names come only from the catalog, and all
// values are parameterized (never interpolated).
type SQLCompiler struct {
	Tables map[string]Table
}

// NewSQLCompiler creates a compiler for the trace store schema.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{Tables: TraceTables}
}

// Compile converts a query to parameterized SQL.
// Returns (sql, params, error) tuple.
//
// MANDATORY: every query ends with the table's ORDER BY.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	if res := queryir.Validate(q); !res.Valid {
		return "", nil, fmt.Errorf("invalid query: %s", strings.Join(res.Problems, "; "))
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		return c.compileSelect(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

func (c *SQLCompiler) compileSelect(q queryir.Select) (string, []any, error) {
	table, ok := c.Tables[q.From]
	if !ok {
		return "", nil, fmt.Errorf("unknown table %q", q.From)
	}

	fields := q.Fields
	if len(fields) == 0 {
		fields = table.Columns
	}
	for _, f := range fields {
		if !table.hasColumn(f) {
			return "", nil, fmt.Errorf("unknown column %q in table %q", f, q.From)
		}
	}

	var whereClause string
	var params []any
	if q.Filter != nil {
		filterSQL, filterParams, err := c.compilePredicate(table, q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		whereClause = " WHERE " + filterSQL
		params = filterParams
	}

	sql := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s",
		strings.Join(fields, ", "),
		q.From,
		whereClause,
		table.OrderBy)

	return sql, params, nil
}

// compilePredicate compiles a predicate to a WHERE clause fragment.
// CRITICAL: Values NEVER interpolated - always use ? placeholders.
func (c *SQLCompiler) compilePredicate(table Table, p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case queryir.Equals:
		return c.compileEquals(table, pred)
	case *queryir.Equals:
		return c.compileEquals(table, *pred)
	case queryir.And:
		return c.compileAnd(table, pred)
	case *queryir.And:
		return c.compileAnd(table, *pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (c *SQLCompiler) compileEquals(table Table, eq queryir.Equals) (string, []any, error) {
	if !table.hasColumn(eq.Field) {
		return "", nil, fmt.Errorf("unknown column %q", eq.Field)
	}
	param, err := irValueToParam(eq.Value)
	if err != nil {
		return "", nil, fmt.Errorf("convert value: %w", err)
	}
	return eq.Field + " = ?", []any{param}, nil
}

func (c *SQLCompiler) compileAnd(table Table, and queryir.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil // vacuous truth
	}

	sqlParts := make([]string, 0, len(and.Predicates))
	var allParams []any
	for _, pred := range and.Predicates {
		sql, params, err := c.compilePredicate(table, pred)
		if err != nil {
			return "", nil, err
		}
		if _, nested := pred.(queryir.And); nested {
			sql = "(" + sql + ")"
		}
		sqlParts = append(sqlParts, sql)
		allParams = append(allParams, params...)
	}

	return strings.Join(sqlParts, " AND "), allParams, nil
}

// irValueToParam converts a scalar ir.IRValue to a SQL parameter.
func irValueToParam(v ir.IRValue) (any, error) {
	switch val := v.(type) {
	case ir.IRString:
		return string(val), nil
	case ir.IRInt:
		return int64(val), nil
	case ir.IRBool:
		return bool(val), nil
	default:
		return nil, fmt.Errorf("unsupported IRValue type for SQL parameter: %T", v)
	}
}
