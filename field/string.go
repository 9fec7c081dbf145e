// Package field provides typed column handles. A handle knows its column and
// produces clause expressions with argument types checked at compile time.
package field

import "github.com/arllen133/userdao/clause"

// String represents a string field for building SQL queries.
type String struct {
	column clause.Column
}

// Column returns the underlying column for this field
func (s String) Column() clause.Column { return s.column }

// ColumnName implements the clause.Columnar interface
func (s String) ColumnName() string {
	return s.column.ColumnName()
}

var _ clause.Columnar = String{}

// WithColumn creates a new String field with the specified column name.
func (s String) WithColumn(name string) String {
	column := s.column
	column.Name = name
	return String{column: column}
}

// WithTable creates a new String field with the specified table name.
func (s String) WithTable(name string) String {
	column := s.column
	column.Table = name
	return String{column: column}
}

// Eq creates an equality comparison expression (field = value).
func (s String) Eq(value string) clause.Expression {
	return clause.Eq{Column: s.column, Value: value}
}

// Like creates a LIKE comparison expression (field LIKE pattern).
func (s String) Like(pattern string) clause.Expression {
	return clause.Like{Column: s.column, Value: pattern}
}

// Contains matches values holding fragment anywhere (field LIKE %fragment%).
// Wildcards inside fragment are not escaped.
func (s String) Contains(fragment string) clause.Expression {
	return clause.Like{Column: s.column, Value: "%" + fragment + "%"}
}

// Set creates an assignment expression for UPDATE operations (field = value).
func (s String) Set(val string) clause.Assignment {
	return clause.Assignment{Column: s.column, Value: val}
}
