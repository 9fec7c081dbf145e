// Package clause holds the small set of SQL expression values used to build
// predicates and assignments against the users table. Expressions render to
// "?"-placeholder SQL; the statement builder rebinds placeholders per dialect.
package clause

// Columnar defines an interface for providing a column name.
type Columnar interface {
	ColumnName() string
}

// Column represents a database column with optional table qualifier
type Column struct {
	Table string
	Name  string
}

// ColumnName returns the full column name (with table prefix if specified)
func (c Column) ColumnName() string {
	if c.Table != "" {
		return c.Table + "." + c.Name
	}
	return c.Name
}

var _ Columnar = Column{}

// Expression is the base interface for all SQL expressions
type Expression interface {
	Build() (sql string, args []any, err error)
}

// Eq represents an equality expression (column = value)
type Eq struct {
	Column Column
	Value  any
}

func (e Eq) Build() (string, []any, error) {
	return e.Column.ColumnName() + " = ?", []any{e.Value}, nil
}

// Like represents a LIKE expression. Value is passed to the store verbatim,
// so % and _ keep their pattern meaning.
type Like struct {
	Column Column
	Value  string
}

func (l Like) Build() (string, []any, error) {
	return l.Column.ColumnName() + " LIKE ?", []any{l.Value}, nil
}

// Assignment represents a column assignment for UPDATE
type Assignment struct {
	Column Column
	Value  any
}

func (a Assignment) Build() (string, []any, error) {
	return a.Column.ColumnName() + " = ?", []any{a.Value}, nil
}

// Columns resolves column names from a list of Columnar values.
func Columns(args ...Columnar) []string {
	if len(args) == 0 {
		return nil
	}

	cols := make([]string, len(args))
	for i, arg := range args {
		cols[i] = arg.ColumnName()
	}
	return cols
}
