package entity

// ColumnKind is the storage type of a table column. Every column has a total
// default for every possible input shape, so a row value is never absent.
type ColumnKind int

const (
	ColumnText ColumnKind = iota
	ColumnInt
	ColumnReal
	ColumnBool
)

type Column struct {
	Name string
	Kind ColumnKind
}

// Table is an ordered sequence of uniformly shaped rows with a fixed named
// column set, suitable for bulk storage. Row order is source order; the
// transform stage never sorts or deduplicates.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

func NewTable(name string, columns ...Column) *Table {
	return &Table{Name: name, Columns: columns}
}

// AddRow appends one row. The caller provides exactly one value per column,
// in column order.
func (t *Table) AddRow(values ...any) {
	t.Rows = append(t.Rows, values)
}

func (t *Table) NumRows() int {
	return len(t.Rows)
}

func (t *Table) NumColumns() int {
	return len(t.Columns)
}

func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}
