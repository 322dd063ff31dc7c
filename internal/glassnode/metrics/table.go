package metrics

// IndexColumn is the header of the date index in every metric and merged table.
const IndexColumn = "timestamp"

// Table is a date-indexed table. Columns holds the value column names; the
// index column is implicit. An empty string is a null cell.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}

// Row is one line of a Table. len(Values) == len(Table.Columns).
type Row struct {
	Date   string // YYYY-MM-DD
	Values []string
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Header returns the full header line, index column first.
func (t *Table) Header() []string {
	return append([]string{IndexColumn}, t.Columns...)
}
