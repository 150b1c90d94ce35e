// Package dataset defines the merged fund table produced by assembly and
// the column contract downstream analysis relies on.
package dataset

// Dataset is a header plus rows of raw cell tokens. Every row has exactly
// len(Columns) cells.
type Dataset struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Index returns the position of column name, or -1.
func (d *Dataset) Index(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Value returns the cell of row in column name, or "" when the column is
// absent.
func (d *Dataset) Value(row []string, name string) string {
	i := d.Index(name)
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
