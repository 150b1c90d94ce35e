package assemble

import (
	"strings"

	"github.com/nao1215/msefunds/internal/dataset"
)

// Merge concatenates tables in order into one dataset and drops exact
// duplicate rows, keeping the first occurrence. Columns are the union of
// all headers in first-seen order; a table lacking a column contributes
// empty cells. It returns the dataset and the number of dropped rows.
func Merge(tables []*Table) (*dataset.Dataset, int) {
	ds := &dataset.Dataset{}
	index := make(map[string]int)
	for _, t := range tables {
		for _, col := range t.Header {
			if _, ok := index[col]; !ok {
				index[col] = len(ds.Columns)
				ds.Columns = append(ds.Columns, col)
			}
		}
	}

	seen := make(map[string]struct{})
	duplicates := 0
	for _, t := range tables {
		positions := make([]int, len(t.Header))
		for i, col := range t.Header {
			positions[i] = index[col]
		}

		for _, cells := range t.Rows {
			row := make([]string, len(ds.Columns))
			for i, cell := range cells {
				row[positions[i]] = cell
			}

			// The HTML parser never yields NUL, so it cannot occur in a cell.
			key := strings.Join(row, "\x00")
			if _, dup := seen[key]; dup {
				duplicates++
				continue
			}
			seen[key] = struct{}{}
			ds.Rows = append(ds.Rows, row)
		}
	}

	return ds, duplicates
}
