package dataset

// Column names of the portal export.
const (
	ColumnFund          = "Name of the open-end investment fund"
	ColumnValuationDate = "Valuation date"
	ColumnLastSalePrice = "Last daily sale price per unit"
	ColumnBuyingPrice   = "Daily buying price per unit"
)

// Schema names the columns consumers read.
type Schema struct {
	Fund          string
	ValuationDate string
	Prices        []string
}

// DefaultSchema returns the column names of the live portal export.
func DefaultSchema() Schema {
	return Schema{
		Fund:          ColumnFund,
		ValuationDate: ColumnValuationDate,
		Prices:        []string{ColumnLastSalePrice, ColumnBuyingPrice},
	}
}

// Columns returns every column the schema names, in order.
func (s Schema) Columns() []string {
	cols := []string{s.Fund, s.ValuationDate}
	return append(cols, s.Prices...)
}

// Check returns a *SchemaDriftError when ds lacks any schema column.
func (s Schema) Check(ds *Dataset) error {
	var missing []string
	for _, col := range s.Columns() {
		if ds.Index(col) < 0 {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &SchemaDriftError{Missing: missing}
	}
	return nil
}
