package excel

// RawRow represents one data row of a file, aligned with the headers
type RawRow []string

// RawData represents the complete file contents before type coercion
type RawData struct {
	Headers []string // Column headers, trimmed and de-duplicated
	Rows    []RawRow // Data rows, each padded to len(Headers)
}

// Column returns the raw cells of the column at index j
func (d *RawData) Column(j int) []string {
	cells := make([]string, len(d.Rows))
	for i, row := range d.Rows {
		cells[i] = row[j]
	}
	return cells
}
