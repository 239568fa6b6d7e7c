package ingest

// ForwardFill copies the last non-blank value of each named column down
// into the blank cells below it. Unknown column names are ignored. Returns
// the number of cells filled.
func ForwardFill(t *Table, columns ...string) int {
	filled := 0
	for _, name := range columns {
		col := t.Column(name)
		if col < 0 {
			continue
		}
		last := ""
		for _, row := range t.Rows {
			if row[col] == "" {
				if last != "" {
					row[col] = last
					filled++
				}
				continue
			}
			last = row[col]
		}
	}
	return filled
}
