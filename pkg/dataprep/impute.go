package dataprep

import "github.com/DebasishMaji/ecommerce-personalization/pkg/data"

// ForwardFill replaces each missing cell with the last non-missing value seen
// above it in the same column. Cells with nothing above them stay missing and
// are normalised to "". Present cells are left untouched. Returns the number
// of cells filled.
func ForwardFill(t *data.Table) int {
	filled := 0
	last := make([]string, len(t.Header))
	seen := make([]bool, len(t.Header))
	for _, row := range t.Rows {
		for c := range row {
			if !data.IsMissing(row[c]) {
				last[c] = row[c]
				seen[c] = true
				continue
			}
			if seen[c] {
				row[c] = last[c]
				filled++
			} else {
				row[c] = ""
			}
		}
	}
	return filled
}

// CountMissing returns the number of missing cells per column.
func CountMissing(t *data.Table) []int {
	counts := make([]int, len(t.Header))
	for _, row := range t.Rows {
		for c, v := range row {
			if data.IsMissing(v) {
				counts[c]++
			}
		}
	}
	return counts
}
