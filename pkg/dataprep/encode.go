package dataprep

import (
	"sort"

	"github.com/DebasishMaji/ecommerce-personalization/pkg/data"
)

// Indicator cell values written for one-hot columns.
const (
	IndicatorTrue  = "True"
	IndicatorFalse = "False"
)

// Categories returns the distinct non-missing values of a column, sorted.
func Categories(col []string) []string {
	unique := map[string]struct{}{}
	for _, v := range col {
		if data.IsMissing(v) {
			continue
		}
		unique[v] = struct{}{}
	}
	out := make([]string, 0, len(unique))
	for v := range unique {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// OneHot replaces each named column with one indicator column per category,
// named "<column>_<category>". Kept columns stay in place and indicator
// columns are appended in the order the columns were given. Missing cells get
// False in every indicator. Names not present in the table are skipped, so
// encoding an already encoded table is a no-op. Returns the columns encoded.
func OneHot(t *data.Table, columns ...string) []string {
	var (
		encoded  []string
		drop     = map[int]bool{}
		newNames []string
		newCols  [][]string
	)
	for _, name := range columns {
		j := t.ColumnIndex(name)
		if j < 0 || drop[j] {
			continue
		}
		drop[j] = true
		encoded = append(encoded, name)

		col := t.Column(j)
		cats := Categories(col)
		index := make(map[string]int, len(cats))
		for k, c := range cats {
			index[c] = k
			newNames = append(newNames, name+"_"+c)
		}
		base := len(newCols)
		for range cats {
			newCols = append(newCols, make([]string, len(t.Rows)))
		}
		for i, v := range col {
			k, ok := index[v]
			for c := range cats {
				newCols[base+c][i] = IndicatorFalse
			}
			if ok {
				newCols[base+k][i] = IndicatorTrue
			}
		}
	}
	if len(encoded) == 0 {
		return nil
	}

	header := make([]string, 0, len(t.Header)-len(drop)+len(newNames))
	for j, h := range t.Header {
		if !drop[j] {
			header = append(header, h)
		}
	}
	header = append(header, newNames...)

	for i, row := range t.Rows {
		out := make([]string, 0, len(header))
		for j, v := range row {
			if !drop[j] {
				out = append(out, v)
			}
		}
		for _, col := range newCols {
			out = append(out, col[i])
		}
		t.Rows[i] = out
	}
	t.Header = header
	return encoded
}
