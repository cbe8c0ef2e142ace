package data

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Table is a delimited file held in memory: one header row plus string cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// missingTokens are the cell values read as "no value", matching the usual
// dataframe defaults so raw exports from notebooks behave the same way.
var missingTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"null": {}, "NULL": {}, "None": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "<NA>": {},
	"1.#IND": {}, "1.#QNAN": {}, "-1.#IND": {}, "-1.#QNAN": {},
}

// IsMissing reports whether a cell holds no value.
func IsMissing(s string) bool {
	_, ok := missingTokens[s]
	return ok
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Column copies column j out of the table.
func (t *Table) Column(j int) []string {
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[j]
	}
	return out
}

// Clone deep copies the table so steps can work on it without aliasing.
func (t *Table) Clone() *Table {
	c := &Table{Header: append([]string(nil), t.Header...), Rows: make([][]string, len(t.Rows))}
	for i, row := range t.Rows {
		c.Rows[i] = append([]string(nil), row...)
	}
	return c
}

// ReadTable loads a CSV file whose first record is the header.
func ReadTable(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadTableFrom(file)
}

// ReadTableFrom reads a CSV stream whose first record is the header.
func ReadTableFrom(r io.Reader) (*Table, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("data: no header row")
	}
	return &Table{Header: records[0], Rows: records[1:]}, nil
}

// WriteTable writes the table as CSV, header first.
func WriteTable(path string, t *Table) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteTableTo(file, t); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteTableTo writes the table as CSV to w.
func WriteTableTo(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Header); err != nil {
		return err
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return err
	}
	return writer.Error()
}

// ParseValue converts a cell to a model input. Surrounding spaces are
// ignored, missing cells become NaN and indicator cells ("True"/"False")
// become 1/0.
func ParseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if IsMissing(s) {
		return math.NaN(), nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}
	if b, err := strconv.ParseBool(s); err == nil {
		if b {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("data: cannot parse %q as a number", s)
}

// ParseRecords converts header-less records into a feature matrix.
func ParseRecords(records [][]string) ([][]float64, error) {
	out := make([][]float64, len(records))
	for i, rec := range records {
		row := make([]float64, len(rec))
		for j, s := range rec {
			v, err := ParseValue(s)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", i, j, err)
			}
			row[j] = v
		}
		out[i] = row
	}
	return out, nil
}

// Samples splits the table into features X and labels Y, taking labelCol as
// the label and every other column, in order, as a feature.
func Samples(t *Table, labelCol int) (X [][]float64, Y []float64, err error) {
	if labelCol < 0 || labelCol >= len(t.Header) {
		return nil, nil, fmt.Errorf("data: label column %d out of range (%d columns)", labelCol, len(t.Header))
	}
	X = make([][]float64, 0, len(t.Rows))
	Y = make([]float64, 0, len(t.Rows))
	for i, rec := range t.Rows {
		x := make([]float64, 0, len(rec)-1)
		var y float64
		for j, s := range rec {
			v, err := ParseValue(s)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d column %q: %w", i+1, t.Header[j], err)
			}
			if j == labelCol {
				y = v
			} else {
				x = append(x, v)
			}
		}
		X = append(X, x)
		Y = append(Y, y)
	}
	return X, Y, nil
}

// FeatureNames lists the header without the label column.
func FeatureNames(t *Table, labelCol int) []string {
	names := make([]string, 0, len(t.Header))
	for j, h := range t.Header {
		if j != labelCol {
			names = append(names, h)
		}
	}
	return names
}
