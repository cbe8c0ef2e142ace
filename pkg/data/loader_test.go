package data

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTableFrom(t *testing.T) {
	tbl, err := ReadTableFrom(strings.NewReader("a,b,c\n1,x,\n2,,True\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, tbl.Header)
	assert.Equal(t, [][]string{{"1", "x", ""}, {"2", "", "True"}}, tbl.Rows)
	assert.Equal(t, 1, tbl.ColumnIndex("b"))
	assert.Equal(t, -1, tbl.ColumnIndex("z"))
	assert.Equal(t, []string{"x", ""}, tbl.Column(1))
}

func TestReadTableFrom_Empty(t *testing.T) {
	_, err := ReadTableFrom(strings.NewReader(""))
	assert.Error(t, err)
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.csv")
	in := &Table{Header: []string{"x", "y"}, Rows: [][]string{{"1", "a,b"}, {"", "c"}}}
	require.NoError(t, WriteTable(path, in))

	out, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestReadTable_MissingFile(t *testing.T) {
	_, err := ReadTable(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestClone(t *testing.T) {
	in := &Table{Header: []string{"x"}, Rows: [][]string{{"1"}}}
	c := in.Clone()
	c.Header[0] = "y"
	c.Rows[0][0] = "2"
	assert.Equal(t, "x", in.Header[0])
	assert.Equal(t, "1", in.Rows[0][0])
}

func TestIsMissing(t *testing.T) {
	for _, s := range []string{"", "NA", "NaN", "nan", "null", "None", "#N/A", "<NA>", "n/a"} {
		assert.True(t, IsMissing(s), s)
	}
	for _, s := range []string{"0", "na ", "False", "none"} {
		assert.False(t, IsMissing(s), s)
	}
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue("2.5")
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)

	v, err = ParseValue("True")
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	v, err = ParseValue("False")
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	v, err = ParseValue("NA")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v))

	v, err = ParseValue(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	v, err = ParseValue("  ")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v))

	_, err = ParseValue("electronics")
	assert.Error(t, err)
}

func TestSamples(t *testing.T) {
	tbl := &Table{
		Header: []string{"label", "f1", "f2"},
		Rows:   [][]string{{"1", "0.5", "True"}, {"0", "", "False"}},
	}
	X, y, err := Samples(tbl, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, y)
	require.Len(t, X, 2)
	assert.Equal(t, []float64{0.5, 1}, X[0])
	assert.True(t, math.IsNaN(X[1][0]))
	assert.Equal(t, 0.0, X[1][1])
	assert.Equal(t, []string{"f1", "f2"}, FeatureNames(tbl, 0))

	X, y, err = Samples(tbl, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, y)
	assert.Equal(t, []float64{1, 0.5}, X[0])
}

func TestSamples_Errors(t *testing.T) {
	tbl := &Table{Header: []string{"label", "cat"}, Rows: [][]string{{"1", "shoes"}}}
	_, _, err := Samples(tbl, 0)
	assert.ErrorContains(t, err, `"cat"`)

	_, _, err = Samples(tbl, 5)
	assert.Error(t, err)
}
