package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := NewTable(
		[]string{"site", "sms", "adopted_lime", "acreage"},
		[][]string{
			{"siaya", "1", "1", "2.5"},
			{"siaya", "0", "0", "NA"},
			{"vihiga", "1", "NA", "1.0"},
		},
		nil,
	)
	require.NoError(t, err)
	return tbl
}

func TestNewTable_RejectsRaggedRows(t *testing.T) {
	_, err := NewTable([]string{"a", "b"}, [][]string{{"1"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 0")
}

func TestNewTable_RejectsDuplicateColumns(t *testing.T) {
	_, err := NewTable([]string{"a", "a"}, nil, nil)
	require.Error(t, err)
}

func TestNewTable_RejectsEmptyHeader(t *testing.T) {
	_, err := NewTable(nil, nil, nil)
	require.Error(t, err)
}

func TestTable_Access(t *testing.T) {
	tbl := testTable(t)

	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, []string{"site", "sms", "adopted_lime", "acreage"}, tbl.Columns())
	assert.True(t, tbl.HasColumn("sms"))
	assert.False(t, tbl.HasColumn("village"))

	v, ok := tbl.Cell(0, "site")
	require.True(t, ok)
	assert.Equal(t, "siaya", v)

	_, ok = tbl.Cell(0, "village")
	assert.False(t, ok)
}

func TestTable_Missing(t *testing.T) {
	tbl := testTable(t)

	assert.False(t, tbl.IsMissing(0, "acreage"))
	assert.True(t, tbl.IsMissing(1, "acreage"))
	assert.True(t, tbl.IsMissing(2, "adopted_lime"))
	assert.True(t, tbl.IsMissing(0, "no_such_column"))
}

func TestTable_CustomNATokens(t *testing.T) {
	tbl, err := NewTable(
		[]string{"x"},
		[][]string{{"-999"}, {"5"}},
		[]string{"", "-999"},
	)
	require.NoError(t, err)
	assert.True(t, tbl.IsMissing(0, "x"))
	assert.False(t, tbl.IsMissing(1, "x"))
}

func TestTable_IntCell(t *testing.T) {
	tbl := testTable(t)

	n, err := tbl.IntCell(0, "sms")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = tbl.IntCell(1, "acreage")
	require.Error(t, err)

	_, err = tbl.IntCell(0, "site")
	require.Error(t, err)
}

func TestTable_BinaryCell(t *testing.T) {
	tbl, err := NewTable(
		[]string{"flag"},
		[][]string{{"1"}, {"0"}, {"Yes"}, {"FALSE"}, {"maybe"}},
		nil,
	)
	require.NoError(t, err)

	for row, want := range []int{1, 0, 1, 0} {
		got, binErr := tbl.BinaryCell(row, "flag")
		require.NoError(t, binErr)
		assert.Equal(t, want, got, "row %d", row)
	}

	_, err = tbl.BinaryCell(4, "flag")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not binary")
}
