// Package dataset loads the pooled per-subject trial table from CSV or
// XLSX sources and provides missing-aware column access.
package dataset

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// DefaultNATokens are the cell values treated as missing when the caller
// supplies none.
var DefaultNATokens = []string{"", "NA", "na", "N/A", ".", "NULL"}

// Table is an immutable row-per-subject table. Cells are kept as raw
// strings; typed access goes through the accessors below.
type Table struct {
	header []string
	index  map[string]int
	rows   [][]string
	na     map[string]struct{}
}

// NewTable builds a table from a header and rows. Every row must have
// exactly len(header) cells. naTokens defaults to DefaultNATokens.
func NewTable(header []string, rows [][]string, naTokens []string) (*Table, error) {
	if len(header) == 0 {
		return nil, eris.New("dataset: empty header")
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := index[name]; dup {
			return nil, eris.Errorf("dataset: duplicate column %q", name)
		}
		index[name] = i
	}
	for i, row := range rows {
		if len(row) != len(header) {
			return nil, eris.Errorf("dataset: row %d has %d cells, want %d", i, len(row), len(header))
		}
	}
	if naTokens == nil {
		naTokens = DefaultNATokens
	}
	na := make(map[string]struct{}, len(naTokens))
	for _, tok := range naTokens {
		na[tok] = struct{}{}
	}
	return &Table{header: header, index: index, rows: rows, na: na}, nil
}

// Columns returns the column names in header order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.header))
	copy(out, t.header)
	return out
}

// Len returns the row count.
func (t *Table) Len() int { return len(t.rows) }

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Cell returns the raw cell value. ok is false if the column is unknown.
func (t *Table) Cell(row int, col string) (string, bool) {
	i, ok := t.index[col]
	if !ok {
		return "", false
	}
	return t.rows[row][i], true
}

// IsMissing reports whether the cell holds an NA token. Unknown columns
// count as missing.
func (t *Table) IsMissing(row int, col string) bool {
	v, ok := t.Cell(row, col)
	if !ok {
		return true
	}
	_, na := t.na[strings.TrimSpace(v)]
	return na
}

// IntCell parses the cell as an integer. Missing cells return an error.
func (t *Table) IntCell(row int, col string) (int, error) {
	if t.IsMissing(row, col) {
		return 0, eris.Errorf("dataset: missing value in column %q row %d", col, row)
	}
	v, _ := t.Cell(row, col)
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, eris.Wrapf(err, "dataset: column %q row %d", col, row)
	}
	return n, nil
}

// BinaryCell parses the cell as a 0/1 indicator. Accepts 0/1,
// true/false, and yes/no spellings.
func (t *Table) BinaryCell(row int, col string) (int, error) {
	if t.IsMissing(row, col) {
		return 0, eris.Errorf("dataset: missing value in column %q row %d", col, row)
	}
	v, _ := t.Cell(row, col)
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "0", "false", "no":
		return 0, nil
	case "1", "true", "yes":
		return 1, nil
	}
	return 0, eris.Errorf("dataset: column %q row %d: %q is not binary", col, row, v)
}
