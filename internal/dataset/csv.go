package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// CSVOptions configures the CSV loader.
type CSVOptions struct {
	Delimiter rune     // default ','
	Encoding  string   // IANA charset name; "" means UTF-8 as-is
	NATokens  []string // default DefaultNATokens
	Comment   rune     // comment character (0 = none)
}

// ReadCSV loads a CSV file into a Table. The first row is the header.
// Field exports from survey tablets frequently arrive in windows-1252;
// set Encoding to decode anything other than UTF-8.
func ReadCSV(path string, opts CSVOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "csv: open file")
	}
	defer f.Close() //nolint:errcheck

	return ParseCSV(f, opts)
}

// ParseCSV reads CSV data from r into a Table.
func ParseCSV(r io.Reader, opts CSVOptions) (*Table, error) {
	if opts.Encoding != "" {
		enc, err := htmlindex.Get(opts.Encoding)
		if err != nil {
			return nil, eris.Wrapf(err, "csv: unsupported charset %q", opts.Encoding)
		}
		r = enc.NewDecoder().Reader(r)
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	if opts.Comment != 0 {
		reader.Comment = opts.Comment
	}

	var header []string
	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read row")
		}
		for i, field := range record {
			record[i] = strings.TrimSpace(field)
		}
		if header == nil {
			header = record
			continue
		}
		rows = append(rows, record)
	}
	if header == nil {
		return nil, eris.New("csv: empty input")
	}

	return NewTable(header, rows, opts.NATokens)
}
