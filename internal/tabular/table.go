// Package tabular provides a minimal abstraction over delimited text sources:
// an ordered column list plus rows mapping column name to raw text. All typing
// decisions (numeric coercion, presence checks) are left to the caller.
package tabular

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Row maps a column name to its raw text value. A column missing from the map
// means the value is absent for that row.
type Row map[string]string

// Table is an ordered sequence of rows sharing a header.
type Table struct {
	Columns []string
	Rows    []Row
}

// Get returns the value for a column and whether it is present in the row.
func (r Row) Get(column string) (string, bool) {
	v, ok := r[column]
	return v, ok
}

// Filter returns a new Table containing only the rows for which keep returns
// true. Column order and row order are preserved.
func (t Table) Filter(keep func(Row) bool) Table {
	filtered := Table{Columns: t.Columns}
	for _, row := range t.Rows {
		if keep(row) {
			filtered.Rows = append(filtered.Rows, row)
		}
	}
	return filtered
}

// Read parses a delimited source with a header row. Header names are
// whitespace-trimmed (the Census gazetteer ships trailing spaces in its
// header). Rows shorter than the header leave the trailing columns absent.
func Read(r io.Reader, delimiter rune) (Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return Table{}, fmt.Errorf("read header: empty source")
	}
	if err != nil {
		return Table{}, fmt.Errorf("read header: %w", err)
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}

	t := Table{Columns: columns}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("read row: %w", err)
		}
		row := make(Row, len(columns))
		for i, value := range record {
			if i >= len(columns) {
				break
			}
			row[columns[i]] = value
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ReadAuto parses a delimited source, sniffing the delimiter from the header
// line. Candidates are tab, semicolon, pipe, and comma; the most frequent
// wins, with comma as the fallback.
func ReadAuto(r io.Reader) (Table, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(4096)
	if err != nil && err != io.EOF {
		return Table{}, fmt.Errorf("peek header: %w", err)
	}
	if i := strings.IndexByte(string(header), '\n'); i >= 0 {
		header = header[:i]
	}
	return Read(br, sniffDelimiter(string(header)))
}

func sniffDelimiter(headerLine string) rune {
	best := ','
	bestCount := strings.Count(headerLine, ",")
	for _, candidate := range []rune{'\t', ';', '|'} {
		if n := strings.Count(headerLine, string(candidate)); n > bestCount {
			best = candidate
			bestCount = n
		}
	}
	return best
}
