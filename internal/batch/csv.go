// Package batch renders one composite per CSV row and packs the results into
// a ZIP archive.
package batch

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Column names.
const (
	ColumnData     = "data"
	ColumnFilename = "filename"
	ColumnLabel    = "label"
)

// ErrNoDataColumn is returned when the header lacks a data column.
var ErrNoDataColumn = errors.New(`csv has no "data" column`)

// Row is one CSV record. Line is the 1-based record number, header excluded.
// Err is set when the record itself could not be read.
type Row struct {
	Line     int
	Data     string
	Filename string
	Label    string
	Err      error
}

// ParseCSV reads rows from r. The delimiter is ';' when semicolons outnumber
// commas in the input and ',' otherwise. Header names are matched case
// insensitively. Rows with an empty data cell are kept so the caller can
// report them, and so are records that fail to parse, with Err set. Only an
// unterminated quoted field, which swallows the rest of the input, fails the
// whole parse.
func ParseCSV(r io.Reader) ([]Row, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = sniffDelimiter(raw)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoDataColumn
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, seen := cols[key]; !seen {
			cols[key] = i
		}
	}
	dataCol, ok := cols[ColumnData]
	if !ok {
		return nil, ErrNoDataColumn
	}

	var rows []Row
	for line := 1; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) || errors.Is(perr.Err, csv.ErrQuote) {
				return nil, fmt.Errorf("failed to read csv record %d: %w", line, err)
			}
			rows = append(rows, Row{Line: line, Err: err})
			continue
		}
		rows = append(rows, Row{
			Line:     line,
			Data:     cell(rec, dataCol, true),
			Filename: cell(rec, lookup(cols, ColumnFilename), true),
			Label:    cell(rec, lookup(cols, ColumnLabel), false),
		})
	}
	return rows, nil
}

func sniffDelimiter(raw []byte) rune {
	if bytes.Count(raw, []byte(";")) > bytes.Count(raw, []byte(",")) {
		return ';'
	}
	return ','
}

func lookup(cols map[string]int, name string) int {
	if i, ok := cols[name]; ok {
		return i
	}
	return -1
}

func cell(rec []string, i int, trim bool) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	if trim {
		return strings.TrimSpace(rec[i])
	}
	return rec[i]
}
