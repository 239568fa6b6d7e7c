// Package ingest turns CSV and XLSX lead exports into prospector records.
//
// Import runs in three steps:
//  1. ReadTable parses the file into a header row and padded data rows
//  2. SuggestMapping proposes a target field for each header
//  3. BuildLeads converts rows into leads, deduplicated companies and
//     custom field definitions
//
// Spreadsheet exports from other CRMs tend to merge cells for grouped rows;
// ReadTable expands XLSX merges and ForwardFill covers the CSV equivalent.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/solatis/prospector/internal/types"
)

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// Table is a parsed spreadsheet. Every row has exactly len(Headers) cells.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Column returns the index of the header matching name, ignoring case, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Headers {
		if strings.EqualFold(h, strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}

// ReadTable parses a CSV or XLSX file, chosen by file extension.
func ReadTable(fileName string, r io.Reader) (*Table, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	var records [][]string
	var err error
	switch ext {
	case ".csv":
		records, err = readCSV(r)
	case ".xlsx":
		records, err = readXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}
	return normalizeTable(records)
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := bufio.NewReader(r)
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return records, nil
}

// readXLSX reads the first sheet. Merged ranges are expanded so every cell
// in the range carries the value of its top-left cell.
func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, types.ErrEmptyImport
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}

	merges, err := f.GetMergeCells(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read merged cells: %w", err)
	}
	for _, m := range merges {
		rows, err = expandMerge(rows, m.GetStartAxis(), m.GetEndAxis(), m.GetCellValue())
		if err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// expandMerge writes value into every cell of the range start:end, growing
// rows as needed.
func expandMerge(rows [][]string, start, end, value string) ([][]string, error) {
	c1, r1, err := excelize.CellNameToCoordinates(start)
	if err != nil {
		return nil, fmt.Errorf("bad merge start %q: %w", start, err)
	}
	c2, r2, err := excelize.CellNameToCoordinates(end)
	if err != nil {
		return nil, fmt.Errorf("bad merge end %q: %w", end, err)
	}
	for len(rows) < r2 {
		rows = append(rows, nil)
	}
	for r := r1; r <= r2; r++ {
		row := rows[r-1]
		for len(row) < c2 {
			row = append(row, "")
		}
		for c := c1; c <= c2; c++ {
			row[c-1] = value
		}
		rows[r-1] = row
	}
	return rows, nil
}

// normalizeTable picks the first non-blank row as header, drops blank rows
// and pads or truncates the rest to the header width.
func normalizeTable(records [][]string) (*Table, error) {
	var header []string
	var rows [][]string
	for _, rec := range records {
		if isBlankRow(rec) {
			continue
		}
		if header == nil {
			header = rec
			continue
		}
		rows = append(rows, rec)
	}
	if header == nil {
		return nil, types.ErrEmptyImport
	}

	headers := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		headers[i] = h
	}
	t := &Table{Headers: UniqueHeaders(headers)}
	for _, r := range rows {
		t.Rows = append(t.Rows, padRow(r, len(t.Headers)))
	}
	return t, nil
}

// UniqueHeaders suffixes repeated header names, compared case-insensitively,
// with _2, _3 and so on so every column can be addressed by name.
func UniqueHeaders(headers []string) []string {
	out := make([]string, len(headers))
	seen := make(map[string]bool, len(headers))
	for i, h := range headers {
		name := h
		for n := 2; seen[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_%d", h, n)
		}
		seen[strings.ToLower(name)] = true
		out[i] = name
	}
	return out
}

func padRow(row []string, width int) []string {
	out := make([]string, width)
	for i := 0; i < width && i < len(row); i++ {
		out[i] = strings.TrimSpace(row[i])
	}
	return out
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
