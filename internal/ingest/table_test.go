package ingest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/solatis/prospector/internal/types"
)

func TestReadTable_CSV(t *testing.T) {
	input := "\xEF\xBB\xBF" + strings.Join([]string{
		"",
		"Name,Email,,Company",
		"Jane Doe, jane@acme.io,x,Acme",
		",,,",
		"Bob,bob@globex.com",
		"Eve,eve@initech.com,y,Initech,extra",
	}, "\n")

	table, err := ReadTable("leads.CSV", strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Email", "column_3", "Company"}, table.Headers)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, []string{"Jane Doe", "jane@acme.io", "x", "Acme"}, table.Rows[0])
	assert.Equal(t, []string{"Bob", "bob@globex.com", "", ""}, table.Rows[1])
	assert.Equal(t, []string{"Eve", "eve@initech.com", "y", "Initech"}, table.Rows[2])
	assert.Equal(t, 3, table.Column("company"))
	assert.Equal(t, -1, table.Column("phone"))
}

func TestReadTable_XLSXExpandsMergedCells(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	cells := map[string]any{
		"A1": "Company", "B1": "Name", "C1": "Employees",
		"A2": "Acme", "B2": "Jane", "C2": 50,
		"B3": "John",
		"A4": "Globex", "B4": "Bob", "C4": 12,
	}
	for cell, v := range cells {
		require.NoError(t, f.SetCellValue(sheet, cell, v))
	}
	require.NoError(t, f.MergeCell(sheet, "A2", "A3"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, err := ReadTable("export.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, []string{"Company", "Name", "Employees"}, table.Headers)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, []string{"Acme", "Jane", "50"}, table.Rows[0])
	assert.Equal(t, []string{"Acme", "John", ""}, table.Rows[1])
	assert.Equal(t, []string{"Globex", "Bob", "12"}, table.Rows[2])
}

func TestReadTable_Errors(t *testing.T) {
	_, err := ReadTable("leads.json", strings.NewReader("{}"))
	assert.ErrorIs(t, err, types.ErrUnsupportedFormat)

	_, err = ReadTable("empty.csv", strings.NewReader("\n,,\n"))
	assert.ErrorIs(t, err, types.ErrEmptyImport)

	_, err = ReadTable("broken.xlsx", strings.NewReader("not a zip"))
	assert.Error(t, err)
}

func TestExpandMerge_GrowsRows(t *testing.T) {
	rows, err := expandMerge([][]string{{"a"}}, "B2", "C3", "v")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a"}, {"", "v", "v"}, {"", "v", "v"}}, rows)
}

func TestForwardFill(t *testing.T) {
	table := &Table{
		Headers: []string{"Company", "Name"},
		Rows: [][]string{
			{"", "Orphan"},
			{"Acme", "Jane"},
			{"", "John"},
			{"", "Jill"},
			{"Globex", ""},
			{"", "Bob"},
		},
	}

	filled := ForwardFill(table, "company", "missing")

	assert.Equal(t, 3, filled)
	got := make([]string, len(table.Rows))
	for i, r := range table.Rows {
		got[i] = r[0]
	}
	assert.Equal(t, []string{"", "Acme", "Acme", "Acme", "Globex", "Globex"}, got)
	assert.Equal(t, "", table.Rows[4][1], "unnamed columns stay untouched")
}
