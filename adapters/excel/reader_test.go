package excel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xlcheck/internal"
	"xlcheck/internal/errors"
	"xlcheck/internal/testkit"
	"xlcheck/ports"
)

var testLogger = internal.NewLogger(internal.LogLevelError)

func openWorkbook(t *testing.T, path string) ports.Workbook {
	t.Helper()
	book, err := NewOpener(DefaultExcelConfig(), testLogger).Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { book.Close() })
	return book
}

func TestWorksheetCellValue(t *testing.T) {
	path := testkit.WriteWorkbook(t, t.TempDir(), "book.xlsx", testkit.Sheet{
		Name: "Sheet1",
		Values: map[string]interface{}{
			"B1": 1.5,
			"B2": 42,
			"B4": "hello world",
			"B5": true,
			"B6": false,
		},
		Formulas: map[string]string{"B3": "SUM(B1:B1)"},
	})
	book := openWorkbook(t, path)

	ws, ok := book.Worksheet("Sheet1")
	require.True(t, ok)
	assert.Equal(t, "Sheet1", ws.Name())

	for cell, want := range map[string]string{
		"B1":  "1.5",
		"B2":  "42",
		"B3":  "=SUM(B1:B1)",
		"B4":  "hello world",
		"B5":  "True",
		"B6":  "False",
		"C9":  "",
		"Z99": "",
	} {
		got, err := ws.CellValue(cell)
		require.NoError(t, err, cell)
		assert.Equal(t, want, got, cell)
	}
}

func TestWorksheetCellValueDates(t *testing.T) {
	path := testkit.WriteWorkbook(t, t.TempDir(), "book.xlsx", testkit.Sheet{
		Name: "Sheet1",
		Values: map[string]interface{}{
			"A1": time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			"A2": time.Date(2024, 1, 2, 13, 45, 30, 0, time.UTC),
			"A3": 45293,
			"A4": 0.5,
			"A5": 1.5,
			"A6": 45293,
		},
		NumFmts: map[string]string{
			"A3": "yyyy/mm/dd",
			"A4": "h:mm",
			"A5": "0.00",
			"A6": `"day "0`,
		},
	})
	book := openWorkbook(t, path)
	ws, _ := book.Worksheet("Sheet1")

	for cell, want := range map[string]string{
		"A1": "2024-01-02 00:00:00",
		"A2": "2024-01-02 13:45:30",
		"A3": "2024-01-02 00:00:00",
		"A4": "12:00:00",
		"A5": "1.5",
		"A6": "45293",
	} {
		got, err := ws.CellValue(cell)
		require.NoError(t, err, cell)
		assert.Equal(t, want, got, cell)
	}
}

func TestIsDateFormat(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"yyyy-mm-dd", true},
		{"h:mm:ss", true},
		{"[h]:mm", true},
		{"[$-411]ggge\"年\"m\"月\"d\"日\"", true},
		{"0.00", false},
		{"#,##0;[Red]-#,##0", false},
		{`"days "0`, false},
		{"[Red]0", false},
		{"General", false},
		{"0;d", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, isDateFormat(tt.code))
		})
	}
}

func TestWorksheetLookupIsExact(t *testing.T) {
	path := testkit.WriteWorkbook(t, t.TempDir(), "book.xlsx",
		testkit.Sheet{Name: "Sheet1"},
		testkit.Sheet{Name: "Data"},
	)
	book := openWorkbook(t, path)

	assert.Equal(t, []string{"Sheet1", "Data"}, book.SheetNames())

	_, ok := book.Worksheet("Data")
	assert.True(t, ok)
	_, ok = book.Worksheet("data")
	assert.False(t, ok, "case-insensitive fallback belongs to the grading pass")
	_, ok = book.Worksheet("Missing")
	assert.False(t, ok)
}

func TestWorksheetArrayFormulas(t *testing.T) {
	path := testkit.WriteWorkbook(t, t.TempDir(), "book.xlsx",
		testkit.Sheet{
			Name:     "Sheet1",
			Formulas: map[string]string{"G1": "SUM(A1:A3)"},
			Arrays: []testkit.ArrayFormula{
				{Anchor: "A1", Ref: "A1:A3", Formula: "ROW(B1:B3)"},
				{Anchor: "D5", Ref: "D5:E6", Formula: "B1:C2*2"},
			},
		},
		testkit.Sheet{
			Name:   "Other",
			Arrays: []testkit.ArrayFormula{{Anchor: "C2", Ref: "C2", Formula: "MAX(A1:A9)"}},
		},
	)
	book := openWorkbook(t, path)

	ws, _ := book.Worksheet("Sheet1")
	refs, err := ws.ArrayFormulas()
	require.NoError(t, err)
	assert.Equal(t, []ports.ArrayFormulaRef{
		{Anchor: "A1", Ref: "A1:A3"},
		{Anchor: "D5", Ref: "D5:E6"},
	}, refs)

	anchor, err := ws.CellValue("A1")
	require.NoError(t, err)
	assert.Equal(t, "=ROW(B1:B3)", anchor)

	other, _ := book.Worksheet("Other")
	refs, err = other.ArrayFormulas()
	require.NoError(t, err)
	assert.Equal(t, []ports.ArrayFormulaRef{{Anchor: "C2", Ref: "C2"}}, refs)
}

func TestOpenUnreadableWorkbook(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "bogus.xlsx")
	require.NoError(t, os.WriteFile(bogus, []byte("not a zip"), 0o644))

	opener := NewOpener(DefaultExcelConfig(), testLogger)

	_, err := opener.Open(bogus)
	require.Error(t, err)
	assert.Equal(t, errors.CodeWorkbookUnreadable, errors.GetCode(err))

	_, err = opener.Open(filepath.Join(dir, "missing.xlsx"))
	assert.Equal(t, errors.CodeWorkbookUnreadable, errors.GetCode(err))
}

func TestOpenPasswordProtectedWorkbook(t *testing.T) {
	path := testkit.WriteWorkbookWithOptions(t, t.TempDir(), "locked.xlsx",
		testkit.WorkbookOptions{Password: "pw"},
		testkit.Sheet{Name: "Sheet1", Formulas: map[string]string{"A1": "1+1"}},
	)

	config := DefaultExcelConfig()
	config.Password = "pw"
	book, err := NewOpener(config, testLogger).Open(path)
	require.NoError(t, err)
	defer book.Close()

	ws, ok := book.Worksheet("Sheet1")
	require.True(t, ok)
	value, err := ws.CellValue("A1")
	require.NoError(t, err)
	assert.Equal(t, "=1+1", value)

	_, err = NewOpener(DefaultExcelConfig(), testLogger).Open(path)
	assert.Equal(t, errors.CodeWorkbookUnreadable, errors.GetCode(err))
}

func TestScanArrayFormulas(t *testing.T) {
	part := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
  <sheetData>
    <row r="1">
      <c r="A1"><f t="array" ref="A1:A3">SEQUENCE(3)</f><v>1</v></c>
      <c r="B1"><f t="shared" ref="B1:B3" si="0">A1*2</f><v>2</v></c>
    </row>
    <row r="2"><c r="A2"><v>2</v></c></row>
    <row r="5"><c><f t="array" ref="C5:D5">TRANSPOSE(A1:A2)</f></c></row>
    <row r="7"><c r="E7"><f t="array">MAX(A1:A3)</f></c></row>
  </sheetData>
</worksheet>`

	refs, err := scanArrayFormulas(strings.NewReader(part))
	require.NoError(t, err)
	assert.Equal(t, []ports.ArrayFormulaRef{
		{Anchor: "A1", Ref: "A1:A3"},
		{Anchor: "C5", Ref: "C5:D5"},
		{Anchor: "E7", Ref: "E7"},
	}, refs)

	_, err = scanArrayFormulas(strings.NewReader("<worksheet><sheetData><row>"))
	assert.Error(t, err)
}

func TestResolvePartPath(t *testing.T) {
	assert.Equal(t, "xl/worksheets/sheet1.xml", resolvePartPath("xl", "worksheets/sheet1.xml"))
	assert.Equal(t, "xl/worksheets/sheet2.xml", resolvePartPath("xl", "/xl/worksheets/sheet2.xml"))
	assert.Equal(t, "xl/workbook.xml", resolvePartPath("", "xl/workbook.xml"))
	assert.Equal(t, "ws/sheet1.xml", resolvePartPath("xl", "../ws/sheet1.xml"))
}
