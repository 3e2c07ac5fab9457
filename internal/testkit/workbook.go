package testkit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// ArrayFormula is an array formula written at Anchor that fills Ref
type ArrayFormula struct {
	Anchor  string
	Ref     string
	Formula string
}

// Sheet describes the content of one fixture worksheet. Formulas are given
// without the leading "=". NumFmts applies custom number format codes to
// cells after their values are set.
type Sheet struct {
	Name     string
	Values   map[string]interface{}
	Formulas map[string]string
	Arrays   []ArrayFormula
	NumFmts  map[string]string
}

// WorkbookOptions controls how a fixture workbook is saved
type WorkbookOptions struct {
	Password string
}

// WriteWorkbook saves an .xlsx at dir/name holding sheets in order and
// returns its path. The first sheet replaces excelize's default "Sheet1".
func WriteWorkbook(t testing.TB, dir, name string, sheets ...Sheet) string {
	return WriteWorkbookWithOptions(t, dir, name, WorkbookOptions{}, sheets...)
}

// WriteWorkbookWithOptions is WriteWorkbook with save options
func WriteWorkbookWithOptions(t testing.TB, dir, name string, opts WorkbookOptions, sheets ...Sheet) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", sheet.Name))
		} else {
			_, err := f.NewSheet(sheet.Name)
			require.NoError(t, err)
		}
		for cell, value := range sheet.Values {
			require.NoError(t, f.SetCellValue(sheet.Name, cell, value))
		}
		for cell, formula := range sheet.Formulas {
			require.NoError(t, f.SetCellFormula(sheet.Name, cell, formula))
		}
		for cell, code := range sheet.NumFmts {
			style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &code})
			require.NoError(t, err)
			require.NoError(t, f.SetCellStyle(sheet.Name, cell, cell, style))
		}
		for _, array := range sheet.Arrays {
			formulaType := excelize.STCellFormulaTypeArray
			ref := array.Ref
			require.NoError(t, f.SetCellFormula(sheet.Name, array.Anchor, array.Formula,
				excelize.FormulaOpts{Type: &formulaType, Ref: &ref}))
		}
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path, excelize.Options{Password: opts.Password}))
	return path
}

// GradedWorkbook is the sample submission used across tests: B2 holds 42 and
// B3 the formula =SUM(B1:B1)
func GradedWorkbook(t testing.TB, dir, name string) string {
	return WriteWorkbook(t, dir, name, Sheet{
		Name:     "Sheet1",
		Values:   map[string]interface{}{"B2": 42},
		Formulas: map[string]string{"B3": "SUM(B1:B1)"},
	})
}

// GradedKey is the answer key matching GradedWorkbook
var GradedKey = []string{
	"# sample answers",
	"Sheet1\tB2\t\\d+",
	"Sheet1\tB3\t=SUM\\(B1:B1\\)",
}

// WriteAnswerKey saves lines as an answer key file at dir/name
func WriteAnswerKey(t testing.TB, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}
