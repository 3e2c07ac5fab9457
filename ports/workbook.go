package ports

import (
	"io"

	"xlcheck/domain/grading"
)

// ArrayFormulaRef is the array formula metadata a worksheet exposes: the
// anchor cell holding the formula and the extent the formula fills
type ArrayFormulaRef struct {
	Anchor string // e.g. "A1"
	Ref    string // e.g. "A1:A3"
}

// Worksheet gives read access to the cells of one sheet
type Worksheet interface {
	Name() string

	// CellValue returns the cell's stored content as text: "" for an empty
	// cell, "=" followed by the formula text for a formula cell, otherwise
	// the literal value.
	CellValue(cell string) (string, error)

	// ArrayFormulas lists the sheet's array formulas in document order
	ArrayFormulas() ([]ArrayFormulaRef, error)
}

// Workbook is an opened spreadsheet file
type Workbook interface {
	// SheetNames lists sheet names in workbook order
	SheetNames() []string

	// Worksheet returns the sheet with exactly this name
	Worksheet(name string) (Worksheet, bool)

	Close() error
}

// WorkbookOpener opens workbooks from the filesystem
type WorkbookOpener interface {
	Open(path string) (Workbook, error)
}

// ReportWriter renders grading results
type ReportWriter interface {
	Write(w io.Writer, records []grading.ResultRecord) error

	// Extension is the file suffix for reports written next to workbooks, e.g. ".tsv"
	Extension() string
}
