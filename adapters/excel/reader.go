package excel

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"xlcheck/internal"
	"xlcheck/internal/errors"
	"xlcheck/ports"
)

// oleSignature starts an encrypted (password protected) workbook
var oleSignature = []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}

// Opener opens .xlsx workbooks with excelize
type Opener struct {
	config ExcelConfig
	logger *internal.Logger
}

// NewOpener creates a workbook opener
func NewOpener(config ExcelConfig, logger *internal.Logger) *Opener {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Opener{config: config, logger: logger}
}

// Open reads the workbook at path. Any failure is WORKBOOK_UNREADABLE.
func (o *Opener) Open(path string) (ports.Workbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WorkbookUnreadable(path, err)
	}
	book, err := o.OpenBytes(path, data)
	if err != nil {
		return nil, err
	}
	return book, nil
}

// OpenBytes opens a workbook held in memory; name is used in errors and logs
func (o *Opener) OpenBytes(name string, data []byte) (*Workbook, error) {
	startTime := time.Now()
	opts := o.config.options()

	pkg := data
	if bytes.HasPrefix(data, oleSignature) {
		decrypted, err := excelize.Decrypt(data, &opts)
		if err != nil {
			return nil, errors.WorkbookUnreadable(name, fmt.Errorf("failed to decrypt: %w", err))
		}
		pkg = decrypted
	}

	f, err := excelize.OpenReader(bytes.NewReader(pkg), opts)
	if err != nil {
		return nil, errors.WorkbookUnreadable(name, err)
	}

	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	if err != nil {
		f.Close()
		return nil, errors.WorkbookUnreadable(name, err)
	}
	parts, err := sheetParts(zr)
	if err != nil {
		f.Close()
		return nil, errors.WorkbookUnreadable(name, err)
	}

	props, err := f.GetWorkbookProps()
	if err != nil {
		f.Close()
		return nil, errors.WorkbookUnreadable(name, err)
	}

	book := &Workbook{
		name:       name,
		file:       f,
		zip:        zr,
		parts:      parts,
		date1904:   props.Date1904 != nil && *props.Date1904,
		dateStyles: make(map[int]bool),
	}
	o.logger.Debug("[ExcelOpener] opened %s in %.2fms (%d sheets)",
		name, float64(time.Since(startTime).Nanoseconds())/1e6, len(book.SheetNames()))
	return book, nil
}

// Workbook is an excelize-backed ports.Workbook. It is not safe for
// concurrent use.
type Workbook struct {
	name  string
	file  *excelize.File
	zip   *zip.Reader
	parts map[string]string

	date1904   bool
	dateStyles map[int]bool
}

// SheetNames lists sheet names in workbook order
func (b *Workbook) SheetNames() []string {
	return b.file.GetSheetList()
}

// Worksheet returns the sheet named exactly name
func (b *Workbook) Worksheet(name string) (ports.Worksheet, bool) {
	for _, sheet := range b.file.GetSheetList() {
		if sheet == name {
			return &Worksheet{book: b, name: sheet}, true
		}
	}
	return nil, false
}

// Close releases excelize's temporary files
func (b *Workbook) Close() error {
	return b.file.Close()
}

// Worksheet is one sheet of a Workbook
type Worksheet struct {
	book *Workbook
	name string
}

func (w *Worksheet) Name() string {
	return w.name
}

// CellValue returns "=formula" for formula cells and the raw stored value
// otherwise. Booleans read as True/False and numbers formatted as dates as
// "2006-01-02 15:04:05" (or "15:04:05" for bare times).
func (w *Worksheet) CellValue(cell string) (string, error) {
	f := w.book.file

	formula, err := f.GetCellFormula(w.name, cell)
	if err != nil {
		return "", fmt.Errorf("failed to read formula of %s!%s: %w", w.name, cell, err)
	}
	if formula != "" {
		if !strings.HasPrefix(formula, "=") {
			formula = "=" + formula
		}
		return formula, nil
	}

	value, err := f.GetCellValue(w.name, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return "", fmt.Errorf("failed to read value of %s!%s: %w", w.name, cell, err)
	}

	cellType, err := f.GetCellType(w.name, cell)
	if err != nil {
		return value, nil
	}
	switch cellType {
	case excelize.CellTypeBool:
		switch value {
		case "1":
			return "True", nil
		case "0":
			return "False", nil
		}
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if value == "" {
			break
		}
		styleID, err := f.GetCellStyle(w.name, cell)
		if err != nil || !w.book.isDateStyle(styleID) {
			break
		}
		if date, ok := w.book.dateText(value); ok {
			return date, nil
		}
	}
	return value, nil
}

// ArrayFormulas scans the sheet's part for array formulas
func (w *Worksheet) ArrayFormulas() ([]ports.ArrayFormulaRef, error) {
	part, ok := w.book.parts[w.name]
	if !ok {
		return nil, nil
	}

	r, err := w.book.zip.Open(part)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", part, err)
	}
	defer r.Close()

	refs, err := scanArrayFormulas(r)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", part, err)
	}
	return refs, nil
}
