package grading

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"xlcheck/internal/errors"
)

// CellRange is a rectangle on one worksheet, bounds inclusive and 1-based.
// A single cell is the degenerate range whose corners coincide.
type CellRange struct {
	MinCol, MinRow int
	MaxCol, MaxRow int
}

// ParseCellRange parses "B3", "A1:C4" or their absolute forms ("$A$1:$C$4").
// Corners given in reverse order are normalized.
func ParseCellRange(ref string) (CellRange, error) {
	parts := strings.Split(strings.TrimSpace(ref), ":")
	if len(parts) > 2 {
		return CellRange{}, errors.InvalidCellReference(ref, fmt.Errorf("too many ':' separators"))
	}

	col1, row1, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return CellRange{}, errors.InvalidCellReference(ref, err)
	}
	col2, row2 := col1, row1
	if len(parts) == 2 {
		if col2, row2, err = excelize.CellNameToCoordinates(parts[1]); err != nil {
			return CellRange{}, errors.InvalidCellReference(ref, err)
		}
	}

	return CellRange{
		MinCol: min(col1, col2), MinRow: min(row1, row2),
		MaxCol: max(col1, col2), MaxRow: max(row1, row2),
	}, nil
}

// IsSubset reports whether every cell of r lies inside other
func (r CellRange) IsSubset(other CellRange) bool {
	return r.MinCol >= other.MinCol && r.MaxCol <= other.MaxCol &&
		r.MinRow >= other.MinRow && r.MaxRow <= other.MaxRow
}

// IsCell reports whether the range covers exactly one cell
func (r CellRange) IsCell() bool {
	return r.MinCol == r.MaxCol && r.MinRow == r.MaxRow
}

// String renders the range in A1 notation
func (r CellRange) String() string {
	topLeft, err := excelize.CoordinatesToCellName(r.MinCol, r.MinRow)
	if err != nil {
		return fmt.Sprintf("R%dC%d:R%dC%d", r.MinRow, r.MinCol, r.MaxRow, r.MaxCol)
	}
	if r.IsCell() {
		return topLeft
	}
	bottomRight, err := excelize.CoordinatesToCellName(r.MaxCol, r.MaxRow)
	if err != nil {
		return fmt.Sprintf("R%dC%d:R%dC%d", r.MinRow, r.MinCol, r.MaxRow, r.MaxCol)
	}
	return topLeft + ":" + bottomRight
}
