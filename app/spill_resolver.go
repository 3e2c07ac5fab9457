package app

import (
	"fmt"

	"xlcheck/domain/grading"
	"xlcheck/internal/errors"
	"xlcheck/ports"
)

// BuildArrayFormulaMap collects the array formula extents of ws, each paired
// with the formula text of its anchor cell. A nil worksheet has none.
func BuildArrayFormulaMap(ws ports.Worksheet) (grading.ArrayFormulaMap, error) {
	if ws == nil {
		return nil, nil
	}

	refs, err := ws.ArrayFormulas()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read array formulas of sheet %s", ws.Name())
	}

	arrays := make(grading.ArrayFormulaMap, 0, len(refs))
	for _, ref := range refs {
		extent, err := grading.ParseCellRange(ref.Ref)
		if err != nil {
			return nil, errors.Wrapf(err, "array formula anchored at %s!%s", ws.Name(), ref.Anchor)
		}
		formula, err := ws.CellValue(ref.Anchor)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read array formula anchor %s!%s", ws.Name(), ref.Anchor)
		}
		arrays = append(arrays, grading.ArrayFormula{Range: extent, Formula: formula})
	}
	return arrays, nil
}

// ResolveValue returns the text to grade for cell. Inside an array formula
// extent that is the anchor's formula, whatever the cell itself stores;
// elsewhere it is the cell's own content. Every cell of a nil worksheet
// resolves to "".
func ResolveValue(ws ports.Worksheet, arrays grading.ArrayFormulaMap, cell string) (string, error) {
	target, err := grading.ParseCellRange(cell)
	if err != nil {
		return "", err
	}
	if !target.IsCell() {
		return "", errors.InvalidCellReference(cell, fmt.Errorf("a single cell is required"))
	}

	if formula, ok := arrays.Lookup(target); ok {
		return formula, nil
	}
	if ws == nil {
		return "", nil
	}
	return ws.CellValue(target.String())
}
