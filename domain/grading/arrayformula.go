package grading

// ArrayFormula is one array/spill extent together with the formula text
// stored at its anchor cell
type ArrayFormula struct {
	Range   CellRange
	Formula string
}

// ArrayFormulaMap lists a worksheet's array formulas in document order.
// Extents are expected not to overlap; that is a property of the workbook
// and is not checked here.
type ArrayFormulaMap []ArrayFormula

// Lookup returns the formula of the first extent that fully contains target
func (m ArrayFormulaMap) Lookup(target CellRange) (string, bool) {
	for _, af := range m {
		if target.IsSubset(af.Range) {
			return af.Formula, true
		}
	}
	return "", false
}
