package app

import (
	"xlcheck/domain/answer"
	"xlcheck/domain/grading"
	"xlcheck/internal"
	"xlcheck/internal/errors"
	"xlcheck/ports"
)

// GradingService runs a single grading pass over one workbook
type GradingService struct {
	logger *internal.Logger
}

// NewGradingService creates a grading service; a nil logger uses the default
func NewGradingService(logger *internal.Logger) *GradingService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &GradingService{logger: logger}
}

// Check grades every cell the key declares, sheet by sheet in key order, and
// returns one record per cell in that same order. Sheets missing from the
// workbook are graded as empty. Invalid patterns and unreadable cells abort
// the pass.
func (s *GradingService) Check(book ports.Workbook, key *answer.Key) ([]grading.ResultRecord, error) {
	var results []grading.ResultRecord

	for sheet := range key.Sheets() {
		ws, found := FindWorksheet(book, sheet)
		if !found {
			s.logger.Debug("[GradingService] sheet %q not found, grading its cells as empty", sheet)
		}

		arrays, err := BuildArrayFormulaMap(ws)
		if err != nil {
			return nil, err
		}

		for cell := range key.Cells(sheet) {
			value, err := ResolveValue(ws, arrays, cell)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to resolve %s!%s", sheet, cell)
			}

			passed, err := key.Match(sheet, cell, value)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to grade %s!%s", sheet, cell)
			}

			s.logger.Trace("[GradingService] %s!%s %q -> %t", sheet, cell, value, passed)
			results = append(results, grading.ResultRecord{
				Sheet:  sheet,
				Cell:   cell,
				Value:  value,
				Passed: passed,
			})
		}
	}

	return results, nil
}
