package app

import (
	"strings"

	"xlcheck/ports"
)

// FindWorksheet looks a sheet up by exact name first, then by the first
// case-insensitive match in workbook order. A miss is reported as
// (nil, false); callers treat a missing sheet as one whose cells are all empty.
func FindWorksheet(book ports.Workbook, name string) (ports.Worksheet, bool) {
	if ws, ok := book.Worksheet(name); ok {
		return ws, true
	}
	for _, candidate := range book.SheetNames() {
		if strings.EqualFold(candidate, name) {
			return book.Worksheet(candidate)
		}
	}
	return nil, false
}
