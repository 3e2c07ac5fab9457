package app

import (
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"xlcheck/domain/answer"
	"xlcheck/internal"
	"xlcheck/ports"
)

var testLogger = internal.NewLogger(internal.LogLevelError)

// memWorkbook is an in-memory ports.Workbook
type memWorkbook struct {
	names  []string
	sheets map[string]ports.Worksheet
	closed bool
}

func newMemWorkbook(sheets ...ports.Worksheet) *memWorkbook {
	b := &memWorkbook{sheets: make(map[string]ports.Worksheet)}
	for _, ws := range sheets {
		b.names = append(b.names, ws.Name())
		b.sheets[ws.Name()] = ws
	}
	return b
}

func (b *memWorkbook) SheetNames() []string { return b.names }

func (b *memWorkbook) Worksheet(name string) (ports.Worksheet, bool) {
	ws, ok := b.sheets[name]
	return ws, ok
}

func (b *memWorkbook) Close() error {
	b.closed = true
	return nil
}

// memWorksheet is an in-memory ports.Worksheet
type memWorksheet struct {
	name   string
	cells  map[string]string
	arrays []ports.ArrayFormulaRef
}

func (w *memWorksheet) Name() string { return w.name }

func (w *memWorksheet) CellValue(cell string) (string, error) {
	return w.cells[cell], nil
}

func (w *memWorksheet) ArrayFormulas() ([]ports.ArrayFormulaRef, error) {
	return w.arrays, nil
}

// MockWorksheet records calls made against a worksheet
type MockWorksheet struct {
	mock.Mock
}

func (m *MockWorksheet) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockWorksheet) CellValue(cell string) (string, error) {
	args := m.Called(cell)
	return args.String(0), args.Error(1)
}

func (m *MockWorksheet) ArrayFormulas() ([]ports.ArrayFormulaRef, error) {
	args := m.Called()
	return args.Get(0).([]ports.ArrayFormulaRef), args.Error(1)
}

func parseKey(t *testing.T, lines ...string) *answer.Key {
	t.Helper()
	key := answer.NewKey()
	require.NoError(t, key.Parse(lines))
	return key
}
