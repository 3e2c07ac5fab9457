package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xlcheck/internal/errors"
)

func writeKey(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "answer.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleKey = `# lesson 3
Sheet1	B2	\d+
Sheet1	B2	n/a
Sheet1	B3	=SUM\(B1:B1\)
Totals	A1	.*
`

func TestLint(t *testing.T) {
	summaries, err := lint(writeKey(t, sampleKey))
	require.NoError(t, err)
	assert.Equal(t, []SheetSummary{
		{Sheet: "Sheet1", Cells: 2, Patterns: 3},
		{Sheet: "Totals", Cells: 1, Patterns: 1},
	}, summaries)
}

func TestLintErrors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		code string
	}{
		{"malformed line", "Sheet1\tB2\n", errors.CodeMalformedAnswerLine},
		{"invalid pattern", "Sheet1\tB2\t[a-\n", errors.CodeInvalidPattern},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := lint(writeKey(t, tt.key))
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestRootCmdTable(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs([]string{writeKey(t, sampleKey)})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "SHEET")
	assert.Regexp(t, `Sheet1\s+2\s+3`, out.String())
	assert.Regexp(t, `total\s+3\s+4`, out.String())
}

func TestRootCmdJSON(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs([]string{writeKey(t, sampleKey), "--json"})
	require.NoError(t, cmd.Execute())

	var summaries []SheetSummary
	require.NoError(t, json.Unmarshal(out.Bytes(), &summaries))
	assert.Len(t, summaries, 2)
	assert.Equal(t, "Totals", summaries[1].Sheet)
}

func TestRootCmdRequiresOneArgument(t *testing.T) {
	cmd := newRootCmd(&bytes.Buffer{})
	cmd.SetArgs([]string{})
	assert.Error(t, cmd.Execute())
}
