package report

import (
	"bufio"
	"io"

	"xlcheck/domain/grading"
)

const tsvHeader = "Sheet\tCell\tFormula\tResult\n"

// TSVWriter writes one tab separated row per record under a fixed header.
// Fields are not quoted; results read True or False.
type TSVWriter struct{}

func (TSVWriter) Extension() string { return ".tsv" }

func (TSVWriter) Write(w io.Writer, records []grading.ResultRecord) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(tsvHeader)
	for _, r := range records {
		bw.WriteString(r.Sheet)
		bw.WriteByte('\t')
		bw.WriteString(r.Cell)
		bw.WriteByte('\t')
		bw.WriteString(r.Value)
		bw.WriteByte('\t')
		bw.WriteString(resultText(r.Passed))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func resultText(passed bool) string {
	if passed {
		return "True"
	}
	return "False"
}
