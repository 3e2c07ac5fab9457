package report

import (
	"encoding/json"
	"io"

	"xlcheck/domain/grading"
)

// JSONWriter writes the records as a JSON array
type JSONWriter struct {
	Indent string
}

func (JSONWriter) Extension() string { return ".json" }

func (j JSONWriter) Write(w io.Writer, records []grading.ResultRecord) error {
	if records == nil {
		records = []grading.ResultRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if j.Indent != "" {
		enc.SetIndent("", j.Indent)
	}
	return enc.Encode(records)
}
