package report

import (
	"strings"

	"xlcheck/internal/errors"
	"xlcheck/ports"
)

// NewWriter returns the report writer for format (tsv, json or yaml)
func NewWriter(format string) (ports.ReportWriter, error) {
	switch strings.ToLower(format) {
	case "", "tsv":
		return TSVWriter{}, nil
	case "json":
		return JSONWriter{Indent: "  "}, nil
	case "yaml", "yml":
		return YAMLWriter{}, nil
	}
	return nil, errors.ConfigInvalid("unknown report format: " + format)
}
