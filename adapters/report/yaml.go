package report

import (
	"io"

	"gopkg.in/yaml.v3"

	"xlcheck/domain/grading"
)

// YAMLWriter writes the records as a YAML sequence
type YAMLWriter struct{}

func (YAMLWriter) Extension() string { return ".yaml" }

func (YAMLWriter) Write(w io.Writer, records []grading.ResultRecord) error {
	if records == nil {
		records = []grading.ResultRecord{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return err
	}
	return enc.Close()
}
