package excel

import (
	"github.com/xuri/excelize/v2"

	"xlcheck/internal/config"
)

// ExcelConfig holds configuration for opening submitted workbooks
type ExcelConfig struct {
	Password          string `json:"-"`
	UnzipSizeLimit    int64  `json:"unzip_size_limit"`
	UnzipXMLSizeLimit int64  `json:"unzip_xml_size_limit"`
}

// DefaultExcelConfig returns sensible defaults for Excel processing
func DefaultExcelConfig() ExcelConfig {
	return FromConfig(config.Defaults().Excel)
}

// FromConfig adapts the application's excel settings
func FromConfig(c config.ExcelConfig) ExcelConfig {
	return ExcelConfig{
		Password:          c.Password,
		UnzipSizeLimit:    c.UnzipSizeLimit,
		UnzipXMLSizeLimit: c.UnzipXMLSizeLimit,
	}
}

func (c ExcelConfig) options() excelize.Options {
	return excelize.Options{
		Password:          c.Password,
		UnzipSizeLimit:    c.UnzipSizeLimit,
		UnzipXMLSizeLimit: c.UnzipXMLSizeLimit,
	}
}
