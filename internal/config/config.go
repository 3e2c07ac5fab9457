package config

import (
	"os"
	"strconv"
	"strings"

	"dario.cat/mergo"

	"xlcheck/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Log     LogConfig
	Grading GradingConfig
	Report  ReportConfig
	Excel   ExcelConfig
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
	// RunID tags log lines; a fresh one is generated when empty
	RunID string
}

// GradingConfig holds grading pass settings
type GradingConfig struct {
	Workers        int
	StrictPatterns bool
}

// ReportConfig holds report output settings
type ReportConfig struct {
	Format string
}

// ExcelConfig holds workbook opening settings
type ExcelConfig struct {
	Password          string
	UnzipSizeLimit    int64
	UnzipXMLSizeLimit int64
}

// Supported report formats
var ReportFormats = []string{"tsv", "json", "yaml"}

// Defaults returns the configuration used when nothing is set
func Defaults() Config {
	return Config{
		Log:     LogConfig{Level: "INFO"},
		Grading: GradingConfig{Workers: 1},
		Report:  ReportConfig{Format: "tsv"},
		Excel: ExcelConfig{
			UnzipSizeLimit:    16 << 30,
			UnzipXMLSizeLimit: 16 << 20,
		},
	}
}

// Load reads configuration from environment variables and validates it.
// Unset values fall back to Defaults.
func Load() (*Config, error) {
	config := &Config{
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", ""),
			RunID: getEnvOrDefault("XLCHECK_RUN_ID", ""),
		},
		Grading: GradingConfig{
			Workers:        getEnvIntOrDefault("XLCHECK_WORKERS", 0),
			StrictPatterns: getEnvBoolOrDefault("XLCHECK_STRICT_PATTERNS", false),
		},
		Report: ReportConfig{
			Format: strings.ToLower(getEnvOrDefault("XLCHECK_REPORT_FORMAT", "")),
		},
		Excel: ExcelConfig{
			Password:          getEnvOrDefault("XLCHECK_WORKBOOK_PASSWORD", ""),
			UnzipSizeLimit:    getEnvInt64OrDefault("XLCHECK_UNZIP_SIZE_LIMIT", 0),
			UnzipXMLSizeLimit: getEnvInt64OrDefault("XLCHECK_UNZIP_XML_SIZE_LIMIT", 0),
		},
	}

	if err := mergo.Merge(config, Defaults()); err != nil {
		return nil, errors.Wrap(err, "failed to apply configuration defaults")
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Validate checks the configuration for values the grader cannot use
func (c *Config) Validate() error {
	if !isReportFormat(c.Report.Format) {
		return errors.ConfigInvalid("unsupported report format " + strconv.Quote(c.Report.Format) +
			" (want one of " + strings.Join(ReportFormats, ", ") + ")")
	}
	if c.Grading.Workers < 1 {
		return errors.ConfigInvalid("workers must be at least 1")
	}
	if c.Excel.UnzipSizeLimit <= 0 || c.Excel.UnzipXMLSizeLimit <= 0 {
		return errors.ConfigInvalid("unzip size limits must be positive")
	}
	if c.Excel.UnzipXMLSizeLimit > c.Excel.UnzipSizeLimit {
		return errors.ConfigInvalid("unzip XML size limit must not exceed unzip size limit")
	}
	return nil
}

func isReportFormat(format string) bool {
	for _, f := range ReportFormats {
		if f == format {
			return true
		}
	}
	return false
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
