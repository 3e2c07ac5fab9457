package container

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xlcheck/adapters/report"
	"xlcheck/internal/config"
	"xlcheck/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := config.Defaults()
	cfg.Report.Format = "yaml"
	cfg.Log.Level = "DEBUG"

	var logs bytes.Buffer
	c, err := New(&cfg, &logs)
	require.NoError(t, err)

	assert.False(t, c.RunID.String() == "")
	assert.IsType(t, report.YAMLWriter{}, c.Report)
	assert.NotNil(t, c.Opener)
	assert.NotNil(t, c.Batch)
	assert.Equal(t, "x.yaml", c.Batch.ReportPath("x.xlsx"))

	assert.Contains(t, logs.String(), "[Container] initialized")
	assert.Contains(t, logs.String(), "run_id="+c.RunID.String())
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	cfg := config.Defaults()
	cfg.Report.Format = "csv"

	_, err := New(&cfg, &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil, &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInternalError, errors.GetCode(err))
}

func TestNewUsesConfiguredRunID(t *testing.T) {
	cfg := config.Defaults()
	cfg.Log.Level = "DEBUG"
	cfg.Log.RunID = "0190b2a4-7c3e-7d1a-9f00-3b5c2d1e4f60"

	var logs bytes.Buffer
	c, err := New(&cfg, &logs)
	require.NoError(t, err)

	assert.Equal(t, cfg.Log.RunID, c.RunID.String())
	assert.Contains(t, logs.String(), "run_id="+cfg.Log.RunID)
}

func TestNewRejectsMalformedRunID(t *testing.T) {
	cfg := config.Defaults()
	cfg.Log.RunID = "run-123"

	_, err := New(&cfg, &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
	assert.Contains(t, err.Error(), "run-123")
}
