package container

import (
	"fmt"
	"io"
	"strings"

	"xlcheck/adapters/excel"
	"xlcheck/adapters/report"
	"xlcheck/app"
	"xlcheck/domain/core"
	"xlcheck/internal"
	"xlcheck/internal/config"
	"xlcheck/internal/errors"
	"xlcheck/ports"
)

// Container holds the grading stack built from one configuration
type Container struct {
	Config *config.Config
	RunID  core.RunID
	Logger *internal.Logger

	// Adapters
	Opener ports.WorkbookOpener
	Report ports.ReportWriter

	// Services
	Batch *app.BatchService
}

// New wires the container. Logs go to logOutput tagged with the configured
// run ID, or a fresh one when none is set.
func New(cfg *config.Config, logOutput io.Writer) (*Container, error) {
	if cfg == nil {
		return nil, errors.InternalError("config cannot be nil")
	}

	runID, err := resolveRunID(cfg.Log.RunID)
	if err != nil {
		return nil, err
	}
	c := &Container{
		Config: cfg,
		RunID:  runID,
	}

	level, ok := internal.ParseLogLevel(cfg.Log.Level)
	if !ok {
		level = internal.LogLevelInfo
	}
	c.Logger = internal.NewLoggerTo(logOutput, level).WithField("run_id", c.RunID.String())

	if err := c.initAdapters(); err != nil {
		return nil, fmt.Errorf("failed to initialize adapters: %w", err)
	}
	c.initServices()

	c.Logger.Debug("[Container] initialized (format=%s, workers=%d, strict=%t)",
		cfg.Report.Format, cfg.Grading.Workers, cfg.Grading.StrictPatterns)
	return c, nil
}

// initAdapters creates the workbook opener and report writer
func (c *Container) initAdapters() error {
	c.Opener = excel.NewOpener(excel.FromConfig(c.Config.Excel), c.Logger)

	writer, err := report.NewWriter(c.Config.Report.Format)
	if err != nil {
		return err
	}
	c.Report = writer
	return nil
}

// initServices creates the grading services on top of the adapters
func (c *Container) initServices() {
	c.Batch = app.NewBatchService(c.Opener, c.Report, c.Config.Grading.Workers, c.Logger)
}

func resolveRunID(configured string) (core.RunID, error) {
	if strings.TrimSpace(configured) == "" {
		return core.NewRunID(), nil
	}
	id, err := core.ParseRunID(configured)
	if err != nil {
		return "", errors.WithCode(errors.CodeConfigInvalid, err)
	}
	return id, nil
}
