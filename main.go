package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"xlcheck/app"
	"xlcheck/domain/answer"
	"xlcheck/internal"
	"xlcheck/internal/config"
	"xlcheck/internal/container"
	"xlcheck/internal/errors"
)

const usageTemplate = `Usage: {{.CommandPath}} <workbook> <answer>
       {{.CommandPath}} <directory> <answer>

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI and returns the process exit status
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	// Load environment variables from .env file; the system environment
	// is used when there is none
	envErr := godotenv.Load()

	cmd := newRootCmd(stdout, stderr, envErr)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		if errors.HasCode(err, errUsage) {
			cmd.SetOut(stdout)
			cmd.Usage()
			return 2
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

const errUsage = "USAGE"

type options struct {
	format   string
	workers  int
	strict   bool
	logLevel string
	password string
	runID    string
}

// newRootCmd builds the CLI. envErr is the result of loading .env and is
// reported once the logger is configured.
func newRootCmd(stdout, stderr io.Writer, envErr error) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "xlcheck <workbook|directory> <answer>",
		Short: "Grade spreadsheet answers against a key of regular expressions",
		Long: `Grade the formulas and values of Excel workbooks against an answer key.

The answer key lists SHEET<TAB>CELL<TAB>PATTERN lines. A cell passes when its
content, with all whitespace removed, fully matches one of its patterns. Cells
covered by an array formula are graded on the formula of the anchor cell.

Given a workbook the report is printed to stdout. Given a directory every
*.xlsx file in it is graded and its report written next to it.

Configuration is read from the environment (and a .env file):
- LOG_LEVEL (ERROR, WARN, INFO, DEBUG, TRACE)
- XLCHECK_RUN_ID (UUID tagging log lines)
- XLCHECK_REPORT_FORMAT (tsv, json, yaml)
- XLCHECK_WORKERS
- XLCHECK_STRICT_PATTERNS
- XLCHECK_WORKBOOK_PASSWORD
- XLCHECK_UNZIP_SIZE_LIMIT, XLCHECK_UNZIP_XML_SIZE_LIMIT`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.Newf(errUsage, "expected 2 arguments, got %d", len(args))
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			return runCheck(cmd.Context(), cfg, args[0], args[1], stdout, stderr, envErr)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetUsageTemplate(usageTemplate)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.WithCode(errUsage, err)
	})

	cmd.Flags().StringVar(&opts.format, "format", "", "Report format: "+strings.Join(config.ReportFormats, ", ")+" (default tsv)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Workbooks graded at once in directory mode (default 1)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Validate every answer pattern before grading")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level: ERROR, WARN, INFO, DEBUG, TRACE")
	cmd.Flags().StringVar(&opts.password, "password", "", "Password for encrypted workbooks")
	cmd.Flags().StringVar(&opts.runID, "run-id", "", "UUID tagging every log line (default generated)")

	return cmd
}

// loadConfig reads the environment and lets explicitly set flags override it
func loadConfig(cmd *cobra.Command, opts options) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Report.Format = strings.ToLower(opts.format)
	}
	if flags.Changed("workers") {
		cfg.Grading.Workers = opts.workers
	}
	if flags.Changed("strict") {
		cfg.Grading.StrictPatterns = opts.strict
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if flags.Changed("password") {
		cfg.Excel.Password = opts.password
	}
	if flags.Changed("run-id") {
		cfg.Log.RunID = opts.runID
	}

	if _, ok := internal.ParseLogLevel(cfg.Log.Level); !ok {
		return nil, errors.ConfigInvalid("unknown log level: " + cfg.Log.Level)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runCheck(ctx context.Context, cfg *config.Config, target, keyPath string, stdout, stderr io.Writer, envErr error) error {
	kind, err := app.ResolveTarget(target)
	if err != nil {
		return err
	}

	c, err := container.New(cfg, stderr)
	if err != nil {
		return err
	}
	if envErr != nil {
		c.Logger.Debug("[xlcheck] No .env file found, using system environment variables: %v", envErr)
	}

	key, err := answer.Load(keyPath)
	if err != nil {
		return err
	}
	if cfg.Grading.StrictPatterns {
		if err := key.Validate(); err != nil {
			return err
		}
	}

	switch kind {
	case app.TargetDirectory:
		return c.Batch.GradeDirectory(ctx, target, key, stdout)
	default:
		records, err := c.Batch.GradeFile(ctx, target, key)
		if err != nil {
			return err
		}
		c.Logger.Debug("[xlcheck] graded %s: %d cell(s)", target, len(records))
		return c.Batch.WriteReport(stdout, records)
	}
}
