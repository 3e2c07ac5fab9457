package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"xlcheck/domain/answer"
	"xlcheck/domain/grading"
	"xlcheck/internal"
	"xlcheck/internal/errors"
	"xlcheck/ports"
)

// TargetKind tells whether the grading target is a workbook or a folder of them
type TargetKind int

const (
	TargetFile TargetKind = iota
	TargetDirectory
)

// ResolveTarget classifies path; anything that is neither a regular file nor
// a directory is TARGET_NOT_FOUND
func ResolveTarget(path string) (TargetKind, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, errors.TargetNotFound(path)
	}
	switch {
	case info.Mode().IsRegular():
		return TargetFile, nil
	case info.IsDir():
		return TargetDirectory, nil
	}
	return 0, errors.TargetNotFound(path)
}

// BatchService grades single workbooks or whole directories of them
type BatchService struct {
	opener  ports.WorkbookOpener
	report  ports.ReportWriter
	grader  *GradingService
	workers int
	logger  *internal.Logger
}

// NewBatchService wires a batch service. workers bounds how many workbooks of
// a directory are graded at once.
func NewBatchService(opener ports.WorkbookOpener, report ports.ReportWriter, workers int, logger *internal.Logger) *BatchService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if workers < 1 {
		workers = 1
	}
	return &BatchService{
		opener:  opener,
		report:  report,
		grader:  NewGradingService(logger),
		workers: workers,
		logger:  logger,
	}
}

// GradeFile opens the workbook at path and grades it against key
func (s *BatchService) GradeFile(ctx context.Context, path string, key *answer.Key) ([]grading.ResultRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	book, err := s.opener.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := book.Close(); cerr != nil {
			s.logger.Warn("[BatchService] failed to close %s: %v", path, cerr)
		}
	}()

	records, err := s.grader.Check(book, key)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to grade %s", path)
	}
	s.logger.Debug("[BatchService] graded %s (%d cells)", path, len(records))
	return records, nil
}

// WriteReport renders records with the configured report writer
func (s *BatchService) WriteReport(w io.Writer, records []grading.ResultRecord) error {
	return s.report.Write(w, records)
}

// GradeDirectory grades every workbook directly inside dir and writes each
// report next to its workbook. The path of each workbook is written to
// progress before it is graded. Workbooks that cannot be opened are skipped
// and reported together once the rest are done; any other failure stops the
// batch.
func (s *BatchService) GradeDirectory(ctx context.Context, dir string, key *answer.Key, progress io.Writer) error {
	files, err := ListWorkbooks(dir)
	if err != nil {
		return err
	}
	s.logger.Info("[BatchService] grading %d workbook(s) in %s with %d worker(s)", len(files), dir, s.workers)

	var (
		mu       sync.Mutex
		failures []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			mu.Lock()
			fmt.Fprintln(progress, path)
			mu.Unlock()

			err := s.gradeToReport(gctx, path, key)
			if err == nil {
				return nil
			}
			if errors.HasCode(err, errors.CodeWorkbookUnreadable) {
				s.logger.Error("[BatchService] skipping %s: %v", path, err)
				mu.Lock()
				failures = append(failures, err)
				mu.Unlock()
				return nil
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return stderrors.Join(failures...)
}

// ReportPath is the sibling file a workbook's report is written to
func (s *BatchService) ReportPath(workbookPath string) string {
	return strings.TrimSuffix(workbookPath, filepath.Ext(workbookPath)) + s.report.Extension()
}

func (s *BatchService) gradeToReport(ctx context.Context, path string, key *answer.Key) (err error) {
	records, err := s.GradeFile(ctx, path, key)
	if err != nil {
		return err
	}

	out, err := os.Create(s.ReportPath(path))
	if err != nil {
		return errors.Wrapf(err, "failed to create report for %s", path)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "failed to write report for %s", path)
		}
	}()

	if err := s.report.Write(out, records); err != nil {
		return errors.Wrapf(err, "failed to write report for %s", path)
	}
	return nil
}

// ListWorkbooks returns the *.xlsx files directly inside dir in name order.
// Excel's "~$" owner files, left behind while a workbook is open, are skipped.
func ListWorkbooks(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s", dir)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".xlsx" || strings.HasPrefix(name, "~$") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files, nil
}
