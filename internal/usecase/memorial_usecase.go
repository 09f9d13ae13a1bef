package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/user/memorial-extractor/internal/entity"
	"github.com/user/memorial-extractor/internal/extractor"
	"github.com/user/memorial-extractor/internal/repository"
	"github.com/user/memorial-extractor/pkg/metrics"
)

// Step names reported in issues and operator messages.
const (
	StepFetch   = "fetch page"
	StepParse   = "parse structured data"
	StepSave    = "save workbook"
	StepArchive = "archive record"
)

// RunError is returned when a run aborts on an unrecoverable failure.
type RunError struct {
	Tag  entity.Tag
	Step string
	Err  error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Step, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Issue converts the error into an error-log entry.
func (e *RunError) Issue() entity.Issue {
	return entity.NewIssue(e.Tag, e.Step, e.Err)
}

// Report is the outcome of one run. On failure it holds whatever was
// produced before the abort, including every issue.
type Report struct {
	URL    string
	Source string
	Record *entity.Record // full record, including non-exported keys
	Output *entity.Record // projected to entity.OutputSchema
	Issues []entity.Issue
}

// Failed reports whether any issue carries tag.
func (r *Report) Failed(tag entity.Tag) bool {
	for _, i := range r.Issues {
		if i.Tag == tag {
			return true
		}
	}
	return false
}

// MemorialExtractor defines the interface for one fetch-extract-save run.
type MemorialExtractor interface {
	Run(ctx context.Context, url string) (*Report, error)
}

type memorialUseCase struct {
	loader   repository.DocumentLoader
	sink     repository.RecordSink
	archives []repository.RecordSink
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewMemorialUseCase creates the pipeline driver. sink receives the
// projected record and its failure aborts the run; a nil sink skips the
// write (dry runs, the HTTP API). Archive failures are reported as SAVE
// issues without failing the run.
func NewMemorialUseCase(
	loader repository.DocumentLoader,
	sink repository.RecordSink,
	archives []repository.RecordSink,
	m *metrics.Metrics,
	logger *zap.Logger,
) MemorialExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &memorialUseCase{
		loader:   loader,
		sink:     sink,
		archives: archives,
		metrics:  m,
		logger:   logger,
	}
}

// Run fetches url, extracts its record and hands the projection to the sinks.
func (uc *memorialUseCase) Run(ctx context.Context, url string) (*Report, error) {
	report := &Report{URL: url}
	uc.logger.Info("Processing memorial", zap.String("url", url))

	start := time.Now()
	doc, err := uc.loader.Load(ctx, url)
	if err != nil {
		return uc.abort(report, entity.TagCritical, StepFetch, err)
	}
	report.Source = doc.Source
	uc.metrics.ObserveFetch(doc.Source, time.Since(start).Seconds())

	rec, issues, err := extractor.Extract(doc.Body)
	if err != nil {
		return uc.abort(report, entity.TagCritical, StepParse, err)
	}
	for _, issue := range issues {
		uc.record(report, issue)
	}
	report.Record = rec
	report.Output = entity.OutputSchema.Project(rec)

	if uc.sink != nil {
		if err := uc.sink.Write(ctx, url, report.Output); err != nil {
			return uc.abort(report, entity.TagSave, StepSave, err)
		}
	}
	for _, archive := range uc.archives {
		if err := archive.Write(ctx, url, report.Output); err != nil {
			uc.record(report, entity.NewIssue(entity.TagSave, StepArchive, err))
		}
	}

	uc.metrics.IncRun("success")
	uc.logger.Info("Memorial extracted",
		zap.String("url", url),
		zap.String("source", report.Source),
		zap.Int("issues", len(report.Issues)),
		zap.Duration("duration", time.Since(start)),
	)
	return report, nil
}

func (uc *memorialUseCase) record(report *Report, issue entity.Issue) {
	report.Issues = append(report.Issues, issue)
	uc.metrics.IncIssue(string(issue.Tag), issue.Step)
	uc.logger.Warn("Extraction step failed",
		zap.String("url", report.URL),
		zap.String("tag", string(issue.Tag)),
		zap.String("step", issue.Step),
		zap.Error(issue.Err),
	)
}

func (uc *memorialUseCase) abort(report *Report, tag entity.Tag, step string, err error) (*Report, error) {
	runErr := &RunError{Tag: tag, Step: step, Err: err}
	uc.record(report, runErr.Issue())
	status := "critical"
	if tag == entity.TagSave {
		status = "save"
	}
	uc.metrics.IncRun(status)
	return report, runErr
}

// IsPayloadError reports whether err came from a missing or malformed
// structured data block.
func IsPayloadError(err error) bool {
	return errors.Is(err, extractor.ErrStructuredDataMissing) ||
		errors.Is(err, extractor.ErrStructuredDataMalformed)
}
