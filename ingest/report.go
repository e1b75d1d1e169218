package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/printvault/printvault/metrics"
)

// Worker exit codes. The task substrate maps them to retry decisions.
const (
	ExitCodeReady            = 0 // model reached ready
	ExitCodeProcessingFailed = 1 // extraction, copy, or recording failed
	ExitCodeInternal         = 2 // unexpected failure
	ExitCodeInvalidInput     = 3 // bad arguments, pattern, or archive suffix
)

// ExitCodeFor maps a pipeline error to the worker exit code.
func ExitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitCodeReady
	case errors.Is(err, ErrValidation):
		return ExitCodeInvalidInput
	case errors.Is(err, ErrProcessing), errors.Is(err, ErrStorage), errors.Is(err, ErrImport):
		return ExitCodeProcessingFailed
	default:
		return ExitCodeInternal
	}
}

// JobReport is the structured JSON report written by --report.
type JobReport struct {
	JobID      string `json:"job_id"`
	ModelID    string `json:"model_id,omitempty"`
	Attempt    int    `json:"attempt"`
	State      State  `json:"state"`
	Message    string `json:"message"`
	ExitCode   int    `json:"exit_code"`
	DurationMs int64  `json:"duration_ms"`

	FileCount         int   `json:"file_count"`
	TotalSizeBytes    int64 `json:"total_size_bytes"`
	ThumbnailFailures int   `json:"thumbnail_failures"`

	Extract *ReportExtract    `json:"extract,omitempty"`
	Batch   *BatchResult      `json:"batch,omitempty"`
	Metrics *metrics.Snapshot `json:"metrics"`
}

// ReportExtract holds decoder accounting in the report.
type ReportExtract struct {
	Extracted     int `json:"extracted"`
	SkippedHidden int `json:"skipped_hidden"`
	SkippedUnsafe int `json:"skipped_unsafe"`
	SkippedLinks  int `json:"skipped_links"`
}

// BuildJobReport composes a JobReport from a job outcome. result may be
// nil on failure; runErr may be nil on success.
func BuildJobReport(jobID string, attempt int, result *Result, runErr error, snap metrics.Snapshot) *JobReport {
	report := &JobReport{
		JobID:    jobID,
		Attempt:  attempt,
		State:    StateReady,
		Message:  "model ready",
		ExitCode: ExitCodeFor(runErr),
		Metrics:  &snap,
	}

	if result != nil {
		report.ModelID = result.ModelID
		report.State = result.State
		report.DurationMs = result.Duration.Milliseconds()
		report.FileCount = result.FileCount
		report.TotalSizeBytes = result.TotalSizeBytes
		report.ThumbnailFailures = result.ThumbnailFailures
		if result.Extract != nil {
			report.Extract = &ReportExtract{
				Extracted:     result.Extract.Extracted,
				SkippedHidden: result.Extract.SkippedHidden,
				SkippedUnsafe: result.Extract.SkippedUnsafe,
				SkippedLinks:  result.Extract.SkippedLinks,
			}
		}
	}

	if runErr != nil {
		report.State = StateError
		report.Message = runErr.Error()
		var ierr *IngestionError
		if errors.As(runErr, &ierr) {
			report.ModelID = ierr.ModelID
		}
	}

	return report
}

// BuildBatchReport composes a JobReport for a folder-import batch.
func BuildBatchReport(jobID string, attempt int, batch *BatchResult, runErr error, snap metrics.Snapshot) *JobReport {
	report := &JobReport{
		JobID:    jobID,
		Attempt:  attempt,
		State:    StateReady,
		Message:  "batch import complete",
		ExitCode: ExitCodeFor(runErr),
		Metrics:  &snap,
	}
	if batch != nil {
		report.Batch = batch
		report.DurationMs = batch.Duration.Milliseconds()
		if batch.Failed > 0 {
			report.Message = fmt.Sprintf("batch import complete with %d failures", batch.Failed)
		}
	}
	if runErr != nil {
		report.State = StateError
		report.Message = runErr.Error()
	}
	return report
}

// WriteJobReport writes the report as JSON to the specified path.
// If path is "-", writes to stderr.
func WriteJobReport(report *JobReport, path string) error {
	if path == "" {
		return errors.New("report path must not be empty")
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')

	if path == "-" {
		if _, err := os.Stderr.Write(data); err != nil {
			return fmt.Errorf("failed to write report to stderr: %w", err)
		}
		return nil
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	return nil
}

// writeJobReportTo writes report JSON to any writer (for testing).
func writeJobReportTo(report *JobReport, w io.Writer) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
