package ingest

import (
	"errors"
	"fmt"

	"github.com/printvault/printvault/archive"
	"github.com/printvault/printvault/pattern"
	"github.com/printvault/printvault/store"
)

// Sentinel errors for ingestion failure classification.
// Use errors.Is(err, ErrXxx) for typed assertions.
var (
	// ErrValidation indicates bad caller input (unsupported suffix, bad
	// pattern, missing source path). Surfaced before any job work.
	ErrValidation = errors.New("validation failed")

	// ErrStorage indicates durable storage read/write failure.
	ErrStorage = errors.New("storage failure")

	// ErrProcessing indicates extraction or scanning failure within a job.
	ErrProcessing = errors.New("processing failed")

	// ErrImport indicates a folder-import batch completed with failures.
	ErrImport = errors.New("import failed")

	// ErrInternal indicates an unexpected failure.
	ErrInternal = errors.New("internal error")
)

// IngestionError wraps a stage failure with classification and job
// context. The original error stays in the chain for errors.As.
type IngestionError struct {
	// Kind is the sentinel for classification (e.g. ErrProcessing).
	Kind error
	// Stage is the pipeline state in which the failure occurred.
	Stage State
	// ModelID is the model being ingested.
	ModelID string
	// Err is the underlying error.
	Err error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("%s (model %s): %v: %v", e.Stage, e.ModelID, e.Kind, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *IngestionError) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches the target sentinel.
func (e *IngestionError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// classify determines the sentinel for a stage failure. Known sentinels
// from collaborator packages map directly; everything else falls back
// to a stage-appropriate default.
func classify(stage State, err error) error {
	switch {
	case errors.Is(err, archive.ErrUnsupportedFormat):
		return ErrValidation
	case errors.Is(err, pattern.ErrInvalidPattern):
		return ErrValidation
	case errors.Is(err, archive.ErrCorruptArchive),
		errors.Is(err, archive.ErrTraversalRejected),
		errors.Is(err, archive.ErrIO):
		return ErrProcessing
	}

	var storageErr *store.StorageError
	if errors.As(err, &storageErr) {
		return ErrStorage
	}

	switch stage {
	case StateExtracting:
		return ErrProcessing
	case StateCopying:
		// Scan failures surface here alongside storage placement.
		return ErrProcessing
	default:
		return ErrInternal
	}
}

// stageError builds a classified IngestionError for a stage failure.
func stageError(stage State, modelID string, err error) *IngestionError {
	return &IngestionError{Kind: classify(stage, err), Stage: stage, ModelID: modelID, Err: err}
}
