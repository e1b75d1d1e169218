package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/printvault/printvault/catalog"
	"github.com/printvault/printvault/log"
	"github.com/printvault/printvault/metrics"
	"github.com/printvault/printvault/pattern"
	"github.com/printvault/printvault/store"
	"github.com/printvault/printvault/thumbs"
	"github.com/printvault/printvault/types"
)

// BatchConfig configures a folder-import batch job.
type BatchConfig struct {
	// Job is the batch job identity; each discovered model gets its own
	// model id under this job.
	Job       *types.JobMeta
	Store     store.Store
	Catalog   catalog.Catalog
	Thumbs    thumbs.Thumbnailer
	Collector *metrics.Collector
	Logger    *log.Logger
	// Strategy selects how source files are placed into storage.
	Strategy store.CopyStrategy
	// NewModelID mints a catalog id for a discovered model. Defaults to
	// random UUIDs; tests inject deterministic ids.
	NewModelID func(name string) string
	// OnModel, when set, is called after each model finishes, in
	// discovery order. Drives the live import view.
	OnModel func(ModelOutcome)
}

// ModelOutcome is the per-model result of a batch import.
type ModelOutcome struct {
	ModelID        string  `json:"model_id"`
	Name           string  `json:"name"`
	CollectionName *string `json:"collection_name,omitempty"`
	State          State   `json:"state"`
	FileCount      int     `json:"file_count"`
	Error          string  `json:"error,omitempty"`
}

// BatchResult is the two-number summary of a folder-import batch plus
// per-model detail.
type BatchResult struct {
	Processed int            `json:"processed"`
	Failed    int            `json:"failed"`
	Models    []ModelOutcome `json:"models"`
	Duration  time.Duration  `json:"-"`
}

// Err returns a classified import error when any model failed, nil
// otherwise. The batch itself still completes; callers decide whether
// a partial import is an error for their surface.
func (r *BatchResult) Err() error {
	if r.Failed == 0 {
		return nil
	}
	return &IngestionError{
		Kind:  ErrImport,
		Stage: StateReady,
		Err:   fmt.Errorf("%d of %d models failed", r.Failed, r.Processed+r.Failed),
	}
}

// RunBatch discovers models under sourceDir with the given pattern and
// ingests each one independently. One model's failure is counted and
// logged, never aborting its siblings.
func RunBatch(ctx context.Context, cfg *BatchConfig, sourceDir, patternStr string) (*BatchResult, error) {
	start := time.Now()

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewLogger(cfg.Job)
	}

	segments, err := pattern.Parse(patternStr)
	if err != nil {
		// Configuration error, surfaced before any I/O or job work.
		return nil, &IngestionError{Kind: ErrValidation, Stage: StateReceived, Err: err}
	}

	models := pattern.Walk(sourceDir, segments)
	logger.Info("folder import discovered models", map[string]any{
		"source":  sourceDir,
		"pattern": patternStr,
		"count":   len(models),
	})

	newModelID := cfg.NewModelID
	if newModelID == nil {
		newModelID = func(string) string { return uuid.NewString() }
	}

	result := &BatchResult{}
	for _, model := range models {
		if err := ctx.Err(); err != nil {
			return result, &IngestionError{Kind: ErrInternal, Stage: StateCopying, Err: err}
		}

		modelID := newModelID(model.Name)
		outcome := ModelOutcome{
			ModelID:        modelID,
			Name:           model.Name,
			CollectionName: model.CollectionName,
		}

		res, err := runBatchModel(ctx, cfg, modelID, model)
		if err != nil {
			result.Failed++
			outcome.State = StateError
			outcome.Error = err.Error()
			logger.Warn("model import failed", map[string]any{
				"model":    model.Name,
				"model_id": modelID,
				"error":    err.Error(),
			})
		} else {
			result.Processed++
			outcome.State = res.State
			outcome.FileCount = res.FileCount
		}
		result.Models = append(result.Models, outcome)
		if cfg.OnModel != nil {
			cfg.OnModel(outcome)
		}
	}

	result.Duration = time.Since(start)
	logger.Info("folder import complete", map[string]any{
		"processed": result.Processed,
		"failed":    result.Failed,
		"duration":  result.Duration.String(),
	})
	return result, nil
}

// runBatchModel ingests one discovered model with its own orchestrator,
// inheriting the batch job's attempt metadata.
func runBatchModel(ctx context.Context, cfg *BatchConfig, modelID string, model types.DiscoveredModel) (*Result, error) {
	job := &types.JobMeta{
		JobID:       cfg.Job.JobID,
		ModelID:     modelID,
		Attempt:     cfg.Job.Attempt,
		MaxAttempts: cfg.Job.MaxAttempts,
	}
	orch, err := NewOrchestrator(&Config{
		Job:       job,
		Store:     cfg.Store,
		Catalog:   cfg.Catalog,
		Thumbs:    cfg.Thumbs,
		Collector: cfg.Collector,
		ModelName: model.Name,
	})
	if err != nil {
		return nil, err
	}
	return orch.RunFolder(ctx, model, cfg.Strategy)
}
