// Package ingest drives the job-level ingestion pipeline: decode or
// discover a model source, scan it into a manifest, place bytes in
// durable storage, record files in the catalog, thumbnail images, and
// flip the model to ready. Each job runs its stages strictly
// sequentially on one worker slot; jobs share no mutable state.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/printvault/printvault/archive"
	"github.com/printvault/printvault/catalog"
	"github.com/printvault/printvault/iox"
	"github.com/printvault/printvault/log"
	"github.com/printvault/printvault/metrics"
	"github.com/printvault/printvault/scan"
	"github.com/printvault/printvault/store"
	"github.com/printvault/printvault/thumbs"
	"github.com/printvault/printvault/types"
)

// Config configures a single ingestion job.
type Config struct {
	// Job is the job identity and attempt metadata from the task substrate.
	Job *types.JobMeta
	// Store is the durable storage collaborator.
	Store store.Store
	// Catalog records file rows and model status.
	Catalog catalog.Catalog
	// Thumbs generates thumbnails for image files. If nil, the
	// thumbnailing stage is a no-op.
	Thumbs thumbs.Thumbnailer
	// Collector receives job metrics. Nil disables metrics (all
	// Collector methods are nil-safe).
	Collector *metrics.Collector
	// Progress receives coarse milestones. Nil discards them.
	Progress ProgressReporter
	// Logger overrides the default job logger (for tests).
	Logger *log.Logger
	// ScratchDir is the parent for per-attempt extraction directories.
	// Empty uses the OS temp dir.
	ScratchDir string
	// CleanupUpload removes the source archive once the job has fully
	// succeeded or failed its final attempt. Intermediate attempts keep
	// the uploaded bytes so the client never re-uploads.
	CleanupUpload bool
	// ModelName is the display name recorded in the manifest snapshot.
	ModelName string
}

// Result summarizes one completed ingestion.
type Result struct {
	ModelID           string
	State             State
	Manifest          *types.Manifest
	FileCount         int
	TotalSizeBytes    int64
	ThumbnailFailures int
	// Extract is the decoder accounting, nil for folder imports.
	Extract  *archive.Result
	Duration time.Duration
}

// Orchestrator executes one ingestion job as an explicit state machine.
type Orchestrator struct {
	cfg      *Config
	logger   *log.Logger
	progress *monotonicProgress
	state    State
	start    time.Time

	// scratch is the per-attempt extraction directory, upload the source
	// archive. Both removed only on success or the final failed attempt.
	scratch string
	upload  string
}

// NewOrchestrator validates the job metadata and wires collaborators.
func NewOrchestrator(cfg *Config) (*Orchestrator, error) {
	if err := cfg.Job.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job metadata: %w", err)
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("job %s: storage collaborator is required", cfg.Job.JobID)
	}
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("job %s: catalog collaborator is required", cfg.Job.JobID)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewLogger(cfg.Job)
	}

	return &Orchestrator{
		cfg:      cfg,
		logger:   logger,
		progress: newMonotonicProgress(cfg.Progress),
		state:    StateReceived,
	}, nil
}

// State returns the orchestrator's current state.
func (o *Orchestrator) State() State { return o.state }

// RunArchive ingests one uploaded archive end-to-end.
//
// Pipeline: extract to a scratch directory, scan into a manifest, copy
// each entry into storage under models/<id>/files/<relpath>, record the
// files, thumbnail images, mark ready.
func (o *Orchestrator) RunArchive(ctx context.Context, archivePath string) (*Result, error) {
	o.begin()
	o.upload = archivePath
	o.logger.Info("starting archive ingestion", map[string]any{
		"archive": archivePath,
		"backend": o.cfg.Store.Backend(),
	})

	if err := o.advance(StateExtracting); err != nil {
		return o.fail(ctx, err)
	}

	dec, err := archive.ForPath(archivePath, o.logger)
	if err != nil {
		return o.fail(ctx, err)
	}

	scratch, err := os.MkdirTemp(o.cfg.ScratchDir, "printvault-extract-")
	if err != nil {
		return o.fail(ctx, err)
	}
	o.scratch = scratch

	extractRes, err := dec.Extract(ctx, archivePath, scratch)
	if err != nil {
		return o.fail(ctx, err)
	}
	o.cfg.Collector.AbsorbExtractStats(
		int64(extractRes.Extracted),
		int64(extractRes.SkippedHidden),
		int64(extractRes.SkippedUnsafe),
		int64(extractRes.SkippedLinks),
	)
	o.logger.Info("extraction complete", map[string]any{
		"format":         dec.Format(),
		"extracted":      extractRes.Extracted,
		"skipped_hidden": extractRes.SkippedHidden,
		"skipped_unsafe": extractRes.SkippedUnsafe,
		"skipped_links":  extractRes.SkippedLinks,
	})

	if err := o.advance(StateCopying); err != nil {
		return o.fail(ctx, err)
	}

	manifest, err := scan.Scan(ctx, scratch)
	if err != nil {
		return o.fail(ctx, err)
	}
	o.cfg.Collector.AddFilesScanned(int64(len(manifest.Entries)))
	o.cfg.Collector.AddBytesHashed(manifest.TotalSizeBytes)

	records := make([]catalog.FileRecord, 0, len(manifest.Entries))
	for _, entry := range manifest.Entries {
		key := ModelFileKey(o.cfg.Job.ModelID, entry.RelativePath)
		src := filepath.Join(scratch, filepath.FromSlash(entry.RelativePath))
		if err := o.putFile(ctx, src, key); err != nil {
			return o.fail(ctx, err)
		}
		records = append(records, newFileRecord(o.cfg.Job.ModelID, entry, key))
	}

	return o.finish(ctx, manifest, records, nil, extractRes)
}

// RunFolder ingests one discovered model directly from its source
// directory, skipping the decoder. Bytes are placed per the copy
// strategy; move-strategy sources are deleted only after catalog commit.
func (o *Orchestrator) RunFolder(ctx context.Context, model types.DiscoveredModel, strategy store.CopyStrategy) (*Result, error) {
	o.begin()
	o.logger.Info("starting folder ingestion", map[string]any{
		"source":   model.SourcePath,
		"strategy": string(strategy),
		"backend":  o.cfg.Store.Backend(),
	})

	if err := o.advance(StateExtracting); err != nil {
		return o.fail(ctx, err)
	}
	info, err := os.Stat(model.SourcePath)
	if err != nil || !info.IsDir() {
		if err == nil {
			err = fmt.Errorf("source %s is not a directory", model.SourcePath)
		}
		return o.fail(ctx, &IngestionError{Kind: ErrValidation, Stage: o.state, ModelID: o.cfg.Job.ModelID, Err: err})
	}

	if err := o.advance(StateCopying); err != nil {
		return o.fail(ctx, err)
	}

	manifest, err := scan.Scan(ctx, model.SourcePath)
	if err != nil {
		return o.fail(ctx, err)
	}
	o.cfg.Collector.AddFilesScanned(int64(len(manifest.Entries)))
	o.cfg.Collector.AddBytesHashed(manifest.TotalSizeBytes)

	records := make([]catalog.FileRecord, 0, len(manifest.Entries))
	var finalizers []func() error
	for _, entry := range manifest.Entries {
		key := ModelFileKey(o.cfg.Job.ModelID, entry.RelativePath)
		src := filepath.Join(model.SourcePath, filepath.FromSlash(entry.RelativePath))
		finalize, err := store.Place(ctx, o.cfg.Store, strategy, src, key)
		if err != nil {
			o.cfg.Collector.IncStorageWriteFailure()
			return o.fail(ctx, err)
		}
		o.cfg.Collector.IncStorageWriteSuccess()
		if finalize != nil {
			finalizers = append(finalizers, finalize)
		}
		records = append(records, newFileRecord(o.cfg.Job.ModelID, entry, key))
	}

	return o.finish(ctx, manifest, records, finalizers, nil)
}

// begin resets per-attempt bookkeeping.
func (o *Orchestrator) begin() {
	o.start = time.Now()
	o.state = StateReceived
	o.cfg.Collector.IncJobStarted()
	o.progress.Update(Milestone(StateReceived))
}

// advance validates and performs a state transition, reporting the new
// state's progress milestone.
func (o *Orchestrator) advance(to State) error {
	next, err := o.state.Transition(to)
	if err != nil {
		return err
	}
	o.state = next
	o.progress.Update(Milestone(next))
	o.logger.Debug("stage entered", map[string]any{"state": string(next)})
	return nil
}

// putFile streams one local file into storage.
func (o *Orchestrator) putFile(ctx context.Context, src, key string) error {
	f, err := os.Open(src)
	if err != nil {
		o.cfg.Collector.IncStorageWriteFailure()
		return store.WrapReadError(err, src)
	}
	defer iox.DiscardClose(f)
	if _, err := o.cfg.Store.Put(ctx, key, f); err != nil {
		o.cfg.Collector.IncStorageWriteFailure()
		return err
	}
	o.cfg.Collector.IncStorageWriteSuccess()
	return nil
}

// finish runs the recording, thumbnailing, and ready stages shared by
// both ingestion entry points. finalizers (move-strategy source
// deletions) run only after the catalog commit succeeds, so a crash in
// between leaves a duplicate, never a loss.
func (o *Orchestrator) finish(
	ctx context.Context,
	manifest *types.Manifest,
	records []catalog.FileRecord,
	finalizers []func() error,
	extract *archive.Result,
) (*Result, error) {
	modelID := o.cfg.Job.ModelID

	if err := o.advance(StateRecording); err != nil {
		return o.fail(ctx, err)
	}

	if err := WriteSnapshot(ctx, o.cfg.Store, modelID, o.modelName(), manifest); err != nil {
		return o.fail(ctx, err)
	}
	if err := o.cfg.Catalog.CreateFileRecords(ctx, records); err != nil {
		return o.fail(ctx, err)
	}
	stats := types.ModelStats{
		TotalSizeBytes: manifest.TotalSizeBytes,
		FileCount:      len(manifest.Entries),
	}
	if err := o.cfg.Catalog.SetModelStats(ctx, modelID, stats); err != nil {
		return o.fail(ctx, err)
	}

	// Catalog rows are committed; move-strategy sources are now safe to
	// delete. A finalizer failure is logged, not fatal: the bytes exist
	// in storage, only the source copy lingers.
	for _, finalize := range finalizers {
		if err := finalize(); err != nil {
			o.logger.Warn("source cleanup failed after commit", map[string]any{
				"error": err.Error(),
			})
		}
	}

	if err := o.advance(StateThumbnailing); err != nil {
		return o.fail(ctx, err)
	}
	thumbFailures := o.thumbnailImages(ctx, records)

	if err := o.advance(StateReady); err != nil {
		return o.fail(ctx, err)
	}
	if err := o.cfg.Catalog.UpdateModelStatus(ctx, modelID, types.ModelStatusReady, ""); err != nil {
		return o.fail(ctx, err)
	}
	o.cfg.Collector.IncJobReady()
	o.cleanupTemp()

	duration := time.Since(o.start)
	o.logger.Info("ingestion complete", map[string]any{
		"file_count":         stats.FileCount,
		"total_size_bytes":   stats.TotalSizeBytes,
		"thumbnail_failures": thumbFailures,
		"duration":           duration.String(),
	})

	return &Result{
		ModelID:           modelID,
		State:             o.state,
		Manifest:          manifest,
		FileCount:         stats.FileCount,
		TotalSizeBytes:    stats.TotalSizeBytes,
		ThumbnailFailures: thumbFailures,
		Extract:           extract,
		Duration:          duration,
	}, nil
}

// thumbnailImages invokes the thumbnailer for every image record. A
// single image's failure is logged and skipped, never fatal.
func (o *Orchestrator) thumbnailImages(ctx context.Context, records []catalog.FileRecord) int {
	if o.cfg.Thumbs == nil {
		return 0
	}
	failures := 0
	for _, rec := range records {
		if rec.FileType != types.FileTypeImage {
			continue
		}
		if _, err := o.cfg.Thumbs.Generate(ctx, rec.StorageKey, rec.ModelID, rec.FileID); err != nil {
			failures++
			o.cfg.Collector.IncThumbnailFailed()
			o.logger.Warn("thumbnail generation failed", map[string]any{
				"file_id":  rec.FileID,
				"filename": rec.Filename,
				"error":    err.Error(),
			})
			continue
		}
		o.cfg.Collector.IncThumbnailGenerated()
	}
	return failures
}

// fail classifies the stage failure and transitions to error.
//
// Catalog error state and temp cleanup are gated on the final attempt:
// earlier attempts propagate the failure to the retry substrate without
// surfacing a premature permanent error or discarding the uploaded
// bytes.
func (o *Orchestrator) fail(ctx context.Context, err error) (*Result, error) {
	var ierr *IngestionError
	if ie, ok := err.(*IngestionError); ok {
		ierr = ie
	} else {
		ierr = stageError(o.state, o.cfg.Job.ModelID, err)
	}
	o.state = StateError
	o.cfg.Collector.IncJobFailed()

	final := o.cfg.Job.FinalAttempt()
	o.logger.Error("ingestion stage failed", map[string]any{
		"stage":         string(ierr.Stage),
		"kind":          ierr.Kind.Error(),
		"error":         ierr.Err.Error(),
		"final_attempt": final,
	})

	if final {
		// Status update survives caller cancellation so the model never
		// sticks in processing after the last attempt.
		statusCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if uerr := o.cfg.Catalog.UpdateModelStatus(statusCtx, o.cfg.Job.ModelID, types.ModelStatusError, userMessage(ierr.Kind)); uerr != nil {
			o.logger.Warn("failed to mark model errored", map[string]any{
				"error": uerr.Error(),
			})
		}
		o.cleanupTemp()
	}

	return nil, ierr
}

// cleanupTemp removes the scratch extraction directory and, when upload
// cleanup is enabled, the source archive.
func (o *Orchestrator) cleanupTemp() {
	if o.scratch != "" {
		if err := os.RemoveAll(o.scratch); err != nil {
			o.logger.Warn("scratch cleanup failed", map[string]any{
				"path":  o.scratch,
				"error": err.Error(),
			})
		}
		o.scratch = ""
	}
	if o.upload != "" && o.cfg.CleanupUpload {
		if err := os.Remove(o.upload); err != nil && !os.IsNotExist(err) {
			o.logger.Warn("upload cleanup failed", map[string]any{
				"path":  o.upload,
				"error": err.Error(),
			})
		}
		o.upload = ""
	}
}

// modelName returns the display name for the manifest snapshot.
func (o *Orchestrator) modelName() string {
	if o.cfg.ModelName != "" {
		return o.cfg.ModelName
	}
	return o.cfg.Job.ModelID
}

// userMessage maps a failure kind to the coarse status message exposed
// for polling. Stack-level detail stays in server logs.
func userMessage(kind error) string {
	switch kind {
	case ErrValidation:
		return "invalid input"
	case ErrStorage:
		return "storage failure"
	case ErrProcessing:
		return "processing failed"
	case ErrImport:
		return "import failed"
	default:
		return "internal error"
	}
}

// newFileRecord derives the catalog row for one manifest entry.
func newFileRecord(modelID string, entry types.ManifestEntry, key string) catalog.FileRecord {
	return catalog.FileRecord{
		FileID:      uuid.NewString(),
		ModelID:     modelID,
		Filename:    entry.Filename,
		StorageKey:  key,
		FileType:    entry.FileType,
		MimeType:    entry.MimeType,
		SizeBytes:   entry.SizeBytes,
		ContentHash: entry.ContentHash,
	}
}
