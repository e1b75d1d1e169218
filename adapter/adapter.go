// Package adapter defines the completion-notification boundary.
//
// Adapters publish model completion events to downstream systems once a
// job reaches ready or final error. The worker owns adapter lifecycle;
// users provide configuration only.
package adapter

import (
	"context"
	"time"

	"github.com/printvault/printvault/ingest"
	"github.com/printvault/printvault/types"
)

// Event types published by the worker.
const (
	EventModelReady = "model_ready"
	EventModelError = "model_error"
)

// ModelEvent is the payload published when an ingestion job finishes.
type ModelEvent struct {
	EventType      string `json:"event_type"` // model_ready or model_error
	ModelID        string `json:"model_id"`
	JobID          string `json:"job_id"`
	Attempt        int    `json:"attempt"`
	FileCount      int    `json:"file_count"`
	TotalSizeBytes int64  `json:"total_size_bytes"`
	DurationMs     int64  `json:"duration_ms"`
	Timestamp      string `json:"timestamp"` // ISO 8601
}

// NewModelEvent builds the event for a finished job. result may be nil
// on failure.
func NewModelEvent(job *types.JobMeta, result *ingest.Result) *ModelEvent {
	event := &ModelEvent{
		EventType: EventModelError,
		ModelID:   job.ModelID,
		JobID:     job.JobID,
		Attempt:   job.Attempt,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if result != nil && result.State == ingest.StateReady {
		event.EventType = EventModelReady
		event.FileCount = result.FileCount
		event.TotalSizeBytes = result.TotalSizeBytes
		event.DurationMs = result.Duration.Milliseconds()
	}
	return event
}

// Adapter publishes model completion events to a downstream system.
// Implementations must be safe for single-use per job.
type Adapter interface {
	// Publish sends a model completion event to the downstream system.
	// Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *ModelEvent) error

	// Close releases adapter resources.
	Close() error
}
