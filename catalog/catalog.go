// Package catalog abstracts the library database the ingestion pipeline
// writes into. The pipeline never talks to a database directly; it
// records file metadata and flips model status through this interface,
// so the same orchestrator runs against any backing catalog.
package catalog

import (
	"context"
	"fmt"

	"github.com/printvault/printvault/types"
)

// FileRecord is one cataloged file of a model, derived from a scanned
// manifest entry plus its storage key.
type FileRecord struct {
	FileID      string         `json:"file_id"`
	ModelID     string         `json:"model_id"`
	Filename    string         `json:"filename"`
	StorageKey  string         `json:"storage_key"`
	FileType    types.FileType `json:"file_type"`
	MimeType    string         `json:"mime_type"`
	SizeBytes   int64          `json:"size_bytes"`
	ContentHash string         `json:"content_hash"`
}

// Catalog records ingestion results.
type Catalog interface {
	// CreateFileRecords inserts the file rows for a model in one batch.
	CreateFileRecords(ctx context.Context, records []FileRecord) error

	// UpdateModelStatus sets the model's lifecycle status. errMsg is
	// stored alongside StatusError and ignored otherwise.
	UpdateModelStatus(ctx context.Context, modelID string, status types.ModelStatus, errMsg string) error

	// SetModelStats writes aggregate size and file count for a model.
	SetModelStats(ctx context.Context, modelID string, stats types.ModelStats) error
}

// StubCatalog is an in-memory Catalog for tests. It records every call
// and supports failure injection per method.
type StubCatalog struct {
	Records  []FileRecord
	Statuses map[string][]StatusChange
	Stats    map[string]types.ModelStats

	// FailCreate, when set, is returned from CreateFileRecords.
	FailCreate error
	// FailStatus, when set, is returned from UpdateModelStatus.
	FailStatus error
}

// StatusChange is one recorded UpdateModelStatus call.
type StatusChange struct {
	Status types.ModelStatus
	ErrMsg string
}

// NewStubCatalog creates an empty stub.
func NewStubCatalog() *StubCatalog {
	return &StubCatalog{
		Statuses: make(map[string][]StatusChange),
		Stats:    make(map[string]types.ModelStats),
	}
}

// CreateFileRecords implements Catalog.
func (c *StubCatalog) CreateFileRecords(_ context.Context, records []FileRecord) error {
	if c.FailCreate != nil {
		return c.FailCreate
	}
	c.Records = append(c.Records, records...)
	return nil
}

// UpdateModelStatus implements Catalog.
func (c *StubCatalog) UpdateModelStatus(_ context.Context, modelID string, status types.ModelStatus, errMsg string) error {
	if c.FailStatus != nil {
		return c.FailStatus
	}
	c.Statuses[modelID] = append(c.Statuses[modelID], StatusChange{Status: status, ErrMsg: errMsg})
	return nil
}

// SetModelStats implements Catalog.
func (c *StubCatalog) SetModelStats(_ context.Context, modelID string, stats types.ModelStats) error {
	c.Stats[modelID] = stats
	return nil
}

// LastStatus returns the most recent status recorded for modelID, or
// an error if none was recorded.
func (c *StubCatalog) LastStatus(modelID string) (StatusChange, error) {
	changes := c.Statuses[modelID]
	if len(changes) == 0 {
		return StatusChange{}, fmt.Errorf("no status recorded for model %s", modelID)
	}
	return changes[len(changes)-1], nil
}

// Verify StubCatalog implements Catalog.
var _ Catalog = (*StubCatalog)(nil)
