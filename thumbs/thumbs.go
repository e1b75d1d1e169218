// Package thumbs abstracts thumbnail generation for ingested image
// files. Generation failures are cosmetic: the orchestrator logs them
// and continues, so a broken image never fails an ingestion.
package thumbs

import (
	"context"
	"fmt"
)

// ThumbnailRecord describes one generated thumbnail.
type ThumbnailRecord struct {
	ModelID    string `json:"model_id"`
	FileID     string `json:"file_id"`
	StorageKey string `json:"storage_key"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

// Thumbnailer generates a thumbnail for a stored image file.
type Thumbnailer interface {
	Generate(ctx context.Context, sourceKey, modelID, fileID string) (*ThumbnailRecord, error)
}

// StubThumbnailer records Generate calls and supports per-file failure
// injection for tests.
type StubThumbnailer struct {
	Generated []ThumbnailRecord
	// FailFor maps fileID to the error Generate returns for it.
	FailFor map[string]error
}

// NewStubThumbnailer creates an empty stub.
func NewStubThumbnailer() *StubThumbnailer {
	return &StubThumbnailer{FailFor: make(map[string]error)}
}

// Generate implements Thumbnailer.
func (t *StubThumbnailer) Generate(_ context.Context, sourceKey, modelID, fileID string) (*ThumbnailRecord, error) {
	if err, ok := t.FailFor[fileID]; ok {
		return nil, err
	}
	rec := ThumbnailRecord{
		ModelID:    modelID,
		FileID:     fileID,
		StorageKey: fmt.Sprintf("models/%s/thumbs/%s.webp", modelID, fileID),
		Width:      256,
		Height:     256,
	}
	t.Generated = append(t.Generated, rec)
	return &rec, nil
}

// Verify StubThumbnailer implements Thumbnailer.
var _ Thumbnailer = (*StubThumbnailer)(nil)
