// Package reader loads stored model state for the read-only CLI
// commands. It composes the manifest snapshot sidecar with the catalog
// status document into one response payload; the renderer and the TUI
// both consume the same payload.
package reader

import (
	"context"
	"fmt"

	"github.com/printvault/printvault/catalog"
	"github.com/printvault/printvault/ingest"
	"github.com/printvault/printvault/store"
	"github.com/printvault/printvault/types"
)

// FileSummary is one manifest entry in an inspect response.
type FileSummary struct {
	Path        string         `json:"path"`
	FileType    types.FileType `json:"file_type"`
	MimeType    string         `json:"mime_type"`
	SizeBytes   int64          `json:"size_bytes"`
	ContentHash string         `json:"content_hash"`
}

// InspectModelResponse is the deep view of one stored model.
type InspectModelResponse struct {
	ModelID        string        `json:"model_id"`
	ModelName      string        `json:"model_name"`
	Status         string        `json:"status"`
	StatusMessage  string        `json:"status_message,omitempty"`
	CreatedAt      string        `json:"created_at"`
	FileCount      int           `json:"file_count"`
	TotalSizeBytes int64         `json:"total_size_bytes"`
	Files          []FileSummary `json:"files"`
}

// InspectModel reads a model's manifest snapshot and status document
// from storage. The snapshot is authoritative; a missing status
// document degrades to "unknown" rather than failing the inspect.
func InspectModel(ctx context.Context, st store.Store, modelID string) (*InspectModelResponse, error) {
	snap, err := ingest.ReadSnapshot(ctx, st, modelID)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", modelID, err)
	}

	resp := &InspectModelResponse{
		ModelID:        snap.ModelID,
		ModelName:      snap.ModelName,
		Status:         "unknown",
		CreatedAt:      snap.CreatedAt,
		FileCount:      snap.Manifest.FileCount(),
		TotalSizeBytes: snap.Manifest.TotalSizeBytes,
		Files:          make([]FileSummary, 0, len(snap.Manifest.Entries)),
	}
	for _, entry := range snap.Manifest.Entries {
		resp.Files = append(resp.Files, FileSummary{
			Path:        entry.RelativePath,
			FileType:    entry.FileType,
			MimeType:    entry.MimeType,
			SizeBytes:   entry.SizeBytes,
			ContentHash: entry.ContentHash,
		})
	}

	if doc, err := catalog.ReadStatus(ctx, st, modelID); err == nil {
		resp.Status = string(doc.Status)
		resp.StatusMessage = doc.ErrMsg
	}

	return resp, nil
}
