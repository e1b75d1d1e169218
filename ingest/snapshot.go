package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/printvault/printvault/iox"
	"github.com/printvault/printvault/store"
	"github.com/printvault/printvault/types"
)

// SnapshotKey returns the storage key of a model's manifest snapshot.
func SnapshotKey(modelID string) string {
	return fmt.Sprintf("models/%s/manifest.bin", modelID)
}

// ModelFileKey returns the storage key for one manifest entry of a model.
func ModelFileKey(modelID, relativePath string) string {
	return fmt.Sprintf("models/%s/files/%s", modelID, relativePath)
}

// WriteSnapshot persists the manifest snapshot sidecar next to the
// model's files. The snapshot is the ingestion-time record of what was
// cataloged; inspect reads it back without touching the catalog.
func WriteSnapshot(ctx context.Context, st store.Store, modelID, modelName string, manifest *types.Manifest) error {
	snap := types.ManifestSnapshot{
		ModelID:   modelID,
		ModelName: modelName,
		Manifest:  *manifest,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := msgpack.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("encode manifest snapshot: %w", err)
	}
	if _, err := st.Put(ctx, SnapshotKey(modelID), bytes.NewReader(data)); err != nil {
		return err
	}
	return nil
}

// ReadSnapshot loads a model's manifest snapshot from storage.
func ReadSnapshot(ctx context.Context, st store.Store, modelID string) (*types.ManifestSnapshot, error) {
	rc, err := st.Open(ctx, SnapshotKey(modelID))
	if err != nil {
		return nil, err
	}
	defer iox.DiscardClose(rc)

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read manifest snapshot: %w", err)
	}
	var snap types.ManifestSnapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode manifest snapshot: %w", err)
	}
	return &snap, nil
}
