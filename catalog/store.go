package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/printvault/printvault/iox"
	"github.com/printvault/printvault/store"
	"github.com/printvault/printvault/types"
)

// StoreCatalog persists catalog documents as JSON sidecars in the same
// blob store that holds the model files. It serves single-binary
// deployments where no external database owns the library; a model's
// whole state then lives under one models/<id>/ prefix.
type StoreCatalog struct {
	store store.Store
}

// NewStoreCatalog creates a catalog backed by the given store.
func NewStoreCatalog(st store.Store) *StoreCatalog {
	return &StoreCatalog{store: st}
}

// StatusDoc is the persisted model status document.
type StatusDoc struct {
	ModelID   string            `json:"model_id"`
	Status    types.ModelStatus `json:"status"`
	ErrMsg    string            `json:"error_message,omitempty"`
	UpdatedAt string            `json:"updated_at"`
}

// RecordsKey returns the storage key of a model's file record document.
func RecordsKey(modelID string) string {
	return fmt.Sprintf("models/%s/records.json", modelID)
}

// StatusKey returns the storage key of a model's status document.
func StatusKey(modelID string) string {
	return fmt.Sprintf("models/%s/status.json", modelID)
}

// StatsKey returns the storage key of a model's stats document.
func StatsKey(modelID string) string {
	return fmt.Sprintf("models/%s/stats.json", modelID)
}

// CreateFileRecords implements Catalog. Records are grouped per model
// and each group replaces that model's record document wholesale.
func (c *StoreCatalog) CreateFileRecords(ctx context.Context, records []FileRecord) error {
	byModel := make(map[string][]FileRecord)
	order := make([]string, 0, 1)
	for _, rec := range records {
		if _, seen := byModel[rec.ModelID]; !seen {
			order = append(order, rec.ModelID)
		}
		byModel[rec.ModelID] = append(byModel[rec.ModelID], rec)
	}
	for _, modelID := range order {
		if err := c.putJSON(ctx, RecordsKey(modelID), byModel[modelID]); err != nil {
			return fmt.Errorf("catalog: write records for model %s: %w", modelID, err)
		}
	}
	return nil
}

// UpdateModelStatus implements Catalog.
func (c *StoreCatalog) UpdateModelStatus(ctx context.Context, modelID string, status types.ModelStatus, errMsg string) error {
	doc := StatusDoc{
		ModelID:   modelID,
		Status:    status,
		ErrMsg:    errMsg,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := c.putJSON(ctx, StatusKey(modelID), doc); err != nil {
		return fmt.Errorf("catalog: write status for model %s: %w", modelID, err)
	}
	return nil
}

// SetModelStats implements Catalog.
func (c *StoreCatalog) SetModelStats(ctx context.Context, modelID string, stats types.ModelStats) error {
	if err := c.putJSON(ctx, StatsKey(modelID), stats); err != nil {
		return fmt.Errorf("catalog: write stats for model %s: %w", modelID, err)
	}
	return nil
}

func (c *StoreCatalog) putJSON(ctx context.Context, key string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	_, err = c.store.Put(ctx, key, bytes.NewReader(data))
	return err
}

// ReadStatus loads a model's status document from the store.
func ReadStatus(ctx context.Context, st store.Store, modelID string) (*StatusDoc, error) {
	var doc StatusDoc
	if err := getJSON(ctx, st, StatusKey(modelID), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ReadFileRecords loads a model's file record document from the store.
func ReadFileRecords(ctx context.Context, st store.Store, modelID string) ([]FileRecord, error) {
	var records []FileRecord
	if err := getJSON(ctx, st, RecordsKey(modelID), &records); err != nil {
		return nil, err
	}
	return records, nil
}

func getJSON(ctx context.Context, st store.Store, key string, out any) error {
	rc, err := st.Open(ctx, key)
	if err != nil {
		return err
	}
	defer iox.DiscardClose(rc)
	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("catalog: read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("catalog: decode %s: %w", key, err)
	}
	return nil
}

// Verify StoreCatalog implements Catalog.
var _ Catalog = (*StoreCatalog)(nil)
