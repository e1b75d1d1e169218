package types

// ModelStatus is the externally visible state of a model row.
// The transition to ready or error is a job's single point of
// external visibility change.
type ModelStatus string

// Model statuses exposed for polling.
const (
	ModelStatusProcessing ModelStatus = "processing"
	ModelStatusReady      ModelStatus = "ready"
	ModelStatusError      ModelStatus = "error"
)

// DiscoveredModel is one model root found by the folder-import pattern
// walk. Each instance owns its collection name and metadata map; sibling
// branches never share them.
type DiscoveredModel struct {
	// Name is the directory name matched at the {model} segment.
	Name string `json:"name"`
	// SourcePath is the absolute path to the matched directory.
	SourcePath string `json:"source_path"`
	// CollectionName is the collection accumulated on the path from the
	// walk root, nil if the pattern has no {Collection} segment.
	CollectionName *string `json:"collection_name,omitempty"`
	// Metadata holds slug=value pairs accumulated from ancestor
	// {metadata.<slug>} segments.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ModelStats carries the aggregates recorded when a model turns ready.
type ModelStats struct {
	TotalSizeBytes int64 `json:"total_size_bytes"`
	FileCount      int   `json:"file_count"`
}
