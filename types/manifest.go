//nolint:revive // types is a common Go package naming convention
package types

// FileType classifies a manifest entry by its extension.
type FileType string

// File type classifications. Anything not matching a known
// mesh, image, or document extension is FileTypeOther.
const (
	FileTypeSTL      FileType = "stl"
	FileTypeImage    FileType = "image"
	FileTypeDocument FileType = "document"
	FileTypeOther    FileType = "other"
)

// ManifestEntry is one classified, hashed file under a model's source root.
// Immutable once produced by the scanner; the catalog's file records are
// derived from it. Msgpack tags cover the manifest snapshot sidecar.
type ManifestEntry struct {
	// Filename is the base name of the file.
	Filename string `msgpack:"filename" json:"filename"`
	// RelativePath is the root-relative path, forward-slash normalized.
	RelativePath string `msgpack:"relative_path" json:"relative_path"`
	// FileType is the extension-derived classification.
	FileType FileType `msgpack:"file_type" json:"file_type"`
	// MimeType is the extension-derived MIME type.
	MimeType string `msgpack:"mime_type" json:"mime_type"`
	// SizeBytes is the file length. Never negative.
	SizeBytes int64 `msgpack:"size_bytes" json:"size_bytes"`
	// ContentHash is the hex SHA-256 digest over the file bytes.
	// Canonical identity for dedup and addressable storage keys.
	ContentHash string `msgpack:"content_hash" json:"content_hash"`
}

// Manifest is the scan result for one model root.
type Manifest struct {
	Entries []ManifestEntry `msgpack:"entries" json:"entries"`
	// TotalSizeBytes is the sum of entry sizes.
	TotalSizeBytes int64 `msgpack:"total_size_bytes" json:"total_size_bytes"`
}

// FileCount returns the number of entries in the manifest.
func (m *Manifest) FileCount() int {
	return len(m.Entries)
}

// ManifestSnapshot is the msgpack sidecar persisted next to a model's
// files in storage. Read back by the inspect command.
type ManifestSnapshot struct {
	ModelID   string   `msgpack:"model_id" json:"model_id"`
	ModelName string   `msgpack:"model_name" json:"model_name"`
	Manifest  Manifest `msgpack:"manifest" json:"manifest"`
	// CreatedAt is an RFC 3339 timestamp of snapshot creation.
	CreatedAt string `msgpack:"created_at" json:"created_at"`
}
