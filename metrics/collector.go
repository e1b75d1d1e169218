// Package metrics provides per-job metrics collection.
//
// The Collector accumulates counters during a single ingestion job. It
// is a leaf package with no internal dependencies. Extraction counters
// are absorbed from the archive result at stage completion rather than
// recorded live, avoiding double-counting.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all job metrics.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Job lifecycle
	JobsStarted int64
	JobsReady   int64
	JobsFailed  int64

	// Extraction (absorbed from the archive result)
	EntriesExtracted     int64
	EntriesSkippedHidden int64
	EntriesSkippedUnsafe int64
	EntriesSkippedLinks  int64

	// Scan
	FilesScanned int64
	BytesHashed  int64

	// Storage
	StorageWriteSuccess int64
	StorageWriteFailure int64

	// Thumbnails
	ThumbnailsGenerated int64
	ThumbnailsFailed    int64

	// Dimensions (informational, set at construction)
	StorageBackend string
	JobID          string
	ModelID        string
}

// Collector accumulates metrics during a single ingestion job.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	// Job lifecycle
	jobsStarted int64
	jobsReady   int64
	jobsFailed  int64

	// Extraction (set once via AbsorbExtractStats)
	entriesExtracted     int64
	entriesSkippedHidden int64
	entriesSkippedUnsafe int64
	entriesSkippedLinks  int64

	// Scan
	filesScanned int64
	bytesHashed  int64

	// Storage
	storageWriteSuccess int64
	storageWriteFailure int64

	// Thumbnails
	thumbnailsGenerated int64
	thumbnailsFailed    int64

	// Dimensions
	storageBackend string
	jobID          string
	modelID        string
}

// NewCollector creates a Collector with dimension labels.
// storageBackend names the backend ("fs" or "s3"); jobID and modelID
// are optional dimensions.
func NewCollector(storageBackend, jobID, modelID string) *Collector {
	return &Collector{
		storageBackend: storageBackend,
		jobID:          jobID,
		modelID:        modelID,
	}
}

// --- Job lifecycle ---

// IncJobStarted records a job start.
func (c *Collector) IncJobStarted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.jobsStarted++
	c.mu.Unlock()
}

// IncJobReady records a job reaching the ready state.
func (c *Collector) IncJobReady() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.jobsReady++
	c.mu.Unlock()
}

// IncJobFailed records a job failure.
func (c *Collector) IncJobFailed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.jobsFailed++
	c.mu.Unlock()
}

// --- Scan ---

// AddFilesScanned records files discovered by the tree scan.
func (c *Collector) AddFilesScanned(n int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.filesScanned += n
	c.mu.Unlock()
}

// AddBytesHashed records bytes fed through the content hash.
func (c *Collector) AddBytesHashed(n int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.bytesHashed += n
	c.mu.Unlock()
}

// --- Storage ---
// Storage counters are per-object, one Put per manifest entry.

// IncStorageWriteSuccess records a successful storage write.
func (c *Collector) IncStorageWriteSuccess() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.storageWriteSuccess++
	c.mu.Unlock()
}

// IncStorageWriteFailure records a failed storage write.
func (c *Collector) IncStorageWriteFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.storageWriteFailure++
	c.mu.Unlock()
}

// --- Thumbnails ---

// IncThumbnailGenerated records a generated thumbnail.
func (c *Collector) IncThumbnailGenerated() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.thumbnailsGenerated++
	c.mu.Unlock()
}

// IncThumbnailFailed records a thumbnail generation failure.
func (c *Collector) IncThumbnailFailed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.thumbnailsFailed++
	c.mu.Unlock()
}

// --- Extraction (absorbed from the archive result) ---

// AbsorbExtractStats copies extraction counters from the decoder result
// into the collector. Called once after the extract stage completes.
func (c *Collector) AbsorbExtractStats(extracted, skippedHidden, skippedUnsafe, skippedLinks int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entriesExtracted = extracted
	c.entriesSkippedHidden = skippedHidden
	c.entriesSkippedUnsafe = skippedUnsafe
	c.entriesSkippedLinks = skippedLinks
	c.mu.Unlock()
}

// --- Snapshot ---

// Snapshot returns an immutable point-in-time view of all metrics.
// The returned Snapshot is safe to read concurrently; the Collector can
// continue to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		JobsStarted: c.jobsStarted,
		JobsReady:   c.jobsReady,
		JobsFailed:  c.jobsFailed,

		EntriesExtracted:     c.entriesExtracted,
		EntriesSkippedHidden: c.entriesSkippedHidden,
		EntriesSkippedUnsafe: c.entriesSkippedUnsafe,
		EntriesSkippedLinks:  c.entriesSkippedLinks,

		FilesScanned: c.filesScanned,
		BytesHashed:  c.bytesHashed,

		StorageWriteSuccess: c.storageWriteSuccess,
		StorageWriteFailure: c.storageWriteFailure,

		ThumbnailsGenerated: c.thumbnailsGenerated,
		ThumbnailsFailed:    c.thumbnailsFailed,

		StorageBackend: c.storageBackend,
		JobID:          c.jobID,
		ModelID:        c.modelID,
	}
}
