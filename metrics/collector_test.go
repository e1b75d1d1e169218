package metrics

import (
	"sync"
	"testing"
)

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	c.IncJobStarted()
	c.IncJobReady()
	c.IncJobFailed()
	c.AddFilesScanned(5)
	c.AddBytesHashed(1024)
	c.IncStorageWriteSuccess()
	c.IncStorageWriteFailure()
	c.IncThumbnailGenerated()
	c.IncThumbnailFailed()
	c.AbsorbExtractStats(1, 2, 3, 4)

	snap := c.Snapshot()
	if snap.JobsStarted != 0 || snap.FilesScanned != 0 {
		t.Errorf("nil collector snapshot not zero: %+v", snap)
	}
}

func TestCollector_CountersAndDimensions(t *testing.T) {
	c := NewCollector("fs", "job-1", "model-1")

	c.IncJobStarted()
	c.IncJobReady()
	c.AddFilesScanned(3)
	c.AddFilesScanned(2)
	c.AddBytesHashed(100)
	c.IncStorageWriteSuccess()
	c.IncStorageWriteSuccess()
	c.IncStorageWriteFailure()
	c.IncThumbnailGenerated()
	c.IncThumbnailFailed()
	c.AbsorbExtractStats(7, 1, 2, 0)

	snap := c.Snapshot()
	if snap.JobsStarted != 1 || snap.JobsReady != 1 || snap.JobsFailed != 0 {
		t.Errorf("lifecycle counters wrong: %+v", snap)
	}
	if snap.FilesScanned != 5 {
		t.Errorf("FilesScanned = %d, want 5", snap.FilesScanned)
	}
	if snap.BytesHashed != 100 {
		t.Errorf("BytesHashed = %d, want 100", snap.BytesHashed)
	}
	if snap.StorageWriteSuccess != 2 || snap.StorageWriteFailure != 1 {
		t.Errorf("storage counters wrong: %+v", snap)
	}
	if snap.ThumbnailsGenerated != 1 || snap.ThumbnailsFailed != 1 {
		t.Errorf("thumbnail counters wrong: %+v", snap)
	}
	if snap.EntriesExtracted != 7 || snap.EntriesSkippedHidden != 1 || snap.EntriesSkippedUnsafe != 2 {
		t.Errorf("extract counters wrong: %+v", snap)
	}
	if snap.StorageBackend != "fs" || snap.JobID != "job-1" || snap.ModelID != "model-1" {
		t.Errorf("dimensions wrong: %+v", snap)
	}
}

func TestCollector_SnapshotIsolation(t *testing.T) {
	c := NewCollector("fs", "", "")
	c.IncJobStarted()
	snap := c.Snapshot()
	c.IncJobStarted()

	if snap.JobsStarted != 1 {
		t.Errorf("snapshot mutated after creation: %d", snap.JobsStarted)
	}
	if got := c.Snapshot().JobsStarted; got != 2 {
		t.Errorf("JobsStarted = %d, want 2", got)
	}
}

func TestCollector_ConcurrentIncrements(t *testing.T) {
	c := NewCollector("fs", "", "")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.IncStorageWriteSuccess()
			c.AddBytesHashed(2)
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	if snap.StorageWriteSuccess != 50 {
		t.Errorf("StorageWriteSuccess = %d, want 50", snap.StorageWriteSuccess)
	}
	if snap.BytesHashed != 100 {
		t.Errorf("BytesHashed = %d, want 100", snap.BytesHashed)
	}
}
