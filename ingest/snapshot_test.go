package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/printvault/printvault/store"
	"github.com/printvault/printvault/types"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	st := store.NewStubStore()
	manifest := &types.Manifest{
		Entries: []types.ManifestEntry{
			{
				Filename:     "benchy.stl",
				RelativePath: "benchy.stl",
				FileType:     types.FileTypeSTL,
				MimeType:     "model/stl",
				SizeBytes:    12,
				ContentHash:  "abc123",
			},
		},
		TotalSizeBytes: 12,
	}

	if err := WriteSnapshot(context.Background(), st, "m-1", "Benchy", manifest); err != nil {
		t.Fatalf("WriteSnapshot failed: %v", err)
	}

	snap, err := ReadSnapshot(context.Background(), st, "m-1")
	if err != nil {
		t.Fatalf("ReadSnapshot failed: %v", err)
	}
	if snap.ModelID != "m-1" || snap.ModelName != "Benchy" {
		t.Errorf("identity = %s/%s, want m-1/Benchy", snap.ModelID, snap.ModelName)
	}
	if got := snap.Manifest.FileCount(); got != 1 {
		t.Errorf("FileCount = %d, want 1", got)
	}
	if snap.Manifest.Entries[0].ContentHash != "abc123" {
		t.Errorf("ContentHash = %s, want abc123", snap.Manifest.Entries[0].ContentHash)
	}
}

func TestSnapshot_CreatedAtIsRFC3339(t *testing.T) {
	st := store.NewStubStore()
	if err := WriteSnapshot(context.Background(), st, "m-1", "", &types.Manifest{}); err != nil {
		t.Fatalf("WriteSnapshot failed: %v", err)
	}

	snap, err := ReadSnapshot(context.Background(), st, "m-1")
	if err != nil {
		t.Fatalf("ReadSnapshot failed: %v", err)
	}
	stamp, err := time.Parse(time.RFC3339, snap.CreatedAt)
	if err != nil {
		t.Fatalf("CreatedAt %q is not RFC 3339: %v", snap.CreatedAt, err)
	}
	if age := time.Since(stamp); age < 0 || age > time.Minute {
		t.Errorf("CreatedAt %q is not recent (age %v)", snap.CreatedAt, age)
	}
}
