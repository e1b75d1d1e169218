package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/printvault/printvault/store"
	"github.com/printvault/printvault/types"
)

func TestStoreCatalog_RoundTrip(t *testing.T) {
	st := store.NewStubStore()
	cat := NewStoreCatalog(st)
	ctx := context.Background()

	records := []FileRecord{
		{FileID: "f-1", ModelID: "m-1", Filename: "benchy.stl", StorageKey: "models/m-1/files/benchy.stl", FileType: types.FileTypeSTL, SizeBytes: 100, ContentHash: "aa"},
		{FileID: "f-2", ModelID: "m-1", Filename: "photo.png", StorageKey: "models/m-1/files/photo.png", FileType: types.FileTypeImage, SizeBytes: 50, ContentHash: "bb"},
	}
	if err := cat.CreateFileRecords(ctx, records); err != nil {
		t.Fatalf("CreateFileRecords failed: %v", err)
	}
	if err := cat.UpdateModelStatus(ctx, "m-1", types.ModelStatusReady, ""); err != nil {
		t.Fatalf("UpdateModelStatus failed: %v", err)
	}
	if err := cat.SetModelStats(ctx, "m-1", types.ModelStats{TotalSizeBytes: 150, FileCount: 2}); err != nil {
		t.Fatalf("SetModelStats failed: %v", err)
	}

	got, err := ReadFileRecords(ctx, st, "m-1")
	if err != nil {
		t.Fatalf("ReadFileRecords failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].FileID != "f-1" || got[1].Filename != "photo.png" {
		t.Errorf("records did not round-trip: %+v", got)
	}

	status, err := ReadStatus(ctx, st, "m-1")
	if err != nil {
		t.Fatalf("ReadStatus failed: %v", err)
	}
	if status.Status != types.ModelStatusReady {
		t.Errorf("status = %s, want ready", status.Status)
	}
	if status.UpdatedAt == "" {
		t.Error("UpdatedAt not set")
	}
}

func TestStoreCatalog_ErrorStatusKeepsMessage(t *testing.T) {
	st := store.NewStubStore()
	cat := NewStoreCatalog(st)
	ctx := context.Background()

	if err := cat.UpdateModelStatus(ctx, "m-2", types.ModelStatusError, "processing failed"); err != nil {
		t.Fatalf("UpdateModelStatus failed: %v", err)
	}

	status, err := ReadStatus(ctx, st, "m-2")
	if err != nil {
		t.Fatalf("ReadStatus failed: %v", err)
	}
	if status.Status != types.ModelStatusError || status.ErrMsg != "processing failed" {
		t.Errorf("status doc = %+v", status)
	}
}

func TestStoreCatalog_GroupsRecordsByModel(t *testing.T) {
	st := store.NewStubStore()
	cat := NewStoreCatalog(st)
	ctx := context.Background()

	records := []FileRecord{
		{FileID: "f-1", ModelID: "m-1", Filename: "a.stl"},
		{FileID: "f-2", ModelID: "m-2", Filename: "b.stl"},
	}
	if err := cat.CreateFileRecords(ctx, records); err != nil {
		t.Fatalf("CreateFileRecords failed: %v", err)
	}

	for _, modelID := range []string{"m-1", "m-2"} {
		got, err := ReadFileRecords(ctx, st, modelID)
		if err != nil {
			t.Fatalf("ReadFileRecords(%s) failed: %v", modelID, err)
		}
		if len(got) != 1 {
			t.Errorf("model %s: got %d records, want 1", modelID, len(got))
		}
	}
}

func TestReadStatus_MissingModel(t *testing.T) {
	st := store.NewStubStore()
	if _, err := ReadStatus(context.Background(), st, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
