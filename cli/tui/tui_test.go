package tui

import (
	"strings"
	"testing"

	"github.com/printvault/printvault/cli/reader"
)

func TestIsTUISupported(t *testing.T) {
	tests := []struct {
		viewType string
		want     bool
	}{
		{"inspect_model", true},

		// Not supported: execution and metadata commands
		{"ingest", false},
		{"version", false},

		// Not supported: unknown
		{"unknown", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.viewType, func(t *testing.T) {
			got := IsTUISupported(tt.viewType)
			if got != tt.want {
				t.Errorf("IsTUISupported(%q) = %v, want %v", tt.viewType, got, tt.want)
			}
		})
	}
}

func TestSupportedTUIViews(t *testing.T) {
	for _, v := range SupportedTUIViews() {
		if !IsTUISupported(v) {
			t.Errorf("SupportedTUIViews() returned %q but IsTUISupported returns false", v)
		}
	}
}

func TestRun_UnsupportedViewType(t *testing.T) {
	err := Run("ingest", nil)
	if err == nil {
		t.Error("Expected error for unsupported view type")
	}
}

func TestInspectModelView(t *testing.T) {
	resp := &reader.InspectModelResponse{
		ModelID:        "m-1",
		ModelName:      "Benchy",
		Status:         "ready",
		CreatedAt:      "2026-08-24T10:00:00Z",
		FileCount:      2,
		TotalSizeBytes: 2048,
		Files: []reader.FileSummary{
			{Path: "benchy.stl", FileType: "stl", SizeBytes: 1536},
			{Path: "images/photo.png", FileType: "image", SizeBytes: 512},
		},
	}

	view := NewInspectModel("inspect_model", resp).View()
	for _, want := range []string{"Model Details", "m-1", "Benchy", "ready", "benchy.stl", "images/photo.png"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestInspectModelView_WrongPayload(t *testing.T) {
	view := NewInspectModel("inspect_model", "not a response").View()
	if !strings.Contains(view, "Invalid data type") {
		t.Errorf("expected invalid payload message, got %q", view)
	}
}

func TestImportModelView_Counts(t *testing.T) {
	events := make(chan ImportEvent)
	m := NewImportModel(3, events)

	next, _ := m.Update(eventMsg{ModelID: "m-1", Name: "Benchy", State: "ready"})
	m = next.(ImportModel)
	next, _ = m.Update(eventMsg{ModelID: "m-2", Name: "Voron", State: "error", Error: "storage failure"})
	m = next.(ImportModel)

	if m.done != 1 || m.failed != 1 {
		t.Errorf("counts = %d done, %d failed", m.done, m.failed)
	}

	view := m.View()
	for _, want := range []string{"Folder Import", "Benchy", "Voron", "storage failure"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestImportModelView_StreamClosed(t *testing.T) {
	events := make(chan ImportEvent)
	m := NewImportModel(1, events)

	next, _ := m.Update(eventMsg{ModelID: "m-1", Name: "Benchy", State: "ready"})
	m = next.(ImportModel)
	next, cmd := m.Update(streamClosedMsg{})
	m = next.(ImportModel)

	if !m.finished {
		t.Error("model not marked finished after stream close")
	}
	if cmd == nil {
		t.Error("expected quit command after stream close")
	}
	if !strings.Contains(m.View(), "Import complete") {
		t.Error("view missing completion line")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{3 * 1024 * 1024, "3.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
