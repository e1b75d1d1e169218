package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/printvault/printvault/types"
)

func testJob() *types.JobMeta {
	return &types.JobMeta{JobID: "job-1", ModelID: "m-1", Attempt: 2, MaxAttempts: 3}
}

func TestLogger_CarriesJobContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newLoggerWithWriter(testJob(), &buf)

	logger.Info("extraction complete", map[string]any{"extracted": 4})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if entry["job_id"] != "job-1" || entry["model_id"] != "m-1" {
		t.Errorf("missing job context: %v", entry)
	}
	if entry["attempt"] != float64(2) {
		t.Errorf("attempt = %v, want 2", entry["attempt"])
	}
	if entry["message"] != "extraction complete" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v", entry["level"])
	}
}

func TestLogger_LevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newLoggerWithWriter(testJob(), &buf)

	logger.Warn("thumbnail generation failed", map[string]any{"file_id": "f-1"})

	line := buf.String()
	if !strings.Contains(line, `"level":"warn"`) {
		t.Errorf("missing warn level: %s", line)
	}
	if !strings.Contains(line, "f-1") {
		t.Errorf("missing field payload: %s", line)
	}
}

func TestNop_DiscardsOutput(t *testing.T) {
	// Must not panic without a job or writer.
	logger := Nop()
	logger.Info("ignored", nil)
	logger.Error("ignored", map[string]any{"k": "v"})
}

func TestSugar_Printf(t *testing.T) {
	var buf bytes.Buffer
	logger := newLoggerWithWriter(testJob(), &buf)

	logger.Sugar().Infof("processed %d models", 3)
	if !strings.Contains(buf.String(), "processed 3 models") {
		t.Errorf("sugared output missing: %s", buf.String())
	}
}
