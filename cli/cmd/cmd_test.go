package cmd

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/printvault/printvault/catalog"
	"github.com/printvault/printvault/cli/config"
	"github.com/printvault/printvault/ingest"
	"github.com/printvault/printvault/store"
	"github.com/printvault/printvault/types"
)

// newTestApp wires the printvault commands with a no-op exit handler so
// tests can inspect returned exit codes instead of exiting the process.
func newTestApp() *cli.App {
	return &cli.App{
		Name:           "printvault",
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			IngestCommand(),
			InspectCommand(),
			VersionCommand("", "test"),
		},
	}
}

// exitCode extracts the exit code from an app.Run error.
func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var coder cli.ExitCoder
	if !errors.As(err, &coder) {
		t.Fatalf("expected ExitCoder, got %T: %v", err, err)
	}
	return coder.ExitCode()
}

// buildZip writes a zip archive with the given name=content entries.
func buildZip(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to add entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to finish archive: %v", err)
	}
	return path
}

func TestIngestCommand_ArchiveEndToEnd(t *testing.T) {
	archivePath := buildZip(t, map[string]string{
		"benchy/benchy.stl": "solid benchy",
		"benchy/readme.txt": "print at 0.2mm",
	})
	storageDir := t.TempDir()
	reportPath := filepath.Join(t.TempDir(), "report.json")

	err := newTestApp().Run([]string{
		"printvault", "ingest",
		"--archive", archivePath,
		"--storage-backend", "fs",
		"--storage-path", storageDir,
		"--model-id", "m-1",
		"--job-id", "job-1",
		"--report", reportPath,
		"--quiet",
	})
	if code := exitCode(t, err); code != ingest.ExitCodeReady {
		t.Fatalf("exit code = %d, want %d (err: %v)", code, ingest.ExitCodeReady, err)
	}

	// Files landed under the model prefix.
	for _, rel := range []string{
		"models/m-1/files/benchy/benchy.stl",
		"models/m-1/files/benchy/readme.txt",
		"models/m-1/manifest.bin",
	} {
		if _, err := os.Stat(filepath.Join(storageDir, filepath.FromSlash(rel))); err != nil {
			t.Errorf("expected stored object %s: %v", rel, err)
		}
	}

	// Catalog status flipped to ready.
	st, err := store.NewFSStore(storageDir)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()
	status, err := catalog.ReadStatus(context.Background(), st, "m-1")
	if err != nil {
		t.Fatalf("ReadStatus failed: %v", err)
	}
	if status.Status != types.ModelStatusReady {
		t.Errorf("status = %s, want ready", status.Status)
	}

	// Report is well-formed.
	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	var report ingest.JobReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if report.JobID != "job-1" || report.State != ingest.StateReady || report.FileCount != 2 {
		t.Errorf("report = %+v", report)
	}
}

func TestIngestCommand_FolderEndToEnd(t *testing.T) {
	sourceDir := t.TempDir()
	for _, rel := range []string{"Makers/Benchy/benchy.stl", "Makers/Voron/voron.stl"} {
		path := filepath.Join(sourceDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir failed: %v", err)
		}
		if err := os.WriteFile(path, []byte("solid"), 0o644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}
	storageDir := t.TempDir()
	reportPath := filepath.Join(t.TempDir(), "report.json")

	err := newTestApp().Run([]string{
		"printvault", "ingest",
		"--source", sourceDir,
		"--pattern", "{Collection}/{model}",
		"--storage-backend", "fs",
		"--storage-path", storageDir,
		"--job-id", "job-2",
		"--report", reportPath,
		"--quiet",
	})
	if code := exitCode(t, err); code != ingest.ExitCodeReady {
		t.Fatalf("exit code = %d, want 0 (err: %v)", code, err)
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	var report ingest.JobReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if report.Batch == nil {
		t.Fatal("batch summary missing from report")
	}
	if report.Batch.Processed != 2 || report.Batch.Failed != 0 {
		t.Errorf("batch summary = %d processed, %d failed", report.Batch.Processed, report.Batch.Failed)
	}
}

func TestIngestCommand_RejectsAmbiguousMode(t *testing.T) {
	err := newTestApp().Run([]string{
		"printvault", "ingest",
		"--archive", "a.zip",
		"--source", "dir",
		"--storage-backend", "fs",
		"--storage-path", t.TempDir(),
	})
	if code := exitCode(t, err); code != ingest.ExitCodeInvalidInput {
		t.Errorf("exit code = %d, want %d", code, ingest.ExitCodeInvalidInput)
	}
}

func TestIngestCommand_SourceRequiresPattern(t *testing.T) {
	err := newTestApp().Run([]string{
		"printvault", "ingest",
		"--source", t.TempDir(),
		"--storage-backend", "fs",
		"--storage-path", t.TempDir(),
	})
	if code := exitCode(t, err); code != ingest.ExitCodeInvalidInput {
		t.Errorf("exit code = %d, want %d", code, ingest.ExitCodeInvalidInput)
	}
}

func TestIngestCommand_UnsupportedArchiveSuffix(t *testing.T) {
	badArchive := filepath.Join(t.TempDir(), "model.blend")
	if err := os.WriteFile(badArchive, []byte("not an archive"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	err := newTestApp().Run([]string{
		"printvault", "ingest",
		"--archive", badArchive,
		"--storage-backend", "fs",
		"--storage-path", t.TempDir(),
		"--quiet",
	})
	if code := exitCode(t, err); code != ingest.ExitCodeInvalidInput {
		t.Errorf("exit code = %d, want %d", code, ingest.ExitCodeInvalidInput)
	}
}

func TestInspectCommand_ModelNotFound(t *testing.T) {
	err := newTestApp().Run([]string{
		"printvault", "inspect", "model", "missing",
		"--storage-backend", "fs",
		"--storage-path", t.TempDir(),
		"--format", "json",
	})
	if err == nil {
		t.Fatal("expected error for missing model")
	}
}

func TestResolveStorage_FlagsOverrideConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Backend = "s3"
	cfg.Storage.Path = "bucket/prefix"
	cfg.Storage.Region = "us-east-1"

	var choice storageChoice
	probe := &cli.Command{
		Name:  "probe",
		Flags: StorageFlags(),
		Action: func(c *cli.Context) error {
			choice = resolveStorage(c, cfg)
			return nil
		},
	}
	app := &cli.App{Commands: []*cli.Command{probe}}
	if err := app.Run([]string{"printvault", "probe", "--storage-backend", "fs", "--storage-path", "/srv/models"}); err != nil {
		t.Fatalf("probe failed: %v", err)
	}

	if choice.backend != "fs" || choice.path != "/srv/models" {
		t.Errorf("flags should override config: %+v", choice)
	}
	if choice.region != "us-east-1" {
		t.Errorf("unset flags should keep config values: %+v", choice)
	}
}

func TestResolveStorage_DefaultsToFS(t *testing.T) {
	var choice storageChoice
	probe := &cli.Command{
		Name:  "probe",
		Flags: StorageFlags(),
		Action: func(c *cli.Context) error {
			choice = resolveStorage(c, &config.Config{})
			return nil
		},
	}
	app := &cli.App{Commands: []*cli.Command{probe}}
	if err := app.Run([]string{"printvault", "probe"}); err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if choice.backend != "fs" {
		t.Errorf("backend = %s, want fs", choice.backend)
	}
}

func TestBuildStore_Validation(t *testing.T) {
	ctx := context.Background()
	if _, err := buildStore(ctx, storageChoice{backend: "fs"}); err == nil {
		t.Error("expected error for fs backend without path")
	}
	if _, err := buildStore(ctx, storageChoice{backend: "tape", path: "/x"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestBuildAdapter(t *testing.T) {
	if a, err := buildAdapter(config.AdapterConfig{}); err != nil || a != nil {
		t.Errorf("empty type should disable notifications, got %v, %v", a, err)
	}
	if _, err := buildAdapter(config.AdapterConfig{Type: "webhook", URL: "https://example.com"}); err != nil {
		t.Errorf("webhook adapter failed: %v", err)
	}
	if _, err := buildAdapter(config.AdapterConfig{Type: "redis", URL: "redis://localhost:6379/0"}); err != nil {
		t.Errorf("redis adapter failed: %v", err)
	}
	if _, err := buildAdapter(config.AdapterConfig{Type: "carrier-pigeon", URL: "x"}); err == nil {
		t.Error("expected error for unknown adapter type")
	}
}
