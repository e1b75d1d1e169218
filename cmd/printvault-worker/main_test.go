package main

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/printvault/printvault/ingest"
)

// newTestApp wires the run command with a no-op exit handler so tests
// can inspect returned exit codes instead of exiting the process.
func newTestApp() *cli.App {
	return &cli.App{
		Name:           "printvault-worker",
		ExitErrHandler: func(*cli.Context, error) {},
		Commands:       []*cli.Command{runCommand()},
	}
}

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

func TestRun_ArchiveJob(t *testing.T) {
	archivePath := buildZip(t, map[string]string{"benchy.stl": "solid benchy"})
	storageDir := t.TempDir()
	reportPath := filepath.Join(t.TempDir(), "report.json")

	err := newTestApp().Run([]string{
		"printvault-worker", "run",
		"--job-id", "job-1",
		"--model-id", "m-1",
		"--archive", archivePath,
		"--storage-backend", "fs",
		"--storage-path", storageDir,
		"--report", reportPath,
	})
	if code := exitCode(t, err); code != ingest.ExitCodeReady {
		t.Fatalf("exit code = %d, want 0 (err: %v)", code, err)
	}

	if _, err := os.Stat(filepath.Join(storageDir, "models", "m-1", "files", "benchy.stl")); err != nil {
		t.Errorf("stored file missing: %v", err)
	}
	if _, err := os.Stat(reportPath); err != nil {
		t.Errorf("report missing: %v", err)
	}
}

func TestRun_MissingMode(t *testing.T) {
	err := newTestApp().Run([]string{
		"printvault-worker", "run",
		"--job-id", "job-1",
		"--storage-backend", "fs",
		"--storage-path", t.TempDir(),
	})
	if code := exitCode(t, err); code != ingest.ExitCodeInvalidInput {
		t.Errorf("exit code = %d, want %d", code, ingest.ExitCodeInvalidInput)
	}
}

func TestRun_BothModesRejected(t *testing.T) {
	err := newTestApp().Run([]string{
		"printvault-worker", "run",
		"--job-id", "job-1",
		"--archive", "a.zip",
		"--source", "dir",
		"--pattern", "{model}",
		"--storage-backend", "fs",
		"--storage-path", t.TempDir(),
	})
	if code := exitCode(t, err); code != ingest.ExitCodeInvalidInput {
		t.Errorf("exit code = %d, want %d", code, ingest.ExitCodeInvalidInput)
	}
}

func TestRun_InvalidAttempt(t *testing.T) {
	err := newTestApp().Run([]string{
		"printvault-worker", "run",
		"--job-id", "job-1",
		"--archive", "a.zip",
		"--attempt", "4",
		"--max-attempts", "3",
		"--storage-backend", "fs",
		"--storage-path", t.TempDir(),
	})
	if code := exitCode(t, err); code != ingest.ExitCodeInvalidInput {
		t.Errorf("exit code = %d, want %d", code, ingest.ExitCodeInvalidInput)
	}
}

func TestRun_UnknownAdapterRejected(t *testing.T) {
	err := newTestApp().Run([]string{
		"printvault-worker", "run",
		"--job-id", "job-1",
		"--archive", "a.zip",
		"--storage-backend", "fs",
		"--storage-path", t.TempDir(),
		"--adapter", "carrier-pigeon",
	})
	if code := exitCode(t, err); code != ingest.ExitCodeInvalidInput {
		t.Errorf("exit code = %d, want %d", code, ingest.ExitCodeInvalidInput)
	}
}

func TestRun_FolderJob(t *testing.T) {
	sourceDir := t.TempDir()
	modelDir := filepath.Join(sourceDir, "Benchy")
	if err := os.MkdirAll(modelDir, 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(modelDir, "benchy.stl"), []byte("solid"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	reportPath := filepath.Join(t.TempDir(), "report.json")

	err := newTestApp().Run([]string{
		"printvault-worker", "run",
		"--job-id", "job-2",
		"--source", sourceDir,
		"--pattern", "{model}",
		"--storage-backend", "fs",
		"--storage-path", t.TempDir(),
		"--report", reportPath,
	})
	if code := exitCode(t, err); code != ingest.ExitCodeReady {
		t.Fatalf("exit code = %d, want 0 (err: %v)", code, err)
	}
}
