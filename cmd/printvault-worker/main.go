// Package main provides the printvault-worker entrypoint.
//
// The worker runs exactly one ingestion job. The external task
// substrate invokes it with identity and attempt flags, reads the JSON
// job report, and maps the exit code to a retry decision.
//
// Usage:
//
//	printvault-worker run --job-id <id> --archive <path> [options]
//	printvault-worker run --job-id <id> --source <dir> --pattern <tpl> [options]
//
// Exit codes:
//   - 0: model(s) ready
//   - 1: processing failed (retriable)
//   - 2: internal error
//   - 3: invalid input (not retriable)
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/printvault/printvault/adapter"
	"github.com/printvault/printvault/adapter/redis"
	"github.com/printvault/printvault/adapter/webhook"
	"github.com/printvault/printvault/catalog"
	"github.com/printvault/printvault/ingest"
	"github.com/printvault/printvault/log"
	"github.com/printvault/printvault/metrics"
	"github.com/printvault/printvault/store"
	"github.com/printvault/printvault/thumbs"
	"github.com/printvault/printvault/types"
)

func main() {
	app := &cli.App{
		Name:           "printvault-worker",
		Usage:          "PrintVault per-job ingestion worker",
		Version:        types.Version,
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			runCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		// ExitErrHandler already handled the exit for ExitCoder errors.
		os.Exit(ingest.ExitCodeInternal)
	}
}

// exitErrHandler handles errors from the CLI, respecting cli.ExitCoder.
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()

		// cli.Exit("", N).Error() returns "exit status N", so skip those
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(ingest.ExitCodeInternal)
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Execute one ingestion job",
		Flags: []cli.Flag{
			// Job identity flags
			&cli.StringFlag{
				Name:     "job-id",
				Usage:    "Job ID",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "model-id",
				Usage: "Model ID (default: random UUID)",
			},
			&cli.IntFlag{
				Name:  "attempt",
				Usage: "Attempt number (starts at 1)",
				Value: 1,
			},
			&cli.IntFlag{
				Name:  "max-attempts",
				Usage: "Total attempts the substrate will make",
				Value: 1,
			},
			&cli.StringFlag{
				Name:  "model-name",
				Usage: "Display name recorded in the manifest snapshot",
			},
			// Ingestion mode flags
			&cli.StringFlag{
				Name:  "archive",
				Usage: "Path to an uploaded archive",
			},
			&cli.StringFlag{
				Name:  "source",
				Usage: "Folder-import source directory",
			},
			&cli.StringFlag{
				Name:  "pattern",
				Usage: "Folder-import template",
			},
			&cli.StringFlag{
				Name:  "strategy",
				Usage: "Copy strategy: copy, hardlink, move",
			},
			&cli.StringFlag{
				Name:  "temp-dir",
				Usage: "Parent directory for scratch extraction",
			},
			&cli.BoolFlag{
				Name:  "cleanup-upload",
				Usage: "Remove the source archive after success or final failure",
			},
			// Storage flags
			&cli.StringFlag{
				Name:  "storage-backend",
				Usage: "Storage backend: fs or s3",
				Value: "fs",
			},
			&cli.StringFlag{
				Name:  "storage-path",
				Usage: "Storage path (fs: directory, s3: bucket/prefix)",
			},
			&cli.StringFlag{
				Name:  "storage-region",
				Usage: "AWS region for the s3 backend",
			},
			&cli.StringFlag{
				Name:  "storage-endpoint",
				Usage: "Custom S3 endpoint URL",
			},
			&cli.BoolFlag{
				Name:  "storage-path-style",
				Usage: "Force path-style S3 addressing",
			},
			// Notification flags
			&cli.StringFlag{
				Name:  "adapter",
				Usage: "Completion notification adapter: webhook or redis",
			},
			&cli.StringFlag{
				Name:  "adapter-url",
				Usage: "Adapter endpoint (webhook URL or redis URL)",
			},
			&cli.StringFlag{
				Name:  "adapter-channel",
				Usage: "Redis pub/sub channel",
			},
			// Report flags
			&cli.StringFlag{
				Name:  "report",
				Usage: "Write the JSON job report to this path (\"-\" for stderr)",
				Value: "-",
			},
		},
		Action: runAction,
	}
}

// jobMode holds the validated ingestion mode.
type jobMode struct {
	archivePath string
	sourceDir   string
	patternStr  string
	strategy    store.CopyStrategy
}

// parseJobMode validates that exactly one ingestion mode is requested.
func parseJobMode(c *cli.Context) (*jobMode, error) {
	mode := &jobMode{
		archivePath: c.String("archive"),
		sourceDir:   c.String("source"),
		patternStr:  c.String("pattern"),
	}
	if (mode.archivePath == "") == (mode.sourceDir == "") {
		return nil, fmt.Errorf("exactly one of --archive or --source is required")
	}
	if mode.archivePath != "" {
		return mode, nil
	}
	if mode.patternStr == "" {
		return nil, fmt.Errorf("--source requires --pattern")
	}
	strategy, err := store.ParseStrategy(c.String("strategy"))
	if err != nil {
		return nil, err
	}
	mode.strategy = strategy
	return mode, nil
}

// buildWorkerStore creates the storage backend from worker flags.
func buildWorkerStore(ctx context.Context, c *cli.Context) (store.Store, error) {
	switch backend := c.String("storage-backend"); backend {
	case "fs":
		if c.String("storage-path") == "" {
			return nil, fmt.Errorf("fs backend requires --storage-path")
		}
		return store.NewFSStore(c.String("storage-path"))
	case "s3":
		bucket, prefix := store.ParseS3Path(c.String("storage-path"))
		return store.NewS3Store(ctx, store.S3Config{
			Bucket:       bucket,
			Prefix:       prefix,
			Region:       c.String("storage-region"),
			Endpoint:     c.String("storage-endpoint"),
			UsePathStyle: c.Bool("storage-path-style"),
		})
	default:
		return nil, fmt.Errorf("unknown storage backend: %s (must be fs or s3)", backend)
	}
}

// buildWorkerAdapter creates the notification adapter from worker
// flags. Returns nil when no adapter is configured.
func buildWorkerAdapter(c *cli.Context) (adapter.Adapter, error) {
	switch kind := c.String("adapter"); kind {
	case "":
		return nil, nil
	case "webhook":
		return webhook.New(webhook.Config{URL: c.String("adapter-url")})
	case "redis":
		return redis.New(redis.Config{
			URL:     c.String("adapter-url"),
			Channel: c.String("adapter-channel"),
		})
	default:
		return nil, fmt.Errorf("unknown adapter: %s (must be webhook or redis)", kind)
	}
}

func runAction(c *cli.Context) error {
	mode, err := parseJobMode(c)
	if err != nil {
		return cli.Exit(err.Error(), ingest.ExitCodeInvalidInput)
	}

	job := &types.JobMeta{
		JobID:       c.String("job-id"),
		ModelID:     c.String("model-id"),
		Attempt:     c.Int("attempt"),
		MaxAttempts: c.Int("max-attempts"),
	}
	if job.ModelID == "" {
		job.ModelID = uuid.NewString()
	}
	if err := job.Validate(); err != nil {
		return cli.Exit(err.Error(), ingest.ExitCodeInvalidInput)
	}

	logger := log.NewLogger(job)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := buildWorkerStore(ctx, c)
	if err != nil {
		return cli.Exit(err.Error(), ingest.ExitCodeInvalidInput)
	}
	defer func() { _ = st.Close() }()

	notifier, err := buildWorkerAdapter(c)
	if err != nil {
		return cli.Exit(err.Error(), ingest.ExitCodeInvalidInput)
	}
	if notifier != nil {
		defer func() { _ = notifier.Close() }()
	}

	cat := catalog.NewStoreCatalog(st)
	th := thumbs.NewImageThumbnailer(st, 0)
	collector := metrics.NewCollector(st.Backend(), job.JobID, job.ModelID)

	// The substrate reads coarse progress from the log stream.
	progress := ingest.ProgressFunc(func(percent int) {
		logger.Info("progress", map[string]any{"percent": percent})
	})

	var report *ingest.JobReport
	var runErr error

	if mode.archivePath != "" {
		orch, err := ingest.NewOrchestrator(&ingest.Config{
			Job:           job,
			Store:         st,
			Catalog:       cat,
			Thumbs:        th,
			Collector:     collector,
			Progress:      progress,
			Logger:        logger,
			ScratchDir:    c.String("temp-dir"),
			CleanupUpload: c.Bool("cleanup-upload"),
			ModelName:     c.String("model-name"),
		})
		if err != nil {
			return cli.Exit(err.Error(), ingest.ExitCodeInvalidInput)
		}

		var result *ingest.Result
		result, runErr = orch.RunArchive(ctx, mode.archivePath)

		// Downstream systems hear about the job once its outcome is
		// settled: ready, or error with no attempts left.
		if notifier != nil && (runErr == nil || job.FinalAttempt()) {
			if perr := notifier.Publish(ctx, adapter.NewModelEvent(job, result)); perr != nil {
				logger.Warn("completion notification failed", map[string]any{"error": perr.Error()})
			}
		}
		report = ingest.BuildJobReport(job.JobID, job.Attempt, result, runErr, collector.Snapshot())
	} else {
		var batch *ingest.BatchResult
		batch, runErr = ingest.RunBatch(ctx, &ingest.BatchConfig{
			Job:       job,
			Store:     st,
			Catalog:   cat,
			Thumbs:    th,
			Collector: collector,
			Logger:    logger,
			Strategy:  mode.strategy,
		}, mode.sourceDir, mode.patternStr)

		if runErr == nil && batch != nil {
			runErr = batch.Err()
		}
		report = ingest.BuildBatchReport(job.JobID, job.Attempt, batch, runErr, collector.Snapshot())
	}

	if err := ingest.WriteJobReport(report, c.String("report")); err != nil {
		logger.Warn("failed to write job report", map[string]any{"error": err.Error()})
	}

	return cli.Exit("", ingest.ExitCodeFor(runErr))
}
