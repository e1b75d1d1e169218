package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/printvault/printvault/adapter"
	"github.com/printvault/printvault/catalog"
	"github.com/printvault/printvault/cli/config"
	"github.com/printvault/printvault/cli/render"
	"github.com/printvault/printvault/cli/tui"
	"github.com/printvault/printvault/ingest"
	"github.com/printvault/printvault/metrics"
	"github.com/printvault/printvault/pattern"
	"github.com/printvault/printvault/store"
	"github.com/printvault/printvault/thumbs"
	"github.com/printvault/printvault/types"
)

// IngestCommand returns the ingest command. This is the only command
// that executes work; everything else is read-only.
func IngestCommand() *cli.Command {
	flags := []cli.Flag{
		ConfigFlag,
		&cli.StringFlag{
			Name:  "archive",
			Usage: "Path to an uploaded archive (.zip, .tar.gz, .tgz, .rar, .7z)",
		},
		&cli.StringFlag{
			Name:  "source",
			Usage: "Folder-import source directory",
		},
		&cli.StringFlag{
			Name:  "pattern",
			Usage: "Folder-import template, e.g. \"{Collection}/{model}\"",
		},
		&cli.StringFlag{
			Name:  "strategy",
			Usage: "Copy strategy for folder imports: copy, hardlink, move",
		},
		&cli.StringFlag{
			Name:  "model-id",
			Usage: "Model ID for archive ingestion (default: random UUID)",
		},
		&cli.StringFlag{
			Name:  "model-name",
			Usage: "Display name recorded in the manifest snapshot",
		},
		&cli.StringFlag{
			Name:  "job-id",
			Usage: "Job ID (default: random UUID)",
		},
		&cli.IntFlag{
			Name:  "attempt",
			Usage: "Attempt number (starts at 1)",
			Value: 1,
		},
		&cli.IntFlag{
			Name:  "max-attempts",
			Usage: "Total attempts the task substrate will make",
		},
		&cli.StringFlag{
			Name:  "temp-dir",
			Usage: "Parent directory for scratch extraction",
		},
		&cli.BoolFlag{
			Name:  "cleanup-upload",
			Usage: "Remove the source archive after success or final failure",
		},
		&cli.StringFlag{
			Name:  "report",
			Usage: "Write a JSON job report to this path (\"-\" for stderr)",
		},
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "Suppress result output",
		},
	}
	flags = append(flags, StorageFlags()...)
	flags = append(flags, ReadOnlyFlags()...)

	return &cli.Command{
		Name:   "ingest",
		Usage:  "Ingest an archive or a folder of models into the library",
		Flags:  flags,
		Action: ingestAction,
	}
}

// ingestChoice holds the parsed and validated ingest mode.
type ingestChoice struct {
	archivePath string
	sourceDir   string
	patternStr  string
	strategy    store.CopyStrategy
}

// resolveIngestMode validates that exactly one ingestion mode is
// requested and fills folder-import defaults from the config file.
func resolveIngestMode(c *cli.Context, cfg *config.Config) (*ingestChoice, error) {
	choice := &ingestChoice{
		archivePath: c.String("archive"),
		sourceDir:   c.String("source"),
	}
	if (choice.archivePath == "") == (choice.sourceDir == "") {
		return nil, fmt.Errorf("exactly one of --archive or --source is required")
	}
	if choice.archivePath != "" {
		return choice, nil
	}

	choice.patternStr = c.String("pattern")
	if choice.patternStr == "" {
		choice.patternStr = cfg.Import.Pattern
	}
	if choice.patternStr == "" {
		return nil, fmt.Errorf("--source requires --pattern (or import.pattern in the config)")
	}

	strategyStr := c.String("strategy")
	if strategyStr == "" {
		strategyStr = cfg.Import.Strategy
	}
	strategy, err := store.ParseStrategy(strategyStr)
	if err != nil {
		return nil, err
	}
	choice.strategy = strategy
	return choice, nil
}

func ingestAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), ingest.ExitCodeInvalidInput)
	}

	choice, err := resolveIngestMode(c, cfg)
	if err != nil {
		return cli.Exit(err.Error(), ingest.ExitCodeInvalidInput)
	}

	job := &types.JobMeta{
		JobID:       c.String("job-id"),
		ModelID:     c.String("model-id"),
		Attempt:     c.Int("attempt"),
		MaxAttempts: c.Int("max-attempts"),
	}
	if job.JobID == "" {
		job.JobID = uuid.NewString()
	}
	if job.ModelID == "" {
		job.ModelID = uuid.NewString()
	}
	if job.MaxAttempts == 0 {
		if cfg.MaxAttempts > 0 {
			job.MaxAttempts = cfg.MaxAttempts
		} else {
			job.MaxAttempts = job.Attempt
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := buildStore(ctx, resolveStorage(c, cfg))
	if err != nil {
		return cli.Exit(err.Error(), ingest.ExitCodeInvalidInput)
	}
	defer func() { _ = st.Close() }()

	notifier, err := buildAdapter(cfg.Adapter)
	if err != nil {
		return cli.Exit(err.Error(), ingest.ExitCodeInvalidInput)
	}
	if notifier != nil {
		defer func() { _ = notifier.Close() }()
	}

	tempDir := c.String("temp-dir")
	if tempDir == "" {
		tempDir = cfg.TempDir
	}

	cat := catalog.NewStoreCatalog(st)
	th := thumbs.NewImageThumbnailer(st, 0)
	collector := metrics.NewCollector(st.Backend(), job.JobID, job.ModelID)

	if choice.archivePath != "" {
		return runArchiveIngest(ctx, c, job, st, cat, th, collector, notifier, choice, tempDir)
	}
	return runFolderIngest(ctx, c, job, st, cat, th, collector, choice)
}

func runArchiveIngest(
	ctx context.Context,
	c *cli.Context,
	job *types.JobMeta,
	st store.Store,
	cat catalog.Catalog,
	th thumbs.Thumbnailer,
	collector *metrics.Collector,
	notifier adapter.Adapter,
	choice *ingestChoice,
	tempDir string,
) error {
	orch, err := ingest.NewOrchestrator(&ingest.Config{
		Job:           job,
		Store:         st,
		Catalog:       cat,
		Thumbs:        th,
		Collector:     collector,
		ScratchDir:    tempDir,
		CleanupUpload: c.Bool("cleanup-upload"),
		ModelName:     c.String("model-name"),
	})
	if err != nil {
		return cli.Exit(err.Error(), ingest.ExitCodeInvalidInput)
	}

	result, runErr := orch.RunArchive(ctx, choice.archivePath)

	// Downstream systems hear about the job once its outcome is settled:
	// ready, or error with no attempts left.
	if notifier != nil && (runErr == nil || job.FinalAttempt()) {
		publishEvent(ctx, notifier, job, result)
	}

	report := ingest.BuildJobReport(job.JobID, job.Attempt, result, runErr, collector.Snapshot())
	if err := emitReport(c, report); err != nil {
		return cli.Exit(err.Error(), ingest.ExitCodeInternal)
	}
	return cli.Exit("", ingest.ExitCodeFor(runErr))
}

func runFolderIngest(
	ctx context.Context,
	c *cli.Context,
	job *types.JobMeta,
	st store.Store,
	cat catalog.Catalog,
	th thumbs.Thumbnailer,
	collector *metrics.Collector,
	choice *ingestChoice,
) error {
	batchCfg := &ingest.BatchConfig{
		Job:       job,
		Store:     st,
		Catalog:   cat,
		Thumbs:    th,
		Collector: collector,
		Strategy:  choice.strategy,
	}

	var batch *ingest.BatchResult
	var runErr error
	if c.Bool("tui") {
		batch, runErr = runBatchWithTUI(ctx, batchCfg, choice)
	} else {
		batch, runErr = ingest.RunBatch(ctx, batchCfg, choice.sourceDir, choice.patternStr)
	}

	outcome := runErr
	if outcome == nil && batch != nil {
		outcome = batch.Err()
	}

	report := ingest.BuildBatchReport(job.JobID, job.Attempt, batch, runErr, collector.Snapshot())
	if err := emitReport(c, report); err != nil {
		return cli.Exit(err.Error(), ingest.ExitCodeInternal)
	}
	return cli.Exit("", ingest.ExitCodeFor(outcome))
}

// runBatchWithTUI runs the batch under the live import view. The event
// channel is buffered to the discovered model count so a detached view
// never blocks the import.
func runBatchWithTUI(ctx context.Context, cfg *ingest.BatchConfig, choice *ingestChoice) (*ingest.BatchResult, error) {
	segments, err := pattern.Parse(choice.patternStr)
	if err != nil {
		return nil, &ingest.IngestionError{Kind: ingest.ErrValidation, Stage: ingest.StateReceived, Err: err}
	}
	total := len(pattern.Walk(choice.sourceDir, segments))

	events := make(chan tui.ImportEvent, total+1)
	cfg.OnModel = func(o ingest.ModelOutcome) {
		events <- tui.ImportEvent{
			ModelID: o.ModelID,
			Name:    o.Name,
			State:   string(o.State),
			Error:   o.Error,
		}
	}

	type batchDone struct {
		result *ingest.BatchResult
		err    error
	}
	done := make(chan batchDone, 1)
	go func() {
		result, err := ingest.RunBatch(ctx, cfg, choice.sourceDir, choice.patternStr)
		close(events)
		done <- batchDone{result, err}
	}()

	if err := tui.RunImportTUI(total, events); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: import view failed: %v\n", err)
	}
	d := <-done
	return d.result, d.err
}

// publishEvent sends the completion notification, logging failures to
// stderr rather than failing a job whose bytes are already durable.
func publishEvent(ctx context.Context, notifier adapter.Adapter, job *types.JobMeta, result *ingest.Result) {
	if err := notifier.Publish(ctx, adapter.NewModelEvent(job, result)); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: completion notification failed: %v\n", err)
	}
}

// emitReport writes the report file when --report is set and renders
// the report to stdout unless --quiet.
func emitReport(c *cli.Context, report *ingest.JobReport) error {
	if path := c.String("report"); path != "" {
		if err := ingest.WriteJobReport(report, path); err != nil {
			return err
		}
	}
	if c.Bool("quiet") {
		return nil
	}
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	return r.Render(report)
}
