// Command docdex-indexer processes a single uploaded document and exits.
// It is triggered per storage event: the event JSON arrives on stdin, or the
// bucket and object are named explicitly with flags. A non-zero exit signals
// the platform to retry or dead-letter the event.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/config"
	dbRedis "github.com/kailas-cloud/docdex/internal/db/redis"
	"github.com/kailas-cloud/docdex/internal/event"
	"github.com/kailas-cloud/docdex/internal/llm"
	logpkg "github.com/kailas-cloud/docdex/internal/logger"
	"github.com/kailas-cloud/docdex/internal/metrics"
	"github.com/kailas-cloud/docdex/internal/partition"
	indexrepo "github.com/kailas-cloud/docdex/internal/repository/index"
	"github.com/kailas-cloud/docdex/internal/retry"
	"github.com/kailas-cloud/docdex/internal/storage/gcs"
	"github.com/kailas-cloud/docdex/internal/usecase/indexer"
	"github.com/kailas-cloud/docdex/internal/version"
)

func main() {
	var (
		bucket = flag.String("bucket", "", "storage bucket holding the document (overrides stdin event)")
		object = flag.String("object", "", "object name of the document (overrides stdin event)")
	)
	flag.Parse()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	// Every run gets an id so one event's log lines can be pulled together.
	logger = logger.With(zap.String("run_id", uuid.NewString()))

	logger.Info("Starting docdex indexer",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
	)

	if err := run(context.Background(), cfg, *bucket, *object, logger); err != nil {
		logger.Error("Indexing failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, bucket, object string, logger *zap.Logger) error {
	if bucket == "" {
		bucket = cfg.Storage.Bucket
	}
	ev, err := resolveEvent(bucket, object)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(strings.ToLower(ev.Name), ".pdf") {
		logger.Info("Skipping non-PDF object", zap.String("object", ev.URI()))
		return nil
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return fmt.Errorf("create database store: %w", err)
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	metrics.RegisterLLMMetrics()

	fetcher, err := gcs.NewClient(ctx)
	if err != nil {
		return err
	}

	logger.Info("Fetching document", zap.String("object", ev.URI()), zap.String("size", ev.Size))
	doc, err := fetcher.Fetch(ctx, ev.Bucket, ev.Name)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", ev.URI(), err)
	}

	docEmbedder := llm.BuildEmbedder(cfg.LLM, cfg.LLM.DocumentInstruction, store, logger)
	generator := llm.NewGenerator(cfg.LLM, logger)

	indexRepo := indexrepo.New(store, cfg.Index.Name).WithHNSW(indexrepo.HNSWConfig{
		M:           cfg.Index.HNSWM,
		EFConstruct: cfg.Index.HNSWEFConstruct,
	})
	if err := indexRepo.EnsureIndex(ctx, cfg.LLM.Dimensions); err != nil {
		return fmt.Errorf("ensure vector index: %w", err)
	}

	partitioner := partition.NewPoppler(partition.ExecRunner{}, logger)

	policy := retry.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   time.Duration(cfg.Retry.BaseDelayMS) * time.Millisecond,
		MaxDelay:    time.Duration(cfg.Retry.MaxDelaySec) * time.Second,
	}

	svc := indexer.New(partitioner, generator, docEmbedder, indexRepo, logger).
		WithRetry(policy).
		WithCallTimeout(time.Duration(cfg.Retry.CallTimeoutS) * time.Second)

	report, err := svc.IndexDocument(ctx, doc, ev.Name)
	if err != nil {
		return err
	}

	logger.Info("Document indexed",
		zap.String("source", report.Source),
		zap.Int("total_chunks", report.Total),
		zap.Int("indexed", report.Indexed),
		zap.Int("failed", len(report.Failed)),
	)

	// Verify the index can see what was written.
	count, err := indexRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("verify index count: %w", err)
	}
	logger.Info("Index verified", zap.Int("entries", count))

	if len(report.Failed) > 0 {
		for _, f := range report.Failed {
			logger.Warn("Chunk failed",
				zap.Int("sequence", f.Sequence),
				zap.String("type", string(f.Type)),
				zap.Error(f.Err),
			)
		}
		return fmt.Errorf("%d of %d chunks failed", len(report.Failed), report.Total)
	}

	return nil
}

// resolveEvent builds the storage event from the -object flag (bucket from
// -bucket or config), falling back to a Cloud Storage object-finalize JSON
// payload on stdin.
func resolveEvent(bucket, object string) (event.ObjectFinalized, error) {
	if object != "" {
		ev := event.ObjectFinalized{Bucket: bucket, Name: object}
		if err := ev.Validate(); err != nil {
			return event.ObjectFinalized{}, fmt.Errorf("-object needs a bucket from -bucket or config: %w", err)
		}
		return ev, nil
	}

	ev, err := event.Parse(os.Stdin)
	if err != nil {
		return event.ObjectFinalized{}, fmt.Errorf("read event from stdin: %w", err)
	}
	return ev, nil
}
