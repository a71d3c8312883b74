package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/sourcing-engine/api"
	"github.com/angelmondragon/sourcing-engine/internal/batch"
	"github.com/angelmondragon/sourcing-engine/internal/datecode"
	"github.com/angelmondragon/sourcing-engine/internal/listings"
	"github.com/angelmondragon/sourcing-engine/internal/marketplace"
	"github.com/angelmondragon/sourcing-engine/internal/pricing"
	"github.com/angelmondragon/sourcing-engine/internal/report"
	"github.com/angelmondragon/sourcing-engine/internal/requests"
	"github.com/angelmondragon/sourcing-engine/internal/selection"
	"github.com/angelmondragon/sourcing-engine/pkg/config"
	"github.com/angelmondragon/sourcing-engine/pkg/db"
	"github.com/angelmondragon/sourcing-engine/pkg/logger"
	"github.com/angelmondragon/sourcing-engine/pkg/metrics"
	"github.com/angelmondragon/sourcing-engine/pkg/migrate"
	"github.com/angelmondragon/sourcing-engine/pkg/redis"
)

func main() {
	runKey := flag.String("run-key", "", "RFQ run key (required)")
	inputPath := flag.String("input", "", "path to an input workbook; when empty the batch loads from the database")
	outputDir := flag.String("output-dir", "", "override the results workbook directory")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "sourcing-batch"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "sourcing-batch",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if *runKey == "" {
		logg.Error(context.Background(), "a run key is required", fmt.Errorf("pass -run-key"))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithRunKey(ctx, *runKey)

	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = "sqlite"
	}

	var dbClient *db.Client
	if cfg.DB.DSN != "" {
		dbClient, err = db.New(ctx, cfg.DB, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap database", err)
			os.Exit(1)
		}
		defer func() {
			if err := dbClient.Close(); err != nil {
				logg.Error(ctx, "error closing database", err)
			}
		}()

		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
			logg.Error(ctx, "failed to run dev migrations", err)
			os.Exit(1)
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(ctx, "error closing redis", err)
			}
		}()
	}

	var dateCodeCache datecode.Cache = datecode.NewMemoryCache()
	if redisClient != nil {
		dateCodeCache = datecode.NewRedisCache(redisClient)
	}
	classifier, err := datecode.NewClassifier(datecode.ClassifierParams{
		Cache:       dateCodeCache,
		WindowYears: cfg.Selection.FreshWindowYears,
	})
	if err != nil {
		logg.Error(ctx, "failed to build date code classifier", err)
		os.Exit(1)
	}

	aggregator, err := listings.NewAggregator(listings.AggregatorParams{Classifier: classifier})
	if err != nil {
		logg.Error(ctx, "failed to build aggregator", err)
		os.Exit(1)
	}
	selector, err := selection.NewSelector(selection.SelectorParams{
		MaxPerRegion: cfg.Selection.MaxSuppliersPerRegion,
	})
	if err != nil {
		logg.Error(ctx, "failed to build selector", err)
		os.Exit(1)
	}

	var benchmark pricing.Benchmark = pricing.Unavailable{}
	if redisClient != nil {
		benchmark = pricing.NewCached(benchmark, redisClient)
	}

	portal, err := marketplace.NewHTTPClient(marketplace.HTTPClientParams{
		Config: cfg.Marketplace,
		Logger: logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to build marketplace client", err)
		os.Exit(1)
	}

	lock, err := batch.NewFileLock(batch.FileLockParams{
		Dir:    cfg.Batch.LockDir,
		RunKey: *runKey,
		Logger: logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to build run lock", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	batchMetrics := metrics.NewBatchMetrics(registry)

	opsServer := &http.Server{
		Addr: cfg.App.MetricsAddr,
		Handler: api.NewRouter(api.RouterParams{
			Config:   cfg,
			Logger:   logg,
			DB:       dbPinger(dbClient),
			Redis:    redisClient,
			Gatherer: registry,
		}),
	}
	go func() {
		if err := opsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "ops server stopped unexpectedly", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "error shutting down ops server", err)
		}
	}()

	parts, err := loadParts(ctx, cfg, dbClient, *inputPath, *runKey)
	if err != nil {
		logg.Error(ctx, "failed to load part requests", err)
		os.Exit(1)
	}
	logg.Info(logg.WithField(ctx, "parts", len(parts)), "batch input loaded")

	var sink *report.DBSink
	var ledger batch.SentLedger
	if dbClient != nil {
		sink, err = report.NewDBSink(dbClient.DB())
		if err != nil {
			logg.Error(ctx, "failed to build outcome sink", err)
			os.Exit(1)
		}
		ledger = sink
	}

	orchestrator, err := batch.NewOrchestrator(batch.ServiceParams{
		Logger:     logg,
		Metrics:    batchMetrics,
		Client:     portal,
		Aggregator: aggregator,
		Selector:   selector,
		Adjuster:   selection.NewQuantityAdjuster(),
		Filter:     selection.NewOpportunityFilter(),
		Benchmark:  benchmark,
		Lock:       lock,
		Ledger:     ledger,
		Config:     cfg.Batch,
	})
	if err != nil {
		logg.Error(ctx, "failed to build orchestrator", err)
		os.Exit(1)
	}

	start := time.Now()
	outcomes, runErr := orchestrator.Run(ctx, *runKey, parts)
	elapsed := time.Since(start)

	if len(outcomes) > 0 {
		if sink != nil {
			if err := sink.SaveOutcomes(ctx, *runKey, outcomes); err != nil {
				logg.Error(ctx, "failed to persist outcomes", err)
			}
		}

		dir := *outputDir
		if dir == "" {
			dir = cfg.Export.OutputDir
		}
		resultsPath := filepath.Join(dir, fmt.Sprintf("rfq_%s_results.xlsx", *runKey))
		if err := report.WriteWorkbook(resultsPath, *runKey, outcomes); err != nil {
			logg.Error(ctx, "failed to export results workbook", err)
		} else {
			logg.Info(logg.WithField(ctx, "path", resultsPath), "results workbook written")
		}
	}

	reporter, err := report.NewReporter(report.ReporterParams{})
	if err != nil {
		logg.Error(ctx, "failed to build reporter", err)
		os.Exit(1)
	}
	summary := reporter.Summarize(*runKey, outcomes, elapsed)
	summaryCtx := logg.WithFields(ctx, map[string]any{
		"parts":        summary.TotalParts,
		"sent":         summary.Sent,
		"failed":       summary.Failed,
		"omitted":      summary.Omitted,
		"no_suppliers": summary.NoSuppliers,
		"skipped":      summary.Skipped,
		"duration_ms":  summary.TotalDuration.Milliseconds(),
	})
	logg.Info(summaryCtx, "batch run complete")
	for _, supplier := range summary.TopSuppliers {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"supplier": supplier.Supplier,
			"count":    supplier.Count,
			"percent":  supplier.Percent,
		}), "top supplier")
	}

	if runErr != nil {
		logg.Error(ctx, "batch run failed", runErr)
		os.Exit(1)
	}
}

func loadParts(ctx context.Context, cfg *config.Config, dbClient *db.Client, inputPath, runKey string) ([]requests.PartRequest, error) {
	if inputPath != "" {
		return requests.LoadWorkbook(inputPath)
	}
	if dbClient == nil {
		return nil, fmt.Errorf("no input workbook and no database configured")
	}
	repo, err := requests.NewRepository(dbClient.DB())
	if err != nil {
		return nil, err
	}
	return repo.ListByRunKey(ctx, runKey)
}

// dbPinger avoids handing the router a typed nil when no database is
// configured.
func dbPinger(client *db.Client) db.Pinger {
	if client == nil {
		return nil
	}
	return client
}
