// Package main runs the curation analytics engine: the ingest HTTP
// endpoint, the derived-data cascade, the price feed, and the
// scheduled fill, purge and export jobs.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"steem-curation-lab/internal/config"
	"steem-curation-lab/internal/efficiency"
	"steem-curation-lab/internal/engine"
	"steem-curation-lab/internal/export"
	"steem-curation-lab/internal/history"
	"steem-curation-lab/internal/ingestion"
	"steem-curation-lab/internal/logging"
	"steem-curation-lab/internal/observability"
	"steem-curation-lab/internal/percentile"
	"steem-curation-lab/internal/pricefeed"
	"steem-curation-lab/internal/retention"
	chstore "steem-curation-lab/internal/storage/clickhouse"
	"steem-curation-lab/internal/storage/migrations"
	pgstore "steem-curation-lab/internal/storage/postgres"
	"steem-curation-lab/internal/valuation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("engine exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics("")

	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := migrations.RunPostgres(ctx, pool); err != nil {
		return err
	}
	logger.Info("postgres ready")

	accounts := pgstore.NewAccountStore(pool)
	prices := pgstore.NewPriceStore(pool)
	posts := pgstore.NewPostStore(pool)
	votes := pgstore.NewVoteStore(pool)
	authorRewards := pgstore.NewAuthorRewardStore(pool)
	curatorRewards := pgstore.NewCuratorRewardStore(pool)
	beneficiaryRewards := pgstore.NewBeneficiaryRewardStore(pool)
	beneficiaries := pgstore.NewBeneficiaryStore(pool)
	comments := pgstore.NewCommentStore(pool)
	resteems := pgstore.NewResteemStore(pool)
	pendingPercentiles := pgstore.NewPendingPercentileStore(pool)
	pendingVotes := pgstore.NewPendingVoteHistoryStore(pool)
	authorHistories := pgstore.NewAuthorHistoryStore(pool)
	curatorHistories := pgstore.NewCuratorHistoryStore(pool)

	authorAggregator := history.NewAuthorAggregator(posts, authorHistories)
	curatorAggregator := history.NewCuratorAggregator(pendingVotes, curatorRewards, curatorHistories,
		history.CuratorOptions{
			BatchSize:   cfg.StageBatchSize,
			Concurrency: cfg.HistoryConcurrency,
		})
	defer curatorAggregator.Stop()

	eng := engine.New(engine.Options{
		Finalizer: percentile.NewFinalizer(posts, pendingPercentiles),
		Valuation: valuation.NewEngine(posts, prices, authorRewards, curatorRewards, beneficiaryRewards,
			valuation.Options{BatchSize: cfg.StageBatchSize}),
		Efficiency: efficiency.NewCalculator(votes, curatorRewards,
			efficiency.Options{BatchSize: cfg.StageBatchSize}),
		CuratorHistory:         curatorAggregator,
		PendingPercentileStore: pendingPercentiles,
		PendingVoteStore:       pendingVotes,
		Logger:                 logger,
		Metrics:                metrics,
	})

	applier := ingestion.NewApplier(ingestion.ApplierOptions{
		AccountStore:           accounts,
		PriceStore:             prices,
		PostStore:              posts,
		VoteStore:              votes,
		AuthorRewardStore:      authorRewards,
		CuratorRewardStore:     curatorRewards,
		BeneficiaryRewardStore: beneficiaryRewards,
		BeneficiaryStore:       beneficiaries,
		CommentStore:           comments,
		ResteemStore:           resteems,
		PendingPercentileStore: pendingPercentiles,
		PendingVoteStore:       pendingVotes,
		AuthorHistory:          authorAggregator,
	})

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("cascade loop stopped", zap.Error(err))
		}
	}()

	if cfg.PriceFeedURL != "" {
		client := pricefeed.NewClient(cfg.PriceFeedURL, prices, pricefeed.DefaultClientConfig(), logger, metrics)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := client.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("price feed stopped", zap.Error(err))
			}
		}()
	}

	scheduler := cron.New()

	if cfg.PriceHistoryURL != "" {
		filler := pricefeed.NewFiller(pricefeed.FillerOptions{
			PriceStore:             prices,
			AuthorRewardStore:      authorRewards,
			CuratorRewardStore:     curatorRewards,
			BeneficiaryRewardStore: beneficiaryRewards,
			Fetcher:                pricefeed.NewHTTPFetcher(cfg.PriceHistoryURL),
			Logger:                 logger,
			Metrics:                metrics,
		})
		if _, err := scheduler.AddFunc(cfg.PriceFillSchedule, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			if filled, err := filler.Run(jobCtx); err != nil {
				logger.Error("price fill failed", zap.Error(err))
			} else if filled > 0 {
				eng.Nudge()
			}
		}); err != nil {
			return err
		}
	}

	purger := retention.NewPurger(posts, retention.Options{
		LookbackDays: cfg.RetentionDays,
		Logger:       logger,
		Metrics:      metrics,
	})
	if _, err := scheduler.AddFunc(cfg.PurgeSchedule, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := purger.Run(jobCtx); err != nil {
			logger.Error("retention purge failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	if dsn := cfg.ClickHouseDSN(); dsn != "" {
		conn, err := migrations.RunClickhouse(ctx, dsn)
		if err != nil {
			return err
		}
		defer conn.Close()
		logger.Info("clickhouse mirror ready")

		exporter := export.NewExporter(export.Options{
			PostStore:           posts,
			AuthorHistoryStore:  authorHistories,
			CuratorHistoryStore: curatorHistories,
			Mirror:              chstore.NewMirrorStore(conn),
			Logger:              logger,
		})
		if _, err := scheduler.AddFunc(cfg.ExportSchedule, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			if _, err := exporter.Run(jobCtx); err != nil {
				logger.Error("analytics export failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	scheduler.Start()
	defer scheduler.Stop()

	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux()}
	ingestServer := &http.Server{Addr: cfg.IngestAddr, Handler: ingestMux(applier, eng, logger)}
	for _, srv := range []*http.Server{metricsServer, ingestServer} {
		srv := srv
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info("http server listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server failed", zap.String("addr", srv.Addr), zap.Error(err))
				stop()
			}
		}()
	}

	// Drain any work left over from the previous run.
	eng.Nudge()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	for _, srv := range []*http.Server{metricsServer, ingestServer} {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown failed", zap.String("addr", srv.Addr), zap.Error(err))
		}
	}
	wg.Wait()
	return nil
}

func metricsMux() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	return mux
}

func ingestMux(applier *ingestion.Applier, eng *engine.Engine, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/v1/batch", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var batch ingestion.Batch
		if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
			http.Error(w, "invalid batch: "+err.Error(), http.StatusBadRequest)
			return
		}

		result, err := applier.Apply(r.Context(), &batch)
		if err != nil {
			logger.Error("batch apply failed", zap.Error(err))
			http.Error(w, "apply failed", http.StatusInternalServerError)
			return
		}
		eng.Nudge()

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			logger.Warn("encode apply result failed", zap.Error(err))
		}
	})

	return mux
}
