// cmd/checklist-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"checklist-engine/internal/catalog"
	"checklist-engine/internal/common/aws"
	"checklist-engine/internal/common/config"
	"checklist-engine/internal/common/database"
	"checklist-engine/internal/common/logger"
	"checklist-engine/internal/engine/execution"
	"checklist-engine/internal/server"
	"checklist-engine/internal/sink"
	"checklist-engine/internal/storage"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting checklist server...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry (catalog cache; optional) ---
	var catalogCache *database.RedisClient
	if cfg.Engine.CatalogCacheTTLSec > 0 {
		err = retryWithBackoff(func() error {
			var err error
			catalogCache, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return catalogCache.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer catalogCache.Close()
		zapLog.Info("Redis connected successfully")
	} else {
		zapLog.Info("Catalog cache disabled")
	}

	// --- Incident sinks ---
	var sinks sink.Multi
	if cfg.Sink.Elasticsearch.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		sinks = append(sinks, sink.NewElasticsearchSink(esClient.Client, cfg.Sink.Elasticsearch.Index))
		zapLog.Info("Elasticsearch incident sink enabled", zap.String("index", cfg.Sink.Elasticsearch.Index))
	}

	if cfg.Sink.SNS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Sink.SNS.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		sinks = append(sinks, sink.NewSNSSink(snsClient, cfg.Sink.SNS.TopicARN))
		zapLog.Info("SNS incident sink enabled", zap.String("topic", cfg.Sink.SNS.TopicARN))
	}

	var incidentSink sink.Sink = sink.Noop{}
	if len(sinks) > 0 {
		incidentSink = sinks
	}

	// --- Engine wiring ---
	var cacheClient *redis.Client
	if catalogCache != nil {
		cacheClient = catalogCache.Client
	}
	catalogStore := catalog.NewPostgresStore(
		pg.DB,
		cacheClient,
		time.Duration(cfg.Engine.CatalogCacheTTLSec)*time.Second,
		log,
	)
	executionStore := storage.NewPostgresExecutionStore(pg.DB, log)

	orchestrator := execution.New(execution.Dependencies{
		Catalog:          catalogStore,
		Store:            executionStore,
		Sink:             incidentSink,
		Logger:           log,
		DefaultThreshold: cfg.Engine.DefaultThreshold,
	})

	// --- HTTP Server ---
	mux := http.NewServeMux()
	server.NewHandler(orchestrator, log).Register(mux)
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining connections...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Checklist server stopped gracefully")
}
