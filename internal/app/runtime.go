package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"kvk-connect/internal/common/config"
	"kvk-connect/internal/common/database"
	"kvk-connect/internal/common/logger"
	"kvk-connect/internal/common/observability"
	"kvk-connect/internal/kvk"
	"kvk-connect/internal/service"
	"kvk-connect/internal/store"
)

// Runtime bundles the wired dependencies of one sync binary.
type Runtime struct {
	Cfg    *config.Config
	Logger logger.Logger
	Zap    *zap.Logger
	PG     *database.PostgresClient
	Redis  *database.RedisClient
	ES     *database.ElasticsearchClient
	Client *kvk.Client
	Obs    *observability.Observability
	Guard  *service.FetchGuard
}

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

// NewRuntime loads config, sets up logging and connects the stores the
// binary needs. Redis and Elasticsearch are optional and only connected when
// enabled in config.
func NewRuntime(appName string, debug bool) (*Runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}

	level := cfg.Logging.Level
	if debug {
		level = "debug"
	}
	zapLog := logger.New(level, cfg.Logging.Format)
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{"app": appName})

	rt := &Runtime{
		Cfg:    cfg,
		Logger: log,
		Zap:    zapLog,
		Obs:    observability.New(appName),
	}

	err = retryWithBackoff(func() error {
		var err error
		rt.PG, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return rt.PG.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		return nil, err
	}

	if err := store.EnsureSchema(context.Background(), rt.PG.DB); err != nil {
		rt.Close()
		return nil, err
	}

	if cfg.Database.Redis.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			rt.Redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return rt.Redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			// The guard cache is advisory, the sync can run without it.
			log.Warn("redis unavailable, continuing without fetch guard", map[string]interface{}{
				"error": err.Error(),
			})
			rt.Redis = nil
		}
	}
	if rt.Redis != nil {
		ttl := time.Duration(cfg.Sync.CacheTTL) * time.Minute
		rt.Guard = service.NewFetchGuard(rt.Redis, ttl, log)
	}

	if cfg.Database.Elasticsearch.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			rt.ES, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return rt.ES.Ping()
		}, 10, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			log.Warn("elasticsearch unavailable, continuing without search index", map[string]interface{}{
				"error": err.Error(),
			})
			rt.ES = nil
		}
	}

	rt.Client = kvk.NewClient(cfg.KVK, log)

	log.Info("runtime initialized", map[string]interface{}{
		"registry":   cfg.KVK.BaseURL(),
		"rate_limit": cfg.KVK.RateLimitCalls,
	})
	return rt, nil
}

// Close releases the runtime's connections.
func (rt *Runtime) Close() {
	if rt.Redis != nil {
		rt.Redis.Close()
	}
	if rt.PG != nil {
		rt.PG.Close()
	}
	if rt.Obs != nil {
		rt.Obs.Shutdown()
	}
	rt.Zap.Sync()
}

// Indexer returns the Elasticsearch profile indexer, or nil when search
// mirroring is disabled.
func (rt *Runtime) Indexer() *store.ProfileIndexer {
	if rt.ES == nil {
		return nil
	}
	return store.NewProfileIndexer(rt.ES.Client, rt.Cfg.Database.Elasticsearch.Index, rt.Logger)
}

// ServeMetrics starts the health/metrics listener used in daemon mode.
func (rt *Runtime) ServeMetrics() {
	go func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		mux.Handle("/metrics", promhttp.Handler())

		addr := rt.Cfg.App.MetricsAddr
		rt.Logger.Info("health/metrics server listening", map[string]interface{}{"addr": addr})
		if err := http.ListenAndServe(addr, mux); err != nil {
			rt.Logger.Error("health/metrics server failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()
}
