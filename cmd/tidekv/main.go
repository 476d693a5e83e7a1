// Command tidekv runs the in-memory key-value server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tidekv/engine/internal/api"
	httpapi "github.com/tidekv/engine/internal/api/http"
	"github.com/tidekv/engine/internal/api/http/handlers"
	"github.com/tidekv/engine/internal/api/validation"
	"github.com/tidekv/engine/internal/config"
	"github.com/tidekv/engine/internal/logger"
	"github.com/tidekv/engine/internal/metrics"
	"github.com/tidekv/engine/internal/storage"
	"github.com/tidekv/engine/internal/tracing"
	"github.com/tidekv/engine/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run starts every component, blocks until ctx is done, then shuts down in
// reverse start order
func run(ctx context.Context, args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	if err := logger.Init(&logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		Rotation:   cfg.Logging.Rotation,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.WithComponent("main")

	info := version.Get()
	log.Info().
		Str("version", info.Version).
		Str("commit", info.GitCommit).
		Str("http_addr", cfg.Server.HTTPAddr).
		Bool("grpc_enabled", cfg.Server.GRPCEnabled).
		Bool("metrics_enabled", cfg.Metrics.Enabled).
		Msg("Starting tidekv")

	tracingConfig := tracing.DefaultTracingConfig()
	tracingConfig.Enabled = cfg.Metrics.TracingEnabled
	tracingConfig.ServiceVersion = info.Version
	tracingConfig.Endpoint = cfg.Metrics.TracingEndpoint
	tracingConfig.ExporterType = cfg.Metrics.TracingExporter
	tracingConfig.Insecure = cfg.Metrics.TracingInsecure
	tracingConfig.SamplingRatio = cfg.Metrics.TracingSamplingRatio
	tracer, err := tracing.NewProvider(tracingConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	var (
		storeMetrics  *metrics.StoreMetrics
		apiMetrics    *metrics.APIMetrics
		metricsServer *metrics.Server
	)
	if cfg.Metrics.Enabled {
		collector := metrics.NewCollector().WithRuntimeMetrics()
		storeMetrics = metrics.NewStoreMetrics(collector)
		apiMetrics = metrics.NewAPIMetrics(collector)
		metricsServer = metrics.NewServer(cfg.Metrics.Addr, cfg.Metrics.Path, collector.GetRegistry())
	}

	schema, err := validation.LoadValueSchema(cfg.Store.ValueSchemaFile)
	if err != nil {
		return err
	}

	backend, err := storage.NewBuilder().
		WithConfig(&storage.Config{
			ReclaimMaxIdle: cfg.Store.ReclaimMaxIdle,
			EnableMetrics:  cfg.Metrics.Enabled,
		}).
		WithMetrics(storeMetrics).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build storage: %w", err)
	}

	server := api.NewServer(api.Config{
		HTTPAddr:    cfg.Server.HTTPAddr,
		GRPCAddr:    cfg.Server.GRPCAddr,
		GRPCEnabled: cfg.Server.GRPCEnabled,
		HTTP: httpapi.ServerOptions{
			RouterOptions: httpapi.RouterOptions{
				KV: handlers.KVOptions{
					MaxValueSize: int(cfg.Store.MaxValueSize),
					Schema:       schema,
				},
				Metrics: apiMetrics,
			},
			ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		},
	}, backend)

	if metricsServer != nil {
		if err := metricsServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
	}

	// The reclaimer outlives ctx; it is stopped explicitly below
	if err := server.Start(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	log.Info().
		Str("http_addr", server.HTTPAddr()).
		Str("grpc_addr", server.GRPCAddr()).
		Msg("tidekv started")

	<-ctx.Done()
	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := server.Stop(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}
	if metricsServer != nil {
		if err := metricsServer.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server: %w", err))
		}
	}
	if err := tracer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("tracing: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		log.Error().Err(err).Msg("Shutdown completed with errors")
		return err
	}

	log.Info().Msg("tidekv stopped")
	return nil
}
