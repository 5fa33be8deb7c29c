// Package main provides the entry point for the job search index synchronizer.
//
// The process consumes job post lifecycle events and mirrors them into the
// search index. It exits with an error when an index write fails so that a
// supervisor restarts it and the uncommitted message is redelivered.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/helixir/job-board-service/internal/config"
	"github.com/helixir/job-board-service/internal/domain"
	"github.com/helixir/job-board-service/internal/indexer"
	"github.com/helixir/job-board-service/internal/observability"
	"github.com/helixir/job-board-service/internal/search"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "indexer").Logger()
	logger.Info().Msg("job search indexer starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(cfg.Metrics.Namespace, nil)
	}

	esClient, err := search.NewElasticClient(cfg.Elasticsearch)
	if err != nil {
		return err
	}
	engine, err := search.NewElasticEngine(esClient)
	if err != nil {
		return fmt.Errorf("create search engine: %w", err)
	}
	gateway := search.NewGateway(engine, logger, search.WithMetrics[domain.JobPostDTO](metrics))

	reader := indexer.NewKafkaReader(cfg.Kafka, cfg.Kafka.TopicPrefix)
	consumer := indexer.NewConsumer(
		reader,
		gateway,
		cfg.Kafka.TopicPrefix,
		cfg.Elasticsearch.Index,
		indexer.NewLimiter(cfg.Indexer),
		logger,
		metrics,
	)
	defer func() {
		if err := consumer.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close kafka reader")
		}
	}()

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress(),
			Handler:      metricsMux,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := consumer.Run(gctx)
		// Stop the metrics server as well when the consumer ends on its own.
		stop()
		return err
	})

	if metricsServer != nil {
		g.Go(func() error {
			logger.Info().Str("address", metricsServer.Addr).Msg("metrics server starting")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server error: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("metrics server shutdown error")
			}
			return nil
		})
	}

	logger.Info().
		Strs("topics", indexer.Topics(cfg.Kafka.TopicPrefix)).
		Str("group_id", cfg.Kafka.GroupID).
		Str("index", cfg.Elasticsearch.Index).
		Msg("job search indexer is ready")

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("indexer stopped with error")
		return err
	}

	logger.Info().Msg("job search indexer shutdown complete")
	return nil
}
