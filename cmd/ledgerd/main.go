package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"kolangkoding.com/tradeledger/internal/common/streaming"
	"kolangkoding.com/tradeledger/internal/config"
	"kolangkoding.com/tradeledger/internal/httpapi"
	"kolangkoding.com/tradeledger/internal/ingest"
	"kolangkoding.com/tradeledger/internal/ledger"
	"kolangkoding.com/tradeledger/internal/logging"
	"kolangkoding.com/tradeledger/internal/notify"
	"kolangkoding.com/tradeledger/internal/relay"
	"kolangkoding.com/tradeledger/internal/store"
)

func main() {
	configPath := flag.String("config", "ledger.yaml", "Path to the YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log, cfg.IsProduction())
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Error("ledgerd stopped with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("✅ graceful shutdown completed")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := store.Open(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn("failed to close store", zap.Error(err))
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	bus := notify.NewBus(logger.Named("notify"))
	defer bus.Close()

	l := ledger.New(
		ledger.WithStore(backend),
		ledger.WithNotifier(bus),
		ledger.WithLogger(logger),
		ledger.WithRegisterer(registry),
	)
	if err := l.Restore(ctx); err != nil {
		return fmt.Errorf("failed to restore ledger: %w", err)
	}

	server := httpapi.NewServer(cfg.HTTP, l, bus, registry, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(server.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down http server")
		return server.Shutdown(shutdownCtx)
	})

	if cfg.Kafka.Enabled {
		if err := startKafka(gctx, g, cfg.Kafka, l, bus, logger); err != nil {
			stop()
			_ = g.Wait()
			return err
		}
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// startKafka runs the submission consumer and the TradeRecorded relay in g.
func startKafka(
	ctx context.Context,
	g *errgroup.Group,
	cfg config.KafkaConfig,
	l *ledger.Ledger,
	bus *notify.Bus,
	logger *zap.Logger,
) error {
	producer, err := streaming.NewProducer(
		streaming.WithBrokers(cfg.Brokers...),
		streaming.WithClientID(cfg.ClientID+"-relay"),
		streaming.WithRetries(5),
	)
	if err != nil {
		return fmt.Errorf("failed to create event producer: %w", err)
	}

	submissions, err := ingest.New(cfg, l, logger)
	if err != nil {
		producer.Close()
		return err
	}

	r := relay.New(bus, producer, cfg.EventsTopic,
		relay.StartAfter(l.Sequence()),
		relay.WithLogger(logger))

	g.Go(func() error {
		defer producer.Close()
		return r.Run(ctx)
	})
	g.Go(func() error {
		defer submissions.Close()
		return submissions.Run(ctx)
	})

	logger.Info("kafka enabled",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("submissions_topic", cfg.SubmissionsTopic),
		zap.String("events_topic", cfg.EventsTopic))
	return nil
}
