package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/companydir/internal/company/config"
	"github.com/gartstein/companydir/internal/company/controller"
	"github.com/gartstein/companydir/internal/company/db"
	"github.com/gartstein/companydir/internal/company/events"
	"github.com/gartstein/companydir/internal/company/handlers"
	"github.com/gartstein/companydir/internal/company/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger level comes from config, so fall back to defaults here.
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	logger := initLogger(cfg.LogLevel)
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	store, err := openStore(cfg.StoreURI, logger)
	if err != nil {
		logger.Fatal("failed to initialize store", zap.Error(err))
	}
	defer store.Close()

	producer := initProducer(cfg, logger)
	defer producer.Close()

	companySvc := controller.NewCompanyService(store, producer, validation.New(), logger)

	// Create handlers
	companyHandler := handlers.NewCompanyHandler(companySvc, logger)
	router := handlers.NewRouter(companyHandler, handlers.RouterOptions{
		CORSOrigins: cfg.CORSOrigins,
		Pinger:      store,
	})

	// Create server
	server := handlers.NewServer(cfg.HTTPPort, cfg.GRPCPort, logger)
	server.RegisterHTTPHandler(router)
	server.RegisterHealth(store)

	// Start servers
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	waitForShutdown(server, errCh, logger)
}

// initLogger initializes a Zap production logger at the given level.
func initLogger(level string) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	lvl, parseErr := zapcore.ParseLevel(level)
	if parseErr != nil {
		lvl = zapcore.InfoLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := zcfg.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	if parseErr != nil {
		logger.Warn("unknown LOG_LEVEL, using info", zap.String("level", level))
	}
	return logger
}

// openStore connects to the document store, retrying while it comes up.
func openStore(uri string, logger *zap.Logger) (db.Store, error) {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 30 * time.Second

	var store db.Store
	err := backoff.RetryNotify(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s, err := db.Open(ctx, uri)
		if errors.Is(err, db.ErrInvalidURI) {
			return backoff.Permanent(err)
		}
		if err != nil {
			return err
		}
		store = s
		return nil
	}, b, func(err error, next time.Duration) {
		logger.Warn("store not ready, retrying", zap.Error(err), zap.Duration("next", next))
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

type closingProducer interface {
	controller.EventProducer
	Close()
}

// initProducer returns a Kafka producer when brokers are configured and a
// no-op producer otherwise.
func initProducer(cfg *config.Config, logger *zap.Logger) closingProducer {
	if !cfg.EventsEnabled() {
		logger.Info("KAFKA_BROKERS not set, change events disabled")
		return events.NopProducer{}
	}
	producer, err := events.NewProducer(cfg.KafkaBrokers, logger, cfg.KafkaTopic)
	if err != nil {
		logger.Fatal("failed to initialize Kafka producer", zap.Error(err))
	}
	return producer
}

// waitForShutdown blocks until an interrupt or SIGTERM is received, or a
// server fails, then shuts down servers.
func waitForShutdown(server *handlers.Server, errCh <-chan error, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case <-stop:
		server.Stop()
		logger.Info("Servers stopped properly")
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", zap.Error(err))
		}
	}
}
