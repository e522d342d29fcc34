// cmd/inventory-server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"inventory-assistant/internal/api"
	"inventory-assistant/internal/common/aws"
	"inventory-assistant/internal/common/config"
	"inventory-assistant/internal/common/database"
	"inventory-assistant/internal/common/logger"
	"inventory-assistant/internal/common/observability"
	"inventory-assistant/internal/common/validation"
	"inventory-assistant/internal/history"
	"inventory-assistant/internal/interpreter"
	"inventory-assistant/internal/notify"
	"inventory-assistant/internal/repository"
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
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "console").Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting inventory server...", zap.String("environment", cfg.App.Environment))

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("observability setup failed", zap.Error(err))
	}

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	// The pool is opened once; only the first connection is retried.
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres open failed", zap.Error(err))
	}
	defer pg.Close()

	err = retryWithBackoff(func() error {
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	if err := database.EnsureSchema(ctx, pg.DB); err != nil {
		zapLog.Fatal("schema setup failed", zap.Error(err))
	}

	// --- Init Redis with retry ---
	redis := database.NewRedis(cfg.Database.Redis)
	err = retryWithBackoff(func() error {
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Low-stock alerts ---
	var notifier notify.Notifier = notify.NoopNotifier{}
	if sns := cfg.Notifications.SNS; sns.Enabled {
		client, err := aws.NewSNSClient(ctx, sns.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		notifier = notify.NewSNSNotifier(client, sns.TopicARN, log)
		zapLog.Info("Low stock alerts enabled", zap.String("topicArn", sns.TopicARN))
	}

	// --- Interpreter ---
	icfg, err := interpreter.LoadConfig(cfg.Commands)
	if err != nil {
		zapLog.Fatal("interpreter config failed", zap.Error(err))
	}

	repo := repository.NewPostgresRepository(pg.DB)
	store := history.NewRedisStore(redis.Client, cfg.Commands.HistorySize, time.Duration(cfg.Commands.HistoryTTL)*time.Second)
	executor := interpreter.NewExecutor(repo, notifier, icfg, log.Named("executor"))
	interp := interpreter.New(icfg, executor, log.Named("interpreter"),
		interpreter.WithHistory(store),
		interpreter.WithObservability(obs),
	)

	validator, err := validation.NewValidator()
	if err != nil {
		zapLog.Fatal("request schemas failed to compile", zap.Error(err))
	}

	server := api.NewServer(api.Deps{
		Interpreter:         interp,
		Executor:            executor,
		Validator:           validator,
		History:             store,
		Logger:              log,
		DefaultUnit:         cfg.Commands.DefaultUnit,
		DefaultLowThreshold: cfg.Commands.DefaultLowThreshold,
		Checkers: []api.Checker{
			{Name: "postgres", Check: pg.Ping},
			{Name: "redis", Check: redis.Ping},
		},
		RequestTimeout: config.GetDuration(cfg.Server.RequestTimeout),
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      server.Handler(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	// --- Serve until SIGINT/SIGTERM ---
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zapLog.Info("Shutdown signal received, draining requests...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			zapLog.Error("Error shutting down HTTP server", zap.Error(err))
		}
		if err := obs.Shutdown(shutdownCtx); err != nil {
			zapLog.Error("Error shutting down observability", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		zapLog.Error("Inventory server exited with error", zap.Error(err))
	}

	zapLog.Info("Inventory server stopped gracefully")
}
