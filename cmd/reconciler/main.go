package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/magabrotheeeer/studyplan-access/internal/cache"
	"github.com/magabrotheeeer/studyplan-access/internal/config"
	"github.com/magabrotheeeer/studyplan-access/internal/lib/sl"
	"github.com/magabrotheeeer/studyplan-access/internal/policy"
	"github.com/magabrotheeeer/studyplan-access/internal/rabbitmq"
	services "github.com/magabrotheeeer/studyplan-access/internal/services/reconciler"
	"github.com/magabrotheeeer/studyplan-access/internal/storage/repository"
)

func waitForDB(db *repository.Storage) error {
	for i := 0; i < 10; i++ {
		err := repository.CheckDatabaseReady(db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("starting reconciler", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("success to connect to RabbitMQ", slog.String("URL", cfg.RabbitMQURL))
	defer func() {
		_ = conn.Close()
	}()

	queues := rabbitmq.GetLifecycleQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		logger.Error("failed to setup RabbitMQ channel", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("success to setup RabbitMQ channel")
	defer func() {
		_ = ch.Close()
	}()

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		logger.Error("failed to connect to storage", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = db.DB.Close()
	}()
	if err = waitForDB(db); err != nil {
		logger.Error("database is not ready", sl.Err(err))
		os.Exit(1)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		logger.Error("cache not initialized", sl.Err(err))
		os.Exit(1)
	}

	policyLoader := policy.NewLoader(db, cacheRedis, logger)
	publisher := &rabbitmq.ChannelPublisher{Ch: ch}
	reconcilerService := services.New(db, policyLoader, publisher, logger)

	reconcilerService.Run(ctx, cfg.ReconcileInterval)

	logger.Info("reconciler stopped gracefully")
}
