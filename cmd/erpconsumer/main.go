// Command erpconsumer is the long-running inbound ERP consumer. It drains
// the erp_incoming queue with a single worker, one message at a time, and
// routes recognized documents to internal update jobs.
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	apperpsync "github.com/storefront/backend/internal/application/erpsync"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/queue"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting erp consumer",
		zap.String("app", cfg.App.Name),
		zap.String("queue", cfg.ERP.IncomingQueue),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}

	userUpdates := apperpsync.NewUserUpdateService(persistence.NewGormUserRepository(db.DB), log)
	router := apperpsync.NewInboundRouter(cfg.ERP.IncomingQueue, userUpdates, log)

	// One worker: strict one-message-at-a-time processing keeps ordering
	// simple for a single consumer instance.
	consumer := queue.NewConsumer(queue.NewRedisQueue(redisClient), router, 1, log)
	consumer.Start(ctx)

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := consumer.Stop(shutdownCtx); err != nil {
		log.Error("consumer shutdown failed", zap.Error(err))
	}
	log.Info("erp consumer stopped")
}
