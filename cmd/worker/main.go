// Command worker runs the catalog import and media consumers, the deferred
// ERP publish consumer, the domain event listeners, and the operator HTTP
// endpoint.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	apperpsync "github.com/storefront/backend/internal/application/erpsync"
	"github.com/storefront/backend/internal/application/ingest"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/media"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/queue"
	opshttp "github.com/storefront/backend/internal/interfaces/http"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

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

	log.Info("starting worker",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
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

	store := persistence.NewGormStore(db.DB)
	q := queue.NewRedisQueue(redisClient)

	storage, err := media.NewS3ObjectStorage(&cfg.Storage, log)
	if err != nil {
		log.Fatal("failed to initialize object storage", zap.Error(err))
	}
	if err := storage.EnsureBucket(ctx); err != nil {
		log.Fatal("failed to ensure storage bucket", zap.Error(err))
	}
	downloader := media.NewDownloader(
		cfg.Media.DownloadTimeout,
		cfg.Media.RatePerSecond,
		cfg.Media.RateBurst,
		cfg.Media.MaxDownloadBytes,
	)

	// Outbound ERP wiring: domain events published on the in-process bus are
	// fanned out to the durable ERP queues through the publish lane.
	directPublisher := apperpsync.NewRedisOutboundPublisher(q)
	queuedPublisher := apperpsync.NewQueuedPublisher(q, cfg.Queue.ERPMaxAttempts)
	queues := apperpsync.QueueNames{
		Events: cfg.ERP.EventsQueue,
		Orders: cfg.ERP.OrdersQueue,
		Users:  cfg.ERP.UsersQueue,
	}
	users := persistence.NewGormUserRepository(db.DB)
	companies := persistence.NewGormCompanyRepository(db.DB)
	orders := persistence.NewGormOrderRepository(db.DB)

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(apperpsync.NewCompanyListener(companies, users, queuedPublisher, queues, log))
	bus.Subscribe(apperpsync.NewOrderListener(orders, queuedPublisher, queues, log))
	bus.Subscribe(apperpsync.NewUserListener(users, queuedPublisher, queues, log))
	if err := bus.Start(ctx); err != nil {
		log.Fatal("failed to start event bus", zap.Error(err))
	}

	importConsumer := queue.NewConsumer(q,
		ingest.NewProductImportHandler(store, q,
			cfg.Queue.ImportMaxAttempts, cfg.Queue.ImportTimeout,
			cfg.Queue.MediaMaxAttempts, log),
		cfg.Queue.ImportWorkers, log)
	mediaConsumer := queue.NewConsumer(q,
		ingest.NewMediaSyncHandler(store, downloader, storage,
			cfg.Queue.MediaMaxAttempts, cfg.Queue.MediaTimeout, cfg.Queue.MediaBackoff, log),
		cfg.Queue.MediaWorkers, log)
	publishConsumer := queue.NewConsumer(q,
		apperpsync.NewPublishJobHandler(directPublisher,
			cfg.Queue.ERPMaxAttempts, cfg.Queue.ERPBackoff, log),
		1, log)

	importConsumer.Start(ctx)
	mediaConsumer.Start(ctx)
	publishConsumer.Start(ctx)

	var opsServer *http.Server
	if cfg.Ops.Enabled {
		if cfg.App.Env == "production" {
			gin.SetMode(gin.ReleaseMode)
		}
		engine := gin.New()
		engine.Use(gin.Recovery())
		handler := opshttp.NewOpsHandler(db, queue.NewInspector(redisClient), []string{
			ingest.LaneImport,
			ingest.LaneMedia,
			apperpsync.LanePublish,
			cfg.ERP.IncomingQueue,
		}, log)
		handler.RegisterRoutes(engine)

		opsServer = &http.Server{Addr: ":" + cfg.Ops.Port, Handler: engine}
		go func() {
			log.Info("ops endpoint listening", zap.String("port", cfg.Ops.Port))
			if err := opsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("ops endpoint failed", zap.Error(err))
			}
		}()
	}

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if opsServer != nil {
		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			log.Error("ops endpoint shutdown failed", zap.Error(err))
		}
	}
	for _, c := range []*queue.Consumer{importConsumer, mediaConsumer, publishConsumer} {
		if err := c.Stop(shutdownCtx); err != nil {
			log.Error("consumer shutdown failed", zap.Error(err))
		}
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Error("event bus shutdown failed", zap.Error(err))
	}

	log.Info("worker stopped")
	os.Exit(0)
}
