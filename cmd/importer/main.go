// Command importer fetches the vendor feed and dispatches one import job
// per item onto the catalog-import lane.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/application/ingest"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/feed"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/queue"
	"go.uber.org/zap"
)

func main() {
	var (
		feedURL string
		noMedia bool
	)
	flag.StringVar(&feedURL, "url", "", "Override the configured feed URL")
	flag.BoolVar(&noMedia, "no-media", false, "Skip media dispatch for imported products")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if feedURL == "" {
		feedURL = cfg.Feed.URL
	}
	if feedURL == "" {
		fmt.Fprintln(os.Stderr, "no feed URL: pass --url or set feed.url")
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}

	service := ingest.NewFeedImportService(
		feed.NewFetcher(cfg.Feed.FetchTimeout),
		queue.NewRedisQueue(redisClient),
		cfg.Queue.ImportMaxAttempts,
		log,
	)

	fmt.Printf("importing feed from %s\n", feedURL)
	summary, err := service.Run(ctx, feedURL, noMedia)
	if err != nil {
		// A failed fetch or malformed document is terminal for the run but
		// not a crash: report it and exit cleanly.
		log.Error("feed import aborted", zap.Error(err))
		fmt.Printf("feed import aborted: %v\n", err)
		return
	}

	fmt.Printf("dispatched %d of %d items in %s\n", summary.Enqueued, summary.Items, summary.Elapsed.Round(time.Millisecond))
	if summary.Items == 0 {
		fmt.Println("feed contained no items")
	}
}
