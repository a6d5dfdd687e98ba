package ingest

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/infrastructure/feed"
	"github.com/storefront/backend/internal/infrastructure/queue"
	"go.uber.org/zap"
)

const progressEvery = 100

// Fetcher retrieves the feed document
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// Enqueuer pushes messages onto a queue lane
type Enqueuer interface {
	Enqueue(ctx context.Context, msg *queue.Message) error
}

// ImportSummary reports one feed run
type ImportSummary struct {
	Items    int
	Enqueued int
	Elapsed  time.Duration
}

// FeedImportService fetches the vendor feed and fans it out onto the
// catalog-import lane. Items are enqueued as they are decoded, so importer
// workers start before the document is fully parsed. A fetch or XML failure
// aborts the whole run; there is no partial retry at this layer.
type FeedImportService struct {
	fetcher        Fetcher
	queue          Enqueuer
	importAttempts int
	logger         *zap.Logger
}

// NewFeedImportService creates a feed import service
func NewFeedImportService(fetcher Fetcher, q Enqueuer, importAttempts int, logger *zap.Logger) *FeedImportService {
	return &FeedImportService{
		fetcher:        fetcher,
		queue:          q,
		importAttempts: importAttempts,
		logger:         logger.Named("feed-import"),
	}
}

// Run fetches the feed at url and enqueues one import message per item.
// Zero items is a valid terminal case, not an error.
func (s *FeedImportService) Run(ctx context.Context, url string, skipMedia bool) (*ImportSummary, error) {
	start := time.Now()

	body, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	enqueued := 0
	count, err := feed.Decompose(body, func(item *catalog.CatalogItemPayload) error {
		msg, err := queue.NewMessage(LaneImport, s.importAttempts, ImportJob{
			Item:      item,
			SkipMedia: skipMedia,
		})
		if err != nil {
			return fmt.Errorf("build import message: %w", err)
		}
		if err := s.queue.Enqueue(ctx, msg); err != nil {
			return fmt.Errorf("enqueue import message: %w", err)
		}
		enqueued++
		if enqueued%progressEvery == 0 {
			s.logger.Info("feed import progress", zap.Int("enqueued", enqueued))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary := &ImportSummary{
		Items:    count,
		Enqueued: enqueued,
		Elapsed:  time.Since(start),
	}
	s.logger.Info("feed import dispatched",
		zap.Int("items", summary.Items),
		zap.Int("enqueued", summary.Enqueued),
		zap.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}
