package ingest

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/media"
	"github.com/storefront/backend/internal/infrastructure/queue"
	"go.uber.org/zap"
)

// Downloader fetches one media URL
type Downloader interface {
	Download(ctx context.Context, url string) (*media.Downloaded, error)
}

// ObjectStorage stores downloaded media bytes
type ObjectStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
}

// MediaSyncHandler consumes the catalog-media lane. It rebuilds the three
// media collections of one already-imported product. Each URL is attempted
// independently: one broken URL is logged and skipped, never failing the
// whole job. A product deleted between enqueue and processing is a clean
// no-op.
type MediaSyncHandler struct {
	store       catalog.Store
	downloader  Downloader
	storage     ObjectStorage
	maxAttempts int
	timeout     time.Duration
	backoff     time.Duration
	logger      *zap.Logger
}

// NewMediaSyncHandler creates the media handler
func NewMediaSyncHandler(store catalog.Store, downloader Downloader, storage ObjectStorage, maxAttempts int, timeout, backoff time.Duration, logger *zap.Logger) *MediaSyncHandler {
	return &MediaSyncHandler{
		store:       store,
		downloader:  downloader,
		storage:     storage,
		maxAttempts: maxAttempts,
		timeout:     timeout,
		backoff:     backoff,
		logger:      logger.Named("media-sync"),
	}
}

func (h *MediaSyncHandler) Lane() string           { return LaneMedia }
func (h *MediaSyncHandler) MaxAttempts() int       { return h.maxAttempts }
func (h *MediaSyncHandler) Timeout() time.Duration { return h.timeout }
func (h *MediaSyncHandler) Backoff() time.Duration { return h.backoff }

// Handle synchronizes the media collections of one product
func (h *MediaSyncHandler) Handle(ctx context.Context, msg *queue.Message) error {
	var job MediaJob
	if err := msg.DecodePayload(&job); err != nil {
		return queue.Fatal(fmt.Errorf("decode media payload: %w", err))
	}
	if job.Item == nil {
		return queue.Fatal(errors.New("media payload has no item"))
	}

	product, err := h.store.Products().FindByID(ctx, job.ProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.logger.Info("product gone before media sync, skipping",
				zap.String("product_id", job.ProductID.String()),
			)
			return nil
		}
		return fmt.Errorf("find product %s: %w", job.ProductID, err)
	}

	if err := h.store.Media().ClearCollections(ctx, product.ID,
		catalog.MediaCollectionMain,
		catalog.MediaCollectionAdditional,
		catalog.MediaCollectionVideo,
	); err != nil {
		return fmt.Errorf("clear media collections: %w", err)
	}

	attached := 0
	if job.Item.MainImage != "" {
		attached += h.attach(ctx, product.ID, catalog.MediaCollectionMain, job.Item.MainImage, 0)
	}
	for i, url := range job.Item.AdditionalImages {
		attached += h.attach(ctx, product.ID, catalog.MediaCollectionAdditional, url, i)
	}
	for i, url := range job.Item.Videos {
		attached += h.attach(ctx, product.ID, catalog.MediaCollectionVideo, url, i)
	}

	h.logger.Debug("media synchronized",
		zap.String("product_id", product.ID.String()),
		zap.Int("attached", attached),
	)
	return nil
}

// attach downloads, stores and records one URL. Returns 1 on success, 0 on
// a skipped failure.
func (h *MediaSyncHandler) attach(ctx context.Context, productID uuid.UUID, collection catalog.MediaCollection, url string, position int) int {
	downloaded, err := h.downloader.Download(ctx, url)
	if err != nil {
		h.logger.Warn("media download failed, skipping url",
			zap.String("product_id", productID.String()),
			zap.String("collection", string(collection)),
			zap.String("url", url),
			zap.Error(err),
		)
		return 0
	}

	key := storageKey(productID, collection, position, url, downloaded.ContentType)
	if err := h.storage.Upload(ctx, key, downloaded.Body, downloaded.ContentType); err != nil {
		h.logger.Warn("media upload failed, skipping url",
			zap.String("product_id", productID.String()),
			zap.String("url", url),
			zap.Error(err),
		)
		return 0
	}

	asset := catalog.NewMediaAsset(productID, collection, url, key, downloaded.ContentType, position)
	if err := h.store.Media().Save(ctx, asset); err != nil {
		h.logger.Warn("media record save failed, skipping url",
			zap.String("product_id", productID.String()),
			zap.String("url", url),
			zap.Error(err),
		)
		return 0
	}
	return 1
}

// storageKey builds a stable object key from the product, collection and
// position, with the extension taken from the URL or the content type.
func storageKey(productID uuid.UUID, collection catalog.MediaCollection, position int, url, contentType string) string {
	ext := strings.ToLower(path.Ext(strings.SplitN(path.Base(url), "?", 2)[0]))
	if ext == "" {
		if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}
	return fmt.Sprintf("products/%s/%s/%d%s", productID, collection, position, ext)
}

// Ensure MediaSyncHandler implements queue.Handler
var _ queue.Handler = (*MediaSyncHandler)(nil)
