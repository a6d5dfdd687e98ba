package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/infrastructure/media"
	"github.com/storefront/backend/internal/infrastructure/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeDownloader struct {
	failing map[string]bool
}

func (d *fakeDownloader) Download(_ context.Context, url string) (*media.Downloaded, error) {
	if d.failing[url] {
		return nil, errors.New("connection reset")
	}
	return &media.Downloaded{Body: []byte("bytes"), ContentType: "image/jpeg"}, nil
}

type fakeStorage struct {
	uploads map[string]string
	fail    bool
}

func (s *fakeStorage) Upload(_ context.Context, storageKey string, _ []byte, contentType string) error {
	if s.fail {
		return errors.New("storage unavailable")
	}
	if s.uploads == nil {
		s.uploads = map[string]string{}
	}
	s.uploads[storageKey] = contentType
	return nil
}

func newMediaHandler(store catalog.Store, d Downloader, s ObjectStorage) *MediaSyncHandler {
	return NewMediaSyncHandler(store, d, s, 2, time.Minute, time.Second, zap.NewNop())
}

func mediaMessage(t *testing.T, job MediaJob) *queue.Message {
	t.Helper()
	msg, err := queue.NewMessage(LaneMedia, 2, job)
	require.NoError(t, err)
	return msg
}

func seedMediaProduct(t *testing.T, db *gorm.DB) *catalog.Product {
	t.Helper()
	product := catalog.ProductFromPayload(&catalog.CatalogItemPayload{
		ExternalID: "EXT-MEDIA",
		Name:       "With media",
	})
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestMediaSyncHandler_RebuildsCollections(t *testing.T) {
	db, store := setupStore(t)
	product := seedMediaProduct(t, db)

	// A stale asset from a previous sync must not survive
	stale := catalog.NewMediaAsset(product.ID, catalog.MediaCollectionMain,
		"https://cdn.example.com/old.jpg", "products/old.jpg", "image/jpeg", 0)
	require.NoError(t, db.Create(stale).Error)

	storage := &fakeStorage{}
	handler := newMediaHandler(store, &fakeDownloader{}, storage)

	item := &catalog.CatalogItemPayload{
		ExternalID:       "EXT-MEDIA",
		MainImage:        "https://cdn.example.com/main.jpg",
		AdditionalImages: []string{"https://cdn.example.com/a-0.jpg", "https://cdn.example.com/a-1.jpg"},
		Videos:           []string{"https://cdn.example.com/v.mp4"},
	}
	require.NoError(t, handler.Handle(context.Background(),
		mediaMessage(t, MediaJob{ProductID: product.ID, Item: item})))

	assets, err := store.Media().FindByProduct(context.Background(), product.ID)
	require.NoError(t, err)
	require.Len(t, assets, 4)

	byCollection := map[catalog.MediaCollection]int{}
	for _, a := range assets {
		byCollection[a.Collection]++
		assert.NotEqual(t, "https://cdn.example.com/old.jpg", a.SourceURL)
	}
	assert.Equal(t, 1, byCollection[catalog.MediaCollectionMain])
	assert.Equal(t, 2, byCollection[catalog.MediaCollectionAdditional])
	assert.Equal(t, 1, byCollection[catalog.MediaCollectionVideo])
	assert.Len(t, storage.uploads, 4)
}

func TestMediaSyncHandler_BrokenURLIsSkipped(t *testing.T) {
	db, store := setupStore(t)
	product := seedMediaProduct(t, db)

	downloader := &fakeDownloader{failing: map[string]bool{
		"https://cdn.example.com/a-0.jpg": true,
	}}
	handler := newMediaHandler(store, downloader, &fakeStorage{})

	item := &catalog.CatalogItemPayload{
		MainImage:        "https://cdn.example.com/main.jpg",
		AdditionalImages: []string{"https://cdn.example.com/a-0.jpg", "https://cdn.example.com/a-1.jpg"},
	}
	require.NoError(t, handler.Handle(context.Background(),
		mediaMessage(t, MediaJob{ProductID: product.ID, Item: item})))

	assets, err := store.Media().FindByProduct(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Len(t, assets, 2)
}

func TestMediaSyncHandler_ProductGoneIsNoOp(t *testing.T) {
	_, store := setupStore(t)
	handler := newMediaHandler(store, &fakeDownloader{}, &fakeStorage{})

	err := handler.Handle(context.Background(), mediaMessage(t, MediaJob{
		ProductID: uuid.New(),
		Item:      &catalog.CatalogItemPayload{MainImage: "https://cdn.example.com/main.jpg"},
	}))
	assert.NoError(t, err)
}

func TestMediaSyncHandler_PoisonPayload(t *testing.T) {
	_, store := setupStore(t)
	handler := newMediaHandler(store, &fakeDownloader{}, &fakeStorage{})

	msg := &queue.Message{ID: "m-1", Lane: LaneMedia, Payload: json.RawMessage(`{"item": "nope"}`)}
	err := handler.Handle(context.Background(), msg)
	require.Error(t, err)
	assert.True(t, queue.IsFatal(err))
}

func TestStorageKey(t *testing.T) {
	productID := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	key := storageKey(productID, catalog.MediaCollectionAdditional, 2,
		"https://cdn.example.com/photo.JPG?size=large", "image/jpeg")
	assert.Equal(t, "products/6ba7b810-9dad-11d1-80b4-00c04fd430c8/additional/2.jpg", key)

	// Extension falls back to the content type when the URL has none
	key = storageKey(productID, catalog.MediaCollectionMain, 0,
		"https://cdn.example.com/photo", "image/png")
	assert.Equal(t, "products/6ba7b810-9dad-11d1-80b4-00c04fd430c8/main/0.png", key)
}
