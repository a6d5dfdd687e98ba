package ingest

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
)

// Queue lanes of the ingestion pipeline. Import and media are independent
// backpressure domains: a media backlog never blocks product import.
const (
	LaneImport = "catalog-import"
	LaneMedia  = "catalog-media"
)

// ImportJob is the payload of one catalog-import message.
type ImportJob struct {
	Item      *catalog.CatalogItemPayload `json:"item"`
	SkipMedia bool                        `json:"skip_media"`
}

// MediaJob is the payload of one catalog-media message. It carries the
// committed product ID together with the original feed item, so the media
// step never re-reads the feed.
type MediaJob struct {
	ProductID uuid.UUID                   `json:"product_id"`
	Item      *catalog.CatalogItemPayload `json:"item"`
}
