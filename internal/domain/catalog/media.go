package catalog

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// MediaCollection names one of the product media collections managed by the
// media synchronizer.
type MediaCollection string

const (
	MediaCollectionMain       MediaCollection = "main"
	MediaCollectionAdditional MediaCollection = "additional"
	MediaCollectionVideo      MediaCollection = "video"
)

// MediaAsset records one downloaded-and-stored media file attached to a
// product.
type MediaAsset struct {
	shared.BaseEntity
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_media_product_collection,priority:1"`
	Collection  MediaCollection `gorm:"type:varchar(16);not null;index:idx_media_product_collection,priority:2"`
	SourceURL   string          `gorm:"type:varchar(1000);not null"`
	StorageKey  string          `gorm:"type:varchar(500);not null"`
	ContentType string          `gorm:"type:varchar(128)"`
	Position    int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (MediaAsset) TableName() string {
	return "media_assets"
}

// NewMediaAsset creates a media asset row.
func NewMediaAsset(productID uuid.UUID, collection MediaCollection, sourceURL, storageKey, contentType string, position int) *MediaAsset {
	return &MediaAsset{
		BaseEntity:  shared.NewBaseEntity(),
		ProductID:   productID,
		Collection:  collection,
		SourceURL:   sourceURL,
		StorageKey:  storageKey,
		ContentType: contentType,
		Position:    position,
	}
}
