package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// GormMediaRepository implements MediaRepository using GORM
type GormMediaRepository struct {
	db *gorm.DB
}

// NewGormMediaRepository creates a new GormMediaRepository
func NewGormMediaRepository(db *gorm.DB) *GormMediaRepository {
	return &GormMediaRepository{db: db}
}

// ClearCollections removes every asset of the product in the given collections
func (r *GormMediaRepository) ClearCollections(ctx context.Context, productID uuid.UUID, collections ...catalog.MediaCollection) error {
	if len(collections) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("product_id = ? AND collection IN ?", productID, collections).
		Delete(&catalog.MediaAsset{}).Error
}

// Save persists a media asset row
func (r *GormMediaRepository) Save(ctx context.Context, asset *catalog.MediaAsset) error {
	return r.db.WithContext(ctx).Create(asset).Error
}

// FindByProduct returns the product's assets ordered by collection and position
func (r *GormMediaRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]catalog.MediaAsset, error) {
	var assets []catalog.MediaAsset
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("collection ASC, position ASC").
		Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

// Ensure GormMediaRepository implements MediaRepository
var _ catalog.MediaRepository = (*GormMediaRepository)(nil)
