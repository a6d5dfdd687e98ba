package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// productUpsertColumns are the columns overwritten when an import sees an
// already known external ID. base_price and created_at are deliberately
// absent: price is managed outside the feed and must survive re-imports.
var productUpsertColumns = []string{
	"code",
	"sku",
	"name",
	"slug",
	"url",
	"barcode",
	"brand_id",
	"model_id",
	"description",
	"short_description",
	"composition",
	"is_new",
	"is_marked",
	"is_liquidation",
	"for_marketplaces",
	"updated_at",
}

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Upsert creates the product or overwrites the scalar fields of the existing
// row keyed by external ID, then returns the persisted row (with the ID of
// the pre-existing row when the insert conflicted).
func (r *GormProductRepository) Upsert(ctx context.Context, product *catalog.Product) (*catalog.Product, error) {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns(productUpsertColumns),
		}).
		Create(product).Error; err != nil {
		return nil, err
	}
	return r.FindByExternalID(ctx, product.ExternalID)
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByExternalID finds a product by its vendor external ID
func (r *GormProductRepository) FindByExternalID(ctx context.Context, externalID string) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "external_id = ?", externalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// ReplaceBarcodes deletes every barcode row of the product and inserts the
// given values
func (r *GormProductRepository) ReplaceBarcodes(ctx context.Context, productID uuid.UUID, values []string) error {
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&catalog.Barcode{}).Error; err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	rows := make([]catalog.Barcode, 0, len(values))
	for _, v := range values {
		rows = append(rows, catalog.Barcode{
			BaseEntity: shared.NewBaseEntity(),
			ProductID:  productID,
			Value:      v,
		})
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// ReplaceAttributeValues deletes every attribute value row of the product
// and inserts the given rows
func (r *GormProductRepository) ReplaceAttributeValues(ctx context.Context, productID uuid.UUID, values []*catalog.ProductAttributeValue) error {
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&catalog.ProductAttributeValue{}).Error; err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(values).Error
}

// SyncCertificates sets the product's certificate links to exactly the given
// certificate IDs
func (r *GormProductRepository) SyncCertificates(ctx context.Context, productID uuid.UUID, certificateIDs []uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&catalog.ProductCertificate{}).Error; err != nil {
		return err
	}
	if len(certificateIDs) == 0 {
		return nil
	}
	links := make([]catalog.ProductCertificate, 0, len(certificateIDs))
	for _, id := range certificateIDs {
		links = append(links, catalog.ProductCertificate{
			ProductID:     productID,
			CertificateID: id,
		})
	}
	return r.db.WithContext(ctx).Create(&links).Error
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
