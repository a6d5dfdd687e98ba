package persistence

import (
	"context"
	"errors"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBrandRepository implements BrandRepository using GORM
type GormBrandRepository struct {
	db *gorm.DB
}

// NewGormBrandRepository creates a new GormBrandRepository
func NewGormBrandRepository(db *gorm.DB) *GormBrandRepository {
	return &GormBrandRepository{db: db}
}

// GetOrCreate atomically resolves a brand by vendor UID
func (r *GormBrandRepository) GetOrCreate(ctx context.Context, externalID, name string) (*catalog.Brand, error) {
	candidate := catalog.NewBrand(externalID, name)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(candidate).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, err
	}

	var brand catalog.Brand
	if err := r.db.WithContext(ctx).First(&brand, "external_id = ?", externalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &brand, nil
}

// GormProductModelRepository implements ProductModelRepository using GORM
type GormProductModelRepository struct {
	db *gorm.DB
}

// NewGormProductModelRepository creates a new GormProductModelRepository
func NewGormProductModelRepository(db *gorm.DB) *GormProductModelRepository {
	return &GormProductModelRepository{db: db}
}

// GetOrCreate atomically resolves a product model by vendor UID
func (r *GormProductModelRepository) GetOrCreate(ctx context.Context, externalID, name, groupCode string) (*catalog.ProductModel, error) {
	candidate := catalog.NewProductModel(externalID, name, groupCode)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(candidate).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, err
	}

	var model catalog.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "external_id = ?", externalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &model, nil
}

// GormCertificateRepository implements CertificateRepository using GORM
type GormCertificateRepository struct {
	db *gorm.DB
}

// NewGormCertificateRepository creates a new GormCertificateRepository
func NewGormCertificateRepository(db *gorm.DB) *GormCertificateRepository {
	return &GormCertificateRepository{db: db}
}

// FindByExternalID finds a certificate by vendor UID
func (r *GormCertificateRepository) FindByExternalID(ctx context.Context, externalID string) (*catalog.Certificate, error) {
	var cert catalog.Certificate
	if err := r.db.WithContext(ctx).First(&cert, "external_id = ?", externalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &cert, nil
}

// Ensure interface compliance
var (
	_ catalog.BrandRepository        = (*GormBrandRepository)(nil)
	_ catalog.ProductModelRepository = (*GormProductModelRepository)(nil)
	_ catalog.CertificateRepository  = (*GormCertificateRepository)(nil)
)
