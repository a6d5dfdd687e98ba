package persistence

import (
	"context"

	"github.com/storefront/backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// GormStore aggregates the catalog repositories over one *gorm.DB handle.
// InTransaction rebinds the whole store to a transaction handle, so every
// repository call inside the callback joins the same transaction.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store bound to the given database handle
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Categories() catalog.CategoryRepository {
	return NewGormCategoryRepository(s.db)
}

func (s *GormStore) Brands() catalog.BrandRepository {
	return NewGormBrandRepository(s.db)
}

func (s *GormStore) Models() catalog.ProductModelRepository {
	return NewGormProductModelRepository(s.db)
}

func (s *GormStore) Attributes() catalog.AttributeRepository {
	return NewGormAttributeRepository(s.db)
}

func (s *GormStore) AttributeValues() catalog.AttributeValueRepository {
	return NewGormAttributeValueRepository(s.db)
}

func (s *GormStore) Products() catalog.ProductRepository {
	return NewGormProductRepository(s.db)
}

func (s *GormStore) Certificates() catalog.CertificateRepository {
	return NewGormCertificateRepository(s.db)
}

func (s *GormStore) Media() catalog.MediaRepository {
	return NewGormMediaRepository(s.db)
}

// InTransaction runs fn against a store bound to a single transaction
func (s *GormStore) InTransaction(ctx context.Context, fn func(catalog.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormStore(tx))
	})
}

// Ensure GormStore implements catalog.Store
var _ catalog.Store = (*GormStore)(nil)
