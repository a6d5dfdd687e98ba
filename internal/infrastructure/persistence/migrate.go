package persistence

import (
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/erpsync"
	"gorm.io/gorm"
)

// AllModels lists every persisted model. Production schemas are applied with
// versioned SQL migrations; AutoMigrate exists for tests and local sqlite
// runs.
func AllModels() []any {
	return []any{
		&catalog.Category{},
		&catalog.Brand{},
		&catalog.ProductModel{},
		&catalog.Attribute{},
		&catalog.AttributeValue{},
		&catalog.Product{},
		&catalog.Barcode{},
		&catalog.ProductAttributeValue{},
		&catalog.ProductCategory{},
		&catalog.ProductCertificate{},
		&catalog.CategoryAttribute{},
		&catalog.Certificate{},
		&catalog.MediaAsset{},
		&erpsync.User{},
		&erpsync.Company{},
		&erpsync.BankAccount{},
		&erpsync.Order{},
	}
}

// AutoMigrate creates or updates the schema for every model
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
