package catalog

import (
	"github.com/storefront/backend/internal/domain/shared"
)

// Brand is a dictionary entity keyed by the vendor UID. It is created on
// first sight during import and never mutated by the pipeline afterwards;
// field updates belong to the admin back-office.
type Brand struct {
	shared.BaseEntity
	ExternalID string `gorm:"type:varchar(64);not null;uniqueIndex"`
	Name       string `gorm:"type:varchar(255);not null"`
}

// TableName returns the table name for GORM
func (Brand) TableName() string {
	return "brands"
}

// NewBrand creates a brand from a vendor reference.
func NewBrand(externalID, name string) *Brand {
	return &Brand{
		BaseEntity: shared.NewBaseEntity(),
		ExternalID: externalID,
		Name:       name,
	}
}

// ProductModel is a dictionary entity for the vendor's product model
// grouping, keyed by the vendor UID. Same lifecycle as Brand.
type ProductModel struct {
	shared.BaseEntity
	ExternalID string `gorm:"type:varchar(64);not null;uniqueIndex"`
	Name       string `gorm:"type:varchar(255);not null"`
	GroupCode  string `gorm:"type:varchar(64)"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "product_models"
}

// NewProductModel creates a product model from a vendor reference.
func NewProductModel(externalID, name, groupCode string) *ProductModel {
	return &ProductModel{
		BaseEntity: shared.NewBaseEntity(),
		ExternalID: externalID,
		Name:       name,
		GroupCode:  groupCode,
	}
}
