package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Product is the catalog aggregate. Identity is the vendor external ID;
// every other scalar field is overwritten on each import (upsert, not
// merge). BasePrice is the exception: it is set to zero on first creation
// and never touched by import afterwards, since pricing is managed outside
// the feed.
type Product struct {
	shared.BaseEntity
	ExternalID string `gorm:"type:varchar(64);not null;uniqueIndex"`
	Code       string `gorm:"type:varchar(64);index"`
	SKU        string `gorm:"type:varchar(64);index"`
	Name       string `gorm:"type:varchar(500);not null"`
	Slug       string `gorm:"type:varchar(500)"`
	URL        string `gorm:"type:varchar(1000)"`
	Barcode    string `gorm:"type:varchar(64);index"`

	BrandID *uuid.UUID `gorm:"type:uuid;index"`
	ModelID *uuid.UUID `gorm:"type:uuid;index"`

	Description      string `gorm:"type:text"`
	ShortDescription string `gorm:"type:text"`
	Composition      string `gorm:"type:text"`

	IsNew           bool `gorm:"not null;default:false"`
	IsMarked        bool `gorm:"not null;default:false"`
	IsLiquidation   bool `gorm:"not null;default:false"`
	ForMarketplaces bool `gorm:"not null;default:false"`

	BasePrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// ProductFromPayload builds a product row from one feed payload. Brand and
// model references are attached by the importer after dictionary
// resolution.
func ProductFromPayload(p *CatalogItemPayload) *Product {
	return &Product{
		BaseEntity:       shared.NewBaseEntity(),
		ExternalID:       p.ExternalID,
		Code:             p.Code,
		SKU:              p.SKU,
		Name:             p.Name,
		Slug:             p.Slug,
		URL:              p.URL,
		Barcode:          p.Barcode,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		Composition:      p.Composition,
		IsNew:            FlagFromFeed(p.IsNew),
		IsMarked:         FlagFromFeed(p.IsMarked),
		IsLiquidation:    FlagFromFeed(p.IsLiquidation),
		ForMarketplaces:  FlagFromFeed(p.ForMarketplaces),
		BasePrice:        decimal.Zero,
	}
}

// Barcode is one barcode row owned by a product. The whole set is replaced
// on every import.
type Barcode struct {
	shared.BaseEntity
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Value     string    `gorm:"type:varchar(64);not null"`
}

// TableName returns the table name for GORM
func (Barcode) TableName() string {
	return "barcodes"
}

// ProductCategory attaches a product to a category. Attachments accumulate
// across imports and are never detached by the pipeline.
type ProductCategory struct {
	ProductID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	CategoryID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

// TableName returns the table name for GORM
func (ProductCategory) TableName() string {
	return "product_categories"
}

// ProductCertificate links a product to a pre-existing certificate. The
// linked set is replaced on each import with the matched certificates.
type ProductCertificate struct {
	ProductID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	CertificateID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

// TableName returns the table name for GORM
func (ProductCertificate) TableName() string {
	return "product_certificates"
}

// CategoryAttribute tags an attribute as used by products of a category.
// Additive, never removed by import.
type CategoryAttribute struct {
	CategoryID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	AttributeID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

// TableName returns the table name for GORM
func (CategoryAttribute) TableName() string {
	return "category_attributes"
}
