package catalog

import (
	"context"

	"github.com/google/uuid"
)

// CategoryRepository persists category tree nodes.
type CategoryRepository interface {
	// GetOrCreate atomically resolves the node (name, parentID), creating it
	// if missing. Backed by a uniqueness constraint: a concurrent create of
	// the same node returns the existing row instead of a duplicate.
	GetOrCreate(ctx context.Context, name string, parentID *uuid.UUID) (*Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	// AttachProduct attaches a product to a category, ignoring an existing
	// attachment.
	AttachProduct(ctx context.Context, categoryID, productID uuid.UUID) error
	// TagAttribute marks an attribute as used by a category, ignoring an
	// existing tag.
	TagAttribute(ctx context.Context, categoryID, attributeID uuid.UUID) error
}

// BrandRepository persists brand dictionary entries.
type BrandRepository interface {
	GetOrCreate(ctx context.Context, externalID, name string) (*Brand, error)
}

// ProductModelRepository persists product model dictionary entries.
type ProductModelRepository interface {
	GetOrCreate(ctx context.Context, externalID, name, groupCode string) (*ProductModel, error)
}

// AttributeRepository persists attribute definitions.
type AttributeRepository interface {
	FindByName(ctx context.Context, name string) (*Attribute, error)
	// Create inserts the attribute; shared.ErrAlreadyExists signals a
	// uniqueness conflict on either name or slug so the caller can re-fetch
	// or pick a different slug.
	Create(ctx context.Context, attribute *Attribute) error
}

// AttributeValueRepository persists the select-attribute value dictionary.
type AttributeValueRepository interface {
	// GetOrCreate atomically resolves (attributeID, value); a newly created
	// entry receives sortOrder.
	GetOrCreate(ctx context.Context, attributeID uuid.UUID, value string, sortOrder int) (*AttributeValue, error)
	CountByAttribute(ctx context.Context, attributeID uuid.UUID) (int64, error)
}

// ProductRepository persists products and their owned collections.
type ProductRepository interface {
	// Upsert creates the product or overwrites all scalar fields of the
	// existing row keyed by external ID. BasePrice is written only on
	// creation. Returns the persisted row.
	Upsert(ctx context.Context, product *Product) (*Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByExternalID(ctx context.Context, externalID string) (*Product, error)
	// ReplaceBarcodes deletes every barcode row of the product and inserts
	// the given values.
	ReplaceBarcodes(ctx context.Context, productID uuid.UUID, values []string) error
	// ReplaceAttributeValues deletes every attribute value row of the
	// product and inserts the given rows.
	ReplaceAttributeValues(ctx context.Context, productID uuid.UUID, values []*ProductAttributeValue) error
	// SyncCertificates sets the product's certificate links to exactly the
	// given certificate IDs.
	SyncCertificates(ctx context.Context, productID uuid.UUID, certificateIDs []uuid.UUID) error
}

// CertificateRepository reads pre-provisioned certificates.
type CertificateRepository interface {
	FindByExternalID(ctx context.Context, externalID string) (*Certificate, error)
}

// MediaRepository persists product media assets.
type MediaRepository interface {
	// ClearCollections removes every asset of the product in the given
	// collections.
	ClearCollections(ctx context.Context, productID uuid.UUID, collections ...MediaCollection) error
	Save(ctx context.Context, asset *MediaAsset) error
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]MediaAsset, error)
}

// Store aggregates the catalog repositories and scopes them to a database
// handle, so one import item can run all its writes inside a single
// transaction.
type Store interface {
	Categories() CategoryRepository
	Brands() BrandRepository
	Models() ProductModelRepository
	Attributes() AttributeRepository
	AttributeValues() AttributeValueRepository
	Products() ProductRepository
	Certificates() CertificateRepository
	Media() MediaRepository

	// InTransaction runs fn against a store bound to one transaction; any
	// error rolls the whole transaction back.
	InTransaction(ctx context.Context, fn func(Store) error) error
}
