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

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// GetOrCreate atomically resolves the node (name, parentID). The fast path
// is a lookup; on miss the insert runs with ON CONFLICT DO NOTHING against
// the (parent_id, name) uniqueness constraint and the row is re-fetched, so
// whichever writer won a race both end up with the same node. NULL parents
// are outside the composite index (NULLs compare distinct), which is why the
// lookup comes first; the schema adds a partial unique index on root names.
func (r *GormCategoryRepository) GetOrCreate(ctx context.Context, name string, parentID *uuid.UUID) (*catalog.Category, error) {
	if category, err := r.findByIdentity(ctx, name, parentID); err == nil {
		return category, nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	candidate := catalog.NewCategory(name, parentID)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(candidate).Error; err != nil && !isUniqueViolation(err) {
		return nil, err
	}

	return r.findByIdentity(ctx, name, parentID)
}

func (r *GormCategoryRepository) findByIdentity(ctx context.Context, name string, parentID *uuid.UUID) (*catalog.Category, error) {
	var category catalog.Category
	query := r.db.WithContext(ctx).Where("name = ?", name)
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}
	if err := query.First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// FindByID finds a category by its ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	var category catalog.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// AttachProduct attaches a product to a category, ignoring an existing attachment
func (r *GormCategoryRepository) AttachProduct(ctx context.Context, categoryID, productID uuid.UUID) error {
	link := catalog.ProductCategory{ProductID: productID, CategoryID: categoryID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&link).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	return nil
}

// TagAttribute marks an attribute as used by a category, ignoring an existing tag
func (r *GormCategoryRepository) TagAttribute(ctx context.Context, categoryID, attributeID uuid.UUID) error {
	tag := catalog.CategoryAttribute{CategoryID: categoryID, AttributeID: attributeID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&tag).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	return nil
}

// Ensure GormCategoryRepository implements CategoryRepository
var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
