package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAttributeRepository implements AttributeRepository using GORM
type GormAttributeRepository struct {
	db *gorm.DB
}

// NewGormAttributeRepository creates a new GormAttributeRepository
func NewGormAttributeRepository(db *gorm.DB) *GormAttributeRepository {
	return &GormAttributeRepository{db: db}
}

// FindByName finds an attribute by its exact name
func (r *GormAttributeRepository) FindByName(ctx context.Context, name string) (*catalog.Attribute, error) {
	var attr catalog.Attribute
	if err := r.db.WithContext(ctx).First(&attr, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &attr, nil
}

// Create inserts the attribute with ON CONFLICT DO NOTHING. A name or slug
// collision is reported as shared.ErrAlreadyExists without raising a
// statement error, so a surrounding transaction stays usable and the caller
// can re-fetch by name or retry with a different slug. Postgres aborts the
// whole transaction on any failed statement, which rules out letting the
// insert fail and catching the unique violation here.
func (r *GormAttributeRepository) Create(ctx context.Context, attribute *catalog.Attribute) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(attribute)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return shared.ErrAlreadyExists
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrAlreadyExists
	}
	return nil
}

// isUniqueViolation reports whether err is a uniqueness constraint violation.
// GORM's TranslateError covers the postgres driver; the string checks cover
// sqlite used in tests.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// GormAttributeValueRepository implements AttributeValueRepository using GORM
type GormAttributeValueRepository struct {
	db *gorm.DB
}

// NewGormAttributeValueRepository creates a new GormAttributeValueRepository
func NewGormAttributeValueRepository(db *gorm.DB) *GormAttributeValueRepository {
	return &GormAttributeValueRepository{db: db}
}

// GetOrCreate atomically resolves the dictionary entry (attributeID, value)
func (r *GormAttributeValueRepository) GetOrCreate(ctx context.Context, attributeID uuid.UUID, value string, sortOrder int) (*catalog.AttributeValue, error) {
	candidate := catalog.NewAttributeValue(attributeID, value, sortOrder)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(candidate).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, err
	}

	var entry catalog.AttributeValue
	if err := r.db.WithContext(ctx).
		Where("attribute_id = ? AND value = ?", attributeID, value).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// CountByAttribute counts dictionary entries of one attribute
func (r *GormAttributeValueRepository) CountByAttribute(ctx context.Context, attributeID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.AttributeValue{}).
		Where("attribute_id = ?", attributeID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure interface compliance
var (
	_ catalog.AttributeRepository      = (*GormAttributeRepository)(nil)
	_ catalog.AttributeValueRepository = (*GormAttributeValueRepository)(nil)
)
