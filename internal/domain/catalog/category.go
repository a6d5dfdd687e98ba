package catalog

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Category is a node in the catalog category tree. Identity is the pair
// (name, parent_id): two categories with the same name under different
// parents are distinct nodes. Nodes are created lazily while resolving a
// feed category path and are never updated or deleted by the pipeline.
type Category struct {
	shared.BaseEntity
	Name     string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_category_parent_name,priority:2"`
	ParentID *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_category_parent_name,priority:1"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a category node under the given parent (nil for root).
func NewCategory(name string, parentID *uuid.UUID) *Category {
	return &Category{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		ParentID:   parentID,
	}
}

// IsRoot returns true if this is a root category
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}
