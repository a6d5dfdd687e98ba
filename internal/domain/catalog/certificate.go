package catalog

import (
	"github.com/storefront/backend/internal/domain/shared"
)

// Certificate is a compliance document row, provisioned by the back-office.
// Import only links products to certificates that already exist; feed
// references with no matching row are silently dropped.
type Certificate struct {
	shared.BaseEntity
	ExternalID string `gorm:"type:varchar(64);not null;uniqueIndex"`
	Name       string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Certificate) TableName() string {
	return "certificates"
}
