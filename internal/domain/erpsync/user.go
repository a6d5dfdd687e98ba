package erpsync

import (
	"github.com/storefront/backend/internal/domain/shared"
)

// User carries the storefront account fields the ERP synchronization
// touches. The ERP identifier and status are written by inbound messages;
// everything else belongs to the identity subsystem.
type User struct {
	shared.BaseAggregateRoot
	Name   string `gorm:"type:varchar(255)"`
	Email  string `gorm:"type:varchar(255);index"`
	ERPID  string `gorm:"type:varchar(64);index"`
	Status string `gorm:"type:varchar(32)"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// ApplyERPIdentity writes the ERP identifier and, when provided, the
// status. Applying the same values twice is a no-op the second time.
func (u *User) ApplyERPIdentity(erpID, status string) bool {
	changed := false
	if u.ERPID != erpID {
		u.ERPID = erpID
		changed = true
	}
	if status != "" && u.Status != status {
		u.Status = status
		changed = true
	}
	return changed
}
