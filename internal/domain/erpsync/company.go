package erpsync

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Company is a business customer aggregate mirrored into the ERP. Outbound
// snapshots hydrate the bank accounts and the owning user's ERP identifier.
type Company struct {
	shared.BaseAggregateRoot
	Name         string    `gorm:"type:varchar(500);not null"`
	TaxNumber    string    `gorm:"type:varchar(64);index"`
	CurrencyCode string    `gorm:"type:varchar(8)"`
	OwnerID      uuid.UUID `gorm:"type:uuid;not null;index"`

	BankAccounts []BankAccount `gorm:"foreignKey:CompanyID"`
}

// TableName returns the table name for GORM
func (Company) TableName() string {
	return "companies"
}

// BankAccount is one bank requisite row owned by a company.
type BankAccount struct {
	shared.BaseEntity
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	BankName  string    `gorm:"type:varchar(255)"`
	BIC       string    `gorm:"type:varchar(32)"`
	Account   string    `gorm:"type:varchar(64)"`
}

// TableName returns the table name for GORM
func (BankAccount) TableName() string {
	return "bank_accounts"
}

// Order is the sales order aggregate mirrored into the ERP.
type Order struct {
	shared.BaseAggregateRoot
	Number string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`
	Status string    `gorm:"type:varchar(32);not null"`
	Total  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}
