package erpsync

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository persists users touched by ERP synchronization.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	Save(ctx context.Context, user *User) error
}

// CompanyRepository reads companies for outbound snapshot hydration.
type CompanyRepository interface {
	// FindByIDWithRelations loads the company with its bank accounts.
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*Company, error)
}

// OrderRepository reads orders for outbound snapshot hydration.
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
}
