package erpsync

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Event type constants for ERP-relevant domain events. The short name is
// what goes into the outbound envelope's event field.
const (
	EventCompanyCreated = "CompanyCreated"
	EventCompanyUpdated = "CompanyUpdated"
	EventCompanyDeleted = "CompanyDeleted"
	EventOrderCreated   = "OrderCreated"
	EventOrderUpdated   = "OrderUpdated"
	EventOrderDeleted   = "OrderDeleted"
	EventUserCreated    = "UserCreated"
	EventUserUpdated    = "UserUpdated"
	EventUserDeleted    = "UserDeleted"
)

// CompanyEvent is emitted on company lifecycle changes. ChangedFields lists
// the column names touched by an update so listeners can suppress no-op
// publications.
type CompanyEvent struct {
	shared.BaseDomainEvent
	CompanyID     uuid.UUID `json:"company_id"`
	ChangedFields []string  `json:"changed_fields,omitempty"`
}

// NewCompanyEvent creates a company lifecycle event.
func NewCompanyEvent(eventType string, companyID uuid.UUID, changedFields []string) *CompanyEvent {
	return &CompanyEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Company", companyID),
		CompanyID:       companyID,
		ChangedFields:   changedFields,
	}
}

// OrderEvent is emitted on order lifecycle changes.
type OrderEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID `json:"order_id"`
}

// NewOrderEvent creates an order lifecycle event.
func NewOrderEvent(eventType string, orderID uuid.UUID) *OrderEvent {
	return &OrderEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Order", orderID),
		OrderID:         orderID,
	}
}

// UserEvent is emitted on user lifecycle changes.
type UserEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID `json:"user_id"`
}

// NewUserEvent creates a user lifecycle event.
func NewUserEvent(eventType string, userID uuid.UUID) *UserEvent {
	return &UserEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "User", userID),
		UserID:          userID,
	}
}
