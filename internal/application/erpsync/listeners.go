package erpsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	domain "github.com/storefront/backend/internal/domain/erpsync"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// QueueNames holds the outbound ERP queue per aggregate kind
type QueueNames struct {
	Events string
	Orders string
	Users  string
}

// insignificantFields are update fields whose change alone does not warrant
// an outbound publication.
var insignificantFields = map[string]struct{}{
	"updated_at":    {},
	"created_at":    {},
	"currency_code": {},
}

// significantChange reports whether an update's changed fields include
// anything beyond timestamps and currency references. Creates and deletes
// carry no field list and always publish.
func significantChange(changedFields []string) bool {
	if len(changedFields) == 0 {
		return true
	}
	for _, f := range changedFields {
		if _, ok := insignificantFields[f]; !ok {
			return true
		}
	}
	return false
}

// companySnapshot is the hydrated company payload of an outbound envelope
type companySnapshot struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	TaxNumber    string                `json:"tax_number"`
	CurrencyCode string                `json:"currency_code"`
	BankAccounts []bankAccountSnapshot `json:"bank_accounts"`
	Owner        *ownerSnapshot        `json:"owner,omitempty"`
}

type bankAccountSnapshot struct {
	BankName string `json:"bank_name"`
	BIC      string `json:"bic"`
	Account  string `json:"account"`
}

type ownerSnapshot struct {
	ID    string `json:"id"`
	ERPID string `json:"erp_id"`
}

type orderSnapshot struct {
	ID     string          `json:"id"`
	Number string          `json:"number"`
	UserID string          `json:"user_id"`
	Status string          `json:"status"`
	Total  decimal.Decimal `json:"total"`
}

type userSnapshot struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	ERPID  string `json:"erp_id"`
	Status string `json:"status"`
}

// CompanyListener publishes company lifecycle events to the ERP. Updates
// touching only timestamps or the currency reference are suppressed.
type CompanyListener struct {
	companies domain.CompanyRepository
	users     domain.UserRepository
	publisher OutboundPublisher
	queues    QueueNames
	logger    *zap.Logger
}

// NewCompanyListener creates a company listener
func NewCompanyListener(companies domain.CompanyRepository, users domain.UserRepository, publisher OutboundPublisher, queues QueueNames, logger *zap.Logger) *CompanyListener {
	return &CompanyListener{
		companies: companies,
		users:     users,
		publisher: publisher,
		queues:    queues,
		logger:    logger.Named("erp-company"),
	}
}

// EventTypes implements shared.EventHandler
func (l *CompanyListener) EventTypes() []string {
	return []string{domain.EventCompanyCreated, domain.EventCompanyUpdated, domain.EventCompanyDeleted}
}

// Handle builds and publishes the company envelope
func (l *CompanyListener) Handle(ctx context.Context, event shared.DomainEvent) error {
	companyEvent, ok := event.(*domain.CompanyEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}

	if event.EventType() == domain.EventCompanyUpdated && !significantChange(companyEvent.ChangedFields) {
		l.logger.Debug("insignificant company update suppressed",
			zap.String("company_id", companyEvent.CompanyID.String()),
			zap.Strings("changed_fields", companyEvent.ChangedFields),
		)
		return nil
	}

	snapshot := &companySnapshot{ID: companyEvent.CompanyID.String()}
	if event.EventType() != domain.EventCompanyDeleted {
		company, err := l.companies.FindByIDWithRelations(ctx, companyEvent.CompanyID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				l.logger.Info("company gone before publish, skipping",
					zap.String("company_id", companyEvent.CompanyID.String()),
				)
				return nil
			}
			return fmt.Errorf("hydrate company: %w", err)
		}
		snapshot.Name = company.Name
		snapshot.TaxNumber = company.TaxNumber
		snapshot.CurrencyCode = company.CurrencyCode
		for _, acc := range company.BankAccounts {
			snapshot.BankAccounts = append(snapshot.BankAccounts, bankAccountSnapshot{
				BankName: acc.BankName,
				BIC:      acc.BIC,
				Account:  acc.Account,
			})
		}
		if owner, err := l.users.FindByID(ctx, company.OwnerID); err == nil {
			snapshot.Owner = &ownerSnapshot{ID: owner.ID.String(), ERPID: owner.ERPID}
		} else if !errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("hydrate company owner: %w", err)
		}
	}

	return publishEnvelope(ctx, l.publisher, l.queues.Events, event.EventType(), "company", snapshot)
}

// OrderListener publishes order lifecycle events to the ERP
type OrderListener struct {
	orders    domain.OrderRepository
	publisher OutboundPublisher
	queues    QueueNames
	logger    *zap.Logger
}

// NewOrderListener creates an order listener
func NewOrderListener(orders domain.OrderRepository, publisher OutboundPublisher, queues QueueNames, logger *zap.Logger) *OrderListener {
	return &OrderListener{
		orders:    orders,
		publisher: publisher,
		queues:    queues,
		logger:    logger.Named("erp-order"),
	}
}

// EventTypes implements shared.EventHandler
func (l *OrderListener) EventTypes() []string {
	return []string{domain.EventOrderCreated, domain.EventOrderUpdated, domain.EventOrderDeleted}
}

// Handle builds and publishes the order envelope
func (l *OrderListener) Handle(ctx context.Context, event shared.DomainEvent) error {
	orderEvent, ok := event.(*domain.OrderEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}

	snapshot := &orderSnapshot{ID: orderEvent.OrderID.String()}
	if event.EventType() != domain.EventOrderDeleted {
		order, err := l.orders.FindByID(ctx, orderEvent.OrderID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				l.logger.Info("order gone before publish, skipping",
					zap.String("order_id", orderEvent.OrderID.String()),
				)
				return nil
			}
			return fmt.Errorf("hydrate order: %w", err)
		}
		snapshot.Number = order.Number
		snapshot.UserID = order.UserID.String()
		snapshot.Status = order.Status
		snapshot.Total = order.Total
	}

	return publishEnvelope(ctx, l.publisher, l.queues.Orders, event.EventType(), "order", snapshot)
}

// UserListener publishes user lifecycle events to the ERP
type UserListener struct {
	users     domain.UserRepository
	publisher OutboundPublisher
	queues    QueueNames
	logger    *zap.Logger
}

// NewUserListener creates a user listener
func NewUserListener(users domain.UserRepository, publisher OutboundPublisher, queues QueueNames, logger *zap.Logger) *UserListener {
	return &UserListener{
		users:     users,
		publisher: publisher,
		queues:    queues,
		logger:    logger.Named("erp-user"),
	}
}

// EventTypes implements shared.EventHandler
func (l *UserListener) EventTypes() []string {
	return []string{domain.EventUserCreated, domain.EventUserUpdated, domain.EventUserDeleted}
}

// Handle builds and publishes the user envelope
func (l *UserListener) Handle(ctx context.Context, event shared.DomainEvent) error {
	userEvent, ok := event.(*domain.UserEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}

	snapshot := &userSnapshot{ID: userEvent.UserID.String()}
	if event.EventType() != domain.EventUserDeleted {
		user, err := l.users.FindByID(ctx, userEvent.UserID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				l.logger.Info("user gone before publish, skipping",
					zap.String("user_id", userEvent.UserID.String()),
				)
				return nil
			}
			return fmt.Errorf("hydrate user: %w", err)
		}
		snapshot.Name = user.Name
		snapshot.Email = user.Email
		snapshot.ERPID = user.ERPID
		snapshot.Status = user.Status
	}

	return publishEnvelope(ctx, l.publisher, l.queues.Users, event.EventType(), "user", snapshot)
}

// publishEnvelope serializes and publishes one envelope
func publishEnvelope(ctx context.Context, publisher OutboundPublisher, queueName, eventType, entityKey string, entity any) error {
	envelope := domain.NewEnvelope(eventType, entityKey, entity)
	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	return publisher.PublishRaw(ctx, queueName, body)
}

// Ensure the listeners implement shared.EventHandler
var (
	_ shared.EventHandler = (*CompanyListener)(nil)
	_ shared.EventHandler = (*OrderListener)(nil)
	_ shared.EventHandler = (*UserListener)(nil)
)
