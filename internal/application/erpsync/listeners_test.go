package erpsync

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	domain "github.com/storefront/backend/internal/domain/erpsync"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type capturePublisher struct {
	queues []string
	bodies [][]byte
	err    error
}

func (p *capturePublisher) PublishRaw(_ context.Context, queueName string, body []byte) error {
	if p.err != nil {
		return p.err
	}
	p.queues = append(p.queues, queueName)
	p.bodies = append(p.bodies, body)
	return nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*domain.User
	saves int
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[uuid.UUID]*domain.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) Save(_ context.Context, user *domain.User) error {
	r.saves++
	r.users[user.ID] = user
	return nil
}

type fakeCompanyRepo struct {
	companies map[uuid.UUID]*domain.Company
}

func (r *fakeCompanyRepo) FindByIDWithRelations(_ context.Context, id uuid.UUID) (*domain.Company, error) {
	company, ok := r.companies[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return company, nil
}

type fakeOrderRepo struct {
	orders map[uuid.UUID]*domain.Order
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return order, nil
}

var testQueues = QueueNames{Events: "erp_events", Orders: "erp_orders", Users: "erp_users"}

func decodeEnvelope(t *testing.T, body []byte) map[string]json.RawMessage {
	t.Helper()
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &doc))
	return doc
}

func TestSignificantChange(t *testing.T) {
	tests := []struct {
		name     string
		fields   []string
		expected bool
	}{
		{"no field list always publishes", nil, true},
		{"real field", []string{"name"}, true},
		{"mixed", []string{"updated_at", "tax_number"}, true},
		{"timestamps only", []string{"updated_at", "created_at"}, false},
		{"currency only", []string{"currency_code"}, false},
		{"timestamps and currency", []string{"updated_at", "currency_code"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, significantChange(tt.fields))
		})
	}
}

func TestCompanyListener_PublishesHydratedSnapshot(t *testing.T) {
	owner := &domain.User{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Name: "Jane", ERPID: "ERP-77"}
	company := &domain.Company{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              "Acme LLC",
		TaxNumber:         "7701234567",
		CurrencyCode:      "RUB",
		OwnerID:           owner.ID,
		BankAccounts: []domain.BankAccount{
			{BaseEntity: shared.NewBaseEntity(), BankName: "Big Bank", BIC: "044525225", Account: "40702810"},
		},
	}

	publisher := &capturePublisher{}
	listener := NewCompanyListener(
		&fakeCompanyRepo{companies: map[uuid.UUID]*domain.Company{company.ID: company}},
		newFakeUserRepo(owner),
		publisher, testQueues, zap.NewNop(),
	)

	event := domain.NewCompanyEvent(domain.EventCompanyCreated, company.ID, nil)
	require.NoError(t, listener.Handle(context.Background(), event))

	require.Len(t, publisher.bodies, 1)
	assert.Equal(t, "erp_events", publisher.queues[0])

	doc := decodeEnvelope(t, publisher.bodies[0])
	var eventName string
	require.NoError(t, json.Unmarshal(doc["event"], &eventName))
	assert.Equal(t, "CompanyCreated", eventName)

	var snapshot struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		BankAccounts []struct {
			BIC string `json:"bic"`
		} `json:"bank_accounts"`
		Owner *struct {
			ERPID string `json:"erp_id"`
		} `json:"owner"`
	}
	require.NoError(t, json.Unmarshal(doc["company"], &snapshot))
	assert.Equal(t, company.ID.String(), snapshot.ID)
	assert.Equal(t, "Acme LLC", snapshot.Name)
	require.Len(t, snapshot.BankAccounts, 1)
	assert.Equal(t, "044525225", snapshot.BankAccounts[0].BIC)
	require.NotNil(t, snapshot.Owner)
	assert.Equal(t, "ERP-77", snapshot.Owner.ERPID)
}

func TestCompanyListener_SuppressesInsignificantUpdate(t *testing.T) {
	publisher := &capturePublisher{}
	listener := NewCompanyListener(
		&fakeCompanyRepo{companies: map[uuid.UUID]*domain.Company{}},
		newFakeUserRepo(), publisher, testQueues, zap.NewNop(),
	)

	event := domain.NewCompanyEvent(domain.EventCompanyUpdated, uuid.New(), []string{"updated_at", "currency_code"})
	require.NoError(t, listener.Handle(context.Background(), event))
	assert.Empty(t, publisher.bodies)
}

func TestCompanyListener_DeletedPublishesIDOnly(t *testing.T) {
	publisher := &capturePublisher{}
	// No repository lookup happens for deletes, the aggregate is gone
	listener := NewCompanyListener(
		&fakeCompanyRepo{companies: map[uuid.UUID]*domain.Company{}},
		newFakeUserRepo(), publisher, testQueues, zap.NewNop(),
	)

	companyID := uuid.New()
	event := domain.NewCompanyEvent(domain.EventCompanyDeleted, companyID, nil)
	require.NoError(t, listener.Handle(context.Background(), event))

	require.Len(t, publisher.bodies, 1)
	doc := decodeEnvelope(t, publisher.bodies[0])
	var snapshot struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(doc["company"], &snapshot))
	assert.Equal(t, companyID.String(), snapshot.ID)
	assert.Empty(t, snapshot.Name)
}

func TestCompanyListener_GoneAggregateIsSkipped(t *testing.T) {
	publisher := &capturePublisher{}
	listener := NewCompanyListener(
		&fakeCompanyRepo{companies: map[uuid.UUID]*domain.Company{}},
		newFakeUserRepo(), publisher, testQueues, zap.NewNop(),
	)

	event := domain.NewCompanyEvent(domain.EventCompanyUpdated, uuid.New(), []string{"name"})
	require.NoError(t, listener.Handle(context.Background(), event))
	assert.Empty(t, publisher.bodies)
}

func TestOrderListener_PublishesSnapshot(t *testing.T) {
	order := &domain.Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            "ORD-1001",
		UserID:            uuid.New(),
		Status:            "paid",
		Total:             decimal.RequireFromString("1499.90"),
	}

	publisher := &capturePublisher{}
	listener := NewOrderListener(
		&fakeOrderRepo{orders: map[uuid.UUID]*domain.Order{order.ID: order}},
		publisher, testQueues, zap.NewNop(),
	)

	event := domain.NewOrderEvent(domain.EventOrderCreated, order.ID)
	require.NoError(t, listener.Handle(context.Background(), event))

	require.Len(t, publisher.bodies, 1)
	assert.Equal(t, "erp_orders", publisher.queues[0])

	doc := decodeEnvelope(t, publisher.bodies[0])
	var snapshot struct {
		Number string          `json:"number"`
		Status string          `json:"status"`
		Total  decimal.Decimal `json:"total"`
	}
	require.NoError(t, json.Unmarshal(doc["order"], &snapshot))
	assert.Equal(t, "ORD-1001", snapshot.Number)
	assert.Equal(t, "paid", snapshot.Status)
	assert.True(t, snapshot.Total.Equal(decimal.RequireFromString("1499.90")))
}

func TestUserListener_PublishesSnapshot(t *testing.T) {
	user := &domain.User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              "Jane",
		Email:             "jane@example.com",
		ERPID:             "ERP-77",
		Status:            "active",
	}

	publisher := &capturePublisher{}
	listener := NewUserListener(newFakeUserRepo(user), publisher, testQueues, zap.NewNop())

	event := domain.NewUserEvent(domain.EventUserUpdated, user.ID)
	require.NoError(t, listener.Handle(context.Background(), event))

	require.Len(t, publisher.bodies, 1)
	assert.Equal(t, "erp_users", publisher.queues[0])

	doc := decodeEnvelope(t, publisher.bodies[0])
	var snapshot struct {
		Email string `json:"email"`
		ERPID string `json:"erp_id"`
	}
	require.NoError(t, json.Unmarshal(doc["user"], &snapshot))
	assert.Equal(t, "jane@example.com", snapshot.Email)
	assert.Equal(t, "ERP-77", snapshot.ERPID)
}

func TestCompanyListener_PublisherErrorPropagates(t *testing.T) {
	publisher := &capturePublisher{err: errors.New("broker down")}
	listener := NewCompanyListener(
		&fakeCompanyRepo{companies: map[uuid.UUID]*domain.Company{}},
		newFakeUserRepo(), publisher, testQueues, zap.NewNop(),
	)

	event := domain.NewCompanyEvent(domain.EventCompanyDeleted, uuid.New(), nil)
	assert.ErrorContains(t, listener.Handle(context.Background(), event), "broker down")
}
