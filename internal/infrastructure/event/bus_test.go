package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingHandler struct {
	types    []string
	received []shared.DomainEvent
	err      error
	panics   bool
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.received = append(h.received, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func testEvent(eventType string) shared.DomainEvent {
	e := shared.NewBaseDomainEvent(eventType, "Test", uuid.New())
	return &e
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	ctx := context.Background()

	companyHandler := &recordingHandler{types: []string{"CompanyCreated"}}
	orderHandler := &recordingHandler{types: []string{"OrderCreated"}}
	bus.Subscribe(companyHandler)
	bus.Subscribe(orderHandler)

	require.NoError(t, bus.Publish(ctx, testEvent("CompanyCreated")))

	assert.Len(t, companyHandler.received, 1)
	assert.Empty(t, orderHandler.received)
}

func TestInMemoryEventBus_SubscribeWithExplicitTypes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	ctx := context.Background()

	handler := &recordingHandler{types: []string{"CompanyCreated"}}
	// Explicit types override the handler's own interest list
	bus.Subscribe(handler, "OrderCreated")

	require.NoError(t, bus.Publish(ctx, testEvent("CompanyCreated")))
	assert.Empty(t, handler.received)

	require.NoError(t, bus.Publish(ctx, testEvent("OrderCreated")))
	assert.Len(t, handler.received, 1)
}

func TestInMemoryEventBus_FailingHandlerDoesNotBlockOthers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	ctx := context.Background()

	failing := &recordingHandler{types: []string{"CompanyCreated"}, err: errors.New("boom")}
	panicking := &recordingHandler{types: []string{"CompanyCreated"}, panics: true}
	healthy := &recordingHandler{types: []string{"CompanyCreated"}}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(ctx, testEvent("CompanyCreated")))
	assert.Len(t, healthy.received, 1)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	ctx := context.Background()

	handler := &recordingHandler{types: []string{"CompanyCreated"}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(ctx, testEvent("CompanyCreated")))
	assert.Empty(t, handler.received)
}

func TestHandlerRegistry_CatchAll(t *testing.T) {
	registry := NewHandlerRegistry()

	catchAll := &recordingHandler{}
	typed := &recordingHandler{types: []string{"CompanyCreated"}}
	registry.Register(catchAll)
	registry.Register(typed, "CompanyCreated")

	assert.Len(t, registry.GetHandlers("CompanyCreated"), 2)
	assert.Len(t, registry.GetHandlers("OrderCreated"), 1)
}
