package erpsync

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	domain "github.com/storefront/backend/internal/domain/erpsync"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newInboundRouter(users *fakeUserRepo) *InboundRouter {
	service := NewUserUpdateService(users, zap.NewNop())
	return NewInboundRouter("erp_incoming", service, zap.NewNop())
}

func inboundMessage(body string) *queue.Message {
	// Inbound documents arrive bare and get wrapped by the queue layer
	return &queue.Message{ID: "in-1", Lane: "erp_incoming", Payload: json.RawMessage(body)}
}

func TestInboundRouter_AppliesUserUpdate(t *testing.T) {
	user := &domain.User{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Name: "Jane"}
	users := newFakeUserRepo(user)
	router := newInboundRouter(users)

	body := fmt.Sprintf(`{"user":{"id":%q},"erp_id":"ERP-55","status":"active"}`, user.ID)
	require.NoError(t, router.Handle(context.Background(), inboundMessage(body)))

	assert.Equal(t, "ERP-55", user.ERPID)
	assert.Equal(t, "active", user.Status)
	assert.Equal(t, 1, users.saves)

	// Redelivery of the same document writes nothing
	require.NoError(t, router.Handle(context.Background(), inboundMessage(body)))
	assert.Equal(t, 1, users.saves)
}

func TestInboundRouter_UnparseableBodyIsPoison(t *testing.T) {
	router := newInboundRouter(newFakeUserRepo())

	err := router.Handle(context.Background(), inboundMessage(`{"user": broken`))
	require.Error(t, err)
	assert.True(t, queue.IsFatal(err))
}

func TestInboundRouter_MalformedUserDocumentIsPoison(t *testing.T) {
	router := newInboundRouter(newFakeUserRepo())

	err := router.Handle(context.Background(), inboundMessage(`{"user": 42}`))
	require.Error(t, err)
	assert.True(t, queue.IsFatal(err))
}

func TestInboundRouter_UnrecognizedShapeIsAcknowledged(t *testing.T) {
	users := newFakeUserRepo()
	router := newInboundRouter(users)

	err := router.Handle(context.Background(), inboundMessage(`{"invoice":{"id":"inv-1"}}`))
	assert.NoError(t, err)
	assert.Equal(t, 0, users.saves)
}

func TestUserUpdateService_Apply(t *testing.T) {
	ctx := context.Background()

	t.Run("missing identifiers are ignored", func(t *testing.T) {
		users := newFakeUserRepo()
		service := NewUserUpdateService(users, zap.NewNop())

		assert.NoError(t, service.Apply(ctx, &UserUpdate{}))

		update := &UserUpdate{ERPID: "ERP-1"}
		assert.NoError(t, service.Apply(ctx, update))
		assert.Equal(t, 0, users.saves)
	})

	t.Run("malformed user id is ignored", func(t *testing.T) {
		users := newFakeUserRepo()
		service := NewUserUpdateService(users, zap.NewNop())

		update := &UserUpdate{ERPID: "ERP-1"}
		update.User.ID = "not-a-uuid"
		assert.NoError(t, service.Apply(ctx, update))
		assert.Equal(t, 0, users.saves)
	})

	t.Run("unknown user is ignored", func(t *testing.T) {
		users := newFakeUserRepo()
		service := NewUserUpdateService(users, zap.NewNop())

		update := &UserUpdate{ERPID: "ERP-1"}
		update.User.ID = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
		assert.NoError(t, service.Apply(ctx, update))
		assert.Equal(t, 0, users.saves)
	})

	t.Run("status alone is not applied without erp id", func(t *testing.T) {
		user := &domain.User{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Status: "active"}
		users := newFakeUserRepo(user)
		service := NewUserUpdateService(users, zap.NewNop())

		update := &UserUpdate{Status: "blocked"}
		update.User.ID = user.ID.String()
		assert.NoError(t, service.Apply(ctx, update))
		assert.Equal(t, "active", user.Status)
	})
}

func TestPublishJobHandler(t *testing.T) {
	t.Run("delegates to the publisher", func(t *testing.T) {
		publisher := &capturePublisher{}
		handler := NewPublishJobHandler(publisher, 3, 0, zap.NewNop())

		msg, err := queue.NewMessage(LanePublish, 3, PublishJob{
			Queue: "erp_events",
			Body:  json.RawMessage(`{"event":"CompanyCreated"}`),
		})
		require.NoError(t, err)

		require.NoError(t, handler.Handle(context.Background(), msg))
		require.Len(t, publisher.bodies, 1)
		assert.Equal(t, "erp_events", publisher.queues[0])
		assert.JSONEq(t, `{"event":"CompanyCreated"}`, string(publisher.bodies[0]))
	})

	t.Run("undecodable job is poison", func(t *testing.T) {
		handler := NewPublishJobHandler(&capturePublisher{}, 3, 0, zap.NewNop())

		msg := &queue.Message{ID: "p-1", Lane: LanePublish, Payload: json.RawMessage(`{"queue": 7}`)}
		err := handler.Handle(context.Background(), msg)
		require.Error(t, err)
		assert.True(t, queue.IsFatal(err))
	})
}
