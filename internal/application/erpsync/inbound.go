package erpsync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/storefront/backend/internal/infrastructure/queue"
	"go.uber.org/zap"
)

// InboundRouter consumes the erp_incoming lane. Messages originate from the
// external ERP and are bare JSON documents, not this system's own job
// envelope. Unparseable bodies are poison and go straight to the dead list;
// recognized documents are dispatched, and a dispatch failure requeues the
// message for redelivery (at-least-once, downstream handlers idempotent).
// Unrecognized shapes are acknowledged without effect, so new ERP message
// kinds never break the consumer.
type InboundRouter struct {
	lane        string
	userUpdates *UserUpdateService
	logger      *zap.Logger
}

// NewInboundRouter creates the inbound router for the given lane
func NewInboundRouter(lane string, userUpdates *UserUpdateService, logger *zap.Logger) *InboundRouter {
	return &InboundRouter{
		lane:        lane,
		userUpdates: userUpdates,
		logger:      logger.Named("erp-inbound"),
	}
}

func (r *InboundRouter) Lane() string           { return r.lane }
func (r *InboundRouter) MaxAttempts() int       { return 10 }
func (r *InboundRouter) Timeout() time.Duration { return 30 * time.Second }
func (r *InboundRouter) Backoff() time.Duration { return 5 * time.Second }

// Handle routes one inbound ERP message
func (r *InboundRouter) Handle(ctx context.Context, msg *queue.Message) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(msg.Payload, &doc); err != nil {
		r.logger.Warn("discarding unparseable inbound message", zap.Error(err))
		return queue.Fatal(fmt.Errorf("parse inbound message: %w", err))
	}

	if _, ok := doc["user"]; ok {
		var update UserUpdate
		if err := json.Unmarshal(msg.Payload, &update); err != nil {
			r.logger.Warn("discarding malformed user update", zap.Error(err))
			return queue.Fatal(fmt.Errorf("parse user update: %w", err))
		}
		if err := r.userUpdates.Apply(ctx, &update); err != nil {
			return fmt.Errorf("apply user update: %w", err)
		}
		return nil
	}

	r.logger.Debug("inbound message with no recognized keys acknowledged")
	return nil
}

// Ensure InboundRouter implements queue.Handler
var _ queue.Handler = (*InboundRouter)(nil)
