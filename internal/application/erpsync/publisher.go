// Package erpsync carries the bidirectional synchronization with the
// external ERP system: outbound domain-event publication and inbound raw
// message consumption.
package erpsync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/storefront/backend/internal/infrastructure/queue"
	"go.uber.org/zap"
)

// LanePublish is the internal lane for retryable outbound publishes.
const LanePublish = "erp-publish"

// OutboundPublisher is the single port through which envelopes leave the
// system. Transport stays injected so listeners are testable without a
// broker.
type OutboundPublisher interface {
	PublishRaw(ctx context.Context, queueName string, body []byte) error
}

// RedisOutboundPublisher publishes raw envelopes onto the named durable
// ERP queues.
type RedisOutboundPublisher struct {
	queue *queue.RedisQueue
}

// NewRedisOutboundPublisher creates a publisher over the given queue
func NewRedisOutboundPublisher(q *queue.RedisQueue) *RedisOutboundPublisher {
	return &RedisOutboundPublisher{queue: q}
}

// PublishRaw pushes the serialized envelope onto the named queue
func (p *RedisOutboundPublisher) PublishRaw(ctx context.Context, queueName string, body []byte) error {
	return p.queue.EnqueueRaw(ctx, queueName, body)
}

// PublishJob is the payload of one queued retryable publish.
type PublishJob struct {
	Queue string          `json:"queue"`
	Body  json.RawMessage `json:"body"`
}

// QueuedPublisher defers publication through the erp-publish lane, for
// paths where the publish itself must be retryable independent of the
// triggering request.
type QueuedPublisher struct {
	queue       *queue.RedisQueue
	maxAttempts int
}

// NewQueuedPublisher creates a queued publisher
func NewQueuedPublisher(q *queue.RedisQueue, maxAttempts int) *QueuedPublisher {
	return &QueuedPublisher{queue: q, maxAttempts: maxAttempts}
}

// PublishRaw enqueues a publish job instead of publishing directly
func (p *QueuedPublisher) PublishRaw(ctx context.Context, queueName string, body []byte) error {
	msg, err := queue.NewMessage(LanePublish, p.maxAttempts, PublishJob{
		Queue: queueName,
		Body:  body,
	})
	if err != nil {
		return fmt.Errorf("build publish job: %w", err)
	}
	return p.queue.Enqueue(ctx, msg)
}

// PublishJobHandler consumes the erp-publish lane and performs the actual
// publication.
type PublishJobHandler struct {
	publisher   OutboundPublisher
	maxAttempts int
	backoff     time.Duration
	logger      *zap.Logger
}

// NewPublishJobHandler creates the publish job handler
func NewPublishJobHandler(publisher OutboundPublisher, maxAttempts int, backoff time.Duration, logger *zap.Logger) *PublishJobHandler {
	return &PublishJobHandler{
		publisher:   publisher,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		logger:      logger.Named("erp-publish"),
	}
}

func (h *PublishJobHandler) Lane() string           { return LanePublish }
func (h *PublishJobHandler) MaxAttempts() int       { return h.maxAttempts }
func (h *PublishJobHandler) Timeout() time.Duration { return 30 * time.Second }
func (h *PublishJobHandler) Backoff() time.Duration { return h.backoff }

// Handle performs one deferred publish
func (h *PublishJobHandler) Handle(ctx context.Context, msg *queue.Message) error {
	var job PublishJob
	if err := msg.DecodePayload(&job); err != nil {
		return queue.Fatal(fmt.Errorf("decode publish job: %w", err))
	}
	if err := h.publisher.PublishRaw(ctx, job.Queue, job.Body); err != nil {
		return fmt.Errorf("publish to %s: %w", job.Queue, err)
	}
	h.logger.Debug("deferred publish delivered", zap.String("queue", job.Queue))
	return nil
}

// Ensure interface compliance
var (
	_ OutboundPublisher = (*RedisOutboundPublisher)(nil)
	_ OutboundPublisher = (*QueuedPublisher)(nil)
	_ queue.Handler     = (*PublishJobHandler)(nil)
)
