package queue

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Handler processes messages from one lane. MaxAttempts bounds deliveries
// before a message is moved to the dead list; Backoff is slept before a
// failed message becomes visible again.
type Handler interface {
	Lane() string
	MaxAttempts() int
	Timeout() time.Duration
	Backoff() time.Duration
	Handle(ctx context.Context, msg *Message) error
}

const (
	dequeueBlock = 5 * time.Second
	deferredPoll = time.Second
)

// LaneQueue is the queue surface the consumer drives
type LaneQueue interface {
	Dequeue(ctx context.Context, lane string, timeout time.Duration) (*Delivery, error)
	Ack(ctx context.Context, d *Delivery) error
	Requeue(ctx context.Context, d *Delivery, handlerErr error) error
	Dead(ctx context.Context, d *Delivery, handlerErr error) error
	Release(ctx context.Context, d *Delivery) error
	ReclaimProcessing(ctx context.Context, lane string) (int, error)
}

// Consumer runs a pool of workers draining one lane into a handler
type Consumer struct {
	queue   LaneQueue
	handler Handler
	workers int
	logger  *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewConsumer creates a consumer with the given worker count
func NewConsumer(queue LaneQueue, handler Handler, workers int, logger *zap.Logger) *Consumer {
	if workers < 1 {
		workers = 1
	}
	return &Consumer{
		queue:   queue,
		handler: handler,
		workers: workers,
		logger:  logger.Named("consumer").With(zap.String("lane", handler.Lane())),
	}
}

// Start launches the worker pool. Entries stranded on the processing list
// by a previous crash are returned to the ready list first; this assumes a
// single consumer process per lane, so nothing else holds in-flight entries.
func (c *Consumer) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	if moved, err := c.queue.ReclaimProcessing(ctx, c.handler.Lane()); err != nil {
		c.logger.Error("processing reclaim failed", zap.Error(err))
	} else if moved > 0 {
		c.logger.Info("reclaimed stranded messages", zap.Int("count", moved))
	}

	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.workLoop(ctx)
	}

	c.logger.Info("consumer started", zap.Int("workers", c.workers))
}

// Stop gracefully stops the workers, waiting up to ctx for in-flight work
func (c *Consumer) Stop(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("consumer stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Consumer) workLoop(ctx context.Context) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		delivery, err := c.queue.Dequeue(ctx, c.handler.Lane(), dequeueBlock)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("dequeue failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if delivery == nil {
			continue
		}

		// Deferred messages go back to the ready list without burning an
		// attempt. The short sleep keeps a lane holding only deferred
		// messages from spinning.
		if wait := time.Until(delivery.Message.NotBefore); wait > 0 {
			if relErr := c.queue.Release(ctx, delivery); relErr != nil {
				c.logger.Error("release failed", zap.String("message_id", delivery.Message.ID), zap.Error(relErr))
			}
			select {
			case <-time.After(min(wait, deferredPoll)):
			case <-ctx.Done():
				return
			}
			continue
		}

		c.process(ctx, delivery)
	}
}

func (c *Consumer) process(ctx context.Context, d *Delivery) {
	msg := d.Message
	if msg.MaxAttempts == 0 {
		msg.MaxAttempts = c.handler.MaxAttempts()
	}

	handleCtx := ctx
	if timeout := c.handler.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		handleCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	err := c.handler.Handle(handleCtx, msg)
	if err == nil {
		if ackErr := c.queue.Ack(ctx, d); ackErr != nil {
			c.logger.Error("ack failed", zap.String("message_id", msg.ID), zap.Error(ackErr))
		}
		return
	}

	switch {
	case IsFatal(err):
		c.logger.Warn("message moved to dead list",
			zap.String("message_id", msg.ID),
			zap.Int("attempts", msg.Attempts+1),
			zap.Error(err),
		)
		if deadErr := c.queue.Dead(ctx, d, err); deadErr != nil {
			c.logger.Error("dead-list move failed", zap.String("message_id", msg.ID), zap.Error(deadErr))
		}

	case msg.Attempts+1 >= msg.MaxAttempts:
		c.logger.Warn("message exhausted retries, moved to dead list",
			zap.String("message_id", msg.ID),
			zap.Int("attempts", msg.Attempts+1),
			zap.Error(err),
		)
		if deadErr := c.queue.Dead(ctx, d, err); deadErr != nil {
			c.logger.Error("dead-list move failed", zap.String("message_id", msg.ID), zap.Error(deadErr))
		}

	default:
		c.logger.Warn("message handling failed, requeueing",
			zap.String("message_id", msg.ID),
			zap.Int("attempts", msg.Attempts+1),
			zap.Error(err),
		)
		// The backoff rides on the envelope instead of sleeping here, so the
		// worker stays free and the message does not sit unacked.
		if backoff := c.handler.Backoff(); backoff > 0 {
			msg.NotBefore = time.Now().UTC().Add(backoff)
		}
		if reqErr := c.queue.Requeue(ctx, d, err); reqErr != nil {
			c.logger.Error("requeue failed", zap.String("message_id", msg.ID), zap.Error(reqErr))
		}
	}
}
