package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis list keys per lane. Ready entries wait on the main list, in-flight
// entries sit on the processing list until acked, exhausted entries land on
// the dead list for operator inspection.
func readyKey(lane string) string      { return "queue:" + lane }
func processingKey(lane string) string { return "queue:" + lane + ":processing" }
func deadKey(lane string) string       { return "queue:" + lane + ":dead" }

// Delivery is one in-flight message together with the raw list entry needed
// to ack it.
type Delivery struct {
	Message *Message
	raw     string
}

// RedisQueue implements durable queue lanes on Redis lists. Consumption uses
// BLMOVE into a processing list, so a crashed worker leaves the entry on the
// processing list; ReclaimProcessing returns such entries to circulation.
type RedisQueue struct {
	client *redis.Client
}

// NewRedisQueue creates a queue over the given Redis client
func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client}
}

// Enqueue pushes the message onto its lane's ready list
func (q *RedisQueue) Enqueue(ctx context.Context, msg *Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal queue message: %w", err)
	}
	return q.client.LPush(ctx, readyKey(msg.Lane), raw).Err()
}

// EnqueueRaw pushes an already serialized document onto a lane. Used to feed
// lanes whose consumers expect externally produced payloads.
func (q *RedisQueue) EnqueueRaw(ctx context.Context, lane string, raw []byte) error {
	return q.client.LPush(ctx, readyKey(lane), raw).Err()
}

// Dequeue blocks up to timeout for the next message, moving it onto the
// processing list. Returns nil with no error when the wait times out.
func (q *RedisQueue) Dequeue(ctx context.Context, lane string, timeout time.Duration) (*Delivery, error) {
	raw, err := q.client.BLMove(ctx, readyKey(lane), processingKey(lane), "RIGHT", "LEFT", timeout).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return &Delivery{Message: decodeMessage(lane, raw), raw: raw}, nil
}

// Ack removes a delivered entry from the processing list
func (q *RedisQueue) Ack(ctx context.Context, d *Delivery) error {
	return q.client.LRem(ctx, processingKey(d.Message.Lane), 1, d.raw).Err()
}

// Release returns an entry to the ready list unchanged, without counting an
// attempt. Used when a dequeued message is not yet due.
func (q *RedisQueue) Release(ctx context.Context, d *Delivery) error {
	pipe := q.client.TxPipeline()
	pipe.LPush(ctx, readyKey(d.Message.Lane), d.raw)
	pipe.LRem(ctx, processingKey(d.Message.Lane), 1, d.raw)
	_, err := pipe.Exec(ctx)
	return err
}

// ReclaimProcessing moves every entry stranded on the processing list back
// onto the ready list. Entries strand there when a worker dies between
// dequeue and ack. Returns how many moved.
func (q *RedisQueue) ReclaimProcessing(ctx context.Context, lane string) (int, error) {
	moved := 0
	for {
		err := q.client.LMove(ctx, processingKey(lane), readyKey(lane), "LEFT", "RIGHT").Err()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return moved, nil
			}
			return moved, err
		}
		moved++
	}
}

// Requeue records the failure on the envelope and pushes it back onto the
// ready list, then drops the old entry from the processing list.
func (q *RedisQueue) Requeue(ctx context.Context, d *Delivery, handlerErr error) error {
	msg := d.Message
	msg.Attempts++
	msg.LastError = handlerErr.Error()

	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal queue message: %w", err)
	}
	pipe := q.client.TxPipeline()
	pipe.LPush(ctx, readyKey(msg.Lane), raw)
	pipe.LRem(ctx, processingKey(msg.Lane), 1, d.raw)
	_, err = pipe.Exec(ctx)
	return err
}

// Dead records the failure and moves the entry to the dead list
func (q *RedisQueue) Dead(ctx context.Context, d *Delivery, handlerErr error) error {
	msg := d.Message
	msg.Attempts++
	msg.LastError = handlerErr.Error()

	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal queue message: %w", err)
	}
	pipe := q.client.TxPipeline()
	pipe.LPush(ctx, deadKey(msg.Lane), raw)
	pipe.LRem(ctx, processingKey(msg.Lane), 1, d.raw)
	_, err = pipe.Exec(ctx)
	return err
}

// Ensure RedisQueue implements LaneQueue
var _ LaneQueue = (*RedisQueue)(nil)
