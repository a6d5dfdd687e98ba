package queue

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// LaneDepth holds the list lengths of one lane
type LaneDepth struct {
	Lane       string `json:"lane"`
	Ready      int64  `json:"ready"`
	Processing int64  `json:"processing"`
	Dead       int64  `json:"dead"`
}

// Inspector exposes read and repair operations over the queue lanes for the
// operator endpoint.
type Inspector struct {
	client *redis.Client
}

// NewInspector creates an inspector over the given Redis client
func NewInspector(client *redis.Client) *Inspector {
	return &Inspector{client: client}
}

// Depths returns the list lengths for each lane
func (i *Inspector) Depths(ctx context.Context, lanes ...string) ([]LaneDepth, error) {
	depths := make([]LaneDepth, 0, len(lanes))
	for _, lane := range lanes {
		ready, err := i.client.LLen(ctx, readyKey(lane)).Result()
		if err != nil {
			return nil, err
		}
		processing, err := i.client.LLen(ctx, processingKey(lane)).Result()
		if err != nil {
			return nil, err
		}
		dead, err := i.client.LLen(ctx, deadKey(lane)).Result()
		if err != nil {
			return nil, err
		}
		depths = append(depths, LaneDepth{
			Lane:       lane,
			Ready:      ready,
			Processing: processing,
			Dead:       dead,
		})
	}
	return depths, nil
}

// DeadMessages returns up to limit entries from the lane's dead list
func (i *Inspector) DeadMessages(ctx context.Context, lane string, limit int64) ([]*Message, error) {
	if limit <= 0 {
		limit = 50
	}
	raws, err := i.client.LRange(ctx, deadKey(lane), 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	messages := make([]*Message, 0, len(raws))
	for _, raw := range raws {
		messages = append(messages, decodeMessage(lane, raw))
	}
	return messages, nil
}

// RequeueDead moves up to count entries from the dead list back onto the
// ready list, resetting their attempt counters. Returns how many moved.
func (i *Inspector) RequeueDead(ctx context.Context, lane string, count int) (int, error) {
	if count <= 0 {
		count = 1
	}
	moved := 0
	for ; moved < count; moved++ {
		raw, err := i.client.RPop(ctx, deadKey(lane)).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				break
			}
			return moved, err
		}
		msg := decodeMessage(lane, raw)
		msg.Attempts = 0
		msg.LastError = ""
		q := NewRedisQueue(i.client)
		if err := q.Enqueue(ctx, msg); err != nil {
			return moved, err
		}
	}
	return moved, nil
}

// RequeueProcessing moves up to count in-flight entries back onto the ready
// list. Entries strand on the processing list when a worker dies between
// dequeue and ack; this is the operator repair for them. Attempt counters
// are kept, since the stranded delivery may already have failed before.
func (i *Inspector) RequeueProcessing(ctx context.Context, lane string, count int) (int, error) {
	if count <= 0 {
		count = 1
	}
	moved := 0
	for ; moved < count; moved++ {
		err := i.client.LMove(ctx, processingKey(lane), readyKey(lane), "LEFT", "RIGHT").Err()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				break
			}
			return moved, err
		}
	}
	return moved, nil
}
