package queue

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Message is the envelope carried on every queue lane. Payload stays raw so
// the queue layer never depends on handler payload shapes. Attempts counts
// deliveries that have already failed.
type Message struct {
	ID          string          `json:"id"`
	Lane        string          `json:"lane"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	EnqueuedAt  time.Time       `json:"enqueued_at"`
	NotBefore   time.Time       `json:"not_before,omitzero"`
	LastError   string          `json:"last_error,omitempty"`
	Payload     json.RawMessage `json:"payload"`
}

// NewMessage creates an envelope with the payload marshalled to JSON
func NewMessage(lane string, maxAttempts int, payload any) (*Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		ID:          uuid.New().String(),
		Lane:        lane,
		MaxAttempts: maxAttempts,
		EnqueuedAt:  time.Now().UTC(),
		Payload:     raw,
	}, nil
}

// DecodePayload unmarshals the payload into v
func (m *Message) DecodePayload(v any) error {
	return json.Unmarshal(m.Payload, v)
}

// decodeMessage parses a raw list entry. External producers push bare JSON
// documents rather than envelopes; those are wrapped so consumers see a
// uniform Message with the original document as payload. A document counts
// as an envelope only when id, lane and payload are all present: external
// documents may well carry a top-level "id" of their own, and treating one
// as an envelope would silently drop its body.
func decodeMessage(lane, raw string) *Message {
	var msg Message
	if err := json.Unmarshal([]byte(raw), &msg); err == nil &&
		msg.ID != "" && msg.Lane != "" && len(msg.Payload) > 0 {
		return &msg
	}
	return &Message{
		ID:         uuid.New().String(),
		Lane:       lane,
		EnqueuedAt: time.Now().UTC(),
		Payload:    json.RawMessage(raw),
	}
}

// fatalError marks a handler failure that must not be retried.
type fatalError struct {
	err error
}

func (e *fatalError) Error() string { return e.err.Error() }
func (e *fatalError) Unwrap() error { return e.err }

// Fatal wraps err so the consumer moves the message straight to the dead
// list instead of requeueing it.
func Fatal(err error) error {
	return &fatalError{err: err}
}

// IsFatal reports whether err was wrapped with Fatal
func IsFatal(err error) bool {
	var fe *fatalError
	return errors.As(err, &fe)
}
