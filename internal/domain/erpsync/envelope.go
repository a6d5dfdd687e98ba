package erpsync

import (
	"encoding/json"
	"time"
)

// Envelope wraps every outbound ERP message: the event's short name, the
// publication timestamp, and a hydrated snapshot of the affected entity
// keyed by the entity name. There is no schema versioning; consumers must
// tolerate unknown and missing fields.
type Envelope struct {
	Event     string
	Timestamp time.Time
	EntityKey string
	Entity    any
}

// NewEnvelope creates an envelope stamped with the current time.
func NewEnvelope(event, entityKey string, entity any) *Envelope {
	return &Envelope{
		Event:     event,
		Timestamp: time.Now().UTC(),
		EntityKey: entityKey,
		Entity:    entity,
	}
}

// MarshalJSON flattens the envelope to {event, timestamp, <entity>: ...}.
func (e *Envelope) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"event":     e.Event,
		"timestamp": e.Timestamp.Format(time.RFC3339),
	}
	if e.EntityKey != "" {
		out[e.EntityKey] = e.Entity
	}
	return json.Marshal(out)
}
