package realtime

import (
	"encoding/json"
	"time"
)

// Envelope is the wire frame for every event sent over a persistent
// connection. Data holds the event-specific payload.
type Envelope struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Seal marshals payload into an Envelope frame ready for fan-out.
// Events are sealed once and the same bytes go to every recipient.
func Seal(eventType string, payload interface{}) ([]byte, error) {
	var data json.RawMessage
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		data = raw
	}
	return json.Marshal(Envelope{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
}
