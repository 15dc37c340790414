package myevents

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventEnvelope is what gets stored in the outbox and what is put on the topic.
type EventEnvelope struct {
	UID           string
	CreatedAt     time.Time
	Topic         string
	AggregateUID  string
	EventTypeName string
	EventPayload  string `datastore:",noindex"`
	Published     bool
}

func (e EventEnvelope) String() string {
	return fmt.Sprintf("%s.%s.%s", e.Topic, e.EventTypeName, e.AggregateUID)
}

// DecodePayload unmarshals the payload into the concrete event
func (e EventEnvelope) DecodePayload(event Event) error {
	err := json.Unmarshal([]byte(e.EventPayload), event)
	if err != nil {
		return fmt.Errorf("error decoding payload of %s: %w", e, err)
	}
	return nil
}

type Event interface {
	GetEventTypeName() string
	GetAggregateName() string
}
