package mypublisher

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/MarcGrol/agencyportal/lib/myevents"
	"github.com/MarcGrol/agencyportal/lib/mytime"
)

type enveloper struct {
	nower mytime.Nower
}

func newEnveloper(nower mytime.Nower) enveloper {
	return enveloper{
		nower: nower,
	}
}

func (e enveloper) wrap(topic string, event myevents.Event) (myevents.EventEnvelope, error) {
	jsonPayload, err := json.Marshal(event)
	if err != nil {
		return myevents.EventEnvelope{}, fmt.Errorf("error marshalling event %s: %w", event.GetEventTypeName(), err)
	}
	envelope := myevents.EventEnvelope{
		Topic:         topic,
		AggregateUID:  event.GetAggregateName(),
		EventTypeName: event.GetEventTypeName(),
		EventPayload:  string(jsonPayload),
	}

	// content based uid: publishing the same event twice ends up in a single outbox entry
	envelope.UID, err = checksum(envelope)
	if err != nil {
		return myevents.EventEnvelope{}, err
	}
	envelope.CreatedAt = e.nower.Now()

	return envelope, nil
}

func checksum(envlp myevents.EventEnvelope) (string, error) {
	asJSON, err := json.Marshal(envlp)
	if err != nil {
		return "", fmt.Errorf("error checksumming envelope %s: %w", envlp, err)
	}

	sum := sha256.Sum256(asJSON)

	return base64.RawURLEncoding.EncodeToString(sum[:]), nil
}
