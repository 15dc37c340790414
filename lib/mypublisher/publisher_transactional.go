package mypublisher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/agencyportal/lib/mycontext"
	"github.com/MarcGrol/agencyportal/lib/myevents"
	"github.com/MarcGrol/agencyportal/lib/myhttp"
	"github.com/MarcGrol/agencyportal/lib/mylog"
	"github.com/MarcGrol/agencyportal/lib/mypubsub"
	"github.com/MarcGrol/agencyportal/lib/myqueue"
	"github.com/MarcGrol/agencyportal/lib/mystore"
	"github.com/MarcGrol/agencyportal/lib/mytime"
)

// TransactionalPublisher stores events in an outbox, in the transaction of the caller, and
// publishes them to pubsub once triggered via the task-queue.
type TransactionalPublisher struct {
	outbox    mystore.Store[myevents.EventEnvelope]
	queue     myqueue.TaskQueuer
	pubsub    mypubsub.PubSub
	enveloper enveloper
	logger    mylog.Logger
}

func New(outbox mystore.Store[myevents.EventEnvelope], pubsub mypubsub.PubSub, queue myqueue.TaskQueuer, nower mytime.Nower) *TransactionalPublisher {
	return &TransactionalPublisher{
		outbox:    outbox,
		queue:     queue,
		pubsub:    pubsub,
		enveloper: newEnveloper(nower),
		logger:    mylog.New("mypublisher"),
	}
}

func (p *TransactionalPublisher) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/pubsub/{topic}/{uid}", p.processTriggerPage()).Methods("PUT")
}

func (p *TransactionalPublisher) CreateTopic(c context.Context, topic string) error {
	return p.pubsub.CreateTopic(c, topic)
}

func (p *TransactionalPublisher) Publish(c context.Context, topic string, event myevents.Event) error {
	envelope, err := p.enveloper.wrap(topic, event)
	if err != nil {
		return fmt.Errorf("error creating envelope: %w", err)
	}

	err = p.outbox.Put(c, envelope.UID, envelope)
	if err != nil {
		return fmt.Errorf("error storing envelope %s: %w", envelope, err)
	}

	err = p.queue.Enqueue(c, myqueue.Task{
		UID:            envelope.UID,
		WebhookURLPath: fmt.Sprintf("/pubsub/%s/%s", envelope.Topic, envelope.UID),
		Payload:        []byte{},
	})
	if err != nil {
		return fmt.Errorf("error queueing publication-trigger %s: %w", envelope.UID, err)
	}

	p.logger.Log(c, envelope.AggregateUID, mylog.SeverityInfo, "Enqueued event %s", envelope)

	return nil
}

func (p *TransactionalPublisher) processTriggerPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(p.logger)

		topicName := mux.Vars(r)["topic"]
		eventUID := mux.Vars(r)["uid"]

		count, err := p.processTrigger(c, topicName, eventUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: fmt.Sprintf("Successfully published %d event(s)", count),
		})
	}
}

// processTrigger flushes every unpublished envelope, not only the one that triggered.
func (p *TransactionalPublisher) processTrigger(c context.Context, topicName string, uid string) (int, error) {
	count := 0
	err := p.outbox.RunInTransaction(c, func(c context.Context) error {
		envelopes, err := p.outbox.Query(c, []mystore.Filter{{Field: "Published", Compare: "=", Value: false}}, "CreatedAt")
		if err != nil {
			return fmt.Errorf("error fetching envelopes: %w", err)
		}
		p.logger.Log(c, uid, mylog.SeverityInfo, "Trigger %s/%s: found %d unpublished events", topicName, uid, len(envelopes))

		for _, envelope := range envelopes {
			jsonBytes, err := json.Marshal(envelope)
			if err != nil {
				return fmt.Errorf("error serializing envelope %s: %w", envelope, err)
			}

			err = p.pubsub.Publish(c, envelope.Topic, string(jsonBytes))
			if err != nil {
				return fmt.Errorf("error publishing envelope %s: %w", envelope, err)
			}

			envelope.Published = true
			err = p.outbox.Put(c, envelope.UID, envelope)
			if err != nil {
				return fmt.Errorf("error storing envelope %s: %w", envelope, err)
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}
