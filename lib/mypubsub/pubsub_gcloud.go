package mypubsub

import (
	"context"
	"fmt"
	"sync"

	"cloud.google.com/go/pubsub"

	"github.com/MarcGrol/agencyportal/lib/mylog"
)

type gcloudPubSub struct {
	sync.Mutex
	client *pubsub.Client
	topics map[string]*pubsub.Topic
	logger mylog.Logger
}

func newGcloudPubSub(c context.Context, projectID string) (*gcloudPubSub, func(), error) {
	client, err := pubsub.NewClient(c, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating pubsub-client: %w", err)
	}
	return &gcloudPubSub{
			client: client,
			topics: map[string]*pubsub.Topic{},
			logger: mylog.New("mypubsub"),
		}, func() {
			client.Close()
		}, nil
}

func (ps *gcloudPubSub) CreateTopic(c context.Context, topicName string) error {
	topic := ps.client.Topic(topicName)
	exists, err := topic.Exists(c)
	if err != nil {
		return fmt.Errorf("error checking if topic %s exists: %w", topicName, err)
	}

	if !exists {
		topic, err = ps.client.CreateTopic(c, topicName)
		if err != nil {
			return fmt.Errorf("error creating topic %s: %w", topicName, err)
		}
		ps.logger.Log(c, topicName, mylog.SeverityInfo, "Created topic %s", topicName)
	}

	ps.Lock()
	ps.topics[topicName] = topic
	ps.Unlock()

	return nil
}

func (ps *gcloudPubSub) topic(topicName string) *pubsub.Topic {
	ps.Lock()
	defer ps.Unlock()

	topic, found := ps.topics[topicName]
	if !found {
		topic = ps.client.Topic(topicName)
		ps.topics[topicName] = topic
	}
	return topic
}

func (ps *gcloudPubSub) Publish(c context.Context, topicName string, data string) error {
	_, err := ps.topic(topicName).Publish(c, &pubsub.Message{Data: []byte(data)}).Get(c)
	if err != nil {
		return fmt.Errorf("error publishing event on topic %s: %w", topicName, err)
	}

	return nil
}
