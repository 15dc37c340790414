package mypubsub

import (
	"context"
	"sync"

	"github.com/MarcGrol/agencyportal/lib/mylog"
)

type fakePubSub struct {
	sync.Mutex
	logger    mylog.Logger
	published map[string][]string
}

func newFakePubSub() *fakePubSub {
	return &fakePubSub{
		logger:    mylog.New("mypubsub"),
		published: map[string][]string{},
	}
}

func (ps *fakePubSub) CreateTopic(c context.Context, topic string) error {
	return nil
}

func (ps *fakePubSub) Publish(c context.Context, topic string, data string) error {
	ps.Lock()
	defer ps.Unlock()

	ps.published[topic] = append(ps.published[topic], data)
	ps.logger.Log(c, topic, mylog.SeverityInfo, "Published on topic %s: %s", topic, data)

	return nil
}
