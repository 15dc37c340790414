package mypubsub

import "context"

//go:generate mockgen -source=pubsub_api.go -package mypubsub -destination pubsub_mock.go PubSub
type PubSub interface {
	CreateTopic(c context.Context, topic string) error
	Publish(c context.Context, topic string, data string) error
}

// New uses Cloud Pub/Sub when a project is given, a logging fake otherwise
func New(c context.Context, projectID string) (PubSub, func(), error) {
	if projectID != "" {
		return newGcloudPubSub(c, projectID)
	}
	return newFakePubSub(), func() {}, nil
}
