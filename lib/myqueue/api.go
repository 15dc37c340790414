package myqueue

import (
	"context"
	"net/http"
)

type Task struct {
	UID            string
	WebhookURLPath string
	Payload        []byte
}

//go:generate mockgen -source=api.go -package myqueue -destination queuer_mock.go TaskQueuer
type TaskQueuer interface {
	Enqueue(c context.Context, task Task) error
}

// New uses Cloud Tasks when a project is given. Without one, tasks are delivered in-process.
func New(c context.Context, projectID, locationID, queueName string, handler http.Handler) (TaskQueuer, func(), error) {
	if projectID != "" {
		return newGcloudQueue(c, projectID, locationID, queueName)
	}
	return newLocalQueue(handler), func() {}, nil
}
