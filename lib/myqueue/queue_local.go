package myqueue

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/MarcGrol/agencyportal/lib/mylog"
)

// localQueue delivers a task synchronously to the given handler, emulating the
// PUT that Cloud Tasks would do.
type localQueue struct {
	handler http.Handler
	logger  mylog.Logger
}

func newLocalQueue(handler http.Handler) *localQueue {
	return &localQueue{
		handler: handler,
		logger:  mylog.New("myqueue"),
	}
}

func (q *localQueue) Enqueue(c context.Context, task Task) error {
	if q.handler == nil {
		q.logger.Log(c, task.UID, mylog.SeverityInfo, "No handler: dropped task for %s", task.WebhookURLPath)
		return nil
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPut, task.WebhookURLPath, bytes.NewReader(task.Payload))
	if err != nil {
		return fmt.Errorf("error creating task-request for %s: %w", task.WebhookURLPath, err)
	}

	rec := httptest.NewRecorder()
	q.handler.ServeHTTP(rec, req)
	if rec.Code >= 300 {
		return fmt.Errorf("task %s for %s failed with status %d", task.UID, task.WebhookURLPath, rec.Code)
	}

	q.logger.Log(c, task.UID, mylog.SeverityInfo, "Delivered task to %s", task.WebhookURLPath)

	return nil
}
