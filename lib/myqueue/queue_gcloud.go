package myqueue

import (
	"context"
	"fmt"
	"time"

	cloudtasks "cloud.google.com/go/cloudtasks/apiv2"
	taskspb "cloud.google.com/go/cloudtasks/apiv2/cloudtaskspb"
	grpcCodes "google.golang.org/grpc/codes"
	grpcStatus "google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/MarcGrol/agencyportal/lib/mylog"
)

const scheduleDelay = 2 * time.Second

type gcloudTaskQueue struct {
	client    *cloudtasks.Client
	queuePath string
	logger    mylog.Logger
}

func newGcloudQueue(c context.Context, projectID, locationID, queueName string) (*gcloudTaskQueue, func(), error) {
	cloudTaskClient, err := cloudtasks.NewClient(c)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating cloudtask-client: %w", err)
	}
	return &gcloudTaskQueue{
			client:    cloudTaskClient,
			queuePath: composeQueueName(projectID, locationID, queueName),
			logger:    mylog.New("myqueue"),
		}, func() {
			cloudTaskClient.Close()
		}, nil
}

func (q *gcloudTaskQueue) Enqueue(c context.Context, task Task) error {
	taskName := composeTaskName(q.queuePath, task.UID)
	_, err := q.client.CreateTask(c, &taskspb.CreateTaskRequest{
		Parent: q.queuePath,
		Task: &taskspb.Task{
			Name:         taskName, // de-duplicate
			ScheduleTime: timestamppb.New(time.Now().Add(scheduleDelay)),
			MessageType: &taskspb.Task_AppEngineHttpRequest{
				AppEngineHttpRequest: &taskspb.AppEngineHttpRequest{
					HttpMethod:  taskspb.HttpMethod_PUT,
					RelativeUri: task.WebhookURLPath,
					Body:        task.Payload,
				},
			},
			View: taskspb.Task_FULL,
		},
	})
	if err != nil {
		rsp, ok := grpcStatus.FromError(err)
		if ok && rsp.Code() == grpcCodes.AlreadyExists {
			q.logger.Log(c, task.UID, mylog.SeverityInfo, "Task %s already exists -> ignore", taskName)
			return nil
		}
		return fmt.Errorf("error submitting task to queue: %w", err)
	}
	return nil
}

func composeQueueName(projectID, locationID, queueName string) string {
	if queueName == "" {
		queueName = "default"
	}
	return fmt.Sprintf("projects/%s/locations/%s/queues/%s", projectID, locationID, queueName)
}

func composeTaskName(queuePath, taskUID string) string {
	return fmt.Sprintf("%s/tasks/%s", queuePath, taskUID)
}
