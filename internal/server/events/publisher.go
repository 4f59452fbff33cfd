package events

import (
	"context"
	"time"

	"github.com/SumitJoshiGIT/distributed-task-runner/internal/server/metrics"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/server/websocket"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/logging"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/redis"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/types"
)

// EventStream is the Redis stream external consumers read task events from.
const EventStream = "taskrunner:events"

// Publisher fans engine events out to WebSocket clients, the optional Redis
// stream, and the dispatch metrics. It implements dispatch.EventSink and
// must never block: callbacks fire on the request path.
type Publisher struct {
	hub    *websocket.Hub
	redis  *redis.Client
	logger logging.Logger
}

// NewPublisher creates a task event publisher. redisClient may be nil.
func NewPublisher(hub *websocket.Hub, redisClient *redis.Client, logger logging.Logger) *Publisher {
	return &Publisher{
		hub:    hub,
		redis:  redisClient,
		logger: logger,
	}
}

func (p *Publisher) TaskStatusChanged(taskID string, oldStatus, newStatus types.TaskStatus) {
	p.hub.Broadcast(websocket.MessageTypeTaskStatus, &websocket.TaskEventData{
		TaskID:    taskID,
		OldStatus: string(oldStatus),
		NewStatus: string(newStatus),
	})
	p.toStream(map[string]interface{}{
		"event":  websocket.MessageTypeTaskStatus,
		"taskId": taskID,
		"old":    string(oldStatus),
		"new":    string(newStatus),
	})
	p.logger.Infof("Task %s status changed: %s -> %s", taskID, oldStatus, newStatus)
}

func (p *Publisher) TaskProgress(taskID string, progress float64, processedItems int) {
	p.hub.Broadcast(websocket.MessageTypeTaskProgress, &websocket.TaskEventData{
		TaskID:         taskID,
		Progress:       progress,
		ProcessedItems: processedItems,
	})
}

func (p *Publisher) BucketFinished(taskID string, bucketIndex int, status types.BucketStatus) {
	metrics.BucketsFinishedTotal.WithLabelValues(string(status)).Inc()
	p.hub.Broadcast(websocket.MessageTypeBucketResult, &websocket.TaskEventData{
		TaskID:       taskID,
		BucketIndex:  &bucketIndex,
		BucketStatus: string(status),
	})
	p.toStream(map[string]interface{}{
		"event":       websocket.MessageTypeBucketResult,
		"taskId":      taskID,
		"bucketIndex": bucketIndex,
		"status":      string(status),
	})
}

func (p *Publisher) PayoutIssued(taskID string, bucketIndex int, workerShare, platformShare float64) {
	metrics.PayoutsIssuedTotal.Inc()
	metrics.PayoutAmountTotal.WithLabelValues("worker").Add(workerShare)
	metrics.PayoutAmountTotal.WithLabelValues("platform").Add(platformShare)
	p.hub.Broadcast(websocket.MessageTypePayout, &websocket.TaskEventData{
		TaskID:        taskID,
		BucketIndex:   &bucketIndex,
		WorkerShare:   workerShare,
		PlatformShare: platformShare,
	})
	p.toStream(map[string]interface{}{
		"event":         websocket.MessageTypePayout,
		"taskId":        taskID,
		"bucketIndex":   bucketIndex,
		"workerShare":   workerShare,
		"platformShare": platformShare,
	})
}

// toStream appends the event to the Redis stream in the background; a lost
// event is logged, never surfaced.
func (p *Publisher) toStream(values map[string]interface{}) {
	if p.redis == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if _, err := p.redis.XAdd(ctx, EventStream, values); err != nil {
			p.logger.Warnf("Failed to publish event to Redis stream: %v", err)
		}
	}()
}
