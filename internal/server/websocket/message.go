package websocket

import "time"

// Message is the envelope sent to connected clients.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

const (
	MessageTypeTaskStatus   = "task_status_changed"
	MessageTypeTaskProgress = "task_progress"
	MessageTypeBucketResult = "bucket_finished"
	MessageTypePayout       = "payout_issued"
)

// TaskEventData is the payload for task-scoped events.
type TaskEventData struct {
	TaskID         string  `json:"taskId"`
	OldStatus      string  `json:"oldStatus,omitempty"`
	NewStatus      string  `json:"newStatus,omitempty"`
	BucketIndex    *int    `json:"bucketIndex,omitempty"`
	BucketStatus   string  `json:"bucketStatus,omitempty"`
	Progress       float64 `json:"progress,omitempty"`
	ProcessedItems int     `json:"processedItems,omitempty"`
	WorkerShare    float64 `json:"workerShare,omitempty"`
	PlatformShare  float64 `json:"platformShare,omitempty"`
}
