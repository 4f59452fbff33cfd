package types

import "time"

type TaskStatus string

const (
	TaskStatusQueued     TaskStatus = "queued"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// BucketConfig bounds how a task's input items are partitioned. The planner
// may enlarge MaxBucketBytes and shrink MaxBuckets, never the other way.
type BucketConfig struct {
	MaxBuckets     int   `json:"maxBuckets"`
	MaxBucketBytes int64 `json:"maxBucketBytes"`
}

type TaskData struct {
	ID                 string       `json:"id"`
	CreatorID          string       `json:"creatorId"`
	Name               string       `json:"name"`
	CapabilityRequired string       `json:"capabilityRequired"`
	Status             TaskStatus   `json:"status"`
	DataItemsRef       string       `json:"dataItemsRef"`
	TotalItems         int          `json:"totalItems"`
	BucketConfig       BucketConfig `json:"bucketConfig"`
	NextBucketIndex    int          `json:"nextBucketIndex"`
	AssignedWorkers    []string     `json:"assignedWorkers"`
	Revoked            bool         `json:"revoked"`

	// Budget block
	CostPerBucket      float64 `json:"costPerBucket"`
	MaxBillableBuckets int     `json:"maxBillableBuckets"`
	BudgetTotal        float64 `json:"budgetTotal"`
	ChunksPaid         int     `json:"chunksPaid"`
	BudgetSpent        float64 `json:"budgetSpent"`
	PlatformFeePercent float64 `json:"platformFeePercent"`

	// Derived on read from chunk results, never a source of truth.
	ProcessedBuckets int     `json:"processedBuckets"`
	ProcessedItems   int     `json:"processedItems"`
	Progress         float64 `json:"progress"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasWorker reports whether workerID has opted in to this task.
func (t *TaskData) HasWorker(workerID string) bool {
	for _, w := range t.AssignedWorkers {
		if w == workerID {
			return true
		}
	}
	return false
}
