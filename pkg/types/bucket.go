package types

import "time"

type BucketStatus string

const (
	BucketStatusProcessing BucketStatus = "processing"
	BucketStatusCompleted  BucketStatus = "completed"
	BucketStatusFailed     BucketStatus = "failed"
	BucketStatusSkipped    BucketStatus = "skipped"
)

// IsTerminal reports whether the bucket is no longer in flight.
func (s BucketStatus) IsTerminal() bool {
	return s == BucketStatusCompleted || s == BucketStatusFailed || s == BucketStatusSkipped
}

const (
	// MaxItemResultsStored caps the per-bucket item result list.
	MaxItemResultsStored = 200
	// ItemPreviewLimit caps stored input previews and outputs, in bytes.
	ItemPreviewLimit = 240
)

type ItemStatus string

const (
	ItemStatusCompleted ItemStatus = "completed"
	ItemStatusFailed    ItemStatus = "failed"
	ItemStatusSkipped   ItemStatus = "skipped"
)

// ItemResult is one per-item record inside a bucket result. GlobalIndex is
// derived as rangeStart + localIndex.
type ItemResult struct {
	LocalIndex   int        `json:"localIndex"`
	GlobalIndex  int        `json:"globalIndex"`
	Status       ItemStatus `json:"status"`
	InputPreview string     `json:"inputPreview,omitempty"`
	Output       string     `json:"output,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// BucketResult is keyed by (taskId, bucketIndex). Once PayoutIssued is set
// the record is immutable except for display fields.
type BucketResult struct {
	TaskID      string       `json:"taskId"`
	BucketIndex int          `json:"bucketIndex"`
	RangeStart  int          `json:"rangeStart"`
	RangeEnd    int          `json:"rangeEnd"`
	ItemsCount  int          `json:"itemsCount"`
	Status      BucketStatus `json:"status"`

	ProcessedItems int    `json:"processedItems"`
	BytesUsed      int64  `json:"bytesUsed"`
	WorkerID       string `json:"workerId"`

	ItemResults          []ItemResult `json:"itemResults"`
	ItemResultsTotal     int          `json:"itemResultsTotal"`
	ItemResultsTruncated bool         `json:"itemResultsTruncated"`

	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`

	PayoutIssued bool       `json:"payoutIssued"`
	PayoutAt     *time.Time `json:"payoutAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Overlaps reports whether the half-open ranges of two results intersect.
func (r *BucketResult) Overlaps(start, end int) bool {
	return r.RangeStart < end && start < r.RangeEnd
}

// BucketAssignment is the exclusive lease of one bucket to one worker. It
// exists only while the bucket is in flight.
type BucketAssignment struct {
	TaskID      string    `json:"taskId"`
	BucketIndex int       `json:"bucketIndex"`
	WorkerID    string    `json:"workerId"`
	AssignedAt  time.Time `json:"assignedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`

	RangeStart int `json:"rangeStart"`
	RangeEnd   int `json:"rangeEnd"`

	ProcessedCount   int   `json:"processedCount"`
	ProgressRangeEnd int   `json:"progressRangeEnd"`
	BytesUsed        int64 `json:"bytesUsed"`
	LastBatchOffset  int   `json:"lastBatchOffset"`
	LastBatchSize    int   `json:"lastBatchSize"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// Expired reports whether the lease TTL has passed at the given time.
func (a *BucketAssignment) Expired(now time.Time) bool {
	return a.ExpiresAt.Before(now)
}

// Overlaps reports whether the lease range intersects [start, end).
func (a *BucketAssignment) Overlaps(start, end int) bool {
	return a.RangeStart < end && start < a.RangeEnd
}
