package types

import (
	"encoding/json"

	"github.com/SumitJoshiGIT/distributed-task-runner/internal/dispatch"
)

// Wallet requests

type WalletAmountRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

type CreateCheckoutSessionRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

// CheckoutWebhookRequest is the (simplified) completed-checkout event
// delivered by the external payment provider.
type CheckoutWebhookRequest struct {
	Type      string  `json:"type" binding:"required"`
	SessionID string  `json:"sessionId" binding:"required"`
	Amount    float64 `json:"amount" binding:"required"`
}

// Worker requests

type NextChunkRequest struct {
	TaskID string `json:"taskId" binding:"required"`
}

type NextChunkResponse struct {
	OK          bool              `json:"ok"`
	BucketIndex int               `json:"bucketIndex"`
	ChunkData   []json.RawMessage `json:"chunkData"`
	RangeStart  int               `json:"rangeStart"`
	RangeEnd    int               `json:"rangeEnd"`
	BucketBytes int64             `json:"bucketBytes"`
	Resume      bool              `json:"resume,omitempty"`
}

type RecordProgressRequest struct {
	TaskID         string                  `json:"taskId" binding:"required"`
	BucketIndex    *int                    `json:"bucketIndex" binding:"required"`
	RangeStart     int                     `json:"rangeStart"`
	ItemsProcessed int                     `json:"itemsProcessed"`
	TotalItems     int                     `json:"totalItems"`
	BytesUsed      int64                   `json:"bytesUsed"`
	Items          []dispatch.ProgressItem `json:"items"`
	BatchOffset    int                     `json:"batchOffset"`
	BatchSize      int                     `json:"batchSize"`
}

type RecordChunkRequest struct {
	TaskID         string                  `json:"taskId" binding:"required"`
	BucketIndex    *int                    `json:"bucketIndex" binding:"required"`
	Status         string                  `json:"status"`
	RangeStart     int                     `json:"rangeStart"`
	RangeEnd       int                     `json:"rangeEnd"`
	ItemsCount     int                     `json:"itemsCount"`
	ItemResults    []dispatch.ProgressItem `json:"itemResults"`
	ProcessedItems int                     `json:"processedItems"`
	Output         string                  `json:"output"`
	Error          string                  `json:"error"`
}
