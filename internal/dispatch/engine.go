package dispatch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/SumitJoshiGIT/distributed-task-runner/internal/heartbeat"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/repository"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/wallet"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/logging"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/types"
)

const (
	DefaultLeaseTTL    = 20 * time.Minute
	DefaultMaxBuckets  = 10
	DefaultBucketBytes = 1 << 20 // 1 MiB
	DefaultFeePercent  = 10.0
)

// Config carries the engine knobs.
type Config struct {
	LeaseTTL            time.Duration
	DefaultMaxBuckets   int
	DefaultBucketBytes  int64
	DefaultFeePercent   float64
	DisableBudgetChecks bool
}

func DefaultConfig() Config {
	return Config{
		LeaseTTL:           DefaultLeaseTTL,
		DefaultMaxBuckets:  DefaultMaxBuckets,
		DefaultBucketBytes: DefaultBucketBytes,
		DefaultFeePercent:  DefaultFeePercent,
	}
}

// DataSource provides a task's immutable input items and owns the on-disk
// artifacts tied to a task id.
type DataSource interface {
	Items(ctx context.Context, task *types.TaskData) ([]json.RawMessage, error)
	Remove(taskID string) error
}

// EventSink receives engine notifications. Callbacks are invoked while the
// task's writer lock is held and must not block.
type EventSink interface {
	TaskStatusChanged(taskID string, oldStatus, newStatus types.TaskStatus)
	TaskProgress(taskID string, progress float64, processedItems int)
	BucketFinished(taskID string, bucketIndex int, status types.BucketStatus)
	PayoutIssued(taskID string, bucketIndex int, workerShare, platformShare float64)
}

// Engine is the dispatch and accounting core: it plans buckets, grants and
// sweeps leases, merges progress into results, and settles payouts. Every
// mutation of a task runs under that task's writer lock.
type Engine struct {
	store     *repository.Store
	wallet    *wallet.Service
	heartbeat *heartbeat.Tracker
	data      DataSource
	events    EventSink
	cfg       Config
	logger    logging.Logger
	locks     *taskLocks
	now       func() time.Time
}

func NewEngine(store *repository.Store, walletSvc *wallet.Service, tracker *heartbeat.Tracker, data DataSource, cfg Config, logger logging.Logger) *Engine {
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = DefaultLeaseTTL
	}
	if cfg.DefaultMaxBuckets <= 0 {
		cfg.DefaultMaxBuckets = DefaultMaxBuckets
	}
	if cfg.DefaultBucketBytes <= 0 {
		cfg.DefaultBucketBytes = DefaultBucketBytes
	}
	return &Engine{
		store:     store,
		wallet:    walletSvc,
		heartbeat: tracker,
		data:      data,
		cfg:       cfg,
		logger:    logger,
		locks:     newTaskLocks(),
		now:       time.Now,
	}
}

// SetEventSink attaches the notification sink. Pass nil to detach.
func (e *Engine) SetEventSink(sink EventSink) {
	e.events = sink
}

// Heartbeat exposes the liveness tracker to the API surface.
func (e *Engine) Heartbeat() *heartbeat.Tracker {
	return e.heartbeat
}

func (e *Engine) emitStatusChanged(taskID string, oldStatus, newStatus types.TaskStatus) {
	if e.events != nil && oldStatus != newStatus {
		e.events.TaskStatusChanged(taskID, oldStatus, newStatus)
	}
}

func (e *Engine) emitProgress(taskID string, progress float64, processedItems int) {
	if e.events != nil {
		e.events.TaskProgress(taskID, progress, processedItems)
	}
}

func (e *Engine) emitBucketFinished(taskID string, bucketIndex int, status types.BucketStatus) {
	if e.events != nil {
		e.events.BucketFinished(taskID, bucketIndex, status)
	}
}

func (e *Engine) emitPayout(taskID string, bucketIndex int, workerShare, platformShare float64) {
	if e.events != nil {
		e.events.PayoutIssued(taskID, bucketIndex, workerShare, platformShare)
	}
}
