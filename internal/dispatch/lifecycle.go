package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/fees"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/types"
)

var (
	ErrTaskRevoked   = errors.New("task is revoked")
	ErrWorkerOffline = errors.New("worker has no recent heartbeat")
)

// CreateTaskParams is the validated input for a new task. ID may be set by
// the caller when artifacts were persisted under a pre-assigned storage id;
// otherwise one is generated.
type CreateTaskParams struct {
	ID                 string
	CreatorID          string
	Name               string
	CapabilityRequired string
	DataItemsRef       string
	TotalItems         int
	MaxBuckets         int
	MaxBucketBytes     int64
	CostPerBucket      float64
	MaxBillableBuckets int
	PlatformFeePercent float64
}

func (p *CreateTaskParams) validate() error {
	if p.CreatorID == "" {
		return errors.New("creator id is required")
	}
	if p.CostPerBucket <= 0 {
		return errors.New("costPerBucket must be positive")
	}
	if p.MaxBillableBuckets < 1 {
		return errors.New("maxBillableBuckets must be at least 1")
	}
	if p.PlatformFeePercent < 0 || p.PlatformFeePercent > 100 {
		return errors.New("platformFeePercent must be between 0 and 100")
	}
	return nil
}

// CreateTask validates the input, initialises the budget block, and stores
// the task in queued state.
func (e *Engine) CreateTask(ctx context.Context, params CreateTaskParams) (*types.TaskData, error) {
	if params.MaxBuckets <= 0 {
		params.MaxBuckets = e.cfg.DefaultMaxBuckets
	}
	if params.MaxBucketBytes <= 0 {
		params.MaxBucketBytes = e.cfg.DefaultBucketBytes
	}
	if params.PlatformFeePercent == 0 {
		params.PlatformFeePercent = e.cfg.DefaultFeePercent
	}
	if err := params.validate(); err != nil {
		return nil, err
	}

	if params.ID == "" {
		params.ID = uuid.NewString()
	}

	now := e.now().UTC()
	task := &types.TaskData{
		ID:                 params.ID,
		CreatorID:          params.CreatorID,
		Name:               params.Name,
		CapabilityRequired: params.CapabilityRequired,
		Status:             types.TaskStatusQueued,
		DataItemsRef:       params.DataItemsRef,
		TotalItems:         params.TotalItems,
		BucketConfig: types.BucketConfig{
			MaxBuckets:     params.MaxBuckets,
			MaxBucketBytes: params.MaxBucketBytes,
		},
		CostPerBucket:      params.CostPerBucket,
		MaxBillableBuckets: params.MaxBillableBuckets,
		BudgetTotal:        fees.RoundMoney(params.CostPerBucket * float64(params.MaxBillableBuckets)),
		PlatformFeePercent: params.PlatformFeePercent,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := e.store.Tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to persist task: %w", err)
	}

	e.logger.Infof("Task %s created by %s (%d items, budget %v)",
		task.ID, task.CreatorID, task.TotalItems, task.BudgetTotal)
	e.emitStatusChanged(task.ID, "", task.Status)
	return task, nil
}

// Claim opts a worker in to a task. The liveness tracker gates claims:
// workers without a recent heartbeat are refused.
func (e *Engine) Claim(ctx context.Context, taskID, workerID string) (*types.TaskData, error) {
	unlock := e.locks.lock(taskID)
	defer unlock()

	task, err := e.store.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Revoked {
		return nil, ErrTaskRevoked
	}
	if !e.heartbeat.IsOnline(workerID) {
		return nil, ErrWorkerOffline
	}

	oldStatus := task.Status
	if !task.HasWorker(workerID) {
		task.AssignedWorkers = append(task.AssignedWorkers, workerID)
	}
	if task.Status == types.TaskStatusQueued {
		task.Status = types.TaskStatusProcessing
	}

	if err := e.store.Tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	e.emitStatusChanged(taskID, oldStatus, task.Status)
	e.logger.Infof("Worker %s claimed task %s", workerID, taskID)
	return task, nil
}

// DeleteTask removes the task record and cascades to results, assignments,
// and on-disk artifacts.
func (e *Engine) DeleteTask(ctx context.Context, taskID string) error {
	unlock := e.locks.lock(taskID)
	defer unlock()

	if _, err := e.store.Tasks.GetByID(ctx, taskID); err != nil {
		return err
	}

	if err := e.store.Assignments.DeleteByTask(ctx, taskID); err != nil {
		return err
	}
	if err := e.store.Results.DeleteByTask(ctx, taskID); err != nil {
		return err
	}
	if err := e.store.Tasks.Delete(ctx, taskID); err != nil {
		return err
	}
	if err := e.data.Remove(taskID); err != nil {
		e.logger.Errorf("Failed to remove artifacts for task %s: %v", taskID, err)
	}

	e.logger.Infof("Task %s deleted", taskID)
	return nil
}

// GetTask returns a task with its derived progress fields recomputed from
// results. Reads tolerate slightly stale derived values and take no lock.
func (e *Engine) GetTask(ctx context.Context, taskID string) (*types.TaskData, error) {
	task, err := e.store.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	results, err := e.store.Results.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	computeDerived(task, results)
	return task, nil
}

// ListTasks returns all tasks, optionally filtered by status, with derived
// fields recomputed.
func (e *Engine) ListTasks(ctx context.Context, status types.TaskStatus) ([]*types.TaskData, error) {
	tasks, err := e.store.Tasks.List(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]*types.TaskData, 0, len(tasks))
	for _, task := range tasks {
		results, err := e.store.Results.ListByTask(ctx, task.ID)
		if err != nil {
			return nil, err
		}
		computeDerived(task, results)
		if status != "" && task.Status != status {
			continue
		}
		filtered = append(filtered, task)
	}
	return filtered, nil
}

// TaskResults returns a task's bucket results and live assignments.
func (e *Engine) TaskResults(ctx context.Context, taskID string) ([]*types.BucketResult, []*types.BucketAssignment, error) {
	if _, err := e.store.Tasks.GetByID(ctx, taskID); err != nil {
		return nil, nil, err
	}
	results, err := e.store.Results.ListByTask(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	assignments, err := e.store.Assignments.ListByTask(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	return results, assignments, nil
}

// computeDerived recomputes processedBuckets, processedItems and progress
// from the result set. Derived fields are never an independent source of
// truth.
func computeDerived(task *types.TaskData, results []*types.BucketResult) {
	processedBuckets := 0
	processedItems := 0
	for _, r := range results {
		if r.Status.IsTerminal() {
			processedBuckets++
		}
		items := r.ProcessedItems
		if items > r.ItemsCount {
			items = r.ItemsCount
		}
		processedItems += items
	}

	task.ProcessedBuckets = processedBuckets
	task.ProcessedItems = processedItems
	if task.TotalItems > 0 {
		progress := 100 * float64(processedItems) / float64(task.TotalItems)
		if progress > 100 {
			progress = 100
		}
		task.Progress = progress
	} else {
		task.Progress = 0
	}
}

// taskComplete reports whether every input item is covered by a terminal
// result.
func taskComplete(task *types.TaskData, results []*types.BucketResult) bool {
	if task.TotalItems == 0 {
		return false
	}
	terminalItems := 0
	for _, r := range results {
		if r.Status.IsTerminal() {
			terminalItems += r.ItemsCount
		}
	}
	return terminalItems >= task.TotalItems
}
