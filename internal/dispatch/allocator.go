package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/SumitJoshiGIT/distributed-task-runner/internal/repository"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/types"
)

// Denial reasons returned to workers on the wire. Non-fatal: the worker is
// expected to back off and retry.
const (
	ReasonNotFound          = "not-found"
	ReasonRevoked           = "revoked"
	ReasonNotAssigned       = "not-assigned"
	ReasonBudgetExhausted   = "budget-exhausted"
	ReasonInsufficientFunds = "insufficient-funds"
	ReasonNoChunk           = "no-chunk"
)

// NextBucketGrant is a granted (or resumed) bucket lease plus the literal
// item slice so the worker need not re-read the source file.
type NextBucketGrant struct {
	BucketIndex int
	RangeStart  int
	RangeEnd    int
	Items       []json.RawMessage
	BucketBytes int64
	Resume      bool
}

// NextBucket grants a bucket lease to a worker, resuming the worker's live
// lease when one exists. A non-empty reason means the request was denied;
// err is reserved for persistence failures.
func (e *Engine) NextBucket(ctx context.Context, taskID, workerID string) (*NextBucketGrant, string, error) {
	unlock := e.locks.lock(taskID)
	defer unlock()

	task, err := e.store.Tasks.GetByID(ctx, taskID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ReasonNotFound, nil
	}
	if err != nil {
		return nil, "", err
	}
	if task.Revoked {
		return nil, ReasonRevoked, nil
	}
	if !task.HasWorker(workerID) {
		return nil, ReasonNotAssigned, nil
	}

	now := e.now()

	assignments, err := e.store.Assignments.ListByTask(ctx, taskID)
	if err != nil {
		return nil, "", err
	}

	// Lazy expiry: drop stale leases before anything else looks at them.
	live := assignments[:0]
	for _, a := range assignments {
		if a.Expired(now) {
			if err := e.store.Assignments.Delete(ctx, taskID, a.BucketIndex); err != nil {
				return nil, "", err
			}
			continue
		}
		live = append(live, a)
	}

	results, err := e.store.Results.ListByTask(ctx, taskID)
	if err != nil {
		return nil, "", err
	}
	terminal := make(map[int]bool, len(results))
	for _, r := range results {
		if r.Status.IsTerminal() {
			terminal[r.BucketIndex] = true
		}
	}

	// Resume: one live lease per (task, worker); oldest wins, the rest are
	// discarded as duplicates from a crashed reconnect.
	var resume *types.BucketAssignment
	for _, a := range live {
		if a.WorkerID != workerID || terminal[a.BucketIndex] {
			continue
		}
		if resume == nil || a.AssignedAt.Before(resume.AssignedAt) {
			resume = a
		}
	}
	if resume != nil {
		for _, a := range live {
			if a.WorkerID == workerID && a.BucketIndex != resume.BucketIndex && !terminal[a.BucketIndex] {
				if err := e.store.Assignments.Delete(ctx, taskID, a.BucketIndex); err != nil {
					return nil, "", err
				}
			}
		}

		resume.ExpiresAt = now.Add(e.cfg.LeaseTTL)
		resume.UpdatedAt = now
		if err := e.store.Assignments.Upsert(ctx, resume); err != nil {
			return nil, "", err
		}

		items, err := e.data.Items(ctx, task)
		if err != nil {
			return nil, "", err
		}
		return &NextBucketGrant{
			BucketIndex: resume.BucketIndex,
			RangeStart:  resume.RangeStart,
			RangeEnd:    resume.RangeEnd,
			Items:       sliceItems(items, resume.RangeStart, resume.RangeEnd),
			BucketBytes: resume.BytesUsed,
			Resume:      true,
		}, "", nil
	}

	if !e.cfg.DisableBudgetChecks {
		activeLeases := 0
		for _, a := range live {
			if !terminal[a.BucketIndex] {
				activeLeases++
			}
		}
		if task.ChunksPaid+activeLeases >= task.MaxBillableBuckets {
			return nil, ReasonBudgetExhausted, nil
		}

		customer, err := e.store.Users.GetBySession(ctx, task.CreatorID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ReasonInsufficientFunds, nil
		}
		if err != nil {
			return nil, "", err
		}
		if customer.WalletBalance < task.CostPerBucket {
			return nil, ReasonInsufficientFunds, nil
		}
	}

	items, err := e.data.Items(ctx, task)
	if err != nil {
		return nil, "", err
	}

	taskDirty := false
	if task.TotalItems != len(items) {
		task.TotalItems = len(items)
		taskDirty = true
	}

	if normalized := normalizeBucketConfig(task.BucketConfig, largestItemSize(items)); normalized != task.BucketConfig {
		e.logger.Infof("Task %s bucket config normalised to maxBuckets=%d maxBucketBytes=%d",
			task.ID, normalized.MaxBuckets, normalized.MaxBucketBytes)
		task.BucketConfig = normalized
		taskDirty = true
	}

	covered := make([]interval, 0, len(results)+len(live))
	for _, r := range results {
		if r.Status.IsTerminal() {
			covered = append(covered, interval{start: r.RangeStart, end: r.RangeEnd})
		}
	}
	for _, a := range live {
		covered = append(covered, interval{start: a.RangeStart, end: a.RangeEnd})
	}

	plan, ok := planNextBucket(items, task.BucketConfig, covered)
	if !ok {
		if taskDirty {
			if err := e.store.Tasks.Update(ctx, task); err != nil {
				return nil, "", err
			}
		}
		return nil, ReasonNoChunk, nil
	}

	bucketIndex := task.NextBucketIndex
	task.NextBucketIndex++

	oldStatus := task.Status
	if task.Status == types.TaskStatusQueued {
		task.Status = types.TaskStatusProcessing
	}

	assignment := &types.BucketAssignment{
		TaskID:           taskID,
		BucketIndex:      bucketIndex,
		WorkerID:         workerID,
		AssignedAt:       now,
		ExpiresAt:        now.Add(e.cfg.LeaseTTL),
		RangeStart:       plan.Start,
		RangeEnd:         plan.End,
		ProgressRangeEnd: plan.Start,
		BytesUsed:        plan.Bytes,
		UpdatedAt:        now,
	}
	if err := e.store.Assignments.Upsert(ctx, assignment); err != nil {
		return nil, "", err
	}
	if err := e.store.Tasks.Update(ctx, task); err != nil {
		return nil, "", err
	}

	e.emitStatusChanged(taskID, oldStatus, task.Status)
	e.logger.Debugf("Task %s bucket %d leased to %s range [%d,%d)",
		taskID, bucketIndex, workerID, plan.Start, plan.End)

	return &NextBucketGrant{
		BucketIndex: bucketIndex,
		RangeStart:  plan.Start,
		RangeEnd:    plan.End,
		Items:       sliceItems(items, plan.Start, plan.End),
		BucketBytes: plan.Bytes,
		Resume:      false,
	}, "", nil
}

// DropAssignments opts a worker out of a task and deletes its leases.
func (e *Engine) DropAssignments(ctx context.Context, taskID, workerID string) (*types.TaskData, error) {
	unlock := e.locks.lock(taskID)
	defer unlock()

	task, err := e.store.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	kept := task.AssignedWorkers[:0]
	for _, w := range task.AssignedWorkers {
		if w != workerID {
			kept = append(kept, w)
		}
	}
	task.AssignedWorkers = kept

	assignments, err := e.store.Assignments.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	for _, a := range assignments {
		if a.WorkerID == workerID {
			if err := e.store.Assignments.Delete(ctx, taskID, a.BucketIndex); err != nil {
				return nil, err
			}
		}
	}

	if err := e.store.Tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Revoke pauses a task: no new leases are granted, pending leases are
// deleted, workers are cleared. Existing results remain.
func (e *Engine) Revoke(ctx context.Context, taskID string) (*types.TaskData, error) {
	unlock := e.locks.lock(taskID)
	defer unlock()

	task, err := e.store.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	task.Revoked = true
	task.AssignedWorkers = nil
	if err := e.store.Assignments.DeleteByTask(ctx, taskID); err != nil {
		return nil, err
	}
	if err := e.store.Tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	e.logger.Infof("Task %s revoked", taskID)
	return task, nil
}

// Reinvoke re-enables claims on a revoked task. Workers must re-claim.
func (e *Engine) Reinvoke(ctx context.Context, taskID string) (*types.TaskData, error) {
	unlock := e.locks.lock(taskID)
	defer unlock()

	task, err := e.store.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	task.Revoked = false
	if err := e.store.Tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	e.logger.Infof("Task %s reinvoked", taskID)
	return task, nil
}

// SweepExpired deletes this task's leases whose TTL has passed.
func (e *Engine) SweepExpired(ctx context.Context, taskID string) (int, error) {
	unlock := e.locks.lock(taskID)
	defer unlock()
	return e.sweepExpiredLocked(ctx, taskID)
}

func (e *Engine) sweepExpiredLocked(ctx context.Context, taskID string) (int, error) {
	assignments, err := e.store.Assignments.ListByTask(ctx, taskID)
	if err != nil {
		return 0, err
	}
	now := e.now()
	removed := 0
	for _, a := range assignments {
		if a.Expired(now) {
			if err := e.store.Assignments.Delete(ctx, taskID, a.BucketIndex); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}

// SweepAllExpired runs the lease sweep across every task. Expiry detection is
// lazy on the hot path; this tick only improves reallocation latency.
func (e *Engine) SweepAllExpired(ctx context.Context) {
	tasks, err := e.store.Tasks.List(ctx)
	if err != nil {
		e.logger.Errorf("Lease sweep failed to list tasks: %v", err)
		return
	}
	for _, task := range tasks {
		removed, err := e.SweepExpired(ctx, task.ID)
		if err != nil {
			e.logger.Errorf("Lease sweep failed for task %s: %v", task.ID, err)
			continue
		}
		if removed > 0 {
			e.logger.Infof("Lease sweep removed %d expired leases from task %s", removed, task.ID)
		}
	}
}

// releaseLeasesForResult deletes the lease matching a terminal bucket result
// plus any lease overlapping its range (dedup after a crashed worker).
func (e *Engine) releaseLeasesForResult(ctx context.Context, taskID string, bucketIndex, rangeStart, rangeEnd int) error {
	if err := e.store.Assignments.Delete(ctx, taskID, bucketIndex); err != nil {
		return fmt.Errorf("failed to delete lease %d: %w", bucketIndex, err)
	}
	assignments, err := e.store.Assignments.ListByTask(ctx, taskID)
	if err != nil {
		return err
	}
	for _, a := range assignments {
		if a.Overlaps(rangeStart, rangeEnd) {
			if err := e.store.Assignments.Delete(ctx, taskID, a.BucketIndex); err != nil {
				return err
			}
		}
	}
	return nil
}

func sliceItems(items []json.RawMessage, start, end int) []json.RawMessage {
	if start < 0 {
		start = 0
	}
	if end > len(items) {
		end = len(items)
	}
	if start >= end {
		return nil
	}
	return items[start:end]
}
