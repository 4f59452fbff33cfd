package dispatch

import (
	"context"
	"fmt"
	"sort"

	"github.com/SumitJoshiGIT/distributed-task-runner/internal/repository"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/types"
)

// ProgressItem is one per-item record inside a progress batch or terminal
// report. LocalIndex is relative to the bucket's range start.
type ProgressItem struct {
	LocalIndex   int              `json:"localIndex"`
	Status       types.ItemStatus `json:"status"`
	InputPreview string           `json:"inputPreview,omitempty"`
	Output       string           `json:"output,omitempty"`
	Error        string           `json:"error,omitempty"`
}

// ProgressBatch is an incremental update streamed by a worker mid-bucket.
type ProgressBatch struct {
	TaskID         string
	BucketIndex    int
	WorkerID       string
	RangeStart     int
	ItemsProcessed int
	TotalItems     int
	BytesUsed      int64
	Items          []ProgressItem
	BatchOffset    int
	BatchSize      int
}

// BucketReport is a worker's terminal result for one bucket.
type BucketReport struct {
	TaskID      string
	BucketIndex int
	WorkerID    string
	Status      types.BucketStatus
	RangeStart  int
	RangeEnd    int
	ItemsCount  int
	ItemResults []ProgressItem
	Output      string
	Error       string
}

// RecordProgress merges a streaming batch into the bucket's result. Item
// counts never regress; the stored item list stays sorted by local index and
// bounded at MaxItemResultsStored.
func (e *Engine) RecordProgress(ctx context.Context, batch ProgressBatch) (processed, total int, err error) {
	unlock := e.locks.lock(batch.TaskID)
	defer unlock()

	task, err := e.store.Tasks.GetByID(ctx, batch.TaskID)
	if err != nil {
		return 0, 0, err
	}

	result, err := e.store.Results.Get(ctx, batch.TaskID, batch.BucketIndex)
	if err != nil && err != repository.ErrNotFound {
		return 0, 0, err
	}
	if result == nil {
		now := e.now()
		result = &types.BucketResult{
			TaskID:      batch.TaskID,
			BucketIndex: batch.BucketIndex,
			RangeStart:  batch.RangeStart,
			RangeEnd:    batch.RangeStart,
			ItemsCount:  batch.TotalItems,
			Status:      types.BucketStatusProcessing,
			WorkerID:    batch.WorkerID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}
	if result.Status.IsTerminal() || result.PayoutIssued {
		// A late batch after the terminal report changes nothing.
		return result.ProcessedItems, result.ItemsCount, nil
	}

	if batch.ItemsProcessed > result.ProcessedItems {
		result.ProcessedItems = batch.ItemsProcessed
	}
	if end := batch.RangeStart + batch.ItemsProcessed; end > result.RangeEnd {
		result.RangeEnd = end
	}
	if batch.TotalItems > result.ItemsCount {
		result.ItemsCount = batch.TotalItems
	}
	if batch.BytesUsed > 0 {
		bytesUsed := batch.BytesUsed
		if bytesUsed > task.BucketConfig.MaxBucketBytes {
			bytesUsed = task.BucketConfig.MaxBucketBytes
		}
		result.BytesUsed = bytesUsed
	}
	result.WorkerID = batch.WorkerID
	mergeItemResults(result, result.RangeStart, batch.Items)
	result.UpdatedAt = e.now()

	if err := e.store.Results.Upsert(ctx, result); err != nil {
		return 0, 0, err
	}

	// Keep the live lease's progress fields in step so a resumed worker can
	// pick up from the last acknowledged batch.
	assignment, err := e.store.Assignments.Get(ctx, batch.TaskID, batch.BucketIndex)
	if err == nil {
		if batch.ItemsProcessed > assignment.ProcessedCount {
			assignment.ProcessedCount = batch.ItemsProcessed
		}
		if result.RangeEnd > assignment.ProgressRangeEnd {
			assignment.ProgressRangeEnd = result.RangeEnd
		}
		if result.BytesUsed > 0 {
			assignment.BytesUsed = result.BytesUsed
		}
		assignment.LastBatchOffset = batch.BatchOffset
		assignment.LastBatchSize = batch.BatchSize
		assignment.UpdatedAt = e.now()
		if err := e.store.Assignments.Upsert(ctx, assignment); err != nil {
			return 0, 0, err
		}
	} else if err != repository.ErrNotFound {
		return 0, 0, err
	}

	if results, err := e.store.Results.ListByTask(ctx, batch.TaskID); err == nil {
		computeDerived(task, results)
		e.emitProgress(task.ID, task.Progress, task.ProcessedItems)
	}

	return result.ProcessedItems, result.ItemsCount, nil
}

// RecordBucket installs a worker's terminal result, releases the lease,
// deduplicates overlapping results, settles the payout, and recomputes task
// completion.
func (e *Engine) RecordBucket(ctx context.Context, report BucketReport) (*PayoutInfo, error) {
	unlock := e.locks.lock(report.TaskID)
	defer unlock()

	task, err := e.store.Tasks.GetByID(ctx, report.TaskID)
	if err != nil {
		return nil, err
	}

	result, err := e.store.Results.Get(ctx, report.TaskID, report.BucketIndex)
	if err != nil && err != repository.ErrNotFound {
		return nil, err
	}
	if result != nil && result.PayoutIssued {
		// Retried terminal update after settlement: nothing to redo.
		return nil, nil
	}

	rangeStart, rangeEnd := report.RangeStart, report.RangeEnd
	if rangeEnd <= rangeStart && result != nil && result.RangeEnd > result.RangeStart {
		rangeStart, rangeEnd = result.RangeStart, result.RangeEnd
	}
	if rangeEnd <= rangeStart {
		if assignment, err := e.store.Assignments.Get(ctx, report.TaskID, report.BucketIndex); err == nil {
			rangeStart, rangeEnd = assignment.RangeStart, assignment.RangeEnd
		}
	}

	itemsCount := report.ItemsCount
	if itemsCount <= 0 {
		itemsCount = rangeEnd - rangeStart
	}

	now := e.now()
	if result == nil {
		result = &types.BucketResult{
			TaskID:      report.TaskID,
			BucketIndex: report.BucketIndex,
			CreatedAt:   now,
		}
	}
	result.RangeStart = rangeStart
	result.RangeEnd = rangeEnd
	result.ItemsCount = itemsCount
	result.Status = terminalStatus(report)
	result.ProcessedItems = itemsCount
	result.WorkerID = report.WorkerID
	result.Output = truncateText(report.Output)
	result.Error = truncateText(report.Error)
	result.UpdatedAt = now
	if len(report.ItemResults) > 0 {
		result.ItemResults = nil
		result.ItemResultsTotal = 0
		result.ItemResultsTruncated = false
		mergeItemResults(result, rangeStart, report.ItemResults)
	}

	if err := e.store.Results.Upsert(ctx, result); err != nil {
		return nil, err
	}

	if err := e.releaseLeasesForResult(ctx, report.TaskID, report.BucketIndex, rangeStart, rangeEnd); err != nil {
		return nil, err
	}

	// Range-based dedup: a crashed worker may have left a second result
	// covering the same items. Settled results are immutable and stay.
	others, err := e.store.Results.ListByTask(ctx, report.TaskID)
	if err != nil {
		return nil, err
	}
	for _, other := range others {
		if other.BucketIndex == result.BucketIndex || other.PayoutIssued {
			continue
		}
		if other.Overlaps(rangeStart, rangeEnd) {
			if err := e.store.Results.Delete(ctx, report.TaskID, other.BucketIndex); err != nil {
				return nil, err
			}
		}
	}

	payout, err := e.settlePayout(ctx, task, result)
	if err != nil {
		return nil, fmt.Errorf("payout for task %s bucket %d: %w", task.ID, result.BucketIndex, err)
	}

	results, err := e.store.Results.ListByTask(ctx, report.TaskID)
	if err != nil {
		return nil, err
	}
	computeDerived(task, results)

	oldStatus := task.Status
	if taskComplete(task, results) {
		task.Status = types.TaskStatusCompleted
	}

	if err := e.store.Tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	e.emitBucketFinished(task.ID, result.BucketIndex, result.Status)
	if payout != nil {
		e.emitPayout(task.ID, result.BucketIndex, payout.WorkerShare, payout.PlatformShare)
	}
	e.emitStatusChanged(task.ID, oldStatus, task.Status)
	e.emitProgress(task.ID, task.Progress, task.ProcessedItems)

	return payout, nil
}

// terminalStatus derives the bucket status from the item outcomes: failed if
// any item failed, else completed if any item completed, else skipped.
func terminalStatus(report BucketReport) types.BucketStatus {
	if len(report.ItemResults) == 0 {
		if report.Status.IsTerminal() {
			return report.Status
		}
		return types.BucketStatusSkipped
	}
	anyCompleted := false
	for _, item := range report.ItemResults {
		switch item.Status {
		case types.ItemStatusFailed:
			return types.BucketStatusFailed
		case types.ItemStatusCompleted:
			anyCompleted = true
		}
	}
	if anyCompleted {
		return types.BucketStatusCompleted
	}
	return types.BucketStatusSkipped
}

// mergeItemResults upserts incoming items keyed by local index, keeps the
// list sorted, and truncates from the front past MaxItemResultsStored.
func mergeItemResults(result *types.BucketResult, rangeStart int, incoming []ProgressItem) {
	if len(incoming) == 0 {
		return
	}

	truncatedBefore := result.ItemResultsTotal - len(result.ItemResults)
	if truncatedBefore < 0 {
		truncatedBefore = 0
	}

	byLocal := make(map[int]types.ItemResult, len(result.ItemResults)+len(incoming))
	for _, item := range result.ItemResults {
		byLocal[item.LocalIndex] = item
	}
	for _, item := range incoming {
		byLocal[item.LocalIndex] = types.ItemResult{
			LocalIndex:   item.LocalIndex,
			GlobalIndex:  rangeStart + item.LocalIndex,
			Status:       item.Status,
			InputPreview: truncateText(item.InputPreview),
			Output:       truncateText(item.Output),
			Error:        item.Error,
		}
	}

	merged := make([]types.ItemResult, 0, len(byLocal))
	for _, item := range byLocal {
		merged = append(merged, item)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].LocalIndex < merged[j].LocalIndex })

	total := truncatedBefore + len(merged)
	if len(merged) > types.MaxItemResultsStored {
		merged = merged[len(merged)-types.MaxItemResultsStored:]
	}

	result.ItemResults = merged
	result.ItemResultsTotal = total
	result.ItemResultsTruncated = total > len(merged)
}

// truncateText bounds stored previews and outputs, appending a visible
// marker with the dropped length.
func truncateText(s string) string {
	if len(s) <= types.ItemPreviewLimit {
		return s
	}
	dropped := len(s) - types.ItemPreviewLimit
	return s[:types.ItemPreviewLimit] + fmt.Sprintf("... (+%d chars)", dropped)
}
