package dispatch

import (
	"context"
	"errors"

	"github.com/SumitJoshiGIT/distributed-task-runner/internal/wallet"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/fees"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/types"
)

// PayoutInfo describes one settled bucket: the customer debit and its split.
type PayoutInfo struct {
	Cost          float64 `json:"cost"`
	WorkerShare   float64 `json:"workerShare"`
	PlatformShare float64 `json:"platformShare"`
}

// settlePayout moves money for one completed bucket: customer debit, worker
// credit, platform accrual. Runs under the task's writer lock. A missing or
// underfunded customer account is swallowed: the result stays completed
// without payoutIssued and settles on a later terminal retry.
func (e *Engine) settlePayout(ctx context.Context, task *types.TaskData, result *types.BucketResult) (*PayoutInfo, error) {
	if result.Status != types.BucketStatusCompleted || result.PayoutIssued {
		return nil, nil
	}
	if task.ChunksPaid >= task.MaxBillableBuckets {
		return nil, nil
	}

	customer, err := e.wallet.GetBySession(ctx, task.CreatorID)
	if errors.Is(err, wallet.ErrUserNotFound) {
		e.logger.Warnf("Payout skipped for task %s bucket %d: customer account %s missing",
			task.ID, result.BucketIndex, task.CreatorID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cost := task.CostPerBucket
	platformShare, workerShare := fees.Split(cost, task.PlatformFeePercent)
	meta := types.TransactionMeta{TaskID: task.ID, ChunkIndex: &result.BucketIndex}

	_, _, err = e.wallet.Adjust(ctx, customer.ID, -cost, types.TxChunkDebit, meta)
	if errors.Is(err, wallet.ErrInsufficientFunds) {
		e.logger.Warnf("Payout skipped for task %s bucket %d: customer balance below %v",
			task.ID, result.BucketIndex, cost)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	worker, err := e.wallet.EnsureWorker(ctx, result.WorkerID)
	if err != nil {
		return nil, err
	}
	if _, _, err := e.wallet.Adjust(ctx, worker.ID, workerShare, types.TxChunkCredit, meta); err != nil {
		return nil, err
	}
	if _, err := e.wallet.AccruePlatformFee(ctx, platformShare, meta); err != nil {
		return nil, err
	}

	now := e.now()
	result.PayoutIssued = true
	result.PayoutAt = &now
	if err := e.store.Results.Upsert(ctx, result); err != nil {
		return nil, err
	}

	task.ChunksPaid++
	task.BudgetSpent = fees.RoundMoney(task.BudgetSpent + cost)

	e.logger.Infof("Payout settled for task %s bucket %d: worker=%v platform=%v",
		task.ID, result.BucketIndex, workerShare, platformShare)

	return &PayoutInfo{Cost: cost, WorkerShare: workerShare, PlatformShare: platformShare}, nil
}
