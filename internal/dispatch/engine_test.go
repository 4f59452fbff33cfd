package dispatch

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SumitJoshiGIT/distributed-task-runner/internal/heartbeat"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/repository"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/wallet"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/logging"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/types"
)

type fakeData struct {
	items map[string][]json.RawMessage
}

func (f *fakeData) Items(_ context.Context, task *types.TaskData) ([]json.RawMessage, error) {
	return f.items[task.ID], nil
}

func (f *fakeData) Remove(taskID string) error {
	delete(f.items, taskID)
	return nil
}

type testEnv struct {
	engine  *Engine
	store   *repository.Store
	wallet  *wallet.Service
	tracker *heartbeat.Tracker
	data    *fakeData
}

func newTestEnv(t *testing.T, engineCfg Config, walletCfg wallet.Config) *testEnv {
	t.Helper()
	logger := &logging.MockLogger{}
	logger.SetupDefaultExpectations()

	store := repository.NewMemoryStore()
	walletSvc := wallet.NewService(store, walletCfg, logger)
	tracker := heartbeat.NewTracker(20 * time.Minute)
	data := &fakeData{items: make(map[string][]json.RawMessage)}

	engine := NewEngine(store, walletSvc, tracker, data, engineCfg, logger)
	return &testEnv{engine: engine, store: store, wallet: walletSvc, tracker: tracker, data: data}
}

// createTask seeds a task with n small numbered items and opts the given
// workers in via claim.
func (env *testEnv) createTask(t *testing.T, params CreateTaskParams, n int, workers ...string) *types.TaskData {
	t.Helper()
	ctx := context.Background()

	task, err := env.engine.CreateTask(ctx, params)
	require.NoError(t, err)
	env.data.items[task.ID] = numberItems(n)

	for _, w := range workers {
		env.tracker.Beat(w)
		_, err := env.engine.Claim(ctx, task.ID, w)
		require.NoError(t, err)
	}
	return task
}

// completeBucket posts a terminal completed report for a granted bucket.
func (env *testEnv) completeBucket(t *testing.T, taskID string, grant *NextBucketGrant, workerID string) *PayoutInfo {
	t.Helper()
	items := make([]ProgressItem, 0, grant.RangeEnd-grant.RangeStart)
	for i := 0; i < grant.RangeEnd-grant.RangeStart; i++ {
		items = append(items, ProgressItem{LocalIndex: i, Status: types.ItemStatusCompleted})
	}
	payout, err := env.engine.RecordBucket(context.Background(), BucketReport{
		TaskID:      taskID,
		BucketIndex: grant.BucketIndex,
		WorkerID:    workerID,
		Status:      types.BucketStatusCompleted,
		RangeStart:  grant.RangeStart,
		RangeEnd:    grant.RangeEnd,
		ItemsCount:  grant.RangeEnd - grant.RangeStart,
		ItemResults: items,
	})
	require.NoError(t, err)
	return payout
}

func defaultTaskParams(creator string) CreateTaskParams {
	return CreateTaskParams{
		CreatorID:          creator,
		Name:               "resize-images",
		CostPerBucket:      2,
		MaxBillableBuckets: 5,
		MaxBuckets:         5,
		PlatformFeePercent: 10,
	}
}

// Happy path: two workers drain ten items in five buckets of two; the money
// lands 10 / 9 / 1 across customer, workers, and platform.
func TestScenario_HappyPath(t *testing.T) {
	env := newTestEnv(t, DefaultConfig(), wallet.Config{SeedBalance: 20})
	ctx := context.Background()

	customer, err := env.wallet.EnsureUserBySession(ctx, "customer-1")
	require.NoError(t, err)
	require.Equal(t, 20.0, customer.WalletBalance)

	task := env.createTask(t, defaultTaskParams("customer-1"), 10, "W1", "W2")

	workers := []string{"W1", "W2"}
	for i := 0; i < 5; i++ {
		w := workers[i%2]
		grant, reason, err := env.engine.NextBucket(ctx, task.ID, w)
		require.NoError(t, err)
		require.Empty(t, reason)
		assert.Equal(t, i, grant.BucketIndex)
		assert.Equal(t, 2, grant.RangeEnd-grant.RangeStart)
		assert.Len(t, grant.Items, 2)

		payout := env.completeBucket(t, task.ID, grant, w)
		require.NotNil(t, payout)
		assert.Equal(t, 2.0, payout.Cost)
		assert.Equal(t, 1.8, payout.WorkerShare)
		assert.Equal(t, 0.2, payout.PlatformShare)
	}

	customer, err = env.wallet.GetBySession(ctx, "customer-1")
	require.NoError(t, err)
	assert.Equal(t, 10.0, customer.WalletBalance)

	w1, err := env.wallet.GetBySession(ctx, "W1")
	require.NoError(t, err)
	w2, err := env.wallet.GetBySession(ctx, "W2")
	require.NoError(t, err)
	assert.InDelta(t, 9.0, w1.WalletBalance+w2.WalletBalance, 1e-9)

	ledger, err := env.wallet.PlatformLedger(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, ledger.TotalEarnings, 1e-9)

	reloaded, err := env.engine.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, reloaded.Progress)
	assert.Equal(t, types.TaskStatusCompleted, reloaded.Status)
	assert.Equal(t, 5, reloaded.ProcessedBuckets)
	assert.Equal(t, 10, reloaded.ProcessedItems)
	assert.Equal(t, 5, reloaded.ChunksPaid)
	assert.Equal(t, 10.0, reloaded.BudgetSpent)
}

// Resume: after a crash the worker gets the same bucket back and exactly one
// payout is recorded when it finally completes.
func TestScenario_Resume(t *testing.T) {
	env := newTestEnv(t, DefaultConfig(), wallet.Config{SeedBalance: 20})
	ctx := context.Background()

	_, err := env.wallet.EnsureUserBySession(ctx, "customer-1")
	require.NoError(t, err)

	params := defaultTaskParams("customer-1")
	params.MaxBuckets = 2
	task := env.createTask(t, params, 8, "W")

	grant, reason, err := env.engine.NextBucket(ctx, task.ID, "W")
	require.NoError(t, err)
	require.Empty(t, reason)
	assert.Equal(t, 0, grant.BucketIndex)
	assert.Equal(t, 0, grant.RangeStart)
	assert.Equal(t, 4, grant.RangeEnd)
	assert.False(t, grant.Resume)

	processed, _, err := env.engine.RecordProgress(ctx, ProgressBatch{
		TaskID:         task.ID,
		BucketIndex:    0,
		WorkerID:       "W",
		RangeStart:     0,
		ItemsProcessed: 2,
		TotalItems:     4,
		Items: []ProgressItem{
			{LocalIndex: 0, Status: types.ItemStatusCompleted},
			{LocalIndex: 1, Status: types.ItemStatusCompleted},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, processed)

	// the worker crashes and reconnects
	resumed, reason, err := env.engine.NextBucket(ctx, task.ID, "W")
	require.NoError(t, err)
	require.Empty(t, reason)
	assert.True(t, resumed.Resume)
	assert.Equal(t, 0, resumed.BucketIndex)
	assert.Equal(t, 0, resumed.RangeStart)
	assert.Equal(t, 4, resumed.RangeEnd)

	processed, _, err = env.engine.RecordProgress(ctx, ProgressBatch{
		TaskID:         task.ID,
		BucketIndex:    0,
		WorkerID:       "W",
		RangeStart:     0,
		ItemsProcessed: 4,
		TotalItems:     4,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, processed)

	payout := env.completeBucket(t, task.ID, resumed, "W")
	require.NotNil(t, payout)

	customer, err := env.wallet.GetBySession(ctx, "customer-1")
	require.NoError(t, err)
	txs, _, err := env.wallet.Transactions(ctx, customer.ID, 100)
	require.NoError(t, err)
	debits := 0
	for _, tx := range txs {
		if tx.Type == types.TxChunkDebit {
			debits++
		}
	}
	assert.Equal(t, 1, debits)
}

// Resume idempotence: K calls without a terminal result return the same
// bucket and range every time.
func TestNextBucket_ResumeIdempotence(t *testing.T) {
	env := newTestEnv(t, Config{LeaseTTL: DefaultLeaseTTL, DisableBudgetChecks: true}, wallet.Config{})
	ctx := context.Background()

	task := env.createTask(t, defaultTaskParams("customer-1"), 10, "W")

	first, reason, err := env.engine.NextBucket(ctx, task.ID, "W")
	require.NoError(t, err)
	require.Empty(t, reason)

	for k := 0; k < 4; k++ {
		again, reason, err := env.engine.NextBucket(ctx, task.ID, "W")
		require.NoError(t, err)
		require.Empty(t, reason)
		assert.True(t, again.Resume)
		assert.Equal(t, first.BucketIndex, again.BucketIndex)
		assert.Equal(t, first.RangeStart, again.RangeStart)
		assert.Equal(t, first.RangeEnd, again.RangeEnd)
	}
}

// Lease expiry: an abandoned lease's range is reallocated under a strictly
// larger bucket index.
func TestScenario_LeaseExpiry(t *testing.T) {
	env := newTestEnv(t, Config{LeaseTTL: 20 * time.Minute, DisableBudgetChecks: true}, wallet.Config{})
	ctx := context.Background()

	params := defaultTaskParams("customer-1")
	params.MaxBuckets = 2
	task := env.createTask(t, params, 8, "W1", "W2")

	base := time.Now()
	env.engine.now = func() time.Time { return base }

	grant, reason, err := env.engine.NextBucket(ctx, task.ID, "W1")
	require.NoError(t, err)
	require.Empty(t, reason)
	assert.Equal(t, 0, grant.BucketIndex)

	// W1 never reports; the TTL passes
	env.engine.now = func() time.Time { return base.Add(21 * time.Minute) }

	regrant, reason, err := env.engine.NextBucket(ctx, task.ID, "W2")
	require.NoError(t, err)
	require.Empty(t, reason)
	assert.Equal(t, 1, regrant.BucketIndex, "bucket index stays monotone")
	assert.Equal(t, grant.RangeStart, regrant.RangeStart)
	assert.Equal(t, grant.RangeEnd, regrant.RangeEnd)

	// W1's original lease is gone
	_, err = env.store.Assignments.Get(ctx, task.ID, 0)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// Revoke: every worker is denied, pending leases are deleted, finished
// results remain readable.
func TestScenario_Revoke(t *testing.T) {
	env := newTestEnv(t, Config{LeaseTTL: DefaultLeaseTTL, DisableBudgetChecks: true}, wallet.Config{})
	ctx := context.Background()

	params := defaultTaskParams("customer-1")
	params.MaxBuckets = 5
	task := env.createTask(t, params, 10, "W1", "W2")

	grant, reason, err := env.engine.NextBucket(ctx, task.ID, "W1")
	require.NoError(t, err)
	require.Empty(t, reason)
	env.completeBucket(t, task.ID, grant, "W1")

	// a second bucket is in flight when the customer revokes
	_, reason, err = env.engine.NextBucket(ctx, task.ID, "W2")
	require.NoError(t, err)
	require.Empty(t, reason)

	_, err = env.engine.Revoke(ctx, task.ID)
	require.NoError(t, err)

	for _, w := range []string{"W1", "W2"} {
		grant, reason, err := env.engine.NextBucket(ctx, task.ID, w)
		require.NoError(t, err)
		assert.Nil(t, grant)
		assert.Equal(t, ReasonRevoked, reason)
	}

	assignments, err := env.store.Assignments.ListByTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, assignments)

	results, _, err := env.engine.TaskResults(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, types.BucketStatusCompleted, results[0].Status)

	// reinvoke re-enables claims, workers must re-claim
	_, err = env.engine.Reinvoke(ctx, task.ID)
	require.NoError(t, err)
	_, reason, err = env.engine.NextBucket(ctx, task.ID, "W1")
	require.NoError(t, err)
	assert.Equal(t, ReasonNotAssigned, reason)
}

// Oversize item: one 4 MiB item under a 1 MiB cap collapses the plan to a
// single enlarged bucket.
func TestScenario_OversizeItem(t *testing.T) {
	env := newTestEnv(t, Config{LeaseTTL: DefaultLeaseTTL, DisableBudgetChecks: true}, wallet.Config{})
	ctx := context.Background()

	params := defaultTaskParams("customer-1")
	params.MaxBuckets = 8
	params.MaxBucketBytes = 1 << 20
	task, err := env.engine.CreateTask(ctx, params)
	require.NoError(t, err)

	huge := json.RawMessage(`"` + string(make([]byte, 4<<20)) + `"`)
	env.data.items[task.ID] = []json.RawMessage{huge}

	env.tracker.Beat("W")
	_, err = env.engine.Claim(ctx, task.ID, "W")
	require.NoError(t, err)

	grant, reason, err := env.engine.NextBucket(ctx, task.ID, "W")
	require.NoError(t, err)
	require.Empty(t, reason)
	assert.Equal(t, 0, grant.BucketIndex)
	assert.Equal(t, 0, grant.RangeStart)
	assert.Equal(t, 1, grant.RangeEnd)

	reloaded, err := env.store.Tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.BucketConfig.MaxBuckets)
	assert.Equal(t, int64(8<<20), reloaded.BucketConfig.MaxBucketBytes)
}

// Budget exhaustion: after the billable cap is reached no further leases are
// granted even though items remain.
func TestScenario_BudgetExhaustion(t *testing.T) {
	env := newTestEnv(t, DefaultConfig(), wallet.Config{SeedBalance: 100})
	ctx := context.Background()

	_, err := env.wallet.EnsureUserBySession(ctx, "customer-1")
	require.NoError(t, err)

	params := defaultTaskParams("customer-1")
	params.MaxBillableBuckets = 2
	task := env.createTask(t, params, 10, "W")

	for i := 0; i < 2; i++ {
		grant, reason, err := env.engine.NextBucket(ctx, task.ID, "W")
		require.NoError(t, err)
		require.Empty(t, reason)
		payout := env.completeBucket(t, task.ID, grant, "W")
		require.NotNil(t, payout)
	}

	grant, reason, err := env.engine.NextBucket(ctx, task.ID, "W")
	require.NoError(t, err)
	assert.Nil(t, grant)
	assert.Equal(t, ReasonBudgetExhausted, reason)
}

func TestNextBucket_InsufficientFunds(t *testing.T) {
	env := newTestEnv(t, DefaultConfig(), wallet.Config{SeedBalance: 1})
	ctx := context.Background()

	_, err := env.wallet.EnsureUserBySession(ctx, "customer-1")
	require.NoError(t, err)

	// costPerBucket 2 > balance 1
	task := env.createTask(t, defaultTaskParams("customer-1"), 10, "W")

	grant, reason, err := env.engine.NextBucket(ctx, task.ID, "W")
	require.NoError(t, err)
	assert.Nil(t, grant)
	assert.Equal(t, ReasonInsufficientFunds, reason)
}

func TestNextBucket_DeniedReasons(t *testing.T) {
	env := newTestEnv(t, Config{LeaseTTL: DefaultLeaseTTL, DisableBudgetChecks: true}, wallet.Config{})
	ctx := context.Background()

	params := defaultTaskParams("customer-1")
	params.MaxBuckets = 2
	task := env.createTask(t, params, 4, "W")

	t.Run("unknown task", func(t *testing.T) {
		_, reason, err := env.engine.NextBucket(ctx, "nope", "W")
		require.NoError(t, err)
		assert.Equal(t, ReasonNotFound, reason)
	})

	t.Run("worker not opted in", func(t *testing.T) {
		_, reason, err := env.engine.NextBucket(ctx, task.ID, "stranger")
		require.NoError(t, err)
		assert.Equal(t, ReasonNotAssigned, reason)
	})

	t.Run("all items drained", func(t *testing.T) {
		grant, reason, err := env.engine.NextBucket(ctx, task.ID, "W")
		require.NoError(t, err)
		require.Empty(t, reason)
		env.completeBucket(t, task.ID, grant, "W")

		grant, reason, err = env.engine.NextBucket(ctx, task.ID, "W")
		require.NoError(t, err)
		require.Empty(t, reason)
		env.completeBucket(t, task.ID, grant, "W")

		_, reason, err = env.engine.NextBucket(ctx, task.ID, "W")
		require.NoError(t, err)
		assert.Equal(t, ReasonNoChunk, reason)
	})
}

// Invariant: ranges covered by results and assignments stay pairwise
// disjoint through a churny grant/expire/complete sequence.
func TestInvariant_DisjointRanges(t *testing.T) {
	env := newTestEnv(t, Config{LeaseTTL: 20 * time.Minute, DisableBudgetChecks: true}, wallet.Config{})
	ctx := context.Background()

	params := defaultTaskParams("customer-1")
	params.MaxBuckets = 4
	task := env.createTask(t, params, 12, "W1", "W2")

	base := time.Now()
	env.engine.now = func() time.Time { return base }

	g1, _, err := env.engine.NextBucket(ctx, task.ID, "W1")
	require.NoError(t, err)
	env.completeBucket(t, task.ID, g1, "W1")

	g2, _, err := env.engine.NextBucket(ctx, task.ID, "W2")
	require.NoError(t, err)

	// W2's lease expires, W1 picks the range back up
	env.engine.now = func() time.Time { return base.Add(30 * time.Minute) }
	g3, _, err := env.engine.NextBucket(ctx, task.ID, "W1")
	require.NoError(t, err)
	assert.Greater(t, g3.BucketIndex, g2.BucketIndex)
	env.completeBucket(t, task.ID, g3, "W1")

	assertDisjointCoverage(t, env, task.ID)
}

func assertDisjointCoverage(t *testing.T, env *testEnv, taskID string) {
	t.Helper()
	ctx := context.Background()

	results, err := env.store.Results.ListByTask(ctx, taskID)
	require.NoError(t, err)
	assignments, err := env.store.Assignments.ListByTask(ctx, taskID)
	require.NoError(t, err)

	type span struct{ start, end int }
	var spans []span
	for _, r := range results {
		if r.Status.IsTerminal() {
			spans = append(spans, span{r.RangeStart, r.RangeEnd})
		}
	}
	for _, a := range assignments {
		spans = append(spans, span{a.RangeStart, a.RangeEnd})
	}

	for i := 0; i < len(spans); i++ {
		for j := i + 1; j < len(spans); j++ {
			overlap := spans[i].start < spans[j].end && spans[j].start < spans[i].end
			assert.False(t, overlap, "ranges [%d,%d) and [%d,%d) overlap",
				spans[i].start, spans[i].end, spans[j].start, spans[j].end)
		}
	}
}

// Invariant: every settled bucket has exactly one debit, one credit, and one
// platform fee, summing to zero.
func TestInvariant_PayoutTriple(t *testing.T) {
	env := newTestEnv(t, DefaultConfig(), wallet.Config{SeedBalance: 20})
	ctx := context.Background()

	customer, err := env.wallet.EnsureUserBySession(ctx, "customer-1")
	require.NoError(t, err)

	task := env.createTask(t, defaultTaskParams("customer-1"), 10, "W")

	grant, _, err := env.engine.NextBucket(ctx, task.ID, "W")
	require.NoError(t, err)
	env.completeBucket(t, task.ID, grant, "W")

	worker, err := env.wallet.GetBySession(ctx, "W")
	require.NoError(t, err)

	var matched []*types.WalletTransaction
	for _, userID := range []string{customer.ID, worker.ID, types.PlatformUserID} {
		txs, _, err := env.wallet.Transactions(ctx, userID, 100)
		require.NoError(t, err)
		for _, tx := range txs {
			if tx.Meta.TaskID == task.ID && tx.Meta.ChunkIndex != nil && *tx.Meta.ChunkIndex == grant.BucketIndex {
				matched = append(matched, tx)
			}
		}
	}

	require.Len(t, matched, 3)
	var sum float64
	kinds := make(map[types.TransactionType]int)
	for _, tx := range matched {
		sum += tx.Amount
		kinds[tx.Type]++
	}
	assert.InDelta(t, 0, sum, 1e-9)
	assert.Equal(t, 1, kinds[types.TxChunkDebit])
	assert.Equal(t, 1, kinds[types.TxChunkCredit])
	assert.Equal(t, 1, kinds[types.TxPlatformFee])
}

// Failed buckets release the lease and never pay.
func TestRecordBucket_FailedBucketDoesNotPay(t *testing.T) {
	env := newTestEnv(t, DefaultConfig(), wallet.Config{SeedBalance: 20})
	ctx := context.Background()

	_, err := env.wallet.EnsureUserBySession(ctx, "customer-1")
	require.NoError(t, err)

	task := env.createTask(t, defaultTaskParams("customer-1"), 10, "W")

	grant, _, err := env.engine.NextBucket(ctx, task.ID, "W")
	require.NoError(t, err)

	payout, err := env.engine.RecordBucket(ctx, BucketReport{
		TaskID:      task.ID,
		BucketIndex: grant.BucketIndex,
		WorkerID:    "W",
		RangeStart:  grant.RangeStart,
		RangeEnd:    grant.RangeEnd,
		ItemsCount:  grant.RangeEnd - grant.RangeStart,
		ItemResults: []ProgressItem{
			{LocalIndex: 0, Status: types.ItemStatusCompleted},
			{LocalIndex: 1, Status: types.ItemStatusFailed, Error: "boom"},
		},
	})
	require.NoError(t, err)
	assert.Nil(t, payout)

	result, err := env.store.Results.Get(ctx, task.ID, grant.BucketIndex)
	require.NoError(t, err)
	assert.Equal(t, types.BucketStatusFailed, result.Status)
	assert.False(t, result.PayoutIssued)

	// lease released
	_, err = env.store.Assignments.Get(ctx, task.ID, grant.BucketIndex)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// no refund either: the customer balance is untouched
	customer, err := env.wallet.GetBySession(ctx, "customer-1")
	require.NoError(t, err)
	assert.Equal(t, 20.0, customer.WalletBalance)
}

// Retried terminal updates never double-pay.
func TestRecordBucket_PayoutIdempotence(t *testing.T) {
	env := newTestEnv(t, DefaultConfig(), wallet.Config{SeedBalance: 20})
	ctx := context.Background()

	_, err := env.wallet.EnsureUserBySession(ctx, "customer-1")
	require.NoError(t, err)

	task := env.createTask(t, defaultTaskParams("customer-1"), 10, "W")

	grant, _, err := env.engine.NextBucket(ctx, task.ID, "W")
	require.NoError(t, err)

	first := env.completeBucket(t, task.ID, grant, "W")
	require.NotNil(t, first)

	second := env.completeBucket(t, task.ID, grant, "W")
	assert.Nil(t, second)

	customer, err := env.wallet.GetBySession(ctx, "customer-1")
	require.NoError(t, err)
	assert.Equal(t, 18.0, customer.WalletBalance)
}

func TestClaim_RequiresRecentHeartbeat(t *testing.T) {
	env := newTestEnv(t, Config{LeaseTTL: DefaultLeaseTTL, DisableBudgetChecks: true}, wallet.Config{})
	ctx := context.Background()

	task, err := env.engine.CreateTask(ctx, defaultTaskParams("customer-1"))
	require.NoError(t, err)
	env.data.items[task.ID] = numberItems(4)

	_, err = env.engine.Claim(ctx, task.ID, "silent-worker")
	assert.ErrorIs(t, err, ErrWorkerOffline)

	env.tracker.Beat("silent-worker")
	_, err = env.engine.Claim(ctx, task.ID, "silent-worker")
	assert.NoError(t, err)
}

func TestDeleteTask_Cascades(t *testing.T) {
	env := newTestEnv(t, Config{LeaseTTL: DefaultLeaseTTL, DisableBudgetChecks: true}, wallet.Config{})
	ctx := context.Background()

	task := env.createTask(t, defaultTaskParams("customer-1"), 10, "W")

	grant, _, err := env.engine.NextBucket(ctx, task.ID, "W")
	require.NoError(t, err)
	env.completeBucket(t, task.ID, grant, "W")
	_, _, err = env.engine.NextBucket(ctx, task.ID, "W")
	require.NoError(t, err)

	require.NoError(t, env.engine.DeleteTask(ctx, task.ID))

	_, err = env.store.Tasks.GetByID(ctx, task.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	results, err := env.store.Results.ListByTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, results)
	assignments, err := env.store.Assignments.ListByTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, assignments)
	_, ok := env.data.items[task.ID]
	assert.False(t, ok)
}
