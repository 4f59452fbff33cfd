package wallet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SumitJoshiGIT/distributed-task-runner/internal/repository"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/logging"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/types"
)

func newTestService(t *testing.T, cfg Config) (*Service, *repository.Store) {
	t.Helper()
	logger := &logging.MockLogger{}
	logger.SetupDefaultExpectations()
	store := repository.NewMemoryStore()
	return NewService(store, cfg, logger), store
}

func TestEnsureUserBySession_SeedsWalletOnce(t *testing.T) {
	svc, _ := newTestService(t, Config{SeedBalance: 50})
	ctx := context.Background()

	user, err := svc.EnsureUserBySession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 50.0, user.WalletBalance)
	assert.Equal(t, "sess-1", user.SessionID)

	again, err := svc.EnsureUserBySession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, 50.0, again.WalletBalance)

	txs, total, err := svc.Transactions(ctx, user.ID, 25)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, txs, 1)
	assert.Equal(t, types.TxSeedCredit, txs[0].Type)
	assert.Equal(t, 50.0, txs[0].BalanceAfter)
}

func TestAdjust_AppendsTransactionWithPostBalance(t *testing.T) {
	svc, _ := newTestService(t, Config{SeedBalance: 10})
	ctx := context.Background()

	user, err := svc.EnsureUserBySession(ctx, "sess-1")
	require.NoError(t, err)

	updated, tx, err := svc.Adjust(ctx, user.ID, -4, types.TxChunkDebit, types.TransactionMeta{TaskID: "t1"})
	require.NoError(t, err)
	assert.Equal(t, 6.0, updated.WalletBalance)
	assert.Equal(t, 6.0, tx.BalanceAfter)
	assert.Equal(t, -4.0, tx.Amount)
	assert.Equal(t, "t1", tx.Meta.TaskID)
}

func TestAdjust_RefusesNegativeBalance(t *testing.T) {
	svc, _ := newTestService(t, Config{SeedBalance: 5})
	ctx := context.Background()

	user, err := svc.EnsureUserBySession(ctx, "sess-1")
	require.NoError(t, err)

	_, _, err = svc.Adjust(ctx, user.ID, -6, types.TxChunkDebit, types.TransactionMeta{})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// balance is untouched after the refusal
	reloaded, err := svc.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, reloaded.WalletBalance)
}

func TestDepositAndWithdraw_SandboxGate(t *testing.T) {
	tests := []struct {
		name    string
		sandbox bool
		wantErr error
	}{
		{"sandbox disabled", false, ErrSandboxDisabled},
		{"sandbox enabled", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, Config{SandboxEnabled: tt.sandbox})
			ctx := context.Background()

			user, err := svc.EnsureUserBySession(ctx, "sess-1")
			require.NoError(t, err)

			_, _, err = svc.Deposit(ctx, user.ID, 100)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			updated, _, err := svc.Withdraw(ctx, user.ID, 40)
			require.NoError(t, err)
			assert.Equal(t, 60.0, updated.WalletBalance)
		})
	}
}

func TestWithdraw_RejectsOverdraw(t *testing.T) {
	svc, _ := newTestService(t, Config{SandboxEnabled: true})
	ctx := context.Background()

	user, err := svc.EnsureUserBySession(ctx, "sess-1")
	require.NoError(t, err)

	_, _, err = svc.Deposit(ctx, user.ID, 10)
	require.NoError(t, err)

	_, _, err = svc.Withdraw(ctx, user.ID, 11)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestDeposit_RejectsOversizeAmount(t *testing.T) {
	svc, _ := newTestService(t, Config{SandboxEnabled: true})
	ctx := context.Background()

	user, err := svc.EnsureUserBySession(ctx, "sess-1")
	require.NoError(t, err)

	_, _, err = svc.Deposit(ctx, user.ID, MaxSandboxDeposit+1)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, _, err = svc.Deposit(ctx, user.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestAccruePlatformFee(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	ctx := context.Background()

	idx := 3
	tx, err := svc.AccruePlatformFee(ctx, 0.2, types.TransactionMeta{TaskID: "t1", ChunkIndex: &idx})
	require.NoError(t, err)
	assert.Equal(t, types.PlatformUserID, tx.UserID)
	assert.Equal(t, types.TxPlatformFee, tx.Type)
	assert.Equal(t, 0.2, tx.BalanceAfter)

	ledger, err := svc.PlatformLedger(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.2, ledger.TotalEarnings)

	_, err = svc.AccruePlatformFee(ctx, 0.3, types.TransactionMeta{TaskID: "t1"})
	require.NoError(t, err)
	ledger, err = svc.PlatformLedger(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.5, ledger.TotalEarnings)
}

func TestEnsureWorker_ZeroBalance(t *testing.T) {
	svc, _ := newTestService(t, Config{SeedBalance: 50})
	ctx := context.Background()

	worker, err := svc.EnsureWorker(ctx, "worker-1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, worker.WalletBalance)
	assert.Equal(t, []string{"worker"}, worker.Roles)
}
