package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/SumitJoshiGIT/distributed-task-runner/internal/repository"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/fees"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/logging"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/types"
)

var (
	ErrSandboxDisabled   = errors.New("wallet sandbox is disabled")
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrUserNotFound      = errors.New("user not found")
)

// MaxSandboxDeposit caps a single sandbox credit.
const MaxSandboxDeposit = 10000.0

type Config struct {
	SandboxEnabled bool
	SeedBalance    float64
}

// Service is the wallet ledger: every balance change appends exactly one
// transaction row carrying the post-change balance.
type Service struct {
	users  repository.UserRepository
	txs    repository.TransactionRepository
	ledger repository.LedgerRepository
	cfg    Config
	logger logging.Logger
	now    func() time.Time
}

func NewService(store *repository.Store, cfg Config, logger logging.Logger) *Service {
	return &Service{
		users:  store.Users,
		txs:    store.Transactions,
		ledger: store.Ledger,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// EnsureUserBySession resolves the user for a session identifier, creating
// one on the fly with the configured seed balance when missing.
func (s *Service) EnsureUserBySession(ctx context.Context, sessionID string) (*types.UserData, error) {
	user, err := s.users.GetBySession(ctx, sessionID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	now := s.now().UTC()
	user = &types.UserData{
		ID:            uuid.NewString(),
		SessionID:     sessionID,
		WalletBalance: 0,
		Roles:         []string{"customer"},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.cfg.SeedBalance > 0 {
		user, _, err = s.Adjust(ctx, user.ID, s.cfg.SeedBalance, types.TxSeedCredit, types.TransactionMeta{Reason: "dev-seed"})
		if err != nil {
			return nil, err
		}
	}

	s.logger.Infof("Created user %s for session %s", user.ID, sessionID)
	return user, nil
}

// EnsureWorker resolves the wallet account for a worker id (a session id),
// creating one with a zero balance when missing.
func (s *Service) EnsureWorker(ctx context.Context, workerID string) (*types.UserData, error) {
	user, err := s.users.GetBySession(ctx, workerID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	now := s.now().UTC()
	user = &types.UserData{
		ID:            uuid.NewString(),
		SessionID:     workerID,
		WalletBalance: 0,
		Roles:         []string{"worker"},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, userID string) (*types.UserData, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *Service) GetBySession(ctx context.Context, sessionID string) (*types.UserData, error) {
	user, err := s.users.GetBySession(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// Adjust applies a signed amount to a user's balance and appends the
// matching transaction. Balances never go negative.
func (s *Service) Adjust(ctx context.Context, userID string, amount float64, txType types.TransactionType, meta types.TransactionMeta) (*types.UserData, *types.WalletTransaction, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, ErrUserNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	newBalance := fees.RoundMoney(user.WalletBalance + amount)
	if newBalance < 0 {
		return nil, nil, ErrInsufficientFunds
	}

	user.WalletBalance = newBalance
	if err := s.users.Update(ctx, user); err != nil {
		return nil, nil, err
	}

	tx := &types.WalletTransaction{
		ID:           uuid.NewString(),
		UserID:       userID,
		Type:         txType,
		Amount:       amount,
		BalanceAfter: newBalance,
		Meta:         meta,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.txs.Append(ctx, tx); err != nil {
		return nil, nil, err
	}
	return user, tx, nil
}

// Deposit applies a sandbox-only manual credit.
func (s *Service) Deposit(ctx context.Context, userID string, amount float64) (*types.UserData, *types.WalletTransaction, error) {
	if !s.cfg.SandboxEnabled {
		return nil, nil, ErrSandboxDisabled
	}
	if amount <= 0 || amount > MaxSandboxDeposit {
		return nil, nil, ErrInvalidAmount
	}
	return s.Adjust(ctx, userID, fees.RoundMoney(amount), types.TxWalletDeposit, types.TransactionMeta{Reason: "sandbox"})
}

// Withdraw applies a sandbox-only manual debit. The amount may not exceed
// the current balance.
func (s *Service) Withdraw(ctx context.Context, userID string, amount float64) (*types.UserData, *types.WalletTransaction, error) {
	if !s.cfg.SandboxEnabled {
		return nil, nil, ErrSandboxDisabled
	}
	if amount <= 0 {
		return nil, nil, ErrInvalidAmount
	}
	return s.Adjust(ctx, userID, -fees.RoundMoney(amount), types.TxWalletWithdrawal, types.TransactionMeta{Reason: "sandbox"})
}

// ApplyCheckout credits a completed external checkout to the wallet.
func (s *Service) ApplyCheckout(ctx context.Context, userID string, amount float64) (*types.UserData, *types.WalletTransaction, error) {
	if amount <= 0 {
		return nil, nil, ErrInvalidAmount
	}
	return s.Adjust(ctx, userID, fees.RoundMoney(amount), types.TxWalletDeposit, types.TransactionMeta{Reason: "checkout"})
}

// AccruePlatformFee adds the platform share to the singleton ledger and
// appends the platform-fee transaction under the synthetic platform user.
func (s *Service) AccruePlatformFee(ctx context.Context, amount float64, meta types.TransactionMeta) (*types.WalletTransaction, error) {
	ledger, err := s.ledger.Accrue(ctx, amount)
	if err != nil {
		return nil, err
	}

	tx := &types.WalletTransaction{
		ID:           uuid.NewString(),
		UserID:       types.PlatformUserID,
		Type:         types.TxPlatformFee,
		Amount:       amount,
		BalanceAfter: ledger.TotalEarnings,
		Meta:         meta,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.txs.Append(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// PlatformLedger returns the platform accrual singleton.
func (s *Service) PlatformLedger(ctx context.Context) (*types.PlatformLedger, error) {
	return s.ledger.Get(ctx)
}

// Transactions returns a user's most recent transactions plus the total count.
func (s *Service) Transactions(ctx context.Context, userID string, limit int) ([]*types.WalletTransaction, int, error) {
	txs, err := s.txs.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.txs.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}
