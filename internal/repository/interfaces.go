package repository

import (
	"context"
	"errors"

	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/types"
)

// ErrNotFound is returned when a record does not exist in the store.
var ErrNotFound = errors.New("record not found")

type TaskRepository interface {
	Create(ctx context.Context, task *types.TaskData) error
	GetByID(ctx context.Context, id string) (*types.TaskData, error)
	List(ctx context.Context) ([]*types.TaskData, error)
	Update(ctx context.Context, task *types.TaskData) error
	Delete(ctx context.Context, id string) error
}

type ResultRepository interface {
	Get(ctx context.Context, taskID string, bucketIndex int) (*types.BucketResult, error)
	ListByTask(ctx context.Context, taskID string) ([]*types.BucketResult, error)
	Upsert(ctx context.Context, result *types.BucketResult) error
	Delete(ctx context.Context, taskID string, bucketIndex int) error
	DeleteByTask(ctx context.Context, taskID string) error
}

type AssignmentRepository interface {
	Get(ctx context.Context, taskID string, bucketIndex int) (*types.BucketAssignment, error)
	ListByTask(ctx context.Context, taskID string) ([]*types.BucketAssignment, error)
	Upsert(ctx context.Context, assignment *types.BucketAssignment) error
	Delete(ctx context.Context, taskID string, bucketIndex int) error
	DeleteByTask(ctx context.Context, taskID string) error
}

type UserRepository interface {
	Create(ctx context.Context, user *types.UserData) error
	GetByID(ctx context.Context, id string) (*types.UserData, error)
	GetBySession(ctx context.Context, sessionID string) (*types.UserData, error)
	Update(ctx context.Context, user *types.UserData) error
}

type TransactionRepository interface {
	Append(ctx context.Context, tx *types.WalletTransaction) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*types.WalletTransaction, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}

type LedgerRepository interface {
	Get(ctx context.Context) (*types.PlatformLedger, error)
	Accrue(ctx context.Context, amount float64) (*types.PlatformLedger, error)
}

// Store bundles the six collections behind one handle. The engine holds a
// per-task writer lock above this layer; repositories do not serialise.
type Store struct {
	Tasks        TaskRepository
	Results      ResultRepository
	Assignments  AssignmentRepository
	Users        UserRepository
	Transactions TransactionRepository
	Ledger       LedgerRepository
}
