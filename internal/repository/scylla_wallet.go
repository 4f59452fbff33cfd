package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gocql/gocql"

	"github.com/SumitJoshiGIT/distributed-task-runner/internal/repository/queries"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/database"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/fees"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/types"
)

type scyllaTransactionRepository struct {
	conn *database.Connection
}

func (r *scyllaTransactionRepository) Append(ctx context.Context, tx *types.WalletTransaction) error {
	metaJSON, err := json.Marshal(tx.Meta)
	if err != nil {
		return err
	}
	return r.conn.Session().Query(queries.InsertWalletTransactionQuery,
		tx.UserID, tx.CreatedAt, tx.ID, string(tx.Type),
		tx.Amount, tx.BalanceAfter, string(metaJSON),
	).WithContext(ctx).Exec()
}

func (r *scyllaTransactionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*types.WalletTransaction, error) {
	iter := r.conn.Session().Query(queries.SelectWalletTransactionsByUserQuery, userID, limit).WithContext(ctx).Iter()

	var txs []*types.WalletTransaction
	for {
		var tx types.WalletTransaction
		var txType, metaJSON string
		if !iter.Scan(&tx.UserID, &tx.CreatedAt, &tx.ID, &txType, &tx.Amount, &tx.BalanceAfter, &metaJSON) {
			break
		}
		tx.Type = types.TransactionType(txType)
		if metaJSON != "" {
			_ = json.Unmarshal([]byte(metaJSON), &tx.Meta)
		}
		copied := tx
		txs = append(txs, &copied)
	}

	if err := iter.Close(); err != nil {
		return nil, err
	}
	return txs, nil
}

func (r *scyllaTransactionRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.conn.Session().Query(queries.SelectWalletTransactionCountQuery, userID).WithContext(ctx).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

type scyllaLedgerRepository struct {
	conn *database.Connection
}

const ledgerID = "platform"

func (r *scyllaLedgerRepository) Get(ctx context.Context) (*types.PlatformLedger, error) {
	var ledger types.PlatformLedger
	err := r.conn.Session().Query(queries.SelectPlatformLedgerQuery, ledgerID).WithContext(ctx).Scan(
		&ledger.TotalEarnings, &ledger.UpdatedAt,
	)
	if err == gocql.ErrNotFound {
		return &types.PlatformLedger{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &ledger, nil
}

func (r *scyllaLedgerRepository) Accrue(ctx context.Context, amount float64) (*types.PlatformLedger, error) {
	ledger, err := r.Get(ctx)
	if err != nil {
		return nil, err
	}
	ledger.TotalEarnings = fees.RoundShare(ledger.TotalEarnings + amount)
	ledger.UpdatedAt = time.Now().UTC()

	err = r.conn.Session().Query(queries.UpsertPlatformLedgerQuery,
		ledgerID, ledger.TotalEarnings, ledger.UpdatedAt,
	).WithContext(ctx).Exec()
	if err != nil {
		return nil, err
	}
	return ledger, nil
}
