package types

import "time"

// PlatformUserID is the synthetic user id platform-fee transactions reference.
const PlatformUserID = "platform"

type UserData struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"sessionId"`
	WalletBalance float64   `json:"walletBalance"`
	Roles         []string  `json:"roles"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type TransactionType string

const (
	TxSeedCredit       TransactionType = "seed-credit"
	TxWalletDeposit    TransactionType = "wallet-deposit"
	TxWalletWithdrawal TransactionType = "wallet-withdrawal"
	TxChunkDebit       TransactionType = "chunk-debit"
	TxChunkCredit      TransactionType = "chunk-credit"
	TxPlatformFee      TransactionType = "platform-fee"
)

type TransactionMeta struct {
	TaskID     string `json:"taskId,omitempty"`
	ChunkIndex *int   `json:"chunkIndex,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// WalletTransaction is append-only. Amount is signed; BalanceAfter records
// the post-change balance of the referenced user.
type WalletTransaction struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	Type         TransactionType `json:"type"`
	Amount       float64         `json:"amount"`
	BalanceAfter float64         `json:"balanceAfter"`
	Meta         TransactionMeta `json:"meta"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// PlatformLedger is a singleton accruing the platform's fee share.
type PlatformLedger struct {
	TotalEarnings float64   `json:"totalEarnings"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
