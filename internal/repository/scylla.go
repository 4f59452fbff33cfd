package repository

import (
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/database"
)

// NewScyllaStore wires the six collections over one database connection.
func NewScyllaStore(conn *database.Connection) *Store {
	return &Store{
		Tasks:        &scyllaTaskRepository{conn: conn},
		Results:      &scyllaResultRepository{conn: conn},
		Assignments:  &scyllaAssignmentRepository{conn: conn},
		Users:        &scyllaUserRepository{conn: conn},
		Transactions: &scyllaTransactionRepository{conn: conn},
		Ledger:       &scyllaLedgerRepository{conn: conn},
	}
}
