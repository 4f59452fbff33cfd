package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/fees"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/types"
)

// NewMemoryStore returns a Store backed by in-process maps. It is used in dev
// mode when no database is reachable, and by the engine tests.
func NewMemoryStore() *Store {
	m := &memoryStore{
		tasks:       make(map[string]types.TaskData),
		results:     make(map[string]map[int]types.BucketResult),
		assignments: make(map[string]map[int]types.BucketAssignment),
		users:       make(map[string]types.UserData),
	}
	return &Store{
		Tasks:        (*memoryTasks)(m),
		Results:      (*memoryResults)(m),
		Assignments:  (*memoryAssignments)(m),
		Users:        (*memoryUsers)(m),
		Transactions: (*memoryTransactions)(m),
		Ledger:       (*memoryLedger)(m),
	}
}

type memoryStore struct {
	mu          sync.RWMutex
	tasks       map[string]types.TaskData
	results     map[string]map[int]types.BucketResult
	assignments map[string]map[int]types.BucketAssignment
	users       map[string]types.UserData
	txs         []types.WalletTransaction
	ledger      types.PlatformLedger
}

type memoryTasks memoryStore

func (m *memoryTasks) Create(_ context.Context, task *types.TaskData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[task.ID] = *task
	return nil
}

func (m *memoryTasks) GetByID(_ context.Context, id string) (*types.TaskData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	task, ok := m.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := task
	return &copied, nil
}

func (m *memoryTasks) List(_ context.Context) ([]*types.TaskData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tasks := make([]*types.TaskData, 0, len(m.tasks))
	for _, task := range m.tasks {
		copied := task
		tasks = append(tasks, &copied)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.Before(tasks[j].CreatedAt) })
	return tasks, nil
}

func (m *memoryTasks) Update(_ context.Context, task *types.TaskData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[task.ID]; !ok {
		return ErrNotFound
	}
	task.UpdatedAt = time.Now().UTC()
	m.tasks[task.ID] = *task
	return nil
}

func (m *memoryTasks) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, id)
	return nil
}

type memoryResults memoryStore

func (m *memoryResults) Upsert(_ context.Context, result *types.BucketResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	byTask, ok := m.results[result.TaskID]
	if !ok {
		byTask = make(map[int]types.BucketResult)
		m.results[result.TaskID] = byTask
	}
	byTask[result.BucketIndex] = *result
	return nil
}

func (m *memoryResults) Get(_ context.Context, taskID string, bucketIndex int) (*types.BucketResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result, ok := m.results[taskID][bucketIndex]
	if !ok {
		return nil, ErrNotFound
	}
	copied := result
	return &copied, nil
}

func (m *memoryResults) ListByTask(_ context.Context, taskID string) ([]*types.BucketResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	results := make([]*types.BucketResult, 0, len(m.results[taskID]))
	for _, result := range m.results[taskID] {
		copied := result
		results = append(results, &copied)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].BucketIndex < results[j].BucketIndex })
	return results, nil
}

func (m *memoryResults) Delete(_ context.Context, taskID string, bucketIndex int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.results[taskID], bucketIndex)
	return nil
}

func (m *memoryResults) DeleteByTask(_ context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.results, taskID)
	return nil
}

type memoryAssignments memoryStore

func (m *memoryAssignments) Upsert(_ context.Context, a *types.BucketAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	byTask, ok := m.assignments[a.TaskID]
	if !ok {
		byTask = make(map[int]types.BucketAssignment)
		m.assignments[a.TaskID] = byTask
	}
	byTask[a.BucketIndex] = *a
	return nil
}

func (m *memoryAssignments) Get(_ context.Context, taskID string, bucketIndex int) (*types.BucketAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assignments[taskID][bucketIndex]
	if !ok {
		return nil, ErrNotFound
	}
	copied := a
	return &copied, nil
}

func (m *memoryAssignments) ListByTask(_ context.Context, taskID string) ([]*types.BucketAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	assignments := make([]*types.BucketAssignment, 0, len(m.assignments[taskID]))
	for _, a := range m.assignments[taskID] {
		copied := a
		assignments = append(assignments, &copied)
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].BucketIndex < assignments[j].BucketIndex })
	return assignments, nil
}

func (m *memoryAssignments) Delete(_ context.Context, taskID string, bucketIndex int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.assignments[taskID], bucketIndex)
	return nil
}

func (m *memoryAssignments) DeleteByTask(_ context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.assignments, taskID)
	return nil
}

type memoryUsers memoryStore

func (m *memoryUsers) Create(_ context.Context, user *types.UserData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = *user
	return nil
}

func (m *memoryUsers) GetByID(_ context.Context, id string) (*types.UserData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := user
	return &copied, nil
}

func (m *memoryUsers) GetBySession(_ context.Context, sessionID string) (*types.UserData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if user.SessionID == sessionID {
			copied := user
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryUsers) Update(_ context.Context, user *types.UserData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return ErrNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	m.users[user.ID] = *user
	return nil
}

type memoryTransactions memoryStore

func (m *memoryTransactions) Append(_ context.Context, tx *types.WalletTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txs = append(m.txs, *tx)
	return nil
}

func (m *memoryTransactions) ListByUser(_ context.Context, userID string, limit int) ([]*types.WalletTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var txs []*types.WalletTransaction
	// newest first
	for i := len(m.txs) - 1; i >= 0 && len(txs) < limit; i-- {
		if m.txs[i].UserID == userID {
			copied := m.txs[i]
			txs = append(txs, &copied)
		}
	}
	return txs, nil
}

func (m *memoryTransactions) CountByUser(_ context.Context, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for i := range m.txs {
		if m.txs[i].UserID == userID {
			count++
		}
	}
	return count, nil
}

type memoryLedger memoryStore

func (m *memoryLedger) Get(_ context.Context) (*types.PlatformLedger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	copied := m.ledger
	return &copied, nil
}

func (m *memoryLedger) Accrue(_ context.Context, amount float64) (*types.PlatformLedger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ledger.TotalEarnings = fees.RoundShare(m.ledger.TotalEarnings + amount)
	m.ledger.UpdatedAt = time.Now().UTC()
	copied := m.ledger
	return &copied, nil
}
