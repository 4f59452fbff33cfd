package repository

import (
	"context"
	"time"

	"github.com/gocql/gocql"

	"github.com/SumitJoshiGIT/distributed-task-runner/internal/repository/queries"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/database"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/types"
)

type scyllaTaskRepository struct {
	conn *database.Connection
}

func (r *scyllaTaskRepository) Create(ctx context.Context, task *types.TaskData) error {
	return r.conn.Session().Query(queries.InsertTaskQuery,
		task.ID, task.CreatorID, task.Name, task.CapabilityRequired, string(task.Status),
		task.DataItemsRef, task.TotalItems, task.BucketConfig.MaxBuckets, task.BucketConfig.MaxBucketBytes,
		task.NextBucketIndex, task.AssignedWorkers, task.Revoked,
		task.CostPerBucket, task.MaxBillableBuckets, task.BudgetTotal,
		task.ChunksPaid, task.BudgetSpent, task.PlatformFeePercent,
		task.CreatedAt, task.UpdatedAt,
	).WithContext(ctx).Exec()
}

func (r *scyllaTaskRepository) GetByID(ctx context.Context, id string) (*types.TaskData, error) {
	var task types.TaskData
	var status string
	err := r.conn.Session().Query(queries.SelectTaskByIDQuery, id).WithContext(ctx).Scan(
		&task.ID, &task.CreatorID, &task.Name, &task.CapabilityRequired, &status,
		&task.DataItemsRef, &task.TotalItems, &task.BucketConfig.MaxBuckets, &task.BucketConfig.MaxBucketBytes,
		&task.NextBucketIndex, &task.AssignedWorkers, &task.Revoked,
		&task.CostPerBucket, &task.MaxBillableBuckets, &task.BudgetTotal,
		&task.ChunksPaid, &task.BudgetSpent, &task.PlatformFeePercent,
		&task.CreatedAt, &task.UpdatedAt,
	)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	task.Status = types.TaskStatus(status)
	return &task, nil
}

func (r *scyllaTaskRepository) List(ctx context.Context) ([]*types.TaskData, error) {
	iter := r.conn.Session().Query(queries.SelectAllTasksQuery).WithContext(ctx).Iter()

	var tasks []*types.TaskData
	for {
		var task types.TaskData
		var status string
		if !iter.Scan(
			&task.ID, &task.CreatorID, &task.Name, &task.CapabilityRequired, &status,
			&task.DataItemsRef, &task.TotalItems, &task.BucketConfig.MaxBuckets, &task.BucketConfig.MaxBucketBytes,
			&task.NextBucketIndex, &task.AssignedWorkers, &task.Revoked,
			&task.CostPerBucket, &task.MaxBillableBuckets, &task.BudgetTotal,
			&task.ChunksPaid, &task.BudgetSpent, &task.PlatformFeePercent,
			&task.CreatedAt, &task.UpdatedAt,
		) {
			break
		}
		task.Status = types.TaskStatus(status)
		copied := task
		tasks = append(tasks, &copied)
	}

	if err := iter.Close(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *scyllaTaskRepository) Update(ctx context.Context, task *types.TaskData) error {
	task.UpdatedAt = time.Now().UTC()
	return r.conn.Session().Query(queries.UpdateTaskQuery,
		string(task.Status), task.DataItemsRef, task.TotalItems,
		task.BucketConfig.MaxBuckets, task.BucketConfig.MaxBucketBytes, task.NextBucketIndex,
		task.AssignedWorkers, task.Revoked, task.ChunksPaid,
		task.BudgetSpent, task.UpdatedAt,
		task.ID,
	).WithContext(ctx).Exec()
}

func (r *scyllaTaskRepository) Delete(ctx context.Context, id string) error {
	return r.conn.Session().Query(queries.DeleteTaskQuery, id).WithContext(ctx).Exec()
}
