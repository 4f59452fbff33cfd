package repository

import (
	"context"

	"github.com/gocql/gocql"

	"github.com/SumitJoshiGIT/distributed-task-runner/internal/repository/queries"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/database"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/types"
)

type scyllaAssignmentRepository struct {
	conn *database.Connection
}

func (r *scyllaAssignmentRepository) Upsert(ctx context.Context, a *types.BucketAssignment) error {
	return r.conn.Session().Query(queries.UpsertChunkAssignmentQuery,
		a.TaskID, a.BucketIndex, a.WorkerID, a.AssignedAt, a.ExpiresAt,
		a.RangeStart, a.RangeEnd, a.ProcessedCount, a.ProgressRangeEnd,
		a.BytesUsed, a.LastBatchOffset, a.LastBatchSize, a.UpdatedAt,
	).WithContext(ctx).Exec()
}

func (r *scyllaAssignmentRepository) Get(ctx context.Context, taskID string, bucketIndex int) (*types.BucketAssignment, error) {
	var a types.BucketAssignment
	err := r.conn.Session().Query(queries.SelectChunkAssignmentQuery, taskID, bucketIndex).WithContext(ctx).Scan(
		&a.TaskID, &a.BucketIndex, &a.WorkerID, &a.AssignedAt, &a.ExpiresAt,
		&a.RangeStart, &a.RangeEnd, &a.ProcessedCount, &a.ProgressRangeEnd,
		&a.BytesUsed, &a.LastBatchOffset, &a.LastBatchSize, &a.UpdatedAt,
	)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *scyllaAssignmentRepository) ListByTask(ctx context.Context, taskID string) ([]*types.BucketAssignment, error) {
	iter := r.conn.Session().Query(queries.SelectChunkAssignmentsByTaskQuery, taskID).WithContext(ctx).Iter()

	var assignments []*types.BucketAssignment
	for {
		var a types.BucketAssignment
		if !iter.Scan(
			&a.TaskID, &a.BucketIndex, &a.WorkerID, &a.AssignedAt, &a.ExpiresAt,
			&a.RangeStart, &a.RangeEnd, &a.ProcessedCount, &a.ProgressRangeEnd,
			&a.BytesUsed, &a.LastBatchOffset, &a.LastBatchSize, &a.UpdatedAt,
		) {
			break
		}
		copied := a
		assignments = append(assignments, &copied)
	}

	if err := iter.Close(); err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *scyllaAssignmentRepository) Delete(ctx context.Context, taskID string, bucketIndex int) error {
	return r.conn.Session().Query(queries.DeleteChunkAssignmentQuery, taskID, bucketIndex).WithContext(ctx).Exec()
}

func (r *scyllaAssignmentRepository) DeleteByTask(ctx context.Context, taskID string) error {
	return r.conn.Session().Query(queries.DeleteChunkAssignmentsByTaskQuery, taskID).WithContext(ctx).Exec()
}
