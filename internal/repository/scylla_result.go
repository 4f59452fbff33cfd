package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gocql/gocql"

	"github.com/SumitJoshiGIT/distributed-task-runner/internal/repository/queries"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/database"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/types"
)

type scyllaResultRepository struct {
	conn *database.Connection
}

func (r *scyllaResultRepository) Upsert(ctx context.Context, result *types.BucketResult) error {
	itemsJSON, err := json.Marshal(result.ItemResults)
	if err != nil {
		return err
	}

	var payoutAt time.Time
	if result.PayoutAt != nil {
		payoutAt = *result.PayoutAt
	}

	return r.conn.Session().Query(queries.UpsertChunkResultQuery,
		result.TaskID, result.BucketIndex, result.RangeStart, result.RangeEnd, result.ItemsCount,
		string(result.Status), result.ProcessedItems, result.BytesUsed, result.WorkerID,
		string(itemsJSON), result.ItemResultsTotal, result.ItemResultsTruncated,
		result.Output, result.Error, result.PayoutIssued, payoutAt,
		result.CreatedAt, result.UpdatedAt,
	).WithContext(ctx).Exec()
}

func (r *scyllaResultRepository) Get(ctx context.Context, taskID string, bucketIndex int) (*types.BucketResult, error) {
	result, err := scanResult(r.conn.Session().Query(queries.SelectChunkResultQuery, taskID, bucketIndex).WithContext(ctx))
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	return result, err
}

func (r *scyllaResultRepository) ListByTask(ctx context.Context, taskID string) ([]*types.BucketResult, error) {
	iter := r.conn.Session().Query(queries.SelectChunkResultsByTaskQuery, taskID).WithContext(ctx).Iter()

	var results []*types.BucketResult
	for {
		result, ok := scanResultFromIter(iter)
		if !ok {
			break
		}
		results = append(results, result)
	}

	if err := iter.Close(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *scyllaResultRepository) Delete(ctx context.Context, taskID string, bucketIndex int) error {
	return r.conn.Session().Query(queries.DeleteChunkResultQuery, taskID, bucketIndex).WithContext(ctx).Exec()
}

func (r *scyllaResultRepository) DeleteByTask(ctx context.Context, taskID string) error {
	return r.conn.Session().Query(queries.DeleteChunkResultsByTaskQuery, taskID).WithContext(ctx).Exec()
}

func scanResult(q *gocql.Query) (*types.BucketResult, error) {
	var result types.BucketResult
	var status, itemsJSON string
	var payoutAt time.Time

	err := q.Scan(
		&result.TaskID, &result.BucketIndex, &result.RangeStart, &result.RangeEnd, &result.ItemsCount,
		&status, &result.ProcessedItems, &result.BytesUsed, &result.WorkerID,
		&itemsJSON, &result.ItemResultsTotal, &result.ItemResultsTruncated,
		&result.Output, &result.Error, &result.PayoutIssued, &payoutAt,
		&result.CreatedAt, &result.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	finishResultScan(&result, status, itemsJSON, payoutAt)
	return &result, nil
}

func scanResultFromIter(iter *gocql.Iter) (*types.BucketResult, bool) {
	var result types.BucketResult
	var status, itemsJSON string
	var payoutAt time.Time

	if !iter.Scan(
		&result.TaskID, &result.BucketIndex, &result.RangeStart, &result.RangeEnd, &result.ItemsCount,
		&status, &result.ProcessedItems, &result.BytesUsed, &result.WorkerID,
		&itemsJSON, &result.ItemResultsTotal, &result.ItemResultsTruncated,
		&result.Output, &result.Error, &result.PayoutIssued, &payoutAt,
		&result.CreatedAt, &result.UpdatedAt,
	) {
		return nil, false
	}

	finishResultScan(&result, status, itemsJSON, payoutAt)
	return &result, true
}

func finishResultScan(result *types.BucketResult, status, itemsJSON string, payoutAt time.Time) {
	result.Status = types.BucketStatus(status)
	if itemsJSON != "" {
		_ = json.Unmarshal([]byte(itemsJSON), &result.ItemResults)
	}
	if !payoutAt.IsZero() {
		result.PayoutAt = &payoutAt
	}
}
