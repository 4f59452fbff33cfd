package queries

const (
	InsertTaskQuery = `
		INSERT INTO taskrunner.task_data (
			task_id, creator_id, name, capability_required, status,
			data_items_ref, total_items, max_buckets, max_bucket_bytes,
			next_bucket_index, assigned_workers, revoked,
			cost_per_bucket, max_billable_buckets, budget_total,
			chunks_paid, budget_spent, platform_fee_percent,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	SelectTaskByIDQuery = `
		SELECT task_id, creator_id, name, capability_required, status,
			data_items_ref, total_items, max_buckets, max_bucket_bytes,
			next_bucket_index, assigned_workers, revoked,
			cost_per_bucket, max_billable_buckets, budget_total,
			chunks_paid, budget_spent, platform_fee_percent,
			created_at, updated_at
		FROM taskrunner.task_data
		WHERE task_id = ?`

	SelectAllTasksQuery = `
		SELECT task_id, creator_id, name, capability_required, status,
			data_items_ref, total_items, max_buckets, max_bucket_bytes,
			next_bucket_index, assigned_workers, revoked,
			cost_per_bucket, max_billable_buckets, budget_total,
			chunks_paid, budget_spent, platform_fee_percent,
			created_at, updated_at
		FROM taskrunner.task_data`

	UpdateTaskQuery = `
		UPDATE taskrunner.task_data
		SET status = ?, data_items_ref = ?, total_items = ?,
			max_buckets = ?, max_bucket_bytes = ?, next_bucket_index = ?,
			assigned_workers = ?, revoked = ?, chunks_paid = ?,
			budget_spent = ?, updated_at = ?
		WHERE task_id = ?`

	DeleteTaskQuery = `DELETE FROM taskrunner.task_data WHERE task_id = ?`

	UpsertChunkResultQuery = `
		INSERT INTO taskrunner.chunk_results (
			task_id, bucket_index, range_start, range_end, items_count,
			status, processed_items, bytes_used, worker_id,
			item_results, item_results_total, item_results_truncated,
			output, error, payout_issued, payout_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	SelectChunkResultQuery = `
		SELECT task_id, bucket_index, range_start, range_end, items_count,
			status, processed_items, bytes_used, worker_id,
			item_results, item_results_total, item_results_truncated,
			output, error, payout_issued, payout_at, created_at, updated_at
		FROM taskrunner.chunk_results
		WHERE task_id = ? AND bucket_index = ?`

	SelectChunkResultsByTaskQuery = `
		SELECT task_id, bucket_index, range_start, range_end, items_count,
			status, processed_items, bytes_used, worker_id,
			item_results, item_results_total, item_results_truncated,
			output, error, payout_issued, payout_at, created_at, updated_at
		FROM taskrunner.chunk_results
		WHERE task_id = ?`

	DeleteChunkResultQuery = `
		DELETE FROM taskrunner.chunk_results WHERE task_id = ? AND bucket_index = ?`

	DeleteChunkResultsByTaskQuery = `
		DELETE FROM taskrunner.chunk_results WHERE task_id = ?`

	UpsertChunkAssignmentQuery = `
		INSERT INTO taskrunner.chunk_assignments (
			task_id, bucket_index, worker_id, assigned_at, expires_at,
			range_start, range_end, processed_count, progress_range_end,
			bytes_used, last_batch_offset, last_batch_size, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	SelectChunkAssignmentQuery = `
		SELECT task_id, bucket_index, worker_id, assigned_at, expires_at,
			range_start, range_end, processed_count, progress_range_end,
			bytes_used, last_batch_offset, last_batch_size, updated_at
		FROM taskrunner.chunk_assignments
		WHERE task_id = ? AND bucket_index = ?`

	SelectChunkAssignmentsByTaskQuery = `
		SELECT task_id, bucket_index, worker_id, assigned_at, expires_at,
			range_start, range_end, processed_count, progress_range_end,
			bytes_used, last_batch_offset, last_batch_size, updated_at
		FROM taskrunner.chunk_assignments
		WHERE task_id = ?`

	DeleteChunkAssignmentQuery = `
		DELETE FROM taskrunner.chunk_assignments WHERE task_id = ? AND bucket_index = ?`

	DeleteChunkAssignmentsByTaskQuery = `
		DELETE FROM taskrunner.chunk_assignments WHERE task_id = ?`

	InsertUserQuery = `
		INSERT INTO taskrunner.user_data (
			user_id, session_id, wallet_balance, roles, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?)`

	SelectUserByIDQuery = `
		SELECT user_id, session_id, wallet_balance, roles, created_at, updated_at
		FROM taskrunner.user_data
		WHERE user_id = ?`

	SelectUserBySessionQuery = `
		SELECT user_id, session_id, wallet_balance, roles, created_at, updated_at
		FROM taskrunner.user_data
		WHERE session_id = ? ALLOW FILTERING`

	UpdateUserQuery = `
		UPDATE taskrunner.user_data
		SET wallet_balance = ?, roles = ?, updated_at = ?
		WHERE user_id = ?`

	InsertWalletTransactionQuery = `
		INSERT INTO taskrunner.wallet_transactions (
			user_id, created_at, tx_id, tx_type, amount, balance_after, meta
		) VALUES (?, ?, ?, ?, ?, ?, ?)`

	SelectWalletTransactionsByUserQuery = `
		SELECT user_id, created_at, tx_id, tx_type, amount, balance_after, meta
		FROM taskrunner.wallet_transactions
		WHERE user_id = ?
		LIMIT ?`

	SelectWalletTransactionCountQuery = `
		SELECT COUNT(*) FROM taskrunner.wallet_transactions WHERE user_id = ?`

	SelectPlatformLedgerQuery = `
		SELECT total_earnings, updated_at
		FROM taskrunner.platform_ledger
		WHERE ledger_id = ?`

	UpsertPlatformLedgerQuery = `
		INSERT INTO taskrunner.platform_ledger (ledger_id, total_earnings, updated_at)
		VALUES (?, ?, ?)`
)
