package database

import (
	"github.com/gocql/gocql"
)

// InitSchema creates the keyspace and the six collections the dispatch and
// accounting engine persists into.
func InitSchema(session *gocql.Session) error {
	if err := session.Query(`
		CREATE KEYSPACE IF NOT EXISTS taskrunner
		WITH replication = {
			'class': 'SimpleStrategy',
			'replication_factor': 1
		}`).Exec(); err != nil {
		return err
	}

	if err := session.Query(`
		CREATE TABLE IF NOT EXISTS taskrunner.task_data (
			task_id text PRIMARY KEY,
			creator_id text,
			name text,
			capability_required text,
			status text,
			data_items_ref text,
			total_items int,
			max_buckets int,
			max_bucket_bytes bigint,
			next_bucket_index int,
			assigned_workers set<text>,
			revoked boolean,
			cost_per_bucket double,
			max_billable_buckets int,
			budget_total double,
			chunks_paid int,
			budget_spent double,
			platform_fee_percent double,
			created_at timestamp,
			updated_at timestamp
		)`).Exec(); err != nil {
		return err
	}

	if err := session.Query(`
		CREATE TABLE IF NOT EXISTS taskrunner.chunk_results (
			task_id text,
			bucket_index int,
			range_start int,
			range_end int,
			items_count int,
			status text,
			processed_items int,
			bytes_used bigint,
			worker_id text,
			item_results text,
			item_results_total int,
			item_results_truncated boolean,
			output text,
			error text,
			payout_issued boolean,
			payout_at timestamp,
			created_at timestamp,
			updated_at timestamp,
			PRIMARY KEY (task_id, bucket_index)
		)`).Exec(); err != nil {
		return err
	}

	if err := session.Query(`
		CREATE TABLE IF NOT EXISTS taskrunner.chunk_assignments (
			task_id text,
			bucket_index int,
			worker_id text,
			assigned_at timestamp,
			expires_at timestamp,
			range_start int,
			range_end int,
			processed_count int,
			progress_range_end int,
			bytes_used bigint,
			last_batch_offset int,
			last_batch_size int,
			updated_at timestamp,
			PRIMARY KEY (task_id, bucket_index)
		)`).Exec(); err != nil {
		return err
	}

	if err := session.Query(`
		CREATE TABLE IF NOT EXISTS taskrunner.user_data (
			user_id text PRIMARY KEY,
			session_id text,
			wallet_balance double,
			roles set<text>,
			created_at timestamp,
			updated_at timestamp
		)`).Exec(); err != nil {
		return err
	}

	if err := session.Query(`
		CREATE INDEX IF NOT EXISTS user_data_session_idx
		ON taskrunner.user_data (session_id)`).Exec(); err != nil {
		return err
	}

	if err := session.Query(`
		CREATE TABLE IF NOT EXISTS taskrunner.wallet_transactions (
			user_id text,
			created_at timestamp,
			tx_id text,
			tx_type text,
			amount double,
			balance_after double,
			meta text,
			PRIMARY KEY (user_id, created_at, tx_id)
		) WITH CLUSTERING ORDER BY (created_at DESC)`).Exec(); err != nil {
		return err
	}

	if err := session.Query(`
		CREATE TABLE IF NOT EXISTS taskrunner.platform_ledger (
			ledger_id text PRIMARY KEY,
			total_earnings double,
			updated_at timestamp
		)`).Exec(); err != nil {
		return err
	}

	return nil
}
