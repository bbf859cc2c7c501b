// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oleg Kulik

package store

import (
	"time"

	sq "github.com/Masterminds/squirrel"
)

const (
	getRecord = `
		SELECT record_id, user_id, data, version, created_at, updated_at
		FROM records
		WHERE user_id = $1 AND record_id = $2;`

	// applyRecord is the conditional write at the heart of batch processing:
	// the insert succeeds for an absent record, the update fires only while
	// the stored version does not exceed the asserted one. When the guard
	// rejects the write no row is returned, which the repository reports as
	// a version conflict. Detection and application are therefore a single
	// atomic statement; no second writer can interleave between them.
	applyRecord = `
		INSERT INTO records (user_id, record_id, data, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (user_id, record_id) DO UPDATE
		SET data = excluded.data, version = excluded.version, updated_at = excluded.updated_at
		WHERE records.version <= excluded.version
		RETURNING version;`

	// resolveRecord bypasses the version guard for conflict reconciliation.
	// An existing record is always bumped to version + 1, keeping the version
	// strictly greater than the one that raised the conflict.
	resolveRecord = `
		INSERT INTO records (user_id, record_id, data, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (user_id, record_id) DO UPDATE
		SET data = excluded.data, version = records.version + 1, updated_at = excluded.updated_at
		RETURNING version;`

	deleteRecord = `
		DELETE FROM records
		WHERE user_id = $1 AND record_id = $2;`

	insertBatch = `
		INSERT INTO sync_batches (batch_id, user_id, client_id, items, status, conflicts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`

	getBatch = `
		SELECT batch_id, user_id, client_id, items, status, conflicts, created_at, updated_at, completed_at
		FROM sync_batches
		WHERE batch_id = $1;`

	// claimBatch moves pending → processing in one statement. Zero returned
	// rows means the batch is either unknown or not pending; the repository
	// follows up with getBatch to tell the two apart.
	claimBatch = `
		UPDATE sync_batches
		SET status = 'processing', updated_at = $2
		WHERE batch_id = $1 AND status = 'pending'
		RETURNING batch_id, user_id, client_id, items, status, conflicts, created_at, updated_at, completed_at;`

	releaseBatch = `
		UPDATE sync_batches
		SET status = 'pending', updated_at = $2
		WHERE batch_id = $1 AND status = 'processing';`

	completeBatch = `
		UPDATE sync_batches
		SET status = 'completed', updated_at = $2, completed_at = $2
		WHERE batch_id = $1;`

	failBatch = `
		UPDATE sync_batches
		SET status = 'failed', conflicts = $2, updated_at = $3
		WHERE batch_id = $1;`

	insertConflict = `
		INSERT INTO sync_conflicts (conflict_id, batch_id, user_id, record_id, message, server_record, client_item, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`

	// resolveConflict records the decision iff the conflict is still pending,
	// making resolution at-most-once without a read-then-write window.
	resolveConflict = `
		UPDATE sync_conflicts
		SET status = 'resolved', resolution = $2, resolved_data = $3, resolved_at = $4
		WHERE conflict_id = $1 AND status = 'pending'
		RETURNING conflict_id, batch_id, user_id, record_id, message, server_record, client_item, status, resolution, resolved_data, created_at, resolved_at;`

	getConflictStatus = `
		SELECT status
		FROM sync_conflicts
		WHERE conflict_id = $1;`
)

// psql builds the dynamic queries with $N placeholders, matching the constant
// queries above. SQLite accepts the $N form as well, so one builder serves
// both drivers.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func buildCountPendingQuery(userID int64, clientID string, updatedAfter *time.Time) (string, []any, error) {
	q := psql.Select("COUNT(*)").
		From("sync_batches").
		Where(sq.Eq{"user_id": userID, "client_id": clientID, "status": "pending"})

	if updatedAfter != nil {
		q = q.Where(sq.Gt{"updated_at": *updatedAfter})
	}

	return q.ToSql()
}

func buildLastCompletedAtQuery(userID int64, clientID string) (string, []any, error) {
	return psql.Select("completed_at").
		From("sync_batches").
		Where(sq.Eq{"user_id": userID, "client_id": clientID, "status": "completed"}).
		OrderBy("completed_at DESC").
		Limit(1).
		ToSql()
}

func buildListPendingQuery(limit uint64) (string, []any, error) {
	return psql.Select("batch_id").
		From("sync_batches").
		Where(sq.Eq{"status": "pending"}).
		OrderBy("created_at ASC").
		Limit(limit).
		ToSql()
}

func buildUserConflictsQuery(userID int64) (string, []any, error) {
	return psql.Select(
		"conflict_id", "batch_id", "user_id", "record_id", "message",
		"server_record", "client_item", "status", "resolution",
		"resolved_data", "created_at", "resolved_at",
	).
		From("sync_conflicts").
		Where(sq.Eq{"user_id": userID, "status": "pending"}).
		OrderBy("created_at DESC").
		ToSql()
}

func buildCountUnresolvedQuery(userID int64) (string, []any, error) {
	return psql.Select("COUNT(*)").
		From("sync_conflicts").
		Where(sq.Eq{"user_id": userID, "status": "pending"}).
		ToSql()
}
