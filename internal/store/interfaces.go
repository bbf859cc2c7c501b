//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/okulik/mealsync/models"
)

// RecordRepository is the accessor for the versioned record collection.
//
// Apply is the single write primitive used during batch processing: an atomic
// conditional upsert guarded by the stored version, so conflict detection and
// application cannot interleave with another writer.
type RecordRepository interface {
	// Get returns the record or ErrRecordNotFound.
	Get(ctx context.Context, userID int64, recordID string) (models.Record, error)

	// Apply upserts rec iff the stored version is <= rec.Version (or the
	// record is absent). On success applied is true. When the guard rejects
	// the write, applied is false and current holds a snapshot of the stored
	// record for the conflict payload.
	Apply(ctx context.Context, rec models.Record) (applied bool, current *models.Record, err error)

	// ResolveUpsert writes data as the record's new content during conflict
	// reconciliation, bypassing the version guard. An existing record's
	// version is bumped to stored+1; an absent one is created at
	// insertVersion. Returns the resulting version.
	ResolveUpsert(ctx context.Context, userID int64, recordID string, data json.RawMessage, insertVersion int64) (int64, error)

	// Delete removes the record unconditionally and returns the number of
	// rows affected. Deleting an absent id is a no-op (0, nil).
	Delete(ctx context.Context, userID int64, recordID string) (int64, error)
}

// BatchRepository persists sync batches and owns their status transitions.
type BatchRepository interface {
	Insert(ctx context.Context, batch models.SyncBatch) error

	// GetByID returns the batch or ErrBatchNotFound.
	GetByID(ctx context.Context, batchID string) (models.SyncBatch, error)

	// Claim atomically moves a pending batch to processing and returns it.
	// Returns ErrBatchNotFound for an unknown id and ErrBatchNotClaimable
	// when the batch is not pending.
	Claim(ctx context.Context, batchID string) (models.SyncBatch, error)

	// Release moves a processing batch back to pending so it can be
	// reprocessed after an infrastructure failure.
	Release(ctx context.Context, batchID string) error

	MarkCompleted(ctx context.Context, batchID string, completedAt time.Time) error
	MarkFailed(ctx context.Context, batchID string, conflicts []models.Conflict) error

	// ListPending returns ids of pending batches, oldest first.
	ListPending(ctx context.Context, limit uint64) ([]string, error)

	// CountPending counts pending batches for a user/client pair, narrowed
	// to batches updated strictly after updatedAfter when it is non-nil.
	CountPending(ctx context.Context, userID int64, clientID string, updatedAfter *time.Time) (int64, error)

	// LastCompletedAt returns the completion time of the most recently
	// completed batch for the client, or nil if none has completed.
	LastCompletedAt(ctx context.Context, userID int64, clientID string) (*time.Time, error)
}

// ConflictRepository persists unresolved conflicts and records resolution
// decisions.
type ConflictRepository interface {
	Insert(ctx context.Context, conflicts ...models.Conflict) error

	// GetByUser returns the user's unresolved conflicts, newest first.
	GetByUser(ctx context.Context, userID int64) ([]models.Conflict, error)

	// Resolve records the resolution decision iff the conflict is still
	// pending, and returns the resolved conflict. Returns ErrConflictNotFound
	// for an unknown id and ErrConflictAlreadyResolved on a reused one.
	Resolve(ctx context.Context, conflictID string, resolution models.ConflictResolution, resolvedData json.RawMessage, resolvedAt time.Time) (models.Conflict, error)

	CountUnresolved(ctx context.Context, userID int64) (int64, error)
}

// ErrorClassificator classifies database errors as transient or permanent so
// that callers can decide whether resubmitting a batch is worthwhile.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning helpers.
type rowScanner interface {
	Scan(dest ...any) error
}
