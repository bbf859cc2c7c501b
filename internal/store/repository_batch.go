package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okulik/mealsync/internal/logger"
	"github.com/okulik/mealsync/models"
)

// batchRepository is the SQL-backed implementation of [BatchRepository].
// Batch items and conflicts are stored as JSON columns; status transitions
// are conditional UPDATEs so that two processors cannot both claim the same
// batch.
type batchRepository struct {
	*DB
	logger *logger.Logger
}

// NewBatchRepository constructs a [BatchRepository] backed by the provided
// database connection and logger.
func NewBatchRepository(db *DB, logger *logger.Logger) BatchRepository {
	return &batchRepository{
		DB:     db,
		logger: logger,
	}
}

func (b *batchRepository) Insert(ctx context.Context, batch models.SyncBatch) error {
	log := logger.FromContext(ctx)

	items, err := json.Marshal(batch.Items)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodingPayload, err)
	}

	conflicts, err := json.Marshal(batch.Conflicts)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodingPayload, err)
	}

	_, execErr := b.DB.ExecContext(ctx, insertBatch,
		batch.ID,
		batch.UserID,
		batch.ClientID,
		items,
		string(batch.Status),
		conflicts,
		batch.CreatedAt,
		batch.UpdatedAt,
	)
	if execErr != nil {
		log.Err(execErr).
			Str("func", "*batchRepository.Insert").
			Str("batch_id", batch.ID).
			Int64("user_id", batch.UserID).
			Msg("failed to insert sync batch")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, execErr)
	}

	return nil
}

func (b *batchRepository) GetByID(ctx context.Context, batchID string) (models.SyncBatch, error) {
	log := logger.FromContext(ctx)

	batch, err := scanBatch(b.DB.QueryRowContext(ctx, getBatch, batchID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.SyncBatch{}, ErrBatchNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "*batchRepository.GetByID").
			Str("batch_id", batchID).
			Msg("failed to query sync batch")
		return models.SyncBatch{}, err
	}

	return batch, nil
}

// Claim transitions the batch from pending to processing and returns it.
// The conditional UPDATE is the whole claim: zero affected rows means the
// batch is unknown or not pending, which a follow-up read disambiguates.
func (b *batchRepository) Claim(ctx context.Context, batchID string) (models.SyncBatch, error) {
	log := logger.FromContext(ctx)

	now := time.Now().UTC()

	batch, err := scanBatch(b.DB.QueryRowContext(ctx, claimBatch, batchID, now))
	if err == nil {
		return batch, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		log.Err(err).
			Str("func", "*batchRepository.Claim").
			Str("batch_id", batchID).
			Msg("failed to claim sync batch")
		return models.SyncBatch{}, err
	}

	// Nothing was claimed: unknown id or wrong status.
	if _, getErr := b.GetByID(ctx, batchID); getErr != nil {
		return models.SyncBatch{}, getErr
	}

	log.Warn().
		Str("func", "*batchRepository.Claim").
		Str("batch_id", batchID).
		Msg("sync batch is not pending, refusing to claim")

	return models.SyncBatch{}, ErrBatchNotClaimable
}

func (b *batchRepository) Release(ctx context.Context, batchID string) error {
	_, err := b.DB.ExecContext(ctx, releaseBatch, batchID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return nil
}

func (b *batchRepository) MarkCompleted(ctx context.Context, batchID string, completedAt time.Time) error {
	_, err := b.DB.ExecContext(ctx, completeBatch, batchID, completedAt)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return nil
}

func (b *batchRepository) MarkFailed(ctx context.Context, batchID string, conflicts []models.Conflict) error {
	payload, err := json.Marshal(conflicts)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodingPayload, err)
	}

	_, execErr := b.DB.ExecContext(ctx, failBatch, batchID, payload, time.Now().UTC())
	if execErr != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, execErr)
	}

	return nil
}

func (b *batchRepository) ListPending(ctx context.Context, limit uint64) ([]string, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListPendingQuery(limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := b.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "*batchRepository.ListPending").
			Msg("failed to query pending batches")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	ids := make([]string, 0, limit)

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return ids, nil
}

func (b *batchRepository) CountPending(ctx context.Context, userID int64, clientID string, updatedAfter *time.Time) (int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildCountPendingQuery(userID, clientID, updatedAfter)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var count int64
	if err := b.DB.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Err(err).
			Str("func", "*batchRepository.CountPending").
			Int64("user_id", userID).
			Str("client_id", clientID).
			Msg("failed to count pending batches")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return count, nil
}

func (b *batchRepository) LastCompletedAt(ctx context.Context, userID int64, clientID string) (*time.Time, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildLastCompletedAtQuery(userID, clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var completedAt sql.NullTime
	scanErr := b.DB.QueryRowContext(ctx, query, args...).Scan(&completedAt)
	if errors.Is(scanErr, sql.ErrNoRows) {
		return nil, nil
	}
	if scanErr != nil {
		log.Err(scanErr).
			Str("func", "*batchRepository.LastCompletedAt").
			Int64("user_id", userID).
			Str("client_id", clientID).
			Msg("failed to query last completed batch")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, scanErr)
	}

	if !completedAt.Valid {
		return nil, nil
	}

	t := completedAt.Time
	return &t, nil
}

// scanBatch reads one sync_batches row. JSON columns are decoded into the
// model's item and conflict slices.
func scanBatch(s rowScanner) (models.SyncBatch, error) {
	var batch models.SyncBatch
	var items, conflicts []byte
	var status string
	var completedAt sql.NullTime

	err := s.Scan(
		&batch.ID,
		&batch.UserID,
		&batch.ClientID,
		&items,
		&status,
		&conflicts,
		&batch.CreatedAt,
		&batch.UpdatedAt,
		&completedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SyncBatch{}, err
	}
	if err != nil {
		return models.SyncBatch{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	batch.Status = models.BatchStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		batch.CompletedAt = &t
	}

	if len(items) > 0 {
		if err := json.Unmarshal(items, &batch.Items); err != nil {
			return models.SyncBatch{}, fmt.Errorf("%w: %w", ErrEncodingPayload, err)
		}
	}
	if len(conflicts) > 0 {
		if err := json.Unmarshal(conflicts, &batch.Conflicts); err != nil {
			return models.SyncBatch{}, fmt.Errorf("%w: %w", ErrEncodingPayload, err)
		}
	}

	return batch, nil
}
