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

// conflictRepository is the SQL-backed implementation of [ConflictRepository].
//
// Resolution uses a conditional UPDATE guarded by status='pending', so a
// conflict can be resolved at most once regardless of concurrent callers.
type conflictRepository struct {
	*DB
	logger *logger.Logger
}

// NewConflictRepository constructs a [ConflictRepository] backed by the
// provided database connection and logger.
func NewConflictRepository(db *DB, logger *logger.Logger) ConflictRepository {
	return &conflictRepository{
		DB:     db,
		logger: logger,
	}
}

// Insert persists one or more conflicts.
//
// Routing strategy:
//   - Zero conflicts → no-op (returns nil with a warning log).
//   - Exactly one → direct insert (no transaction overhead).
//   - Two or more → all inserts inside a single transaction.
func (c *conflictRepository) Insert(ctx context.Context, conflicts ...models.Conflict) error {
	log := logger.FromContext(ctx)

	if len(conflicts) == 0 {
		log.Warn().
			Str("func", "*conflictRepository.Insert").
			Msg("no conflicts provided")
		return nil
	}

	if len(conflicts) == 1 {
		return c.insertSingle(ctx, c.DB.DB, conflicts[0])
	}

	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	for _, conflict := range conflicts {
		if err := c.insertSingle(ctx, tx, conflict); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return nil
}

// execer abstracts *sql.DB and *sql.Tx for insertSingle.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (c *conflictRepository) insertSingle(ctx context.Context, db execer, conflict models.Conflict) error {
	log := logger.FromContext(ctx)

	serverRecord, err := json.Marshal(conflict.Item)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodingPayload, err)
	}

	clientItem, err := json.Marshal(conflict.ClientItem)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodingPayload, err)
	}

	_, execErr := db.ExecContext(ctx, insertConflict,
		conflict.ID,
		conflict.BatchID,
		conflict.UserID,
		conflict.RecordID,
		conflict.Message,
		serverRecord,
		clientItem,
		string(conflict.Status),
		conflict.CreatedAt,
	)
	if execErr != nil {
		log.Err(execErr).
			Str("func", "*conflictRepository.insertSingle").
			Str("conflict_id", conflict.ID).
			Str("record_id", conflict.RecordID).
			Msg("failed to insert conflict")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, execErr)
	}

	return nil
}

// GetByUser returns the user's unresolved conflicts ordered by creation time
// descending, so the newest conflict is always first.
func (c *conflictRepository) GetByUser(ctx context.Context, userID int64) ([]models.Conflict, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildUserConflictsQuery(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := c.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "*conflictRepository.GetByUser").
			Int64("user_id", userID).
			Msg("failed to query user conflicts")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	conflicts := make([]models.Conflict, 0, 10)

	for rows.Next() {
		conflict, scanErr := scanConflict(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		conflicts = append(conflicts, conflict)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return conflicts, nil
}

// Resolve records the resolution decision and returns the resolved conflict.
// The pending-status guard makes resolution at-most-once: an UPDATE that
// matches no row is followed up with a status read to distinguish an unknown
// id ([ErrConflictNotFound]) from a reused one ([ErrConflictAlreadyResolved]).
func (c *conflictRepository) Resolve(ctx context.Context, conflictID string, resolution models.ConflictResolution, resolvedData json.RawMessage, resolvedAt time.Time) (models.Conflict, error) {
	log := logger.FromContext(ctx)

	conflict, err := scanConflict(c.DB.QueryRowContext(ctx, resolveConflict, conflictID, string(resolution), resolvedData, resolvedAt))
	if err == nil {
		log.Info().
			Str("func", "*conflictRepository.Resolve").
			Str("conflict_id", conflictID).
			Str("resolution", string(resolution)).
			Msg("conflict resolved")
		return conflict, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		log.Err(err).
			Str("func", "*conflictRepository.Resolve").
			Str("conflict_id", conflictID).
			Msg("failed to resolve conflict")
		return models.Conflict{}, err
	}

	// The guard matched nothing: unknown id or already resolved.
	var status string
	statusErr := c.DB.QueryRowContext(ctx, getConflictStatus, conflictID).Scan(&status)
	if errors.Is(statusErr, sql.ErrNoRows) {
		return models.Conflict{}, ErrConflictNotFound
	}
	if statusErr != nil {
		return models.Conflict{}, fmt.Errorf("%w: %w", ErrExecutingQuery, statusErr)
	}

	log.Warn().
		Str("func", "*conflictRepository.Resolve").
		Str("conflict_id", conflictID).
		Str("status", status).
		Msg("conflict is not pending, refusing to resolve again")

	return models.Conflict{}, ErrConflictAlreadyResolved
}

func (c *conflictRepository) CountUnresolved(ctx context.Context, userID int64) (int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildCountUnresolvedQuery(userID)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var count int64
	if err := c.DB.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Err(err).
			Str("func", "*conflictRepository.CountUnresolved").
			Int64("user_id", userID).
			Msg("failed to count unresolved conflicts")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return count, nil
}

// scanConflict reads one sync_conflicts row, decoding the stored record
// snapshot and the losing client item from their JSON columns.
func scanConflict(s rowScanner) (models.Conflict, error) {
	var conflict models.Conflict
	var serverRecord, clientItem, resolvedData []byte
	var status string
	var resolution sql.NullString
	var resolvedAt sql.NullTime

	err := s.Scan(
		&conflict.ID,
		&conflict.BatchID,
		&conflict.UserID,
		&conflict.RecordID,
		&conflict.Message,
		&serverRecord,
		&clientItem,
		&status,
		&resolution,
		&resolvedData,
		&conflict.CreatedAt,
		&resolvedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conflict{}, err
	}
	if err != nil {
		return models.Conflict{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	conflict.Type = models.ConflictType
	conflict.Status = models.ConflictStatus(status)
	if resolution.Valid {
		conflict.Resolution = models.ConflictResolution(resolution.String)
	}
	if len(resolvedData) > 0 {
		conflict.ResolvedData = resolvedData
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		conflict.ResolvedAt = &t
	}

	if err := json.Unmarshal(serverRecord, &conflict.Item); err != nil {
		return models.Conflict{}, fmt.Errorf("%w: %w", ErrEncodingPayload, err)
	}
	if err := json.Unmarshal(clientItem, &conflict.ClientItem); err != nil {
		return models.Conflict{}, fmt.Errorf("%w: %w", ErrEncodingPayload, err)
	}

	return conflict, nil
}
