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

// recordRepository is the SQL-backed implementation of [RecordRepository].
// It executes all record operations directly against the "records" table
// using the embedded [*DB] connection.
//
// Every public method obtains a context-scoped logger via
// [logger.FromContext] so that all database interactions are traced with
// structured fields (user_id, record_id, version).
type recordRepository struct {
	*DB
	logger *logger.Logger
}

// NewRecordRepository constructs a [RecordRepository] backed by the provided
// database connection and logger.
func NewRecordRepository(db *DB, logger *logger.Logger) RecordRepository {
	return &recordRepository{
		DB:     db,
		logger: logger,
	}
}

// Get retrieves a single record by owner and id.
//
// Returns [ErrRecordNotFound] when no row matches.
func (r *recordRepository) Get(ctx context.Context, userID int64, recordID string) (models.Record, error) {
	log := logger.FromContext(ctx)

	var rec models.Record
	err := r.DB.QueryRowContext(ctx, getRecord, userID, recordID).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Data,
		&rec.Version,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Record{}, ErrRecordNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "*recordRepository.Get").
			Int64("user_id", userID).
			Str("record_id", recordID).
			Msg("failed to query record")
		return models.Record{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return rec, nil
}

// Apply performs the guarded upsert: the record is created when absent and
// replaced only while the stored version does not exceed rec.Version. The
// whole decision happens inside one statement, so there is no window for a
// concurrent writer between detection and application.
//
// When the guard rejects the write, the current stored record is fetched and
// returned as the conflict snapshot. Versions only grow, so a record that is
// newer at rejection time is still newer when the snapshot is read; if the
// record was deleted in between, the write is retried once and succeeds via
// the insert path.
func (r *recordRepository) Apply(ctx context.Context, rec models.Record) (bool, *models.Record, error) {
	log := logger.FromContext(ctx)

	now := time.Now().UTC()

	for attempt := 0; attempt < 2; attempt++ {
		var version int64
		err := r.DB.QueryRowContext(ctx, applyRecord, rec.UserID, rec.ID, rec.Data, rec.Version, now).Scan(&version)
		if err == nil {
			return true, nil, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			if r.errorClassificator.Classify(err) == Retryable {
				log.Warn().
					Str("func", "*recordRepository.Apply").
					Str("record_id", rec.ID).
					Msg("transient database error, batch can be resubmitted")
			}
			log.Err(err).
				Str("func", "*recordRepository.Apply").
				Int64("user_id", rec.UserID).
				Str("record_id", rec.ID).
				Int64("version", rec.Version).
				Msg("failed to execute conditional upsert")
			return false, nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
		}

		// Guard rejected the write: read the stored record for the conflict
		// payload.
		current, getErr := r.Get(ctx, rec.UserID, rec.ID)
		if errors.Is(getErr, ErrRecordNotFound) {
			// The record was deleted between the rejected write and the
			// snapshot read; the next attempt takes the insert path.
			continue
		}
		if getErr != nil {
			return false, nil, getErr
		}

		log.Debug().
			Str("func", "*recordRepository.Apply").
			Str("record_id", rec.ID).
			Int64("stored_version", current.Version).
			Int64("asserted_version", rec.Version).
			Msg("conditional upsert rejected: stored version is newer")

		return false, &current, nil
	}

	return false, nil, fmt.Errorf("%w: record vanished during conditional upsert", ErrExecutingQuery)
}

// ResolveUpsert writes data as the record's content during conflict
// reconciliation. An existing record's version is bumped to stored+1
// regardless of insertVersion, which keeps the result strictly greater than
// the version that raised the conflict. An absent record (deleted since the
// conflict was detected) is created at insertVersion.
func (r *recordRepository) ResolveUpsert(ctx context.Context, userID int64, recordID string, data json.RawMessage, insertVersion int64) (int64, error) {
	log := logger.FromContext(ctx)

	now := time.Now().UTC()

	var version int64
	err := r.DB.QueryRowContext(ctx, resolveRecord, userID, recordID, data, insertVersion, now).Scan(&version)
	if err != nil {
		log.Err(err).
			Str("func", "*recordRepository.ResolveUpsert").
			Int64("user_id", userID).
			Str("record_id", recordID).
			Msg("failed to execute resolution upsert")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	log.Info().
		Str("func", "*recordRepository.ResolveUpsert").
		Str("record_id", recordID).
		Int64("version", version).
		Msg("record replaced by conflict resolution")

	return version, nil
}

// Delete removes the record unconditionally. Deleting an absent id affects
// zero rows and is not an error.
func (r *recordRepository) Delete(ctx context.Context, userID int64, recordID string) (int64, error) {
	log := logger.FromContext(ctx)

	res, err := r.DB.ExecContext(ctx, deleteRecord, userID, recordID)
	if err != nil {
		log.Err(err).
			Str("func", "*recordRepository.Delete").
			Int64("user_id", userID).
			Str("record_id", recordID).
			Msg("failed to execute delete")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return affected, nil
}
