// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oleg Kulik

package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/okulik/mealsync/internal/logger"
	"github.com/okulik/mealsync/internal/store"
	"github.com/okulik/mealsync/models"
)

type conflictService struct {
	records   store.RecordRepository
	conflicts store.ConflictRepository
	notifier  Notifier
	logger    *logger.Logger
}

func NewConflictService(
	records store.RecordRepository,
	conflicts store.ConflictRepository,
	notifier Notifier,
	log *logger.Logger,
) ConflictService {
	return &conflictService{
		records:   records,
		conflicts: conflicts,
		notifier:  notifier,
		logger:    log,
	}
}

func (s *conflictService) GetConflicts(ctx context.Context, userID int64) ([]models.Conflict, error) {
	if userID == 0 {
		return nil, ErrValidationNoUserID
	}

	return s.conflicts.GetByUser(ctx, userID)
}

// ResolveConflict records the resolution decision and reconciles the record.
// The decision is recorded with a guarded update that only succeeds while the
// conflict is still pending, so a concurrent second resolve of the same
// conflict fails with store.ErrConflictAlreadyResolved instead of applying
// twice.
func (s *conflictService) ResolveConflict(ctx context.Context, conflictID string, resolution models.ConflictResolution, manualData json.RawMessage) error {
	log := logger.FromContext(ctx)

	if !resolution.Valid() {
		return ErrValidationUnknownResolution
	}
	if resolution == models.ResolutionManual && len(manualData) == 0 {
		return ErrValidationNoManualData
	}

	resolved, err := s.conflicts.Resolve(ctx, conflictID, resolution, manualData, time.Now().UTC())
	if err != nil {
		return err
	}

	if err := s.reconcile(ctx, resolved); err != nil {
		// The decision is already recorded; the caller sees the failed record
		// write and can retry it out of band.
		log.Error().
			Err(err).
			Str("func", "ResolveConflict").
			Str("conflict_id", conflictID).
			Msg("unable to reconcile resolved conflict")
		return err
	}

	log.Info().
		Str("conflict_id", conflictID).
		Str("record_id", resolved.RecordID).
		Str("resolution", string(resolution)).
		Msg("conflict resolved")

	if err := s.notifier.Notify(ctx, resolved.UserID, EventConflictResolved, resolved); err != nil {
		log.Warn().Err(err).Str("conflict_id", conflictID).Msg("notification delivery failed")
	}

	return nil
}

// reconcile writes the winning content to the record collection. Client-wins
// and manual writes land at a version strictly greater than the stored
// snapshot, preserving version monotonicity even though the client's own
// version was older.
func (s *conflictService) reconcile(ctx context.Context, c models.Conflict) error {
	switch c.Resolution {
	case models.ResolutionServerWins:
		// The stored record already holds the winning content.
		return nil

	case models.ResolutionClientWins:
		if c.ClientItem.Deleted {
			_, err := s.records.Delete(ctx, c.UserID, c.RecordID)
			return err
		}
		_, err := s.records.ResolveUpsert(ctx, c.UserID, c.RecordID, c.ClientItem.Data, c.Item.Version+1)
		return err

	case models.ResolutionManual:
		_, err := s.records.ResolveUpsert(ctx, c.UserID, c.RecordID, c.ResolvedData, c.Item.Version+1)
		return err
	}

	return ErrValidationUnknownResolution
}
