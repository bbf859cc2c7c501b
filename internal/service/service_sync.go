// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oleg Kulik

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okulik/mealsync/internal/logger"
	"github.com/okulik/mealsync/internal/store"
	"github.com/okulik/mealsync/models"
)

type syncService struct {
	records   store.RecordRepository
	batches   store.BatchRepository
	conflicts store.ConflictRepository
	notifier  Notifier
	ids       IDGenerator
	logger    *logger.Logger
}

func NewSyncService(
	records store.RecordRepository,
	batches store.BatchRepository,
	conflicts store.ConflictRepository,
	notifier Notifier,
	ids IDGenerator,
	log *logger.Logger,
) SyncService {
	return &syncService{
		records:   records,
		batches:   batches,
		conflicts: conflicts,
		notifier:  notifier,
		ids:       ids,
		logger:    log,
	}
}

// QueueSync assembles a pending batch from the submitted items and persists
// it. The batch's client id is taken from the first item; items carrying a
// non-positive version are defaulted to version 1.
func (s *syncService) QueueSync(ctx context.Context, userID int64, items []models.SyncItem) (models.SyncBatch, error) {
	log := logger.FromContext(ctx)

	if userID == 0 {
		return models.SyncBatch{}, ErrValidationNoUserID
	}
	if len(items) == 0 {
		return models.SyncBatch{}, ErrValidationNoItemsProvided
	}

	normalized := make([]models.SyncItem, len(items))
	copy(normalized, items)
	for i := range normalized {
		if normalized[i].Version <= 0 {
			normalized[i].Version = 1
		}
	}

	now := time.Now().UTC()
	batch := models.SyncBatch{
		ID:        s.ids.Generate(),
		UserID:    userID,
		ClientID:  normalized[0].ClientID,
		Items:     normalized,
		Status:    models.BatchPending,
		Conflicts: []models.Conflict{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.batches.Insert(ctx, batch); err != nil {
		log.Error().Err(err).Str("func", "QueueSync").Msg("unable to persist sync batch")
		return models.SyncBatch{}, err
	}

	log.Info().
		Str("batch_id", batch.ID).
		Str("client_id", batch.ClientID).
		Int("items", len(batch.Items)).
		Msg("sync batch queued")

	return batch, nil
}

// ProcessBatch claims the batch, runs conflict detection and application, and
// records the terminal status. An infrastructure failure releases the claim
// so the batch returns to the pending queue.
func (s *syncService) ProcessBatch(ctx context.Context, batchID string) (models.SyncResult, error) {
	log := logger.FromContext(ctx)

	batch, err := s.batches.Claim(ctx, batchID)
	if err != nil {
		return models.SyncResult{}, err
	}

	result, err := s.sync(ctx, batch)
	if err == nil {
		err = s.finalize(ctx, batch, result)
	}
	if err != nil {
		if releaseErr := s.batches.Release(ctx, batchID); releaseErr != nil {
			log.Warn().Err(releaseErr).Str("batch_id", batchID).Msg("unable to release claimed batch")
		}
		return models.SyncResult{}, err
	}
	s.notify(ctx, batch, result)

	return result, nil
}

// sync runs a read-only detection pass first; the batch is applied only when
// the pass finds nothing. Each item's write is still guarded by the stored
// version, so a writer interleaving between the two passes surfaces as a
// conflict rather than a lost update.
func (s *syncService) sync(ctx context.Context, batch models.SyncBatch) (models.SyncResult, error) {
	detected, err := s.detectConflicts(ctx, batch)
	if err != nil {
		return models.SyncResult{}, err
	}
	if len(detected) > 0 {
		return models.SyncResult{Outcome: models.SyncConflicted, Conflicts: detected}, nil
	}

	return s.applyBatch(ctx, batch)
}

// detectConflicts compares every non-deletion item against the stored record.
// A stored version strictly greater than the item's version is a conflict;
// deletions and absent records never conflict.
func (s *syncService) detectConflicts(ctx context.Context, batch models.SyncBatch) ([]models.Conflict, error) {
	var detected []models.Conflict
	for _, item := range batch.Items {
		if item.Deleted {
			continue
		}

		stored, err := s.records.Get(ctx, batch.UserID, item.ID)
		if errors.Is(err, store.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		if stored.Version > item.Version {
			detected = append(detected, s.newConflict(batch, item, stored))
		}
	}

	return detected, nil
}

// applyBatch applies the items in submission order. An item that fails on
// infrastructure does not stop the remaining items; the collected errors are
// joined and returned once the pass is over. Applied items are not rolled
// back in either case.
func (s *syncService) applyBatch(ctx context.Context, batch models.SyncBatch) (models.SyncResult, error) {
	log := logger.FromContext(ctx)

	var (
		conflicts  []models.Conflict
		errs       []error
		maxVersion int64
		applied    int
	)

	for _, item := range batch.Items {
		if item.Version > maxVersion {
			maxVersion = item.Version
		}

		if item.Deleted {
			affected, err := s.records.Delete(ctx, batch.UserID, item.ID)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if affected == 0 {
				log.Debug().Str("record_id", item.ID).Msg("deletion of an absent record is a no-op")
			}
			applied++
			continue
		}

		ok, stored, err := s.records.Apply(ctx, models.Record{
			ID:      item.ID,
			UserID:  batch.UserID,
			Data:    item.Data,
			Version: item.Version,
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !ok {
			conflicts = append(conflicts, s.newConflict(batch, item, *stored))
			continue
		}
		applied++
	}

	if len(errs) > 0 {
		log.Error().
			Str("batch_id", batch.ID).
			Int("applied", applied).
			Int("items", len(batch.Items)).
			Msg("batch application failed midway, applied items are kept")
		return models.SyncResult{}, errors.Join(errs...)
	}

	if len(conflicts) > 0 {
		return models.SyncResult{Outcome: models.SyncConflicted, Conflicts: conflicts}, nil
	}

	return models.SyncResult{Outcome: models.SyncApplied, NewVersion: maxVersion + 1}, nil
}

func (s *syncService) newConflict(batch models.SyncBatch, item models.SyncItem, stored models.Record) models.Conflict {
	return models.Conflict{
		ID:       s.ids.Generate(),
		BatchID:  batch.ID,
		UserID:   batch.UserID,
		RecordID: item.ID,
		Type:     models.ConflictType,
		Message: fmt.Sprintf("Version conflict: server version %d > client version %d",
			stored.Version, item.Version),
		Item:       stored,
		ClientItem: item,
		Status:     models.ConflictPending,
		CreatedAt:  time.Now().UTC(),
	}
}

// finalize records the batch's terminal status. A conflicted batch has its
// conflicts persisted before the batch is marked failed, so a crash between
// the two writes at worst re-reports the same conflicts on reprocessing.
func (s *syncService) finalize(ctx context.Context, batch models.SyncBatch, result models.SyncResult) error {
	if result.Applied() {
		return s.batches.MarkCompleted(ctx, batch.ID, time.Now().UTC())
	}

	if err := s.conflicts.Insert(ctx, result.Conflicts...); err != nil {
		return err
	}

	return s.batches.MarkFailed(ctx, batch.ID, result.Conflicts)
}

func (s *syncService) notify(ctx context.Context, batch models.SyncBatch, result models.SyncResult) {
	event := EventSyncCompleted
	if !result.Applied() {
		event = EventSyncConflicted
	}

	if err := s.notifier.Notify(ctx, batch.UserID, event, result); err != nil {
		logger.FromContext(ctx).Warn().
			Err(err).
			Str("batch_id", batch.ID).
			Str("event", event).
			Msg("notification delivery failed")
	}
}
