package service

import (
	"context"

	"github.com/okulik/mealsync/internal/logger"
	"github.com/okulik/mealsync/internal/store"
	"github.com/okulik/mealsync/models"
)

type statusService struct {
	batches   store.BatchRepository
	conflicts store.ConflictRepository
	logger    *logger.Logger
}

func NewStatusService(batches store.BatchRepository, conflicts store.ConflictRepository, log *logger.Logger) StatusService {
	return &statusService{
		batches:   batches,
		conflicts: conflicts,
		logger:    log,
	}
}

// GetSyncStatus reports the client's synchronization progress: pending batch
// count (optionally narrowed to batches updated after req.LastSyncedAt),
// unresolved conflict count and the completion time of the last fully applied
// batch.
func (s *statusService) GetSyncStatus(ctx context.Context, req models.SyncStatusRequest) (models.SyncStatus, error) {
	if req.UserID == 0 {
		return models.SyncStatus{}, ErrValidationNoUserID
	}

	pending, err := s.batches.CountPending(ctx, req.UserID, req.ClientID, req.LastSyncedAt)
	if err != nil {
		return models.SyncStatus{}, err
	}

	unresolved, err := s.conflicts.CountUnresolved(ctx, req.UserID)
	if err != nil {
		return models.SyncStatus{}, err
	}

	lastCompleted, err := s.batches.LastCompletedAt(ctx, req.UserID, req.ClientID)
	if err != nil {
		return models.SyncStatus{}, err
	}

	return models.SyncStatus{
		PendingChanges: pending,
		Conflicts:      unresolved,
		LastSyncedAt:   lastCompleted,
	}, nil
}
