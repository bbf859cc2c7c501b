//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

package service

import (
	"context"
	"encoding/json"

	"github.com/okulik/mealsync/models"
)

// SyncService queues client mutation batches and processes them against the
// versioned record collection.
type SyncService interface {
	// QueueSync validates the submitted items, assembles a pending batch and
	// persists it for later processing. Items with a non-positive version are
	// defaulted to version 1.
	QueueSync(ctx context.Context, userID int64, items []models.SyncItem) (models.SyncBatch, error)

	// ProcessBatch claims a pending batch, detects version conflicts and
	// either applies every item or persists the detected conflicts. The
	// returned SyncResult carries the expected outcomes (applied or
	// conflicted); infrastructure failures are returned as errors and leave
	// the batch pending for a later retry.
	ProcessBatch(ctx context.Context, batchID string) (models.SyncResult, error)
}

// ConflictService exposes persisted conflicts and applies resolution
// decisions to them.
type ConflictService interface {
	// GetConflicts returns the user's unresolved conflicts, newest first.
	GetConflicts(ctx context.Context, userID int64) ([]models.Conflict, error)

	// ResolveConflict records the resolution decision for a pending conflict
	// and reconciles the underlying record accordingly. Resolving the same
	// conflict twice returns store.ErrConflictAlreadyResolved.
	ResolveConflict(ctx context.Context, conflictID string, resolution models.ConflictResolution, manualData json.RawMessage) error
}

// StatusService reports per-client synchronization progress.
type StatusService interface {
	GetSyncStatus(ctx context.Context, req models.SyncStatusRequest) (models.SyncStatus, error)
}

// Notifier delivers sync lifecycle events to interested parties (connected
// clients, audit sinks). Delivery is best effort: a failed notification never
// affects the outcome of the operation that triggered it.
type Notifier interface {
	Notify(ctx context.Context, userID int64, event string, payload any) error
}

// IDGenerator issues opaque unique identifiers for batches and conflicts.
type IDGenerator interface {
	Generate() string
}
