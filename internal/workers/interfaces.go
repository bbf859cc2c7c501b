// Package workers provides the background workers of the sync server and a
// small aggregate for running them in a unified way.
package workers

import (
	"context"

	"github.com/okulik/mealsync/models"
)

// Worker is the interface implemented by every background worker. Run starts
// the worker's execution; implementations spawn their goroutines internally
// and return immediately.
type Worker interface {
	Run()
}

// Stopper is implemented by workers that support graceful shutdown.
type Stopper interface {
	Stop()
}

// BatchProcessor processes one queued sync batch. It is satisfied by
// service.SyncService.
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, batchID string) (models.SyncResult, error)
}

// PendingBatchSource lists ids of batches waiting to be processed, oldest
// first. It is satisfied by store.BatchRepository.
type PendingBatchSource interface {
	ListPending(ctx context.Context, limit uint64) ([]string, error)
}
