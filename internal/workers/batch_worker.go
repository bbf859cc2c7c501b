// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oleg Kulik

package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/okulik/mealsync/internal/config"
	"github.com/okulik/mealsync/internal/logger"
	"github.com/okulik/mealsync/internal/store"
)

const (
	defaultSyncInterval = time.Minute
	defaultBatchLimit   = 50
)

// batchWorker polls for pending sync batches on a ticker and hands each one
// to the processor. Claiming inside the store makes concurrent pollers safe:
// a batch grabbed by someone else is skipped, not failed.
type batchWorker struct {
	source    PendingBatchSource
	processor BatchProcessor
	interval  time.Duration
	limit     uint64
	logger    *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBatchWorker creates a batchWorker from the workers configuration. The
// worker is idle until Run (or Start) is called.
func NewBatchWorker(source PendingBatchSource, processor BatchProcessor, cfg config.Workers, log *logger.Logger) Worker {
	interval := cfg.SyncInterval
	if interval <= 0 {
		interval = defaultSyncInterval
	}
	limit := cfg.BatchLimit
	if limit == 0 {
		limit = defaultBatchLimit
	}

	return &batchWorker{
		source:    source,
		processor: processor,
		interval:  interval,
		limit:     limit,
		logger:    log,
	}
}

// Run implements Worker.
func (w *batchWorker) Run() {
	w.Start(context.Background())
}

// Start stops any previously running poll loop, then launches a background
// goroutine that drains the pending queue every interval. The goroutine exits
// when ctx is cancelled or Stop is called.
func (w *batchWorker) Start(ctx context.Context) {
	w.Stop()

	w.mu.Lock()
	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		t := time.NewTicker(w.interval)
		defer t.Stop()

		for {
			select {
			case <-workerCtx.Done():
				return
			case <-t.C:
				w.processPending(workerCtx)
			}
		}
	}()
}

// Stop cancels the poll loop and blocks until it has fully exited. Safe to
// call when the worker is not running.
func (w *batchWorker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

func (w *batchWorker) processPending(ctx context.Context) {
	log := w.logger

	batchIDs, err := w.source.ListPending(ctx, w.limit)
	if err != nil {
		log.Warn().Err(err).Str("func", "processPending").Msg("unable to list pending batches")
		return
	}

	for _, batchID := range batchIDs {
		result, err := w.processor.ProcessBatch(ctx, batchID)
		if errors.Is(err, store.ErrBatchNotClaimable) {
			// another processor got there first
			log.Debug().Str("batch_id", batchID).Msg("batch already claimed, skipping")
			continue
		}
		if err != nil {
			log.Warn().Err(err).Str("batch_id", batchID).Msg("batch processing failed, batch stays pending")
			continue
		}

		log.Info().
			Str("batch_id", batchID).
			Str("outcome", string(result.Outcome)).
			Msg("batch processed")
	}
}
