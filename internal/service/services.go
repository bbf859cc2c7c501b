// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oleg Kulik

// Package service implements the synchronization business logic: queueing
// client batches, optimistic-concurrency processing, conflict resolution and
// status reporting. Services depend on the repository interfaces from
// internal/store and are wired together by NewServices.
package service

import (
	"github.com/okulik/mealsync/internal/logger"
	"github.com/okulik/mealsync/internal/store"
	"github.com/okulik/mealsync/internal/utils"
)

// Services aggregates every business-logic service the transport and worker
// layers depend on.
type Services struct {
	SyncService     SyncService
	ConflictService ConflictService
	StatusService   StatusService
}

// NewServices wires the services against the provided storages. A nil
// notifier is replaced with the log-based default.
func NewServices(storages *store.Storages, notifier Notifier, log *logger.Logger) *Services {
	if notifier == nil {
		notifier = NewLogNotifier(log)
	}
	ids := utils.NewUUIDGenerator()

	return &Services{
		SyncService:     NewSyncService(storages.RecordRepository, storages.BatchRepository, storages.ConflictRepository, notifier, ids, log),
		ConflictService: NewConflictService(storages.RecordRepository, storages.ConflictRepository, notifier, log),
		StatusService:   NewStatusService(storages.BatchRepository, storages.ConflictRepository, log),
	}
}
