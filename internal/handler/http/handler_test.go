package http

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/okulik/mealsync/internal/logger"
	"github.com/okulik/mealsync/internal/service"
	"github.com/okulik/mealsync/models"
)

// mockSyncSvc implements service.SyncService for handler tests. Unset
// function fields fall back to zero-value returns.
type mockSyncSvc struct {
	queueFn   func(ctx context.Context, userID int64, items []models.SyncItem) (models.SyncBatch, error)
	processFn func(ctx context.Context, batchID string) (models.SyncResult, error)
}

func (m *mockSyncSvc) QueueSync(ctx context.Context, userID int64, items []models.SyncItem) (models.SyncBatch, error) {
	if m.queueFn != nil {
		return m.queueFn(ctx, userID, items)
	}
	return models.SyncBatch{}, nil
}

func (m *mockSyncSvc) ProcessBatch(ctx context.Context, batchID string) (models.SyncResult, error) {
	if m.processFn != nil {
		return m.processFn(ctx, batchID)
	}
	return models.SyncResult{}, nil
}

// mockConflictSvc implements service.ConflictService for handler tests.
type mockConflictSvc struct {
	getFn     func(ctx context.Context, userID int64) ([]models.Conflict, error)
	resolveFn func(ctx context.Context, conflictID string, resolution models.ConflictResolution, manualData json.RawMessage) error
}

func (m *mockConflictSvc) GetConflicts(ctx context.Context, userID int64) ([]models.Conflict, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockConflictSvc) ResolveConflict(ctx context.Context, conflictID string, resolution models.ConflictResolution, manualData json.RawMessage) error {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, conflictID, resolution, manualData)
	}
	return nil
}

// mockStatusSvc implements service.StatusService for handler tests.
type mockStatusSvc struct {
	statusFn func(ctx context.Context, req models.SyncStatusRequest) (models.SyncStatus, error)
}

func (m *mockStatusSvc) GetSyncStatus(ctx context.Context, req models.SyncStatusRequest) (models.SyncStatus, error) {
	if m.statusFn != nil {
		return m.statusFn(ctx, req)
	}
	return models.SyncStatus{}, nil
}

// newTestRouter wires a full chi router around the given services so that
// tests exercise the real routes and middleware chain. Missing services are
// replaced with no-op mocks.
func newTestRouter(t *testing.T, services *service.Services) *chi.Mux {
	t.Helper()

	if services == nil {
		services = &service.Services{}
	}
	if services.SyncService == nil {
		services.SyncService = &mockSyncSvc{}
	}
	if services.ConflictService == nil {
		services.ConflictService = &mockConflictSvc{}
	}
	if services.StatusService == nil {
		services.StatusService = &mockStatusSvc{}
	}

	h := NewHandler(services, models.NewBuildInfo("test-version", "2026-08-29", "deadbeef"), logger.Nop())
	return h.Init()
}
