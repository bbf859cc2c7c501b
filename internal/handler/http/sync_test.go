package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okulik/mealsync/internal/service"
	"github.com/okulik/mealsync/internal/store"
	"github.com/okulik/mealsync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueSync_Success(t *testing.T) {
	svc := &mockSyncSvc{
		queueFn: func(_ context.Context, userID int64, items []models.SyncItem) (models.SyncBatch, error) {
			assert.Equal(t, int64(42), userID)
			require.Len(t, items, 1)
			return models.SyncBatch{ID: "batch-1", UserID: userID, Status: models.BatchPending}, nil
		},
	}
	router := newTestRouter(t, &service.Services{SyncService: svc})

	body := `{"user_id":42,"items":[{"id":"rec-1","data":{"name":"pasta"},"version":3,"client_id":"phone"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/sync/queue", strings.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var batch models.SyncBatch
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &batch))
	assert.Equal(t, "batch-1", batch.ID)
	assert.Equal(t, models.BatchPending, batch.Status)
}

func TestQueueSync_InvalidJSON(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/sync/queue", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueueSync_ValidationError(t *testing.T) {
	svc := &mockSyncSvc{
		queueFn: func(_ context.Context, _ int64, _ []models.SyncItem) (models.SyncBatch, error) {
			return models.SyncBatch{}, service.ErrValidationNoItemsProvided
		},
	}
	router := newTestRouter(t, &service.Services{SyncService: svc})

	req := httptest.NewRequest(http.MethodPost, "/api/sync/queue", strings.NewReader(`{"user_id":42,"items":[]}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueueSync_StorageError(t *testing.T) {
	svc := &mockSyncSvc{
		queueFn: func(_ context.Context, _ int64, _ []models.SyncItem) (models.SyncBatch, error) {
			return models.SyncBatch{}, store.ErrExecutingQuery
		},
	}
	router := newTestRouter(t, &service.Services{SyncService: svc})

	req := httptest.NewRequest(http.MethodPost, "/api/sync/queue", strings.NewReader(`{"user_id":42,"items":[{"id":"rec-1"}]}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestProcessBatch_Applied(t *testing.T) {
	svc := &mockSyncSvc{
		processFn: func(_ context.Context, batchID string) (models.SyncResult, error) {
			assert.Equal(t, "batch-1", batchID)
			return models.SyncResult{Outcome: models.SyncApplied, NewVersion: 6}, nil
		},
	}
	router := newTestRouter(t, &service.Services{SyncService: svc})

	req := httptest.NewRequest(http.MethodPost, "/api/sync/batches/batch-1/process", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result models.SyncResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, models.SyncApplied, result.Outcome)
	assert.Equal(t, int64(6), result.NewVersion)
}

func TestProcessBatch_ConflictedIsStillOK(t *testing.T) {
	svc := &mockSyncSvc{
		processFn: func(_ context.Context, _ string) (models.SyncResult, error) {
			return models.SyncResult{
				Outcome:   models.SyncConflicted,
				Conflicts: []models.Conflict{{ID: "conflict-1", RecordID: "rec-1"}},
			}, nil
		},
	}
	router := newTestRouter(t, &service.Services{SyncService: svc})

	req := httptest.NewRequest(http.MethodPost, "/api/sync/batches/batch-1/process", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "conflicts are an expected outcome, not a transport error")

	var result models.SyncResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, models.SyncConflicted, result.Outcome)
	assert.Len(t, result.Conflicts, 1)
}

func TestProcessBatch_NotFound(t *testing.T) {
	svc := &mockSyncSvc{
		processFn: func(_ context.Context, _ string) (models.SyncResult, error) {
			return models.SyncResult{}, store.ErrBatchNotFound
		},
	}
	router := newTestRouter(t, &service.Services{SyncService: svc})

	req := httptest.NewRequest(http.MethodPost, "/api/sync/batches/missing/process", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProcessBatch_AlreadyClaimed(t *testing.T) {
	svc := &mockSyncSvc{
		processFn: func(_ context.Context, _ string) (models.SyncResult, error) {
			return models.SyncResult{}, store.ErrBatchNotClaimable
		},
	}
	router := newTestRouter(t, &service.Services{SyncService: svc})

	req := httptest.NewRequest(http.MethodPost, "/api/sync/batches/batch-1/process", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetSyncStatus_Success(t *testing.T) {
	completed := time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC)
	svc := &mockStatusSvc{
		statusFn: func(_ context.Context, req models.SyncStatusRequest) (models.SyncStatus, error) {
			assert.Equal(t, int64(42), req.UserID)
			assert.Equal(t, "phone", req.ClientID)
			require.NotNil(t, req.LastSyncedAt)
			return models.SyncStatus{PendingChanges: 3, Conflicts: 1, LastSyncedAt: &completed}, nil
		},
	}
	router := newTestRouter(t, &service.Services{StatusService: svc})

	req := httptest.NewRequest(http.MethodGet,
		"/api/sync/status?user_id=42&client_id=phone&last_synced_at=2026-08-20T12:00:00Z", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status models.SyncStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, int64(3), status.PendingChanges)
	assert.Equal(t, int64(1), status.Conflicts)
}

func TestGetSyncStatus_BadUserID(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/sync/status?user_id=abc", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSyncStatus_BadTimestamp(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/sync/status?user_id=42&last_synced_at=yesterday", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSyncStatus_MissingUserIDRejectedByService(t *testing.T) {
	svc := &mockStatusSvc{
		statusFn: func(_ context.Context, req models.SyncStatusRequest) (models.SyncStatus, error) {
			assert.Zero(t, req.UserID)
			return models.SyncStatus{}, service.ErrValidationNoUserID
		},
	}
	router := newTestRouter(t, &service.Services{StatusService: svc})

	req := httptest.NewRequest(http.MethodGet, "/api/sync/status", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
