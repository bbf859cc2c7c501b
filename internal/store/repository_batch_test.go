package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/okulik/mealsync/internal/logger"
	"github.com/okulik/mealsync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var batchColumns = []string{
	"batch_id", "user_id", "client_id", "items", "status",
	"conflicts", "created_at", "updated_at", "completed_at",
}

func testSyncBatch() models.SyncBatch {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	return models.SyncBatch{
		ID:       "batch-1",
		UserID:   42,
		ClientID: "phone",
		Items: []models.SyncItem{
			{ID: "rec-1", Data: json.RawMessage(`{"name":"pasta"}`), Version: 3, ClientID: "phone"},
		},
		Status:    models.BatchPending,
		Conflicts: []models.Conflict{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestBatchInsert(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewBatchRepository(newDBFromSQL(db), logger.Nop())

	batch := testSyncBatch()
	items, err := json.Marshal(batch.Items)
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(insertBatch)).
		WithArgs("batch-1", int64(42), "phone", items, "pending", []byte("[]"), batch.CreatedAt, batch.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Insert(testContext(), batch))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchInsert_ExecError(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewBatchRepository(newDBFromSQL(db), logger.Nop())

	mock.ExpectExec(regexp.QuoteMeta(insertBatch)).
		WillReturnError(errors.New("connection reset"))

	err := repo.Insert(testContext(), testSyncBatch())
	assert.ErrorIs(t, err, ErrExecutingQuery)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchGetByID(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewBatchRepository(newDBFromSQL(db), logger.Nop())

	now := time.Now().UTC()
	items := []byte(`[{"id":"rec-1","deleted":false,"version":3,"client_id":"phone"}]`)

	mock.ExpectQuery(regexp.QuoteMeta(getBatch)).
		WithArgs("batch-1").
		WillReturnRows(sqlmock.NewRows(batchColumns).
			AddRow("batch-1", int64(42), "phone", items, "pending", []byte("[]"), now, now, nil))

	batch, err := repo.GetByID(testContext(), "batch-1")
	require.NoError(t, err)
	assert.Equal(t, "batch-1", batch.ID)
	assert.Equal(t, models.BatchPending, batch.Status)
	require.Len(t, batch.Items, 1)
	assert.Equal(t, int64(3), batch.Items[0].Version)
	assert.Nil(t, batch.CompletedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchGetByID_NotFound(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewBatchRepository(newDBFromSQL(db), logger.Nop())

	mock.ExpectQuery(regexp.QuoteMeta(getBatch)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(testContext(), "missing")
	assert.ErrorIs(t, err, ErrBatchNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchClaim(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewBatchRepository(newDBFromSQL(db), logger.Nop())

	now := time.Now().UTC()
	items := []byte(`[{"id":"rec-1","deleted":false,"version":3,"client_id":"phone"}]`)

	mock.ExpectQuery(regexp.QuoteMeta(claimBatch)).
		WithArgs("batch-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(batchColumns).
			AddRow("batch-1", int64(42), "phone", items, "processing", []byte("[]"), now, now, nil))

	batch, err := repo.Claim(testContext(), "batch-1")
	require.NoError(t, err)
	assert.Equal(t, models.BatchProcessing, batch.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchClaim_NotPending(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewBatchRepository(newDBFromSQL(db), logger.Nop())

	now := time.Now().UTC()

	// the conditional update matched nothing; the follow-up read finds the
	// batch in a non-pending state
	mock.ExpectQuery(regexp.QuoteMeta(claimBatch)).
		WithArgs("batch-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(batchColumns))
	mock.ExpectQuery(regexp.QuoteMeta(getBatch)).
		WithArgs("batch-1").
		WillReturnRows(sqlmock.NewRows(batchColumns).
			AddRow("batch-1", int64(42), "phone", []byte("[]"), "processing", []byte("[]"), now, now, nil))

	_, err := repo.Claim(testContext(), "batch-1")
	assert.ErrorIs(t, err, ErrBatchNotClaimable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchClaim_NotFound(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewBatchRepository(newDBFromSQL(db), logger.Nop())

	mock.ExpectQuery(regexp.QuoteMeta(claimBatch)).
		WithArgs("missing", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(batchColumns))
	mock.ExpectQuery(regexp.QuoteMeta(getBatch)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Claim(testContext(), "missing")
	assert.ErrorIs(t, err, ErrBatchNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchRelease(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewBatchRepository(newDBFromSQL(db), logger.Nop())

	mock.ExpectExec(regexp.QuoteMeta(releaseBatch)).
		WithArgs("batch-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Release(testContext(), "batch-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchMarkCompleted(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewBatchRepository(newDBFromSQL(db), logger.Nop())

	completedAt := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta(completeBatch)).
		WithArgs("batch-1", completedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkCompleted(testContext(), "batch-1", completedAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchMarkFailed(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewBatchRepository(newDBFromSQL(db), logger.Nop())

	conflicts := []models.Conflict{{ID: "conflict-1", RecordID: "rec-1"}}
	payload, err := json.Marshal(conflicts)
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(failBatch)).
		WithArgs("batch-1", payload, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkFailed(testContext(), "batch-1", conflicts))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchListPending(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewBatchRepository(newDBFromSQL(db), logger.Nop())

	query, args, err := buildListPendingQuery(10)
	require.NoError(t, err)
	require.Equal(t, []any{"pending"}, args)

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("pending").
		WillReturnRows(sqlmock.NewRows([]string{"batch_id"}).
			AddRow("batch-1").
			AddRow("batch-2"))

	ids, listErr := repo.ListPending(testContext(), 10)
	require.NoError(t, listErr)
	assert.Equal(t, []string{"batch-1", "batch-2"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchCountPending(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewBatchRepository(newDBFromSQL(db), logger.Nop())

	query, _, err := buildCountPendingQuery(42, "phone", nil)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("phone", "pending", int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

	count, countErr := repo.CountPending(testContext(), 42, "phone", nil)
	require.NoError(t, countErr)
	assert.Equal(t, int64(3), count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchCountPending_UpdatedAfter(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewBatchRepository(newDBFromSQL(db), logger.Nop())

	after := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	query, _, err := buildCountPendingQuery(42, "phone", &after)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("phone", "pending", int64(42), after).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))

	count, countErr := repo.CountPending(testContext(), 42, "phone", &after)
	require.NoError(t, countErr)
	assert.Equal(t, int64(1), count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchLastCompletedAt(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewBatchRepository(newDBFromSQL(db), logger.Nop())

	query, _, err := buildLastCompletedAtQuery(42, "phone")
	require.NoError(t, err)

	completed := time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("phone", "completed", int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"completed_at"}).AddRow(completed))

	got, lastErr := repo.LastCompletedAt(testContext(), 42, "phone")
	require.NoError(t, lastErr)
	require.NotNil(t, got)
	assert.Equal(t, completed, *got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchLastCompletedAt_NeverCompleted(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewBatchRepository(newDBFromSQL(db), logger.Nop())

	query, _, err := buildLastCompletedAtQuery(42, "phone")
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("phone", "completed", int64(42)).
		WillReturnError(sql.ErrNoRows)

	got, lastErr := repo.LastCompletedAt(testContext(), 42, "phone")
	require.NoError(t, lastErr)
	assert.Nil(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}
