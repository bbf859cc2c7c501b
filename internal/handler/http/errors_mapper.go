package http

import (
	"errors"
	"net/http"

	"github.com/okulik/mealsync/internal/service"
	"github.com/okulik/mealsync/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrValidationNoItemsProvided:   http.StatusBadRequest,
	service.ErrValidationNoUserID:          http.StatusBadRequest,
	service.ErrValidationUnknownResolution: http.StatusBadRequest,
	service.ErrValidationNoManualData:      http.StatusBadRequest,

	store.ErrRecordNotFound:          http.StatusNotFound,
	store.ErrBatchNotFound:           http.StatusNotFound,
	store.ErrBatchNotClaimable:       http.StatusConflict,
	store.ErrConflictNotFound:        http.StatusNotFound,
	store.ErrConflictAlreadyResolved: http.StatusConflict,

	store.ErrBuildingSQLQuery:     http.StatusInternalServerError,
	store.ErrExecutingQuery:       http.StatusInternalServerError,
	store.ErrScanningRow:          http.StatusInternalServerError,
	store.ErrScanningRows:         http.StatusInternalServerError,
	store.ErrEncodingPayload:      http.StatusInternalServerError,
	store.ErrBeginningTransaction: http.StatusInternalServerError,
	store.ErrCommitingTransaction: http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
