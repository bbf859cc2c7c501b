// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oleg Kulik

package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/okulik/mealsync/internal/logger"
	"github.com/okulik/mealsync/internal/utils"
	"github.com/okulik/mealsync/models"
)

func (h *Handler) queueSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var queueRequest models.QueueSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&queueRequest); err != nil {
		log.Err(err).Str("func", "*Handler.queueSync").Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	batch, err := h.services.SyncService.QueueSync(ctx, queueRequest.UserID, queueRequest.Items)
	if err != nil {
		log.Error().Err(err).Str("func", "*Handler.queueSync").Msg("error queueing sync batch")
		http.Error(w, "error queueing sync batch", statusFromError(err))
		return
	}

	utils.WriteJSON(w, batch, http.StatusAccepted)
}

func (h *Handler) processBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	batchID := chi.URLParam(r, "batchID")
	if batchID == "" {
		http.Error(w, "no batch ID was given", http.StatusBadRequest)
		return
	}

	result, err := h.services.SyncService.ProcessBatch(ctx, batchID)
	if err != nil {
		log.Error().Err(err).Str("func", "*Handler.processBatch").Msg("error processing sync batch")
		http.Error(w, "error processing sync batch", statusFromError(err))
		return
	}

	// a conflicted batch is still a successful processing round; the client
	// inspects result.outcome
	utils.WriteJSON(w, result, http.StatusOK)
}

func (h *Handler) getSyncStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	statusRequest, err := syncStatusRequestFromQuery(r)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getSyncStatus").Msg("invalid status query")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	status, err := h.services.StatusService.GetSyncStatus(ctx, statusRequest)
	if err != nil {
		log.Error().Err(err).Str("func", "*Handler.getSyncStatus").Msg("error getting sync status")
		http.Error(w, "error getting sync status", statusFromError(err))
		return
	}

	utils.WriteJSON(w, status, http.StatusOK)
}

func syncStatusRequestFromQuery(r *http.Request) (models.SyncStatusRequest, error) {
	var req models.SyncStatusRequest

	if rawUserID := r.URL.Query().Get("user_id"); rawUserID != "" {
		userID, err := strconv.ParseInt(rawUserID, 10, 64)
		if err != nil {
			return models.SyncStatusRequest{}, err
		}
		req.UserID = userID
	}

	req.ClientID = r.URL.Query().Get("client_id")

	if rawSyncedAt := r.URL.Query().Get("last_synced_at"); rawSyncedAt != "" {
		syncedAt, err := time.Parse(time.RFC3339, rawSyncedAt)
		if err != nil {
			return models.SyncStatusRequest{}, err
		}
		req.LastSyncedAt = &syncedAt
	}

	return req, nil
}
