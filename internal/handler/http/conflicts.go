// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oleg Kulik

package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/okulik/mealsync/internal/logger"
	"github.com/okulik/mealsync/internal/utils"
	"github.com/okulik/mealsync/models"
)

func (h *Handler) getConflicts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getConflicts").Msg("no user ID was given")
		http.Error(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	conflicts, err := h.services.ConflictService.GetConflicts(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("func", "*Handler.getConflicts").Msg("error getting user conflicts")
		http.Error(w, "error getting user conflicts", statusFromError(err))
		return
	}

	response := models.ConflictsResponse{
		Conflicts: conflicts,
		Length:    len(conflicts),
	}

	utils.WriteJSON(w, response, http.StatusOK)
}

func (h *Handler) resolveConflict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	conflictID := chi.URLParam(r, "conflictID")
	if conflictID == "" {
		http.Error(w, "no conflict ID was given", http.StatusBadRequest)
		return
	}

	var resolveRequest models.ResolveConflictRequest
	if err := json.NewDecoder(r.Body).Decode(&resolveRequest); err != nil {
		log.Err(err).Str("func", "*Handler.resolveConflict").Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	err := h.services.ConflictService.ResolveConflict(ctx, conflictID, resolveRequest.Resolution, resolveRequest.Data)
	if err != nil {
		log.Error().Err(err).Str("func", "*Handler.resolveConflict").Msg("error resolving conflict")
		http.Error(w, "error resolving conflict", statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
