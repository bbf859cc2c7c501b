package http

import (
	"net/http"

	"github.com/okulik/mealsync/internal/utils"
)

func (h *Handler) getServerVersion(w http.ResponseWriter, _ *http.Request) {
	utils.WriteJSON(w, map[string]string{
		"version": h.buildInfo.BuildVersion(),
		"date":    h.buildInfo.BuildDate(),
		"commit":  h.buildInfo.BuildCommit(),
	}, http.StatusOK)
}
