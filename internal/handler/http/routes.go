package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(middleware.Compress(5))

	router.Route("/api/sync", func(r chi.Router) {
		r.Post("/queue", h.queueSync)
		r.Post("/batches/{batchID}/process", h.processBatch)
		r.Get("/status", h.getSyncStatus)
		r.Get("/conflicts", h.getConflicts)
		r.Post("/conflicts/{conflictID}/resolve", h.resolveConflict)
	})

	router.Get("/api/version", h.getServerVersion)

	return router
}
