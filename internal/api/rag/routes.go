package rag

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the RAG API routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/query", h.Query)
	r.Post("/ingest", h.Ingest)
	r.Get("/index/stats", h.Stats)
	r.Delete("/memory/{session_id}", h.ClearMemory)
}
