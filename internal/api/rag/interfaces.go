package rag

import (
	"context"

	"github.com/futig/rag-backend/internal/entity"
)

// QueryUsecase answers questions over the ingested corpus and manages
// per-session conversation memory.
type QueryUsecase interface {
	Query(ctx context.Context, question, sessionID string) (string, error)
	ClearSession(ctx context.Context, sessionID string) error
}

// IngestUsecase runs the document ingestion pipeline.
type IngestUsecase interface {
	Ingest(ctx context.Context, paths []string) (*entity.IngestReport, error)
}

// IndexUsecase exposes read-only index state.
type IndexUsecase interface {
	Stats(ctx context.Context) (entity.IndexStats, error)
}
