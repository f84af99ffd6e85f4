package rag

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/rag-backend/internal/entity"
	"github.com/futig/rag-backend/internal/pkg/logger"
	"github.com/futig/rag-backend/internal/pkg/response"
	"github.com/futig/rag-backend/internal/pkg/validator"
)

type Handler struct {
	queryUsecase  QueryUsecase
	ingestUsecase IngestUsecase
	indexUsecase  IndexUsecase
	validator     *validator.Validator
}

func NewHandler(
	queryUsecase QueryUsecase,
	ingestUsecase IngestUsecase,
	indexUsecase IndexUsecase,
	validator *validator.Validator,
) *Handler {
	return &Handler{
		queryUsecase:  queryUsecase,
		ingestUsecase: ingestUsecase,
		indexUsecase:  indexUsecase,
		validator:     validator,
	}
}

// Query handles POST /query - answer a question over the ingested corpus
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Query")

	var req entity.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.ValidateQuery(&req); err != nil {
		ctxzap.Error(ctx, "failed to validate request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx = logger.AddFields(ctx, zap.String("session_id", req.SessionID))
	ctxzap.Info(ctx, "handling query", zap.Int("question_length", len(req.Question)))

	answer, err := h.queryUsecase.Query(ctx, req.Question, req.SessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "query answered", zap.Int("answer_length", len(answer)))
	response.Success(w, entity.QueryResponse{
		Answer:    answer,
		SessionID: req.SessionID,
		Status:    entity.QueryStatusSuccess,
	})
}

// Ingest handles POST /ingest - load, chunk, embed and index documents
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Ingest")

	var req entity.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.ValidateIngest(&req); err != nil {
		ctxzap.Error(ctx, "failed to validate request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctxzap.Info(ctx, "handling ingest", zap.Int("paths", len(req.Paths)))

	report, err := h.ingestUsecase.Ingest(ctx, req.Paths)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, report)
}

// Stats handles GET /index/stats - current index size and metadata
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Stats")

	stats, err := h.indexUsecase.Stats(ctx)
	if errors.Is(err, entity.ErrIndexNotFound) {
		response.Error(w, http.StatusNotFound, "no index has been built yet")
		return
	}
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, stats)
}

// ClearMemory handles DELETE /memory/{session_id} - drop a session's history
func (h *Handler) ClearMemory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "ClearMemory"),
	)

	if err := h.queryUsecase.ClearSession(ctx, sessionID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "session memory cleared")
	response.NoContent(w)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	ctxzap.Error(ctx, "request failed", zap.Error(err))

	var provErr *entity.ProviderError
	switch {
	case errors.Is(err, entity.ErrNoDocumentsIngested):
		response.Error(w, http.StatusConflict, "no documents have been ingested yet")
	case errors.Is(err, entity.ErrEmptyQuestion), errors.Is(err, entity.ErrInvalidTopK):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, entity.ErrCorruptIndex):
		response.Error(w, http.StatusInternalServerError, "index is corrupt, re-ingest the corpus")
	case errors.As(err, &provErr):
		response.Error(w, http.StatusBadGateway, "upstream provider error")
	case errors.Is(err, context.DeadlineExceeded):
		response.Error(w, http.StatusGatewayTimeout, "request timed out")
	default:
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
