package rag

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futig/rag-backend/internal/entity"
	"github.com/futig/rag-backend/internal/pkg/validator"
)

type stubQuery struct {
	answer       string
	err          error
	gotQuestion  string
	gotSessionID string
	cleared      []string
}

func (s *stubQuery) Query(_ context.Context, question, sessionID string) (string, error) {
	s.gotQuestion = question
	s.gotSessionID = sessionID
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func (s *stubQuery) ClearSession(_ context.Context, sessionID string) error {
	s.cleared = append(s.cleared, sessionID)
	return nil
}

type stubIngest struct {
	report   *entity.IngestReport
	err      error
	gotPaths []string
}

func (s *stubIngest) Ingest(_ context.Context, paths []string) (*entity.IngestReport, error) {
	s.gotPaths = paths
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

type stubIndex struct {
	stats entity.IndexStats
	err   error
}

func (s *stubIndex) Stats(_ context.Context) (entity.IndexStats, error) {
	if s.err != nil {
		return entity.IndexStats{}, s.err
	}
	return s.stats, nil
}

func newTestRouter(q QueryUsecase, i IngestUsecase, x IndexUsecase) http.Handler {
	h := NewHandler(q, i, x, validator.NewValidator())
	r := chi.NewRouter()
	RegisterRoutes(r, h)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestQuery_Success(t *testing.T) {
	q := &stubQuery{answer: "42"}
	router := newTestRouter(q, &stubIngest{}, &stubIndex{})

	rec := doJSON(t, router, http.MethodPost, "/query", `{"question":"the meaning?","session_id":"s1"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp entity.QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "42", resp.Answer)
	assert.Equal(t, "s1", resp.SessionID)
	assert.Equal(t, entity.QueryStatusSuccess, resp.Status)
	assert.Equal(t, "the meaning?", q.gotQuestion)
}

func TestQuery_DefaultSession(t *testing.T) {
	q := &stubQuery{answer: "ok"}
	router := newTestRouter(q, &stubIngest{}, &stubIndex{})

	rec := doJSON(t, router, http.MethodPost, "/query", `{"question":"hi"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "default", q.gotSessionID)
}

func TestQuery_EmptyQuestion(t *testing.T) {
	router := newTestRouter(&stubQuery{}, &stubIngest{}, &stubIndex{})

	rec := doJSON(t, router, http.MethodPost, "/query", `{"question":"   "}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp["status"])
}

func TestQuery_MalformedBody(t *testing.T) {
	router := newTestRouter(&stubQuery{}, &stubIngest{}, &stubIndex{})

	rec := doJSON(t, router, http.MethodPost, "/query", `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuery_NoDocumentsIngested(t *testing.T) {
	q := &stubQuery{err: entity.ErrNoDocumentsIngested}
	router := newTestRouter(q, &stubIngest{}, &stubIndex{})

	rec := doJSON(t, router, http.MethodPost, "/query", `{"question":"anything?"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestQuery_ProviderError(t *testing.T) {
	q := &stubQuery{err: &entity.ProviderError{Provider: "llm", Status: 500, Message: "boom"}}
	router := newTestRouter(q, &stubIngest{}, &stubIndex{})

	rec := doJSON(t, router, http.MethodPost, "/query", `{"question":"anything?"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestIngest_Success(t *testing.T) {
	ing := &stubIngest{report: &entity.IngestReport{
		DocumentsProcessed: 2,
		ChunksIndexed:      7,
		Failures: []entity.FileFailure{
			{Path: "bad.pdf", Reason: "unreadable"},
		},
	}}
	router := newTestRouter(&stubQuery{}, ing, &stubIndex{})

	rec := doJSON(t, router, http.MethodPost, "/ingest", `{"paths":["a.txt","b.txt","bad.pdf"]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"a.txt", "b.txt", "bad.pdf"}, ing.gotPaths)

	var report entity.IngestReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 2, report.DocumentsProcessed)
	assert.Equal(t, 7, report.ChunksIndexed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "bad.pdf", report.Failures[0].Path)
}

func TestIngest_EmptyPaths(t *testing.T) {
	router := newTestRouter(&stubQuery{}, &stubIngest{}, &stubIndex{})

	rec := doJSON(t, router, http.MethodPost, "/ingest", `{"paths":[]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStats_Success(t *testing.T) {
	idx := &stubIndex{stats: entity.IndexStats{Entries: 12, Dimension: 1536, Model: "text-embedding-3-small"}}
	router := newTestRouter(&stubQuery{}, &stubIngest{}, idx)

	req := httptest.NewRequest(http.MethodGet, "/index/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var stats entity.IndexStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 12, stats.Entries)
}

func TestStats_NoIndex(t *testing.T) {
	idx := &stubIndex{err: entity.ErrIndexNotFound}
	router := newTestRouter(&stubQuery{}, &stubIngest{}, idx)

	req := httptest.NewRequest(http.MethodGet, "/index/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClearMemory(t *testing.T) {
	q := &stubQuery{}
	router := newTestRouter(q, &stubIngest{}, &stubIndex{})

	req := httptest.NewRequest(http.MethodDelete, "/memory/session-7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"session-7"}, q.cleared)
}
