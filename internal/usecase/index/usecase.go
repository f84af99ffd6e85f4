package index

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/rag-backend/internal/entity"
	"github.com/futig/rag-backend/internal/repository"
)

// Embedder turns texts into vectors. Implemented by the embedding
// connector and its mock.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
	Model() string
}

// Usecase is the vector index: embedded chunks held in memory, persisted
// as a full snapshot through the store, searched by cosine similarity.
//
// A single RWMutex serializes writers against each other and against the
// persisted snapshot, so two concurrent Add calls cannot lose each
// other's chunks. Readers share the lock.
type Usecase struct {
	embedder Embedder
	store    repository.IndexStore
	logger   *zap.Logger

	mu       sync.RWMutex
	snapshot *repository.IndexSnapshot
	loaded   bool
}

func NewUsecase(
	embedder Embedder,
	store repository.IndexStore,
	logger *zap.Logger,
) *Usecase {
	return &Usecase{
		embedder: embedder,
		store:    store,
		logger:   logger,
	}
}

// Create builds a fresh index from the chunks, replacing whatever was
// persisted before. Embedding and persistence are all-or-nothing: on any
// error the previous index stays intact.
func (u *Usecase) Create(ctx context.Context, chunks []entity.Chunk) error {
	embedded, dimension, err := u.embedChunks(ctx, chunks)
	if err != nil {
		return err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	snapshot := &repository.IndexSnapshot{
		Model:     u.embedder.Model(),
		Dimension: dimension,
		Chunks:    embedded,
	}
	if err := u.store.Save(snapshot); err != nil {
		return fmt.Errorf("persist index: %w", err)
	}

	u.snapshot = snapshot
	u.loaded = true

	ctxzap.Info(ctx, "index created",
		zap.Int("chunks", len(embedded)),
		zap.Int("dimension", dimension),
		zap.String("model", snapshot.Model),
	)
	return nil
}

// Add embeds the chunks and appends them to the existing index. A cold
// start (no persisted index yet) degrades to Create. The updated snapshot
// is persisted before the call returns.
func (u *Usecase) Add(ctx context.Context, chunks []entity.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	embedded, dimension, err := u.embedChunks(ctx, chunks)
	if err != nil {
		return err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	current, err := u.currentLocked()
	if errors.Is(err, entity.ErrIndexNotFound) {
		current = &repository.IndexSnapshot{
			Model:     u.embedder.Model(),
			Dimension: dimension,
		}
	} else if err != nil {
		return err
	}

	if err := u.checkCompatible(current); err != nil {
		return err
	}
	if len(current.Chunks) > 0 && current.Dimension != dimension {
		return fmt.Errorf("%w: embedding dimension %d does not match index dimension %d",
			entity.ErrCorruptIndex, dimension, current.Dimension)
	}

	next := &repository.IndexSnapshot{
		Model:     current.Model,
		Dimension: dimension,
		Chunks:    make([]entity.EmbeddedChunk, 0, len(current.Chunks)+len(embedded)),
	}
	next.Chunks = append(next.Chunks, current.Chunks...)
	next.Chunks = append(next.Chunks, embedded...)

	if err := u.store.Save(next); err != nil {
		return fmt.Errorf("persist index: %w", err)
	}

	u.snapshot = next
	u.loaded = true

	ctxzap.Info(ctx, "chunks added to index",
		zap.Int("added", len(embedded)),
		zap.Int("total", len(next.Chunks)),
	)
	return nil
}

// Search embeds the query and returns the k most similar chunks, best
// first. Returns entity.ErrInvalidTopK for k < 1, entity.ErrIndexNotFound
// when no index has ever been built, and an empty slice for an index with
// no entries.
func (u *Usecase) Search(ctx context.Context, query string, k int) ([]entity.SearchResult, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: %d", entity.ErrInvalidTopK, k)
	}

	vectors, err := u.embedder.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed query: expected 1 vector, got %d", len(vectors))
	}
	queryVector := vectors[0]

	u.mu.RLock()
	snapshot, err := u.currentRLocked()
	u.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	if err := u.checkCompatible(snapshot); err != nil {
		return nil, err
	}

	if len(snapshot.Chunks) == 0 {
		return []entity.SearchResult{}, nil
	}

	results := make([]entity.SearchResult, 0, len(snapshot.Chunks))
	for i := range snapshot.Chunks {
		results = append(results, entity.SearchResult{
			Chunk: snapshot.Chunks[i].Chunk,
			Score: cosineSimilarity(queryVector, snapshot.Chunks[i].Vector),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Stats reports the current index size and embedding metadata.
func (u *Usecase) Stats(ctx context.Context) (entity.IndexStats, error) {
	u.mu.RLock()
	snapshot, err := u.currentRLocked()
	u.mu.RUnlock()
	if err != nil {
		return entity.IndexStats{}, err
	}

	return entity.IndexStats{
		Entries:   len(snapshot.Chunks),
		Dimension: snapshot.Dimension,
		Model:     snapshot.Model,
	}, nil
}

func (u *Usecase) embedChunks(ctx context.Context, chunks []entity.Chunk) ([]entity.EmbeddedChunk, int, error) {
	if len(chunks) == 0 {
		return nil, 0, nil
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}

	vectors, err := u.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, 0, fmt.Errorf("embed chunks: expected %d vectors, got %d", len(chunks), len(vectors))
	}

	dimension := len(vectors[0])
	embedded := make([]entity.EmbeddedChunk, len(chunks))
	for i := range chunks {
		if len(vectors[i]) != dimension {
			return nil, 0, fmt.Errorf("embed chunks: inconsistent dimensions %d and %d", dimension, len(vectors[i]))
		}
		embedded[i] = entity.EmbeddedChunk{
			Chunk:  chunks[i],
			Vector: vectors[i],
		}
	}
	return embedded, dimension, nil
}

// checkCompatible rejects a snapshot built with a different embedding
// model. Mixing models in one index would corrupt distance semantics.
func (u *Usecase) checkCompatible(snapshot *repository.IndexSnapshot) error {
	if snapshot.Model != "" && snapshot.Model != u.embedder.Model() {
		return fmt.Errorf("%w: index was built with model %q, configured model is %q",
			entity.ErrCorruptIndex, snapshot.Model, u.embedder.Model())
	}
	return nil
}

// currentLocked returns the cached snapshot, loading it from the store on
// first use. Callers hold the write lock.
func (u *Usecase) currentLocked() (*repository.IndexSnapshot, error) {
	if u.loaded {
		if u.snapshot == nil {
			return nil, entity.ErrIndexNotFound
		}
		return u.snapshot, nil
	}

	snapshot, err := u.store.Load()
	if errors.Is(err, entity.ErrIndexNotFound) {
		u.loaded = true
		u.snapshot = nil
		return nil, entity.ErrIndexNotFound
	}
	if err != nil {
		return nil, err
	}

	u.snapshot = snapshot
	u.loaded = true
	return snapshot, nil
}

// currentRLocked is the read-path variant: it never mutates the cache, so
// a cold cache falls through to the store on every call until a writer
// populates it.
func (u *Usecase) currentRLocked() (*repository.IndexSnapshot, error) {
	if u.loaded {
		if u.snapshot == nil {
			return nil, entity.ErrIndexNotFound
		}
		return u.snapshot, nil
	}
	return u.store.Load()
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
