package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/rag-backend/internal/chunker"
	"github.com/futig/rag-backend/internal/entity"
	"github.com/futig/rag-backend/internal/loader"
)

// Indexer receives the chunks produced by ingestion. Implemented by the
// vector index usecase.
type Indexer interface {
	Add(ctx context.Context, chunks []entity.Chunk) error
}

// Usecase runs the ingestion pipeline: load each source, chunk its text,
// tag every chunk with provenance metadata, and hand the batch to the
// index. A failing file never aborts the run; it is reported alongside
// the results for the files that succeeded.
type Usecase struct {
	loaders *loader.Registry
	chunker *chunker.Chunker
	indexer Indexer
	logger  *zap.Logger
}

func NewUsecase(
	loaders *loader.Registry,
	chunker *chunker.Chunker,
	indexer Indexer,
	logger *zap.Logger,
) *Usecase {
	return &Usecase{
		loaders: loaders,
		chunker: chunker,
		indexer: indexer,
		logger:  logger,
	}
}

// Process loads and chunks every path, collecting per-file failures
// instead of stopping at the first one. Files that load but contain no
// text count as processed with zero chunks.
func (u *Usecase) Process(ctx context.Context, paths []string) ([]entity.Chunk, []entity.FileFailure) {
	var (
		chunks   []entity.Chunk
		failures []entity.FileFailure
	)

	for _, path := range paths {
		content, fileType, err := u.loaders.Load(ctx, path)
		if err != nil {
			ctxzap.Warn(ctx, "skipping source", zap.String("path", path), zap.Error(err))
			failures = append(failures, entity.FileFailure{
				Path:   path,
				Reason: err.Error(),
			})
			continue
		}

		pieces := u.chunker.Split(content)
		for i, piece := range pieces {
			chunks = append(chunks, entity.Chunk{
				ID:   uuid.NewString(),
				Text: piece,
				Metadata: entity.ChunkMetadata{
					SourceFile: path,
					FileType:   fileType,
					ChunkIndex: i,
				},
			})
		}

		ctxzap.Debug(ctx, "source chunked",
			zap.String("path", path),
			zap.String("file_type", fileType),
			zap.Int("chunks", len(pieces)),
		)
	}

	return chunks, failures
}

// Ingest runs the full pipeline and pushes the resulting chunks into the
// index. The report counts only sources that made it into the index; if
// indexing fails, the whole batch is reported as failed.
func (u *Usecase) Ingest(ctx context.Context, paths []string) (*entity.IngestReport, error) {
	chunks, failures := u.Process(ctx, paths)

	processed := len(paths) - len(failures)
	if len(chunks) > 0 {
		if err := u.indexer.Add(ctx, chunks); err != nil {
			return nil, fmt.Errorf("index chunks: %w", err)
		}
	}

	report := &entity.IngestReport{
		DocumentsProcessed: processed,
		ChunksIndexed:      len(chunks),
		Failures:           failures,
	}

	ctxzap.Info(ctx, "ingestion finished",
		zap.Int("documents_processed", report.DocumentsProcessed),
		zap.Int("chunks_indexed", report.ChunksIndexed),
		zap.Int("failures", len(report.Failures)),
	)
	return report, nil
}

// SupportedSource reports whether the path has a registered loader. Used
// by the directory watcher to ignore unrelated files.
func (u *Usecase) SupportedSource(path string) bool {
	return u.loaders.Supports(strings.TrimSpace(path))
}
