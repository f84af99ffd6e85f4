package embedding

import (
	"context"
	"fmt"
	"net/http"

	retry "github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/rag-backend/internal/config"
	"github.com/futig/rag-backend/internal/entity"
	"github.com/futig/rag-backend/internal/integration/common"
	pkghttp "github.com/futig/rag-backend/pkg/http"
)

const providerName = "embedding"

// Connector maps text to fixed-length vectors through an OpenAI-compatible
// embeddings endpoint.
type Connector struct {
	config    config.EmbeddingConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.EmbeddingConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Model returns the embedding model identifier. Indexes record it so a
// reload against a different model is rejected.
func (c *Connector) Model() string {
	return c.config.Model
}

// EmbedBatch embeds texts in configured batch sizes, preserving input order.
func (c *Connector) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ctxzap.Debug(ctx, "embedding texts", zap.Int("count", len(texts)))

	vectors := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += c.config.BatchSize {
		end := start + c.config.BatchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := c.embed(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}

	return vectors, nil
}

func (c *Connector) embed(ctx context.Context, batch []string) ([][]float64, error) {
	req := &entity.EmbeddingRequest{
		Model: c.config.Model,
		Input: batch,
	}

	var resp entity.EmbeddingResponse
	err := retry.Do(func() error {
		return c.connector.DoRequest(ctx, http.MethodPost, "/embeddings", req, &resp)
	}, append(c.config.Retry.ToRetryOptions(), common.RetryIf, retry.Context(ctx))...)
	if err != nil {
		ctxzap.Error(ctx, "embedding request failed", zap.Error(err))
		return nil, common.AsProviderError(providerName, err)
	}

	if len(resp.Data) != len(batch) {
		return nil, common.AsProviderError(providerName,
			fmt.Errorf("expected %d embeddings, got %d", len(batch), len(resp.Data)))
	}

	// The API may return items out of order; index is authoritative.
	vectors := make([][]float64, len(batch))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(batch) {
			return nil, common.AsProviderError(providerName,
				fmt.Errorf("embedding index %d out of range", item.Index))
		}
		vectors[item.Index] = item.Embedding
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, common.AsProviderError(providerName,
				fmt.Errorf("no embedding returned for input %d", i))
		}
	}
	return vectors, nil
}
