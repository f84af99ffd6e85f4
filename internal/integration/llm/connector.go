package llm

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

const providerName = "llm"

// Connector generates chat completions through an OpenAI-compatible
// endpoint (OpenAI, OpenRouter, or a self-hosted gateway).
type Connector struct {
	config    config.LLMConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.LLMConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Complete sends the messages and returns the model's text response. The
// configured temperature and token budget are passed through unchanged.
func (c *Connector) Complete(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	ctxzap.Debug(ctx, "requesting chat completion",
		zap.String("model", c.config.Model),
		zap.Int("message_count", len(messages)),
	)

	req := &entity.ChatCompletionRequest{
		Model:       c.config.Model,
		Messages:    messages,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	}

	var resp entity.ChatCompletionResponse
	err := retry.Do(func() error {
		return c.connector.DoRequest(ctx, http.MethodPost, "/chat/completions", req, &resp)
	}, append(c.config.Retry.ToRetryOptions(), common.RetryIf, retry.Context(ctx))...)
	if err != nil {
		ctxzap.Error(ctx, "chat completion failed", zap.Error(err))
		return "", common.AsProviderError(providerName, err)
	}

	if len(resp.Choices) == 0 {
		return "", common.AsProviderError(providerName, fmt.Errorf("no completion choices returned"))
	}

	answer := resp.Choices[0].Message.Content
	ctxzap.Debug(ctx, "chat completion received", zap.Int("answer_length", len(answer)))
	return answer, nil
}
