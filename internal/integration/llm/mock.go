package llm

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/rag-backend/internal/entity"
)

// MockConnector answers with a canned response for local development.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Complete(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	ctxzap.Info(ctx, "[MOCK] generating chat completion", zap.Int("message_count", len(messages)))

	var question string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == entity.RoleUser {
			question = messages[i].Content
			break
		}
	}

	return fmt.Sprintf("[MOCK] This is a generated answer based on %d prompt messages. Prompt tail: %.120s",
		len(messages), question), nil
}
