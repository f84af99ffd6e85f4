package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const mockDimension = 16

// MockConnector produces deterministic pseudo-embeddings so the whole
// pipeline can run without a provider account.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Model() string {
	return "mock-embedding"
}

func (m *MockConnector) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	ctxzap.Debug(ctx, "[MOCK] embedding texts", zap.Int("count", len(texts)))

	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vectors[i] = mockVector(text)
	}
	return vectors, nil
}

// mockVector hashes the text into a fixed-dimension vector. Identical texts
// always map to identical vectors, so similarity search stays meaningful in
// mock mode.
func mockVector(text string) []float64 {
	sum := sha256.Sum256([]byte(text))
	vector := make([]float64, mockDimension)
	for i := 0; i < mockDimension; i++ {
		bits := binary.BigEndian.Uint16(sum[i*2 : i*2+2])
		vector[i] = float64(bits)/65535.0 - 0.5
	}
	return vector
}
