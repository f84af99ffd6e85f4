package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/rag-backend/internal/entity"
	"github.com/futig/rag-backend/internal/repository"
)

const systemPrompt = "You are a precise document assistant. Use the context to answer."

// Searcher retrieves the chunks most similar to a question. Implemented
// by the vector index usecase.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]entity.SearchResult, error)
}

// Generator produces the final answer from an assembled prompt.
// Implemented by the LLM connector and its mock.
type Generator interface {
	Complete(ctx context.Context, messages []entity.ChatMessage) (string, error)
}

// Usecase answers questions over the ingested corpus: retrieve the most
// relevant chunks, assemble a prompt with the session's prior turns, and
// record the exchange in memory once the answer arrives.
type Usecase struct {
	searcher Searcher
	llm      Generator
	memory   repository.ConversationStore
	logger   *zap.Logger

	topK            int
	historyMaxTurns int
}

func NewUsecase(
	searcher Searcher,
	llm Generator,
	memory repository.ConversationStore,
	topK int,
	historyMaxTurns int,
	logger *zap.Logger,
) *Usecase {
	return &Usecase{
		searcher:        searcher,
		llm:             llm,
		memory:          memory,
		topK:            topK,
		historyMaxTurns: historyMaxTurns,
		logger:          logger,
	}
}

// Query answers the question within the given session. The exchange is
// recorded in conversation memory only after the provider returns an
// answer; a failed or cancelled query leaves the session untouched.
//
// Returns entity.ErrNoDocumentsIngested when nothing has been indexed
// yet.
func (u *Usecase) Query(ctx context.Context, question, sessionID string) (string, error) {
	results, err := u.searcher.Search(ctx, question, u.topK)
	if errors.Is(err, entity.ErrIndexNotFound) {
		return "", entity.ErrNoDocumentsIngested
	}
	if err != nil {
		return "", fmt.Errorf("retrieve context: %w", err)
	}

	history, err := u.memory.History(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("load conversation history: %w", err)
	}

	messages := u.assembleMessages(question, results, history)

	ctxzap.Debug(ctx, "prompt assembled",
		zap.String("session_id", sessionID),
		zap.Int("retrieved_chunks", len(results)),
		zap.Int("history_turns", len(history)),
	)

	answer, err := u.llm.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}

	if err := u.memory.Append(ctx, sessionID, question, answer); err != nil {
		return "", fmt.Errorf("record conversation turn: %w", err)
	}

	return answer, nil
}

// ClearSession drops the session's conversation history.
func (u *Usecase) ClearSession(ctx context.Context, sessionID string) error {
	return u.memory.Clear(ctx, sessionID)
}

// assembleMessages builds the chat transcript: the system instruction,
// the most recent prior turns, then the user message carrying the
// numbered context block and the question.
func (u *Usecase) assembleMessages(
	question string,
	results []entity.SearchResult,
	history []entity.Turn,
) []entity.ChatMessage {
	messages := make([]entity.ChatMessage, 0, len(history)+2)
	messages = append(messages, entity.ChatMessage{
		Role:    "system",
		Content: systemPrompt,
	})

	if max := u.historyMaxTurns * 2; len(history) > max {
		history = history[len(history)-max:]
	}
	for _, turn := range history {
		messages = append(messages, entity.ChatMessage{
			Role:    turn.Role,
			Content: turn.Content,
		})
	}

	messages = append(messages, entity.ChatMessage{
		Role:    entity.RoleUser,
		Content: fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextBlock(results), question),
	})
	return messages
}

// contextBlock renders the retrieved chunks as a numbered list, best
// match first.
func contextBlock(results []entity.SearchResult) string {
	if len(results) == 0 {
		return "(no relevant context found)"
	}

	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d] %s", i+1, r.Chunk.Text)
	}
	return b.String()
}
