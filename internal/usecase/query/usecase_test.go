package query

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/futig/rag-backend/internal/entity"
	"github.com/futig/rag-backend/internal/repository"
)

type stubSearcher struct {
	results []entity.SearchResult
	err     error
	gotK    int
}

func (s *stubSearcher) Search(_ context.Context, _ string, k int) ([]entity.SearchResult, error) {
	s.gotK = k
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

type stubGenerator struct {
	answer      string
	err         error
	gotMessages []entity.ChatMessage
}

func (g *stubGenerator) Complete(_ context.Context, messages []entity.ChatMessage) (string, error) {
	g.gotMessages = messages
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

func resultOf(texts ...string) []entity.SearchResult {
	results := make([]entity.SearchResult, len(texts))
	for i, text := range texts {
		results[i] = entity.SearchResult{
			Chunk: entity.Chunk{ID: fmt.Sprintf("c%d", i), Text: text},
			Score: 1 - float64(i)*0.1,
		}
	}
	return results
}

func newTestUsecase(searcher Searcher, llm Generator, memory repository.ConversationStore) *Usecase {
	return NewUsecase(searcher, llm, memory, 4, 20, zap.NewNop())
}

func TestQuery_AssemblesPromptAndRecordsTurn(t *testing.T) {
	searcher := &stubSearcher{results: resultOf("first fact", "second fact")}
	llm := &stubGenerator{answer: "the answer"}
	memory := repository.NewConversationInMemory(20, time.Hour)
	u := newTestUsecase(searcher, llm, memory)

	answer, err := u.Query(context.Background(), "what is it?", "default")
	require.NoError(t, err)
	assert.Equal(t, "the answer", answer)
	assert.Equal(t, 4, searcher.gotK)

	require.Len(t, llm.gotMessages, 2)
	assert.Equal(t, "system", llm.gotMessages[0].Role)
	assert.Equal(t, systemPrompt, llm.gotMessages[0].Content)

	user := llm.gotMessages[1]
	assert.Equal(t, entity.RoleUser, user.Role)
	assert.Contains(t, user.Content, "[1] first fact")
	assert.Contains(t, user.Content, "[2] second fact")
	assert.Contains(t, user.Content, "Question: what is it?")
	assert.Less(t,
		strings.Index(user.Content, "[1] first fact"),
		strings.Index(user.Content, "[2] second fact"),
	)

	history, err := memory.History(context.Background(), "default")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, entity.RoleUser, history[0].Role)
	assert.Equal(t, "what is it?", history[0].Content)
	assert.Equal(t, entity.RoleAssistant, history[1].Role)
	assert.Equal(t, "the answer", history[1].Content)
}

func TestQuery_NoDocumentsIngested(t *testing.T) {
	searcher := &stubSearcher{err: entity.ErrIndexNotFound}
	llm := &stubGenerator{answer: "unused"}
	memory := repository.NewConversationInMemory(20, time.Hour)
	u := newTestUsecase(searcher, llm, memory)

	_, err := u.Query(context.Background(), "anything?", "default")
	assert.ErrorIs(t, err, entity.ErrNoDocumentsIngested)

	history, herr := memory.History(context.Background(), "default")
	require.NoError(t, herr)
	assert.Empty(t, history)
}

func TestQuery_ProviderFailureRecordsNothing(t *testing.T) {
	searcher := &stubSearcher{results: resultOf("fact")}
	llm := &stubGenerator{err: &entity.ProviderError{Provider: "llm", Status: 502, Message: "bad gateway"}}
	memory := repository.NewConversationInMemory(20, time.Hour)
	u := newTestUsecase(searcher, llm, memory)

	_, err := u.Query(context.Background(), "question?", "default")
	require.Error(t, err)

	var provErr *entity.ProviderError
	assert.ErrorAs(t, err, &provErr)

	history, herr := memory.History(context.Background(), "default")
	require.NoError(t, herr)
	assert.Empty(t, history)
}

func TestQuery_HistoryFlowsIntoPrompt(t *testing.T) {
	searcher := &stubSearcher{results: resultOf("fact")}
	llm := &stubGenerator{answer: "second answer"}
	memory := repository.NewConversationInMemory(20, time.Hour)
	require.NoError(t, memory.Append(context.Background(), "s1", "first question", "first answer"))

	u := newTestUsecase(searcher, llm, memory)

	_, err := u.Query(context.Background(), "follow-up?", "s1")
	require.NoError(t, err)

	require.Len(t, llm.gotMessages, 4)
	assert.Equal(t, "first question", llm.gotMessages[1].Content)
	assert.Equal(t, "first answer", llm.gotMessages[2].Content)
	assert.Contains(t, llm.gotMessages[3].Content, "follow-up?")
}

func TestQuery_SessionIsolation(t *testing.T) {
	searcher := &stubSearcher{results: resultOf("fact")}
	llm := &stubGenerator{answer: "a"}
	memory := repository.NewConversationInMemory(20, time.Hour)
	u := newTestUsecase(searcher, llm, memory)

	_, err := u.Query(context.Background(), "question for a", "session-a")
	require.NoError(t, err)

	_, err = u.Query(context.Background(), "question for b", "session-b")
	require.NoError(t, err)

	// Session b's prompt carries no turns from session a.
	for _, msg := range llm.gotMessages[:len(llm.gotMessages)-1] {
		assert.NotContains(t, msg.Content, "question for a")
	}
}

func TestQuery_HistoryCapped(t *testing.T) {
	searcher := &stubSearcher{results: resultOf("fact")}
	llm := &stubGenerator{answer: "a"}
	memory := repository.NewConversationInMemory(100, time.Hour)
	for i := 0; i < 30; i++ {
		require.NoError(t, memory.Append(context.Background(), "s", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i)))
	}

	u := NewUsecase(searcher, llm, memory, 4, 5, zap.NewNop())

	_, err := u.Query(context.Background(), "latest?", "s")
	require.NoError(t, err)

	// system + 5 capped turns (pairs) + user message.
	require.Len(t, llm.gotMessages, 1+5*2+1)
	assert.Equal(t, "q25", llm.gotMessages[1].Content)
}

func TestQuery_EmptyRetrievalStillAnswers(t *testing.T) {
	searcher := &stubSearcher{results: nil}
	llm := &stubGenerator{answer: "no context answer"}
	memory := repository.NewConversationInMemory(20, time.Hour)
	u := newTestUsecase(searcher, llm, memory)

	answer, err := u.Query(context.Background(), "question?", "default")
	require.NoError(t, err)
	assert.Equal(t, "no context answer", answer)
	assert.Contains(t, llm.gotMessages[1].Content, "(no relevant context found)")
}

func TestClearSession(t *testing.T) {
	memory := repository.NewConversationInMemory(20, time.Hour)
	require.NoError(t, memory.Append(context.Background(), "s", "q", "a"))

	u := newTestUsecase(&stubSearcher{}, &stubGenerator{}, memory)
	require.NoError(t, u.ClearSession(context.Background(), "s"))

	history, err := memory.History(context.Background(), "s")
	require.NoError(t, err)
	assert.Empty(t, history)
}
