package repository

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/futig/rag-backend/internal/entity"
)

var _ ConversationStore = &ConversationInMemory{}

// ConversationInMemory keeps session histories in process memory. Idle
// sessions are evicted after the configured TTL and each history is capped
// at maxTurns question/answer pairs (oldest dropped first), so long-running
// processes stay bounded.
type ConversationInMemory struct {
	mu       sync.Mutex
	sessions *gocache.Cache
	maxTurns int
}

type sessionHistory struct {
	mu    sync.Mutex
	turns []entity.Turn
}

// NewConversationInMemory creates the store. maxTurns counts question/answer
// pairs, ttl bounds how long an idle session survives.
func NewConversationInMemory(maxTurns int, ttl time.Duration) *ConversationInMemory {
	return &ConversationInMemory{
		sessions: gocache.New(ttl, ttl/2+time.Minute),
		maxTurns: maxTurns,
	}
}

func (s *ConversationInMemory) session(sessionID string) *sessionHistory {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.sessions.Get(sessionID); ok {
		return v.(*sessionHistory)
	}
	h := &sessionHistory{}
	s.sessions.SetDefault(sessionID, h)
	return h
}

func (s *ConversationInMemory) History(_ context.Context, sessionID string) ([]entity.Turn, error) {
	h := s.session(sessionID)

	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]entity.Turn, len(h.turns))
	copy(out, h.turns)
	return out, nil
}

func (s *ConversationInMemory) Append(_ context.Context, sessionID, question, answer string) error {
	h := s.session(sessionID)

	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	h.turns = append(h.turns,
		entity.Turn{Role: entity.RoleUser, Content: question, CreatedAt: now},
		entity.Turn{Role: entity.RoleAssistant, Content: answer, CreatedAt: now},
	)

	if limit := s.maxTurns * 2; len(h.turns) > limit {
		h.turns = append(h.turns[:0:0], h.turns[len(h.turns)-limit:]...)
	}

	// Refresh the TTL on activity.
	s.sessions.SetDefault(sessionID, h)
	return nil
}

func (s *ConversationInMemory) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions.Delete(sessionID)
	return nil
}
