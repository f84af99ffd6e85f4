package repository

import (
	"context"

	"github.com/futig/rag-backend/internal/entity"
)

// ConversationStore keeps the per-session transcript of question/answer
// turns. Sessions are created lazily on first reference; histories are
// append-only and chronological (oldest first). Implementations must not let
// one session's turns leak into another's.
type ConversationStore interface {
	// History returns the session's turns in chronological order. Unknown
	// sessions yield an empty history, not an error.
	History(ctx context.Context, sessionID string) ([]entity.Turn, error)
	// Append atomically records one question/answer pair.
	Append(ctx context.Context, sessionID, question, answer string) error
	// Clear removes the session's history entirely.
	Clear(ctx context.Context, sessionID string) error
}
