package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/futig/rag-backend/internal/entity"
)

var _ ConversationStore = &ConversationPostgres{}

// ConversationPostgres persists session histories so conversations survive
// restarts and can be shared between instances.
type ConversationPostgres struct {
	db *pgxpool.Pool
}

func NewConversationPostgres(db *pgxpool.Pool) *ConversationPostgres {
	return &ConversationPostgres{db: db}
}

func (r *ConversationPostgres) History(ctx context.Context, sessionID string) ([]entity.Turn, error) {
	rows, err := r.db.Query(ctx, `
		SELECT role, content, created_at
		FROM conversation_turns
		WHERE session_id = $1
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query conversation turns: %w", err)
	}
	defer rows.Close()

	var turns []entity.Turn
	for rows.Next() {
		var t entity.Turn
		if err := rows.Scan(&t.Role, &t.Content, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation turn: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversation turns: %w", err)
	}
	return turns, nil
}

func (r *ConversationPostgres) Append(ctx context.Context, sessionID, question, answer string) error {
	// Both turns land in one transaction so a crash cannot record a question
	// without its answer.
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const insert = `
		INSERT INTO conversation_turns (session_id, role, content)
		VALUES ($1, $2, $3)
	`
	if _, err := tx.Exec(ctx, insert, sessionID, entity.RoleUser, question); err != nil {
		return fmt.Errorf("insert user turn: %w", err)
	}
	if _, err := tx.Exec(ctx, insert, sessionID, entity.RoleAssistant, answer); err != nil {
		return fmt.Errorf("insert assistant turn: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit conversation turns: %w", err)
	}
	return nil
}

func (r *ConversationPostgres) Clear(ctx context.Context, sessionID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM conversation_turns WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("delete conversation turns: %w", err)
	}
	return nil
}
