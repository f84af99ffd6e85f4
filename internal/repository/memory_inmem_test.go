package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futig/rag-backend/internal/entity"
)

func newTestStore() *ConversationInMemory {
	return NewConversationInMemory(20, time.Hour)
}

func TestConversationInMemory_LazyCreation(t *testing.T) {
	store := newTestStore()

	history, err := store.History(context.Background(), "unseen")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestConversationInMemory_AppendOrder(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", "q1", "a1"))
	require.NoError(t, store.Append(ctx, "s1", "q2", "a2"))

	history, err := store.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 4)

	assert.Equal(t, entity.RoleUser, history[0].Role)
	assert.Equal(t, "q1", history[0].Content)
	assert.Equal(t, entity.RoleAssistant, history[1].Role)
	assert.Equal(t, "a1", history[1].Content)
	assert.Equal(t, "q2", history[2].Content)
	assert.Equal(t, "a2", history[3].Content)
}

func TestConversationInMemory_SessionIsolation(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "a", "question for a", "answer for a"))

	historyB, err := store.History(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, historyB)

	historyA, err := store.History(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, historyA, 2)
}

func TestConversationInMemory_Clear(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", "q", "a"))
	require.NoError(t, store.Clear(ctx, "s1"))

	history, err := store.History(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestConversationInMemory_CapsHistory(t *testing.T) {
	store := NewConversationInMemory(3, time.Hour)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, store.Append(ctx, "s1", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i)))
	}

	history, err := store.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 6) // 3 pairs
	assert.Equal(t, "q7", history[0].Content)
	assert.Equal(t, "a9", history[5].Content)
}

func TestConversationInMemory_ConcurrentAppends(t *testing.T) {
	store := NewConversationInMemory(1000, time.Hour)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Append(ctx, "shared", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
		}(i)
	}
	wg.Wait()

	history, err := store.History(ctx, "shared")
	require.NoError(t, err)
	assert.Len(t, history, 100)
}
