package agent

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xkilldash9x/cursorctl/api/schemas"
	"github.com/xkilldash9x/cursorctl/internal/conversation"
)

// Session owns a conversation history and accepts one command at a time.
type Session struct {
	id      string
	engine  *Engine
	history *conversation.History

	mu   sync.Mutex
	next int
}

// NewSession starts a conversation holding at most capacity turns.
func NewSession(engine *Engine, capacity int) *Session {
	return &Session{
		id:      uuid.NewString(),
		engine:  engine,
		history: conversation.NewHistory(capacity),
	}
}

// ID is the session's UUID.
func (s *Session) ID() string { return s.id }

// Engine returns the engine the session drives.
func (s *Session) Engine() *Engine { return s.engine }

// History returns the session's turn history.
func (s *Session) History() *conversation.History { return s.history }

// Handle is the textual command interface. Concurrent callers are served one at a time, each
// command running to completion before the next is classified.
func (s *Session) Handle(ctx context.Context, raw string) Reply {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmd := schemas.Command{
		ID:         uuid.NewString(),
		SessionID:  s.id,
		Index:      s.next,
		Raw:        raw,
		ReceivedAt: time.Now().UTC(),
	}
	s.next++
	return s.engine.Handle(ctx, s.history, cmd)
}
