// Package conversation keeps the bounded turn history of a session.
package conversation

import (
	"sync"

	"github.com/xkilldash9x/cursorctl/api/schemas"
)

// Turn is one handled command. Result is nil for conversational turns.
type Turn struct {
	Command schemas.Command          `json:"command"`
	Intent  schemas.Intent           `json:"intent"`
	Result  *schemas.ExecutionResult `json:"result,omitempty"`
	Reply   string                   `json:"reply"`
}

// History is a fixed-capacity ring of turns with FIFO eviction.
type History struct {
	mu    sync.RWMutex
	turns []Turn
	next  int
	size  int
}

// NewHistory creates a ring holding at most capacity turns. Capacities below 1 become 1.
func NewHistory(capacity int) *History {
	return &History{turns: make([]Turn, max(1, capacity))}
}

// Append stores t, evicting the oldest turn when full. O(1).
func (h *History) Append(t Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns[h.next] = t
	h.next = (h.next + 1) % len(h.turns)
	if h.size < len(h.turns) {
		h.size++
	}
}

// Recent returns up to n of the newest turns, oldest first.
func (h *History) Recent(n int) []Turn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n = min(max(n, 0), h.size)
	out := make([]Turn, n)
	start := h.next - n
	if start < 0 {
		start += len(h.turns)
	}
	for i := 0; i < n; i++ {
		out[i] = h.turns[(start+i)%len(h.turns)]
	}
	return out
}

// Len is the number of stored turns.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

// Cap is the maximum number of stored turns.
func (h *History) Cap() int { return len(h.turns) }
