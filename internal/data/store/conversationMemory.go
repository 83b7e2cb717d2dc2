package store

import (
	"sync"

	"github.com/akolanti/docqa/internal/domain/commonModels"
)

// ConversationMemory keeps every turn of the current session in order. It is process local and
// unbounded; callers take a bounded view with Recent.
type ConversationMemory struct {
	chatLock *sync.RWMutex
	turns    []commonModels.Turn
}

func InitConversationMemory() *ConversationMemory {
	return &ConversationMemory{
		chatLock: new(sync.RWMutex),
	}
}

func (m *ConversationMemory) Append(turn commonModels.Turn) {
	m.chatLock.Lock()
	defer m.chatLock.Unlock()
	m.turns = append(m.turns, turn)
}

// History returns a copy of all turns, oldest first.
func (m *ConversationMemory) History() []commonModels.Turn {
	return m.Recent(0)
}

// Recent returns the last n turns, oldest first. n <= 0 means all of them.
func (m *ConversationMemory) Recent(n int) []commonModels.Turn {
	m.chatLock.RLock()
	defer m.chatLock.RUnlock()

	start := 0
	if n > 0 && len(m.turns) > n {
		start = len(m.turns) - n
	}
	out := make([]commonModels.Turn, len(m.turns)-start)
	copy(out, m.turns[start:])
	return out
}

func (m *ConversationMemory) Len() int {
	m.chatLock.RLock()
	defer m.chatLock.RUnlock()
	return len(m.turns)
}

func (m *ConversationMemory) Clear() {
	m.chatLock.Lock()
	defer m.chatLock.Unlock()
	m.turns = nil
}
