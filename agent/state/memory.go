package state

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps conversation threads in process memory. Used when
// no Redis endpoint is configured; threads do not survive a restart.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
}

type memoryEntry struct {
	thread    ConversationThread
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = defaultStoreTTL
	}
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Load(ctx context.Context, conversationID string) (*ConversationThread, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, ErrInvalidConversation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[conversationID]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.entries, conversationID)
		return nil, ErrThreadNotFound
	}

	// Copy so callers cannot mutate the stored thread in place.
	thread := entry.thread
	thread.History = append([]Turn(nil), entry.thread.History...)
	return &thread, nil
}

func (s *MemoryStore) Save(ctx context.Context, thread *ConversationThread) error {
	if thread == nil {
		return ErrNilThread
	}
	if strings.TrimSpace(thread.ConversationID) == "" {
		return ErrInvalidConversation
	}

	stored := *thread
	stored.History = append([]Turn(nil), thread.History...)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	s.entries[thread.ConversationID] = memoryEntry{
		thread:    stored,
		expiresAt: time.Now().Add(s.ttl),
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, conversationID string) error {
	if strings.TrimSpace(conversationID) == "" {
		return ErrInvalidConversation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, conversationID)
	return nil
}

// sweepLocked drops expired entries. Called opportunistically on Save;
// the caller holds the mutex.
func (s *MemoryStore) sweepLocked() {
	now := time.Now()
	for id, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, id)
		}
	}
}
