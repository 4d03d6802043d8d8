package memory

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/firmdesk/firmdesk-backend/internal/model"
)

// Store holds per-conversation turn histories for the lifetime of the
// process. It is an owned cache, not a plain map: the number of tracked
// conversations is capped and idle conversations are evicted, so a
// long-running server cannot grow without bound on caller-supplied keys.
//
// Callers are responsible for namespacing conversation ids per user or
// session; the store itself does not tie keys to authentication.
type Store struct {
	mu     sync.Mutex
	cache  *expirable.LRU[string, []model.Turn]
	window int
}

// New builds a store keeping at most capacity conversations, evicting any
// conversation idle longer than idleTTL, and trimming each history to the
// last window turns.
func New(window, capacity int, idleTTL time.Duration) *Store {
	if window <= 0 {
		window = 20
	}
	if capacity <= 0 {
		capacity = 1024
	}
	return &Store{
		cache:  expirable.NewLRU[string, []model.Turn](capacity, nil, idleTTL),
		window: window,
	}
}

func (s *Store) Window() int {
	return s.window
}

// Get returns the windowed history for a conversation, empty if unseen.
// The returned slice is a copy; mutating it does not affect the store.
func (s *Store) Get(conversationID string) []model.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	turns, ok := s.cache.Get(conversationID)
	if !ok {
		return nil
	}
	turns = trimToWindow(turns, s.window)
	out := make([]model.Turn, len(turns))
	copy(out, turns)
	return out
}

// Append adds turns to a conversation and trims the stored history to the
// window size, oldest first. Appends on the same key are serialized.
func (s *Store) Append(conversationID string, turns ...model.Turn) {
	if len(turns) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, _ := s.cache.Get(conversationID)
	merged := make([]model.Turn, 0, len(existing)+len(turns))
	merged = append(merged, existing...)
	merged = append(merged, turns...)
	s.cache.Add(conversationID, trimToWindow(merged, s.window))
}

func (s *Store) Clear(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Remove(conversationID)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}

func trimToWindow(turns []model.Turn, window int) []model.Turn {
	if len(turns) <= window {
		return turns
	}
	return turns[len(turns)-window:]
}
