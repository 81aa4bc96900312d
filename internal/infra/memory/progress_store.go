package memory

import (
	"context"
	"sync"
)

// ProgressStore tracks cleared questions per (quiz link, team) in memory.
// Question 1 is always unlocked; question n unlocks once n-1 is cleared.
type ProgressStore struct {
	mu      sync.RWMutex
	cleared map[string]map[int]bool
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{cleared: make(map[string]map[int]bool)}
}

func (s *ProgressStore) IsUnlocked(_ context.Context, link, team string, order int) (bool, error) {
	if order <= 1 {
		return true, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cleared[progressKey(link, team)][order-1], nil
}

func (s *ProgressStore) MarkCleared(_ context.Context, link, team string, order int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := progressKey(link, team)
	if s.cleared[key] == nil {
		s.cleared[key] = make(map[int]bool)
	}
	s.cleared[key][order] = true
	return nil
}

func progressKey(link, team string) string {
	return link + "|" + team
}
