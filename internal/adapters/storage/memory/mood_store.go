package memory

import (
	"sync"

	"github.com/felix-companion/felix-agent/internal/domain"
)

// MoodStore keeps mood check-ins per user, newest last internally and
// returned newest first like the mobile app expects.
type MoodStore struct {
	mu      sync.RWMutex
	entries map[domain.UserID][]*domain.MoodEntry
}

func NewMoodStore() *MoodStore {
	return &MoodStore{
		entries: make(map[domain.UserID][]*domain.MoodEntry),
	}
}

func (s *MoodStore) AppendMoodEntry(entry *domain.MoodEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *entry
	s.entries[entry.UserID] = append(s.entries[entry.UserID], &cp)
	return nil
}

func (s *MoodStore) ListMoodEntriesByUser(userID domain.UserID, limit int) ([]*domain.MoodEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.entries[userID]
	if limit <= 0 || limit > len(all) {
		limit = len(all)
	}

	out := make([]*domain.MoodEntry, 0, limit)
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *all[i]
		out = append(out, &cp)
	}
	return out, nil
}
