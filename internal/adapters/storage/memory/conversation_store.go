package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/felix-companion/felix-agent/internal/domain"
)

type ConversationStore struct {
	mu            sync.RWMutex
	conversations map[domain.ConversationID]*domain.Conversation
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		conversations: make(map[domain.ConversationID]*domain.Conversation),
	}
}

func (s *ConversationStore) CreateConversation(conv *domain.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.conversations[conv.ID]; exists {
		return fmt.Errorf("conversation %s already exists: %w", conv.ID, domain.ErrInvalidInput)
	}

	cp := *conv
	s.conversations[conv.ID] = &cp
	return nil
}

func (s *ConversationStore) UpdateConversation(conv *domain.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.conversations[conv.ID]; !exists {
		return fmt.Errorf("conversation %s: %w", conv.ID, domain.ErrNotFound)
	}

	cp := *conv
	s.conversations[conv.ID] = &cp
	return nil
}

func (s *ConversationStore) GetConversation(id domain.ConversationID) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	}

	cp := *conv
	return &cp, nil
}

func (s *ConversationStore) ListConversationsByUser(userID domain.UserID, limit int) ([]*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Conversation
	for _, conv := range s.conversations {
		if conv.UserID == userID {
			cp := *conv
			result = append(result, &cp)
		}
	}

	// most recently updated first, like the mobile app's conversation list
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
