package memory

import (
	"sync"

	"github.com/felix-companion/felix-agent/internal/domain"
)

// ResourceStore serves the wellness resource catalog. NewResourceStore seeds
// the built-in catalog; NewEmptyResourceStore starts blank for tests.
type ResourceStore struct {
	mu        sync.RWMutex
	resources []*domain.Resource
}

func NewResourceStore() *ResourceStore {
	return &ResourceStore{resources: seedResources()}
}

func NewEmptyResourceStore() *ResourceStore {
	return &ResourceStore{}
}

func (s *ResourceStore) ListResources() ([]*domain.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Resource, 0, len(s.resources))
	for _, r := range s.resources {
		cp := *r
		cp.Moods = append([]string(nil), r.Moods...)
		out = append(out, &cp)
	}
	return out, nil
}

func (s *ResourceStore) AddResource(r *domain.Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.resources = append(s.resources, &cp)
}

// seedResources is the catalog the mobile app ships with.
func seedResources() []*domain.Resource {
	return []*domain.Resource{
		{
			ID:          "1",
			Title:       "Guided Breathing for Anxiety",
			Type:        domain.ResourceVideo,
			Moods:       []string{"anxious", "stressed"},
			Duration:    "10 min",
			Description: "A calming breathing exercise to help you find peace and reduce anxiety.",
		},
		{
			ID:          "2",
			Title:       "Gratitude Journaling",
			Type:        domain.ResourceActivity,
			Moods:       []string{"sad", "overwhelmed"},
			Description: "Write down three things you're grateful for today to shift your perspective.",
		},
		{
			ID:          "3",
			Title:       "Body Scan Meditation",
			Type:        domain.ResourceVideo,
			Moods:       []string{"tired", "tense"},
			Duration:    "15 min",
			Description: "Release tension and connect with your body through mindful awareness.",
		},
		{
			ID:          "4",
			Title:       "Creative Expression",
			Type:        domain.ResourceActivity,
			Moods:       []string{"confused", "frustrated"},
			Description: "Draw, paint, or create something to express what you're feeling.",
		},
		{
			ID:          "5",
			Title:       "Loving Kindness Meditation",
			Type:        domain.ResourceVideo,
			Moods:       []string{"lonely", "angry"},
			Duration:    "12 min",
			Description: "Cultivate compassion for yourself and others through this gentle practice.",
		},
		{
			ID:          "6",
			Title:       "Nature Connection",
			Type:        domain.ResourceActivity,
			Moods:       []string{"disconnected", "numb"},
			Description: "Step outside and spend time in nature to ground yourself.",
		},
	}
}
