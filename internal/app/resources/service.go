// Package resources serves the mood-tagged wellness resource catalog with
// the same filter semantics as the mobile resources tab.
package resources

import (
	"context"
	"fmt"

	"github.com/felix-companion/felix-agent/internal/domain"
)

// Moods is the filter chip list shown above the catalog.
var Moods = []string{"all", "anxious", "sad", "angry", "tired", "lonely", "confused", "overwhelmed"}

type Service struct {
	store domain.ResourceStore
}

func NewService(store domain.ResourceStore) *Service {
	return &Service{store: store}
}

type Filter struct {
	Mood string // "" or "all" matches everything
	Type string // "", "all", "video" or "activity"
}

// List returns resources matching the filter. A resource matches when the
// mood tag is one of its moods AND the type matches; "all" (or empty)
// disables that dimension.
func (s *Service) List(ctx context.Context, f Filter) ([]*domain.Resource, error) {
	switch f.Type {
	case "", "all", string(domain.ResourceVideo), string(domain.ResourceActivity):
	default:
		return nil, fmt.Errorf("unknown resource type %q: %w", f.Type, domain.ErrInvalidInput)
	}

	all, err := s.store.ListResources()
	if err != nil {
		return nil, fmt.Errorf("loading resources: %w", err)
	}

	out := make([]*domain.Resource, 0, len(all))
	for _, r := range all {
		if !moodMatch(r, f.Mood) {
			continue
		}
		if !typeMatch(r, f.Type) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func moodMatch(r *domain.Resource, mood string) bool {
	if mood == "" || mood == "all" {
		return true
	}
	for _, m := range r.Moods {
		if m == mood {
			return true
		}
	}
	return false
}

func typeMatch(r *domain.Resource, typ string) bool {
	if typ == "" || typ == "all" {
		return true
	}
	return string(r.Type) == typ
}
