package breathing

import (
	"errors"
	"testing"

	"github.com/felix-companion/felix-agent/internal/domain"
)

func TestListIsFixedAndNonEmpty(t *testing.T) {
	first := List()
	if len(first) != 3 {
		t.Fatalf("expected 3 exercises, got %d", len(first))
	}

	// Mutating the returned slice must not leak into the catalog.
	first[0].Name = "mutated"

	second := List()
	if second[0].Name != "Box Breathing" {
		t.Fatalf("catalog leaked a mutation: %q", second[0].Name)
	}

	for _, ex := range second {
		if ex.Duration <= 0 {
			t.Errorf("exercise %s has non-positive duration", ex.ID)
		}
		if ex.Name == "" || ex.Description == "" {
			t.Errorf("exercise %s has empty display strings", ex.ID)
		}
	}
}

func TestFind(t *testing.T) {
	ex, err := Find("2")
	if err != nil {
		t.Fatalf("Find(2) failed: %v", err)
	}
	if ex.Name != "4-7-8 Technique" {
		t.Fatalf("unexpected exercise: %+v", ex)
	}

	_, err = Find("nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
