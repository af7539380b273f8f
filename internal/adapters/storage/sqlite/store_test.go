package sqlite

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/felix-companion/felix-agent/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "felix.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestConversationRoundTrip(t *testing.T) {
	store := openTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)

	conv := &domain.Conversation{
		ID:        "c1",
		UserID:    "u1",
		Title:     "First chat",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.CreateConversation(conv); err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}

	got, err := store.GetConversation("c1")
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if got.UserID != "u1" || got.Title != "First chat" {
		t.Fatalf("unexpected conversation: %+v", got)
	}

	conv.Title = "Renamed"
	conv.UpdatedAt = now.Add(time.Minute)
	if err := store.UpdateConversation(conv); err != nil {
		t.Fatalf("UpdateConversation: %v", err)
	}
	got, err = store.GetConversation("c1")
	if err != nil {
		t.Fatalf("GetConversation after update: %v", err)
	}
	if got.Title != "Renamed" {
		t.Fatalf("update not applied: %+v", got)
	}

	if _, err := store.GetConversation("missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.UpdateConversation(&domain.Conversation{ID: "missing"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
}

func TestMessagesPreserveAppendOrder(t *testing.T) {
	store := openTestStore(t)
	now := time.Now().UTC()

	conv := &domain.Conversation{ID: "c1", UserID: "u1", Title: "t", CreatedAt: now, UpdatedAt: now}
	if err := store.CreateConversation(conv); err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}

	// identical timestamps on purpose: append order must still win
	texts := []string{"greeting", "first", "second", "third"}
	for i, text := range texts {
		msg := &domain.Message{
			ID:             domain.MessageID(text),
			ConversationID: "c1",
			Author:         domain.RoleUser,
			Text:           text,
			CreatedAt:      now,
		}
		if i%2 == 0 {
			msg.Author = domain.RoleCompanion
		}
		if err := store.AppendMessage(msg); err != nil {
			t.Fatalf("AppendMessage %d: %v", i, err)
		}
	}

	got, err := store.GetMessagesByConversation("c1", 0)
	if err != nil {
		t.Fatalf("GetMessagesByConversation: %v", err)
	}
	if len(got) != len(texts) {
		t.Fatalf("expected %d messages, got %d", len(texts), len(got))
	}
	for i, msg := range got {
		if msg.Text != texts[i] {
			t.Fatalf("order lost at %d: got %q want %q", i, msg.Text, texts[i])
		}
	}

	limited, err := store.GetMessagesByConversation("c1", 2)
	if err != nil {
		t.Fatalf("GetMessagesByConversation limited: %v", err)
	}
	if len(limited) != 2 || limited[0].Text != "second" {
		t.Fatalf("limit must keep the most recent tail, got %+v", limited)
	}
}

func TestProfileUpsert(t *testing.T) {
	store := openTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)

	if _, err := store.GetProfile("u1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	p := &domain.UserProfile{
		ID:                   "u1",
		Name:                 "Sam",
		ColorScheme:          domain.SchemeOcean,
		NotificationsEnabled: true,
		BreathingReminders:   false,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := store.PutProfile(p); err != nil {
		t.Fatalf("PutProfile: %v", err)
	}

	p.Name = "Sam Q"
	p.JournalPrompts = true
	if err := store.PutProfile(p); err != nil {
		t.Fatalf("PutProfile upsert: %v", err)
	}

	got, err := store.GetProfile("u1")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got.Name != "Sam Q" || !got.JournalPrompts || got.ColorScheme != domain.SchemeOcean {
		t.Fatalf("unexpected profile: %+v", got)
	}
	if got.BreathingReminders {
		t.Fatalf("breathing_reminders must stay false")
	}
}

func TestMoodEntries(t *testing.T) {
	store := openTestStore(t)
	base := time.Now().UTC().Truncate(time.Second)

	for i := 0; i < 3; i++ {
		entry := &domain.MoodEntry{
			ID:        domain.MoodEntryID(string(rune('a' + i))),
			UserID:    "u1",
			Mood:      "anxious",
			Intensity: i + 1,
			Triggers:  []string{"work"},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.AppendMoodEntry(entry); err != nil {
			t.Fatalf("AppendMoodEntry: %v", err)
		}
	}

	got, err := store.ListMoodEntriesByUser("u1", 2)
	if err != nil {
		t.Fatalf("ListMoodEntriesByUser: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Intensity != 3 {
		t.Fatalf("expected newest first, got %+v", got[0])
	}
	if len(got[0].Triggers) != 1 || got[0].Triggers[0] != "work" {
		t.Fatalf("triggers not round-tripped: %+v", got[0].Triggers)
	}
}

func TestResourceSeeding(t *testing.T) {
	store := openTestStore(t)

	seed := []*domain.Resource{
		{ID: "1", Title: "Guided Breathing", Type: domain.ResourceVideo, Moods: []string{"anxious"}, Duration: "10 min"},
		{ID: "2", Title: "Journaling", Type: domain.ResourceActivity, Moods: []string{"sad"}},
	}
	if err := store.SeedResources(seed); err != nil {
		t.Fatalf("SeedResources: %v", err)
	}
	// second seed is a no-op
	if err := store.SeedResources(seed); err != nil {
		t.Fatalf("SeedResources again: %v", err)
	}

	got, err := store.ListResources()
	if err != nil {
		t.Fatalf("ListResources: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 resources, got %d", len(got))
	}
}
