package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/felix-companion/felix-agent/internal/domain"
)

// Store implements every persistence port on Firestore. Layout mirrors the
// app's Supabase schema: conversations with a messages subcollection, plus
// top-level users, mood_entries and resources collections.
type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store for the given project
// (FELIX_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) conversationsCol() *firestore.CollectionRef {
	return s.client.Collection("conversations")
}

func (s *Store) conversationDoc(id domain.ConversationID) *firestore.DocumentRef {
	return s.conversationsCol().Doc(string(id))
}

func (s *Store) messagesCol(conversationID domain.ConversationID) *firestore.CollectionRef {
	return s.conversationDoc(conversationID).Collection("messages")
}

func (s *Store) userDoc(id domain.UserID) *firestore.DocumentRef {
	return s.client.Collection("users").Doc(string(id))
}

func (s *Store) moodEntriesCol() *firestore.CollectionRef {
	return s.client.Collection("mood_entries")
}

func (s *Store) resourcesCol() *firestore.CollectionRef {
	return s.client.Collection("resources")
}

type conversationDoc struct {
	UserID    string    `firestore:"user_id"`
	Title     string    `firestore:"title"`
	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

type messageDoc struct {
	ConversationID string    `firestore:"conversation_id"`
	Author         string    `firestore:"author"`
	Text           string    `firestore:"text"`
	Mood           string    `firestore:"mood,omitempty"`
	CreatedAt      time.Time `firestore:"created_at"`
}

type profileDoc struct {
	Email                string    `firestore:"email"`
	Name                 string    `firestore:"name"`
	Avatar               string    `firestore:"avatar"`
	CurrentMood          string    `firestore:"current_mood"`
	ColorScheme          string    `firestore:"preferred_color_scheme"`
	NotificationsEnabled bool      `firestore:"notifications_enabled"`
	BreathingReminders   bool      `firestore:"breathing_reminders"`
	JournalPrompts       bool      `firestore:"journal_prompts"`
	CreatedAt            time.Time `firestore:"created_at"`
	UpdatedAt            time.Time `firestore:"updated_at"`
}

type moodEntryDoc struct {
	UserID    string    `firestore:"user_id"`
	Mood      string    `firestore:"mood"`
	Intensity int       `firestore:"intensity"`
	Notes     string    `firestore:"notes"`
	Triggers  []string  `firestore:"triggers"`
	CreatedAt time.Time `firestore:"created_at"`
}

type resourceDoc struct {
	Title       string   `firestore:"title"`
	Type        string   `firestore:"type"`
	Moods       []string `firestore:"mood"`
	Duration    string   `firestore:"duration"`
	Description string   `firestore:"description"`
	IsActive    bool     `firestore:"is_active"`
}

// ─────────────────────────────────────────
// ConversationStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateConversation(conv *domain.Conversation) error {
	ctx := context.Background()

	doc := conversationDoc{
		UserID:    string(conv.UserID),
		Title:     conv.Title,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	}

	if _, err := s.conversationDoc(conv.ID).Create(ctx, doc); err != nil {
		return fmt.Errorf("firestore CreateConversation: %w", err)
	}
	return nil
}

func (s *Store) UpdateConversation(conv *domain.Conversation) error {
	ctx := context.Background()

	doc := map[string]interface{}{
		"user_id":    string(conv.UserID),
		"title":      conv.Title,
		"created_at": conv.CreatedAt,
		"updated_at": conv.UpdatedAt,
	}

	if _, err := s.conversationDoc(conv.ID).Set(ctx, doc, firestore.MergeAll); err != nil {
		return fmt.Errorf("firestore UpdateConversation: %w", err)
	}
	return nil
}

func (s *Store) GetConversation(id domain.ConversationID) (*domain.Conversation, error) {
	ctx := context.Background()

	snap, err := s.conversationDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("firestore GetConversation: %w", err)
	}

	var doc conversationDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetConversation decode: %w", err)
	}

	return &domain.Conversation{
		ID:        id,
		UserID:    domain.UserID(doc.UserID),
		Title:     doc.Title,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

func (s *Store) ListConversationsByUser(userID domain.UserID, limit int) ([]*domain.Conversation, error) {
	ctx := context.Background()

	q := s.conversationsCol().Where("user_id", "==", string(userID)).OrderBy("updated_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Conversation
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore ListConversationsByUser: %w", err)
		}

		var doc conversationDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode conversationDoc: %w", err)
		}

		out = append(out, &domain.Conversation{
			ID:        domain.ConversationID(snap.Ref.ID),
			UserID:    domain.UserID(doc.UserID),
			Title:     doc.Title,
			CreatedAt: doc.CreatedAt,
			UpdatedAt: doc.UpdatedAt,
		})
	}
	return out, nil
}

// ─────────────────────────────────────────
// MessageStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendMessage(msg *domain.Message) error {
	ctx := context.Background()

	doc := messageDoc{
		ConversationID: string(msg.ConversationID),
		Author:         string(msg.Author),
		Text:           msg.Text,
		Mood:           msg.Mood,
		CreatedAt:      msg.CreatedAt,
	}

	if _, err := s.messagesCol(msg.ConversationID).Doc(string(msg.ID)).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore AppendMessage: %w", err)
	}
	return nil
}

func (s *Store) GetMessagesByConversation(conversationID domain.ConversationID, limit int) ([]*domain.Message, error) {
	ctx := context.Background()

	q := s.messagesCol(conversationID).OrderBy("created_at", firestore.Asc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Message
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore GetMessagesByConversation: %w", err)
		}

		var doc messageDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode messageDoc: %w", err)
		}

		out = append(out, &domain.Message{
			ID:             domain.MessageID(snap.Ref.ID),
			ConversationID: conversationID,
			Author:         domain.Role(doc.Author),
			Text:           doc.Text,
			Mood:           doc.Mood,
			CreatedAt:      doc.CreatedAt,
		})
	}
	return out, nil
}

// ─────────────────────────────────────────
// ProfileStore implementation
// ─────────────────────────────────────────

func (s *Store) GetProfile(id domain.UserID) (*domain.UserProfile, error) {
	ctx := context.Background()

	snap, err := s.userDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("profile %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("firestore GetProfile: %w", err)
	}

	var doc profileDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetProfile decode: %w", err)
	}

	return &domain.UserProfile{
		ID:                   id,
		Email:                doc.Email,
		Name:                 doc.Name,
		Avatar:               doc.Avatar,
		CurrentMood:          doc.CurrentMood,
		ColorScheme:          domain.ColorScheme(doc.ColorScheme),
		NotificationsEnabled: doc.NotificationsEnabled,
		BreathingReminders:   doc.BreathingReminders,
		JournalPrompts:       doc.JournalPrompts,
		CreatedAt:            doc.CreatedAt,
		UpdatedAt:            doc.UpdatedAt,
	}, nil
}

func (s *Store) PutProfile(profile *domain.UserProfile) error {
	ctx := context.Background()

	doc := profileDoc{
		Email:                profile.Email,
		Name:                 profile.Name,
		Avatar:               profile.Avatar,
		CurrentMood:          profile.CurrentMood,
		ColorScheme:          string(profile.ColorScheme),
		NotificationsEnabled: profile.NotificationsEnabled,
		BreathingReminders:   profile.BreathingReminders,
		JournalPrompts:       profile.JournalPrompts,
		CreatedAt:            profile.CreatedAt,
		UpdatedAt:            profile.UpdatedAt,
	}

	if _, err := s.userDoc(profile.ID).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore PutProfile: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────
// MoodStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendMoodEntry(entry *domain.MoodEntry) error {
	ctx := context.Background()

	doc := moodEntryDoc{
		UserID:    string(entry.UserID),
		Mood:      entry.Mood,
		Intensity: entry.Intensity,
		Notes:     entry.Notes,
		Triggers:  entry.Triggers,
		CreatedAt: entry.CreatedAt,
	}

	if _, err := s.moodEntriesCol().Doc(string(entry.ID)).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore AppendMoodEntry: %w", err)
	}
	return nil
}

func (s *Store) ListMoodEntriesByUser(userID domain.UserID, limit int) ([]*domain.MoodEntry, error) {
	ctx := context.Background()

	q := s.moodEntriesCol().Where("user_id", "==", string(userID)).OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.MoodEntry
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore ListMoodEntriesByUser: %w", err)
		}

		var doc moodEntryDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode moodEntryDoc: %w", err)
		}

		out = append(out, &domain.MoodEntry{
			ID:        domain.MoodEntryID(snap.Ref.ID),
			UserID:    domain.UserID(doc.UserID),
			Mood:      doc.Mood,
			Intensity: doc.Intensity,
			Notes:     doc.Notes,
			Triggers:  doc.Triggers,
			CreatedAt: doc.CreatedAt,
		})
	}
	return out, nil
}

// ─────────────────────────────────────────
// ResourceStore implementation
// ─────────────────────────────────────────

func (s *Store) ListResources() ([]*domain.Resource, error) {
	ctx := context.Background()

	iter := s.resourcesCol().Where("is_active", "==", true).Documents(ctx)
	defer iter.Stop()

	var out []*domain.Resource
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore ListResources: %w", err)
		}

		var doc resourceDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode resourceDoc: %w", err)
		}

		out = append(out, &domain.Resource{
			ID:          domain.ResourceID(snap.Ref.ID),
			Title:       doc.Title,
			Type:        domain.ResourceType(doc.Type),
			Moods:       doc.Moods,
			Duration:    doc.Duration,
			Description: doc.Description,
		})
	}
	return out, nil
}
