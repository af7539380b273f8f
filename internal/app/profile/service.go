// Package profile manages user profiles and mood check-ins.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/felix-companion/felix-agent/internal/domain"
	"github.com/felix-companion/felix-agent/internal/observability"
)

type Service struct {
	profiles domain.ProfileStore
	moods    domain.MoodStore
	now      func() time.Time
}

func NewService(profiles domain.ProfileStore, moods domain.MoodStore) *Service {
	return &Service{
		profiles: profiles,
		moods:    moods,
		now:      time.Now,
	}
}

// GetProfile returns the user's profile, creating a default one on first
// access (the app does the same when a signed-up user has no row yet).
func (s *Service) GetProfile(ctx context.Context, id domain.UserID) (*domain.UserProfile, error) {
	if id == "" {
		return nil, fmt.Errorf("user id is required: %w", domain.ErrInvalidInput)
	}

	p, err := s.profiles.GetProfile(id)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("loading profile: %w", err)
	}

	now := s.now()
	p = &domain.UserProfile{
		ID:                   id,
		ColorScheme:          domain.SchemeDefault,
		CurrentMood:          "calm",
		NotificationsEnabled: true,
		BreathingReminders:   true,
		JournalPrompts:       false,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.profiles.PutProfile(p); err != nil {
		return nil, fmt.Errorf("creating default profile: %w", err)
	}

	observability.LoggerFromContext(ctx).Info("created default profile", "user_id", id)
	return p, nil
}

// ProfileUpdate carries the editable profile fields. Nil means "leave as is".
type ProfileUpdate struct {
	Name                 *string
	Avatar               *string
	CurrentMood          *string
	ColorScheme          *domain.ColorScheme
	NotificationsEnabled *bool
	BreathingReminders   *bool
	JournalPrompts       *bool
}

// UpdateProfile applies a partial update and returns the stored result.
func (s *Service) UpdateProfile(ctx context.Context, id domain.UserID, upd ProfileUpdate) (*domain.UserProfile, error) {
	if upd.ColorScheme != nil && !domain.ValidColorScheme(*upd.ColorScheme) {
		return nil, fmt.Errorf("unknown color scheme %q: %w", *upd.ColorScheme, domain.ErrInvalidInput)
	}

	p, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Avatar != nil {
		p.Avatar = *upd.Avatar
	}
	if upd.CurrentMood != nil {
		p.CurrentMood = *upd.CurrentMood
	}
	if upd.ColorScheme != nil {
		p.ColorScheme = *upd.ColorScheme
	}
	if upd.NotificationsEnabled != nil {
		p.NotificationsEnabled = *upd.NotificationsEnabled
	}
	if upd.BreathingReminders != nil {
		p.BreathingReminders = *upd.BreathingReminders
	}
	if upd.JournalPrompts != nil {
		p.JournalPrompts = *upd.JournalPrompts
	}
	p.UpdatedAt = s.now()

	if err := s.profiles.PutProfile(p); err != nil {
		return nil, fmt.Errorf("saving profile: %w", err)
	}

	observability.LoggerFromContext(ctx).Info("profile updated", "user_id", id)
	return p, nil
}

type RecordMoodInput struct {
	UserID    domain.UserID
	Mood      string
	Intensity int
	Notes     string
	Triggers  []string
}

// RecordMood stores one mood check-in. Intensity must be within 1..10.
func (s *Service) RecordMood(ctx context.Context, in RecordMoodInput) (*domain.MoodEntry, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("user id is required: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.Mood) == "" {
		return nil, fmt.Errorf("mood is required: %w", domain.ErrInvalidInput)
	}
	if in.Intensity < 1 || in.Intensity > 10 {
		return nil, fmt.Errorf("intensity %d out of range 1..10: %w", in.Intensity, domain.ErrInvalidInput)
	}

	entry := &domain.MoodEntry{
		ID:        domain.MoodEntryID(uuid.NewString()),
		UserID:    in.UserID,
		Mood:      strings.TrimSpace(in.Mood),
		Intensity: in.Intensity,
		Notes:     in.Notes,
		Triggers:  in.Triggers,
		CreatedAt: s.now(),
	}

	if err := s.moods.AppendMoodEntry(entry); err != nil {
		return nil, fmt.Errorf("saving mood entry: %w", err)
	}

	observability.LoggerFromContext(ctx).Info("mood recorded",
		"user_id", in.UserID,
		"mood", entry.Mood,
		"intensity", entry.Intensity)
	return entry, nil
}

// ListMoods returns the user's recent mood entries, newest first.
func (s *Service) ListMoods(ctx context.Context, userID domain.UserID, limit int) ([]*domain.MoodEntry, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required: %w", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 30
	}
	return s.moods.ListMoodEntriesByUser(userID, limit)
}
