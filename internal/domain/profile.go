package domain

import "time"

// ColorScheme is the app-wide theme a user picked on the profile screen.
type ColorScheme string

const (
	SchemeDefault ColorScheme = "default"
	SchemeOcean   ColorScheme = "ocean"
	SchemeForest  ColorScheme = "forest"
	SchemeSunset  ColorScheme = "sunset"
)

// ValidColorScheme reports whether s is one of the known schemes.
func ValidColorScheme(s ColorScheme) bool {
	switch s {
	case SchemeDefault, SchemeOcean, SchemeForest, SchemeSunset:
		return true
	}
	return false
}

// UserProfile holds per-user settings and the self-reported current mood.
type UserProfile struct {
	ID     UserID
	Email  string
	Name   string
	Avatar string

	CurrentMood string
	ColorScheme ColorScheme

	NotificationsEnabled bool
	BreathingReminders   bool
	JournalPrompts       bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MoodEntry is a single mood check-in.
type MoodEntry struct {
	ID        MoodEntryID
	UserID    UserID
	Mood      string
	Intensity int // 1..10
	Notes     string
	Triggers  []string
	CreatedAt time.Time
}
