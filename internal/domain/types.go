package domain

type ConversationID string
type UserID string
type MessageID string
type ExerciseID string
type MoodEntryID string
type ResourceID string

type Role string

const (
	RoleUser      Role = "user"
	RoleCompanion Role = "companion"
)
