package domain

import "time"

// Message represents one turn in a conversation timeline (user or companion).
type Message struct {
	ID             MessageID
	ConversationID ConversationID
	Author         Role
	Text           string
	CreatedAt      time.Time

	// Mood is an optional free-text tag. Reserved for future use; the
	// conversation core never populates it.
	Mood string
}

// Conversation is the persisted record of a chat between a user and Felix.
// The live message sequence is owned by the session aggregate while the
// screen is open; the store only mirrors it.
type Conversation struct {
	ID        ConversationID
	UserID    UserID
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
