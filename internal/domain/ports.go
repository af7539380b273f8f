package domain

// ConversationStore defines conversation persistence.
type ConversationStore interface {
	CreateConversation(conv *Conversation) error
	UpdateConversation(conv *Conversation) error
	GetConversation(id ConversationID) (*Conversation, error)
	ListConversationsByUser(userID UserID, limit int) ([]*Conversation, error)
}

// MessageStore defines message persistence. The live session is the
// authority on ordering; the store mirrors appends and serves timelines.
type MessageStore interface {
	AppendMessage(msg *Message) error
	GetMessagesByConversation(conversationID ConversationID, limit int) ([]*Message, error)
}

// ProfileStore defines user profile persistence.
type ProfileStore interface {
	GetProfile(id UserID) (*UserProfile, error)
	PutProfile(profile *UserProfile) error
}

// MoodStore defines mood check-in persistence.
type MoodStore interface {
	AppendMoodEntry(entry *MoodEntry) error
	ListMoodEntriesByUser(userID UserID, limit int) ([]*MoodEntry, error)
}

// ResourceStore defines the wellness resource catalog lookup.
type ResourceStore interface {
	ListResources() ([]*Resource, error)
}
