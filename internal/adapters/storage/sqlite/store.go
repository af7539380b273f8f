// Package sqlite is the local persistent backend. It implements the same
// ports as the Firestore store on a single-file database, so a dev setup
// keeps its conversations across restarts without any cloud project.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/felix-companion/felix-agent/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	title      TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations(user_id, updated_at);

CREATE TABLE IF NOT EXISTS messages (
	seq             INTEGER PRIMARY KEY AUTOINCREMENT,
	id              TEXT NOT NULL UNIQUE,
	conversation_id TEXT NOT NULL,
	author          TEXT NOT NULL,
	text            TEXT NOT NULL,
	mood            TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, seq);

CREATE TABLE IF NOT EXISTS profiles (
	id                     TEXT PRIMARY KEY,
	email                  TEXT NOT NULL DEFAULT '',
	name                   TEXT NOT NULL DEFAULT '',
	avatar                 TEXT NOT NULL DEFAULT '',
	current_mood           TEXT NOT NULL DEFAULT '',
	color_scheme           TEXT NOT NULL DEFAULT 'default',
	notifications_enabled  INTEGER NOT NULL DEFAULT 1,
	breathing_reminders    INTEGER NOT NULL DEFAULT 1,
	journal_prompts        INTEGER NOT NULL DEFAULT 0,
	created_at             TIMESTAMP NOT NULL,
	updated_at             TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS mood_entries (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	mood       TEXT NOT NULL,
	intensity  INTEGER NOT NULL,
	notes      TEXT NOT NULL DEFAULT '',
	triggers   TEXT NOT NULL DEFAULT '[]',
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_mood_entries_user ON mood_entries(user_id, created_at);

CREATE TABLE IF NOT EXISTS resources (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	type        TEXT NOT NULL,
	moods       TEXT NOT NULL DEFAULT '[]',
	duration    TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	is_active   INTEGER NOT NULL DEFAULT 1
);
`

type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and bootstraps the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db %s: %w", path, err)
	}

	// modernc/sqlite serializes writes itself; one connection avoids
	// SQLITE_BUSY under concurrent appends.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrapping schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SeedResources inserts the given resources unless the table already has
// rows. Used to load the built-in catalog on first start.
func (s *Store) SeedResources(resources []*domain.Resource) error {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM resources`).Scan(&n); err != nil {
		return fmt.Errorf("counting resources: %w", err)
	}
	if n > 0 {
		return nil
	}

	for _, r := range resources {
		moods, err := json.Marshal(r.Moods)
		if err != nil {
			return fmt.Errorf("encoding moods: %w", err)
		}
		_, err = s.db.Exec(
			`INSERT INTO resources (id, title, type, moods, duration, description, is_active) VALUES (?, ?, ?, ?, ?, ?, 1)`,
			string(r.ID), r.Title, string(r.Type), string(moods), r.Duration, r.Description,
		)
		if err != nil {
			return fmt.Errorf("seeding resource %s: %w", r.ID, err)
		}
	}
	return nil
}

// ─────────────────────────────────────────
// ConversationStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateConversation(conv *domain.Conversation) error {
	_, err := s.db.Exec(
		`INSERT INTO conversations (id, user_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		string(conv.ID), string(conv.UserID), conv.Title, conv.CreatedAt, conv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite CreateConversation: %w", err)
	}
	return nil
}

func (s *Store) UpdateConversation(conv *domain.Conversation) error {
	res, err := s.db.Exec(
		`UPDATE conversations SET user_id = ?, title = ?, updated_at = ? WHERE id = ?`,
		string(conv.UserID), conv.Title, conv.UpdatedAt, string(conv.ID),
	)
	if err != nil {
		return fmt.Errorf("sqlite UpdateConversation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("conversation %s: %w", conv.ID, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) GetConversation(id domain.ConversationID) (*domain.Conversation, error) {
	conv := &domain.Conversation{ID: id}
	var userID string
	err := s.db.QueryRow(
		`SELECT user_id, title, created_at, updated_at FROM conversations WHERE id = ?`,
		string(id),
	).Scan(&userID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite GetConversation: %w", err)
	}
	conv.UserID = domain.UserID(userID)
	return conv, nil
}

func (s *Store) ListConversationsByUser(userID domain.UserID, limit int) ([]*domain.Conversation, error) {
	q := `SELECT id, title, created_at, updated_at FROM conversations WHERE user_id = ? ORDER BY updated_at DESC`
	args := []any{string(userID)}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite ListConversationsByUser: %w", err)
	}
	defer rows.Close()

	var out []*domain.Conversation
	for rows.Next() {
		conv := &domain.Conversation{UserID: userID}
		var id string
		if err := rows.Scan(&id, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite ListConversationsByUser scan: %w", err)
		}
		conv.ID = domain.ConversationID(id)
		out = append(out, conv)
	}
	return out, rows.Err()
}

// ─────────────────────────────────────────
// MessageStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendMessage(msg *domain.Message) error {
	_, err := s.db.Exec(
		`INSERT INTO messages (id, conversation_id, author, text, mood, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		string(msg.ID), string(msg.ConversationID), string(msg.Author), msg.Text, msg.Mood, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite AppendMessage: %w", err)
	}
	return nil
}

func (s *Store) GetMessagesByConversation(conversationID domain.ConversationID, limit int) ([]*domain.Message, error) {
	// seq preserves append order even when timestamps collide
	q := `SELECT id, author, text, mood, created_at FROM messages WHERE conversation_id = ? ORDER BY seq ASC`
	rows, err := s.db.Query(q, string(conversationID))
	if err != nil {
		return nil, fmt.Errorf("sqlite GetMessagesByConversation: %w", err)
	}
	defer rows.Close()

	var out []*domain.Message
	for rows.Next() {
		msg := &domain.Message{ConversationID: conversationID}
		var id, author string
		if err := rows.Scan(&id, &author, &msg.Text, &msg.Mood, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite GetMessagesByConversation scan: %w", err)
		}
		msg.ID = domain.MessageID(id)
		msg.Author = domain.Role(author)
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// ─────────────────────────────────────────
// ProfileStore implementation
// ─────────────────────────────────────────

func (s *Store) GetProfile(id domain.UserID) (*domain.UserProfile, error) {
	p := &domain.UserProfile{ID: id}
	var scheme string
	err := s.db.QueryRow(
		`SELECT email, name, avatar, current_mood, color_scheme, notifications_enabled, breathing_reminders, journal_prompts, created_at, updated_at
		 FROM profiles WHERE id = ?`,
		string(id),
	).Scan(&p.Email, &p.Name, &p.Avatar, &p.CurrentMood, &scheme,
		&p.NotificationsEnabled, &p.BreathingReminders, &p.JournalPrompts,
		&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite GetProfile: %w", err)
	}
	p.ColorScheme = domain.ColorScheme(scheme)
	return p, nil
}

func (s *Store) PutProfile(profile *domain.UserProfile) error {
	_, err := s.db.Exec(
		`INSERT INTO profiles (id, email, name, avatar, current_mood, color_scheme, notifications_enabled, breathing_reminders, journal_prompts, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			name = excluded.name,
			avatar = excluded.avatar,
			current_mood = excluded.current_mood,
			color_scheme = excluded.color_scheme,
			notifications_enabled = excluded.notifications_enabled,
			breathing_reminders = excluded.breathing_reminders,
			journal_prompts = excluded.journal_prompts,
			updated_at = excluded.updated_at`,
		string(profile.ID), profile.Email, profile.Name, profile.Avatar,
		profile.CurrentMood, string(profile.ColorScheme),
		profile.NotificationsEnabled, profile.BreathingReminders, profile.JournalPrompts,
		profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite PutProfile: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────
// MoodStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendMoodEntry(entry *domain.MoodEntry) error {
	triggers, err := json.Marshal(entry.Triggers)
	if err != nil {
		return fmt.Errorf("encoding triggers: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO mood_entries (id, user_id, mood, intensity, notes, triggers, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(entry.ID), string(entry.UserID), entry.Mood, entry.Intensity, entry.Notes, string(triggers), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite AppendMoodEntry: %w", err)
	}
	return nil
}

func (s *Store) ListMoodEntriesByUser(userID domain.UserID, limit int) ([]*domain.MoodEntry, error) {
	q := `SELECT id, mood, intensity, notes, triggers, created_at FROM mood_entries WHERE user_id = ? ORDER BY created_at DESC`
	args := []any{string(userID)}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite ListMoodEntriesByUser: %w", err)
	}
	defer rows.Close()

	var out []*domain.MoodEntry
	for rows.Next() {
		entry := &domain.MoodEntry{UserID: userID}
		var id, triggers string
		if err := rows.Scan(&id, &entry.Mood, &entry.Intensity, &entry.Notes, &triggers, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite ListMoodEntriesByUser scan: %w", err)
		}
		entry.ID = domain.MoodEntryID(id)
		if err := json.Unmarshal([]byte(triggers), &entry.Triggers); err != nil {
			return nil, fmt.Errorf("decoding triggers: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// ─────────────────────────────────────────
// ResourceStore implementation
// ─────────────────────────────────────────

func (s *Store) ListResources() ([]*domain.Resource, error) {
	rows, err := s.db.Query(`SELECT id, title, type, moods, duration, description FROM resources WHERE is_active = 1`)
	if err != nil {
		return nil, fmt.Errorf("sqlite ListResources: %w", err)
	}
	defer rows.Close()

	var out []*domain.Resource
	for rows.Next() {
		r := &domain.Resource{}
		var id, typ, moods string
		if err := rows.Scan(&id, &r.Title, &typ, &moods, &r.Duration, &r.Description); err != nil {
			return nil, fmt.Errorf("sqlite ListResources scan: %w", err)
		}
		r.ID = domain.ResourceID(id)
		r.Type = domain.ResourceType(typ)
		if err := json.Unmarshal([]byte(moods), &r.Moods); err != nil {
			return nil, fmt.Errorf("decoding moods: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
