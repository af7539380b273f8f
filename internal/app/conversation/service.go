// Package conversation orchestrates live sessions and their persistence
// mirror. The session aggregate is the in-memory authority while a
// conversation is open; every append is mirrored to the message store
// fire-and-forget, so a store failure never breaks the chat itself.
package conversation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/felix-companion/felix-agent/internal/app/responder"
	"github.com/felix-companion/felix-agent/internal/app/session"
	"github.com/felix-companion/felix-agent/internal/domain"
	"github.com/felix-companion/felix-agent/internal/observability"
)

type Service struct {
	convStore domain.ConversationStore
	msgStore  domain.MessageStore
	selector  *responder.Selector

	replyDelay time.Duration
	now        func() time.Time

	mu   sync.Mutex
	live map[domain.ConversationID]*session.Session
}

func NewService(convStore domain.ConversationStore, msgStore domain.MessageStore, replyDelay time.Duration) *Service {
	return &Service{
		convStore:  convStore,
		msgStore:   msgStore,
		selector:   responder.New(),
		replyDelay: replyDelay,
		now:        time.Now,
		live:       make(map[domain.ConversationID]*session.Session),
	}
}

type StartConversationInput struct {
	UserID domain.UserID
	Title  string
}

type StartConversationOutput struct {
	Conversation *domain.Conversation
	Greeting     *domain.Message
}

func (s *Service) StartConversation(ctx context.Context, in StartConversationInput) (*StartConversationOutput, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("user id is required: %w", domain.ErrInvalidInput)
	}

	title := in.Title
	if title == "" {
		title = "New Conversation"
	}

	now := s.now()
	conv := &domain.Conversation{
		ID:        domain.ConversationID(uuid.NewString()),
		UserID:    in.UserID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	log := observability.LoggerFromContext(ctx).With(
		"conversation_id", conv.ID,
		"user_id", conv.UserID,
	)
	log.Info("starting conversation")

	if err := s.convStore.CreateConversation(conv); err != nil {
		log.Error("failed to create conversation", "error", err)
		return nil, fmt.Errorf("creating conversation: %w", err)
	}

	sess := session.New(conv.ID, conv.UserID, s.sessionOptions())

	s.mu.Lock()
	s.live[conv.ID] = sess
	s.mu.Unlock()

	greeting := sess.Messages()[0]
	log.Info("conversation started")

	return &StartConversationOutput{
		Conversation: conv,
		Greeting:     &greeting,
	}, nil
}

type SendMessageInput struct {
	ConversationID domain.ConversationID
	Text           string
}

type SendMessageOutput struct {
	UserMessage      *domain.Message
	CompanionMessage *domain.Message
	MenuVisible      bool
}

func (s *Service) SendMessage(ctx context.Context, in SendMessageInput) (*SendMessageOutput, error) {
	sess, err := s.session(in.ConversationID)
	if err != nil {
		return nil, err
	}

	log := observability.LoggerFromContext(ctx).With(
		"conversation_id", in.ConversationID,
		"user_id", sess.UserID(),
	)

	ch, err := sess.SubmitUserMessage(in.Text)
	if err != nil {
		return nil, err
	}

	var ex session.Exchange
	select {
	case <-ctx.Done():
		// The reply is still appended and mirrored; only this caller
		// stops waiting for it.
		return nil, ctx.Err()
	case got, ok := <-ch:
		if !ok {
			return nil, session.ErrClosed
		}
		ex = got
	}

	s.touch(in.ConversationID, ex.Companion.CreatedAt)
	log.Info("message exchanged")

	return &SendMessageOutput{
		UserMessage:      &ex.User,
		CompanionMessage: &ex.Companion,
		MenuVisible:      sess.MenuVisible(),
	}, nil
}

type ChooseExerciseInput struct {
	ConversationID domain.ConversationID
	ExerciseID     domain.ExerciseID
}

type ChooseExerciseOutput struct {
	CompanionMessage *domain.Message
}

func (s *Service) ChooseExercise(ctx context.Context, in ChooseExerciseInput) (*ChooseExerciseOutput, error) {
	sess, err := s.session(in.ConversationID)
	if err != nil {
		return nil, err
	}

	ch, err := sess.ChooseExercise(in.ExerciseID)
	if err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg, ok := <-ch:
		if !ok {
			return nil, session.ErrClosed
		}
		s.touch(in.ConversationID, msg.CreatedAt)
		observability.LoggerFromContext(ctx).Info("exercise chosen",
			"conversation_id", in.ConversationID,
			"exercise_id", in.ExerciseID)
		return &ChooseExerciseOutput{CompanionMessage: &msg}, nil
	}
}

// DismissMenu hides the exercise menu of the conversation. Idempotent once
// the conversation resolves.
func (s *Service) DismissMenu(ctx context.Context, id domain.ConversationID) error {
	sess, err := s.session(id)
	if err != nil {
		return err
	}
	sess.DismissMenu()
	return nil
}

type TimelineOutput struct {
	Conversation *domain.Conversation
	Messages     []*domain.Message
	Composing    bool
	MenuVisible  bool
}

// GetTimeline returns the conversation and its message sequence. A live
// session is the authority on ordering; the store serves closed
// conversations.
func (s *Service) GetTimeline(ctx context.Context, id domain.ConversationID, limit int) (*TimelineOutput, error) {
	conv, err := s.convStore.GetConversation(id)
	if err != nil {
		return nil, fmt.Errorf("conversation %s: %w", id, err)
	}

	out := &TimelineOutput{Conversation: conv}

	s.mu.Lock()
	sess := s.live[id]
	s.mu.Unlock()

	if sess != nil {
		msgs := sess.Messages()
		if limit > 0 && len(msgs) > limit {
			msgs = msgs[len(msgs)-limit:]
		}
		out.Messages = make([]*domain.Message, 0, len(msgs))
		for i := range msgs {
			out.Messages = append(out.Messages, &msgs[i])
		}
		out.Composing = sess.Composing()
		out.MenuVisible = sess.MenuVisible()
		return out, nil
	}

	msgs, err := s.msgStore.GetMessagesByConversation(id, limit)
	if err != nil {
		return nil, fmt.Errorf("loading messages: %w", err)
	}
	out.Messages = msgs
	return out, nil
}

// ListConversations returns the user's conversations from the store.
func (s *Service) ListConversations(ctx context.Context, userID domain.UserID, limit int) ([]*domain.Conversation, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required: %w", domain.ErrInvalidInput)
	}
	return s.convStore.ListConversationsByUser(userID, limit)
}

// Close tears down every live session. Pending replies are abandoned.
func (s *Service) Close() {
	s.mu.Lock()
	sessions := make([]*session.Session, 0, len(s.live))
	for _, sess := range s.live {
		sessions = append(sessions, sess)
	}
	s.live = make(map[domain.ConversationID]*session.Session)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
}

func (s *Service) sessionOptions() session.Options {
	return session.Options{
		ReplyDelay: s.replyDelay,
		Selector:   s.selector,
		Observer:   s.mirror,
	}
}

// session returns the live session for id, rehydrating it from the stores
// when the conversation exists but has no open session.
func (s *Service) session(id domain.ConversationID) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.live[id]; ok {
		return sess, nil
	}

	conv, err := s.convStore.GetConversation(id)
	if err != nil {
		return nil, fmt.Errorf("conversation %s: %w", id, err)
	}

	history, err := s.msgStore.GetMessagesByConversation(id, 0)
	if err != nil {
		return nil, fmt.Errorf("loading history for %s: %w", id, err)
	}

	msgs := make([]domain.Message, 0, len(history))
	for _, m := range history {
		msgs = append(msgs, *m)
	}

	sess := session.Resume(conv.ID, conv.UserID, msgs, s.sessionOptions())
	s.live[id] = sess
	return sess, nil
}

// mirror copies one appended message into the store. Failures are logged and
// swallowed: persistence is a mirror, not a dependency of the chat.
func (s *Service) mirror(msg domain.Message) {
	if err := s.msgStore.AppendMessage(&msg); err != nil {
		observability.Logger().Error("message mirror failed",
			"conversation_id", msg.ConversationID,
			"message_id", msg.ID,
			"error", err)
	}
}

// touch bumps the conversation's UpdatedAt. Log-only on failure.
func (s *Service) touch(id domain.ConversationID, at time.Time) {
	conv, err := s.convStore.GetConversation(id)
	if err != nil {
		observability.Logger().Error("conversation touch failed", "conversation_id", id, "error", err)
		return
	}
	conv.UpdatedAt = at
	if err := s.convStore.UpdateConversation(conv); err != nil {
		observability.Logger().Error("conversation touch failed", "conversation_id", id, "error", err)
	}
}
