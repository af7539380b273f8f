// Package session owns the live state of one open conversation: the
// append-only message sequence, the companion-composing flag and the
// breathing exercise menu. All mutation is funnelled through a single worker
// goroutine so overlapping submissions keep strict user/companion pairing.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/felix-companion/felix-agent/internal/app/breathing"
	"github.com/felix-companion/felix-agent/internal/app/responder"
	"github.com/felix-companion/felix-agent/internal/domain"
)

// ErrClosed is returned for operations on a session after Close.
var ErrClosed = errors.New("session closed")

// Exchange pairs a user message with the companion reply it produced.
type Exchange struct {
	User      domain.Message
	Companion domain.Message
}

// Options configure a Session. Zero values get sensible defaults.
type Options struct {
	// ReplyDelay is the simulated typing latency before the companion
	// reply is appended. Defaults to 1500ms.
	ReplyDelay time.Duration

	// Selector picks the companion reply. Defaults to the built-in table.
	Selector *responder.Selector

	// Observer, if set, receives every message right after it is
	// appended, in append order. Used for the persistence mirror.
	Observer func(domain.Message)

	Now   func() time.Time
	NewID func() domain.MessageID
}

type job struct {
	// a submission carries text + exchange; an exercise pick carries
	// exercise + message. Result channels are buffered (cap 1) and closed
	// without a value if the session shuts down first.
	text     string
	exchange chan Exchange

	exercise *breathing.Exercise
	message  chan domain.Message
}

// Session is the in-memory aggregate for one open conversation screen.
type Session struct {
	conversationID domain.ConversationID
	userID         domain.UserID
	opts           Options

	mu          sync.Mutex
	messages    []domain.Message
	composing   bool
	menuVisible bool
	closed      bool

	jobs       chan job
	done       chan struct{}
	stopped    chan struct{}
	closeOnce  sync.Once
	submitters sync.WaitGroup
}

// New creates a session seeded with the Felix greeting and starts its worker.
// Callers must Close the session when the conversation screen goes away.
func New(conversationID domain.ConversationID, userID domain.UserID, opts Options) *Session {
	s := newSession(conversationID, userID, opts)
	s.append(domain.RoleCompanion, responder.Greeting, func() {})
	go s.run()
	return s
}

// Resume creates a session over an existing message history instead of
// seeding a greeting. Used when a persisted conversation is reopened. The
// history is not re-announced to the observer.
func Resume(conversationID domain.ConversationID, userID domain.UserID, history []domain.Message, opts Options) *Session {
	s := newSession(conversationID, userID, opts)
	s.messages = append([]domain.Message(nil), history...)
	go s.run()
	return s
}

func newSession(conversationID domain.ConversationID, userID domain.UserID, opts Options) *Session {
	if opts.ReplyDelay <= 0 {
		opts.ReplyDelay = 1500 * time.Millisecond
	}
	if opts.Selector == nil {
		opts.Selector = responder.New()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() domain.MessageID { return domain.MessageID(uuid.NewString()) }
	}

	return &Session{
		conversationID: conversationID,
		userID:         userID,
		opts:           opts,
		jobs:           make(chan job, 64),
		done:           make(chan struct{}),
		stopped:        make(chan struct{}),
	}
}

func (s *Session) ConversationID() domain.ConversationID { return s.conversationID }
func (s *Session) UserID() domain.UserID                 { return s.userID }

// Messages returns a copy of the current message sequence in append order.
func (s *Session) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Composing reports whether a companion reply is pending.
func (s *Session) Composing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.composing
}

// MenuVisible reports whether the breathing exercise menu is offered.
func (s *Session) MenuVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.menuVisible
}

// SubmitUserMessage validates and enqueues a user message. On success the
// returned channel delivers the user/companion pair once the reply has been
// appended; the channel is closed without a value if the session is torn
// down first. Empty or whitespace-only text fails with
// domain.ErrInvalidInput and has no effect.
func (s *Session) SubmitUserMessage(text string) (<-chan Exchange, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("empty message text: %w", domain.ErrInvalidInput)
	}

	j := job{text: trimmed, exchange: make(chan Exchange, 1)}
	if err := s.enqueue(j); err != nil {
		return nil, err
	}
	return j.exchange, nil
}

// ChooseExercise resolves id against the breathing catalog, hides the menu
// and appends a single companion message introducing the exercise. An
// unknown id fails with domain.ErrNotFound and changes nothing. The pick is
// serialized behind any in-flight reply so it never lands inside a
// user/companion pair.
func (s *Session) ChooseExercise(id domain.ExerciseID) (<-chan domain.Message, error) {
	ex, err := breathing.Find(id)
	if err != nil {
		return nil, fmt.Errorf("exercise %q: %w", id, err)
	}

	j := job{exercise: &ex, message: make(chan domain.Message, 1)}
	if err := s.enqueue(j); err != nil {
		return nil, err
	}
	return j.message, nil
}

// enqueue hands j to the worker. The closed flag is checked under the lock
// first, so any call starting after Close returns fails with ErrClosed. A
// call racing Close may still enqueue (the jobs buffer keeps the send case
// ready even after done closes); Close waits for in-flight enqueues and
// drains those stragglers, so their result channels always get closed.
func (s *Session) enqueue(j job) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.submitters.Add(1)
	s.mu.Unlock()
	defer s.submitters.Done()

	select {
	case s.jobs <- j:
		return nil
	case <-s.done:
		return ErrClosed
	}
}

// DismissMenu hides the exercise menu. Idempotent, never fails, appends
// nothing.
func (s *Session) DismissMenu() {
	s.mu.Lock()
	s.menuVisible = false
	s.mu.Unlock()
}

// Close stops the worker and abandons queued work. Result channels of
// unprocessed jobs are closed. Close blocks until the worker has exited and
// is safe to call more than once. Submissions starting after Close returns
// fail with ErrClosed.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.done)
	})
	<-s.stopped
	// in-flight enqueues may land after the worker's own drain
	s.submitters.Wait()
	s.drain()
}

func (s *Session) run() {
	defer close(s.stopped)
	for {
		select {
		case <-s.done:
			s.drain()
			return
		case j := <-s.jobs:
			s.handle(j)
		}
	}
}

func (s *Session) handle(j job) {
	if j.exercise != nil {
		j.message <- s.appendExercise(*j.exercise)
		return
	}

	// The user append happens before the simulated latency so the user
	// message is visible while the companion is "typing".
	user := s.append(domain.RoleUser, j.text, func() { s.composing = true })

	timer := time.NewTimer(s.opts.ReplyDelay)
	defer timer.Stop()
	select {
	case <-s.done:
		close(j.exchange)
		return
	case <-timer.C:
	}

	resp := s.opts.Selector.Select(j.text)
	companion := s.append(domain.RoleCompanion, resp.Reply, func() {
		s.composing = false
		if resp.RevealExercises {
			s.menuVisible = true
		}
	})

	j.exchange <- Exchange{User: user, Companion: companion}
}

func (s *Session) appendExercise(ex breathing.Exercise) domain.Message {
	text := fmt.Sprintf("Let's start %s. %s. I'll guide you through it step by step.", ex.Name, ex.Description)
	return s.append(domain.RoleCompanion, text, func() { s.menuVisible = false })
}

// append builds a message, applies it plus the extra state change under the
// lock, then notifies the observer outside the lock.
func (s *Session) append(author domain.Role, text string, also func()) domain.Message {
	msg := domain.Message{
		ID:             s.opts.NewID(),
		ConversationID: s.conversationID,
		Author:         author,
		Text:           text,
		CreatedAt:      s.opts.Now(),
	}

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	also()
	s.mu.Unlock()

	if s.opts.Observer != nil {
		s.opts.Observer(msg)
	}
	return msg
}

func (s *Session) drain() {
	for {
		select {
		case j := <-s.jobs:
			if j.exchange != nil {
				close(j.exchange)
			}
			if j.message != nil {
				close(j.message)
			}
		default:
			return
		}
	}
}
