package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/felix-companion/felix-agent/internal/app/breathing"
	"github.com/felix-companion/felix-agent/internal/app/conversation"
	"github.com/felix-companion/felix-agent/internal/app/profile"
	"github.com/felix-companion/felix-agent/internal/app/resources"
	"github.com/felix-companion/felix-agent/internal/app/session"
	"github.com/felix-companion/felix-agent/internal/domain"
)

type Server struct {
	conv      *conversation.Service
	profiles  *profile.Service
	resources *resources.Service
}

func NewServer(conv *conversation.Service, profiles *profile.Service, res *resources.Service) http.Handler {
	s := &Server{conv: conv, profiles: profiles, resources: res}
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealthz)

	// /conversations                     → POST: start, GET: list by user
	// /conversations/{id}                → GET: conversation + timeline
	// /conversations/{id}/messages       → POST: send message
	// /conversations/{id}/exercises      → POST: pick a breathing exercise
	// /conversations/{id}/menu           → DELETE: dismiss the exercise menu
	mux.HandleFunc("/conversations", s.handleConversations)
	mux.HandleFunc("/conversations/", s.handleConversationWithID)

	mux.HandleFunc("/exercises", s.handleExercises)
	mux.HandleFunc("/resources", s.handleResources)

	// /profiles/{userID}        → GET / PATCH
	// /profiles/{userID}/moods  → POST: record, GET: list
	mux.HandleFunc("/profiles/", s.handleProfileWithID)

	return chainMiddlewares(mux, withLogging, withCORS, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type startConversationRequest struct {
	UserID string `json:"user_id"`
	Title  string `json:"title,omitempty"`
}

type conversationResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type messageResponse struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Author         string    `json:"author"`
	Text           string    `json:"text"`
	Mood           string    `json:"mood,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type startConversationResponse struct {
	Conversation conversationResponse `json:"conversation"`
	Greeting     messageResponse      `json:"greeting"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

type sendMessageResponse struct {
	UserMessage      messageResponse `json:"user_message"`
	CompanionMessage messageResponse `json:"companion_message"`
	MenuVisible      bool            `json:"menu_visible"`
}

type chooseExerciseRequest struct {
	ExerciseID string `json:"exercise_id"`
}

type chooseExerciseResponse struct {
	CompanionMessage messageResponse `json:"companion_message"`
}

type timelineResponse struct {
	Conversation conversationResponse `json:"conversation"`
	Messages     []messageResponse    `json:"messages"`
	Composing    bool                 `json:"composing"`
	MenuVisible  bool                 `json:"menu_visible"`
}

type exerciseResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	DurationSeconds int    `json:"duration_seconds"`
	Pattern         string `json:"pattern"`
}

type resourceResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Type        string   `json:"type"`
	Moods       []string `json:"mood"`
	Duration    string   `json:"duration,omitempty"`
	Description string   `json:"description"`
}

// resourcesResponse carries the catalog plus the mood filter chips the
// resources tab renders above it.
type resourcesResponse struct {
	Resources []resourceResponse `json:"resources"`
	Moods     []string           `json:"moods"`
}

type profileResponse struct {
	ID                   string    `json:"id"`
	Email                string    `json:"email"`
	Name                 string    `json:"name"`
	Avatar               string    `json:"avatar,omitempty"`
	CurrentMood          string    `json:"current_mood"`
	ColorScheme          string    `json:"preferred_color_scheme"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
	BreathingReminders   bool      `json:"breathing_reminders"`
	JournalPrompts       bool      `json:"journal_prompts"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type updateProfileRequest struct {
	Name                 *string `json:"name"`
	Avatar               *string `json:"avatar"`
	CurrentMood          *string `json:"current_mood"`
	ColorScheme          *string `json:"preferred_color_scheme"`
	NotificationsEnabled *bool   `json:"notifications_enabled"`
	BreathingReminders   *bool   `json:"breathing_reminders"`
	JournalPrompts       *bool   `json:"journal_prompts"`
}

type recordMoodRequest struct {
	Mood      string   `json:"mood"`
	Intensity int      `json:"intensity"`
	Notes     string   `json:"notes,omitempty"`
	Triggers  []string `json:"triggers,omitempty"`
}

type moodEntryResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Mood      string    `json:"mood"`
	Intensity int       `json:"intensity"`
	Notes     string    `json:"notes,omitempty"`
	Triggers  []string  `json:"triggers,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ─────────────────────────────────────────────
// Routing
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleStartConversation(w, r)
	case http.MethodGet:
		s.handleListConversations(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleConversationWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/conversations/")
	if path == "" {
		http.NotFound(w, r)
		return
	}

	parts := strings.Split(path, "/")
	id := domain.ConversationID(parts[0])
	if id == "" {
		http.NotFound(w, r)
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.handleGetTimeline(w, r, id)
		default:
			methodNotAllowed(w)
		}
		return
	}

	if len(parts) == 2 {
		switch {
		case parts[1] == "messages" && r.Method == http.MethodPost:
			s.handleSendMessage(w, r, id)
		case parts[1] == "exercises" && r.Method == http.MethodPost:
			s.handleChooseExercise(w, r, id)
		case parts[1] == "menu" && r.Method == http.MethodDelete:
			s.handleDismissMenu(w, r, id)
		case parts[1] == "messages" || parts[1] == "exercises" || parts[1] == "menu":
			methodNotAllowed(w)
		default:
			http.NotFound(w, r)
		}
		return
	}

	http.NotFound(w, r)
}

func (s *Server) handleProfileWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/profiles/")
	if path == "" {
		http.NotFound(w, r)
		return
	}

	parts := strings.Split(path, "/")
	userID := domain.UserID(parts[0])
	if userID == "" {
		http.NotFound(w, r)
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.handleGetProfile(w, r, userID)
		case http.MethodPatch:
			s.handleUpdateProfile(w, r, userID)
		default:
			methodNotAllowed(w)
		}
		return
	}

	if len(parts) == 2 && parts[1] == "moods" {
		switch r.Method {
		case http.MethodPost:
			s.handleRecordMood(w, r, userID)
		case http.MethodGet:
			s.handleListMoods(w, r, userID)
		default:
			methodNotAllowed(w)
		}
		return
	}

	http.NotFound(w, r)
}

// ─────────────────────────────────────────────
// Conversation handlers
// ─────────────────────────────────────────────

func (s *Server) handleStartConversation(w http.ResponseWriter, r *http.Request) {
	var req startConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.UserID == "" {
		badRequest(w, "user_id is required")
		return
	}

	out, err := s.conv.StartConversation(r.Context(), conversation.StartConversationInput{
		UserID: domain.UserID(req.UserID),
		Title:  req.Title,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, startConversationResponse{
		Conversation: toConversationResponse(out.Conversation),
		Greeting:     toMessageResponse(out.Greeting),
	})
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserID(r.URL.Query().Get("user_id"))
	if userID == "" {
		badRequest(w, "user_id is required")
		return
	}

	convs, err := s.conv.ListConversations(r.Context(), userID, queryInt(r, "limit", 0))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]conversationResponse, 0, len(convs))
	for _, c := range convs {
		out = append(out, toConversationResponse(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversations": out})
}

func (s *Server) handleGetTimeline(w http.ResponseWriter, r *http.Request, id domain.ConversationID) {
	out, err := s.conv.GetTimeline(r.Context(), id, queryInt(r, "limit", 0))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, timelineResponse{
		Conversation: toConversationResponse(out.Conversation),
		Messages:     toMessagesResponse(out.Messages),
		Composing:    out.Composing,
		MenuVisible:  out.MenuVisible,
	})
}

// maxMessageRunes caps submitted message length at the transport boundary.
const maxMessageRunes = 500

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request, id domain.ConversationID) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if len([]rune(req.Text)) > maxMessageRunes {
		badRequest(w, "text exceeds 500 characters")
		return
	}

	out, err := s.conv.SendMessage(r.Context(), conversation.SendMessageInput{
		ConversationID: id,
		Text:           req.Text,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sendMessageResponse{
		UserMessage:      toMessageResponse(out.UserMessage),
		CompanionMessage: toMessageResponse(out.CompanionMessage),
		MenuVisible:      out.MenuVisible,
	})
}

func (s *Server) handleChooseExercise(w http.ResponseWriter, r *http.Request, id domain.ConversationID) {
	var req chooseExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.ExerciseID == "" {
		badRequest(w, "exercise_id is required")
		return
	}

	out, err := s.conv.ChooseExercise(r.Context(), conversation.ChooseExerciseInput{
		ConversationID: id,
		ExerciseID:     domain.ExerciseID(req.ExerciseID),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chooseExerciseResponse{
		CompanionMessage: toMessageResponse(out.CompanionMessage),
	})
}

func (s *Server) handleDismissMenu(w http.ResponseWriter, r *http.Request, id domain.ConversationID) {
	if err := s.conv.DismissMenu(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─────────────────────────────────────────────
// Exercise / resource handlers
// ─────────────────────────────────────────────

func (s *Server) handleExercises(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	exercises := breathing.List()
	out := make([]exerciseResponse, 0, len(exercises))
	for _, ex := range exercises {
		out = append(out, exerciseResponse{
			ID:              string(ex.ID),
			Name:            ex.Name,
			Description:     ex.Description,
			DurationSeconds: int(ex.Duration.Seconds()),
			Pattern:         string(ex.Pattern),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"exercises": out})
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	list, err := s.resources.List(r.Context(), resources.Filter{
		Mood: r.URL.Query().Get("mood"),
		Type: r.URL.Query().Get("type"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]resourceResponse, 0, len(list))
	for _, res := range list {
		out = append(out, resourceResponse{
			ID:          string(res.ID),
			Title:       res.Title,
			Type:        string(res.Type),
			Moods:       res.Moods,
			Duration:    res.Duration,
			Description: res.Description,
		})
	}
	writeJSON(w, http.StatusOK, resourcesResponse{Resources: out, Moods: resources.Moods})
}

// ─────────────────────────────────────────────
// Profile handlers
// ─────────────────────────────────────────────

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request, userID domain.UserID) {
	p, err := s.profiles.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, userID domain.UserID) {
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	upd := profile.ProfileUpdate{
		Name:                 req.Name,
		Avatar:               req.Avatar,
		CurrentMood:          req.CurrentMood,
		NotificationsEnabled: req.NotificationsEnabled,
		BreathingReminders:   req.BreathingReminders,
		JournalPrompts:       req.JournalPrompts,
	}
	if req.ColorScheme != nil {
		scheme := domain.ColorScheme(*req.ColorScheme)
		upd.ColorScheme = &scheme
	}

	p, err := s.profiles.UpdateProfile(r.Context(), userID, upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

func (s *Server) handleRecordMood(w http.ResponseWriter, r *http.Request, userID domain.UserID) {
	var req recordMoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	entry, err := s.profiles.RecordMood(r.Context(), profile.RecordMoodInput{
		UserID:    userID,
		Mood:      req.Mood,
		Intensity: req.Intensity,
		Notes:     req.Notes,
		Triggers:  req.Triggers,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMoodEntryResponse(entry))
}

func (s *Server) handleListMoods(w http.ResponseWriter, r *http.Request, userID domain.UserID) {
	entries, err := s.profiles.ListMoods(r.Context(), userID, queryInt(r, "limit", 0))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]moodEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toMoodEntryResponse(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"mood_entries": out})
}

// ─────────────────────────────────────────────
// Response mapping helpers
// ─────────────────────────────────────────────

func toConversationResponse(c *domain.Conversation) conversationResponse {
	return conversationResponse{
		ID:        string(c.ID),
		UserID:    string(c.UserID),
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toMessageResponse(m *domain.Message) messageResponse {
	return messageResponse{
		ID:             string(m.ID),
		ConversationID: string(m.ConversationID),
		Author:         string(m.Author),
		Text:           m.Text,
		Mood:           m.Mood,
		CreatedAt:      m.CreatedAt,
	}
}

func toMessagesResponse(msgs []*domain.Message) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResponse(m))
	}
	return out
}

func toProfileResponse(p *domain.UserProfile) profileResponse {
	return profileResponse{
		ID:                   string(p.ID),
		Email:                p.Email,
		Name:                 p.Name,
		Avatar:               p.Avatar,
		CurrentMood:          p.CurrentMood,
		ColorScheme:          string(p.ColorScheme),
		NotificationsEnabled: p.NotificationsEnabled,
		BreathingReminders:   p.BreathingReminders,
		JournalPrompts:       p.JournalPrompts,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

func toMoodEntryResponse(e *domain.MoodEntry) moodEntryResponse {
	return moodEntryResponse{
		ID:        string(e.ID),
		UserID:    string(e.UserID),
		Mood:      e.Mood,
		Intensity: e.Intensity,
		Notes:     e.Notes,
		Triggers:  e.Triggers,
		CreatedAt: e.CreatedAt,
	}
}

// ─────────────────────────────────────────────
// HTTP helpers
// ─────────────────────────────────────────────

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, session.ErrClosed):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "conversation closed"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
}
