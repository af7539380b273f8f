package httpadapter_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpadapter "github.com/felix-companion/felix-agent/internal/adapters/http"
	"github.com/felix-companion/felix-agent/internal/adapters/storage/memory"
	"github.com/felix-companion/felix-agent/internal/app/conversation"
	"github.com/felix-companion/felix-agent/internal/app/profile"
	"github.com/felix-companion/felix-agent/internal/app/resources"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	convSvc := conversation.NewService(memory.NewConversationStore(), memory.NewMessageStore(), time.Millisecond)
	t.Cleanup(convSvc.Close)
	profileSvc := profile.NewService(memory.NewProfileStore(), memory.NewMoodStore())
	resourceSvc := resources.NewService(memory.NewResourceStore())

	return httpadapter.NewServer(convSvc, profileSvc, resourceSvc)
}

func doJSON(t *testing.T, srv http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding response %q: %v", w.Body.String(), err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestConversationFlow(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/conversations",
		map[string]string{"user_id": "test-user", "title": "Test"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d, body=%s", w.Code, w.Body.String())
	}

	created := decode[struct {
		Conversation struct {
			ID string `json:"id"`
		} `json:"conversation"`
		Greeting struct {
			Author string `json:"author"`
			Text   string `json:"text"`
		} `json:"greeting"`
	}](t, w)
	if created.Greeting.Author != "companion" {
		t.Fatalf("expected companion greeting, got %+v", created.Greeting)
	}
	convID := created.Conversation.ID

	// send a message that reveals the exercise menu
	w = doJSON(t, srv, http.MethodPost, "/conversations/"+convID+"/messages",
		map[string]string{"text": "can we try breathing?"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}
	sent := decode[struct {
		MenuVisible bool `json:"menu_visible"`
	}](t, w)
	if !sent.MenuVisible {
		t.Fatalf("expected menu_visible=true, body=%s", w.Body.String())
	}

	// pick an exercise
	w = doJSON(t, srv, http.MethodPost, "/conversations/"+convID+"/exercises",
		map[string]string{"exercise_id": "1"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	// timeline has greeting + pair + exercise intro, menu hidden again
	w = doJSON(t, srv, http.MethodGet, "/conversations/"+convID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	timeline := decode[struct {
		Messages    []struct{ Author string } `json:"messages"`
		MenuVisible bool                      `json:"menu_visible"`
	}](t, w)
	if len(timeline.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(timeline.Messages))
	}
	if timeline.MenuVisible {
		t.Fatalf("expected menu hidden after exercise pick")
	}

	// dismiss is idempotent
	for i := 0; i < 2; i++ {
		w = doJSON(t, srv, http.MethodDelete, "/conversations/"+convID+"/menu", nil)
		if w.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", w.Code)
		}
	}
}

func TestSendMessageErrors(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/conversations", map[string]string{"user_id": "u1"})
	convID := decode[struct {
		Conversation struct {
			ID string `json:"id"`
		} `json:"conversation"`
	}](t, w).Conversation.ID

	// blank text → 400
	w = doJSON(t, srv, http.MethodPost, "/conversations/"+convID+"/messages",
		map[string]string{"text": "   "})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank text, got %d", w.Code)
	}

	// over-long text → 400
	long := make([]rune, 501)
	for i := range long {
		long[i] = 'a'
	}
	w = doJSON(t, srv, http.MethodPost, "/conversations/"+convID+"/messages",
		map[string]string{"text": string(long)})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for over-long text, got %d", w.Code)
	}

	// unknown conversation → 404
	w = doJSON(t, srv, http.MethodPost, "/conversations/nope/messages",
		map[string]string{"text": "hello"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown conversation, got %d", w.Code)
	}

	// unknown exercise → 404
	w = doJSON(t, srv, http.MethodPost, "/conversations/"+convID+"/exercises",
		map[string]string{"exercise_id": "42"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown exercise, got %d", w.Code)
	}
}

func TestListExercises(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/exercises", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	out := decode[struct {
		Exercises []struct {
			Name            string `json:"name"`
			DurationSeconds int    `json:"duration_seconds"`
		} `json:"exercises"`
	}](t, w)
	if len(out.Exercises) != 3 {
		t.Fatalf("expected 3 exercises, got %d", len(out.Exercises))
	}
	if out.Exercises[0].Name != "Box Breathing" || out.Exercises[0].DurationSeconds != 120 {
		t.Fatalf("unexpected first exercise: %+v", out.Exercises[0])
	}
}

func TestResourcesFilter(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		query string
		want  int
	}{
		{"", 6},
		{"?mood=all&type=all", 6},
		{"?mood=anxious", 1},
		{"?type=video", 3},
		{"?mood=sad&type=activity", 1},
		{"?mood=sad&type=video", 0},
	}

	for _, tc := range cases {
		w := doJSON(t, srv, http.MethodGet, "/resources"+tc.query, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tc.query, w.Code)
		}
		out := decode[struct {
			Resources []json.RawMessage `json:"resources"`
			Moods     []string          `json:"moods"`
		}](t, w)
		if len(out.Resources) != tc.want {
			t.Fatalf("%s: expected %d resources, got %d", tc.query, tc.want, len(out.Resources))
		}
		// the filter chips ship with every catalog response
		if len(out.Moods) == 0 || out.Moods[0] != "all" {
			t.Fatalf("%s: expected mood chips starting with \"all\", got %v", tc.query, out.Moods)
		}
	}

	w := doJSON(t, srv, http.MethodGet, "/resources?type=podcast", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown type, got %d", w.Code)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	// first read creates a default profile
	w := doJSON(t, srv, http.MethodGet, "/profiles/user-7", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}
	p := decode[struct {
		ColorScheme        string `json:"preferred_color_scheme"`
		BreathingReminders bool   `json:"breathing_reminders"`
	}](t, w)
	if p.ColorScheme != "default" || !p.BreathingReminders {
		t.Fatalf("unexpected default profile: %s", w.Body.String())
	}

	w = doJSON(t, srv, http.MethodPatch, "/profiles/user-7", map[string]any{
		"name":                   "Sam",
		"preferred_color_scheme": "ocean",
		"journal_prompts":        true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}
	updated := decode[struct {
		Name           string `json:"name"`
		ColorScheme    string `json:"preferred_color_scheme"`
		JournalPrompts bool   `json:"journal_prompts"`
	}](t, w)
	if updated.Name != "Sam" || updated.ColorScheme != "ocean" || !updated.JournalPrompts {
		t.Fatalf("update not applied: %s", w.Body.String())
	}

	// unknown scheme → 400
	w = doJSON(t, srv, http.MethodPatch, "/profiles/user-7",
		map[string]string{"preferred_color_scheme": "neon"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown scheme, got %d", w.Code)
	}
}

func TestMoodEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for i := 1; i <= 3; i++ {
		w := doJSON(t, srv, http.MethodPost, "/profiles/user-1/moods", map[string]any{
			"mood":      "anxious",
			"intensity": i * 2,
			"triggers":  []string{"work"},
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d, body=%s", w.Code, w.Body.String())
		}
	}

	// out-of-range intensity → 400
	w := doJSON(t, srv, http.MethodPost, "/profiles/user-1/moods",
		map[string]any{"mood": "sad", "intensity": 11})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for intensity 11, got %d", w.Code)
	}

	w = doJSON(t, srv, http.MethodGet, "/profiles/user-1/moods?limit=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	out := decode[struct {
		Entries []struct {
			Intensity int `json:"intensity"`
		} `json:"mood_entries"`
	}](t, w)
	if len(out.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(out.Entries))
	}
	// newest first
	if out.Entries[0].Intensity != 6 {
		t.Fatalf("expected newest entry first, got %+v", out.Entries)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	for _, c := range []struct{ method, path string }{
		{http.MethodDelete, "/conversations"},
		{http.MethodPost, "/exercises"},
		{http.MethodPost, "/resources"},
	} {
		w := doJSON(t, srv, c.method, c.path, nil)
		if w.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s %s: expected 405, got %d", c.method, c.path, w.Code)
		}
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected X-Request-Id header on response")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-Id"); got != "abc-123" {
		t.Fatalf("expected propagated request id, got %q", got)
	}
}
