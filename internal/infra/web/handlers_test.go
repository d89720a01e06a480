//go:build !integration

package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"voice-ai-callbot/internal/domain/model"
	"voice-ai-callbot/internal/domain/ports/adapter"
	"voice-ai-callbot/internal/infra/memory"
	"voice-ai-callbot/internal/usecase"
)

type fixture struct {
	server   *Server
	convs    *memory.ConversationRepo
	callLog  *memory.CallLogRepo
	ai       *stubAI
	callCtrl *mockCallControl
}

func newFixture(apiKey string) *fixture {
	logger := zerolog.Nop()
	ai := &stubAI{reply: "a model-generated answer about your question"}
	convs := memory.NewConversationRepo()
	callLog := memory.NewCallLogRepo()

	responder := usecase.NewResponderUseCase(ai, "gemini-2.0-flash",
		adapter.GenerationOptions{MaxOutputTokens: 120, Temperature: 0.7}, time.Second, &logger)
	convUC := usecase.NewConversationUseCase(convs, callLog, responder, usecase.ConversationConfig{
		ListenTimeoutEarly: 5 * time.Second,
		ListenTimeoutLate:  3 * time.Second,
	}, &logger)

	callCtrl := &mockCallControl{}
	srv := NewServer(convUC, callCtrl, "https://callbot.example.com", "alice", apiKey, true, &logger)
	return &fixture{server: srv, convs: convs, callLog: callLog, ai: ai, callCtrl: callCtrl}
}

func postForm(t *testing.T, handler http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestVoiceWebhook(t *testing.T) {
	f := newFixture("")
	router := f.server.Router()

	form := url.Values{"CallSid": {"CA1"}}
	rec := postForm(t, router, "/voice?context="+url.QueryEscape("Today's Topic: Recursion"), form)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/xml" {
		t.Errorf("expected text/xml, got %s", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `<Say voice="alice">`) || !strings.Contains(body, "Recursion") {
		t.Errorf("expected topic-aware greeting, got %s", body)
	}
	if !strings.Contains(body, `input="speech"`) || !strings.Contains(body, `timeout="5"`) || !strings.Contains(body, `action="/process_speech"`) {
		t.Errorf("expected a speech gather, got %s", body)
	}

	entry, err := f.callLog.Find(context.Background(), "CA1")
	if err != nil {
		t.Fatalf("expected call log entry: %v", err)
	}
	if entry.Status != model.CallStatusStarted {
		t.Errorf("expected started, got %s", entry.Status)
	}
}

func TestProcessSpeechCannedBypassesModel(t *testing.T) {
	f := newFixture("")
	router := f.server.Router()

	postForm(t, router, "/voice", url.Values{"CallSid": {"CA1"}})
	rec := postForm(t, router, "/process_speech", url.Values{
		"CallSid":      {"CA1"},
		"SpeechResult": {"hello"},
		"Confidence":   {"0.92"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "study assistant") {
		t.Errorf("expected canned greeting reply, got %s", rec.Body.String())
	}
	if f.ai.callCount() != 0 {
		t.Errorf("canned phrase must bypass the model, got %d calls", f.ai.callCount())
	}
}

func TestProcessSpeechGoodbyeEndsCall(t *testing.T) {
	f := newFixture("")
	router := f.server.Router()

	postForm(t, router, "/voice", url.Values{"CallSid": {"CA1"}})
	rec := postForm(t, router, "/process_speech", url.Values{
		"CallSid":      {"CA1"},
		"SpeechResult": {"goodbye"},
	})

	body := rec.Body.String()
	if !strings.Contains(body, "Goodbye") {
		t.Errorf("expected farewell text, got %s", body)
	}
	if !strings.Contains(body, "<Hangup") {
		t.Errorf("expected hangup verb, got %s", body)
	}
	if strings.Contains(body, "<Gather") {
		t.Errorf("no listening window may follow a hangup, got %s", body)
	}

	s, err := f.convs.Find(context.Background(), "CA1")
	if err != nil {
		t.Fatal(err)
	}
	if s.Status != model.CallSessionEnded {
		t.Errorf("expected session ended, got %s", s.Status)
	}
	entry, _ := f.callLog.Find(context.Background(), "CA1")
	if entry.Status != model.CallStatusEnded {
		t.Errorf("expected call log ended, got %s", entry.Status)
	}
}

func TestProcessSpeechSilenceReprompts(t *testing.T) {
	f := newFixture("")
	router := f.server.Router()

	postForm(t, router, "/voice", url.Values{"CallSid": {"CA1"}})
	rec := postForm(t, router, "/process_speech", url.Values{"CallSid": {"CA1"}})

	body := rec.Body.String()
	// The XML encoder escapes apostrophes, so match around them.
	if !strings.Contains(body, "hear anything") {
		t.Errorf("expected silence re-prompt, got %s", body)
	}
	if !strings.Contains(body, "<Gather") {
		t.Errorf("silence must re-arm listening, got %s", body)
	}
}

func TestProcessSpeechModelFailureFallsBack(t *testing.T) {
	f := newFixture("")
	f.ai.err = context.DeadlineExceeded
	router := f.server.Router()

	postForm(t, router, "/voice?context="+url.QueryEscape("working through python exercises"),
		url.Values{"CallSid": {"CA1"}})
	rec := postForm(t, router, "/process_speech", url.Values{
		"CallSid":      {"CA1"},
		"SpeechResult": {"explain decorators"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("voice path must never surface errors, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Python fundamentals") {
		t.Errorf("expected the python fallback tip, got %s", rec.Body.String())
	}
}

func TestMakeCall(t *testing.T) {
	f := newFixture("")
	router := f.server.Router()

	t.Run("missing phone number", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/make_call", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body["error"] == "" {
			t.Error("expected an error message")
		}
	})

	t.Run("success", func(t *testing.T) {
		payload := `{"phoneNumber":"+15551234567","context":"Today's Topic: Maps"}`
		req := httptest.NewRequest(http.MethodPost, "/make_call", strings.NewReader(payload))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var body struct {
			Success bool   `json:"success"`
			CallID  string `json:"callId"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if !body.Success || body.CallID == "" {
			t.Errorf("expected success with call id, got %+v", body)
		}
		if !strings.Contains(f.callCtrl.lastURL, "/voice?context=") {
			t.Errorf("webhook url must carry the context, got %s", f.callCtrl.lastURL)
		}
	})
}

func TestCallStatus(t *testing.T) {
	f := newFixture("")
	router := f.server.Router()

	t.Run("unknown id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/call_status/CA404", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("known id", func(t *testing.T) {
		postForm(t, router, "/voice", url.Values{"CallSid": {"CA1"}})

		req := httptest.NewRequest(http.MethodGet, "/call_status/CA1", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var view usecase.CallStatusView
		if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
			t.Fatal(err)
		}
		if view.CallID != "CA1" || view.Conversation == nil || view.Log == nil {
			t.Errorf("incomplete view: %+v", view)
		}
		if view.ProviderStatus != "in-progress" {
			t.Errorf("expected provider status from the adapter, got %s", view.ProviderStatus)
		}
	})

	t.Run("provider status degrades on adapter failure", func(t *testing.T) {
		f := newFixture("")
		f.callCtrl.statusErr = context.DeadlineExceeded
		router := f.server.Router()
		postForm(t, router, "/voice", url.Values{"CallSid": {"CA2"}})

		req := httptest.NewRequest(http.MethodGet, "/call_status/CA2", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		var view usecase.CallStatusView
		if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
			t.Fatal(err)
		}
		if view.ProviderStatus != "unknown" {
			t.Errorf("expected degraded status, got %s", view.ProviderStatus)
		}
	})
}

func TestActiveCalls(t *testing.T) {
	f := newFixture("")
	router := f.server.Router()

	postForm(t, router, "/voice", url.Values{"CallSid": {"CA1"}})
	postForm(t, router, "/voice", url.Values{"CallSid": {"CA2"}})
	postForm(t, router, "/process_speech", url.Values{"CallSid": {"CA2"}, "SpeechResult": {"bye"}})

	req := httptest.NewRequest(http.MethodGet, "/active_calls", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		ActiveCount   int                         `json:"activeCount"`
		Conversations []model.ConversationSummary `json:"conversations"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.ActiveCount != 1 || len(body.Conversations) != 1 || body.Conversations[0].CallID != "CA1" {
		t.Errorf("expected only CA1 active, got %+v", body)
	}
}

func TestAdminAuth(t *testing.T) {
	f := newFixture("secret-key")
	router := f.server.Router()

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/active_calls", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("wrong token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/active_calls", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/active_calls", nil)
		req.Header.Set("Authorization", "Bearer secret-key")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("webhooks stay open", func(t *testing.T) {
		rec := postForm(t, router, "/voice", url.Values{"CallSid": {"CA1"}})
		if rec.Code != http.StatusOK {
			t.Errorf("webhooks must not require auth, got %d", rec.Code)
		}
	})
}
