package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ruach/models"
	"ruach/services/assistant"

	"github.com/gin-gonic/gin"
)

func newTestRouter() (*gin.Engine, *AssistantHandler) {
	gin.SetMode(gin.TestMode)
	handler := NewAssistantHandler(AssistantDeps{
		Store: assistant.NewMemoryHistoryStore(),
	})

	r := gin.New()
	api := r.Group("/api/assistant")
	api.POST("/session", handler.CreateSessionHandler)
	api.GET("/session/:sessionID", handler.GetMessagesHandler)
	api.POST("/session/:sessionID/message", handler.SubmitMessageHandler)
	api.DELETE("/session/:sessionID/history", handler.ClearHistoryHandler)
	return r, handler
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateSessionAndSubmit(t *testing.T) {
	r, _ := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/assistant/session", gin.H{
		"assistantType": "shopper",
		"page":          "home",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create session: status %d, body %s", w.Code, w.Body.String())
	}

	var created struct {
		SessionID string           `json:"sessionId"`
		Messages  []models.Message `json:"messages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if created.SessionID == "" {
		t.Fatal("missing session id")
	}
	if len(created.Messages) != 1 || created.Messages[0].Sender != models.SenderBot {
		t.Fatalf("expected a single greeting, got %+v", created.Messages)
	}

	w = doJSON(t, r, http.MethodPost, "/api/assistant/session/"+created.SessionID+"/message", gin.H{
		"text": "how long does shipping take?",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("submit: status %d, body %s", w.Code, w.Body.String())
	}

	var result struct {
		Accepted bool             `json:"accepted"`
		Messages []models.Message `json:"messages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode submit response: %v", err)
	}
	if !result.Accepted {
		t.Fatal("submit rejected")
	}
	last := result.Messages[len(result.Messages)-1]
	if last.Sender != models.SenderBot || last.Text == "" {
		t.Fatalf("expected a bot reply, got %+v", last)
	}
}

func TestSubmitEmptyTextNotAccepted(t *testing.T) {
	r, _ := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/assistant/session", gin.H{"assistantType": "general"})
	var created struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode session: %v", err)
	}

	w = doJSON(t, r, http.MethodPost, "/api/assistant/session/"+created.SessionID+"/message", gin.H{"text": "   "})
	if w.Code != http.StatusOK {
		t.Fatalf("submit: status %d", w.Code)
	}
	var result struct {
		Accepted bool `json:"accepted"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Accepted {
		t.Fatal("empty input must not be accepted")
	}
}

func TestUnknownSessionReturns404(t *testing.T) {
	r, _ := newTestRouter()
	w := doJSON(t, r, http.MethodPost, "/api/assistant/session/nope/message", gin.H{"text": "hello"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown session, got %d", w.Code)
	}
}
