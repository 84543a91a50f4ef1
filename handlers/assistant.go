package handlers

import (
	"net/http"
	"sync"

	"ruach/config"
	"ruach/models"
	"ruach/services/assistant"
	"ruach/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AssistantDeps bundles the engine collaborators shared by every widget
// session.
type AssistantDeps struct {
	Store     assistant.HistoryStore
	Knowledge assistant.KnowledgeBase
	Executor  *assistant.RemoteExecutor
	Syncer    assistant.HistorySyncer
	Scorer    *assistant.Scorer
}

// AssistantHandler exposes per-session assistant instances to the
// storefront pages embedding the widget.
type AssistantHandler struct {
	deps AssistantDeps

	mu       sync.RWMutex
	sessions map[string]*assistant.Conversation
}

func NewAssistantHandler(deps AssistantDeps) *AssistantHandler {
	return &AssistantHandler{
		deps:     deps,
		sessions: make(map[string]*assistant.Conversation),
	}
}

type createSessionRequest struct {
	AssistantType string `json:"assistantType"`
	Page          string `json:"page"`
	UserID        string `json:"userId"`
	UserType      string `json:"userType"`
	StorageKey    string `json:"storageKey"`
}

type sessionResponse struct {
	SessionID    string              `json:"sessionId"`
	Title        string              `json:"title"`
	Theme        string              `json:"theme"`
	Open         bool                `json:"open"`
	Busy         bool                `json:"busy"`
	QuickReplies []models.QuickReply `json:"quickReplies,omitempty"`
	Messages     []models.Message    `json:"messages"`
}

type submitRequest struct {
	Text string `json:"text"`
}

type quickReplyRequest struct {
	Prompt string `json:"prompt"`
}

type stateRequest struct {
	Open bool `json:"open"`
}

// CreateSessionHandler builds one assistant instance for a host page.
func (h *AssistantHandler) CreateSessionHandler(c *gin.Context) {
	logger := utils.GetLogger()

	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Invalid create session request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	kind := assistant.NormalizeKind(req.AssistantType)
	cfg := assistant.ConfigFor(kind)
	cfg.StorageKey = req.StorageKey

	conv := models.ConversationContext{
		Page:     req.Page,
		UserID:   req.UserID,
		UserType: kind,
	}
	if req.UserType != "" {
		conv.UserType = req.UserType
	}

	registry := assistant.RegistryFor(kind, h.deps.Scorer, config.AppConfig.StorefrontAPIURL)
	session := assistant.NewConversation(cfg, conv, registry, assistant.Deps{
		Store:     h.deps.Store,
		Knowledge: h.deps.Knowledge,
		Executor:  h.deps.Executor,
		Syncer:    h.deps.Syncer,
		Logger:    logger,
	})

	h.mu.Lock()
	h.sessions[session.Key()] = session
	h.mu.Unlock()

	c.JSON(http.StatusCreated, h.sessionResponse(session))
}

// SubmitMessageHandler runs one turn. Rejected input (empty text or a turn
// already in flight) is reported, never errored.
func (h *AssistantHandler) SubmitMessageHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	accepted := session.Submit(c.Request.Context(), req.Text)
	c.JSON(http.StatusOK, gin.H{
		"accepted": accepted,
		"messages": session.Messages(),
		"busy":     session.Busy(),
	})
}

// QuickReplyHandler submits a canned prompt.
func (h *AssistantHandler) QuickReplyHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req quickReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	accepted := session.QuickReply(c.Request.Context(), req.Prompt)
	c.JSON(http.StatusOK, gin.H{
		"accepted": accepted,
		"messages": session.Messages(),
		"busy":     session.Busy(),
	})
}

// EscalateHandler triggers the human hand-off script.
func (h *AssistantHandler) EscalateHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	session.Escalate()
	c.JSON(http.StatusAccepted, gin.H{"messages": session.Messages()})
}

// GetMessagesHandler returns the current log and UI state.
func (h *AssistantHandler) GetMessagesHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.sessionResponse(session))
}

// ClearHistoryHandler resets the log to a single greeting.
func (h *AssistantHandler) ClearHistoryHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	session.ClearHistory(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"messages": session.Messages()})
}

// SetStateHandler opens or closes the widget.
func (h *AssistantHandler) SetStateHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req stateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if req.Open {
		session.Open()
	} else {
		session.Close()
	}
	c.JSON(http.StatusOK, gin.H{"open": session.IsOpen()})
}

// ToggleHandler flips the widget's open state.
func (h *AssistantHandler) ToggleHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"open": session.Toggle()})
}

func (h *AssistantHandler) session(c *gin.Context) (*assistant.Conversation, bool) {
	id := c.Param("sessionID")
	h.mu.RLock()
	session, ok := h.sessions[id]
	h.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown assistant session"})
		return nil, false
	}
	return session, true
}

func (h *AssistantHandler) sessionResponse(session *assistant.Conversation) sessionResponse {
	cfg := session.Config()
	return sessionResponse{
		SessionID:    session.Key(),
		Title:        cfg.Title,
		Theme:        cfg.Theme,
		Open:         session.IsOpen(),
		Busy:         session.Busy(),
		QuickReplies: cfg.QuickReplies,
		Messages:     session.Messages(),
	}
}
