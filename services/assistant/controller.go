// File: services/assistant/controller.go
package assistant

import (
	"context"
	"strings"
	"sync"
	"time"

	"ruach/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultHistoryLimit bounds the retained message log.
	DefaultHistoryLimit = 40
	// historySyncEvery is how many bot replies pass between background
	// transcript syncs.
	historySyncEvery = 6

	defaultGreeting        = "Hi! How can I help you today?"
	defaultFallback        = "I'm not sure about that yet, but I'm learning every day."
	defaultApology         = "Sorry, something went wrong on my end. Please try again."
	defaultEscalationDelay = 900 * time.Millisecond
)

// HistorySyncer forwards a trimmed conversation log to the back office,
// fire-and-forget.
type HistorySyncer interface {
	Enqueue(payload models.HistorySyncPayload) error
}

// Deps bundles the collaborators one Conversation needs. Store is
// required; the rest are optional and their absence just disables the
// corresponding pipeline step.
type Deps struct {
	Store     HistoryStore
	Knowledge KnowledgeBase
	Executor  *RemoteExecutor
	Syncer    HistorySyncer
	Logger    *zap.Logger
}

// Conversation is the single source of truth for one assistant instance:
// its visible UI state, its message log and the turn-resolution pipeline.
// At most one turn is in flight at a time; a Submit while busy is ignored.
type Conversation struct {
	key      string
	cfg      models.WidgetConfig
	conv     models.ConversationContext
	registry []models.Intent

	store  HistoryStore
	kb     KnowledgeBase
	exec   *RemoteExecutor
	syncer HistorySyncer
	logger *zap.Logger

	escalationDelay time.Duration

	mu         sync.Mutex
	open       bool
	busy       bool
	messages   []models.Message
	botReplies int
}

// NewConversation builds a session handle for one assistant instance and
// hydrates its log from the persistence adapter. A loaded record that is
// empty or does not start with a bot message gets a fresh greeting
// prepended.
func NewConversation(cfg models.WidgetConfig, conv models.ConversationContext, registry []models.Intent, deps Deps) *Conversation {
	key := cfg.StorageKey
	if key == "" {
		key = uuid.NewString()
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	exec := deps.Executor
	if exec == nil {
		exec = NewRemoteExecutor(0)
	}

	c := &Conversation{
		key:             key,
		cfg:             cfg,
		conv:            conv,
		registry:        registry,
		store:           deps.Store,
		kb:              deps.Knowledge,
		exec:            exec,
		syncer:          deps.Syncer,
		logger:          logger,
		escalationDelay: defaultEscalationDelay,
	}
	c.hydrate()
	return c
}

func (c *Conversation) hydrate() {
	var msgs []models.Message
	if c.store != nil {
		loaded, err := c.store.Load(context.Background(), c.key)
		if err != nil {
			c.logger.Warn("failed to load persisted history", zap.Error(err), zap.String("key", c.key))
		} else {
			msgs = loaded
		}
	}
	if len(msgs) == 0 || msgs[0].Sender != models.SenderBot {
		msgs = append([]models.Message{c.newBotMessage(c.greeting())}, msgs...)
	}
	if len(msgs) > c.cfg.HistoryLimit {
		msgs = msgs[len(msgs)-c.cfg.HistoryLimit:]
	}
	c.messages = msgs
}

// Key returns the instance's session identity.
func (c *Conversation) Key() string { return c.key }

// Config returns the host-supplied widget configuration.
func (c *Conversation) Config() models.WidgetConfig { return c.cfg }

// Context returns the instance's conversation context.
func (c *Conversation) Context() models.ConversationContext { return c.conv }

// Open, Close and Toggle are pure UI-state transitions with no side
// effects on the message log.
func (c *Conversation) Open() {
	c.mu.Lock()
	c.open = true
	c.mu.Unlock()
}

func (c *Conversation) Close() {
	c.mu.Lock()
	c.open = false
	c.mu.Unlock()
}

func (c *Conversation) Toggle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = !c.open
	return c.open
}

func (c *Conversation) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Busy reports whether a turn is currently in flight.
func (c *Conversation) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Messages returns a copy of the current log.
func (c *Conversation) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Submit runs one turn: append the user message, resolve a reply, append
// it. Empty or whitespace-only input is ignored, as is any Submit while a
// turn is already in flight. It reports whether the input was accepted.
// The busy flag is cleared on every path, including failures.
func (c *Conversation) Submit(ctx context.Context, text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return false
	}
	c.busy = true
	c.appendLocked(c.newUserMessage(trimmed))
	c.persistLocked(ctx)
	c.mu.Unlock()

	reply := c.runTurn(ctx, text)

	c.mu.Lock()
	c.busy = false
	c.appendLocked(c.newBotMessage(reply))
	c.persistLocked(ctx)
	syncDue := c.botReplies%historySyncEvery == 0 && c.conv.UserID != ""
	var snapshot []models.Message
	if syncDue {
		snapshot = make([]models.Message, len(c.messages))
		copy(snapshot, c.messages)
	}
	c.mu.Unlock()

	if syncDue {
		go c.syncHistory(snapshot)
	}
	return true
}

// QuickReply submits a canned prompt as if the user had typed it.
func (c *Conversation) QuickReply(ctx context.Context, prompt string) bool {
	return c.Submit(ctx, prompt)
}

// runTurn resolves the reply and converts every uncaught failure, panics
// included, into the fixed apology so the controller never surfaces an
// error or sticks busy.
func (c *Conversation) runTurn(ctx context.Context, input string) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("turn resolution panicked", zap.Any("panic", r), zap.String("key", c.key))
			reply = c.apology()
		}
	}()
	res, err := c.resolve(ctx, input)
	if err != nil {
		c.logger.Warn("turn resolution failed", zap.Error(err), zap.String("key", c.key))
		return c.apology()
	}
	return res
}

// Escalate runs the scripted hand-off: an intro message now, the joined
// contact lines one beat later so the two render as distinct turns. No-op
// without contact configuration.
func (c *Conversation) Escalate() {
	if c.cfg.Contact == nil {
		return
	}
	c.mu.Lock()
	c.appendLocked(c.newBotMessage(c.cfg.Contact.Intro))
	c.persistLocked(context.Background())
	c.mu.Unlock()

	details := strings.Join(c.cfg.Contact.Details, "\n")
	time.AfterFunc(c.escalationDelay, func() {
		c.mu.Lock()
		c.appendLocked(c.newBotMessage(details))
		c.persistLocked(context.Background())
		c.mu.Unlock()
	})
}

// ClearHistory replaces the log with a single fresh greeting and removes
// the persisted record.
func (c *Conversation) ClearHistory(ctx context.Context) {
	c.mu.Lock()
	c.messages = []models.Message{c.newBotMessage(c.greeting())}
	c.botReplies = 0
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Clear(ctx, c.key); err != nil {
			c.logger.Warn("failed to clear persisted history", zap.Error(err), zap.String("key", c.key))
		}
	}
}

// appendLocked appends one message and trims the log to the most recent
// HistoryLimit entries. Callers hold c.mu.
func (c *Conversation) appendLocked(msg models.Message) {
	c.messages = append(c.messages, msg)
	if len(c.messages) > c.cfg.HistoryLimit {
		c.messages = c.messages[len(c.messages)-c.cfg.HistoryLimit:]
	}
	if msg.Sender == models.SenderBot {
		c.botReplies++
	}
}

// persistLocked writes the current log best-effort; persistence failures
// are logged and never surfaced. Callers hold c.mu.
func (c *Conversation) persistLocked(ctx context.Context) {
	if c.store == nil {
		return
	}
	snapshot := make([]models.Message, len(c.messages))
	copy(snapshot, c.messages)
	if err := c.store.Save(ctx, c.key, snapshot); err != nil {
		c.logger.Warn("failed to persist history", zap.Error(err), zap.String("key", c.key))
	}
}

func (c *Conversation) syncHistory(snapshot []models.Message) {
	payload := models.HistorySyncPayload{
		SessionKey: c.key,
		Context:    c.conv,
		Messages:   snapshot,
	}
	if c.syncer != nil {
		if err := c.syncer.Enqueue(payload); err != nil {
			c.logger.Warn("failed to enqueue history sync", zap.Error(err), zap.String("key", c.key))
		}
		return
	}
	if c.kb != nil {
		if err := c.kb.SaveChatHistory(context.Background(), snapshot, c.conv); err != nil {
			c.logger.Warn("failed to sync chat history", zap.Error(err), zap.String("key", c.key))
		}
	}
}

func (c *Conversation) newBotMessage(text string) models.Message {
	return models.Message{
		ID:          uuid.NewString(),
		Text:        text,
		Sender:      models.SenderBot,
		Timestamp:   time.Now().UTC(),
		PageContext: c.conv.Page,
	}
}

func (c *Conversation) newUserMessage(text string) models.Message {
	return models.Message{
		ID:          uuid.NewString(),
		Text:        text,
		Sender:      models.SenderUser,
		Timestamp:   time.Now().UTC(),
		PageContext: c.conv.Page,
	}
}

func (c *Conversation) greeting() string {
	if c.cfg.Greeting != "" {
		return c.cfg.Greeting
	}
	return defaultGreeting
}

func (c *Conversation) defaultResponse() string {
	if c.cfg.DefaultResponse != "" {
		return c.cfg.DefaultResponse
	}
	return defaultFallback
}

func (c *Conversation) apology() string {
	if c.cfg.ApologyResponse != "" {
		return c.cfg.ApologyResponse
	}
	return defaultApology
}
