package models

// WidgetConfig is the plain-data configuration a host page supplies for one
// assistant widget. It is loaded once at construction and never mutated by
// the engine.
type WidgetConfig struct {
	Title           string         `json:"title"`
	Theme           string         `json:"theme"`
	Greeting        string         `json:"greeting"`
	DefaultResponse string         `json:"defaultResponse"`
	ApologyResponse string         `json:"apologyResponse,omitempty"`
	StorageKey      string         `json:"storageKey,omitempty"`
	HistoryLimit    int            `json:"historyLimit,omitempty"` // default 40
	QuickReplies    []QuickReply   `json:"quickReplies,omitempty"`
	Contact         *ContactConfig `json:"contact,omitempty"`
}

// HistorySyncPayload is the envelope enqueued for the background
// chat-history sync worker.
type HistorySyncPayload struct {
	SessionKey string              `json:"sessionKey"`
	Context    ConversationContext `json:"context"`
	Messages   []Message           `json:"messages"`
}
