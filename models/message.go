package models

import "time"

// Sender identifies which side of the conversation produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one entry in an assistant's conversation log. Messages are
// immutable once created; the log is append-only and trimmed FIFO.
type Message struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Sender      Sender    `json:"sender"`
	Timestamp   time.Time `json:"timestamp"`
	PageContext string    `json:"pageContext,omitempty"`
}

// QuickReply is a canned prompt the user can trigger without typing.
type QuickReply struct {
	Label  string `json:"label"`
	Prompt string `json:"prompt"`
}

// ContactConfig carries the human-support hand-off script used by the
// escalation flow.
type ContactConfig struct {
	Intro   string   `json:"intro"`
	Details []string `json:"details"`
}

// ConversationContext is supplied once per assistant instance and passed
// unchanged into every intent action and remote descriptor.
type ConversationContext struct {
	Page     string `json:"page"`
	UserID   string `json:"userId,omitempty"`
	UserType string `json:"userType"`
}
