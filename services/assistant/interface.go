// File: services/assistant/interface.go
package assistant

import (
	"context"

	"ruach/models"
)

// HistoryStore persists a bounded, ordered message log per assistant
// instance. Implementations must treat the record as opaque: the controller
// owns trimming and ordering.
type HistoryStore interface {
	Load(ctx context.Context, key string) ([]models.Message, error)
	Save(ctx context.Context, key string, msgs []models.Message) error
	Clear(ctx context.Context, key string) error
}

// KnowledgeBase is the fallback collaborator consulted when no intent
// matches, plus the fire-and-forget history sink. Every call site swallows
// errors and degrades to the next pipeline step.
type KnowledgeBase interface {
	FindRelevantAnswers(ctx context.Context, text string, conv models.ConversationContext) ([]string, error)
	GetDynamicInfo(ctx context.Context, conv models.ConversationContext) (string, error)
	SaveChatHistory(ctx context.Context, msgs []models.Message, conv models.ConversationContext) error
}

// CatalogSource hands out a bounded page of catalog entries for the
// relevance scorer's snapshot cache.
type CatalogSource interface {
	FetchEntries(ctx context.Context) ([]models.CatalogEntry, error)
}
