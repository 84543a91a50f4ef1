package catalogRepo

import (
	"context"

	"ruach/models"
)

// Repository is the catalog collaborator consumed by the assistant engine.
// The product store itself is owned by the storefront: reads hand out a
// bounded page of entries, and the only write is the synced-transcript
// sink, which lives in a separate collection.
type Repository interface {
	FetchEntries(ctx context.Context) ([]models.CatalogEntry, error)
	SaveTranscript(ctx context.Context, payload models.HistorySyncPayload) error
}
