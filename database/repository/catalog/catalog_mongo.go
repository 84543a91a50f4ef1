package catalogRepo

import (
	"context"
	"fmt"
	"time"

	"ruach/config"
	"ruach/database"
	"ruach/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	dbName             = "ruach"
	productsCollection = "products"
	historyCollection  = "chat_histories"
)

// MongoCatalogRepo reads product entries from the storefront's Mongo
// product store and writes synced transcripts alongside them.
type MongoCatalogRepo struct {
	products *mongo.Collection
	history  *mongo.Collection
}

func NewMongoCatalogRepo() *MongoCatalogRepo {
	db := database.MongoClient.Database(dbName)
	return &MongoCatalogRepo{
		products: db.Collection(productsCollection),
		history:  db.Collection(historyCollection),
	}
}

// FetchEntries returns one bounded page of catalog entries with only the
// fields the scorer consumes.
func (r *MongoCatalogRepo) FetchEntries(ctx context.Context) ([]models.CatalogEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	limit := int64(config.AppConfig.CatalogPageSize)
	if limit <= 0 {
		limit = 200
	}
	opts := options.Find().
		SetLimit(limit).
		SetProjection(bson.M{
			"name":        1,
			"description": 1,
			"category":    1,
			"tags":        1,
			"price":       1,
			"inStock":     1,
		})

	cursor, err := r.products.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("catalog query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.CatalogEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode catalog entries: %w", err)
	}
	return entries, nil
}

// SaveTranscript stores one synced conversation log.
func (r *MongoCatalogRepo) SaveTranscript(ctx context.Context, payload models.HistorySyncPayload) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	doc := bson.M{
		"sessionKey": payload.SessionKey,
		"userId":     payload.Context.UserID,
		"userType":   payload.Context.UserType,
		"page":       payload.Context.Page,
		"messages":   payload.Messages,
		"savedAt":    time.Now().UTC(),
	}
	if _, err := r.history.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to save transcript: %w", err)
	}
	return nil
}
