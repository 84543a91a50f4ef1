package models

// CatalogEntry is the read-only product view consumed by the relevance
// scorer. The catalog itself is owned by the storefront's product store.
type CatalogEntry struct {
	ID          string   `bson:"_id,omitempty" json:"id"`
	Name        string   `bson:"name" json:"name"`
	Description string   `bson:"description" json:"description"`
	Category    string   `bson:"category" json:"category"`
	Tags        []string `bson:"tags" json:"tags"`
	Price       float64  `bson:"price" json:"price"`
	InStock     bool     `bson:"inStock" json:"inStock"`
}

// ScoredMatch pairs a catalog entry with its relevance score. Transient,
// never persisted.
type ScoredMatch struct {
	Entry CatalogEntry
	Score int
}
