package ports

import (
	"context"

	"github.com/omnsight/omndapi/internal/domain/entities"
)

// EntityPoint is a semantic-index entry for a persisted entity.
type EntityPoint struct {
	ID        string
	Kind      entities.Kind
	Key       string
	Text      string
	Embedding []float32
}

// ScoredRef is a search hit referencing an entity by ID.
type ScoredRef struct {
	ID    string
	Score float32
}

// VectorDB defines the interface for the semantic index over entities.
type VectorDB interface {
	// EnsureCollection creates the collection if it doesn't exist.
	EnsureCollection(ctx context.Context, vectorSize uint64) error

	// DeleteCollection removes the collection and all points in it.
	DeleteCollection(ctx context.Context) error

	// Save stores an entity point, overwriting any point with the same ID.
	Save(ctx context.Context, point EntityPoint) error

	// Delete removes the point for an entity ID.
	Delete(ctx context.Context, id string) error

	// Search returns the entity references most similar to the embedding.
	Search(ctx context.Context, embedding []float32, limit int) ([]ScoredRef, error)

	// Close closes the connection.
	Close() error
}
