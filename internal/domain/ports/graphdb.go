package ports

import (
	"context"

	"github.com/omnsight/omndapi/internal/domain/entities"
)

// GraphDB defines the interface for the graph store: typed entity records and
// the directed relationships between them. Implementations report absent
// records as entities.ErrNotFound and duplicate keys as entities.ErrConflict
// so that callers can distinguish outcomes without knowing the backend.
type GraphDB interface {
	// EnsureSchema creates the storage schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Close closes the database connection.
	Close() error

	// Entity operations

	// SaveEntity persists a new entity. The (kind, key) pair must be free;
	// a duplicate yields entities.ErrConflict.
	SaveEntity(ctx context.Context, entity *entities.Entity) error

	// FindEntityByKey finds an entity by its kind and key.
	FindEntityByKey(ctx context.Context, kind entities.Kind, key string) (*entities.Entity, error)

	// FindEntityByID finds an entity by its immutable ID.
	FindEntityByID(ctx context.Context, id string) (*entities.Entity, error)

	// FindEntitiesByIDs finds multiple entities by ID in a single query.
	// Missing IDs are silently omitted from the result.
	FindEntitiesByIDs(ctx context.Context, ids []string) ([]*entities.Entity, error)

	// ListEntities lists entities of a kind in creation order with pagination.
	ListEntities(ctx context.Context, kind entities.Kind, limit, offset int) ([]*entities.Entity, error)

	// UpdateEntity overwrites an existing entity addressed by its kind and key.
	UpdateEntity(ctx context.Context, entity *entities.Entity) error

	// DeleteEntityCascade removes an entity and every relationship it is an
	// endpoint of, as a single atomic unit.
	DeleteEntityCascade(ctx context.Context, kind entities.Kind, key string) error

	// CountEntities returns the number of entities of a kind.
	CountEntities(ctx context.Context, kind entities.Kind) (int, error)

	// Relationship operations

	// SaveRelationship persists a new relationship. The (collection, key)
	// pair must be free; a duplicate yields entities.ErrConflict.
	SaveRelationship(ctx context.Context, rel *entities.Relationship) error

	// FindRelationshipByKey finds a relationship by its collection and key.
	FindRelationshipByKey(ctx context.Context, collection, key string) (*entities.Relationship, error)

	// FindRelationshipsByEntity finds all relationships with the entity as
	// either endpoint, in creation order.
	FindRelationshipsByEntity(ctx context.Context, entityID string) ([]*entities.Relationship, error)

	// ListRelationships lists the relationships of a collection in creation
	// order with pagination. An empty collection lists all relationships.
	ListRelationships(ctx context.Context, collection string, limit, offset int) ([]*entities.Relationship, error)

	// UpdateRelationship overwrites an existing relationship addressed by its
	// collection and key.
	UpdateRelationship(ctx context.Context, rel *entities.Relationship) error

	// DeleteRelationship removes a relationship by its collection and key.
	DeleteRelationship(ctx context.Context, collection, key string) error

	// CountRelationships returns the total number of relationships.
	CountRelationships(ctx context.Context) (int, error)
}
