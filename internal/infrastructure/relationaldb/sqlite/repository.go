// Package sqlite provides a SQLite implementation of the GraphDB interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/omnsight/omndapi/internal/domain/entities"
	"github.com/omnsight/omndapi/internal/infrastructure/config"
)

// Repository implements ports.GraphDB using SQLite. Entities live in one
// table keyed by (kind, key); relationships live in another keyed by
// (collection, key), with the logical collection stored as a column.
type Repository struct {
	db   *sql.DB
	path string
}

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	// Pragmas ride the DSN so that every pooled connection gets them:
	// foreign keys for referential integrity, WAL for concurrent
	// read/write, and a busy timeout to avoid "database is locked"
	// errors when writers collide.
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", cfg.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Typed entity records. The variant payload is stored as JSON in
	-- details; kind selects which variant it decodes into.
	CREATE TABLE IF NOT EXISTS entities (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		key TEXT NOT NULL,
		owner TEXT NOT NULL,
		read_acl TEXT NOT NULL DEFAULT '[]',
		write_acl TEXT NOT NULL DEFAULT '[]',
		tags TEXT NOT NULL DEFAULT '[]',
		attributes TEXT NOT NULL DEFAULT '{}',
		details TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE(kind, key)
	);
	CREATE INDEX IF NOT EXISTS idx_entities_kind ON entities(kind, created_at);

	-- Directed relationships between entities.
	CREATE TABLE IF NOT EXISTS relationships (
		id TEXT PRIMARY KEY,
		collection TEXT NOT NULL,
		key TEXT NOT NULL,
		from_id TEXT NOT NULL,
		to_id TEXT NOT NULL,
		name TEXT NOT NULL,
		owner TEXT NOT NULL,
		read_acl TEXT NOT NULL DEFAULT '[]',
		write_acl TEXT NOT NULL DEFAULT '[]',
		attributes TEXT NOT NULL DEFAULT '{}',
		created_at TIMESTAMP NOT NULL,
		UNIQUE(collection, key)
	);
	CREATE INDEX IF NOT EXISTS idx_relationships_from ON relationships(from_id);
	CREATE INDEX IF NOT EXISTS idx_relationships_to ON relationships(to_id);
	CREATE INDEX IF NOT EXISTS idx_relationships_collection ON relationships(collection, created_at);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether the error is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Entity methods.

// SaveEntity persists a new entity row. A (kind, key) collision yields
// entities.ErrConflict.
func (r *Repository) SaveEntity(ctx context.Context, entity *entities.Entity) error {
	kind, err := entity.Kind()
	if err != nil {
		return err
	}
	cols, err := encodeEntityColumns(entity)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO entities (id, kind, key, owner, read_acl, write_acl, tags, attributes, details, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		entity.ID,
		string(kind),
		entity.Key,
		entity.Owner,
		cols.readACL,
		cols.writeACL,
		cols.tags,
		cols.attributes,
		cols.details,
		entity.CreatedAt,
		entity.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s/%s", entities.ErrConflict, kind, entity.Key)
	}
	if err != nil {
		return fmt.Errorf("saving entity: %w", err)
	}
	return nil
}

const entityColumns = "id, kind, key, owner, read_acl, write_acl, tags, attributes, details, created_at, updated_at"

// FindEntityByKey finds an entity by its kind and key.
func (r *Repository) FindEntityByKey(ctx context.Context, kind entities.Kind, key string) (*entities.Entity, error) {
	query := fmt.Sprintf("SELECT %s FROM entities WHERE kind = ? AND key = ?", entityColumns)
	entity, err := scanEntity(r.db.QueryRowContext(ctx, query, string(kind), key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", entities.ErrNotFound, kind, key)
	}
	return entity, err
}

// FindEntityByID finds an entity by its immutable ID.
func (r *Repository) FindEntityByID(ctx context.Context, id string) (*entities.Entity, error) {
	query := fmt.Sprintf("SELECT %s FROM entities WHERE id = ?", entityColumns)
	entity, err := scanEntity(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: entity %s", entities.ErrNotFound, id)
	}
	return entity, err
}

// FindEntitiesByIDs finds multiple entities by their IDs in a single query.
// Missing IDs are silently omitted from the result.
func (r *Repository) FindEntitiesByIDs(ctx context.Context, ids []string) ([]*entities.Entity, error) {
	if len(ids) == 0 {
		return []*entities.Entity{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf("SELECT %s FROM entities WHERE id IN (%s)",
		entityColumns, strings.Join(placeholders, ","))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}
	defer rows.Close()

	return collectEntities(rows)
}

// ListEntities lists entities of a kind in creation order with pagination.
// A non-positive limit lists everything.
func (r *Repository) ListEntities(ctx context.Context, kind entities.Kind, limit, offset int) ([]*entities.Entity, error) {
	if limit <= 0 {
		limit = -1
	}
	query := fmt.Sprintf(`
		SELECT %s FROM entities
		WHERE kind = ?
		ORDER BY created_at, id
		LIMIT ? OFFSET ?
	`, entityColumns)

	rows, err := r.db.QueryContext(ctx, query, string(kind), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}
	defer rows.Close()

	return collectEntities(rows)
}

// UpdateEntity overwrites an existing entity row addressed by its kind and key.
func (r *Repository) UpdateEntity(ctx context.Context, entity *entities.Entity) error {
	kind, err := entity.Kind()
	if err != nil {
		return err
	}
	cols, err := encodeEntityColumns(entity)
	if err != nil {
		return err
	}

	query := `
		UPDATE entities
		SET owner = ?, read_acl = ?, write_acl = ?, tags = ?, attributes = ?, details = ?, updated_at = ?
		WHERE kind = ? AND key = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		entity.Owner,
		cols.readACL,
		cols.writeACL,
		cols.tags,
		cols.attributes,
		cols.details,
		entity.UpdatedAt,
		string(kind),
		entity.Key,
	)
	if err != nil {
		return fmt.Errorf("updating entity: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating entity: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s/%s", entities.ErrNotFound, kind, entity.Key)
	}
	return nil
}

// DeleteEntityCascade removes an entity and every relationship it is an
// endpoint of, in one transaction.
func (r *Repository) DeleteEntityCascade(ctx context.Context, kind entities.Kind, key string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx, "SELECT id FROM entities WHERE kind = ? AND key = ?", string(kind), key).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s/%s", entities.ErrNotFound, kind, key)
	}
	if err != nil {
		return fmt.Errorf("resolving entity: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM relationships WHERE from_id = ? OR to_id = ?", id, id); err != nil {
		return fmt.Errorf("deleting relationships: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM entities WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting entity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}
	return nil
}

// CountEntities returns the number of entities of a kind.
func (r *Repository) CountEntities(ctx context.Context, kind entities.Kind) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entities WHERE kind = ?", string(kind)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting entities: %w", err)
	}
	return count, nil
}

// Relationship methods.

const relationshipColumns = "id, collection, key, from_id, to_id, name, owner, read_acl, write_acl, attributes, created_at"

// SaveRelationship persists a new relationship row. A (collection, key)
// collision yields entities.ErrConflict.
func (r *Repository) SaveRelationship(ctx context.Context, rel *entities.Relationship) error {
	readACL, writeACL, attributes, err := encodeRelationshipColumns(rel)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO relationships (id, collection, key, from_id, to_id, name, owner, read_acl, write_acl, attributes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		rel.ID,
		rel.Collection,
		rel.Key,
		rel.From,
		rel.To,
		rel.Name,
		rel.Owner,
		readACL,
		writeACL,
		attributes,
		rel.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s/%s", entities.ErrConflict, rel.Collection, rel.Key)
	}
	if err != nil {
		return fmt.Errorf("saving relationship: %w", err)
	}
	return nil
}

// FindRelationshipByKey finds a relationship by its collection and key.
func (r *Repository) FindRelationshipByKey(ctx context.Context, collection, key string) (*entities.Relationship, error) {
	query := fmt.Sprintf("SELECT %s FROM relationships WHERE collection = ? AND key = ?", relationshipColumns)
	rel, err := scanRelationship(r.db.QueryRowContext(ctx, query, collection, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", entities.ErrNotFound, collection, key)
	}
	return rel, err
}

// FindRelationshipsByEntity finds all relationships with the entity as either
// endpoint, in creation order.
func (r *Repository) FindRelationshipsByEntity(ctx context.Context, entityID string) ([]*entities.Relationship, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM relationships
		WHERE from_id = ? OR to_id = ?
		ORDER BY created_at, id
	`, relationshipColumns)

	rows, err := r.db.QueryContext(ctx, query, entityID, entityID)
	if err != nil {
		return nil, fmt.Errorf("querying relationships: %w", err)
	}
	defer rows.Close()

	return collectRelationships(rows)
}

// ListRelationships lists the relationships of a collection in creation order
// with pagination. An empty collection lists all relationships; a
// non-positive limit lists everything.
func (r *Repository) ListRelationships(ctx context.Context, collection string, limit, offset int) ([]*entities.Relationship, error) {
	if limit <= 0 {
		limit = -1
	}

	var rows *sql.Rows
	var err error
	if collection == "" {
		query := fmt.Sprintf("SELECT %s FROM relationships ORDER BY created_at, id LIMIT ? OFFSET ?", relationshipColumns)
		rows, err = r.db.QueryContext(ctx, query, limit, offset)
	} else {
		query := fmt.Sprintf("SELECT %s FROM relationships WHERE collection = ? ORDER BY created_at, id LIMIT ? OFFSET ?", relationshipColumns)
		rows, err = r.db.QueryContext(ctx, query, collection, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("listing relationships: %w", err)
	}
	defer rows.Close()

	return collectRelationships(rows)
}

// UpdateRelationship overwrites an existing relationship row addressed by its
// collection and key.
func (r *Repository) UpdateRelationship(ctx context.Context, rel *entities.Relationship) error {
	readACL, writeACL, attributes, err := encodeRelationshipColumns(rel)
	if err != nil {
		return err
	}

	query := `
		UPDATE relationships
		SET owner = ?, read_acl = ?, write_acl = ?, attributes = ?
		WHERE collection = ? AND key = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		rel.Owner,
		readACL,
		writeACL,
		attributes,
		rel.Collection,
		rel.Key,
	)
	if err != nil {
		return fmt.Errorf("updating relationship: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating relationship: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s/%s", entities.ErrNotFound, rel.Collection, rel.Key)
	}
	return nil
}

// DeleteRelationship removes a relationship by its collection and key.
func (r *Repository) DeleteRelationship(ctx context.Context, collection, key string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM relationships WHERE collection = ? AND key = ?", collection, key)
	if err != nil {
		return fmt.Errorf("deleting relationship: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting relationship: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s/%s", entities.ErrNotFound, collection, key)
	}
	return nil
}

// CountRelationships returns the total number of relationships.
func (r *Repository) CountRelationships(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM relationships").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting relationships: %w", err)
	}
	return count, nil
}
