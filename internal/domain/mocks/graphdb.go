// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"fmt"

	"github.com/omnsight/omndapi/internal/domain/entities"
)

// GraphDB is a mock implementation of ports.GraphDB. Records live in slices
// so that lists come back in insertion order, mirroring the creation-order
// guarantee of the real store.
type GraphDB struct {
	Entities      []*entities.Entity
	Relationships []*entities.Relationship
	Err           error
}

// NewGraphDB creates a new mock GraphDB.
func NewGraphDB() *GraphDB {
	return &GraphDB{}
}

// EnsureSchema creates the storage schema if it doesn't exist.
func (m *GraphDB) EnsureSchema(_ context.Context) error {
	return m.Err
}

// Close closes the database connection.
func (m *GraphDB) Close() error {
	return nil
}

// Entity methods.

// SaveEntity persists a new entity.
func (m *GraphDB) SaveEntity(_ context.Context, entity *entities.Entity) error {
	if m.Err != nil {
		return m.Err
	}
	kind, err := entity.Kind()
	if err != nil {
		return err
	}
	for _, existing := range m.Entities {
		existingKind, _ := existing.Kind()
		if existingKind == kind && existing.Key == entity.Key {
			return fmt.Errorf("%w: %s/%s", entities.ErrConflict, kind, entity.Key)
		}
	}
	m.Entities = append(m.Entities, entity.Clone())
	return nil
}

// FindEntityByKey finds an entity by its kind and key.
func (m *GraphDB) FindEntityByKey(_ context.Context, kind entities.Kind, key string) (*entities.Entity, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, existing := range m.Entities {
		existingKind, _ := existing.Kind()
		if existingKind == kind && existing.Key == key {
			return existing.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", entities.ErrNotFound, kind, key)
}

// FindEntityByID finds an entity by its immutable ID.
func (m *GraphDB) FindEntityByID(_ context.Context, id string) (*entities.Entity, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, existing := range m.Entities {
		if existing.ID == id {
			return existing.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: entity %s", entities.ErrNotFound, id)
}

// FindEntitiesByIDs finds multiple entities by ID; missing IDs are omitted.
func (m *GraphDB) FindEntitiesByIDs(_ context.Context, ids []string) ([]*entities.Entity, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []*entities.Entity
	for _, id := range ids {
		for _, existing := range m.Entities {
			if existing.ID == id {
				result = append(result, existing.Clone())
				break
			}
		}
	}
	return result, nil
}

// ListEntities lists entities of a kind in insertion order.
func (m *GraphDB) ListEntities(_ context.Context, kind entities.Kind, limit, offset int) ([]*entities.Entity, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []*entities.Entity
	for _, existing := range m.Entities {
		existingKind, _ := existing.Kind()
		if existingKind == kind {
			result = append(result, existing.Clone())
		}
	}
	if offset > 0 {
		if offset >= len(result) {
			return nil, nil
		}
		result = result[offset:]
	}
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

// UpdateEntity overwrites an existing entity addressed by its kind and key.
func (m *GraphDB) UpdateEntity(_ context.Context, entity *entities.Entity) error {
	if m.Err != nil {
		return m.Err
	}
	kind, err := entity.Kind()
	if err != nil {
		return err
	}
	for i, existing := range m.Entities {
		existingKind, _ := existing.Kind()
		if existingKind == kind && existing.Key == entity.Key {
			m.Entities[i] = entity.Clone()
			return nil
		}
	}
	return fmt.Errorf("%w: %s/%s", entities.ErrNotFound, kind, entity.Key)
}

// DeleteEntityCascade removes an entity and every relationship touching it.
func (m *GraphDB) DeleteEntityCascade(_ context.Context, kind entities.Kind, key string) error {
	if m.Err != nil {
		return m.Err
	}
	for i, existing := range m.Entities {
		existingKind, _ := existing.Kind()
		if existingKind != kind || existing.Key != key {
			continue
		}
		id := existing.ID
		m.Entities = append(m.Entities[:i], m.Entities[i+1:]...)
		kept := m.Relationships[:0]
		for _, rel := range m.Relationships {
			if rel.From != id && rel.To != id {
				kept = append(kept, rel)
			}
		}
		m.Relationships = kept
		return nil
	}
	return fmt.Errorf("%w: %s/%s", entities.ErrNotFound, kind, key)
}

// CountEntities returns the number of entities of a kind.
func (m *GraphDB) CountEntities(_ context.Context, kind entities.Kind) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	count := 0
	for _, existing := range m.Entities {
		existingKind, _ := existing.Kind()
		if existingKind == kind {
			count++
		}
	}
	return count, nil
}

// Relationship methods.

// SaveRelationship persists a new relationship.
func (m *GraphDB) SaveRelationship(_ context.Context, rel *entities.Relationship) error {
	if m.Err != nil {
		return m.Err
	}
	for _, existing := range m.Relationships {
		if existing.Collection == rel.Collection && existing.Key == rel.Key {
			return fmt.Errorf("%w: %s/%s", entities.ErrConflict, rel.Collection, rel.Key)
		}
	}
	m.Relationships = append(m.Relationships, rel.Clone())
	return nil
}

// FindRelationshipByKey finds a relationship by its collection and key.
func (m *GraphDB) FindRelationshipByKey(_ context.Context, collection, key string) (*entities.Relationship, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, existing := range m.Relationships {
		if existing.Collection == collection && existing.Key == key {
			return existing.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", entities.ErrNotFound, collection, key)
}

// FindRelationshipsByEntity finds all relationships with the entity as either
// endpoint, in insertion order.
func (m *GraphDB) FindRelationshipsByEntity(_ context.Context, entityID string) ([]*entities.Relationship, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []*entities.Relationship
	for _, existing := range m.Relationships {
		if existing.From == entityID || existing.To == entityID {
			result = append(result, existing.Clone())
		}
	}
	return result, nil
}

// ListRelationships lists the relationships of a collection in insertion
// order. An empty collection lists everything.
func (m *GraphDB) ListRelationships(_ context.Context, collection string, limit, offset int) ([]*entities.Relationship, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []*entities.Relationship
	for _, existing := range m.Relationships {
		if collection == "" || existing.Collection == collection {
			result = append(result, existing.Clone())
		}
	}
	if offset > 0 {
		if offset >= len(result) {
			return nil, nil
		}
		result = result[offset:]
	}
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

// UpdateRelationship overwrites an existing relationship.
func (m *GraphDB) UpdateRelationship(_ context.Context, rel *entities.Relationship) error {
	if m.Err != nil {
		return m.Err
	}
	for i, existing := range m.Relationships {
		if existing.Collection == rel.Collection && existing.Key == rel.Key {
			m.Relationships[i] = rel.Clone()
			return nil
		}
	}
	return fmt.Errorf("%w: %s/%s", entities.ErrNotFound, rel.Collection, rel.Key)
}

// DeleteRelationship removes a relationship by its collection and key.
func (m *GraphDB) DeleteRelationship(_ context.Context, collection, key string) error {
	if m.Err != nil {
		return m.Err
	}
	for i, existing := range m.Relationships {
		if existing.Collection == collection && existing.Key == key {
			m.Relationships = append(m.Relationships[:i], m.Relationships[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s/%s", entities.ErrNotFound, collection, key)
}

// CountRelationships returns the total number of relationships.
func (m *GraphDB) CountRelationships(_ context.Context) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return len(m.Relationships), nil
}
