package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/omnsight/omndapi/internal/domain/entities"
	"github.com/omnsight/omndapi/internal/domain/ports"
)

// RelationshipService manages directed, typed edges between entities. Edges
// live in logical collections named {fromKind}_{name}_{toKind}; the
// (collection, key) pair is the uniqueness boundary, so multiple edges with
// the same name between the same ordered pair are distinct records.
type RelationshipService struct {
	graphDB ports.GraphDB
	guard   Guard
}

// NewRelationshipService creates a new RelationshipService.
func NewRelationshipService(graphDB ports.GraphDB) *RelationshipService {
	return &RelationshipService{graphDB: graphDB}
}

// Create validates that both endpoints exist, derives the collection name
// from the endpoint kinds and the normalized relation name, assigns an ID and
// (when absent) a key, and persists the edge. A missing endpoint yields
// entities.ErrReference.
func (s *RelationshipService) Create(ctx context.Context, actor entities.Identity, input *entities.Relationship) (*entities.Relationship, error) {
	if err := s.guard.CanCreate(actor); err != nil {
		return nil, err
	}
	if input == nil {
		return nil, fmt.Errorf("%w: relationship content missing", entities.ErrValidation)
	}
	if input.From == "" || input.To == "" {
		return nil, fmt.Errorf("%w: relationship endpoints are required", entities.ErrValidation)
	}
	if input.Key != "" && !entities.ValidKey(input.Key) {
		return nil, fmt.Errorf("%w: key %q is not a valid slug", entities.ErrValidation, input.Key)
	}

	from, err := s.graphDB.FindEntityByID(ctx, input.From)
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return nil, fmt.Errorf("%w: from entity %s", entities.ErrReference, input.From)
		}
		return nil, fmt.Errorf("resolving from entity: %w", err)
	}
	to, err := s.graphDB.FindEntityByID(ctx, input.To)
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return nil, fmt.Errorf("%w: to entity %s", entities.ErrReference, input.To)
		}
		return nil, fmt.Errorf("resolving to entity: %w", err)
	}

	fromKind, err := from.Kind()
	if err != nil {
		return nil, err
	}
	toKind, err := to.Kind()
	if err != nil {
		return nil, err
	}

	name, err := entities.NormalizeRelationName(input.Name)
	if err != nil {
		return nil, err
	}
	collection, err := entities.CollectionName(fromKind, name, toKind)
	if err != nil {
		return nil, err
	}

	record := input.Clone()
	record.ID = uuid.New().String()
	if record.Key == "" {
		record.Key = uuid.New().String()
	}
	record.Collection = collection
	record.Name = name
	record.Owner = actor.Subject
	record.CreatedAt = timeNow()

	if err := s.graphDB.SaveRelationship(ctx, record); err != nil {
		return nil, fmt.Errorf("saving relationship: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"actor":      actor.Subject,
		"collection": collection,
		"from":       record.From,
		"to":         record.To,
	}).Info("relationship created")

	return record, nil
}

// Get returns the relationship addressed by (collection, key), subject to the
// read policy.
func (s *RelationshipService) Get(ctx context.Context, actor entities.Identity, collection, key string) (*entities.Relationship, error) {
	rel, err := s.graphDB.FindRelationshipByKey(ctx, collection, key)
	if err != nil {
		return nil, err
	}
	if err := s.guard.CanRead(actor, rel); err != nil {
		return nil, err
	}
	return rel, nil
}

// List returns the relationships of a collection in creation order, filtered
// to those the actor may read.
func (s *RelationshipService) List(ctx context.Context, actor entities.Identity, collection string, limit, offset int) ([]*entities.Relationship, error) {
	records, err := s.graphDB.ListRelationships(ctx, collection, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing relationships: %w", err)
	}
	readable := make([]*entities.Relationship, 0, len(records))
	for _, record := range records {
		if s.guard.CanRead(actor, record) == nil {
			readable = append(readable, record)
		}
	}
	return readable, nil
}

// Update replaces the relationship's mutable fields, subject to the write
// policy. The ID, key, collection, endpoints, relation name, owner, and
// creation time are immutable; when the actor is not the owner, the incoming
// read/write lists are ignored.
func (s *RelationshipService) Update(ctx context.Context, actor entities.Identity, collection, key string, input *entities.Relationship) (*entities.Relationship, error) {
	existing, err := s.graphDB.FindRelationshipByKey(ctx, collection, key)
	if err != nil {
		return nil, err
	}
	if err := s.guard.CanWrite(actor, existing); err != nil {
		return nil, err
	}
	if input == nil {
		return nil, fmt.Errorf("%w: relationship content missing", entities.ErrValidation)
	}

	record := input.Clone()
	record.ID = existing.ID
	record.Key = existing.Key
	record.Collection = existing.Collection
	record.From = existing.From
	record.To = existing.To
	record.Name = existing.Name
	record.Owner = existing.Owner
	record.CreatedAt = existing.CreatedAt
	if existing.Owner != actor.Subject {
		record.Read = cloneList(existing.Read)
		record.Write = cloneList(existing.Write)
	}

	if err := s.graphDB.UpdateRelationship(ctx, record); err != nil {
		return nil, fmt.Errorf("updating relationship: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"actor":      actor.Subject,
		"collection": collection,
		"key":        key,
	}).Info("relationship updated")

	return record, nil
}

// Delete removes the relationship addressed by (collection, key), subject to
// the write policy. An absent record yields entities.ErrNotFound, including
// after a cascade triggered by an endpoint deletion.
func (s *RelationshipService) Delete(ctx context.Context, actor entities.Identity, collection, key string) error {
	existing, err := s.graphDB.FindRelationshipByKey(ctx, collection, key)
	if err != nil {
		return err
	}
	if err := s.guard.CanDelete(actor, existing); err != nil {
		return err
	}

	if err := s.graphDB.DeleteRelationship(ctx, collection, key); err != nil {
		return fmt.Errorf("deleting relationship: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"actor":      actor.Subject,
		"collection": collection,
		"key":        key,
	}).Info("relationship deleted")

	return nil
}

// Count returns the total number of relationships.
func (s *RelationshipService) Count(ctx context.Context) (int, error) {
	return s.graphDB.CountRelationships(ctx)
}
