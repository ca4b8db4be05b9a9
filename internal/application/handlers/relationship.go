package handlers

import (
	"context"

	"github.com/omnsight/omndapi/internal/domain/entities"
	"github.com/omnsight/omndapi/internal/domain/services"
)

// RelationshipHandler handles relationship operations.
type RelationshipHandler struct {
	service *services.RelationshipService
}

// NewRelationshipHandler creates a new RelationshipHandler.
func NewRelationshipHandler(service *services.RelationshipService) *RelationshipHandler {
	return &RelationshipHandler{service: service}
}

// HandleCreate creates a relationship between two entities. The collection is
// derived from the endpoint kinds and the normalized relation name.
func (h *RelationshipHandler) HandleCreate(ctx context.Context, actor entities.Identity, input *entities.Relationship) (*entities.Relationship, error) {
	return h.service.Create(ctx, actor, input)
}

// HandleGet returns the relationship addressed by collection and key, with
// the locale overlay applied when one is requested.
func (h *RelationshipHandler) HandleGet(ctx context.Context, actor entities.Identity, collection, key, locale string) (*entities.Relationship, error) {
	rel, err := h.service.Get(ctx, actor, collection, key)
	if err != nil {
		return nil, err
	}
	return entities.LocalizeRelationship(rel, locale), nil
}

// HandleList returns the relationships of a collection the actor may read,
// localized.
func (h *RelationshipHandler) HandleList(ctx context.Context, actor entities.Identity, collection, locale string, limit, offset int) ([]*entities.Relationship, error) {
	records, err := h.service.List(ctx, actor, collection, limit, offset)
	if err != nil {
		return nil, err
	}
	for i, record := range records {
		records[i] = entities.LocalizeRelationship(record, locale)
	}
	return records, nil
}

// HandleUpdate replaces the relationship addressed by collection and key.
func (h *RelationshipHandler) HandleUpdate(ctx context.Context, actor entities.Identity, collection, key string, input *entities.Relationship) (*entities.Relationship, error) {
	return h.service.Update(ctx, actor, collection, key, input)
}

// HandleDelete removes the relationship addressed by collection and key.
func (h *RelationshipHandler) HandleDelete(ctx context.Context, actor entities.Identity, collection, key string) error {
	return h.service.Delete(ctx, actor, collection, key)
}
