// Package handlers orchestrates the domain services behind the transport
// layer: string inputs are parsed, locale overlays are resolved on reads, and
// the results come back as plain domain records.
package handlers

import (
	"context"

	"github.com/omnsight/omndapi/internal/domain/entities"
	"github.com/omnsight/omndapi/internal/domain/services"
)

// EntityHandler handles entity operations.
type EntityHandler struct {
	service *services.EntityService
}

// NewEntityHandler creates a new EntityHandler.
func NewEntityHandler(service *services.EntityService) *EntityHandler {
	return &EntityHandler{service: service}
}

// HandleCreate creates a new entity of the named kind.
func (h *EntityHandler) HandleCreate(ctx context.Context, actor entities.Identity, kindName string, input *entities.Entity) (*entities.Entity, error) {
	kind, err := entities.ParseKind(kindName)
	if err != nil {
		return nil, err
	}
	return h.service.Create(ctx, actor, kind, input)
}

// HandleGet returns the entity addressed by kind and key, with the locale
// overlay applied when one is requested.
func (h *EntityHandler) HandleGet(ctx context.Context, actor entities.Identity, kindName, key, locale string) (*entities.Entity, error) {
	kind, err := entities.ParseKind(kindName)
	if err != nil {
		return nil, err
	}
	entity, err := h.service.Get(ctx, actor, kind, key)
	if err != nil {
		return nil, err
	}
	return entities.Localize(entity, locale), nil
}

// HandleList returns entities of a kind the actor may read, localized.
func (h *EntityHandler) HandleList(ctx context.Context, actor entities.Identity, kindName, locale string, limit, offset int) ([]*entities.Entity, error) {
	kind, err := entities.ParseKind(kindName)
	if err != nil {
		return nil, err
	}
	records, err := h.service.List(ctx, actor, kind, limit, offset)
	if err != nil {
		return nil, err
	}
	for i, record := range records {
		records[i] = entities.Localize(record, locale)
	}
	return records, nil
}

// HandleUpdate replaces the entity addressed by kind and key.
func (h *EntityHandler) HandleUpdate(ctx context.Context, actor entities.Identity, kindName, key string, input *entities.Entity) (*entities.Entity, error) {
	kind, err := entities.ParseKind(kindName)
	if err != nil {
		return nil, err
	}
	return h.service.Update(ctx, actor, kind, key, input)
}

// HandleDelete removes the entity addressed by kind and key together with
// its relationships.
func (h *EntityHandler) HandleDelete(ctx context.Context, actor entities.Identity, kindName, key string) error {
	kind, err := entities.ParseKind(kindName)
	if err != nil {
		return err
	}
	return h.service.Delete(ctx, actor, kind, key)
}

// HandleSearch runs a semantic search over the indexed entities.
func (h *EntityHandler) HandleSearch(ctx context.Context, actor entities.Identity, query, locale string, limit int) ([]*entities.Entity, error) {
	if limit <= 0 {
		limit = 10
	}
	records, err := h.service.SemanticSearch(ctx, actor, query, limit)
	if err != nil {
		return nil, err
	}
	for i, record := range records {
		records[i] = entities.Localize(record, locale)
	}
	return records, nil
}
