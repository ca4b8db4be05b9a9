package handlers

import (
	"context"

	"github.com/omnsight/omndapi/internal/domain/entities"
	"github.com/omnsight/omndapi/internal/domain/services"
)

// TraversalHandler handles graph traversal queries.
type TraversalHandler struct {
	service *services.TraversalService
}

// NewTraversalHandler creates a new TraversalHandler.
func NewTraversalHandler(service *services.TraversalService) *TraversalHandler {
	return &TraversalHandler{service: service}
}

// HandleListFromEvent walks the graph outward from an event and returns the
// reachable entities and their connecting relationships, localized.
func (h *TraversalHandler) HandleListFromEvent(ctx context.Context, actor entities.Identity, eventKey, locale string, filter services.Filter) (*services.TraversalResult, error) {
	result, err := h.service.ListEntitiesFromEvent(ctx, actor, eventKey, filter)
	if err != nil {
		return nil, err
	}
	for i, record := range result.Entities {
		result.Entities[i] = entities.Localize(record, locale)
	}
	for i, rel := range result.Relationships {
		result.Relationships[i] = entities.LocalizeRelationship(rel, locale)
	}
	return result, nil
}
