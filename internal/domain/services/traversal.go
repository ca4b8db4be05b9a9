package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/omnsight/omndapi/internal/domain/entities"
	"github.com/omnsight/omndapi/internal/domain/ports"
)

// DefaultTraversalDepth is applied when a filter does not set a depth.
const DefaultTraversalDepth = 1

// Filter narrows a traversal. Zero time bounds are unbounded; both bounds are
// inclusive. CountryCode and the time window apply to events only; a tag must
// appear on any matching entity's base tag list.
type Filter struct {
	StartTime   int64
	EndTime     int64
	CountryCode string
	Tag         string
	Depth       int
}

// TraversalResult holds the entities reachable from a start event together
// with the relationships whose endpoints were both admitted.
type TraversalResult struct {
	Entities      []*entities.Entity
	Relationships []*entities.Relationship
}

// TraversalService walks the relationship graph outward from an event.
type TraversalService struct {
	graphDB ports.GraphDB
	guard   Guard
}

// NewTraversalService creates a new TraversalService.
func NewTraversalService(graphDB ports.GraphDB) *TraversalService {
	return &TraversalService{graphDB: graphDB}
}

// ListEntitiesFromEvent performs a breadth-first walk from the event with the
// given key, following relationships in both directions up to filter.Depth
// hops. The start event itself is never part of the result but does anchor
// the relationship collection. Entities the actor may not read are skipped
// silently, as are entities failing the filter. When the start event itself
// fails the filter the result is empty.
func (s *TraversalService) ListEntitiesFromEvent(ctx context.Context, actor entities.Identity, eventKey string, filter Filter) (*TraversalResult, error) {
	start, err := s.graphDB.FindEntityByKey(ctx, entities.KindEvent, eventKey)
	if err != nil {
		return nil, err
	}
	if err := s.guard.CanRead(actor, start); err != nil {
		return nil, err
	}

	depth := filter.Depth
	if depth <= 0 {
		depth = DefaultTraversalDepth
	}

	if !matchesFilter(start, filter) {
		return &TraversalResult{}, nil
	}

	visited := map[string]bool{start.ID: true}
	admitted := map[string]bool{start.ID: true}
	frontier := []*entities.Entity{start}

	var result []*entities.Entity
	var edges []*entities.Relationship
	seenEdges := map[string]bool{}

	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		var next []*entities.Entity
		for _, node := range frontier {
			rels, err := s.graphDB.FindRelationshipsByEntity(ctx, node.ID)
			if err != nil {
				return nil, fmt.Errorf("expanding entity %s: %w", node.ID, err)
			}
			for _, rel := range rels {
				neighborID := rel.To
				if neighborID == node.ID {
					neighborID = rel.From
				}
				if visited[neighborID] {
					continue
				}
				visited[neighborID] = true

				neighbor, err := s.graphDB.FindEntityByID(ctx, neighborID)
				if err != nil {
					if errors.Is(err, entities.ErrNotFound) {
						continue
					}
					return nil, fmt.Errorf("resolving entity %s: %w", neighborID, err)
				}
				if s.guard.CanRead(actor, neighbor) != nil {
					continue
				}
				if !matchesFilter(neighbor, filter) {
					continue
				}
				admitted[neighbor.ID] = true
				next = append(next, neighbor)
			}
		}
		sortEntities(next)
		result = append(result, next...)
		frontier = next
	}

	// Collect the edges connecting admitted nodes, in the creation order of
	// the node they were discovered from.
	for _, node := range append([]*entities.Entity{start}, result...) {
		rels, err := s.graphDB.FindRelationshipsByEntity(ctx, node.ID)
		if err != nil {
			return nil, fmt.Errorf("collecting relationships of %s: %w", node.ID, err)
		}
		for _, rel := range rels {
			if seenEdges[rel.ID] {
				continue
			}
			if admitted[rel.From] && admitted[rel.To] {
				seenEdges[rel.ID] = true
				edges = append(edges, rel)
			}
		}
	}

	return &TraversalResult{Entities: result, Relationships: edges}, nil
}

// matchesFilter reports whether an entity passes the traversal filter. The
// country and time bounds constrain events only; non-events always pass them.
func matchesFilter(e *entities.Entity, filter Filter) bool {
	if filter.Tag != "" && !slices.Contains(e.Tags, filter.Tag) {
		return false
	}
	if e.Event == nil {
		return true
	}
	if filter.CountryCode != "" {
		if e.Event.Location == nil || e.Event.Location.CountryCode != filter.CountryCode {
			return false
		}
	}
	if filter.StartTime != 0 && e.Event.HappenedAt < filter.StartTime {
		return false
	}
	if filter.EndTime != 0 && e.Event.HappenedAt > filter.EndTime {
		return false
	}
	return true
}

// sortEntities orders a layer by CreatedAt with ID as the tiebreaker,
// matching the order the store lists entities in.
func sortEntities(list []*entities.Entity) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}
