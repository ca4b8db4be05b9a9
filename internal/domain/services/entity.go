package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/omnsight/omndapi/internal/domain/entities"
	"github.com/omnsight/omndapi/internal/domain/ports"
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// EntityService manages typed entity records: creation with ID assignment,
// reads, updates, and cascade deletion. Every persisted entity is also
// indexed in the vector store for semantic search.
type EntityService struct {
	graphDB  ports.GraphDB
	vectorDB ports.VectorDB
	embedder ports.Embedder
	guard    Guard
}

// NewEntityService creates a new EntityService.
func NewEntityService(graphDB ports.GraphDB, vectorDB ports.VectorDB, embedder ports.Embedder) *EntityService {
	return &EntityService{
		graphDB:  graphDB,
		vectorDB: vectorDB,
		embedder: embedder,
	}
}

// Create validates the entity against the addressed kind, assigns an
// immutable ID and (when absent) a key, persists it, and indexes it for
// semantic search. The actor becomes the owner regardless of input. The
// returned record keeps the raw locale overlay; locale resolution happens on
// read.
func (s *EntityService) Create(ctx context.Context, actor entities.Identity, kind entities.Kind, input *entities.Entity) (*entities.Entity, error) {
	if err := s.guard.CanCreate(actor); err != nil {
		return nil, err
	}
	if input == nil {
		return nil, fmt.Errorf("%w: entity content missing", entities.ErrValidation)
	}
	if err := input.Validate(kind); err != nil {
		return nil, err
	}

	record := input.Clone()
	record.ID = uuid.New().String()
	if record.Key == "" {
		record.Key = uuid.New().String()
	}
	record.Owner = actor.Subject
	now := timeNow()
	record.CreatedAt = now
	record.UpdatedAt = now

	if err := s.graphDB.SaveEntity(ctx, record); err != nil {
		return nil, fmt.Errorf("saving entity: %w", err)
	}

	if err := s.indexEntity(ctx, record, kind); err != nil {
		// Roll back the row so a failed create leaves no partial state.
		_ = s.graphDB.DeleteEntityCascade(ctx, kind, record.Key)
		return nil, fmt.Errorf("indexing entity: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"actor": actor.Subject,
		"kind":  kind,
		"key":   record.Key,
	}).Info("entity created")

	return record, nil
}

// Get returns the entity addressed by (kind, key), subject to the read policy.
func (s *EntityService) Get(ctx context.Context, actor entities.Identity, kind entities.Kind, key string) (*entities.Entity, error) {
	entity, err := s.graphDB.FindEntityByKey(ctx, kind, key)
	if err != nil {
		return nil, err
	}
	if err := s.guard.CanRead(actor, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

// List returns entities of a kind in creation order, filtered to those the
// actor may read.
func (s *EntityService) List(ctx context.Context, actor entities.Identity, kind entities.Kind, limit, offset int) ([]*entities.Entity, error) {
	records, err := s.graphDB.ListEntities(ctx, kind, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}
	readable := make([]*entities.Entity, 0, len(records))
	for _, record := range records {
		if s.guard.CanRead(actor, record) == nil {
			readable = append(readable, record)
		}
	}
	return readable, nil
}

// Update replaces the record addressed by (kind, key) with the input, subject
// to the write policy. The ID, key, owner, variant kind, and creation time
// are immutable; when the actor is not the owner, the incoming read/write
// lists are ignored so that writers cannot grant themselves wider access.
func (s *EntityService) Update(ctx context.Context, actor entities.Identity, kind entities.Kind, key string, input *entities.Entity) (*entities.Entity, error) {
	existing, err := s.graphDB.FindEntityByKey(ctx, kind, key)
	if err != nil {
		return nil, err
	}
	if err := s.guard.CanWrite(actor, existing); err != nil {
		return nil, err
	}
	if input == nil {
		return nil, fmt.Errorf("%w: entity content missing", entities.ErrValidation)
	}
	if err := input.Validate(kind); err != nil {
		return nil, err
	}

	record := input.Clone()
	record.ID = existing.ID
	record.Key = existing.Key
	record.Owner = existing.Owner
	record.CreatedAt = existing.CreatedAt
	record.UpdatedAt = timeNow()
	if existing.Owner != actor.Subject {
		record.Read = cloneList(existing.Read)
		record.Write = cloneList(existing.Write)
	}

	if err := s.graphDB.UpdateEntity(ctx, record); err != nil {
		return nil, fmt.Errorf("updating entity: %w", err)
	}

	if err := s.indexEntity(ctx, record, kind); err != nil {
		return nil, fmt.Errorf("reindexing entity: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"actor": actor.Subject,
		"kind":  kind,
		"key":   key,
	}).Info("entity updated")

	return record, nil
}

// Delete removes the entity addressed by (kind, key) together with every
// relationship it is an endpoint of, as a single atomic unit (cascade
// policy). A second delete of the same key yields entities.ErrNotFound.
func (s *EntityService) Delete(ctx context.Context, actor entities.Identity, kind entities.Kind, key string) error {
	existing, err := s.graphDB.FindEntityByKey(ctx, kind, key)
	if err != nil {
		return err
	}
	if err := s.guard.CanDelete(actor, existing); err != nil {
		return err
	}

	if err := s.graphDB.DeleteEntityCascade(ctx, kind, key); err != nil {
		return fmt.Errorf("deleting entity: %w", err)
	}
	// The row is gone; a stale index point is dropped at search time, so a
	// failed removal here is logged rather than surfaced.
	if err := s.vectorDB.Delete(ctx, existing.ID); err != nil {
		logrus.WithFields(logrus.Fields{
			"kind": kind,
			"key":  key,
		}).WithError(err).Warn("removing entity from index failed")
	}

	logrus.WithFields(logrus.Fields{
		"actor": actor.Subject,
		"kind":  kind,
		"key":   key,
	}).Info("entity deleted")

	return nil
}

// SemanticSearch embeds the query text, searches the vector index, and
// returns the matching entities the actor may read, in score order.
func (s *EntityService) SemanticSearch(ctx context.Context, actor entities.Identity, query string, limit int) ([]*entities.Entity, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", entities.ErrValidation)
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	refs, err := s.vectorDB.Search(ctx, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	if len(refs) == 0 {
		return []*entities.Entity{}, nil
	}

	ids := make([]string, len(refs))
	for i, ref := range refs {
		ids[i] = ref.ID
	}
	records, err := s.graphDB.FindEntitiesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading entities: %w", err)
	}

	byID := make(map[string]*entities.Entity, len(records))
	for _, record := range records {
		byID[record.ID] = record
	}

	// Preserve score order and drop unreadable or stale hits.
	results := make([]*entities.Entity, 0, len(refs))
	for _, ref := range refs {
		record, ok := byID[ref.ID]
		if !ok {
			continue
		}
		if s.guard.CanRead(actor, record) == nil {
			results = append(results, record)
		}
	}
	return results, nil
}

// indexEntity writes the entity's embedding into the vector store.
func (s *EntityService) indexEntity(ctx context.Context, record *entities.Entity, kind entities.Kind) error {
	embedding, err := s.embedder.Embed(ctx, record.SearchText())
	if err != nil {
		return fmt.Errorf("generating embedding: %w", err)
	}
	return s.vectorDB.Save(ctx, ports.EntityPoint{
		ID:        record.ID,
		Kind:      kind,
		Key:       record.Key,
		Text:      record.SearchText(),
		Embedding: embedding,
	})
}

func cloneList(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
