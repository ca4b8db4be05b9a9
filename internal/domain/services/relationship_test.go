package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnsight/omndapi/internal/domain/entities"
	"github.com/omnsight/omndapi/internal/domain/mocks"
)

func newTestRelationshipService(t *testing.T) (*RelationshipService, *EntityService, *mocks.GraphDB) {
	t.Helper()
	graphDB := mocks.NewGraphDB()
	entitySvc := NewEntityService(graphDB, &mocks.VectorDB{}, &mocks.Embedder{})
	return NewRelationshipService(graphDB), entitySvc, graphDB
}

func TestRelationshipService_Create(t *testing.T) {
	t.Run("derives collection from endpoint kinds", func(t *testing.T) {
		relSvc, entitySvc, _ := newTestRelationshipService(t)
		ctx := context.Background()

		event, err := entitySvc.Create(ctx, testPro, entities.KindEvent, testEvent("fire-2024"))
		require.NoError(t, err)
		person, err := entitySvc.Create(ctx, testPro, entities.KindPerson, testPerson("jane-doe"))
		require.NoError(t, err)

		created, err := relSvc.Create(ctx, testPro, &entities.Relationship{
			From: event.ID,
			To:   person.ID,
			Name: "Temp Relation",
		})
		require.NoError(t, err)

		assert.Equal(t, "event_temp_relation_person", created.Collection)
		assert.Equal(t, "temp_relation", created.Name)
		assert.NotEmpty(t, created.ID)
		assert.NotEmpty(t, created.Key)
		assert.Equal(t, testPro.Subject, created.Owner)
		assert.False(t, created.CreatedAt.IsZero())
	})

	t.Run("missing from endpoint yields reference error", func(t *testing.T) {
		relSvc, entitySvc, _ := newTestRelationshipService(t)
		ctx := context.Background()

		person, err := entitySvc.Create(ctx, testPro, entities.KindPerson, testPerson("jane-doe"))
		require.NoError(t, err)

		_, err = relSvc.Create(ctx, testPro, &entities.Relationship{
			From: "no-such-id",
			To:   person.ID,
			Name: "participant",
		})
		assert.ErrorIs(t, err, entities.ErrReference)
	})

	t.Run("missing to endpoint yields reference error", func(t *testing.T) {
		relSvc, entitySvc, _ := newTestRelationshipService(t)
		ctx := context.Background()

		event, err := entitySvc.Create(ctx, testPro, entities.KindEvent, testEvent("fire-2024"))
		require.NoError(t, err)

		_, err = relSvc.Create(ctx, testPro, &entities.Relationship{
			From: event.ID,
			To:   "no-such-id",
			Name: "participant",
		})
		assert.ErrorIs(t, err, entities.ErrReference)
	})

	t.Run("rejects malformed key", func(t *testing.T) {
		relSvc, entitySvc, _ := newTestRelationshipService(t)
		ctx := context.Background()

		event, err := entitySvc.Create(ctx, testPro, entities.KindEvent, testEvent("fire-2024"))
		require.NoError(t, err)
		person, err := entitySvc.Create(ctx, testPro, entities.KindPerson, testPerson("jane-doe"))
		require.NoError(t, err)

		_, err = relSvc.Create(ctx, testPro, &entities.Relationship{
			From: event.ID, To: person.ID, Name: "participant", Key: "edge one/2024",
		})
		assert.ErrorIs(t, err, entities.ErrValidation)
	})

	t.Run("rejects empty endpoints", func(t *testing.T) {
		relSvc, _, _ := newTestRelationshipService(t)

		_, err := relSvc.Create(context.Background(), testPro, &entities.Relationship{Name: "participant"})
		assert.ErrorIs(t, err, entities.ErrValidation)
	})

	t.Run("rejects actor without create role", func(t *testing.T) {
		relSvc, _, _ := newTestRelationshipService(t)

		_, err := relSvc.Create(context.Background(), testViewer, &entities.Relationship{
			From: "a", To: "b", Name: "participant",
		})
		assert.ErrorIs(t, err, entities.ErrPermissionDenied)
	})

	t.Run("duplicate key in collection yields conflict", func(t *testing.T) {
		relSvc, entitySvc, _ := newTestRelationshipService(t)
		ctx := context.Background()

		event, err := entitySvc.Create(ctx, testPro, entities.KindEvent, testEvent("fire-2024"))
		require.NoError(t, err)
		person, err := entitySvc.Create(ctx, testPro, entities.KindPerson, testPerson("jane-doe"))
		require.NoError(t, err)

		_, err = relSvc.Create(ctx, testPro, &entities.Relationship{
			From: event.ID, To: person.ID, Name: "participant", Key: "edge-1",
		})
		require.NoError(t, err)

		_, err = relSvc.Create(ctx, testPro, &entities.Relationship{
			From: event.ID, To: person.ID, Name: "participant", Key: "edge-1",
		})
		assert.ErrorIs(t, err, entities.ErrConflict)
	})

	t.Run("parallel edges with distinct keys coexist", func(t *testing.T) {
		relSvc, entitySvc, graphDB := newTestRelationshipService(t)
		ctx := context.Background()

		event, err := entitySvc.Create(ctx, testPro, entities.KindEvent, testEvent("fire-2024"))
		require.NoError(t, err)
		person, err := entitySvc.Create(ctx, testPro, entities.KindPerson, testPerson("jane-doe"))
		require.NoError(t, err)

		for _, key := range []string{"edge-1", "edge-2"} {
			_, err = relSvc.Create(ctx, testPro, &entities.Relationship{
				From: event.ID, To: person.ID, Name: "participant", Key: key,
			})
			require.NoError(t, err)
		}
		assert.Len(t, graphDB.Relationships, 2)
	})
}

func TestRelationshipService_Get(t *testing.T) {
	relSvc, entitySvc, _ := newTestRelationshipService(t)
	ctx := context.Background()

	event, err := entitySvc.Create(ctx, testPro, entities.KindEvent, testEvent("fire-2024"))
	require.NoError(t, err)
	person, err := entitySvc.Create(ctx, testPro, entities.KindPerson, testPerson("jane-doe"))
	require.NoError(t, err)

	created, err := relSvc.Create(ctx, testPro, &entities.Relationship{
		From: event.ID, To: person.ID, Name: "participant", Key: "edge-1",
	})
	require.NoError(t, err)

	t.Run("owner reads edge", func(t *testing.T) {
		got, err := relSvc.Get(ctx, testPro, created.Collection, "edge-1")
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("stranger is denied", func(t *testing.T) {
		_, err := relSvc.Get(ctx, testViewer, created.Collection, "edge-1")
		assert.ErrorIs(t, err, entities.ErrPermissionDenied)
	})

	t.Run("unknown collection yields not found", func(t *testing.T) {
		_, err := relSvc.Get(ctx, testPro, "event_other_person", "edge-1")
		assert.ErrorIs(t, err, entities.ErrNotFound)
	})
}

func TestRelationshipService_Update(t *testing.T) {
	relSvc, entitySvc, _ := newTestRelationshipService(t)
	ctx := context.Background()

	event, err := entitySvc.Create(ctx, testPro, entities.KindEvent, testEvent("fire-2024"))
	require.NoError(t, err)
	person, err := entitySvc.Create(ctx, testPro, entities.KindPerson, testPerson("jane-doe"))
	require.NoError(t, err)

	created, err := relSvc.Create(ctx, testPro, &entities.Relationship{
		From: event.ID, To: person.ID, Name: "participant", Key: "edge-1",
	})
	require.NoError(t, err)

	t.Run("keeps identity fields", func(t *testing.T) {
		updated, err := relSvc.Update(ctx, testPro, created.Collection, "edge-1", &entities.Relationship{
			Name: "attempt to rename",
			Attributes: map[string]entities.RelationAttributes{
				"zh": {Name: "参与者"},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, created.Collection, updated.Collection)
		assert.Equal(t, "participant", updated.Name)
		assert.Equal(t, created.From, updated.From)
		assert.Equal(t, "参与者", updated.Attributes["zh"].Name)
	})

	t.Run("stranger is denied", func(t *testing.T) {
		_, err := relSvc.Update(ctx, testViewer, created.Collection, "edge-1", &entities.Relationship{})
		assert.ErrorIs(t, err, entities.ErrPermissionDenied)
	})
}

func TestRelationshipService_Delete(t *testing.T) {
	relSvc, entitySvc, graphDB := newTestRelationshipService(t)
	ctx := context.Background()

	event, err := entitySvc.Create(ctx, testPro, entities.KindEvent, testEvent("fire-2024"))
	require.NoError(t, err)
	person, err := entitySvc.Create(ctx, testPro, entities.KindPerson, testPerson("jane-doe"))
	require.NoError(t, err)

	created, err := relSvc.Create(ctx, testPro, &entities.Relationship{
		From: event.ID, To: person.ID, Name: "participant", Key: "edge-1",
	})
	require.NoError(t, err)

	require.NoError(t, relSvc.Delete(ctx, testPro, created.Collection, "edge-1"))
	assert.Empty(t, graphDB.Relationships)

	err = relSvc.Delete(ctx, testPro, created.Collection, "edge-1")
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestRelationshipService_CascadeOnEntityDelete(t *testing.T) {
	relSvc, entitySvc, graphDB := newTestRelationshipService(t)
	ctx := context.Background()

	event, err := entitySvc.Create(ctx, testPro, entities.KindEvent, testEvent("fire-2024"))
	require.NoError(t, err)
	person, err := entitySvc.Create(ctx, testPro, entities.KindPerson, testPerson("jane-doe"))
	require.NoError(t, err)

	created, err := relSvc.Create(ctx, testPro, &entities.Relationship{
		From: event.ID, To: person.ID, Name: "participant", Key: "edge-1",
	})
	require.NoError(t, err)

	require.NoError(t, entitySvc.Delete(ctx, testPro, entities.KindEvent, "fire-2024"))

	assert.Empty(t, graphDB.Relationships)
	_, err = relSvc.Get(ctx, testPro, created.Collection, "edge-1")
	assert.ErrorIs(t, err, entities.ErrNotFound)

	// The surviving endpoint is untouched.
	_, err = entitySvc.Get(ctx, testPro, entities.KindPerson, "jane-doe")
	assert.NoError(t, err)
}
