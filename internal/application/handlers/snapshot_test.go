package handlers

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnsight/omndapi/internal/domain/entities"
	"github.com/omnsight/omndapi/internal/domain/mocks"
	"github.com/omnsight/omndapi/internal/domain/services"
)

type snapshotTestEnv struct {
	snapshot      *SnapshotHandler
	entity        *EntityHandler
	relationships *RelationshipHandler
}

func newSnapshotTestEnv() *snapshotTestEnv {
	graphDB := mocks.NewGraphDB()
	entitySvc := services.NewEntityService(graphDB, &mocks.VectorDB{}, &mocks.Embedder{})
	return &snapshotTestEnv{
		snapshot:      NewSnapshotHandler(services.NewSnapshotService(graphDB, entitySvc)),
		entity:        NewEntityHandler(entitySvc),
		relationships: NewRelationshipHandler(services.NewRelationshipService(graphDB)),
	}
}

func TestSnapshotHandler_RoundTrip(t *testing.T) {
	source := newSnapshotTestEnv()
	ctx := context.Background()

	event, err := source.entity.HandleCreate(ctx, testActor, "event", &entities.Entity{
		Key:   "fire-2024",
		Event: &entities.EventDetails{Title: "Warehouse fire"},
	})
	require.NoError(t, err)
	person, err := source.entity.HandleCreate(ctx, testActor, "person", &entities.Entity{
		Key:    "jane-doe",
		Person: &entities.PersonDetails{Name: "Jane Doe"},
	})
	require.NoError(t, err)
	rel, err := source.relationships.HandleCreate(ctx, testActor, &entities.Relationship{
		From: event.ID, To: person.ID, Name: "participant",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, source.snapshot.HandleExport(ctx, testActor, &buf))

	target := newSnapshotTestEnv()
	stats, err := target.snapshot.HandleImport(ctx, testActor, &buf, "skip")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.EntitiesCreated)
	assert.Equal(t, 1, stats.RelationshipsCreated)

	restored, err := target.entity.HandleGet(ctx, testActor, "event", "fire-2024", "")
	require.NoError(t, err)
	assert.Equal(t, event.ID, restored.ID)

	restoredRel, err := target.relationships.HandleGet(ctx, testActor, rel.Collection, rel.Key, "")
	require.NoError(t, err)
	assert.Equal(t, rel.ID, restoredRel.ID)
}

func TestSnapshotHandler_HandleImport_BadInput(t *testing.T) {
	env := newSnapshotTestEnv()

	_, err := env.snapshot.HandleImport(context.Background(), testActor, bytes.NewBufferString("not json"), "skip")
	assert.ErrorIs(t, err, entities.ErrValidation)

	_, err = env.snapshot.HandleImport(context.Background(), testActor, bytes.NewBufferString("{}"), "merge")
	assert.ErrorIs(t, err, entities.ErrValidation)
}
