package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnsight/omndapi/internal/domain/entities"
	"github.com/omnsight/omndapi/internal/domain/mocks"
)

func newTestSnapshotService(t *testing.T) (*SnapshotService, *EntityService, *RelationshipService) {
	t.Helper()
	graphDB := mocks.NewGraphDB()
	entitySvc := NewEntityService(graphDB, &mocks.VectorDB{}, &mocks.Embedder{})
	return NewSnapshotService(graphDB, entitySvc), entitySvc, NewRelationshipService(graphDB)
}

func TestParseConflictStrategy(t *testing.T) {
	for _, valid := range []string{"skip", "overwrite", "fail"} {
		got, err := ParseConflictStrategy(valid)
		require.NoError(t, err)
		assert.Equal(t, ConflictStrategy(valid), got)
	}

	got, err := ParseConflictStrategy("")
	require.NoError(t, err)
	assert.Equal(t, ConflictSkip, got)

	_, err = ParseConflictStrategy("merge")
	assert.ErrorIs(t, err, entities.ErrValidation)
}

func TestSnapshotService_Export(t *testing.T) {
	snapSvc, entitySvc, relSvc := newTestSnapshotService(t)
	ctx := context.Background()

	event, err := entitySvc.Create(ctx, testPro, entities.KindEvent, testEvent("fire-2024"))
	require.NoError(t, err)
	person, err := entitySvc.Create(ctx, testPro, entities.KindPerson, testPerson("jane-doe"))
	require.NoError(t, err)
	_, err = relSvc.Create(ctx, testPro, &entities.Relationship{
		From: event.ID, To: person.ID, Name: "participant", Key: "edge-1",
	})
	require.NoError(t, err)

	other := entities.Identity{Subject: "other-pro", Roles: []string{entities.RolePro}}
	hidden, err := entitySvc.Create(ctx, other, entities.KindPerson, testPerson("hidden-person"))
	require.NoError(t, err)
	_, err = relSvc.Create(ctx, other, &entities.Relationship{
		From: event.ID, To: hidden.ID, Name: "participant", Key: "edge-2",
	})
	require.NoError(t, err)

	t.Run("readable records only", func(t *testing.T) {
		snap, err := snapSvc.Export(ctx, testPro)
		require.NoError(t, err)

		require.Len(t, snap.Entities, 2)
		require.Len(t, snap.Relationships, 1)
		assert.Equal(t, "edge-1", snap.Relationships[0].Key)
	})

	t.Run("admin sees everything", func(t *testing.T) {
		snap, err := snapSvc.Export(ctx, testAdmin)
		require.NoError(t, err)

		assert.Len(t, snap.Entities, 3)
		assert.Len(t, snap.Relationships, 2)
	})
}

func TestSnapshotService_Import(t *testing.T) {
	buildSnapshot := func() *Snapshot {
		event := testEvent("fire-2024")
		event.ID = "ent-event"
		event.Owner = "importer"
		person := testPerson("jane-doe")
		person.ID = "ent-person"
		person.Owner = "importer"
		return &Snapshot{
			Entities: []*entities.Entity{event, person},
			Relationships: []*entities.Relationship{{
				ID:         "rel-1",
				Key:        "edge-1",
				Collection: "event_participant_person",
				From:       "ent-event",
				To:         "ent-person",
				Name:       "participant",
				Owner:      "importer",
			}},
		}
	}

	t.Run("preserves ids and keys", func(t *testing.T) {
		snapSvc, entitySvc, relSvc := newTestSnapshotService(t)
		ctx := context.Background()

		stats, err := snapSvc.Import(ctx, testAdmin, buildSnapshot(), ConflictSkip)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.EntitiesCreated)
		assert.Equal(t, 1, stats.RelationshipsCreated)

		got, err := entitySvc.Get(ctx, testAdmin, entities.KindEvent, "fire-2024")
		require.NoError(t, err)
		assert.Equal(t, "ent-event", got.ID)
		assert.Equal(t, "importer", got.Owner)

		rel, err := relSvc.Get(ctx, testAdmin, "event_participant_person", "edge-1")
		require.NoError(t, err)
		assert.Equal(t, "rel-1", rel.ID)
	})

	t.Run("requires admin", func(t *testing.T) {
		snapSvc, _, _ := newTestSnapshotService(t)

		_, err := snapSvc.Import(context.Background(), testPro, buildSnapshot(), ConflictSkip)
		assert.ErrorIs(t, err, entities.ErrPermissionDenied)
	})

	t.Run("skip leaves existing records", func(t *testing.T) {
		snapSvc, entitySvc, _ := newTestSnapshotService(t)
		ctx := context.Background()

		existing := testEvent("fire-2024")
		existing.Event.Title = "The original title"
		_, err := entitySvc.Create(ctx, testAdmin, entities.KindEvent, existing)
		require.NoError(t, err)

		stats, err := snapSvc.Import(ctx, testAdmin, buildSnapshot(), ConflictSkip)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.EntitiesSkipped)
		assert.Equal(t, 1, stats.EntitiesCreated)

		got, err := entitySvc.Get(ctx, testAdmin, entities.KindEvent, "fire-2024")
		require.NoError(t, err)
		assert.Equal(t, "The original title", got.Event.Title)
	})

	t.Run("overwrite replaces existing records", func(t *testing.T) {
		snapSvc, entitySvc, _ := newTestSnapshotService(t)
		ctx := context.Background()

		existing := testEvent("fire-2024")
		existing.Event.Title = "The original title"
		_, err := entitySvc.Create(ctx, testAdmin, entities.KindEvent, existing)
		require.NoError(t, err)

		stats, err := snapSvc.Import(ctx, testAdmin, buildSnapshot(), ConflictOverwrite)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.EntitiesOverwritten)

		got, err := entitySvc.Get(ctx, testAdmin, entities.KindEvent, "fire-2024")
		require.NoError(t, err)
		assert.Equal(t, "Warehouse fire", got.Event.Title)
	})

	t.Run("fail aborts on first collision", func(t *testing.T) {
		snapSvc, entitySvc, _ := newTestSnapshotService(t)
		ctx := context.Background()

		_, err := entitySvc.Create(ctx, testAdmin, entities.KindEvent, testEvent("fire-2024"))
		require.NoError(t, err)

		_, err = snapSvc.Import(ctx, testAdmin, buildSnapshot(), ConflictFail)
		assert.ErrorIs(t, err, entities.ErrConflict)
	})

	t.Run("dangling relationship yields reference error", func(t *testing.T) {
		snapSvc, _, _ := newTestSnapshotService(t)

		snap := buildSnapshot()
		snap.Entities = snap.Entities[:1] // drop the person
		_, err := snapSvc.Import(context.Background(), testAdmin, snap, ConflictSkip)
		assert.ErrorIs(t, err, entities.ErrReference)
	})
}
