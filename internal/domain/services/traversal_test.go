package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnsight/omndapi/internal/domain/entities"
	"github.com/omnsight/omndapi/internal/domain/mocks"
)

// traversalFixture wires an entity, relationship, and traversal service over
// one shared mock store and provides shorthand for building graphs.
type traversalFixture struct {
	t         *testing.T
	ctx       context.Context
	entities  *EntityService
	relations *RelationshipService
	traversal *TraversalService
}

func newTraversalFixture(t *testing.T) *traversalFixture {
	t.Helper()
	graphDB := mocks.NewGraphDB()
	return &traversalFixture{
		t:         t,
		ctx:       context.Background(),
		entities:  NewEntityService(graphDB, &mocks.VectorDB{}, &mocks.Embedder{}),
		relations: NewRelationshipService(graphDB),
		traversal: NewTraversalService(graphDB),
	}
}

func (f *traversalFixture) addEntity(actor entities.Identity, kind entities.Kind, e *entities.Entity) *entities.Entity {
	f.t.Helper()
	created, err := f.entities.Create(f.ctx, actor, kind, e)
	require.NoError(f.t, err)
	return created
}

func (f *traversalFixture) connect(actor entities.Identity, from, to *entities.Entity, name string) *entities.Relationship {
	f.t.Helper()
	created, err := f.relations.Create(f.ctx, actor, &entities.Relationship{
		From: from.ID,
		To:   to.ID,
		Name: name,
	})
	require.NoError(f.t, err)
	return created
}

func keysOf(list []*entities.Entity) []string {
	keys := make([]string, len(list))
	for i, e := range list {
		keys[i] = e.Key
	}
	return keys
}

func TestTraversalService_ListEntitiesFromEvent(t *testing.T) {
	t.Run("depth one returns direct neighbors without the start", func(t *testing.T) {
		f := newTraversalFixture(t)

		event := f.addEntity(testPro, entities.KindEvent, testEvent("fire-2024"))
		person := f.addEntity(testPro, entities.KindPerson, testPerson("jane-doe"))
		org := f.addEntity(testPro, entities.KindOrganization, &entities.Entity{
			Key:          "acme",
			Organization: &entities.OrganizationDetails{Name: "Acme Corp"},
		})
		f.connect(testPro, event, person, "participant")
		f.connect(testPro, org, event, "organizer")

		result, err := f.traversal.ListEntitiesFromEvent(f.ctx, testPro, "fire-2024", Filter{Depth: 1})
		require.NoError(t, err)

		assert.ElementsMatch(t, []string{"jane-doe", "acme"}, keysOf(result.Entities))
		assert.Len(t, result.Relationships, 2)
	})

	t.Run("depth bounds the walk", func(t *testing.T) {
		f := newTraversalFixture(t)

		event := f.addEntity(testPro, entities.KindEvent, testEvent("fire-2024"))
		person := f.addEntity(testPro, entities.KindPerson, testPerson("jane-doe"))
		org := f.addEntity(testPro, entities.KindOrganization, &entities.Entity{
			Key:          "acme",
			Organization: &entities.OrganizationDetails{Name: "Acme Corp"},
		})
		f.connect(testPro, event, person, "participant")
		f.connect(testPro, person, org, "employee")

		depth1, err := f.traversal.ListEntitiesFromEvent(f.ctx, testPro, "fire-2024", Filter{Depth: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{"jane-doe"}, keysOf(depth1.Entities))
		assert.Len(t, depth1.Relationships, 1)

		depth2, err := f.traversal.ListEntitiesFromEvent(f.ctx, testPro, "fire-2024", Filter{Depth: 2})
		require.NoError(t, err)
		assert.Equal(t, []string{"jane-doe", "acme"}, keysOf(depth2.Entities))
		assert.Len(t, depth2.Relationships, 2)
	})

	t.Run("zero depth falls back to the default", func(t *testing.T) {
		f := newTraversalFixture(t)

		event := f.addEntity(testPro, entities.KindEvent, testEvent("fire-2024"))
		person := f.addEntity(testPro, entities.KindPerson, testPerson("jane-doe"))
		f.connect(testPro, event, person, "participant")

		result, err := f.traversal.ListEntitiesFromEvent(f.ctx, testPro, "fire-2024", Filter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"jane-doe"}, keysOf(result.Entities))
	})

	t.Run("tag filter applies to every entity", func(t *testing.T) {
		f := newTraversalFixture(t)

		start := testEvent("fire-2024")
		start.Tags = []string{"Supply Chain"}
		event := f.addEntity(testPro, entities.KindEvent, start)

		tagged := testPerson("jane-doe")
		tagged.Tags = []string{"Supply Chain"}
		person := f.addEntity(testPro, entities.KindPerson, tagged)
		other := f.addEntity(testPro, entities.KindPerson, testPerson("john-roe"))

		f.connect(testPro, event, person, "participant")
		f.connect(testPro, event, other, "participant")

		result, err := f.traversal.ListEntitiesFromEvent(f.ctx, testPro, "fire-2024", Filter{Tag: "Supply Chain", Depth: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{"jane-doe"}, keysOf(result.Entities))
		assert.Len(t, result.Relationships, 1)
	})

	t.Run("start failing the filter yields empty result", func(t *testing.T) {
		f := newTraversalFixture(t)

		event := f.addEntity(testPro, entities.KindEvent, testEvent("fire-2024"))
		person := f.addEntity(testPro, entities.KindPerson, testPerson("jane-doe"))
		f.connect(testPro, event, person, "participant")

		result, err := f.traversal.ListEntitiesFromEvent(f.ctx, testPro, "fire-2024", Filter{Tag: "no-such-tag", Depth: 1})
		require.NoError(t, err)
		assert.Empty(t, result.Entities)
		assert.Empty(t, result.Relationships)
	})

	t.Run("country and time filters bind events only", func(t *testing.T) {
		f := newTraversalFixture(t)

		start := testEvent("fire-2024")
		start.Event.Location = &entities.Location{CountryCode: "FANTASY"}
		event := f.addEntity(testPro, entities.KindEvent, start)

		abroad := testEvent("flood-2023")
		abroad.Event.Location = &entities.Location{CountryCode: "ELSEWHERE"}
		abroad.Event.HappenedAt = time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC).Unix()
		flood := f.addEntity(testPro, entities.KindEvent, abroad)

		person := f.addEntity(testPro, entities.KindPerson, testPerson("jane-doe"))

		f.connect(testPro, event, flood, "preceded_by")
		f.connect(testPro, event, person, "participant")

		result, err := f.traversal.ListEntitiesFromEvent(f.ctx, testPro, "fire-2024", Filter{CountryCode: "FANTASY", Depth: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{"jane-doe"}, keysOf(result.Entities))
	})

	t.Run("time window is inclusive", func(t *testing.T) {
		f := newTraversalFixture(t)

		happened := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).Unix()
		event := f.addEntity(testPro, entities.KindEvent, testEvent("fire-2024"))

		within := testEvent("inside")
		within.Event.HappenedAt = happened
		inside := f.addEntity(testPro, entities.KindEvent, within)

		before := testEvent("too-early")
		before.Event.HappenedAt = happened - 86400
		early := f.addEntity(testPro, entities.KindEvent, before)

		f.connect(testPro, event, inside, "related_to")
		f.connect(testPro, event, early, "related_to")

		result, err := f.traversal.ListEntitiesFromEvent(f.ctx, testPro, "fire-2024", Filter{
			StartTime: happened,
			EndTime:   happened,
			Depth:     1,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"inside"}, keysOf(result.Entities))
	})

	t.Run("unreadable neighbors are skipped silently", func(t *testing.T) {
		f := newTraversalFixture(t)

		other := entities.Identity{Subject: "other-pro", Roles: []string{entities.RolePro}}

		start := testEvent("fire-2024")
		start.Read = []string{testPro.Subject}
		event := f.addEntity(other, entities.KindEvent, start)

		hidden := f.addEntity(other, entities.KindPerson, testPerson("hidden-person"))

		shared := testPerson("shared-person")
		shared.Read = []string{testPro.Subject}
		visible := f.addEntity(other, entities.KindPerson, shared)

		f.connect(other, event, hidden, "participant")
		f.connect(other, event, visible, "participant")

		result, err := f.traversal.ListEntitiesFromEvent(f.ctx, testPro, "fire-2024", Filter{Depth: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{"shared-person"}, keysOf(result.Entities))
	})

	t.Run("unreadable start is denied", func(t *testing.T) {
		f := newTraversalFixture(t)

		other := entities.Identity{Subject: "other-pro", Roles: []string{entities.RolePro}}
		f.addEntity(other, entities.KindEvent, testEvent("fire-2024"))

		_, err := f.traversal.ListEntitiesFromEvent(f.ctx, testPro, "fire-2024", Filter{Depth: 1})
		assert.ErrorIs(t, err, entities.ErrPermissionDenied)
	})

	t.Run("unknown event yields not found", func(t *testing.T) {
		f := newTraversalFixture(t)

		_, err := f.traversal.ListEntitiesFromEvent(f.ctx, testPro, "missing", Filter{Depth: 1})
		assert.ErrorIs(t, err, entities.ErrNotFound)
	})

	t.Run("cycles terminate", func(t *testing.T) {
		f := newTraversalFixture(t)

		event := f.addEntity(testPro, entities.KindEvent, testEvent("fire-2024"))
		person := f.addEntity(testPro, entities.KindPerson, testPerson("jane-doe"))
		org := f.addEntity(testPro, entities.KindOrganization, &entities.Entity{
			Key:          "acme",
			Organization: &entities.OrganizationDetails{Name: "Acme Corp"},
		})
		f.connect(testPro, event, person, "participant")
		f.connect(testPro, person, org, "employee")
		f.connect(testPro, org, event, "organizer")

		result, err := f.traversal.ListEntitiesFromEvent(f.ctx, testPro, "fire-2024", Filter{Depth: 10})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"jane-doe", "acme"}, keysOf(result.Entities))
		assert.Len(t, result.Relationships, 3)
	})
}
