package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/cograph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntitiesNewEntitiesDBHandler(t *testing.T) {
	database := initDB(t)

	t.Run("Valid call NewEntitiesDBHandler", func(t *testing.T) {
		entitiesDbHandler, err := NewEntitiesDBHandler(database, 384, true)
		assert.NoError(t, err, "Expected NewEntitiesDBHandler to not return an error")
		require.NotNil(t, entitiesDbHandler, "Expected NewEntitiesDBHandler to return a non-nil instance")
		require.NotNil(t, entitiesDbHandler.db, "Expected NewEntitiesDBHandler to have a non-nil database instance")
		require.NotNil(t, entitiesDbHandler.db.Instance, "Expected NewEntitiesDBHandler to have a non-nil database connection instance")
	})

	t.Run("Invalid call NewEntitiesDBHandler with nil database", func(t *testing.T) {
		_, err := NewEntitiesDBHandler(nil, 384, false)
		assert.Error(t, err, "Expected error when creating EntitiesDBHandler with nil database")
		assert.Contains(t, err.Error(), "database connection is nil", "Expected specific error message for nil database connection")
	})
}

func TestEntitiesInsert(t *testing.T) {
	database := initDB(t)

	entitiesDbHandler, err := NewEntitiesDBHandler(database, 384, true)
	require.NoError(t, err, "Expected NewEntitiesDBHandler to not return an error")

	t.Run("Insert entity", func(t *testing.T) {
		entity := &model.Entity{
			Name:     "John Doe",
			Type:     model.EntityTypePerson,
			Metadata: model.Metadata{"occupation": "Engineer"},
		}

		err := entitiesDbHandler.InsertEntity(entity)
		assert.NoError(t, err, "Expected Insert to not return an error")
		assert.NotEmpty(t, entity.ID, "Expected inserted entity to have an ID")
		assert.Equal(t, "john doe", entity.NormalizedName, "Expected the normalized name to be set by the database")
		assert.WithinDuration(t, entity.CreatedAt, time.Now(), 2*time.Second, "Expected CreatedAt to be set")

		// Cleanup
		entitiesDbHandler.DeleteEntity(entity.ID)
	})

	t.Run("Insert duplicate entity merges into the existing row", func(t *testing.T) {
		entity := &model.Entity{
			Name:     "Jane Smith",
			Type:     model.EntityTypePerson,
			Metadata: model.Metadata{"age": 30},
		}

		err := entitiesDbHandler.InsertEntity(entity)
		require.NoError(t, err)
		firstID := entity.ID

		// Same normalized name and type, different casing and metadata
		entity2 := &model.Entity{
			Name:     "  jane smith ",
			Type:     model.EntityTypePerson,
			Metadata: model.Metadata{"city": "London"},
		}

		err = entitiesDbHandler.InsertEntity(entity2)
		assert.NoError(t, err, "Expected Insert to not return an error for duplicate")
		assert.Equal(t, firstID, entity2.ID, "Expected the existing entity to be returned")
		assert.Equal(t, float64(30), entity2.Metadata["age"], "Expected old metadata to survive the merge")
		assert.Equal(t, "London", entity2.Metadata["city"], "Expected new metadata to be merged in")

		// Cleanup
		entitiesDbHandler.DeleteEntity(firstID)
	})

	t.Run("Same name with different type creates a second entity", func(t *testing.T) {
		person := &model.Entity{Name: "Mercury", Type: model.EntityTypePerson}
		place := &model.Entity{Name: "Mercury", Type: model.EntityTypePlace}

		require.NoError(t, entitiesDbHandler.InsertEntity(person))
		require.NoError(t, entitiesDbHandler.InsertEntity(place))

		assert.NotEqual(t, person.ID, place.ID, "Expected distinct entities for distinct types")

		// Cleanup
		entitiesDbHandler.DeleteEntity(person.ID)
		entitiesDbHandler.DeleteEntity(place.ID)
	})
}

func TestEntitiesSelect(t *testing.T) {
	ctx := context.Background()
	database := initDB(t)

	entitiesDbHandler, err := NewEntitiesDBHandler(database, 384, true)
	require.NoError(t, err)

	entity := &model.Entity{
		Name:     "Test Entity",
		Type:     model.EntityTypeOrganization,
		Metadata: model.Metadata{"founded": 2020},
	}
	err = entitiesDbHandler.InsertEntity(entity)
	require.NoError(t, err)
	defer entitiesDbHandler.DeleteEntity(entity.ID)

	t.Run("Select entity by ID", func(t *testing.T) {
		retrieved, err := entitiesDbHandler.SelectEntity(ctx, entity.ID)
		assert.NoError(t, err, "Expected Select to not return an error")
		require.NotNil(t, retrieved, "Expected Select to return a non-nil entity")
		assert.Equal(t, entity.ID, retrieved.ID, "Expected entity IDs to match")
		assert.Equal(t, entity.Name, retrieved.Name, "Expected names to match")
		assert.Equal(t, entity.Type, retrieved.Type, "Expected types to match")
	})

	t.Run("Select missing entity yields nil without error", func(t *testing.T) {
		retrieved, err := entitiesDbHandler.SelectEntity(ctx, uuid.New())
		assert.NoError(t, err, "Expected a missing entity to not be an error")
		assert.Nil(t, retrieved, "Expected a missing entity to be nil")
	})

	t.Run("Select entity by name matches normalized form", func(t *testing.T) {
		retrieved, err := entitiesDbHandler.SelectEntityByName(ctx, "  TEST entity ", model.EntityTypeOrganization)
		assert.NoError(t, err)
		require.NotNil(t, retrieved, "Expected the lookup to normalize the name")
		assert.Equal(t, entity.ID, retrieved.ID)
	})

	t.Run("Select entities by IDs in one batch", func(t *testing.T) {
		second := &model.Entity{Name: "Second Entity", Type: model.EntityTypeConcept}
		require.NoError(t, entitiesDbHandler.InsertEntity(second))
		defer entitiesDbHandler.DeleteEntity(second.ID)

		entities, err := entitiesDbHandler.SelectEntitiesByIDs(ctx, []uuid.UUID{entity.ID, second.ID, uuid.New()})
		assert.NoError(t, err)
		assert.Len(t, entities, 2, "Expected missing IDs to be omitted")
	})

	t.Run("Select entities by IDs with empty slice", func(t *testing.T) {
		entities, err := entitiesDbHandler.SelectEntitiesByIDs(ctx, nil)
		assert.NoError(t, err)
		assert.Empty(t, entities)
	})

	t.Run("Select entities by type", func(t *testing.T) {
		entities, err := entitiesDbHandler.SelectEntitiesByType(ctx, model.EntityTypeOrganization, 10)
		assert.NoError(t, err)
		require.Len(t, entities, 1)
		assert.Equal(t, entity.ID, entities[0].ID)
	})

	t.Run("Search entities by name pattern", func(t *testing.T) {
		entities, err := entitiesDbHandler.SearchEntities(ctx, "test", nil, 10)
		assert.NoError(t, err)
		require.NotEmpty(t, entities, "Expected the search to match case-insensitively")
		assert.Equal(t, entity.ID, entities[0].ID)
	})
}

func TestEntitiesCountByType(t *testing.T) {
	ctx := context.Background()
	database := initDB(t)

	entitiesDbHandler, err := NewEntitiesDBHandler(database, 384, true)
	require.NoError(t, err)

	person := &model.Entity{Name: "Count Person", Type: model.EntityTypePerson}
	place := &model.Entity{Name: "Count Place", Type: model.EntityTypePlace}
	require.NoError(t, entitiesDbHandler.InsertEntity(person))
	require.NoError(t, entitiesDbHandler.InsertEntity(place))
	defer entitiesDbHandler.DeleteEntity(person.ID)
	defer entitiesDbHandler.DeleteEntity(place.ID)

	counts, err := entitiesDbHandler.CountEntitiesByType(ctx)
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, counts[model.EntityTypePerson], 1)
	assert.GreaterOrEqual(t, counts[model.EntityTypePlace], 1)
}

func TestEntitiesUpdateMetadata(t *testing.T) {
	ctx := context.Background()
	database := initDB(t)

	entitiesDbHandler, err := NewEntitiesDBHandler(database, 384, true)
	require.NoError(t, err)

	entity := &model.Entity{Name: "Metadata Entity", Type: model.EntityTypeConcept}
	require.NoError(t, entitiesDbHandler.InsertEntity(entity))
	defer entitiesDbHandler.DeleteEntity(entity.ID)

	err = entitiesDbHandler.UpdateEntityMetadata(entity.ID, model.Metadata{"reviewed": true})
	assert.NoError(t, err)

	retrieved, err := entitiesDbHandler.SelectEntity(ctx, entity.ID)
	require.NoError(t, err)
	require.NotNil(t, retrieved)
	assert.Equal(t, true, retrieved.Metadata["reviewed"])
}

func TestEntitiesEmbeddingSimilarity(t *testing.T) {
	ctx := context.Background()
	database := initDB(t)

	entitiesDbHandler, err := NewEntitiesDBHandler(database, 384, true)
	require.NoError(t, err)

	// Unit vectors along different axes
	axis := func(i int) []float32 {
		v := make([]float32, 384)
		v[i] = 1
		return v
	}

	first := &model.Entity{Name: "Vector One", Type: model.EntityTypeConcept}
	second := &model.Entity{Name: "Vector Two", Type: model.EntityTypeConcept}
	require.NoError(t, entitiesDbHandler.InsertEntity(first))
	require.NoError(t, entitiesDbHandler.InsertEntity(second))
	defer entitiesDbHandler.DeleteEntity(first.ID)
	defer entitiesDbHandler.DeleteEntity(second.ID)

	require.NoError(t, entitiesDbHandler.UpdateEntityEmbedding(first.ID, axis(0)))
	require.NoError(t, entitiesDbHandler.UpdateEntityEmbedding(second.ID, axis(1)))

	t.Run("Closest entity ranks first", func(t *testing.T) {
		query := axis(0)
		query[1] = 0.1
		entities, err := entitiesDbHandler.SelectEntitiesBySimilarity(ctx, query, 10, 0)
		assert.NoError(t, err)
		require.NotEmpty(t, entities)
		assert.Equal(t, first.ID, entities[0].ID, "Expected the nearest embedding to rank first")
		require.NotNil(t, entities[0].Similarity)
		assert.Greater(t, *entities[0].Similarity, 0.9)
	})

	t.Run("Threshold filters distant entities", func(t *testing.T) {
		entities, err := entitiesDbHandler.SelectEntitiesBySimilarity(ctx, axis(0), 10, 0.95)
		assert.NoError(t, err)
		require.Len(t, entities, 1, "Expected only the matching embedding above the threshold")
		assert.Equal(t, first.ID, entities[0].ID)
	})
}

func TestEntitiesDelete(t *testing.T) {
	ctx := context.Background()
	database := initDB(t)

	entitiesDbHandler, err := NewEntitiesDBHandler(database, 384, true)
	require.NoError(t, err)

	entity := &model.Entity{Name: "Doomed Entity", Type: model.EntityTypeTag}
	require.NoError(t, entitiesDbHandler.InsertEntity(entity))

	err = entitiesDbHandler.DeleteEntity(entity.ID)
	assert.NoError(t, err)

	retrieved, err := entitiesDbHandler.SelectEntity(ctx, entity.ID)
	assert.NoError(t, err)
	assert.Nil(t, retrieved, "Expected the entity to be gone")
}
