package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRelationOther(t *testing.T) {
	from := uuid.New()
	to := uuid.New()
	relation := &Relation{
		FromID: from,
		ToID:   to,
		Type:   RelationTypeRelatedTo,
	}

	t.Run("Returns target for source entity", func(t *testing.T) {
		other, ok := relation.Other(from)
		assert.True(t, ok, "Expected the source entity to be part of the relation")
		assert.Equal(t, to, other, "Expected the far side to be the target entity")
	})

	t.Run("Returns source for target entity", func(t *testing.T) {
		other, ok := relation.Other(to)
		assert.True(t, ok, "Expected the target entity to be part of the relation")
		assert.Equal(t, from, other, "Expected the far side to be the source entity")
	})

	t.Run("Returns false for unrelated entity", func(t *testing.T) {
		_, ok := relation.Other(uuid.New())
		assert.False(t, ok, "Expected an unrelated entity to not be part of the relation")
	})

	t.Run("Self-loop returns the same entity", func(t *testing.T) {
		selfLoop := &Relation{FromID: from, ToID: from, Type: RelationTypeSimilarTo}
		other, ok := selfLoop.Other(from)
		assert.True(t, ok, "Expected the entity to be part of its self-loop")
		assert.Equal(t, from, other, "Expected the far side of a self-loop to be the entity itself")
	})
}
