package model

import (
	"time"

	"github.com/google/uuid"
)

// RelationType represents the type of relationship between entities
type RelationType string

const (
	RelationTypeMentions     RelationType = "mentions"
	RelationTypeRelatedTo    RelationType = "related_to"
	RelationTypePartOf       RelationType = "part_of"
	RelationTypeDependsOn    RelationType = "depends_on"
	RelationTypeCreatedBy    RelationType = "created_by"
	RelationTypeAssignedTo   RelationType = "assigned_to"
	RelationTypeScheduledFor RelationType = "scheduled_for"
	RelationTypeTaggedWith   RelationType = "tagged_with"
	RelationTypeSimilarTo    RelationType = "similar_to"
	RelationTypeCustom       RelationType = "custom"
)

// Relation represents a typed directed edge between two entities.
// The triple (FromID, ToID, Type) is unique, enforced by the relations table.
// Relations are directed for storage, but traversal treats them as
// bidirectional for reachability.
type Relation struct {
	ID        uuid.UUID    `json:"id"`
	FromID    uuid.UUID    `json:"from_id"`
	ToID      uuid.UUID    `json:"to_id"`
	Type      RelationType `json:"relation_type"`
	Weight    float64      `json:"weight"`
	Metadata  Metadata     `json:"metadata,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// DefaultRelationWeight is used when a relation is created without an explicit weight.
const DefaultRelationWeight = 1.0

// Other returns the entity on the far side of the relation from id.
// The second return value is false if id is on neither side.
func (r *Relation) Other(id uuid.UUID) (uuid.UUID, bool) {
	switch id {
	case r.FromID:
		return r.ToID, true
	case r.ToID:
		return r.FromID, true
	default:
		return uuid.Nil, false
	}
}
