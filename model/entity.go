package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// EntityType represents the type of an entity node
type EntityType string

const (
	EntityTypePerson       EntityType = "person"
	EntityTypeOrganization EntityType = "organization"
	EntityTypePlace        EntityType = "place"
	EntityTypeProject      EntityType = "project"
	EntityTypeTask         EntityType = "task"
	EntityTypeConcept      EntityType = "concept"
	EntityTypeEvent        EntityType = "event"
	EntityTypeDate         EntityType = "date"
	EntityTypeTime         EntityType = "time"
	EntityTypeTag          EntityType = "tag"
	EntityTypeCustom       EntityType = "custom"
)

// Entity represents a typed node in the knowledge graph.
// The pair (Type, NormalizedName) is unique, enforced by the entities table.
type Entity struct {
	ID             uuid.UUID  `json:"id"`
	Type           EntityType `json:"entity_type"`
	Name           string     `json:"name"`
	NormalizedName string     `json:"normalized_name"`
	Metadata       Metadata   `json:"metadata,omitempty"`
	Embedding      []float32  `json:"embedding,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	// Results
	Similarity *float64 `json:"similarity,omitempty"`
}

// NormalizeName returns the lowercase, whitespace-trimmed form of a name,
// used only for deduplication of entities of the same type.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
