package model

import "github.com/google/uuid"

// GraphNode represents an entity together with its relation counts
type GraphNode struct {
	Entity    *Entity `json:"entity"`
	Degree    int     `json:"degree"`
	InDegree  int     `json:"in_degree"`
	OutDegree int     `json:"out_degree"`
}

// Direction indicates how a neighbor is connected to the center entity
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// Neighbor represents a 1-hop neighbor of an entity with the connecting relation
type Neighbor struct {
	Entity    *Entity   `json:"entity"`
	Relation  *Relation `json:"relation"`
	Direction Direction `json:"direction"`
}

// Neighborhood represents an entity and its immediate neighbors
type Neighborhood struct {
	Center    *Entity     `json:"center"`
	Neighbors []*Neighbor `json:"neighbors"`
}

// TraversalNode represents an entity discovered during breadth-first traversal
type TraversalNode struct {
	Entity *Entity `json:"entity"`
	Depth  int     `json:"depth"`
}

// Path represents a hop-minimal path between two entities.
// TotalWeight is the sum of relation weights along the path found first in
// breadth-first order; it is not the minimum weight over all paths.
type Path struct {
	Nodes       []*Entity   `json:"nodes"`
	Relations   []*Relation `json:"relations"`
	TotalWeight float64     `json:"total_weight"`
}

// CoOccurrence represents an entity that shares notes with the queried entity
type CoOccurrence struct {
	Entity      *Entity `json:"entity"`
	Occurrences int     `json:"occurrences"`
}

// SuggestedRelation represents a co-occurring entity pair with no existing
// relation between them in either direction. Candidates only, never persisted
// by the engine.
type SuggestedRelation struct {
	From        *Entity `json:"from"`
	To          *Entity `json:"to"`
	Occurrences int     `json:"occurrences"`
}

// SharedNoteCount is the store aggregate row backing co-occurrence queries
type SharedNoteCount struct {
	EntityID uuid.UUID `json:"entity_id"`
	Count    int       `json:"count"`
}

// CoOccurringPair is the store aggregate row backing relation suggestion.
// FirstID is always the lower of the two ids, so each unordered pair appears once.
type CoOccurringPair struct {
	FirstID  uuid.UUID `json:"first_id"`
	SecondID uuid.UUID `json:"second_id"`
	Count    int       `json:"count"`
}

// EntityDegree is the store aggregate row backing hub ranking
type EntityDegree struct {
	EntityID  uuid.UUID `json:"entity_id"`
	InDegree  int       `json:"in_degree"`
	OutDegree int       `json:"out_degree"`
}

// GraphStats summarizes the size and connectivity of the graph
type GraphStats struct {
	TotalNodes    int                  `json:"total_nodes"`
	TotalEdges    int                  `json:"total_edges"`
	NodesByType   map[EntityType]int   `json:"nodes_by_type"`
	EdgesByType   map[RelationType]int `json:"edges_by_type"`
	AverageDegree float64              `json:"average_degree"`
}
