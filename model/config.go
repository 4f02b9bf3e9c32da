package model

// TraversalConfig represents configuration for BFS and path queries
type TraversalConfig struct {
	MaxDepth      int            `json:"max_depth"`
	RelationTypes []RelationType `json:"relation_types,omitempty"` // Filter by relation types
	EntityTypes   []EntityType   `json:"entity_types,omitempty"`   // Filter result nodes by entity types
}

// NeighborhoodConfig represents configuration for 1-hop neighborhood queries
type NeighborhoodConfig struct {
	RelationTypes []RelationType `json:"relation_types,omitempty"`
	EntityTypes   []EntityType   `json:"entity_types,omitempty"`
	MinWeight     float64        `json:"min_weight,omitempty"` // Drop relations below this weight
	Limit         int            `json:"limit"`                // Per direction, so up to 2*Limit neighbors
}

// SuggestionConfig represents configuration for relation suggestion
type SuggestionConfig struct {
	MinCoOccurrences int `json:"min_co_occurrences"`
	MaxResults       int `json:"max_results"`
}

// DefaultTraversalConfig returns a sensible default configuration for BFS
func DefaultTraversalConfig() TraversalConfig {
	return TraversalConfig{
		MaxDepth:      3,
		RelationTypes: nil, // All types
		EntityTypes:   nil, // All types
	}
}

// DefaultPathConfig returns a sensible default configuration for path queries
func DefaultPathConfig() TraversalConfig {
	return TraversalConfig{
		MaxDepth:      6,
		RelationTypes: nil,
		EntityTypes:   nil,
	}
}

// DefaultNeighborhoodConfig returns a sensible default configuration for
// neighborhood queries
func DefaultNeighborhoodConfig() NeighborhoodConfig {
	return NeighborhoodConfig{
		RelationTypes: nil,
		EntityTypes:   nil,
		MinWeight:     0,
		Limit:         50,
	}
}

// DefaultSuggestionConfig returns a sensible default configuration for
// relation suggestion
func DefaultSuggestionConfig() SuggestionConfig {
	return SuggestionConfig{
		MinCoOccurrences: 2,
		MaxResults:       50,
	}
}

// MatchesRelationType reports whether relationType passes the filter.
// An empty filter matches all types.
func MatchesRelationType(filter []RelationType, relationType RelationType) bool {
	if len(filter) == 0 {
		return true
	}
	for _, t := range filter {
		if t == relationType {
			return true
		}
	}
	return false
}

// MatchesEntityType reports whether entityType passes the filter.
// An empty filter matches all types.
func MatchesEntityType(filter []EntityType, entityType EntityType) bool {
	if len(filter) == 0 {
		return true
	}
	for _, t := range filter {
		if t == entityType {
			return true
		}
	}
	return false
}
