package query

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/siherrmann/cograph/core/graph"
	"github.com/siherrmann/cograph/helper"
	"github.com/siherrmann/cograph/model"
)

// EntityStore defines the entity reads required by the engine
type EntityStore interface {
	SelectEntity(ctx context.Context, id uuid.UUID) (*model.Entity, error)
	SelectEntitiesByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Entity, error)
	CountEntitiesByType(ctx context.Context) (map[model.EntityType]int, error)
}

// RelationStore defines the relation reads required by the engine
type RelationStore interface {
	SelectRelationsFromEntity(ctx context.Context, entityID uuid.UUID, relationTypes []model.RelationType, minWeight float64, limit int) ([]*model.Relation, error)
	SelectRelationsToEntity(ctx context.Context, entityID uuid.UUID, relationTypes []model.RelationType, minWeight float64, limit int) ([]*model.Relation, error)
	SelectRelationsInvolvingEntity(ctx context.Context, entityID uuid.UUID, relationTypes []model.RelationType) ([]*model.Relation, error)
	CountRelationsByType(ctx context.Context) (map[model.RelationType]int, error)
	AggregateDegreesByEntity(ctx context.Context) ([]*model.EntityDegree, error)
}

// NoteLinkStore defines the note-link aggregates required by the engine
type NoteLinkStore interface {
	SelectSharedNoteCounts(ctx context.Context, entityID uuid.UUID, minOccurrences int) ([]*model.SharedNoteCount, error)
	SelectCoOccurringPairs(ctx context.Context, minOccurrences int, limit int) ([]*model.CoOccurringPair, error)
}

// Engine answers the fixed set of traversal and analytics queries over the
// graph store. All operations are pure reads; the engine holds no state
// between calls, so queries may run concurrently.
type Engine struct {
	entities  EntityStore
	relations RelationStore
	noteLinks NoteLinkStore
}

// NewEngine creates a new query engine over the given stores
func NewEngine(entities EntityStore, relations RelationStore, noteLinks NoteLinkStore) *Engine {
	return &Engine{
		entities:  entities,
		relations: relations,
		noteLinks: noteLinks,
	}
}

// traversalStore adapts the engine's stores to the graph.GraphStore interface
type traversalStore struct {
	engine *Engine
}

func (s traversalStore) GetEntity(ctx context.Context, id uuid.UUID) (*model.Entity, error) {
	return s.engine.entities.SelectEntity(ctx, id)
}

func (s traversalStore) GetRelationsInvolving(ctx context.Context, id uuid.UUID, relationTypes []model.RelationType) ([]*model.Relation, error) {
	return s.engine.relations.SelectRelationsInvolvingEntity(ctx, id, relationTypes)
}

// GetStats returns node and edge totals, per-type counts and the average
// degree. Every relation contributes one in-degree and one out-degree unit,
// so the average degree is 2*edges/nodes (0 for an empty graph).
func (e *Engine) GetStats(ctx context.Context) (*model.GraphStats, error) {
	nodesByType, err := e.entities.CountEntitiesByType(ctx)
	if err != nil {
		return nil, err
	}

	edgesByType, err := e.relations.CountRelationsByType(ctx)
	if err != nil {
		return nil, err
	}

	totalNodes := 0
	for _, count := range nodesByType {
		totalNodes += count
	}

	totalEdges := 0
	for _, count := range edgesByType {
		totalEdges += count
	}

	avgDegree := 0.0
	if totalNodes > 0 {
		avgDegree = 2 * float64(totalEdges) / float64(totalNodes)
	}

	return &model.GraphStats{
		TotalNodes:    totalNodes,
		TotalEdges:    totalEdges,
		NodesByType:   nodesByType,
		EdgesByType:   edgesByType,
		AverageDegree: avgDegree,
	}, nil
}

// GetNode returns an entity together with its relation counts.
// A missing entity returns (nil, nil), not an error.
func (e *Engine) GetNode(ctx context.Context, id uuid.UUID) (*model.GraphNode, error) {
	entity, err := e.entities.SelectEntity(ctx, id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, nil
	}

	outgoing, err := e.relations.SelectRelationsFromEntity(ctx, id, nil, 0, 0)
	if err != nil {
		return nil, err
	}

	incoming, err := e.relations.SelectRelationsToEntity(ctx, id, nil, 0, 0)
	if err != nil {
		return nil, err
	}

	return &model.GraphNode{
		Entity:    entity,
		Degree:    len(incoming) + len(outgoing),
		InDegree:  len(incoming),
		OutDegree: len(outgoing),
	}, nil
}

// GetNeighborhood returns the immediate 1-hop neighbors of an entity,
// each tagged with its direction and connecting relation.
// The limit applies per direction, so up to 2*Limit neighbors are returned.
// The entity type filter is applied after fetching candidate neighbors.
// A missing center entity returns (nil, nil); an entity without relations
// returns an empty neighbor list.
func (e *Engine) GetNeighborhood(ctx context.Context, id uuid.UUID, config *model.NeighborhoodConfig) (*model.Neighborhood, error) {
	if config == nil {
		defaultConfig := model.DefaultNeighborhoodConfig()
		config = &defaultConfig
	}
	if config.Limit < 0 {
		return nil, helper.NewError("neighborhood validation", fmt.Errorf("limit must not be negative, got %d", config.Limit))
	}

	center, err := e.entities.SelectEntity(ctx, id)
	if err != nil {
		return nil, err
	}
	if center == nil {
		return nil, nil
	}

	outgoing, err := e.relations.SelectRelationsFromEntity(ctx, id, config.RelationTypes, config.MinWeight, config.Limit)
	if err != nil {
		return nil, err
	}

	incoming, err := e.relations.SelectRelationsToEntity(ctx, id, config.RelationTypes, config.MinWeight, config.Limit)
	if err != nil {
		return nil, err
	}

	// Batch-fetch all candidate neighbor entities
	neighborIDs := make([]uuid.UUID, 0, len(outgoing)+len(incoming))
	for _, relation := range outgoing {
		neighborIDs = append(neighborIDs, relation.ToID)
	}
	for _, relation := range incoming {
		neighborIDs = append(neighborIDs, relation.FromID)
	}

	entitiesByID, err := e.fetchEntities(ctx, neighborIDs)
	if err != nil {
		return nil, err
	}

	neighbors := make([]*model.Neighbor, 0, len(neighborIDs))
	for _, relation := range outgoing {
		entity, ok := entitiesByID[relation.ToID]
		if !ok || !model.MatchesEntityType(config.EntityTypes, entity.Type) {
			continue
		}
		neighbors = append(neighbors, &model.Neighbor{
			Entity:    entity,
			Relation:  relation,
			Direction: model.DirectionOutgoing,
		})
	}
	for _, relation := range incoming {
		entity, ok := entitiesByID[relation.FromID]
		if !ok || !model.MatchesEntityType(config.EntityTypes, entity.Type) {
			continue
		}
		neighbors = append(neighbors, &model.Neighbor{
			Entity:    entity,
			Relation:  relation,
			Direction: model.DirectionIncoming,
		})
	}

	return &model.Neighborhood{
		Center:    center,
		Neighbors: neighbors,
	}, nil
}

// BFS performs breadth-first traversal from a start entity.
// A nil config uses the defaults (max depth 3, no filters).
func (e *Engine) BFS(ctx context.Context, startID uuid.UUID, config *model.TraversalConfig) (map[uuid.UUID]*model.TraversalNode, error) {
	if config == nil {
		defaultConfig := model.DefaultTraversalConfig()
		config = &defaultConfig
	}

	return graph.BFS(ctx, traversalStore{engine: e}, startID, *config)
}

// FindPath finds the hop-minimal path between two entities.
// A nil config uses the defaults (max depth 6, no filters).
func (e *Engine) FindPath(ctx context.Context, fromID uuid.UUID, toID uuid.UUID, config *model.TraversalConfig) (*model.Path, error) {
	if config == nil {
		defaultConfig := model.DefaultPathConfig()
		config = &defaultConfig
	}

	return graph.FindPath(ctx, traversalStore{engine: e}, fromID, toID, *config)
}

// fetchEntities batch-fetches entities and returns them keyed by id.
// Missing ids are simply absent from the map.
func (e *Engine) fetchEntities(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Entity, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*model.Entity{}, nil
	}

	// Deduplicate before the round trip
	seen := make(map[uuid.UUID]bool, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}

	entities, err := e.entities.SelectEntitiesByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}

	entitiesByID := make(map[uuid.UUID]*model.Entity, len(entities))
	for _, entity := range entities {
		entitiesByID[entity.ID] = entity
	}

	return entitiesByID, nil
}
