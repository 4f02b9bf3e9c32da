package graph

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/siherrmann/cograph/helper"
	"github.com/siherrmann/cograph/model"
)

// GraphStore defines the interface for graph traversal operations
type GraphStore interface {
	GetEntity(ctx context.Context, id uuid.UUID) (*model.Entity, error)
	GetRelationsInvolving(ctx context.Context, id uuid.UUID, relationTypes []model.RelationType) ([]*model.Relation, error)
}

// BFS performs breadth-first search from a start entity over the undirected
// view of the graph (a relation in either direction is a valid step).
// Every reachable entity is visited at most once, at its minimum hop count.
//
// Entities failing the EntityTypes filter are still expanded but never
// added to the result map; this includes the start entity itself, so a
// filtered-out start never blocks exploration of its neighbors.
//
// An absent start entity yields an empty map, not an error.
func BFS(ctx context.Context, store GraphStore, startID uuid.UUID, config model.TraversalConfig) (map[uuid.UUID]*model.TraversalNode, error) {
	if config.MaxDepth < 0 {
		return nil, helper.NewError("bfs validation", fmt.Errorf("maxDepth must not be negative, got %d", config.MaxDepth))
	}

	results := make(map[uuid.UUID]*model.TraversalNode)

	// Get start entity
	startEntity, err := store.GetEntity(ctx, startID)
	if err != nil {
		return nil, err
	}
	if startEntity == nil {
		return results, nil
	}

	type queueEntry struct {
		entity *model.Entity
		depth  int
	}

	visited := map[uuid.UUID]bool{startID: true}
	queue := []queueEntry{{entity: startEntity, depth: 0}}

	for len(queue) > 0 {
		// Cancellation is checked once per dequeued entity, before the
		// store round trip for its relations
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		current := queue[0]
		queue = queue[1:]

		if model.MatchesEntityType(config.EntityTypes, current.entity.Type) {
			results[current.entity.ID] = &model.TraversalNode{
				Entity: current.entity,
				Depth:  current.depth,
			}
		}

		// Stop expanding once we've reached max depth
		if current.depth >= config.MaxDepth {
			continue
		}

		// Get relations connected to the current entity in either direction
		relations, err := store.GetRelationsInvolving(ctx, current.entity.ID, config.RelationTypes)
		if err != nil {
			return nil, err
		}

		for _, relation := range relations {
			targetID, ok := relation.Other(current.entity.ID)
			if !ok {
				continue
			}

			// Skip if already visited
			if visited[targetID] {
				continue
			}

			// Get target entity; a missing target is treated as filtered
			// out, not as a failure
			targetEntity, err := store.GetEntity(ctx, targetID)
			if err != nil {
				return nil, err
			}
			if targetEntity == nil {
				continue
			}

			visited[targetID] = true

			queue = append(queue, queueEntry{
				entity: targetEntity,
				depth:  current.depth + 1,
			})
		}
	}

	return results, nil
}

// FindPath finds a path between two entities using breadth-first expansion.
// The returned path is the first one found in breadth-first order, so it is
// minimal in hop count; TotalWeight is the sum of relation weights along
// that path, NOT the minimum weight over all paths. Callers depending on
// hop-count semantics must not replace this with a weighted search.
//
// Returns (nil, nil) if either endpoint is absent or no path of length
// <= MaxDepth exists. fromID == toID yields the trivial single-node path.
func FindPath(ctx context.Context, store GraphStore, fromID uuid.UUID, toID uuid.UUID, config model.TraversalConfig) (*model.Path, error) {
	if config.MaxDepth < 0 {
		return nil, helper.NewError("find path validation", fmt.Errorf("maxDepth must not be negative, got %d", config.MaxDepth))
	}
	if config.MaxDepth == 0 && fromID != toID {
		return nil, helper.NewError("find path validation", fmt.Errorf("maxDepth must be positive for a non-trivial path query"))
	}

	// Get start entity
	startEntity, err := store.GetEntity(ctx, fromID)
	if err != nil {
		return nil, err
	}
	if startEntity == nil {
		return nil, nil
	}

	if fromID == toID {
		return &model.Path{
			Nodes:       []*model.Entity{startEntity},
			Relations:   []*model.Relation{},
			TotalWeight: 0,
		}, nil
	}

	type queueEntry struct {
		entity    *model.Entity
		depth     int
		nodes     []*model.Entity
		relations []*model.Relation
		weight    float64
	}

	visited := map[uuid.UUID]bool{fromID: true}
	queue := []queueEntry{{
		entity:    startEntity,
		depth:     0,
		nodes:     []*model.Entity{startEntity},
		relations: []*model.Relation{},
		weight:    0,
	}}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		current := queue[0]
		queue = queue[1:]

		if current.entity.ID == toID {
			return &model.Path{
				Nodes:       current.nodes,
				Relations:   current.relations,
				TotalWeight: current.weight,
			}, nil
		}

		// Paths longer than max depth are not explored
		if current.depth >= config.MaxDepth {
			continue
		}

		relations, err := store.GetRelationsInvolving(ctx, current.entity.ID, config.RelationTypes)
		if err != nil {
			return nil, err
		}

		for _, relation := range relations {
			targetID, ok := relation.Other(current.entity.ID)
			if !ok {
				continue
			}

			if visited[targetID] {
				continue
			}

			targetEntity, err := store.GetEntity(ctx, targetID)
			if err != nil {
				return nil, err
			}
			if targetEntity == nil {
				continue
			}

			// Intermediate entities must pass the type filter; the two
			// endpoints are exempt
			if targetID != toID && !model.MatchesEntityType(config.EntityTypes, targetEntity.Type) {
				continue
			}

			visited[targetID] = true

			// Extend path copies for the new entry
			newNodes := make([]*model.Entity, len(current.nodes), len(current.nodes)+1)
			copy(newNodes, current.nodes)
			newNodes = append(newNodes, targetEntity)

			newRelations := make([]*model.Relation, len(current.relations), len(current.relations)+1)
			copy(newRelations, current.relations)
			newRelations = append(newRelations, relation)

			queue = append(queue, queueEntry{
				entity:    targetEntity,
				depth:     current.depth + 1,
				nodes:     newNodes,
				relations: newRelations,
				weight:    current.weight + relation.Weight,
			})
		}
	}

	return nil, nil
}

// Neighbors retrieves the immediate 1-hop neighbors of an entity via BFS
func Neighbors(ctx context.Context, store GraphStore, id uuid.UUID, relationTypes []model.RelationType) ([]*model.Entity, error) {
	results, err := BFS(ctx, store, id, model.TraversalConfig{
		MaxDepth:      1,
		RelationTypes: relationTypes,
	})
	if err != nil {
		return nil, err
	}

	neighbors := make([]*model.Entity, 0, len(results))
	for entityID, node := range results {
		if entityID == id {
			continue
		}
		neighbors = append(neighbors, node.Entity)
	}

	return neighbors, nil
}
