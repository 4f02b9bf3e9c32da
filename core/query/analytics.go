package query

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/siherrmann/cograph/helper"
	"github.com/siherrmann/cograph/model"
)

// FindCoOccurring returns entities sharing notes with the given entity,
// descending by the number of distinct shared notes. The queried entity is
// never part of its own result set; minOccurrences is an inclusive floor
// and limit caps the result after sorting.
func (e *Engine) FindCoOccurring(ctx context.Context, id uuid.UUID, limit int, minOccurrences int) ([]*model.CoOccurrence, error) {
	if limit < 0 {
		return nil, helper.NewError("co-occurrence validation", fmt.Errorf("limit must not be negative, got %d", limit))
	}
	if minOccurrences < 1 {
		return nil, helper.NewError("co-occurrence validation", fmt.Errorf("minOccurrences must be at least 1, got %d", minOccurrences))
	}

	counts, err := e.noteLinks.SelectSharedNoteCounts(ctx, id, minOccurrences)
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}

	ids := make([]uuid.UUID, 0, len(counts))
	for _, count := range counts {
		ids = append(ids, count.EntityID)
	}

	entitiesByID, err := e.fetchEntities(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Preserve the store's descending order; ids missing from the batch
	// are treated as filtered out
	results := make([]*model.CoOccurrence, 0, len(counts))
	for _, count := range counts {
		entity, ok := entitiesByID[count.EntityID]
		if !ok {
			continue
		}
		results = append(results, &model.CoOccurrence{
			Entity:      entity,
			Occurrences: count.Count,
		})
	}

	return results, nil
}

// GetHubs returns the most connected entities, descending by total degree.
// Equal-degree entities are ordered by id so results are reproducible.
// Entities without relations have no aggregate row and never appear.
func (e *Engine) GetHubs(ctx context.Context, limit int) ([]*model.GraphNode, error) {
	if limit < 1 {
		return nil, helper.NewError("hub ranking validation", fmt.Errorf("limit must be at least 1, got %d", limit))
	}

	degrees, err := e.relations.AggregateDegreesByEntity(ctx)
	if err != nil {
		return nil, err
	}

	sort.Slice(degrees, func(i, j int) bool {
		di := degrees[i].InDegree + degrees[i].OutDegree
		dj := degrees[j].InDegree + degrees[j].OutDegree
		if di != dj {
			return di > dj
		}
		return bytes.Compare(degrees[i].EntityID[:], degrees[j].EntityID[:]) < 0
	})

	if len(degrees) > limit {
		degrees = degrees[:limit]
	}

	ids := make([]uuid.UUID, 0, len(degrees))
	for _, degree := range degrees {
		ids = append(ids, degree.EntityID)
	}

	entitiesByID, err := e.fetchEntities(ctx, ids)
	if err != nil {
		return nil, err
	}

	hubs := make([]*model.GraphNode, 0, len(degrees))
	for _, degree := range degrees {
		entity, ok := entitiesByID[degree.EntityID]
		if !ok {
			continue
		}
		hubs = append(hubs, &model.GraphNode{
			Entity:    entity,
			Degree:    degree.InDegree + degree.OutDegree,
			InDegree:  degree.InDegree,
			OutDegree: degree.OutDegree,
		})
	}

	return hubs, nil
}

// SuggestRelations returns co-occurring entity pairs with no existing
// relation of any type between them in either direction, descending by
// shared note count. Pairs are unordered and deduplicated with the lower
// id first. The engine never creates the suggested relations; that
// decision belongs to the caller.
func (e *Engine) SuggestRelations(ctx context.Context, config *model.SuggestionConfig) ([]*model.SuggestedRelation, error) {
	if config == nil {
		defaultConfig := model.DefaultSuggestionConfig()
		config = &defaultConfig
	}
	if config.MinCoOccurrences < 1 {
		return nil, helper.NewError("suggestion validation", fmt.Errorf("minCoOccurrences must be at least 1, got %d", config.MinCoOccurrences))
	}
	if config.MaxResults < 1 {
		return nil, helper.NewError("suggestion validation", fmt.Errorf("maxResults must be at least 1, got %d", config.MaxResults))
	}

	pairs, err := e.noteLinks.SelectCoOccurringPairs(ctx, config.MinCoOccurrences, config.MaxResults)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, 2*len(pairs))
	for _, pair := range pairs {
		ids = append(ids, pair.FirstID, pair.SecondID)
	}

	entitiesByID, err := e.fetchEntities(ctx, ids)
	if err != nil {
		return nil, err
	}

	suggestions := make([]*model.SuggestedRelation, 0, len(pairs))
	for _, pair := range pairs {
		from, ok := entitiesByID[pair.FirstID]
		if !ok {
			continue
		}
		to, ok := entitiesByID[pair.SecondID]
		if !ok {
			continue
		}
		suggestions = append(suggestions, &model.SuggestedRelation{
			From:        from,
			To:          to,
			Occurrences: pair.Count,
		})
	}

	return suggestions, nil
}
