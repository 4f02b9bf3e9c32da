package query

import (
	"bytes"
	"context"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/siherrmann/cograph/model"
)

// fakeStore is an in-memory implementation of the engine's store interfaces.
// Aggregates are computed the way the SQL functions compute them: shared note
// counts and co-occurring pairs descending by count, ids as tie-break.
type fakeStore struct {
	entities  map[uuid.UUID]*model.Entity
	relations []*model.Relation
	noteLinks []*model.NoteLink
	// When set, every call returns this error
	failWith error
}

func newFakeStore() *fakeStore {
	return &fakeStore{entities: map[uuid.UUID]*model.Entity{}}
}

func (s *fakeStore) addEntity(name string, entityType model.EntityType) *model.Entity {
	entity := &model.Entity{
		ID:             uuid.New(),
		Type:           entityType,
		Name:           name,
		NormalizedName: model.NormalizeName(name),
	}
	s.entities[entity.ID] = entity
	return entity
}

func (s *fakeStore) addRelation(from, to *model.Entity, relationType model.RelationType, weight float64) *model.Relation {
	relation := &model.Relation{
		ID:     uuid.New(),
		FromID: from.ID,
		ToID:   to.ID,
		Type:   relationType,
		Weight: weight,
	}
	s.relations = append(s.relations, relation)
	return relation
}

func (s *fakeStore) linkNote(noteID uuid.UUID, entities ...*model.Entity) {
	for _, entity := range entities {
		s.noteLinks = append(s.noteLinks, &model.NoteLink{
			ID:         uuid.New(),
			NoteID:     noteID,
			EntityID:   entity.ID,
			Confidence: 1.0,
		})
	}
}

func (s *fakeStore) SelectEntity(ctx context.Context, id uuid.UUID) (*model.Entity, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	return s.entities[id], nil
}

func (s *fakeStore) SelectEntitiesByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Entity, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	var found []*model.Entity
	for _, id := range ids {
		if entity, ok := s.entities[id]; ok {
			found = append(found, entity)
		}
	}
	return found, nil
}

func (s *fakeStore) CountEntitiesByType(ctx context.Context) (map[model.EntityType]int, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	counts := map[model.EntityType]int{}
	for _, entity := range s.entities {
		counts[entity.Type]++
	}
	return counts, nil
}

func (s *fakeStore) selectRelations(match func(*model.Relation) bool, relationTypes []model.RelationType, minWeight float64, limit int) []*model.Relation {
	var selected []*model.Relation
	for _, relation := range s.relations {
		if !match(relation) {
			continue
		}
		if !model.MatchesRelationType(relationTypes, relation.Type) {
			continue
		}
		if relation.Weight < minWeight {
			continue
		}
		selected = append(selected, relation)
		if limit > 0 && len(selected) == limit {
			break
		}
	}
	return selected
}

func (s *fakeStore) SelectRelationsFromEntity(ctx context.Context, entityID uuid.UUID, relationTypes []model.RelationType, minWeight float64, limit int) ([]*model.Relation, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	return s.selectRelations(func(r *model.Relation) bool { return r.FromID == entityID }, relationTypes, minWeight, limit), nil
}

func (s *fakeStore) SelectRelationsToEntity(ctx context.Context, entityID uuid.UUID, relationTypes []model.RelationType, minWeight float64, limit int) ([]*model.Relation, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	return s.selectRelations(func(r *model.Relation) bool { return r.ToID == entityID }, relationTypes, minWeight, limit), nil
}

func (s *fakeStore) SelectRelationsInvolvingEntity(ctx context.Context, entityID uuid.UUID, relationTypes []model.RelationType) ([]*model.Relation, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	return s.selectRelations(func(r *model.Relation) bool { return r.FromID == entityID || r.ToID == entityID }, relationTypes, 0, 0), nil
}

func (s *fakeStore) CountRelationsByType(ctx context.Context) (map[model.RelationType]int, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	counts := map[model.RelationType]int{}
	for _, relation := range s.relations {
		counts[relation.Type]++
	}
	return counts, nil
}

func (s *fakeStore) AggregateDegreesByEntity(ctx context.Context) ([]*model.EntityDegree, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	byEntity := map[uuid.UUID]*model.EntityDegree{}
	degree := func(id uuid.UUID) *model.EntityDegree {
		if d, ok := byEntity[id]; ok {
			return d
		}
		d := &model.EntityDegree{EntityID: id}
		byEntity[id] = d
		return d
	}
	for _, relation := range s.relations {
		degree(relation.FromID).OutDegree++
		degree(relation.ToID).InDegree++
	}
	degrees := make([]*model.EntityDegree, 0, len(byEntity))
	for _, d := range byEntity {
		degrees = append(degrees, d)
	}
	return degrees, nil
}

func (s *fakeStore) SelectSharedNoteCounts(ctx context.Context, entityID uuid.UUID, minOccurrences int) ([]*model.SharedNoteCount, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	ownNotes := map[uuid.UUID]bool{}
	for _, link := range s.noteLinks {
		if link.EntityID == entityID {
			ownNotes[link.NoteID] = true
		}
	}
	shared := map[uuid.UUID]map[uuid.UUID]bool{}
	for _, link := range s.noteLinks {
		if link.EntityID == entityID || !ownNotes[link.NoteID] {
			continue
		}
		if shared[link.EntityID] == nil {
			shared[link.EntityID] = map[uuid.UUID]bool{}
		}
		shared[link.EntityID][link.NoteID] = true
	}
	var counts []*model.SharedNoteCount
	for id, notes := range shared {
		if len(notes) < minOccurrences {
			continue
		}
		counts = append(counts, &model.SharedNoteCount{EntityID: id, Count: len(notes)})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return bytes.Compare(counts[i].EntityID[:], counts[j].EntityID[:]) < 0
	})
	return counts, nil
}

func (s *fakeStore) SelectCoOccurringPairs(ctx context.Context, minOccurrences int, limit int) ([]*model.CoOccurringPair, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	entitiesByNote := map[uuid.UUID][]uuid.UUID{}
	for _, link := range s.noteLinks {
		entitiesByNote[link.NoteID] = append(entitiesByNote[link.NoteID], link.EntityID)
	}
	type pairKey struct{ first, second uuid.UUID }
	sharedNotes := map[pairKey]map[uuid.UUID]bool{}
	for noteID, ids := range entitiesByNote {
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				first, second := ids[i], ids[j]
				if first == second {
					continue
				}
				if bytes.Compare(first[:], second[:]) > 0 {
					first, second = second, first
				}
				key := pairKey{first: first, second: second}
				if sharedNotes[key] == nil {
					sharedNotes[key] = map[uuid.UUID]bool{}
				}
				sharedNotes[key][noteID] = true
			}
		}
	}
	var pairs []*model.CoOccurringPair
	for key, notes := range sharedNotes {
		if len(notes) < minOccurrences {
			continue
		}
		if s.hasRelationBetween(key.first, key.second) {
			continue
		}
		pairs = append(pairs, &model.CoOccurringPair{FirstID: key.first, SecondID: key.second, Count: len(notes)})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Count != pairs[j].Count {
			return pairs[i].Count > pairs[j].Count
		}
		if pairs[i].FirstID != pairs[j].FirstID {
			return bytes.Compare(pairs[i].FirstID[:], pairs[j].FirstID[:]) < 0
		}
		return bytes.Compare(pairs[i].SecondID[:], pairs[j].SecondID[:]) < 0
	})
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs, nil
}

func (s *fakeStore) hasRelationBetween(a, b uuid.UUID) bool {
	for _, relation := range s.relations {
		if (relation.FromID == a && relation.ToID == b) || (relation.FromID == b && relation.ToID == a) {
			return true
		}
	}
	return false
}

func newTestEngine(t *testing.T) (*Engine, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	return NewEngine(store, store, store), store
}
