package cograph

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/siherrmann/cograph/core/pipeline"
	"github.com/siherrmann/cograph/core/query"
	"github.com/siherrmann/cograph/database"
	"github.com/siherrmann/cograph/helper"
	"github.com/siherrmann/cograph/model"
	loadSql "github.com/siherrmann/cograph/sql"
)

// CoGraph provides a unified interface to all database handlers
// and the query engine
type CoGraph struct {
	DB        *helper.Database
	Entities  *database.EntitiesDBHandler
	Relations *database.RelationsDBHandler
	NoteLinks *database.NoteLinksDBHandler
	// Traversal and analytics queries
	Engine *query.Engine
	// Optional entity name embedder
	Embedder pipeline.EmbedFunc
	// Logging
	log *slog.Logger
}

// NewCoGraph creates a new CoGraph instance with all handlers initialized
func NewCoGraph(config *helper.DatabaseConfiguration, embeddingDim int) (*CoGraph, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	// Initialize database
	db := helper.NewDatabase("cograph", config, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Create all handlers in the correct order (entities first, relations
	// and note links reference them)
	// force=false to not reload if functions already exist
	entities, err := database.NewEntitiesDBHandler(db, embeddingDim, false)
	if err != nil {
		return nil, helper.NewError("create entities handler", err)
	}

	relations, err := database.NewRelationsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create relations handler", err)
	}

	noteLinks, err := database.NewNoteLinksDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create note links handler", err)
	}

	// Create query engine with database handlers
	engine := query.NewEngine(entities, relations, noteLinks)

	return &CoGraph{
		DB:        db,
		Entities:  entities,
		Relations: relations,
		NoteLinks: noteLinks,
		Engine:    engine,
		log:       logger,
	}, nil
}

// Close closes the database connection
func (c *CoGraph) Close() error {
	if c.DB != nil && c.DB.Instance != nil {
		return c.DB.Instance.Close()
	}
	return nil
}

// SetEmbedder sets the embedder used for entity name embeddings
func (c *CoGraph) SetEmbedder(embedder pipeline.EmbedFunc) {
	c.Embedder = embedder
}

// UseDefaultEmbedder sets up the default sentence transformer embedder.
// This uses the all-MiniLM-L6-v2 model (384 dimensions).
func (c *CoGraph) UseDefaultEmbedder() error {
	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		return helper.NewError("create default embedder", err)
	}

	c.Embedder = embedder
	return nil
}

// AddEntity inserts an entity, normalizing its name first. If an entity with
// the same type and normalized name already exists, the existing row is
// updated in place and returned. If an embedder is set, the entity name is
// embedded and stored for similarity search.
func (c *CoGraph) AddEntity(ctx context.Context, entity *model.Entity) error {
	if entity == nil {
		return helper.NewError("add entity", fmt.Errorf("entity is nil"))
	}
	if entity.Name == "" {
		return helper.NewError("add entity", fmt.Errorf("entity name is empty"))
	}

	entity.NormalizedName = model.NormalizeName(entity.Name)

	if err := c.Entities.InsertEntity(entity); err != nil {
		return helper.NewError("insert entity", err)
	}

	c.log.Info("Inserted entity", slog.String("entity_id", entity.ID.String()), slog.String("name", entity.Name))

	if c.Embedder != nil {
		embedding, err := c.Embedder(entity.Name)
		if err != nil {
			return helper.NewError("embed entity name", err)
		}
		if err := c.Entities.UpdateEntityEmbedding(entity.ID, embedding); err != nil {
			return helper.NewError("update entity embedding", err)
		}
		entity.Embedding = embedding
	}

	return nil
}

// AddRelation inserts a relation between two entities. Duplicate relations
// (same from, to and type) are not created twice; the existing relation is
// returned unchanged.
func (c *CoGraph) AddRelation(relation *model.Relation) error {
	if relation == nil {
		return helper.NewError("add relation", fmt.Errorf("relation is nil"))
	}

	if err := c.Relations.InsertRelation(relation); err != nil {
		return helper.NewError("insert relation", err)
	}

	return nil
}

// LinkNote links a note to the given entities, recording that each entity is
// referenced by the note. Returns the created note links.
func (c *CoGraph) LinkNote(noteID uuid.UUID, entityIDs ...uuid.UUID) ([]*model.NoteLink, error) {
	links := make([]*model.NoteLink, 0, len(entityIDs))
	for i, entityID := range entityIDs {
		link := &model.NoteLink{
			NoteID:   noteID,
			EntityID: entityID,
		}
		if err := c.NoteLinks.InsertNoteLink(link); err != nil {
			return links, helper.NewError(fmt.Sprintf("insert note link %d", i), err)
		}
		links = append(links, link)
	}

	c.log.Info("Linked note to entities", slog.String("note_id", noteID.String()), slog.Int("num_entities", len(entityIDs)))

	return links, nil
}

// GetStats returns aggregate statistics over the whole graph
func (c *CoGraph) GetStats(ctx context.Context) (*model.GraphStats, error) {
	return c.Engine.GetStats(ctx)
}

// GetNode returns a single entity with its degree counts.
// Returns (nil, nil) if the entity does not exist.
func (c *CoGraph) GetNode(ctx context.Context, id uuid.UUID) (*model.GraphNode, error) {
	return c.Engine.GetNode(ctx, id)
}

// GetNeighborhood returns the immediate neighbors of an entity.
// A nil config uses the defaults.
func (c *CoGraph) GetNeighborhood(ctx context.Context, id uuid.UUID, config *model.NeighborhoodConfig) (*model.Neighborhood, error) {
	return c.Engine.GetNeighborhood(ctx, id, config)
}

// BFS performs breadth-first traversal from a start entity, returning every
// reachable entity with its minimum hop count. A nil config uses the defaults.
func (c *CoGraph) BFS(ctx context.Context, startID uuid.UUID, config *model.TraversalConfig) (map[uuid.UUID]*model.TraversalNode, error) {
	return c.Engine.BFS(ctx, startID, config)
}

// FindPath finds the hop-minimal path between two entities.
// Returns (nil, nil) if no path exists within the depth limit.
func (c *CoGraph) FindPath(ctx context.Context, fromID uuid.UUID, toID uuid.UUID, config *model.TraversalConfig) (*model.Path, error) {
	return c.Engine.FindPath(ctx, fromID, toID, config)
}

// FindCoOccurring returns entities appearing in the same notes as the given
// entity, descending by the number of shared notes
func (c *CoGraph) FindCoOccurring(ctx context.Context, id uuid.UUID, limit int, minOccurrences int) ([]*model.CoOccurrence, error) {
	return c.Engine.FindCoOccurring(ctx, id, limit, minOccurrences)
}

// GetHubs returns the most connected entities in the graph
func (c *CoGraph) GetHubs(ctx context.Context, limit int) ([]*model.GraphNode, error) {
	return c.Engine.GetHubs(ctx, limit)
}

// SuggestRelations returns co-occurring entity pairs that have no explicit
// relation yet. A nil config uses the defaults.
func (c *CoGraph) SuggestRelations(ctx context.Context, config *model.SuggestionConfig) ([]*model.SuggestedRelation, error) {
	return c.Engine.SuggestRelations(ctx, config)
}

// FindSimilarEntities embeds the query text and returns entities whose name
// embeddings are closest to it by cosine similarity. Requires an embedder;
// use SetEmbedder or UseDefaultEmbedder first.
func (c *CoGraph) FindSimilarEntities(ctx context.Context, text string, limit int) ([]*model.Entity, error) {
	if c.Embedder == nil {
		return nil, helper.NewError("find similar entities", fmt.Errorf("embedder not set, use SetEmbedder() first"))
	}

	embedding, err := c.Embedder(text)
	if err != nil {
		return nil, helper.NewError("embed query", err)
	}

	return c.Entities.SelectEntitiesBySimilarity(ctx, embedding, limit, 0)
}
