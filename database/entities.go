package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/cograph/helper"
	"github.com/siherrmann/cograph/model"
	loadSql "github.com/siherrmann/cograph/sql"
)

// EntitiesDBHandlerFunctions defines the interface for Entities database operations.
type EntitiesDBHandlerFunctions interface {
	InsertEntity(entity *model.Entity) error
	SelectEntity(ctx context.Context, id uuid.UUID) (*model.Entity, error)
	SelectEntityByName(ctx context.Context, name string, entityType model.EntityType) (*model.Entity, error)
	SelectEntitiesByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Entity, error)
	SelectEntitiesByType(ctx context.Context, entityType model.EntityType, limit int) ([]*model.Entity, error)
	SearchEntities(ctx context.Context, searchTerm string, entityType *model.EntityType, limit int) ([]*model.Entity, error)
	CountEntitiesByType(ctx context.Context) (map[model.EntityType]int, error)
	UpdateEntityMetadata(id uuid.UUID, metadata model.Metadata) error
	UpdateEntityEmbedding(id uuid.UUID, embedding []float32) error
	SelectEntitiesBySimilarity(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*model.Entity, error)
	DeleteEntity(id uuid.UUID) error
}

// EntitiesDBHandler handles entity-related database operations
type EntitiesDBHandler struct {
	db *helper.Database
}

// NewEntitiesDBHandler creates a new entities database handler.
// It initializes the database connection and loads entity-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewEntitiesDBHandler(db *helper.Database, embeddingDim int, force bool) (*EntitiesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	entitiesDbHandler := &EntitiesDBHandler{
		db: db,
	}

	err := loadSql.LoadEntitiesSql(entitiesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load entities sql", err)
	}

	err = entitiesDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized EntitiesDBHandler")

	return entitiesDbHandler, nil
}

// CreateTable creates the 'entities' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *EntitiesDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Use the SQL init() function to create all tables and indexes
	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_entities($1);`, embeddingDim)
	if err != nil {
		log.Panicf("error initializing entities table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table entities")

	return nil
}

// InsertEntity inserts a new entity (or merges metadata if an entity of the
// same type and normalized name exists)
func (h *EntitiesDBHandler) InsertEntity(entity *model.Entity) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_entity($1, $2, $3)`,
		entity.Name,
		entity.Type,
		entity.Metadata,
	)

	err := scanEntity(row, entity)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectEntity retrieves an entity by ID.
// A missing entity returns (nil, nil), not an error.
func (h *EntitiesDBHandler) SelectEntity(ctx context.Context, id uuid.UUID) (*model.Entity, error) {
	entity := &model.Entity{}
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_entity($1)`,
		id,
	)

	err := scanEntity(row, entity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return entity, nil
}

// SelectEntityByName retrieves an entity by normalized name and type.
// A missing entity returns (nil, nil), not an error.
func (h *EntitiesDBHandler) SelectEntityByName(ctx context.Context, name string, entityType model.EntityType) (*model.Entity, error) {
	entity := &model.Entity{}
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_entity_by_name($1, $2)`,
		name,
		entityType,
	)

	err := scanEntity(row, entity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return entity, nil
}

// SelectEntitiesByIDs retrieves entities by a set of IDs in one batch.
// Missing IDs are silently omitted from the result; order is not guaranteed.
func (h *EntitiesDBHandler) SelectEntitiesByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Entity, error) {
	if len(ids) == 0 {
		return []*model.Entity{}, nil
	}

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_entities_by_ids($1)`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanEntities(rows)
}

// SelectEntitiesByType retrieves entities by type
func (h *EntitiesDBHandler) SelectEntitiesByType(ctx context.Context, entityType model.EntityType, limit int) ([]*model.Entity, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_entities_by_type($1, $2)`,
		entityType,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanEntities(rows)
}

// SearchEntities searches entities by name pattern
func (h *EntitiesDBHandler) SearchEntities(ctx context.Context, searchTerm string, entityType *model.EntityType, limit int) ([]*model.Entity, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM search_entities($1, $2, $3)`,
		searchTerm,
		entityType,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanEntities(rows)
}

// CountEntitiesByType returns the number of entities grouped by type
func (h *EntitiesDBHandler) CountEntitiesByType(ctx context.Context) (map[model.EntityType]int, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM count_entities_by_type()`,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	counts := map[model.EntityType]int{}
	for rows.Next() {
		var entityType model.EntityType
		var count int
		err := rows.Scan(&entityType, &count)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		counts[entityType] = count
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return counts, nil
}

// UpdateEntityMetadata updates the metadata of an entity
func (h *EntitiesDBHandler) UpdateEntityMetadata(id uuid.UUID, metadata model.Metadata) error {
	_, err := h.db.Instance.Exec(
		`SELECT * FROM update_entity_metadata($1, $2)`,
		id,
		metadata,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// UpdateEntityEmbedding updates the name embedding of an entity
func (h *EntitiesDBHandler) UpdateEntityEmbedding(id uuid.UUID, embedding []float32) error {
	_, err := h.db.Instance.Exec(
		`SELECT * FROM update_entity_embedding($1, $2)`,
		id,
		pgvector.NewVector(embedding),
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// SelectEntitiesBySimilarity retrieves entities by embedding similarity
func (h *EntitiesDBHandler) SelectEntitiesBySimilarity(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*model.Entity, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_entities_by_similarity($1, $2, $3)`,
		pgvector.NewVector(embedding),
		limit,
		threshold,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var entities []*model.Entity
	for rows.Next() {
		entity := &model.Entity{}
		err := rows.Scan(
			&entity.ID,
			&entity.Type,
			&entity.Name,
			&entity.NormalizedName,
			&entity.Metadata,
			&entity.CreatedAt,
			&entity.UpdatedAt,
			&entity.Similarity,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		entities = append(entities, entity)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return entities, nil
}

// DeleteEntity deletes an entity by ID
func (h *EntitiesDBHandler) DeleteEntity(id uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_entity($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// scanner abstracts over sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntity(row scanner, entity *model.Entity) error {
	return row.Scan(
		&entity.ID,
		&entity.Type,
		&entity.Name,
		&entity.NormalizedName,
		&entity.Metadata,
		&entity.CreatedAt,
		&entity.UpdatedAt,
	)
}

func scanEntities(rows *sql.Rows) ([]*model.Entity, error) {
	var entities []*model.Entity
	for rows.Next() {
		entity := &model.Entity{}
		err := scanEntity(rows, entity)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		entities = append(entities, entity)
	}

	err := rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return entities, nil
}
