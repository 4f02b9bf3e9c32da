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
	"github.com/siherrmann/cograph/helper"
	"github.com/siherrmann/cograph/model"
	loadSql "github.com/siherrmann/cograph/sql"
)

// RelationsDBHandlerFunctions defines the interface for Relations database operations.
type RelationsDBHandlerFunctions interface {
	InsertRelation(relation *model.Relation) error
	SelectRelation(ctx context.Context, id uuid.UUID) (*model.Relation, error)
	SelectRelationsFromEntity(ctx context.Context, entityID uuid.UUID, relationTypes []model.RelationType, minWeight float64, limit int) ([]*model.Relation, error)
	SelectRelationsToEntity(ctx context.Context, entityID uuid.UUID, relationTypes []model.RelationType, minWeight float64, limit int) ([]*model.Relation, error)
	SelectRelationsInvolvingEntity(ctx context.Context, entityID uuid.UUID, relationTypes []model.RelationType) ([]*model.Relation, error)
	CountRelationsByType(ctx context.Context) (map[model.RelationType]int, error)
	AggregateDegreesByEntity(ctx context.Context) ([]*model.EntityDegree, error)
	RelationExistsBetween(ctx context.Context, a uuid.UUID, b uuid.UUID) (bool, error)
	UpdateRelationWeight(id uuid.UUID, weight float64) error
	DeleteRelation(id uuid.UUID) error
}

// RelationsDBHandler handles relation-related database operations
type RelationsDBHandler struct {
	db *helper.Database
}

// NewRelationsDBHandler creates a new relations database handler.
// It initializes the database connection and loads relation-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewRelationsDBHandler(db *helper.Database, force bool) (*RelationsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	relationsDbHandler := &RelationsDBHandler{
		db: db,
	}

	err := loadSql.LoadRelationsSql(relationsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load relations sql", err)
	}

	err = relationsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized RelationsDBHandler")

	return relationsDbHandler, nil
}

// CreateTable creates the 'relations' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *RelationsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Use the SQL init() function to create all tables and indexes
	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_relations();`)
	if err != nil {
		log.Panicf("error initializing relations table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table relations")

	return nil
}

// InsertRelation inserts a new relation. Inserting a relation with an
// existing (from, to, type) triple is a no-op returning the existing row,
// so the unique-triple invariant can never be violated.
func (h *RelationsDBHandler) InsertRelation(relation *model.Relation) error {
	weight := relation.Weight
	if weight == 0 {
		weight = model.DefaultRelationWeight
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_relation($1, $2, $3, $4, $5)`,
		relation.FromID,
		relation.ToID,
		relation.Type,
		weight,
		relation.Metadata,
	)

	err := scanRelation(row, relation)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectRelation retrieves a relation by ID.
// A missing relation returns (nil, nil), not an error.
func (h *RelationsDBHandler) SelectRelation(ctx context.Context, id uuid.UUID) (*model.Relation, error) {
	relation := &model.Relation{}
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_relation($1)`,
		id,
	)

	err := scanRelation(row, relation)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return relation, nil
}

// SelectRelationsFromEntity retrieves relations originating from an entity.
// A limit <= 0 means no limit.
func (h *RelationsDBHandler) SelectRelationsFromEntity(ctx context.Context, entityID uuid.UUID, relationTypes []model.RelationType, minWeight float64, limit int) ([]*model.Relation, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_relations_from_entity($1, $2, $3, $4)`,
		entityID,
		relationTypesArray(relationTypes),
		minWeight,
		nullableLimit(limit),
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanRelations(rows)
}

// SelectRelationsToEntity retrieves relations targeting an entity.
// A limit <= 0 means no limit.
func (h *RelationsDBHandler) SelectRelationsToEntity(ctx context.Context, entityID uuid.UUID, relationTypes []model.RelationType, minWeight float64, limit int) ([]*model.Relation, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_relations_to_entity($1, $2, $3, $4)`,
		entityID,
		relationTypesArray(relationTypes),
		minWeight,
		nullableLimit(limit),
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanRelations(rows)
}

// SelectRelationsInvolvingEntity retrieves all relations connected to an
// entity in either direction, used by traversal
func (h *RelationsDBHandler) SelectRelationsInvolvingEntity(ctx context.Context, entityID uuid.UUID, relationTypes []model.RelationType) ([]*model.Relation, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_relations_involving_entity($1, $2)`,
		entityID,
		relationTypesArray(relationTypes),
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanRelations(rows)
}

// CountRelationsByType returns the number of relations grouped by type
func (h *RelationsDBHandler) CountRelationsByType(ctx context.Context) (map[model.RelationType]int, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM count_relations_by_type()`,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	counts := map[model.RelationType]int{}
	for rows.Next() {
		var relationType model.RelationType
		var count int
		err := rows.Scan(&relationType, &count)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		counts[relationType] = count
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return counts, nil
}

// AggregateDegreesByEntity returns in- and out-degree counts per entity.
// Entities without relations have no row.
func (h *RelationsDBHandler) AggregateDegreesByEntity(ctx context.Context) ([]*model.EntityDegree, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM aggregate_degrees_by_entity()`,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var degrees []*model.EntityDegree
	for rows.Next() {
		degree := &model.EntityDegree{}
		err := rows.Scan(
			&degree.EntityID,
			&degree.InDegree,
			&degree.OutDegree,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		degrees = append(degrees, degree)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return degrees, nil
}

// RelationExistsBetween reports whether any relation of any type exists
// between two entities in either direction
func (h *RelationsDBHandler) RelationExistsBetween(ctx context.Context, a uuid.UUID, b uuid.UUID) (bool, error) {
	var exists bool
	err := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT relation_exists_between($1, $2)`,
		a,
		b,
	).Scan(&exists)
	if err != nil {
		return false, helper.NewError("scan", err)
	}

	return exists, nil
}

// UpdateRelationWeight updates the weight of a relation
func (h *RelationsDBHandler) UpdateRelationWeight(id uuid.UUID, weight float64) error {
	_, err := h.db.Instance.Exec(
		`SELECT * FROM update_relation_weight($1, $2)`,
		id,
		weight,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// DeleteRelation deletes a relation by ID
func (h *RelationsDBHandler) DeleteRelation(id uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_relation($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

func scanRelation(row scanner, relation *model.Relation) error {
	return row.Scan(
		&relation.ID,
		&relation.FromID,
		&relation.ToID,
		&relation.Type,
		&relation.Weight,
		&relation.Metadata,
		&relation.CreatedAt,
	)
}

func scanRelations(rows *sql.Rows) ([]*model.Relation, error) {
	var relations []*model.Relation
	for rows.Next() {
		relation := &model.Relation{}
		err := scanRelation(rows, relation)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		relations = append(relations, relation)
	}

	err := rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return relations, nil
}

// relationTypesArray converts a type filter to a nullable text array parameter
func relationTypesArray(relationTypes []model.RelationType) interface{} {
	if len(relationTypes) == 0 {
		return nil
	}
	types := make([]string, len(relationTypes))
	for i, t := range relationTypes {
		types[i] = string(t)
	}
	return pq.Array(types)
}

// nullableLimit converts a limit <= 0 to a NULL parameter (no limit)
func nullableLimit(limit int) interface{} {
	if limit <= 0 {
		return nil
	}
	return limit
}
