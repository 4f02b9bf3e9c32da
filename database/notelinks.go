package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/cograph/helper"
	"github.com/siherrmann/cograph/model"
	loadSql "github.com/siherrmann/cograph/sql"
)

// NoteLinksDBHandlerFunctions defines the interface for NoteLinks database operations.
type NoteLinksDBHandlerFunctions interface {
	InsertNoteLink(link *model.NoteLink) error
	SelectNoteLinksForEntity(ctx context.Context, entityID uuid.UUID) ([]*model.NoteLink, error)
	SelectEntitiesForNote(ctx context.Context, noteID uuid.UUID) ([]*model.Entity, error)
	SelectSharedNoteCounts(ctx context.Context, entityID uuid.UUID, minOccurrences int) ([]*model.SharedNoteCount, error)
	SelectCoOccurringPairs(ctx context.Context, minOccurrences int, limit int) ([]*model.CoOccurringPair, error)
	DeleteNoteLinksForNote(noteID uuid.UUID) error
}

// NoteLinksDBHandler handles note-link-related database operations
type NoteLinksDBHandler struct {
	db *helper.Database
}

// NewNoteLinksDBHandler creates a new note links database handler.
// It initializes the database connection and loads note-link-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewNoteLinksDBHandler(db *helper.Database, force bool) (*NoteLinksDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	noteLinksDbHandler := &NoteLinksDBHandler{
		db: db,
	}

	err := loadSql.LoadNoteLinksSql(noteLinksDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load note links sql", err)
	}

	err = noteLinksDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized NoteLinksDBHandler")

	return noteLinksDbHandler, nil
}

// CreateTable creates the 'note_links' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *NoteLinksDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Use the SQL init() function to create all tables and indexes
	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_note_links();`)
	if err != nil {
		log.Panicf("error initializing note_links table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table note_links")

	return nil
}

// InsertNoteLink inserts a new note link
func (h *NoteLinksDBHandler) InsertNoteLink(link *model.NoteLink) error {
	confidence := link.Confidence
	if confidence == 0 {
		confidence = 1.0
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_note_link($1, $2, $3, $4, $5)`,
		link.NoteID,
		link.EntityID,
		confidence,
		link.StartPos,
		link.EndPos,
	)

	err := scanNoteLink(row, link)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectNoteLinksForEntity retrieves all note links for an entity
func (h *NoteLinksDBHandler) SelectNoteLinksForEntity(ctx context.Context, entityID uuid.UUID) ([]*model.NoteLink, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_note_links_for_entity($1)`,
		entityID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var links []*model.NoteLink
	for rows.Next() {
		link := &model.NoteLink{}
		err := scanNoteLink(rows, link)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		links = append(links, link)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return links, nil
}

// SelectEntitiesForNote retrieves all entities linked to a note
func (h *NoteLinksDBHandler) SelectEntitiesForNote(ctx context.Context, noteID uuid.UUID) ([]*model.Entity, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_entities_for_note($1)`,
		noteID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanEntities(rows)
}

// SelectSharedNoteCounts returns, for every other entity, the number of
// distinct notes shared with the given entity, descending by count
func (h *NoteLinksDBHandler) SelectSharedNoteCounts(ctx context.Context, entityID uuid.UUID, minOccurrences int) ([]*model.SharedNoteCount, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_shared_note_counts($1, $2)`,
		entityID,
		minOccurrences,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var counts []*model.SharedNoteCount
	for rows.Next() {
		count := &model.SharedNoteCount{}
		err := rows.Scan(
			&count.EntityID,
			&count.Count,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		counts = append(counts, count)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return counts, nil
}

// SelectCoOccurringPairs returns unordered entity pairs (lower id first)
// sharing at least minOccurrences notes with no relation of any type between
// them in either direction, descending by count
func (h *NoteLinksDBHandler) SelectCoOccurringPairs(ctx context.Context, minOccurrences int, limit int) ([]*model.CoOccurringPair, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_co_occurring_pairs($1, $2)`,
		minOccurrences,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var pairs []*model.CoOccurringPair
	for rows.Next() {
		pair := &model.CoOccurringPair{}
		err := rows.Scan(
			&pair.FirstID,
			&pair.SecondID,
			&pair.Count,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		pairs = append(pairs, pair)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return pairs, nil
}

// DeleteNoteLinksForNote deletes all note links for a note
func (h *NoteLinksDBHandler) DeleteNoteLinksForNote(noteID uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_note_links_for_note($1)`,
		noteID,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

func scanNoteLink(row scanner, link *model.NoteLink) error {
	return row.Scan(
		&link.ID,
		&link.NoteID,
		&link.EntityID,
		&link.Confidence,
		&link.StartPos,
		&link.EndPos,
		&link.CreatedAt,
	)
}
