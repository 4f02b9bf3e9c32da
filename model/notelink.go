package model

import (
	"time"

	"github.com/google/uuid"
)

// NoteLink associates a note with an entity mentioned in it.
// Note links are written by the extraction collaborator and are read-only
// for the traversal and analytics engine. Two entities co-occur when they
// are linked to the same note.
type NoteLink struct {
	ID         uuid.UUID `json:"id"`
	NoteID     uuid.UUID `json:"note_id"`
	EntityID   uuid.UUID `json:"entity_id"`
	Confidence float64   `json:"confidence"`
	StartPos   *int      `json:"start_pos,omitempty"`
	EndPos     *int      `json:"end_pos,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
