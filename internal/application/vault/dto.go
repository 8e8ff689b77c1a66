package vault

import (
	"time"

	"github.com/google/uuid"

	"github.com/corsair/backend/internal/domain/vault"
)

// EnrollPirateRequest represents a request to enroll a participant under an alias
type EnrollPirateRequest struct {
	Identity string `json:"identity" binding:"required,min=1,max=500"`
}

// PirateResponse represents an alias record in API responses.
// RealIdentity is present only when the owner key was supplied.
type PirateResponse struct {
	ID           uuid.UUID `json:"id"`
	ExpeditionID uuid.UUID `json:"expedition_id"`
	Alias        string    `json:"alias"`
	RealIdentity *string   `json:"real_identity,omitempty"`
	EnrolledAt   time.Time `json:"enrolled_at"`
}

// AttachNoteRequest represents a request to attach an encrypted note
type AttachNoteRequest struct {
	Body string `json:"body" binding:"required,min=1,max=2000"`
}

// NoteResponse represents a note in API responses.
// Body is present only when the owner key was supplied.
type NoteResponse struct {
	ID           uuid.UUID `json:"id"`
	ExpeditionID uuid.UUID `json:"expedition_id"`
	Body         *string   `json:"body,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToPirateResponse converts an alias record to its response representation
func ToPirateResponse(p *vault.Pirate) PirateResponse {
	return PirateResponse{
		ID:           p.ID,
		ExpeditionID: p.ExpeditionID,
		Alias:        p.Alias,
		EnrolledAt:   p.CreatedAt,
	}
}

// ToNoteResponse converts a note to its response representation
func ToNoteResponse(n *vault.Note) NoteResponse {
	return NoteResponse{
		ID:           n.ID,
		ExpeditionID: n.ExpeditionID,
		CreatedAt:    n.CreatedAt,
	}
}
