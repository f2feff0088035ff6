package models

import "time"

// Document types form a closed set.
const (
	DocTypeTutorial  = "tutorial"
	DocTypeGuide     = "guide"
	DocTypeReference = "reference"
	DocTypeExercise  = "exercise"
)

// Document is a knowledge-base entry owned by a space. Rows are always
// written through to the remote store; the ID and timestamps come back
// server-assigned.
type Document struct {
	ID        string                 `json:"id" db:"id"`
	SpaceID   string                 `json:"space_id" db:"space_id"`
	Title     string                 `json:"title" db:"title"`
	Content   string                 `json:"content" db:"content"`
	Type      string                 `json:"type" db:"type"`
	Tags      []string               `json:"tags"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt time.Time              `json:"updated_at" db:"updated_at"`
}

// ValidDocumentType reports whether t is one of the known types.
func ValidDocumentType(t string) bool {
	switch t {
	case DocTypeTutorial, DocTypeGuide, DocTypeReference, DocTypeExercise:
		return true
	}
	return false
}
