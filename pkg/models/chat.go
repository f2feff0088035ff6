package models

import "time"

// Chat message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one entry in a space's transcript. Transcripts are
// append-only (clearable in bulk) and live in the store plus the local
// durable cache; they are not written through to the remote store.
type ChatMessage struct {
	ID        string    `json:"id"`
	SpaceID   string    `json:"space_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
