package domain

import (
	"time"

	"github.com/google/uuid"
)

// BlacklistEntry is the durable source of truth for an identity's
// blacklist flag; the flag on Identity is a denormalized cache kept in
// sync when entries are created or deleted.
type BlacklistEntry struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// SensitiveWord is a single unique forbidden token.
type SensitiveWord struct {
	ID        uuid.UUID `json:"id"`
	Word      string    `json:"word"`
	CreatedAt time.Time `json:"created_at"`
}
