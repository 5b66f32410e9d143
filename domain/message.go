// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// Messages are immutable and validated by the domain.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat event. The sender fields are a
// point-in-time snapshot taken when the message was posted; they are never
// re-derived from the identity record. Only IsDeleted may change afterwards,
// moderation flips it instead of removing the record.
type Message struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Nickname    string    `json:"nickname"`
	Avatar      string    `json:"avatar"`
	Gender      string    `json:"gender"`
	Content     string    `json:"content"`
	At          time.Time `json:"at"`
	IsDeleted   bool      `json:"is_deleted"`
	IsSensitive bool      `json:"is_sensitive"`
	IP          string    `json:"ip"`
	Device      string    `json:"device"`
}
