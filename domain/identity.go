// Package domain contains core concepts of the chat system.
// This file defines Identity entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// DefaultGender is the label used when a participant declares nothing.
const DefaultGender = "unknown"

const avatarPoolSize = 10

// Identity represents one participant slot, keyed by (IP, Device) so a
// returning connection reuses its record instead of creating a duplicate.
// The record is owned by the store; the presence registry only keeps the
// ID and a last-active timestamp.
type Identity struct {
	ID            uuid.UUID `json:"id"`
	Nickname      string    `json:"nickname"`
	IP            string    `json:"ip"`
	Device        string    `json:"device"`
	Avatar        string    `json:"avatar"`
	Gender        string    `json:"gender"`
	IsOnline      bool      `json:"is_online"`
	IsBlacklisted bool      `json:"is_blacklisted"`
	LastActiveAt  time.Time `json:"last_active_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RandomAvatar picks one avatar file name from the fixed pool.
func RandomAvatar() string {
	return fmt.Sprintf("%d.png", rand.Intn(avatarPoolSize))
}
