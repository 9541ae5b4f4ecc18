package domain

import (
	"encoding/json"
	"time"
)

// User represents a persisted user record.
type User struct {
	ID           string          `db:"id" json:"id"`
	Email        string          `db:"email" json:"email"`
	PasswordHash string          `db:"password_hash" json:"-"`
	Name         *string         `db:"name" json:"name,omitempty"`
	Avatar       *string         `db:"avatar" json:"avatar,omitempty"`
	Preferences  json.RawMessage `db:"preferences" json:"preferences,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}
