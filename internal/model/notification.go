package model

import (
	"time"
)

const (
	NotificationTypeSignup = "signup"
	NotificationTypeLogin  = "login"
	NotificationTypeUpdate = "update"
	NotificationTypeAdd    = "add"
	NotificationTypeError  = "error"
)

// Notification is an append-only audit side record. Writes are best-effort:
// a failed write is logged, never surfaced to the request that caused it.
type Notification struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	Type      string    `db:"type" json:"type"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
