package models

import "time"

// Activity records who did what for the admin activity feed.
type Activity struct {
	ID        string    `db:"id" json:"id"`
	Action    string    `db:"action" json:"action"`
	Item      string    `db:"item" json:"item"`
	Type      string    `db:"type" json:"type"`
	UserID    *string   `db:"user_id" json:"user_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
