package models

import "time"

// ActivityLog is one write request recorded for the audit trail.
type ActivityLog struct {
	ID        string    `db:"id" json:"id"`
	UserID    *string   `db:"user_id" json:"user_id,omitempty"`
	Action    string    `db:"action" json:"action"`
	Resource  string    `db:"resource" json:"resource"`
	Path      string    `db:"path" json:"path"`
	Status    int       `db:"status" json:"status"`
	IPAddress string    `db:"ip_address" json:"ip_address"`
	UserAgent string    `db:"user_agent" json:"user_agent"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ActivityFilter narrows activity listings.
type ActivityFilter struct {
	ListFilter
	UserID   string
	Resource string
}
