package models

import (
	"time"
)

// Author represents a content author. Account management lives outside this
// service; the articles query only needs identity fields for the join.
type Author struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Role is the caller role carried in a verified token
type Role string

const (
	RoleAuthor Role = "author"
	RoleAdmin  Role = "admin"
)

// Principal is the authenticated caller of an author/admin endpoint
type Principal struct {
	UserID int64
	Role   Role
}

// IsAdmin reports whether the caller has admin rights
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
