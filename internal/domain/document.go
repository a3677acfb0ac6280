package domain

import "time"

// Document is a documentation/FAQ entry. Authored by admins,
// readable by all authenticated roles.
type Document struct {
	ID          string
	Title       string
	Description string
	Content     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
