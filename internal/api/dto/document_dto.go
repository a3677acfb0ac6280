package dto

import "time"

// CreateDocumentRequest payload.
type CreateDocumentRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Content     string `json:"content" validate:"required"`
}

// UpdateDocumentRequest payload; omitted fields keep their current value.
// An explicit empty string clears the description; title and content may
// not be cleared.
type UpdateDocumentRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Content     *string `json:"content"`
}

// DocumentResponse response shape.
type DocumentResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
