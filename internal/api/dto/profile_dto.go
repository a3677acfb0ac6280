package dto

import (
	"time"

	"github.com/ottocrm/ottocrm/internal/domain"
)

// UpdateProfileRequest payload for settings.
type UpdateProfileRequest struct {
	FullName string `json:"full_name" validate:"required"`
}

// UpdateRoleRequest payload for admin role changes.
type UpdateRoleRequest struct {
	Role domain.Role `json:"role" validate:"required,oneof=ADMIN AGENT CUSTOMER"`
}

// ProfileResponse response shape for profile reads.
type ProfileResponse struct {
	ID        string      `json:"id"`
	Role      domain.Role `json:"role"`
	FullName  string      `json:"full_name"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
