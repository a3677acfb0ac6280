package dto

import (
	"time"

	"github.com/ottocrm/ottocrm/internal/domain"
)

// CreateTicketRequest payload. Priority and assigned_to are honored only for
// roles the policy permits; other callers get defaults.
type CreateTicketRequest struct {
	Title       string                `json:"title" validate:"required"`
	Description string                `json:"description" validate:"required"`
	Priority    domain.TicketPriority `json:"priority" validate:"omitempty,oneof=HIGH MEDIUM LOW"`
	AssignedTo  *string               `json:"assigned_to"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status" validate:"required,oneof=OPEN IN_PROGRESS RESOLVED CLOSED"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	Priority domain.TicketPriority `json:"priority" validate:"required,oneof=HIGH MEDIUM LOW"`
}

// UpdateAssigneeRequest payload. A null assigned_to clears the assignment;
// re-sending the current assignee clears it too (toggle-to-unassign).
type UpdateAssigneeRequest struct {
	AssignedTo *string `json:"assigned_to"`
}

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	MessageText string `json:"message_text" validate:"required"`
}

// TicketResponse response shape for ticket reads.
type TicketResponse struct {
	ID             string                `json:"id"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Status         domain.TicketStatus   `json:"status"`
	Priority       domain.TicketPriority `json:"priority"`
	CreatedBy      string                `json:"created_by"`
	CreatedByName  string                `json:"created_by_name"`
	AssignedTo     *string               `json:"assigned_to"`
	AssignedToName *string               `json:"assigned_to_name"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// TicketDetailResponse bundles a ticket with its message thread.
type TicketDetailResponse struct {
	TicketResponse
	Messages []TicketMessageResponse `json:"messages"`
}

// TicketMessageResponse represents one thread message.
type TicketMessageResponse struct {
	ID          string    `json:"id"`
	TicketID    string    `json:"ticket_id"`
	SenderID    string    `json:"sender_id"`
	SenderName  string    `json:"sender_name"`
	MessageText string    `json:"message_text"`
	IsInternal  bool      `json:"is_internal"`
	CreatedAt   time.Time `json:"created_at"`
}
