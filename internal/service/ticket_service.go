package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ottocrm/ottocrm/internal/domain"
	"github.com/ottocrm/ottocrm/internal/events"
	"github.com/ottocrm/ottocrm/internal/policy"
	"github.com/ottocrm/ottocrm/internal/repository"
	apperrors "github.com/ottocrm/ottocrm/pkg/util"
)

// TicketService coordinates ticket workflows: creation, lifecycle mutations,
// assignment and the chat thread. Every operation takes the explicit
// principal and decides through the policy package.
type TicketService struct {
	tickets    repository.TicketRepository
	messages   repository.TicketMessageRepository
	profiles   repository.ProfileRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	MessageRepo repository.TicketMessageRepository
	ProfileRepo repository.ProfileRepository
	Dispatcher  events.Dispatcher
}

// TicketCreateInput describes ticket creation payload. Priority and
// AssignedTo are requests, not commands: they apply only when the creating
// principal's role permits them.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	AssignedTo  *string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		messages:   deps.MessageRepo,
		profiles:   deps.ProfileRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket creates a ticket owned by the principal. Customer submissions
// always start OPEN with MEDIUM priority and no assignee, regardless of form
// input. Staff may set the initial priority; only admins may set the initial
// assignee, and the assignee must be an agent.
func (s *TicketService) CreateTicket(ctx context.Context, principal policy.Principal, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		Status:      domain.TicketStatusOpen,
		Priority:    domain.TicketPriorityMedium,
		CreatedBy:   principal.ID,
	}

	if policy.CanSetPriority(principal) && input.Priority.Valid() {
		ticket.Priority = input.Priority
	}
	if input.AssignedTo != nil && policy.CanAssign(principal) {
		if err := s.requireAgent(ctx, *input.AssignedTo); err != nil {
			return nil, err
		}
		ticket.AssignedTo = input.AssignedTo
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, principal, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			Title:      ticket.Title,
			Priority:   ticket.Priority,
			AssignedTo: ticket.AssignedTo,
		},
	})
	return ticket, nil
}

// ListTickets returns every ticket for staff and the principal's own tickets
// for customers, newest first.
func (s *TicketService) ListTickets(ctx context.Context, principal policy.Principal) ([]domain.Ticket, error) {
	var (
		tickets []domain.Ticket
		err     error
	)
	if policy.CanViewAllTickets(principal) {
		tickets, err = s.tickets.ListAll(ctx)
	} else {
		tickets, err = s.tickets.ListByCreator(ctx, principal.ID)
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetTicket fetches one ticket with its message thread. A ticket the
// principal may not view is reported as not found.
func (s *TicketService) GetTicket(ctx context.Context, principal policy.Principal, ticketID string) (*domain.Ticket, []domain.TicketMessage, error) {
	ticket, err := s.loadVisible(ctx, principal, ticketID)
	if err != nil {
		return nil, nil, err
	}
	msgs, err := s.messages.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, msgs, nil
}

// SetStatus applies a policy-gated status change. Setting the current status
// again succeeds without a write.
func (s *TicketService) SetStatus(ctx context.Context, principal policy.Principal, ticketID string, next domain.TicketStatus) (*domain.Ticket, error) {
	ticket, err := s.loadVisible(ctx, principal, ticketID)
	if err != nil {
		return nil, err
	}

	switch policy.DecideStatus(principal, ticket.Status, next) {
	case policy.StatusNoop:
		return ticket, nil
	case policy.StatusDenied:
		return nil, apperrors.NewForbidden("status change not permitted")
	}

	oldStatus := ticket.Status
	if err := s.tickets.UpdateStatus(ctx, ticket.ID, next); err != nil {
		return nil, apperrors.MapError(err)
	}
	ticket.Status = next
	s.publishEvent(ctx, principal, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: next,
		},
	})
	return ticket, nil
}

// SetPriority changes ticket priority. Staff only; no state machine applies.
func (s *TicketService) SetPriority(ctx context.Context, principal policy.Principal, ticketID string, priority domain.TicketPriority) (*domain.Ticket, error) {
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}
	ticket, err := s.loadVisible(ctx, principal, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanSetPriority(principal) {
		return nil, apperrors.NewForbidden("priority change not permitted")
	}
	if ticket.Priority == priority {
		return ticket, nil
	}

	oldPriority := ticket.Priority
	if err := s.tickets.UpdatePriority(ctx, ticket.ID, priority); err != nil {
		return nil, apperrors.MapError(err)
	}
	ticket.Priority = priority
	s.publishEvent(ctx, principal, events.Event{
		Type:     events.EventTicketPriorityChanged,
		TicketID: ticket.ID,
		Payload: events.TicketPriorityChangedPayload{
			OldPriority: oldPriority,
			NewPriority: priority,
		},
	})
	return ticket, nil
}

// Assign sets or clears the assignee. Admin only. Selecting the currently
// assigned agent again clears the assignment (toggle-to-unassign); passing
// nil clears it explicitly. The assignee must hold role AGENT.
func (s *TicketService) Assign(ctx context.Context, principal policy.Principal, ticketID string, agentID *string) (*domain.Ticket, error) {
	ticket, err := s.loadVisible(ctx, principal, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanAssign(principal) {
		return nil, apperrors.NewForbidden("assignment not permitted")
	}

	newAssignee := agentID
	if agentID != nil {
		if ticket.AssignedTo != nil && *ticket.AssignedTo == *agentID {
			newAssignee = nil
		} else if err := s.requireAgent(ctx, *agentID); err != nil {
			return nil, err
		}
	}

	if err := s.tickets.UpdateAssignee(ctx, ticket.ID, newAssignee); err != nil {
		return nil, apperrors.MapError(err)
	}
	ticket.AssignedTo = newAssignee
	ticket.AssignedToName = nil
	s.publishEvent(ctx, principal, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Payload:  events.TicketAssignedPayload{AssignedTo: newAssignee},
	})
	return ticket, nil
}

// AddMessage appends a chat message to the ticket thread. The internal flag
// derives from the sender's role; the message remains visible to every viewer
// with ticket access.
func (s *TicketService) AddMessage(ctx context.Context, principal policy.Principal, ticketID, text string) (*domain.TicketMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("message text required", nil)
	}
	ticket, err := s.loadVisible(ctx, principal, ticketID)
	if err != nil {
		return nil, err
	}

	msg := &domain.TicketMessage{
		TicketID:    ticket.ID,
		SenderID:    principal.ID,
		MessageText: text,
		IsInternal:  policy.IsInternalMessage(principal),
		SenderName:  principal.Name,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, principal, events.Event{
		Type:     events.EventTicketMessageAdded,
		TicketID: ticket.ID,
		Payload: events.TicketMessageAddedPayload{
			MessageID:  msg.ID,
			SenderID:   msg.SenderID,
			IsInternal: msg.IsInternal,
		},
	})
	return msg, nil
}

// ListMessages returns the ticket thread in ascending creation order.
func (s *TicketService) ListMessages(ctx context.Context, principal policy.Principal, ticketID string) ([]domain.TicketMessage, error) {
	if _, err := s.loadVisible(ctx, principal, ticketID); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return msgs, nil
}

// loadVisible fetches a ticket and enforces view access. Denied access and a
// missing row are both reported as not found so unauthorized callers cannot
// probe for ticket existence.
func (s *TicketService) loadVisible(ctx context.Context, principal policy.Principal, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if !policy.CanViewTicket(principal, ticket) {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	return ticket, nil
}

func (s *TicketService) requireAgent(ctx context.Context, profileID string) error {
	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("assignee not found", map[string]any{"assigned_to": profileID})
		}
		return apperrors.MapError(err)
	}
	if profile.Role != domain.RoleAgent {
		return apperrors.NewValidationError("assignee must be an agent", map[string]any{"assigned_to": profileID})
	}
	return nil
}

func (s *TicketService) publishEvent(ctx context.Context, principal policy.Principal, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.ActorID = principal.ID
	event.ActorRole = principal.Role
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
