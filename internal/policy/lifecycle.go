package policy

import "github.com/ottocrm/ottocrm/internal/domain"

// StatusDecision is the outcome of a requested status transition.
type StatusDecision int

const (
	// StatusDenied rejects the transition; the stored status is unchanged.
	StatusDenied StatusDecision = iota
	// StatusNoop accepts the transition without a write (same status).
	StatusNoop
	// StatusAllowed accepts the transition and requires a write.
	StatusAllowed
)

// DecideStatus evaluates a requested status change. Transitions are not
// strictly sequential: staff may move a ticket between any non-terminal
// states, RESOLVED is reachable from any other state by staff, and CLOSED is
// admin-only from any other state. A CLOSED ticket is mutable only by admin,
// so the generic update path that reopens it stays reachable.
func DecideStatus(p Principal, current, next domain.TicketStatus) StatusDecision {
	if !next.Valid() {
		return StatusDenied
	}
	if !p.Role.IsStaff() {
		return StatusDenied
	}
	if next == current {
		return StatusNoop
	}
	if next == domain.TicketStatusClosed && p.Role != domain.RoleAdmin {
		return StatusDenied
	}
	if current == domain.TicketStatusClosed && p.Role != domain.RoleAdmin {
		return StatusDenied
	}
	return StatusAllowed
}

// CanMarkResolved is the "Mark Resolved" shortcut: staff, whenever the ticket
// is not already resolved.
func CanMarkResolved(p Principal, current domain.TicketStatus) bool {
	return DecideStatus(p, current, domain.TicketStatusResolved) == StatusAllowed
}

// CanClose is the "Close Ticket" shortcut: admin, whenever the ticket is not
// already closed.
func CanClose(p Principal, current domain.TicketStatus) bool {
	return DecideStatus(p, current, domain.TicketStatusClosed) == StatusAllowed
}
