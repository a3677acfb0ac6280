package policy

import "github.com/ottocrm/ottocrm/internal/domain"

// Principal is the authenticated identity performing an action. It is passed
// explicitly into every decision function; there is no ambient session state.
type Principal struct {
	ID   string
	Role domain.Role
	Name string
}

// IsStaff reports whether the principal holds a staff role.
func (p Principal) IsStaff() bool {
	return p.Role.IsStaff()
}

// CanViewTicket grants staff access to every ticket and customers access to
// their own. Role supersedes ownership: an admin viewing a ticket they created
// still decides via the staff branch. Callers surface a denial as "not found"
// so unauthorized viewers cannot confirm a ticket exists.
func CanViewTicket(p Principal, ticket *domain.Ticket) bool {
	if p.Role.IsStaff() {
		return true
	}
	return ticket.CreatedBy == p.ID
}

// CanViewAllTickets is true for staff only.
func CanViewAllTickets(p Principal) bool {
	return p.Role.IsStaff()
}

// CanViewCustomerList is true for staff only.
func CanViewCustomerList(p Principal) bool {
	return p.Role.IsStaff()
}

// CanSetPriority is true for staff only; customers get a read-only priority.
func CanSetPriority(p Principal) bool {
	return p.Role.IsStaff()
}

// CanAssign is true for admins only. Assignee validity (role AGENT) is
// checked at the mutation site, not here.
func CanAssign(p Principal) bool {
	return p.Role == domain.RoleAdmin
}

// CanCreateDocument is true for admins only.
func CanCreateDocument(p Principal) bool {
	return p.Role == domain.RoleAdmin
}

// CanEditDocument is true for admins only.
func CanEditDocument(p Principal) bool {
	return p.Role == domain.RoleAdmin
}

// IsInternalMessage reports whether a message sent by the principal is tagged
// as an internal (staff-authored) entry. The tag is a display flag only.
func IsInternalMessage(p Principal) bool {
	return p.Role.IsStaff()
}
