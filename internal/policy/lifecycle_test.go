package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ottocrm/ottocrm/internal/domain"
)

func TestDecideStatus(t *testing.T) {
	admin := principal("admin-1", domain.RoleAdmin)
	agent := principal("agent-1", domain.RoleAgent)
	customer := principal("cust-1", domain.RoleCustomer)

	tests := []struct {
		name    string
		p       Principal
		current domain.TicketStatus
		next    domain.TicketStatus
		want    StatusDecision
	}{
		{name: "agent open to in_progress", p: agent, current: domain.TicketStatusOpen, next: domain.TicketStatusInProgress, want: StatusAllowed},
		{name: "agent in_progress back to open", p: agent, current: domain.TicketStatusInProgress, next: domain.TicketStatusOpen, want: StatusAllowed},
		{name: "agent resolves from open", p: agent, current: domain.TicketStatusOpen, next: domain.TicketStatusResolved, want: StatusAllowed},
		{name: "agent reopens resolved", p: agent, current: domain.TicketStatusResolved, next: domain.TicketStatusOpen, want: StatusAllowed},
		{name: "agent cannot close", p: agent, current: domain.TicketStatusResolved, next: domain.TicketStatusClosed, want: StatusDenied},
		{name: "agent cannot touch closed", p: agent, current: domain.TicketStatusClosed, next: domain.TicketStatusOpen, want: StatusDenied},
		{name: "admin closes from any state", p: admin, current: domain.TicketStatusOpen, next: domain.TicketStatusClosed, want: StatusAllowed},
		{name: "admin reopens closed", p: admin, current: domain.TicketStatusClosed, next: domain.TicketStatusOpen, want: StatusAllowed},
		{name: "same status is noop", p: agent, current: domain.TicketStatusOpen, next: domain.TicketStatusOpen, want: StatusNoop},
		{name: "closed to closed noop for admin", p: admin, current: domain.TicketStatusClosed, next: domain.TicketStatusClosed, want: StatusNoop},
		{name: "customer denied even same status", p: customer, current: domain.TicketStatusOpen, next: domain.TicketStatusOpen, want: StatusDenied},
		{name: "customer denied any transition", p: customer, current: domain.TicketStatusOpen, next: domain.TicketStatusResolved, want: StatusDenied},
		{name: "unknown status denied", p: admin, current: domain.TicketStatusOpen, next: domain.TicketStatus("ARCHIVED"), want: StatusDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecideStatus(tt.p, tt.current, tt.next))
		})
	}
}

func TestCanMarkResolved(t *testing.T) {
	agent := principal("agent-1", domain.RoleAgent)
	assert.True(t, CanMarkResolved(agent, domain.TicketStatusOpen))
	assert.True(t, CanMarkResolved(agent, domain.TicketStatusInProgress))
	assert.False(t, CanMarkResolved(agent, domain.TicketStatusResolved))
	assert.False(t, CanMarkResolved(agent, domain.TicketStatusClosed))
	assert.False(t, CanMarkResolved(principal("c", domain.RoleCustomer), domain.TicketStatusOpen))
}

func TestCanClose(t *testing.T) {
	admin := principal("admin-1", domain.RoleAdmin)
	assert.True(t, CanClose(admin, domain.TicketStatusOpen))
	assert.True(t, CanClose(admin, domain.TicketStatusResolved))
	assert.False(t, CanClose(admin, domain.TicketStatusClosed))
	assert.False(t, CanClose(principal("agent-1", domain.RoleAgent), domain.TicketStatusResolved))
}
