// Package feed carries row-level change notifications from writers to
// mounted ticket views. Consumers do not diff changes; every change means
// "something changed, refetch the affected aggregate".
package feed

import "context"

// Table names carried on changes.
const (
	TableTickets        = "tickets"
	TableTicketMessages = "ticket_messages"
)

// Change identifies a changed row. TicketID keys the subscription channel;
// for ticket rows ID equals TicketID, for messages ID is the message id.
type Change struct {
	Table    string `json:"table"`
	ID       string `json:"id"`
	TicketID string `json:"ticket_id"`
}

// ChangeFeed publishes row changes and serves per-ticket subscriptions.
// Subscribe is called exactly once per mounted view; the returned cancel func
// must be called on view teardown and is safe to call more than once.
type ChangeFeed interface {
	Publish(ctx context.Context, change Change) error
	Subscribe(ctx context.Context, ticketID string) (<-chan Change, func(), error)
}
