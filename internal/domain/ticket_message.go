package domain

import "time"

// TicketMessage is one chat entry in a ticket thread. Append-only,
// ordered ascending by CreatedAt within a ticket.
//
// IsInternal marks staff-authored entries. It is a display flag: internal
// messages are still stored and returned to every viewer with ticket access.
type TicketMessage struct {
	ID          string
	TicketID    string
	SenderID    string
	MessageText string
	IsInternal  bool
	CreatedAt   time.Time

	SenderName string
}
