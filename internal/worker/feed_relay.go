package worker

import (
	"context"

	"github.com/ottocrm/ottocrm/internal/events"
	"github.com/ottocrm/ottocrm/internal/feed"
)

// StartFeedRelay bridges domain events onto the change feed so mounted views
// learn that a row they watch has changed. The relay does not forward event
// payloads; viewers refetch the affected aggregate.
func StartFeedRelay(dispatcher events.Dispatcher, changeFeed feed.ChangeFeed) {
	if dispatcher == nil || changeFeed == nil {
		return
	}

	ticketChanged := func(ctx context.Context, event events.Event) error {
		return changeFeed.Publish(ctx, feed.Change{
			Table:    feed.TableTickets,
			ID:       event.TicketID,
			TicketID: event.TicketID,
		})
	}

	dispatcher.Subscribe(events.EventTicketCreated, ticketChanged)
	dispatcher.Subscribe(events.EventTicketStatusChanged, ticketChanged)
	dispatcher.Subscribe(events.EventTicketPriorityChanged, ticketChanged)
	dispatcher.Subscribe(events.EventTicketAssigned, ticketChanged)

	dispatcher.Subscribe(events.EventTicketMessageAdded, func(ctx context.Context, event events.Event) error {
		messageID := event.TicketID
		if payload, ok := event.Payload.(events.TicketMessageAddedPayload); ok {
			messageID = payload.MessageID
		}
		return changeFeed.Publish(ctx, feed.Change{
			Table:    feed.TableTicketMessages,
			ID:       messageID,
			TicketID: event.TicketID,
		})
	})
}
