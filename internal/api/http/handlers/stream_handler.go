package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ottocrm/ottocrm/internal/auth"
	"github.com/ottocrm/ottocrm/internal/feed"
	"github.com/ottocrm/ottocrm/internal/policy"
	"github.com/ottocrm/ottocrm/internal/service"
	apperrors "github.com/ottocrm/ottocrm/pkg/util"
)

const heartbeatInterval = 30 * time.Second

// StreamHandler serves the per-ticket change stream over SSE. A client opens
// one subscription per mounted ticket view; each change triggers a server-side
// refetch of the affected aggregate, which is pushed as a fresh snapshot.
// Refetches run sequentially on the stream goroutine, so the last write
// always reflects the latest fetch.
type StreamHandler struct {
	tickets *service.TicketService
	feed    feed.ChangeFeed
	logger  *zap.Logger
}

// NewStreamHandler constructs handler.
func NewStreamHandler(ticketService *service.TicketService, changeFeed feed.ChangeFeed, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{tickets: ticketService, feed: changeFeed, logger: logger}
}

// StreamTicket GET /tickets/:id/events.
func (h *StreamHandler) StreamTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID := c.Params("id")

	// Access check before upgrading to a stream; a denied or missing ticket
	// fails with the usual not-found envelope instead of a broken stream.
	ticket, msgs, err := h.tickets.GetTicket(c.Context(), principal, ticketID)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ctx, cancelCtx := context.WithCancel(context.Background())
		defer cancelCtx()

		changes, unsubscribe, err := h.feed.Subscribe(ctx, ticketID)
		if err != nil {
			h.logger.Warn("feed subscription failed",
				zap.String("ticket_id", ticketID), zap.Error(err))
			return
		}
		defer unsubscribe()

		if !h.writeEvent(w, "snapshot", ticketDetail(ticket, msgs)) {
			return
		}

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case <-heartbeat.C:
				if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			case change, open := <-changes:
				if !open {
					return
				}
				if !h.pushRefetch(ctx, w, principal, ticketID, change) {
					return
				}
			}
		}
	})
	return nil
}

// pushRefetch reloads the aggregate named by the change and writes it to the
// stream. Reports false when the client is gone or the ticket became
// invisible to the principal.
func (h *StreamHandler) pushRefetch(ctx context.Context, w *bufio.Writer, principal policy.Principal, ticketID string, change feed.Change) bool {
	switch change.Table {
	case feed.TableTicketMessages:
		msgs, err := h.tickets.ListMessages(ctx, principal, ticketID)
		if err != nil {
			h.logger.Warn("message refetch failed",
				zap.String("ticket_id", ticketID), zap.Error(err))
			return false
		}
		return h.writeEvent(w, "messages", messageResponses(msgs))
	default:
		ticket, msgs, err := h.tickets.GetTicket(ctx, principal, ticketID)
		if err != nil {
			h.logger.Warn("ticket refetch failed",
				zap.String("ticket_id", ticketID), zap.Error(err))
			return false
		}
		return h.writeEvent(w, "ticket", ticketDetail(ticket, msgs))
	}
}

func (h *StreamHandler) writeEvent(w *bufio.Writer, event string, payload any) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("stream payload marshal failed", zap.Error(err))
		return false
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return false
	}
	return w.Flush() == nil
}
