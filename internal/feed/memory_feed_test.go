package feed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFeedDeliversPerTicket(t *testing.T) {
	f := NewMemoryFeed()
	ctx := context.Background()

	chA, cancelA, err := f.Subscribe(ctx, "ticket-a")
	require.NoError(t, err)
	defer cancelA()

	chB, cancelB, err := f.Subscribe(ctx, "ticket-b")
	require.NoError(t, err)
	defer cancelB()

	change := Change{Table: TableTickets, ID: "ticket-a", TicketID: "ticket-a"}
	require.NoError(t, f.Publish(ctx, change))

	got := <-chA
	assert.Equal(t, change, got)

	select {
	case unexpected := <-chB:
		t.Fatalf("ticket-b subscriber received foreign change: %+v", unexpected)
	default:
	}
}

func TestMemoryFeedCancelClosesChannel(t *testing.T) {
	f := NewMemoryFeed()
	ctx := context.Background()

	ch, cancel, err := f.Subscribe(ctx, "ticket-a")
	require.NoError(t, err)

	cancel()
	// Safe to call again after teardown races.
	cancel()

	_, open := <-ch
	assert.False(t, open)

	// Publishing after cancel must not panic or block.
	require.NoError(t, f.Publish(ctx, Change{Table: TableTickets, ID: "ticket-a", TicketID: "ticket-a"}))
}

func TestMemoryFeedSkipsSlowSubscribers(t *testing.T) {
	f := NewMemoryFeed()
	ctx := context.Background()

	ch, cancel, err := f.Subscribe(ctx, "ticket-a")
	require.NoError(t, err)
	defer cancel()

	// Fill the buffer without draining; further publishes are dropped
	// instead of blocking the writer.
	for i := 0; i < cap(ch)+5; i++ {
		require.NoError(t, f.Publish(ctx, Change{Table: TableTicketMessages, ID: "m", TicketID: "ticket-a"}))
	}
	assert.Equal(t, cap(ch), len(ch))
}
