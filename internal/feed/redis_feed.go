package feed

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channelPrefix = "feed:ticket:"

// RedisFeed implements ChangeFeed over Redis pub/sub, one channel per ticket.
type RedisFeed struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisFeed builds the feed.
func NewRedisFeed(client *redis.Client, logger *zap.Logger) *RedisFeed {
	return &RedisFeed{client: client, logger: logger}
}

// Publish sends the change to the ticket's channel. Delivery is best-effort:
// a viewer that misses a change catches up on its next subscription.
func (f *RedisFeed) Publish(ctx context.Context, change Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return err
	}
	return f.client.Publish(ctx, channelPrefix+change.TicketID, payload).Err()
}

// Subscribe opens one pub/sub subscription for the ticket. The returned
// channel closes after cancel is called or ctx is done.
func (f *RedisFeed) Subscribe(ctx context.Context, ticketID string) (<-chan Change, func(), error) {
	sub := f.client.Subscribe(ctx, channelPrefix+ticketID)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}

	out := make(chan Change)
	done := make(chan struct{})

	go func() {
		defer close(out)
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var change Change
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					f.logger.Warn("malformed feed payload", zap.Error(err), zap.String("channel", msg.Channel))
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				case <-done:
					return
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = sub.Close()
		})
	}
	return out, cancel, nil
}
