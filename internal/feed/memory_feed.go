package feed

import (
	"context"
	"sync"
)

// MemoryFeed is an in-process ChangeFeed used when Redis is not configured
// and in tests. Semantics match RedisFeed: best-effort fan-out per ticket.
type MemoryFeed struct {
	mu   sync.Mutex
	subs map[string]map[int]chan Change
	next int
}

// NewMemoryFeed builds the feed.
func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{subs: make(map[string]map[int]chan Change)}
}

// Publish delivers the change to current subscribers of the ticket. Slow
// subscribers are skipped rather than blocking the writer.
func (f *MemoryFeed) Publish(_ context.Context, change Change) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs[change.TicketID] {
		select {
		case ch <- change:
		default:
		}
	}
	return nil
}

// Subscribe registers a buffered channel for the ticket.
func (f *MemoryFeed) Subscribe(_ context.Context, ticketID string) (<-chan Change, func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.next
	f.next++
	ch := make(chan Change, 16)
	if f.subs[ticketID] == nil {
		f.subs[ticketID] = make(map[int]chan Change)
	}
	f.subs[ticketID][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs[ticketID], id)
			if len(f.subs[ticketID]) == 0 {
				delete(f.subs, ticketID)
			}
			f.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel, nil
}
