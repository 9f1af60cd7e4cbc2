// Package live turns committed writes into fresh query results.
//
// Writers publish the names of the tables a transaction touched. Observers
// subscribe to the tables their query reads and re-run the query when any of
// them changes. Notifications carry no payload and coalesce: a subscriber
// that is still busy sees at most one pending signal.
package live

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/julianstephens/easydiary/internal/logger"
)

// Bus is an in-memory fan-out of table change signals
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]*subscription // subID -> subscription
	closed      bool
}

type subscription struct {
	tables map[string]struct{}
	ch     chan struct{}
	done   chan struct{} // closed when the subscription ends
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[string]*subscription),
	}
}

// Subscribe registers interest in the given tables. The returned channel
// receives a signal after every publish that names one of them, and is closed
// on Unsubscribe, Close or when ctx is cancelled.
func (b *Bus) Subscribe(ctx context.Context, tables ...string) (<-chan struct{}, string) {
	subID := uuid.New().String()
	sub := &subscription{
		tables: make(map[string]struct{}, len(tables)),
		ch:     make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	for _, t := range tables {
		sub.tables[t] = struct{}{}
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(sub.ch)
		return sub.ch, subID
	}
	b.subscribers[subID] = sub
	b.mu.Unlock()

	logger.Component("live").Debug("subscriber added", "sub_id", subID, "tables", tables)

	go func() {
		select {
		case <-ctx.Done():
			b.Unsubscribe(subID)
		case <-sub.done:
		}
	}()

	return sub.ch, subID
}

// Publish signals every subscriber of any of the given tables. Never blocks.
func (b *Bus) Publish(tables ...string) {
	if len(tables) == 0 {
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subscribers {
		if !sub.matches(tables) {
			continue
		}
		select {
		case sub.ch <- struct{}{}:
		default:
			// a signal is already pending
		}
	}
}

func (s *subscription) matches(tables []string) bool {
	for _, t := range tables {
		if _, ok := s.tables[t]; ok {
			return true
		}
	}
	return false
}

func (s *subscription) end() {
	close(s.ch)
	close(s.done)
}

// Unsubscribe removes a subscription and closes its channel
func (b *Bus) Unsubscribe(subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subscribers[subID]
	if !ok {
		return
	}
	delete(b.subscribers, subID)
	sub.end()

	logger.Component("live").Debug("subscriber removed", "sub_id", subID)
}

// Len returns the number of active subscriptions
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes every subscriber channel. Later subscriptions are closed immediately.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, sub := range b.subscribers {
		sub.end()
		delete(b.subscribers, id)
	}
	b.closed = true
}
