// Package realtime distributes booking change events to filtered
// subscribers. The bus is fed by the booking store's change feed and fans
// events out to session subscriptions; delivery is asynchronous,
// at-least-once while the feed holds, and unordered. The last observed value
// for a given row is authoritative, so consumers overwrite local state
// wholesale and duplicates are harmless.
package realtime

import (
	"context"
	"sync"
	"time"

	bookingRepo "knead/database/repository/booking"
	"knead/models"
	"knead/utils"

	"go.uber.org/zap"
)

// EventFilter decides whether a subscriber receives an event.
type EventFilter func(models.ChangeEvent) bool

// ForBooking matches mutations of a single booking row.
func ForBooking(bookingID string) EventFilter {
	return func(ev models.ChangeEvent) bool {
		return ev.Booking.ID == bookingID
	}
}

// ForMasseur matches mutations of any booking assigned to the masseur.
func ForMasseur(masseurID string) EventFilter {
	return func(ev models.ChangeEvent) bool {
		return ev.Booking.MasseurID == masseurID
	}
}

type subscriber struct {
	filter EventFilter
	events chan models.ChangeEvent
	done   chan struct{}
}

// Subscription is one subscriber's handle onto the bus. Close releases its
// resources; the bus gives no delivery guarantee across a closed or dropped
// subscription, so resubscription is the consumer's responsibility.
type Subscription struct {
	id  int
	bus *Bus
	sub *subscriber

	closeOnce sync.Once
}

// Events returns the channel on which matching change events arrive. The
// channel is closed when the subscription is closed.
func (s *Subscription) Events() <-chan models.ChangeEvent {
	return s.sub.events
}

// Close unsubscribes and releases resources.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.bus.remove(s.id)
		close(s.sub.done)
	})
}

// Bus is the change-notification fan-out.
type Bus struct {
	mu     sync.Mutex
	subs   map[int]*subscriber
	nextID int

	// Optional bridge relaying events to sibling processes.
	Bridge *RedisBridge
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]*subscriber)}
}

// Subscribe registers a filtered subscriber and returns its handle.
func (b *Bus) Subscribe(filter EventFilter) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	sub := &subscriber{
		filter: filter,
		events: make(chan models.ChangeEvent, 64),
		done:   make(chan struct{}),
	}
	b.subs[id] = sub
	return &Subscription{id: id, bus: b, sub: sub}
}

func (b *Bus) remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(sub.events)
	}
}

// Publish delivers the event to every matching subscriber. A subscriber
// whose buffer is full misses the event; the poll fallback covers it.
func (b *Bus) Publish(ev models.ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		if !sub.filter(ev) {
			continue
		}
		select {
		case sub.events <- ev:
		case <-sub.done:
		default:
			utils.GetLogger().Warn("dropping change event for slow subscriber",
				zap.String("bookingId", ev.Booking.ID))
		}
	}
}

// dropSubscribers closes every current subscriber. Consumers observe the
// closed channel, resubscribe per their reconciliation policy, and refresh
// once to cover whatever the gap swallowed.
func (b *Bus) dropSubscribers() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.events)
	}
}

// Run tails the store's change feed and pumps it into the bus, reopening the
// feed with a backoff whenever it drops. Feed loss also drops every
// subscriber, forcing the mandatory resubscribe-and-refresh on the consumer
// side. Returns when ctx is cancelled.
func (b *Bus) Run(ctx context.Context, repo bookingRepo.BookingRepository) {
	logger := utils.GetLogger()
	backoff := time.Second

	for {
		feed, err := repo.Watch(ctx)
		if err != nil {
			logger.Warn("failed to open change feed, retrying", zap.Error(err))
			select {
			case <-time.After(backoff):
				continue
			case <-ctx.Done():
				return
			}
		}

		for ev := range feed {
			b.Publish(ev)
			if b.Bridge != nil {
				b.Bridge.Broadcast(ctx, ev)
			}
		}

		if ctx.Err() != nil {
			return
		}
		logger.Warn("change feed dropped, resubscribing")
		b.dropSubscribers()
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}
	}
}
