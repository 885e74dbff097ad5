// Package session implements the client-side reconciliation loops for the
// two marketplace actors. Each session is a single goroutine that suspends
// on its subscription, its poll ticker, and store responses; the booking row
// in the store is the only shared mutable resource, and sessions only ever
// overwrite their local view from what the store reports.
package session

import (
	"context"
	"sync"
	"time"

	bookingRepo "knead/database/repository/booking"
	"knead/models"
	"knead/realtime"
	"knead/utils"

	"go.uber.org/zap"
)

// CustomerSession follows a single booking after its creation and mirrors
// the store's view of it.
type CustomerSession struct {
	bus    *realtime.Bus
	repo   bookingRepo.BookingRepository
	policy realtime.ReconciliationPolicy

	mu           sync.Mutex
	view         models.Booking
	stateChanges int

	cancel context.CancelFunc
	done   chan struct{}
}

// NewCustomerSession creates a session bound to the given bus and store.
func NewCustomerSession(bus *realtime.Bus, repo bookingRepo.BookingRepository, policy realtime.ReconciliationPolicy) *CustomerSession {
	return &CustomerSession{bus: bus, repo: repo, policy: policy}
}

// Follow starts mirroring the given booking. Call once, immediately after
// the create call succeeds.
func (s *CustomerSession) Follow(ctx context.Context, booking models.Booking) {
	s.mu.Lock()
	s.view = booking
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, booking.ID)
}

func (s *CustomerSession) run(ctx context.Context, bookingID string) {
	defer close(s.done)

	sub := s.bus.Subscribe(realtime.ForBooking(bookingID))
	defer func() { sub.Close() }()

	var pollCh <-chan time.Time
	if s.policy.PollInterval > 0 {
		ticker := time.NewTicker(s.policy.PollInterval)
		defer ticker.Stop()
		pollCh = ticker.C
	}

	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				// Subscription dropped: resubscribe, then refresh once to
				// cover anything missed in between.
				select {
				case <-time.After(s.policy.ResubscribeDelay):
				case <-ctx.Done():
					return
				}
				sub.Close()
				sub = s.bus.Subscribe(realtime.ForBooking(bookingID))
				s.RefreshNow()
				continue
			}
			s.apply(ev.Booking)
		case <-pollCh:
			s.RefreshNow()
		case <-ctx.Done():
			return
		}
	}
}

// apply overwrites the local view wholesale from the event payload.
// Redelivered events carry the same row and change nothing observable.
func (s *CustomerSession) apply(row models.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if row.Status != s.view.Status {
		s.stateChanges++
	}
	s.view = row
}

// RefreshNow re-reads the booking from the store. This is also the manual
// refresh path exposed to the UI.
func (s *CustomerSession) RefreshNow() {
	s.mu.Lock()
	id := s.view.ID
	s.mu.Unlock()

	row, err := s.repo.GetByID(id)
	if err != nil {
		utils.GetLogger().Warn("customer refresh failed", zap.String("bookingId", id), zap.Error(err))
		return
	}
	if row != nil {
		s.apply(*row)
	}
}

// View returns the session's current local view of the booking.
func (s *CustomerSession) View() models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// StateChanges returns how many state-changing updates the session observed.
func (s *CustomerSession) StateChanges() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateChanges
}

// Close tears the session down, unsubscribing and stopping its timers.
func (s *CustomerSession) Close() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
}
