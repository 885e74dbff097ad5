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

// ProviderSession maintains a masseur's working set: all bookings assigned
// to them with status pending or confirmed and a scheduled time in the
// future, soonest first. Any push event on the masseur's channel triggers a
// full re-query rather than an incremental merge; the poll ticker bounds
// staleness when push delivery fails.
type ProviderSession struct {
	masseurID string
	bus       *realtime.Bus
	repo      bookingRepo.BookingRepository
	policy    realtime.ReconciliationPolicy
	now       func() time.Time

	mu         sync.Mutex
	workingSet []models.Booking

	cancel context.CancelFunc
	done   chan struct{}
}

// NewProviderSession creates a session for the given masseur identity.
func NewProviderSession(masseurID string, bus *realtime.Bus, repo bookingRepo.BookingRepository, policy realtime.ReconciliationPolicy) *ProviderSession {
	return &ProviderSession{
		masseurID: masseurID,
		bus:       bus,
		repo:      repo,
		policy:    policy,
		now:       time.Now,
	}
}

// Start begins the reconciliation loop and performs the initial query.
func (s *ProviderSession) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	s.Refresh()
	go s.run(ctx)
}

func (s *ProviderSession) run(ctx context.Context) {
	defer close(s.done)

	sub := s.bus.Subscribe(realtime.ForMasseur(s.masseurID))
	defer func() { sub.Close() }()

	var pollCh <-chan time.Time
	if s.policy.PollInterval > 0 {
		ticker := time.NewTicker(s.policy.PollInterval)
		defer ticker.Stop()
		pollCh = ticker.C
	}

	for {
		select {
		case _, ok := <-sub.Events():
			if !ok {
				select {
				case <-time.After(s.policy.ResubscribeDelay):
				case <-ctx.Done():
					return
				}
				sub.Close()
				sub = s.bus.Subscribe(realtime.ForMasseur(s.masseurID))
				s.Refresh()
				continue
			}
			// Coarse invalidation: any event on this masseur's channel
			// re-queries the whole set.
			s.Refresh()
		case <-pollCh:
			s.Refresh()
		case <-ctx.Done():
			return
		}
	}
}

// Refresh re-queries the working set from the store. Callers invoke it
// directly right after their own successful transition.
func (s *ProviderSession) Refresh() {
	set, err := s.repo.WorkingSet(s.masseurID, s.now())
	if err != nil {
		utils.GetLogger().Warn("working set refresh failed",
			zap.String("masseurId", s.masseurID), zap.Error(err))
		return
	}

	s.mu.Lock()
	s.workingSet = set
	s.mu.Unlock()
}

// WorkingSet returns a snapshot of the current working set.
func (s *ProviderSession) WorkingSet() []models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]models.Booking, len(s.workingSet))
	copy(snapshot, s.workingSet)
	return snapshot
}

// Close tears the session down, unsubscribing and stopping its timers.
func (s *ProviderSession) Close() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
}
