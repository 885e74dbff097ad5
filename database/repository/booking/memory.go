package bookingRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"knead/models"

	"github.com/google/uuid"
)

// MemoryBookingRepo is an in-memory BookingRepository with the same
// last-write-wins and change-feed semantics as the Mongo implementation.
// It is the dependency-injected double used by tests and local development;
// session state is never exposed through ambient globals.
type MemoryBookingRepo struct {
	mu       sync.Mutex
	rows     map[string]models.Booking
	watchers map[int]chan models.ChangeEvent
	nextID   int
	muted    bool
}

// NewMemoryBookingRepo creates an empty in-memory booking store.
func NewMemoryBookingRepo() *MemoryBookingRepo {
	return &MemoryBookingRepo{
		rows:     make(map[string]models.Booking),
		watchers: make(map[int]chan models.ChangeEvent),
	}
}

// DropFeeds severs every open change feed, simulating the store connection
// failing outright. Subsequent Watch calls open fresh feeds.
func (r *MemoryBookingRepo) DropFeeds() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, ch := range r.watchers {
		delete(r.watchers, id)
		close(ch)
	}
}

// MuteEvents suppresses change-feed emission while muted, simulating a
// dropped push connection between the store and its subscribers.
func (r *MemoryBookingRepo) MuteEvents(muted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.muted = muted
}

func (r *MemoryBookingRepo) emit(ev models.ChangeEvent) {
	if r.muted {
		return
	}
	for _, ch := range r.watchers {
		select {
		case ch <- ev:
		default:
			// Slow watcher: the feed is at-least-once only while the
			// connection holds, so overflow drops are allowed.
		}
	}
}

func (r *MemoryBookingRepo) Insert(booking *models.Booking) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	booking.ID = uuid.New().String()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	r.rows[booking.ID] = *booking
	r.emit(models.ChangeEvent{Mutation: models.MutationInsert, Booking: *booking})
	return booking, nil
}

func (r *MemoryBookingRepo) UpdateStatus(id string, status models.BookingStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return 0, nil
	}
	row.Status = status
	row.UpdatedAt = time.Now()
	r.rows[id] = row

	r.emit(models.ChangeEvent{Mutation: models.MutationUpdate, Booking: row})
	return 1, nil
}

func (r *MemoryBookingRepo) GetByID(id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	copied := row
	return &copied, nil
}

func (r *MemoryBookingRepo) WorkingSet(masseurID string, now time.Time) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var set []models.Booking
	for _, row := range r.rows {
		if row.MasseurID != masseurID {
			continue
		}
		if row.Status != models.BookingPending && row.Status != models.BookingConfirmed {
			continue
		}
		if row.ScheduledTime.Before(now) {
			continue
		}
		set = append(set, row)
	}
	sort.Slice(set, func(i, j int) bool {
		return set[i].ScheduledTime.Before(set[j].ScheduledTime)
	})
	return set, nil
}

func (r *MemoryBookingRepo) OverdueConfirmed(cutoff time.Time) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var overdue []models.Booking
	for _, row := range r.rows {
		if row.Status == models.BookingConfirmed && row.ScheduledEnd().Before(cutoff) {
			overdue = append(overdue, row)
		}
	}
	return overdue, nil
}

func (r *MemoryBookingRepo) Watch(ctx context.Context) (<-chan models.ChangeEvent, error) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	ch := make(chan models.ChangeEvent, 64)
	r.watchers[id] = ch
	r.mu.Unlock()

	out := make(chan models.ChangeEvent, 64)
	go func() {
		defer func() {
			r.mu.Lock()
			delete(r.watchers, id)
			r.mu.Unlock()
			close(out)
		}()
		for {
			select {
			case ev, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
