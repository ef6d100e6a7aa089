package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iliyamo/event-reservation/internal/model"
	"github.com/iliyamo/event-reservation/internal/repository"
)

// memStore is an in-memory implementation of EventStore, ReservationStore
// and ReviewStore backing the service tests.  A single mutex makes
// TryReserve indivisible, matching the contract the MySQL repositories
// provide with a transaction and a row lock.
type memStore struct {
	mu sync.Mutex

	events       map[uint64]*model.Event
	reservations map[uint64]*model.Reservation
	reviews      map[uint64]*model.Review
	codes        map[string]uint64

	nextEventID       uint64
	nextReservationID uint64
	nextReviewID      uint64

	// reserveHook, when set, runs inside TryReserve before the real logic
	// and short-circuits it by returning a non-nil error.  Used to inject
	// deadlocks and code collisions.
	reserveHook func(res *model.Reservation) error
}

func newMemStore() *memStore {
	return &memStore{
		events:       make(map[uint64]*model.Event),
		reservations: make(map[uint64]*model.Reservation),
		reviews:      make(map[uint64]*model.Review),
		codes:        make(map[string]uint64),
	}
}

func (m *memStore) putEvent(ev model.Event) *model.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextEventID++
	ev.ID = m.nextEventID
	m.events[ev.ID] = &ev
	cp := ev
	return &cp
}

func (m *memStore) putReservation(res model.Reservation) *model.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextReservationID++
	res.ID = m.nextReservationID
	if res.Code == "" {
		res.Code = fmt.Sprintf("SEED%06d", res.ID)
	}
	m.reservations[res.ID] = &res
	m.codes[res.Code] = res.ID
	cp := res
	return &cp
}

func (m *memStore) reservationStatus(id uint64) model.ReservationStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reservations[id].Status
}

func (m *memStore) eventStatus(id uint64) model.EventStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events[id].Status
}

// EventStore

func (m *memStore) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[id]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	cp := *ev
	return &cp, nil
}

func (m *memStore) Create(ctx context.Context, ev *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextEventID++
	ev.ID = m.nextEventID
	cp := *ev
	m.events[ev.ID] = &cp
	return nil
}

func (m *memStore) Update(ctx context.Context, ev *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[ev.ID]; !ok {
		return repository.ErrEventNotFound
	}
	cp := *ev
	m.events[ev.ID] = &cp
	return nil
}

func (m *memStore) UpdateStatus(ctx context.Context, id uint64, from, to model.EventStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[id]
	if !ok {
		return repository.ErrEventNotFound
	}
	if ev.Status != from {
		if ev.Status == to {
			return nil
		}
		return repository.ErrStatusChanged
	}
	ev.Status = to
	return nil
}

func (m *memStore) CompleteDue(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, ev := range m.events {
		if ev.Status == model.EventPublished && !ev.EndsAt.After(now) {
			ev.Status = model.EventCompleted
			n++
		}
	}
	return n, nil
}

func (m *memStore) CountReservations(ctx context.Context, eventID uint64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, res := range m.reservations {
		if res.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) Delete(ctx context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return repository.ErrEventNotFound
	}
	delete(m.events, id)
	return nil
}

// ReservationStore

func (m *memStore) TryReserve(ctx context.Context, res *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reserveHook != nil {
		if err := m.reserveHook(res); err != nil {
			return err
		}
	}
	ev, ok := m.events[res.EventID]
	if !ok {
		return repository.ErrEventNotFound
	}
	if !ev.Reservable(time.Now().UTC()) {
		return repository.ErrEventNotReservable
	}
	committed := 0
	for _, r := range m.reservations {
		if r.EventID == res.EventID && r.Status.Active() {
			committed += r.SeatCount
		}
	}
	if committed+res.SeatCount > ev.Capacity {
		return repository.ErrInsufficientCapacity
	}
	if _, taken := m.codes[res.Code]; taken {
		return repository.ErrCodeTaken
	}
	m.nextReservationID++
	res.ID = m.nextReservationID
	res.Status = model.ReservationPending
	res.TotalAmountCents = uint32(res.SeatCount) * ev.PriceCents
	cp := *res
	m.reservations[res.ID] = &cp
	m.codes[res.Code] = res.ID
	return nil
}

func (m *memStore) GetReservationByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, ok := m.reservations[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	cp := *res
	return &cp, nil
}

func (m *memStore) GetWithEvent(ctx context.Context, id uint64) (*model.Reservation, *model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, ok := m.reservations[id]
	if !ok {
		return nil, nil, repository.ErrReservationNotFound
	}
	ev, ok := m.events[res.EventID]
	if !ok {
		return nil, nil, repository.ErrEventNotFound
	}
	rcp := *res
	ecp := *ev
	return &rcp, &ecp, nil
}

func (m *memStore) UpdateReservationStatus(ctx context.Context, id uint64, from, to model.ReservationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, ok := m.reservations[id]
	if !ok {
		return repository.ErrReservationNotFound
	}
	if res.Status != from {
		if res.Status == to {
			return nil
		}
		return repository.ErrStatusChanged
	}
	res.Status = to
	return nil
}

func (m *memStore) ListActiveByEvent(ctx context.Context, eventID uint64) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Reservation
	for _, res := range m.reservations {
		if res.EventID == eventID && res.Status.Active() {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (m *memStore) CommittedSeats(ctx context.Context, eventID uint64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, res := range m.reservations {
		if res.EventID == eventID && res.Status.Active() {
			total += res.SeatCount
		}
	}
	return total, nil
}

// ReviewStore

func (m *memStore) GetByReservation(ctx context.Context, reservationID uint64) (*model.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rev, ok := m.reviews[reservationID]
	if !ok {
		return nil, repository.ErrReviewNotFound
	}
	cp := *rev
	return &cp, nil
}

func (m *memStore) Upsert(ctx context.Context, rev *model.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.reviews[rev.ReservationID]; ok {
		existing.Rating = rev.Rating
		existing.Comment = rev.Comment
		rev.ID = existing.ID
		return nil
	}
	m.nextReviewID++
	rev.ID = m.nextReviewID
	cp := *rev
	m.reviews[rev.ReservationID] = &cp
	return nil
}

// reservationStoreAdapter maps the memStore's reservation methods onto the
// ReservationStore interface without colliding with the EventStore method
// names on the same struct.
type reservationStoreAdapter struct {
	*memStore
}

func (a reservationStoreAdapter) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	return a.GetReservationByID(ctx, id)
}

func (a reservationStoreAdapter) UpdateStatus(ctx context.Context, id uint64, from, to model.ReservationStatus) error {
	return a.UpdateReservationStatus(ctx, id, from, to)
}

// recordNotifier captures notification kinds for assertions.
type recordNotifier struct {
	mu    sync.Mutex
	kinds []string
}

func (r *recordNotifier) Notify(kind string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, kind)
}

func (r *recordNotifier) count(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, k := range r.kinds {
		if k == kind {
			n++
		}
	}
	return n
}

// fixture bundles the wired services over one memStore.
type fixture struct {
	store        *memStore
	notifier     *recordNotifier
	ledger       *CapacityLedger
	reservations *ReservationService
	events       *EventService
	reviews      *ReviewService
}

func newFixture() *fixture {
	store := newMemStore()
	notifier := &recordNotifier{}
	resStore := reservationStoreAdapter{store}
	ledger := NewCapacityLedger(store, resStore)
	reservations := NewReservationService(ledger, resStore, notifier)
	events := NewEventService(store, resStore, reservations, ledger, notifier)
	reviews := NewReviewService(resStore, store)
	return &fixture{
		store:        store,
		notifier:     notifier,
		ledger:       ledger,
		reservations: reservations,
		events:       events,
		reviews:      reviews,
	}
}

// publishedEvent seeds a published event starting in the given lead time.
func (f *fixture) publishedEvent(organizerID uint64, capacity int, priceCents uint32, lead time.Duration) *model.Event {
	now := time.Now().UTC()
	return f.store.putEvent(model.Event{
		OrganizerID: organizerID,
		Title:       "Go Meetup",
		Category:    "tech",
		Location:    "Main Hall",
		City:        "Berlin",
		StartsAt:    now.Add(lead),
		EndsAt:      now.Add(lead + 2*time.Hour),
		Capacity:    capacity,
		PriceCents:  priceCents,
		Status:      model.EventPublished,
	})
}
