package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/iliyamo/event-reservation/internal/model"
	"github.com/iliyamo/event-reservation/internal/repository"
)

// KindEventCancelled is emitted after an event has been withdrawn and its
// reservations cancelled.
const KindEventCancelled = "event.cancelled"

// EventService drives the event lifecycle: draft creation and editing,
// publishing, cancellation with cascade, time-driven completion and
// deletion.  Capacity reads go through the ledger; reservation
// cancellations in the cascade go through the reservation lifecycle so
// both paths share one set of transition rules.
type EventService struct {
	events       EventStore
	reservations ReservationStore
	lifecycle    *ReservationService
	ledger       *CapacityLedger
	notifier     Notifier
}

// NewEventService wires the event lifecycle.  A nil notifier falls back
// to NopNotifier.
func NewEventService(events EventStore, reservations ReservationStore, lifecycle *ReservationService, ledger *CapacityLedger, notifier Notifier) *EventService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &EventService{
		events:       events,
		reservations: reservations,
		lifecycle:    lifecycle,
		ledger:       ledger,
		notifier:     notifier,
	}
}

// Create stores a new draft event for the organizer.  Schedule and field
// completeness are enforced at publish time; only structural bounds are
// checked here.
func (s *EventService) Create(ctx context.Context, ev *model.Event) (*model.Event, error) {
	if ev.Capacity < 1 {
		return nil, fmt.Errorf("%w: capacity must be at least 1", ErrBadRequest)
	}
	if ev.EndsAt.Before(ev.StartsAt) {
		return nil, fmt.Errorf("%w: ends_at must not precede starts_at", ErrBadRequest)
	}
	ev.Status = model.EventDraft
	if err := s.events.Create(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// Update edits an event's attributes.  Allowed only while the event is
// DRAFT or PUBLISHED; terminal events are immutable.  Capacity may not be
// reduced below the seats already committed, which would silently break
// the capacity invariant.
func (s *EventService) Update(ctx context.Context, organizerID uint64, ev *model.Event) (*model.Event, error) {
	current, err := s.loadOwned(ctx, ev.ID, organizerID)
	if err != nil {
		return nil, err
	}
	if current.Status.Terminal() {
		return nil, fmt.Errorf("%w: a %s event cannot be edited", ErrBusinessRule, current.Status)
	}
	if ev.Capacity < 1 {
		return nil, fmt.Errorf("%w: capacity must be at least 1", ErrBadRequest)
	}
	if ev.EndsAt.Before(ev.StartsAt) {
		return nil, fmt.Errorf("%w: ends_at must not precede starts_at", ErrBadRequest)
	}
	committed, err := s.reservations.CommittedSeats(ctx, ev.ID)
	if err != nil {
		return nil, err
	}
	if ev.Capacity < committed {
		return nil, fmt.Errorf("%w: capacity %d below %d seats already reserved",
			ErrBusinessRule, ev.Capacity, committed)
	}
	ev.OrganizerID = current.OrganizerID
	ev.Status = current.Status
	if err := s.events.Update(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// Publish moves a draft event to PUBLISHED after validating that it is
// complete: title, category, location and city present, capacity at least
// 1, start in the future and end after start.
func (s *EventService) Publish(ctx context.Context, eventID, organizerID uint64) (*model.Event, error) {
	ev, err := s.loadOwned(ctx, eventID, organizerID)
	if err != nil {
		return nil, err
	}
	if !ev.Status.CanTransition(model.EventPublished) {
		return nil, fmt.Errorf("%w: cannot publish a %s event", ErrInvalidTransition, ev.Status)
	}
	if err := validatePublishable(ev); err != nil {
		return nil, err
	}
	if err := s.applyStatus(ctx, ev, model.EventPublished); err != nil {
		return nil, err
	}
	return ev, nil
}

// validatePublishable checks the completeness rules for publishing.
func validatePublishable(ev *model.Event) error {
	var missing []string
	if strings.TrimSpace(ev.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(ev.Category) == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(ev.Location) == "" {
		missing = append(missing, "location")
	}
	if strings.TrimSpace(ev.City) == "" {
		missing = append(missing, "city")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", ErrBadRequest, strings.Join(missing, ", "))
	}
	if ev.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be at least 1", ErrBadRequest)
	}
	now := time.Now().UTC()
	if !ev.StartsAt.After(now) {
		return fmt.Errorf("%w: starts_at must be in the future", ErrBadRequest)
	}
	if !ev.EndsAt.After(ev.StartsAt) {
		return fmt.Errorf("%w: ends_at must be after starts_at", ErrBadRequest)
	}
	return nil
}

// Cancel withdraws a DRAFT or PUBLISHED event and cascades the
// cancellation to every PENDING and CONFIRMED reservation.  The 48h
// holder window does not apply: the event itself is going away.  Each
// child cancellation is atomic on its own; a failure on one is logged and
// does not block the others or the event-level cancellation.
func (s *EventService) Cancel(ctx context.Context, eventID, organizerID uint64) (*model.Event, error) {
	ev, err := s.loadOwned(ctx, eventID, organizerID)
	if err != nil {
		return nil, err
	}
	if !ev.Status.CanTransition(model.EventCancelled) {
		return nil, fmt.Errorf("%w: cannot cancel a %s event", ErrInvalidTransition, ev.Status)
	}
	if err := s.applyStatus(ctx, ev, model.EventCancelled); err != nil {
		return nil, err
	}

	active, err := s.reservations.ListActiveByEvent(ctx, eventID)
	if err != nil {
		// The event is already cancelled; reservations left active here are
		// picked up the next time the cascade runs or are cancelled manually.
		log.Printf("event %d: listing reservations for cascade failed: %v", eventID, err)
		return ev, nil
	}
	for i := range active {
		res := active[i]
		if err := s.lifecycle.CancelForEvent(ctx, &res); err != nil {
			log.Printf("event %d: cascade cancel of reservation %d failed: %v", eventID, res.ID, err)
		}
	}
	s.notifier.Notify(KindEventCancelled, ev)
	return ev, nil
}

// Complete applies the time-driven PUBLISHED → COMPLETED transition.  It
// is idempotent: completing an already-completed event is a no-op, not an
// error.  The event must actually have ended.
func (s *EventService) Complete(ctx context.Context, eventID uint64) (*model.Event, error) {
	ev, err := s.load(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.Status == model.EventCompleted {
		return ev, nil
	}
	if !ev.Status.CanTransition(model.EventCompleted) {
		return nil, fmt.Errorf("%w: cannot complete a %s event", ErrInvalidTransition, ev.Status)
	}
	if time.Now().UTC().Before(ev.EndsAt) {
		return nil, fmt.Errorf("%w: event has not ended yet", ErrBusinessRule)
	}
	if err := s.applyStatus(ctx, ev, model.EventCompleted); err != nil {
		return nil, err
	}
	return ev, nil
}

// Delete removes an event that has never been reserved.  Any reservation,
// of any status, blocks deletion.
func (s *EventService) Delete(ctx context.Context, eventID, organizerID uint64) error {
	ev, err := s.loadOwned(ctx, eventID, organizerID)
	if err != nil {
		return err
	}
	n, err := s.events.CountReservations(ctx, ev.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: event has %d reservations", ErrBusinessRule, n)
	}
	if err := s.events.Delete(ctx, ev.ID); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return fmt.Errorf("%w: event %d", ErrNotFound, ev.ID)
		}
		return err
	}
	return nil
}

// Get returns an event by id.
func (s *EventService) Get(ctx context.Context, eventID uint64) (*model.Event, error) {
	return s.load(ctx, eventID)
}

// AvailableSeats reports the ledger's display snapshot for an event.
func (s *EventService) AvailableSeats(ctx context.Context, eventID uint64) (int, error) {
	return s.ledger.AvailableSeats(ctx, eventID)
}

// CompletionSweep flips every published event whose end time has passed
// to COMPLETED and returns how many were changed.
func (s *EventService) CompletionSweep(ctx context.Context) (int64, error) {
	return s.events.CompleteDue(ctx, time.Now().UTC())
}

// RunCompletionSweep runs CompletionSweep on a ticker until the context
// is cancelled.  Intended to be started as a goroutine from main.
func (s *EventService) RunCompletionSweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.CompletionSweep(ctx)
			if err != nil {
				log.Printf("completion sweep failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("completion sweep: %d event(s) completed", n)
			}
		}
	}
}

// applyStatus performs the conditional status write from the observed
// status and mirrors the result onto the struct.
func (s *EventService) applyStatus(ctx context.Context, ev *model.Event, to model.EventStatus) error {
	err := s.events.UpdateStatus(ctx, ev.ID, ev.Status, to)
	if err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return fmt.Errorf("%w: event %d changed concurrently", ErrConflict, ev.ID)
		}
		if errors.Is(err, repository.ErrEventNotFound) {
			return fmt.Errorf("%w: event %d", ErrNotFound, ev.ID)
		}
		return err
	}
	ev.Status = to
	return nil
}

func (s *EventService) load(ctx context.Context, eventID uint64) (*model.Event, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, fmt.Errorf("%w: event %d", ErrNotFound, eventID)
		}
		return nil, err
	}
	return ev, nil
}

func (s *EventService) loadOwned(ctx context.Context, eventID, organizerID uint64) (*model.Event, error) {
	ev, err := s.load(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.OrganizerID != organizerID {
		return nil, fmt.Errorf("%w: event %d", ErrForbidden, eventID)
	}
	return ev, nil
}
