package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/event-reservation/internal/model"
	"github.com/iliyamo/event-reservation/internal/repository"
	"github.com/iliyamo/event-reservation/internal/utils"
)

// Seat count bounds per reservation and the holder cancellation window.
const (
	MinSeatsPerReservation = 1
	MaxSeatsPerReservation = 10

	// CancellationWindow is the minimum lead time before the event start
	// within which a holder may still cancel a confirmed reservation.
	CancellationWindow = 48 * time.Hour

	// codeAttempts bounds regeneration when a reservation code collides.
	codeAttempts = 3
)

// Notification kinds emitted by the reservation lifecycle.
const (
	KindReservationCreated   = "reservation.created"
	KindReservationConfirmed = "reservation.confirmed"
	KindReservationCancelled = "reservation.cancelled"
)

// ReservationService drives the reservation lifecycle.  It validates
// input, consults the status machines, delegates seat accounting to the
// CapacityLedger and dispatches best-effort notifications after a
// transition commits.  Organizer-initiated force-confirm and force-cancel
// go through the same methods; they are not a separate code path.
type ReservationService struct {
	ledger       *CapacityLedger
	reservations ReservationStore
	notifier     Notifier
}

// NewReservationService wires the reservation lifecycle.  A nil notifier
// falls back to NopNotifier.
func NewReservationService(ledger *CapacityLedger, reservations ReservationStore, notifier Notifier) *ReservationService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &ReservationService{ledger: ledger, reservations: reservations, notifier: notifier}
}

// Create reserves seatCount seats of the event for the holder.  The
// reservation starts PENDING with a freshly generated unique code and a
// total amount snapshotted from the event price inside the reserve
// transaction.  Fails with ErrBadRequest for an out-of-range seat count,
// ErrInsufficientCapacity when the seats do not fit, ErrBusinessRule when
// the event is not reservable, and ErrTimeout/ErrConflict for concurrency
// outcomes the caller may retry.
func (s *ReservationService) Create(ctx context.Context, eventID, holderID uint64, seatCount int, comment *string) (*model.Reservation, error) {
	if seatCount < MinSeatsPerReservation || seatCount > MaxSeatsPerReservation {
		return nil, fmt.Errorf("%w: seat count must be between %d and %d",
			ErrBadRequest, MinSeatsPerReservation, MaxSeatsPerReservation)
	}

	for attempt := 0; attempt < codeAttempts; attempt++ {
		code, err := utils.NewReservationCode()
		if err != nil {
			return nil, err
		}
		res := &model.Reservation{
			Code:      code,
			EventID:   eventID,
			UserID:    holderID,
			SeatCount: seatCount,
			Comment:   comment,
		}
		err = s.ledger.TryReserve(ctx, res)
		if errors.Is(err, repository.ErrCodeTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}
		s.notifier.Notify(KindReservationCreated, res)
		return res, nil
	}
	return nil, fmt.Errorf("%w: could not allocate a unique reservation code", ErrConflict)
}

// Confirm moves a PENDING reservation to CONFIRMED.  No capacity re-check
// is needed: the seats were committed at creation.  The caller must be the
// holder or the event's organizer.
func (s *ReservationService) Confirm(ctx context.Context, reservationID, actorID uint64) (*model.Reservation, error) {
	res, _, err := s.loadForActor(ctx, reservationID, actorID)
	if err != nil {
		return nil, err
	}
	if !res.Status.CanTransition(model.ReservationConfirmed) {
		return nil, fmt.Errorf("%w: cannot confirm a %s reservation", ErrInvalidTransition, res.Status)
	}
	if err := s.applyStatus(ctx, res, model.ReservationConfirmed); err != nil {
		return nil, err
	}
	s.notifier.Notify(KindReservationConfirmed, res)
	return res, nil
}

// Cancel moves a PENDING or CONFIRMED reservation to CANCELLED.  A holder
// cancelling a confirmed reservation must still be outside the 48h window
// before the event start; the organizer withdrawing a reservation is not
// bound by the window.  Cancelling releases the seats implicitly: a
// cancelled reservation no longer counts against capacity.
func (s *ReservationService) Cancel(ctx context.Context, reservationID, actorID uint64) (*model.Reservation, error) {
	res, ev, err := s.loadForActor(ctx, reservationID, actorID)
	if err != nil {
		return nil, err
	}
	if !res.Status.CanTransition(model.ReservationCancelled) {
		return nil, fmt.Errorf("%w: cannot cancel a %s reservation", ErrInvalidTransition, res.Status)
	}
	holderCancelling := actorID == res.UserID && actorID != ev.OrganizerID
	if res.Status == model.ReservationConfirmed && holderCancelling {
		if ev.StartsAt.Sub(time.Now().UTC()) <= CancellationWindow {
			return nil, fmt.Errorf("%w: cancellation window closed", ErrBusinessRule)
		}
	}
	if err := s.applyStatus(ctx, res, model.ReservationCancelled); err != nil {
		return nil, err
	}
	s.notifier.Notify(KindReservationCancelled, res)
	return res, nil
}

// CancelForEvent cancels one reservation as part of an event withdrawal.
// The cancellation window never applies here: the event itself is being
// cancelled.  Used by the event lifecycle cascade; each call is atomic on
// its own so a failure on one reservation does not block the others.
func (s *ReservationService) CancelForEvent(ctx context.Context, res *model.Reservation) error {
	if !res.Status.CanTransition(model.ReservationCancelled) {
		return fmt.Errorf("%w: cannot cancel a %s reservation", ErrInvalidTransition, res.Status)
	}
	if err := s.applyStatus(ctx, res, model.ReservationCancelled); err != nil {
		return err
	}
	s.notifier.Notify(KindReservationCancelled, res)
	return nil
}

// GetForActor returns a reservation visible to the actor (holder or event
// organizer) together with its event.
func (s *ReservationService) GetForActor(ctx context.Context, reservationID, actorID uint64) (*model.Reservation, *model.Event, error) {
	res, ev, err := s.loadWithEvent(ctx, reservationID)
	if err != nil {
		return nil, nil, err
	}
	if actorID != res.UserID && actorID != ev.OrganizerID {
		return nil, nil, fmt.Errorf("%w: reservation %d", ErrForbidden, reservationID)
	}
	return res, ev, nil
}

// applyStatus performs the conditional status write from the observed
// status and mirrors the result onto the struct.  A concurrent writer that
// moved the row first surfaces as ErrConflict.
func (s *ReservationService) applyStatus(ctx context.Context, res *model.Reservation, to model.ReservationStatus) error {
	err := s.reservations.UpdateStatus(ctx, res.ID, res.Status, to)
	if err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return fmt.Errorf("%w: reservation %d changed concurrently", ErrConflict, res.ID)
		}
		if errors.Is(err, repository.ErrReservationNotFound) {
			return fmt.Errorf("%w: reservation %d", ErrNotFound, res.ID)
		}
		if errors.Is(err, repository.ErrLockTimeout) {
			return fmt.Errorf("%w: reservation %d", ErrTimeout, res.ID)
		}
		return err
	}
	res.Status = to
	return nil
}

func (s *ReservationService) loadWithEvent(ctx context.Context, reservationID uint64) (*model.Reservation, *model.Event, error) {
	res, ev, err := s.reservations.GetWithEvent(ctx, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return nil, nil, fmt.Errorf("%w: reservation %d", ErrNotFound, reservationID)
		}
		return nil, nil, err
	}
	return res, ev, nil
}

func (s *ReservationService) loadForActor(ctx context.Context, reservationID, actorID uint64) (*model.Reservation, *model.Event, error) {
	res, ev, err := s.loadWithEvent(ctx, reservationID)
	if err != nil {
		return nil, nil, err
	}
	if actorID != res.UserID && actorID != ev.OrganizerID {
		log.Printf("reservation %d: actor %d is neither holder %d nor organizer %d",
			reservationID, actorID, res.UserID, ev.OrganizerID)
		return nil, nil, fmt.Errorf("%w: reservation %d", ErrForbidden, reservationID)
	}
	return res, ev, nil
}
