package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/event-reservation/internal/model"
	"github.com/iliyamo/event-reservation/internal/repository"
)

// Rating bounds for a review.
const (
	MinRating = 1
	MaxRating = 5
)

// ReviewService gates feedback on attendance.  A review is allowed only
// for the holder of a CONFIRMED reservation whose event has COMPLETED and
// whose start time has passed; resubmitting overwrites the previous
// review in place.
type ReviewService struct {
	reservations ReservationStore
	reviews      ReviewStore
}

// NewReviewService wires the review gate.
func NewReviewService(reservations ReservationStore, reviews ReviewStore) *ReviewService {
	return &ReviewService{reservations: reservations, reviews: reviews}
}

// CanReview reports whether the holder may currently review through the
// reservation.  The returned error is nil when reviewing is allowed and
// carries the reason otherwise.
func (s *ReviewService) CanReview(ctx context.Context, reservationID, holderID uint64) (*model.Reservation, *model.Event, error) {
	res, ev, err := s.reservations.GetWithEvent(ctx, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return nil, nil, fmt.Errorf("%w: reservation %d", ErrNotFound, reservationID)
		}
		return nil, nil, err
	}
	if res.UserID != holderID {
		return nil, nil, fmt.Errorf("%w: reservation %d", ErrForbidden, reservationID)
	}
	if res.Status != model.ReservationConfirmed {
		return nil, nil, fmt.Errorf("%w: only a confirmed reservation can be reviewed", ErrBusinessRule)
	}
	if ev.Status != model.EventCompleted {
		return nil, nil, fmt.Errorf("%w: event has not completed", ErrBusinessRule)
	}
	if time.Now().UTC().Before(ev.StartsAt) {
		return nil, nil, fmt.Errorf("%w: event has not started", ErrBusinessRule)
	}
	return res, ev, nil
}

// Submit creates or replaces the holder's review through the reservation.
// The rating must be between 1 and 5; the gate conditions of CanReview
// must hold.  A resubmission overwrites rating and comment on the
// existing row, never adding a second review per reservation.
func (s *ReviewService) Submit(ctx context.Context, reservationID, holderID uint64, rating int, comment *string) (*model.Review, error) {
	if rating < MinRating || rating > MaxRating {
		return nil, fmt.Errorf("%w: rating must be between %d and %d", ErrBadRequest, MinRating, MaxRating)
	}
	res, ev, err := s.CanReview(ctx, reservationID, holderID)
	if err != nil {
		return nil, err
	}
	rev := &model.Review{
		ReservationID: res.ID,
		EventID:       ev.ID,
		UserID:        res.UserID,
		Rating:        rating,
		Comment:       comment,
	}
	if err := s.reviews.Upsert(ctx, rev); err != nil {
		return nil, err
	}
	return rev, nil
}

// Get returns the review attached to the reservation, visible to the
// holder only.
func (s *ReviewService) Get(ctx context.Context, reservationID, holderID uint64) (*model.Review, error) {
	res, _, err := s.reservations.GetWithEvent(ctx, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return nil, fmt.Errorf("%w: reservation %d", ErrNotFound, reservationID)
		}
		return nil, err
	}
	if res.UserID != holderID {
		return nil, fmt.Errorf("%w: reservation %d", ErrForbidden, reservationID)
	}
	rev, err := s.reviews.GetByReservation(ctx, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, fmt.Errorf("%w: no review for reservation %d", ErrNotFound, reservationID)
		}
		return nil, err
	}
	return rev, nil
}
