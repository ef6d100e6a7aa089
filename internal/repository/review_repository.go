package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/event-reservation/internal/model"
)

// ReviewRepo persists reviews.  The reviews table carries a UNIQUE key on
// reservation_id, so the 1:1 relation between a reservation and its review
// is enforced by the database: a second submission becomes an update of
// the existing row, never a duplicate.
type ReviewRepo struct {
	db *sql.DB
}

// NewReviewRepo returns a new ReviewRepo bound to the given database.
func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

const reviewColumns = `id, reservation_id, event_id, user_id, rating, comment, created_at, updated_at`

func scanReview(row interface{ Scan(...any) error }) (*model.Review, error) {
	var rev model.Review
	var comment sql.NullString
	err := row.Scan(
		&rev.ID, &rev.ReservationID, &rev.EventID, &rev.UserID,
		&rev.Rating, &comment, &rev.CreatedAt, &rev.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if comment.Valid {
		cm := comment.String
		rev.Comment = &cm
	}
	return &rev, nil
}

// GetByReservation returns the review attached to a reservation, or
// ErrReviewNotFound when none has been submitted yet.
func (r *ReviewRepo) GetByReservation(ctx context.Context, reservationID uint64) (*model.Review, error) {
	const q = `SELECT ` + reviewColumns + ` FROM reviews WHERE reservation_id = ?`
	rev, err := scanReview(r.db.QueryRowContext(ctx, q, reservationID))
	if err == sql.ErrNoRows {
		return nil, ErrReviewNotFound
	}
	return rev, err
}

// Upsert inserts the review or, when one already exists for the
// reservation, updates its rating and comment in place.  The struct is
// populated with the stored row on return.
func (r *ReviewRepo) Upsert(ctx context.Context, rev *model.Review) error {
	const q = `INSERT INTO reviews (reservation_id, event_id, user_id, rating, comment)
               VALUES (?, ?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE rating = VALUES(rating), comment = VALUES(comment)`
	if _, err := r.db.ExecContext(ctx, q,
		rev.ReservationID, rev.EventID, rev.UserID, rev.Rating, rev.Comment); err != nil {
		return err
	}
	stored, err := r.GetByReservation(ctx, rev.ReservationID)
	if err != nil {
		return err
	}
	*rev = *stored
	return nil
}

// ListByEvent returns all reviews of an event, newest first.
func (r *ReviewRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Review, error) {
	const q = `SELECT ` + reviewColumns + ` FROM reviews
               WHERE event_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	reviews := make([]model.Review, 0)
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *rev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reviews, nil
}
