package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/event-reservation/internal/model"
)

// ReservationRepo provides persistence for reservations.  The critical
// operation is TryReserve: it is the only place where seats are committed
// against an event's capacity, and it performs the read-check-write
// sequence inside a single transaction holding a row lock on the event.
// All timestamp fields are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, code, event_id, user_id, seat_count,
       total_amount_cents, status, comment, created_at, updated_at`

func scanReservation(row interface{ Scan(...any) error }) (*model.Reservation, error) {
	var res model.Reservation
	var comment sql.NullString
	err := row.Scan(
		&res.ID, &res.Code, &res.EventID, &res.UserID, &res.SeatCount,
		&res.TotalAmountCents, &res.Status, &comment, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if comment.Valid {
		cm := comment.String
		res.Comment = &cm
	}
	return &res, nil
}

// TryReserve atomically commits res.SeatCount seats against the event and
// inserts the reservation in PENDING status.  The sequence runs in one
// transaction:
//
//  1. lock the event row (SELECT ... FOR UPDATE) and verify it is
//     published with a start time in the future,
//  2. sum the seats of PENDING and CONFIRMED reservations,
//  3. insert the new row only if the sum plus the request fits capacity.
//
// Two concurrent callers therefore serialize on the event row and can
// never jointly oversell it.  The total amount is snapshotted here from
// the locked price so later price edits never change existing
// reservations.  On success the struct is populated with the generated
// ID, amount and timestamps.  Failures map to ErrEventNotFound,
// ErrEventNotReservable, ErrInsufficientCapacity, ErrCodeTaken,
// ErrLockTimeout or ErrDeadlock; in every failure case nothing is written.
func (r *ReservationRepo) TryReserve(ctx context.Context, res *model.Reservation) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const lockQ = `SELECT status, capacity, starts_at, price_cents
                   FROM events WHERE id = ? FOR UPDATE`
	var status model.EventStatus
	var capacity int
	var startsAt time.Time
	var priceCents uint32
	err = tx.QueryRowContext(ctx, lockQ, res.EventID).
		Scan(&status, &capacity, &startsAt, &priceCents)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrEventNotFound
		}
		return classifyLockErr(err)
	}
	if status != model.EventPublished || !startsAt.After(time.Now().UTC()) {
		return ErrEventNotReservable
	}

	const sumQ = `SELECT COALESCE(SUM(seat_count), 0) FROM reservations
                  WHERE event_id = ? AND status IN (?, ?)`
	var committedSeats int
	err = tx.QueryRowContext(ctx, sumQ, res.EventID,
		string(model.ReservationPending), string(model.ReservationConfirmed)).
		Scan(&committedSeats)
	if err != nil {
		return classifyLockErr(err)
	}
	if committedSeats+res.SeatCount > capacity {
		return ErrInsufficientCapacity
	}

	res.TotalAmountCents = uint32(res.SeatCount) * priceCents
	const insQ = `INSERT INTO reservations
                  (code, event_id, user_id, seat_count, total_amount_cents, status, comment)
                  VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, insQ,
		res.Code, res.EventID, res.UserID, res.SeatCount,
		res.TotalAmountCents, string(model.ReservationPending), res.Comment)
	if err != nil {
		if mysqlErrNumber(err) == mysqlErrDuplicateEntry {
			return ErrCodeTaken
		}
		return classifyLockErr(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)

	// Query back the full row to populate timestamps and defaults.
	const sel = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	created, err := scanReservation(tx.QueryRowContext(ctx, sel, res.ID))
	if err != nil {
		return err
	}
	*res = *created

	if err := tx.Commit(); err != nil {
		return classifyLockErr(err)
	}
	committed = true
	return nil
}

// classifyLockErr maps MySQL concurrency errors to repository sentinels so
// the service layer can distinguish "try again" from real failures.
func classifyLockErr(err error) error {
	switch mysqlErrNumber(err) {
	case mysqlErrLockWaitTimeout:
		return ErrLockTimeout
	case mysqlErrDeadlock:
		return ErrDeadlock
	}
	return err
}

// CommittedSeats sums seat counts over PENDING and CONFIRMED reservations
// of the event.  This read is a snapshot: only TryReserve, which performs
// the same sum under a row lock, is authoritative.
func (r *ReservationRepo) CommittedSeats(ctx context.Context, eventID uint64) (int, error) {
	const q = `SELECT COALESCE(SUM(seat_count), 0) FROM reservations
               WHERE event_id = ? AND status IN (?, ?)`
	var n int
	err := r.db.QueryRowContext(ctx, q, eventID,
		string(model.ReservationPending), string(model.ReservationConfirmed)).Scan(&n)
	return n, err
}

// GetByID returns a reservation by primary key or ErrReservationNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	return res, err
}

// GetWithEvent loads a reservation together with its event in one round
// trip.  The service layer needs both to evaluate cancellation windows and
// review gates without a second read racing the first.
func (r *ReservationRepo) GetWithEvent(ctx context.Context, id uint64) (*model.Reservation, *model.Event, error) {
	const q = `SELECT r.id, r.code, r.event_id, r.user_id, r.seat_count,
                      r.total_amount_cents, r.status, r.comment, r.created_at, r.updated_at,
                      e.id, e.organizer_id, e.title, e.description, e.category, e.location, e.city,
                      e.starts_at, e.ends_at, e.capacity, e.price_cents, e.image_url, e.status,
                      e.created_at, e.updated_at
               FROM reservations r
               JOIN events e ON e.id = r.event_id
               WHERE r.id = ?`
	var res model.Reservation
	var ev model.Event
	var comment, imageURL sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&res.ID, &res.Code, &res.EventID, &res.UserID, &res.SeatCount,
		&res.TotalAmountCents, &res.Status, &comment, &res.CreatedAt, &res.UpdatedAt,
		&ev.ID, &ev.OrganizerID, &ev.Title, &ev.Description, &ev.Category, &ev.Location, &ev.City,
		&ev.StartsAt, &ev.EndsAt, &ev.Capacity, &ev.PriceCents, &imageURL, &ev.Status,
		&ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, ErrReservationNotFound
		}
		return nil, nil, err
	}
	if comment.Valid {
		cm := comment.String
		res.Comment = &cm
	}
	if imageURL.Valid {
		u := imageURL.String
		ev.ImageURL = &u
	}
	return &res, &ev, nil
}

// UpdateStatus moves a reservation from an expected status to a new one as
// a single conditional write, which serializes concurrent confirm/cancel
// attempts on the same reservation.  When zero rows match it re-reads the
// row to report ErrReservationNotFound or ErrStatusChanged.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id uint64, from, to model.ReservationStatus) error {
	const q = `UPDATE reservations SET status = ? WHERE id = ? AND status = ?`
	result, err := r.db.ExecContext(ctx, q, string(to), id, string(from))
	if err != nil {
		return classifyLockErr(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current.Status == to {
			return nil
		}
		return ErrStatusChanged
	}
	return nil
}

// ListActiveByEvent returns the PENDING and CONFIRMED reservations of an
// event, oldest first.  Used by the cascade when an event is cancelled.
func (r *ReservationRepo) ListActiveByEvent(ctx context.Context, eventID uint64) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations
               WHERE event_id = ? AND status IN (?, ?)
               ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, q, eventID,
		string(model.ReservationPending), string(model.ReservationConfirmed))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

// ListByEvent returns every reservation of an event regardless of status,
// newest first.  Used by the organizer's management view.
func (r *ReservationRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations
               WHERE event_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

// ReservationDetail is a reservation joined with display fields of its
// event, returned by ListByUser for the holder's overview.
type ReservationDetail struct {
	ID               uint64                  `json:"id"`
	Code             string                  `json:"code"`
	EventID          uint64                  `json:"event_id"`
	EventTitle       string                  `json:"event_title"`
	EventCity        string                  `json:"event_city"`
	EventStartsAt    time.Time               `json:"event_starts_at"`
	SeatCount        int                     `json:"seat_count"`
	TotalAmountCents uint32                  `json:"total_amount_cents"`
	Status           model.ReservationStatus `json:"status"`
	CreatedAt        time.Time               `json:"created_at"`
}

// ListByUser returns all reservations of a holder with event display
// fields, newest first.  When none exist an empty slice is returned.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
	const q = `SELECT r.id, r.code, r.event_id, e.title, e.city, e.starts_at,
                      r.seat_count, r.total_amount_cents, r.status, r.created_at
               FROM reservations r
               JOIN events e ON e.id = r.event_id
               WHERE r.user_id = ?
               ORDER BY r.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]ReservationDetail, 0)
	for rows.Next() {
		var d ReservationDetail
		if err := rows.Scan(
			&d.ID, &d.Code, &d.EventID, &d.EventTitle, &d.EventCity, &d.EventStartsAt,
			&d.SeatCount, &d.TotalAmountCents, &d.Status, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

func collectReservations(rows *sql.Rows) ([]model.Reservation, error) {
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
