package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/event-reservation/internal/model"
)

// EventRepo provides CRUD and lifecycle operations for events.  Status
// changes go through conditional UPDATEs so that the state machine check
// performed by the service layer cannot be raced past by a concurrent
// writer.  All timestamp columns are stored in UTC.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = `id, organizer_id, title, description, category, location, city,
       starts_at, ends_at, capacity, price_cents, image_url, status, created_at, updated_at`

// scanEvent reads one events row from a row scanner into a model.Event.
func scanEvent(row interface{ Scan(...any) error }) (*model.Event, error) {
	var ev model.Event
	var imageURL sql.NullString
	err := row.Scan(
		&ev.ID, &ev.OrganizerID, &ev.Title, &ev.Description, &ev.Category,
		&ev.Location, &ev.City, &ev.StartsAt, &ev.EndsAt, &ev.Capacity,
		&ev.PriceCents, &imageURL, &ev.Status, &ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if imageURL.Valid {
		u := imageURL.String
		ev.ImageURL = &u
	}
	return &ev, nil
}

// Create inserts a new event in DRAFT status and populates the generated
// ID and timestamps on the provided struct.
func (r *EventRepo) Create(ctx context.Context, ev *model.Event) error {
	const q = `INSERT INTO events
               (organizer_id, title, description, category, location, city,
                starts_at, ends_at, capacity, price_cents, image_url, status)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		ev.OrganizerID, ev.Title, ev.Description, ev.Category, ev.Location, ev.City,
		ev.StartsAt.UTC(), ev.EndsAt.UTC(), ev.Capacity, ev.PriceCents, ev.ImageURL,
		string(model.EventDraft),
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	ev.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults.
	created, err := r.GetByID(ctx, ev.ID)
	if err != nil {
		return err
	}
	*ev = *created
	return nil
}

// GetByID returns an event by primary key or ErrEventNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	ev, err := scanEvent(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrEventNotFound
	}
	return ev, err
}

// GetByIDForOrganizer returns an event by id after verifying that it is
// managed by the given organizer.  It returns ErrEventNotFound when the
// event does not exist and ErrForbidden when it belongs to someone else.
func (r *EventRepo) GetByIDForOrganizer(ctx context.Context, id, organizerID uint64) (*model.Event, error) {
	ev, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ev.OrganizerID != organizerID {
		return nil, ErrForbidden
	}
	return ev, nil
}

// Update rewrites the mutable attributes of an event.  Status is not
// touched here; lifecycle moves go through UpdateStatus.
func (r *EventRepo) Update(ctx context.Context, ev *model.Event) error {
	const q = `UPDATE events
               SET title = ?, description = ?, category = ?, location = ?, city = ?,
                   starts_at = ?, ends_at = ?, capacity = ?, price_cents = ?, image_url = ?
               WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q,
		ev.Title, ev.Description, ev.Category, ev.Location, ev.City,
		ev.StartsAt.UTC(), ev.EndsAt.UTC(), ev.Capacity, ev.PriceCents, ev.ImageURL,
		ev.ID,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either the row is gone or nothing changed; distinguish by existence.
		if _, err := r.GetByID(ctx, ev.ID); err != nil {
			return err
		}
	}
	return nil
}

// UpdateStatus moves an event from an expected status to a new one as a
// single conditional write.  When zero rows match, it re-reads the row to
// report ErrEventNotFound or ErrStatusChanged.
func (r *EventRepo) UpdateStatus(ctx context.Context, id uint64, from, to model.EventStatus) error {
	const q = `UPDATE events SET status = ? WHERE id = ? AND status = ?`
	result, err := r.db.ExecContext(ctx, q, string(to), id, string(from))
	if err != nil {
		return err
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
			// Another writer already applied the same move; nothing to do.
			return nil
		}
		return ErrStatusChanged
	}
	return nil
}

// CompleteDue flips every published event whose end time has passed to
// COMPLETED.  It is called by the periodic sweep and returns the number of
// rows changed.  Re-running it is harmless: already-completed events no
// longer match the predicate.
func (r *EventRepo) CompleteDue(ctx context.Context, now time.Time) (int64, error) {
	const q = `UPDATE events SET status = ? WHERE status = ? AND ends_at <= ?`
	result, err := r.db.ExecContext(ctx, q,
		string(model.EventCompleted), string(model.EventPublished), now.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// CountReservations returns how many reservations of any status reference
// the event.  Used to guard event deletion.
func (r *EventRepo) CountReservations(ctx context.Context, eventID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM reservations WHERE event_id = ?`
	var n int
	if err := r.db.QueryRowContext(ctx, q, eventID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Delete removes an event row.  Callers must have verified that no
// reservations reference it.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// ListByOrganizer returns all events managed by a user, newest first.
func (r *EventRepo) ListByOrganizer(ctx context.Context, organizerID uint64) ([]model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE organizer_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

// EventFilter narrows the public listing of published events.  Zero values
// mean "no constraint".  Query matches title and description.
type EventFilter struct {
	City     string
	Category string
	From     time.Time
	To       time.Time
	Query    string
	Limit    int
	Offset   int
}

// ListPublished returns published events matching the filter, soonest
// first.  The result is a display snapshot; availability shown alongside
// it may be stale and is never used to admit a reservation.
func (r *EventRepo) ListPublished(ctx context.Context, f EventFilter) ([]model.Event, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + eventColumns + ` FROM events WHERE status = ?`)
	args := []any{string(model.EventPublished)}

	if f.City != "" {
		sb.WriteString(` AND city = ?`)
		args = append(args, f.City)
	}
	if f.Category != "" {
		sb.WriteString(` AND category = ?`)
		args = append(args, f.Category)
	}
	if !f.From.IsZero() {
		sb.WriteString(` AND starts_at >= ?`)
		args = append(args, f.From.UTC())
	}
	if !f.To.IsZero() {
		sb.WriteString(` AND starts_at <= ?`)
		args = append(args, f.To.UTC())
	}
	if f.Query != "" {
		sb.WriteString(` AND (title LIKE ? OR description LIKE ?)`)
		like := "%" + f.Query + "%"
		args = append(args, like, like)
	}
	sb.WriteString(` ORDER BY starts_at ASC`)
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	sb.WriteString(` LIMIT ? OFFSET ?`)
	args = append(args, limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func collectEvents(rows *sql.Rows) ([]model.Event, error) {
	events := make([]model.Event, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
