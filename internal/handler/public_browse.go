// Public browsing API: unauthenticated users can list and search
// published events, look at a single event with its live seat
// availability, and read the reviews left for it.  Sensitive fields
// (organizer IDs, internal timestamps) are filtered from responses.

package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-reservation/internal/model"
    "github.com/iliyamo/event-reservation/internal/repository"
    "github.com/iliyamo/event-reservation/internal/service"
)

// PublicHandler aggregates what unauthenticated browsing needs.  It
// produces sanitized responses suitable for public consumption.
type PublicHandler struct {
    EventRepo  *repository.EventRepo
    ReviewRepo *repository.ReviewRepo
    Events     *service.EventService
}

func NewPublicHandler(eventRepo *repository.EventRepo, reviewRepo *repository.ReviewRepo, events *service.EventService) *PublicHandler {
    if eventRepo == nil || reviewRepo == nil || events == nil {
        panic("nil dependency passed to NewPublicHandler")
    }
    return &PublicHandler{EventRepo: eventRepo, ReviewRepo: reviewRepo, Events: events}
}

// PublicEvent is an event as exposed in public list responses.
type PublicEvent struct {
    ID         uint64    `json:"id"`
    Title      string    `json:"title"`
    Category   string    `json:"category"`
    Location   string    `json:"location"`
    City       string    `json:"city"`
    StartsAt   time.Time `json:"starts_at"`
    EndsAt     time.Time `json:"ends_at"`
    PriceCents uint32    `json:"price_cents"`
    ImageURL   *string   `json:"image_url,omitempty"`
}

// PublicEventDetail adds the description and the availability snapshot.
type PublicEventDetail struct {
    PublicEvent
    Description    string `json:"description"`
    Capacity       int    `json:"capacity"`
    AvailableSeats int    `json:"available_seats"`
}

func toPublicEvent(ev *model.Event) PublicEvent {
    return PublicEvent{
        ID:         ev.ID,
        Title:      ev.Title,
        Category:   ev.Category,
        Location:   ev.Location,
        City:       ev.City,
        StartsAt:   ev.StartsAt,
        EndsAt:     ev.EndsAt,
        PriceCents: ev.PriceCents,
        ImageURL:   ev.ImageURL,
    }
}

// parseEventFilter builds a repository filter from the browse query
// parameters.  from and to must be RFC3339 when present; a bad value is
// reported by name so the client can correct it.
func parseEventFilter(c echo.Context) (repository.EventFilter, error) {
    filter := repository.EventFilter{
        City:     c.QueryParam("city"),
        Category: c.QueryParam("category"),
        Query:    c.QueryParam("q"),
    }
    if v := c.QueryParam("from"); v != "" {
        t, err := time.Parse(time.RFC3339, v)
        if err != nil {
            return filter, errors.New("from must be RFC3339")
        }
        filter.From = t
    }
    if v := c.QueryParam("to"); v != "" {
        t, err := time.Parse(time.RFC3339, v)
        if err != nil {
            return filter, errors.New("to must be RFC3339")
        }
        filter.To = t
    }
    if v := c.QueryParam("limit"); v != "" {
        if n, err := strconv.Atoi(v); err == nil {
            filter.Limit = n
        }
    }
    if v := c.QueryParam("offset"); v != "" {
        if n, err := strconv.Atoi(v); err == nil && n >= 0 {
            filter.Offset = n
        }
    }
    return filter, nil
}

// ListEvents handles GET /v1/events.  Filters: city, category, from, to
// (RFC3339), q (matches title and description), limit, offset.  Only
// PUBLISHED events are ever returned.
func (h *PublicHandler) ListEvents(c echo.Context) error {
    filter, err := parseEventFilter(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    events, err := h.EventRepo.ListPublished(ctx, filter)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    out := make([]PublicEvent, 0, len(events))
    for i := range events {
        out = append(out, toPublicEvent(&events[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetEvent handles GET /v1/events/:id.  The availability figure is a
// display snapshot; the authoritative check happens when reserving.
func (h *PublicHandler) GetEvent(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    ev, err := h.Events.Get(ctx, id)
    if err != nil {
        return jsonError(c, err)
    }
    if ev.Status != model.EventPublished {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
    }
    available, err := h.Events.AvailableSeats(ctx, id)
    if err != nil {
        return jsonError(c, err)
    }
    return c.JSON(http.StatusOK, PublicEventDetail{
        PublicEvent:    toPublicEvent(ev),
        Description:    ev.Description,
        Capacity:       ev.Capacity,
        AvailableSeats: available,
    })
}

// ListEventReviews handles GET /v1/events/:id/reviews.
func (h *PublicHandler) ListEventReviews(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    reviews, err := h.ReviewRepo.ListByEvent(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": reviews})
}
