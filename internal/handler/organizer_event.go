package handler

import (
    "context"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-reservation/internal/model"
    "github.com/iliyamo/event-reservation/internal/repository"
    "github.com/iliyamo/event-reservation/internal/service"
)

// OrganizerEventHandler exposes the event lifecycle to organizers:
// drafting, editing, publishing, cancelling, completing and deleting
// their own events, plus listing the reservations taken against them.
type OrganizerEventHandler struct {
    Events    *service.EventService
    EventRepo *repository.EventRepo
    ResRepo   *repository.ReservationRepo
}

func NewOrganizerEventHandler(events *service.EventService, eventRepo *repository.EventRepo, resRepo *repository.ReservationRepo) *OrganizerEventHandler {
    if events == nil || eventRepo == nil || resRepo == nil {
        panic("nil dependency passed to NewOrganizerEventHandler")
    }
    return &OrganizerEventHandler{Events: events, EventRepo: eventRepo, ResRepo: resRepo}
}

type eventReq struct {
    Title       string  `json:"title"`
    Description string  `json:"description"`
    Category    string  `json:"category"`
    Location    string  `json:"location"`
    City        string  `json:"city"`
    StartsAt    string  `json:"starts_at"` // RFC3339
    EndsAt      string  `json:"ends_at"`   // RFC3339
    Capacity    int     `json:"capacity"`
    PriceCents  uint32  `json:"price_cents"`
    ImageURL    *string `json:"image_url"`
}

func (r eventReq) toModel() (*model.Event, error) {
    starts, err := time.Parse(time.RFC3339, r.StartsAt)
    if err != nil {
        return nil, errors.New("starts_at must be RFC3339")
    }
    ends, err := time.Parse(time.RFC3339, r.EndsAt)
    if err != nil {
        return nil, errors.New("ends_at must be RFC3339")
    }
    return &model.Event{
        Title:       r.Title,
        Description: r.Description,
        Category:    r.Category,
        Location:    r.Location,
        City:        r.City,
        StartsAt:    starts.UTC(),
        EndsAt:      ends.UTC(),
        Capacity:    r.Capacity,
        PriceCents:  r.PriceCents,
        ImageURL:    r.ImageURL,
    }, nil
}

// Create makes a new draft event owned by the caller.
func (h *OrganizerEventHandler) Create(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req eventReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    ev, err := req.toModel()
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    ev.OrganizerID = uid

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    created, err := h.Events.Create(ctx, ev)
    if err != nil {
        return jsonError(c, err)
    }
    return c.JSON(http.StatusCreated, created)
}

// List returns the caller's events, newest first.
func (h *OrganizerEventHandler) List(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    events, err := h.EventRepo.ListByOrganizer(ctx, uid)
    if err != nil {
        return jsonError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"events": events})
}

// Get returns one of the caller's events.
func (h *OrganizerEventHandler) Get(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    ev, err := h.EventRepo.GetByIDForOrganizer(ctx, id, uid)
    if err != nil {
        if errors.Is(err, repository.ErrEventNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
        }
        if errors.Is(err, repository.ErrForbidden) {
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        }
        return jsonError(c, err)
    }
    return c.JSON(http.StatusOK, ev)
}

// Update edits a draft or published event.
func (h *OrganizerEventHandler) Update(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    var req eventReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    ev, err := req.toModel()
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    ev.ID = id

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    updated, err := h.Events.Update(ctx, uid, ev)
    if err != nil {
        return jsonError(c, err)
    }
    return c.JSON(http.StatusOK, updated)
}

// Publish opens a draft event for reservations.
func (h *OrganizerEventHandler) Publish(c echo.Context) error {
    return h.transition(c, h.Events.Publish)
}

// Cancel withdraws an event and cascades to its active reservations.
func (h *OrganizerEventHandler) Cancel(c echo.Context) error {
    return h.transition(c, h.Events.Cancel)
}

func (h *OrganizerEventHandler) transition(c echo.Context, op func(context.Context, uint64, uint64) (*model.Event, error)) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    ev, err := op(ctx, id, uid)
    if err != nil {
        return jsonError(c, err)
    }
    return c.JSON(http.StatusOK, ev)
}

// Delete removes an event that has no reservations.
func (h *OrganizerEventHandler) Delete(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Events.Delete(ctx, id, uid); err != nil {
        return jsonError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// Reservations lists every reservation taken against one of the caller's
// events, any status.
func (h *OrganizerEventHandler) Reservations(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if _, err := h.EventRepo.GetByIDForOrganizer(ctx, id, uid); err != nil {
        if errors.Is(err, repository.ErrEventNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
        }
        if errors.Is(err, repository.ErrForbidden) {
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        }
        return jsonError(c, err)
    }
    reservations, err := h.ResRepo.ListByEvent(ctx, id)
    if err != nil {
        return jsonError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"reservations": reservations})
}
