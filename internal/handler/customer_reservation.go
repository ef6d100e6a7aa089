package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-reservation/internal/repository"
    "github.com/iliyamo/event-reservation/internal/service"
)

// ReservationHandler serves the reservation lifecycle over HTTP.  All
// methods assume that JWT authentication and role validation have already
// been performed by middleware; they may still return 401 when the user
// ID cannot be extracted from the context.  Confirm and Cancel are shared
// with organizers: the service layer authorizes the holder and the
// event's organizer and nobody else.
type ReservationHandler struct {
    Reservations *service.ReservationService
    ResRepo      *repository.ReservationRepo
}

// NewReservationHandler constructs a ReservationHandler.  All
// dependencies must be non-nil.
func NewReservationHandler(reservations *service.ReservationService, resRepo *repository.ReservationRepo) *ReservationHandler {
    if reservations == nil || resRepo == nil {
        panic("nil dependency passed to NewReservationHandler")
    }
    return &ReservationHandler{Reservations: reservations, ResRepo: resRepo}
}

type createReservationReq struct {
    EventID   uint64  `json:"event_id"`
    SeatCount int     `json:"seat_count"`
    Comment   *string `json:"comment"`
}

// Create handles POST /v1/reservations.  It claims seats on a published
// future event; the seats are committed atomically against the event's
// capacity and the reservation starts PENDING.
func (h *ReservationHandler) Create(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req createReservationReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.EventID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    res, err := h.Reservations.Create(ctx, req.EventID, userID, req.SeatCount, req.Comment)
    if err != nil {
        return jsonError(c, err)
    }
    return c.JSON(http.StatusCreated, res)
}

// Get handles GET /v1/reservations/:id for the holder or the event's
// organizer.
func (h *ReservationHandler) Get(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    res, ev, err := h.Reservations.GetForActor(ctx, id, userID)
    if err != nil {
        return jsonError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"reservation": res, "event": ev})
}

// Confirm handles POST /v1/reservations/:id/confirm.
func (h *ReservationHandler) Confirm(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    res, err := h.Reservations.Confirm(ctx, id, userID)
    if err != nil {
        return jsonError(c, err)
    }
    return c.JSON(http.StatusOK, res)
}

// Cancel handles POST /v1/reservations/:id/cancel.  The service enforces
// the 48h holder window for confirmed reservations; cancelled seats
// return to the event's availability immediately.
func (h *ReservationHandler) Cancel(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    res, err := h.Reservations.Cancel(ctx, id, userID)
    if err != nil {
        return jsonError(c, err)
    }
    return c.JSON(http.StatusOK, res)
}

// ListMine handles GET /v1/reservations.  It returns the caller's
// reservations with event display fields joined in, newest first.
func (h *ReservationHandler) ListMine(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    reservations, err := h.ResRepo.ListByUser(ctx, userID)
    if err != nil {
        return jsonError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"reservations": reservations})
}
