package handler

import (
    "context"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-reservation/internal/service"
)

// ReviewHandler serves review submission and retrieval.  Reviews hang off
// reservations, not events: the reservation proves attendance and the
// service layer gates on its status and the event having completed.
type ReviewHandler struct {
    Reviews *service.ReviewService
}

func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
    if reviews == nil {
        panic("nil dependency passed to NewReviewHandler")
    }
    return &ReviewHandler{Reviews: reviews}
}

type reviewReq struct {
    Rating  int     `json:"rating"`
    Comment *string `json:"comment"`
}

// Submit handles PUT /v1/reservations/:id/review.  A second submission
// replaces the first one in place.
func (h *ReviewHandler) Submit(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    var req reviewReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    rev, err := h.Reviews.Submit(ctx, id, userID, req.Rating, req.Comment)
    if err != nil {
        return jsonError(c, err)
    }
    return c.JSON(http.StatusOK, rev)
}

// Eligibility handles GET /v1/reservations/:id/review/eligibility.  It
// reports whether the holder may review right now and, if not, why.
func (h *ReviewHandler) Eligibility(c echo.Context) error {
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

    if _, _, err := h.Reviews.CanReview(ctx, id, userID); err != nil {
        if errors.Is(err, service.ErrBusinessRule) {
            return c.JSON(http.StatusOK, echo.Map{"can_review": false, "reason": err.Error()})
        }
        return jsonError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"can_review": true})
}

// Get handles GET /v1/reservations/:id/review for the holder.
func (h *ReviewHandler) Get(c echo.Context) error {
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

    rev, err := h.Reviews.Get(ctx, id, userID)
    if err != nil {
        return jsonError(c, err)
    }
    return c.JSON(http.StatusOK, rev)
}
