package handler // handler defines http handlers

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-reservation/internal/service"
)

// getUserID extracts the user_id from echo.Context and converts it to
// uint64.  The JWT middleware stores the claim without normalizing its
// type, so every plausible encoding is handled here.
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
    n, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || n == 0 {
        return 0, false
    }
    return n, true
}

// jsonError maps a service error onto the HTTP status taxonomy and writes
// the standard error body.  Unrecognized errors become 500 without
// leaking internals.
func jsonError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, service.ErrBadRequest):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.Is(err, service.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
    case errors.Is(err, service.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrBusinessRule):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
    case errors.Is(err, service.ErrInsufficientCapacity), errors.Is(err, service.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
    case errors.Is(err, service.ErrTimeout):
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "temporarily unavailable, retry"})
    default:
        c.Logger().Errorf("internal error: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
}
