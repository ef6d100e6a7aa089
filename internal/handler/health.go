package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// Health answers GET /healthz for load balancers.  It reports process
// liveness only; a down broker or cache never fails the check because
// reservations still work without them.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}
